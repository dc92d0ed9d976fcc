package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equiptrak/internal/dto"
	"equiptrak/internal/services"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/utils"
)

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewEquipmentController(service services.EquipmentServiceInterface, logger *zap.Logger) *EquipmentController {
	return &EquipmentController{equipmentService: service, logger: logger}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, err := c.equipmentService.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res.List, "Equipment fetched", http.StatusOK, res.Pagination.TotalCount)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment fetched", http.StatusOK)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateEquipmentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Update(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Equipment updated", http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.equipmentService.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment deleted", http.StatusOK)
}

func (c *EquipmentController) LatestRecord(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.LatestRecord(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Latest record fetched", http.StatusOK)
}

func (c *EquipmentController) ExportEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	list, err := c.equipmentService.Export(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	f, err := equipmentWorkbook(list)
	if err != nil {
		return utils.ErrorResponse(ctx, fmt.Errorf("build equipment workbook: %w", err), c.logger)
	}
	defer f.Close()

	fileName := fmt.Sprintf("equipment_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}

const equipmentSheet = "Equipment"

var equipmentHeaders = []interface{}{
	"Company", "Equipment", "Serial number", "Type", "Last test", "Next test", "Days left", "Status",
}

var statusFills = map[string]string{
	"green":  "C6EFCE",
	"yellow": "FFEB9C",
	"red":    "FFC7CE",
	"grey":   "D9D9D9",
}

func equipmentRow(e dto.EquipmentDTO) []interface{} {
	typeName := ""
	if e.EquipmentType != nil {
		typeName = e.EquipmentType.Name
	}
	var daysLeft interface{} = ""
	if e.DaysUntilRetest != nil {
		daysLeft = *e.DaysUntilRetest
	}
	return []interface{}{
		e.Company.Name, e.Name, e.SerialNumber, typeName,
		e.LastTestDate.String, e.NextTestDate.String, daysLeft, e.Status,
	}
}

func equipmentWorkbook(list []dto.EquipmentDTO) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", equipmentSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(equipmentSheet, "A1", &equipmentHeaders); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(equipmentSheet, "A1", "H1", bold); err != nil {
		return nil, err
	}

	fills := make(map[string]int, len(statusFills))
	for color, hex := range statusFills {
		style, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hex}}})
		if err != nil {
			return nil, err
		}
		fills[color] = style
	}

	for i, item := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := equipmentRow(item)
		if err := f.SetSheetRow(equipmentSheet, cell, &row); err != nil {
			return nil, err
		}
		statusCell, _ := excelize.CoordinatesToCellName(8, i+2)
		if style, ok := fills[item.StatusColor]; ok {
			if err := f.SetCellStyle(equipmentSheet, statusCell, statusCell, style); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(equipmentSheet, "A", "B", 30)
	_ = f.SetColWidth(equipmentSheet, "C", "D", 20)
	_ = f.SetColWidth(equipmentSheet, "E", "F", 14)
	return f, nil
}
