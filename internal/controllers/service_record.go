package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/dto"
	"equiptrak/internal/services"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/utils"
)

// duplicateSubmitWindow is how long an issued record blocks an identical
// submission from the same caller.
const duplicateSubmitWindow = 10 * time.Second

type ServiceRecordController struct {
	recordService services.ServiceRecordServiceInterface
	dedup         *RequestDeduplicator
	logger        *zap.Logger
}

func NewServiceRecordController(service services.ServiceRecordServiceInterface, dedup *RequestDeduplicator, logger *zap.Logger) *ServiceRecordController {
	return &ServiceRecordController{recordService: service, dedup: dedup, logger: logger}
}

func (c *ServiceRecordController) GetRecords(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, err := c.recordService.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res.List, "Service records fetched", http.StatusOK, res.Pagination.TotalCount)
}

func (c *ServiceRecordController) FindRecord(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.recordService.FindByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Service record fetched", http.StatusOK)
}

// CreateRecord issues a certificate. Field-level checks live in the record
// builder so that rejections name the same fields everywhere.
func (c *ServiceRecordController) CreateRecord(ctx echo.Context) error {
	var payload dto.CreateServiceRecordDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	key := submissionKey(ctx, payload)
	if key != "" && !c.dedup.TryAcquire(key, duplicateSubmitWindow) {
		c.logger.Warn("CreateRecord: duplicate submission refused", zap.String("key", key))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusConflict, "An identical record was just submitted", nil, nil), c.logger)
	}

	res, err := c.recordService.Create(ctx.Request().Context(), payload)
	if err != nil {
		if key != "" {
			c.dedup.Release(key)
		}
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Service record created", http.StatusCreated)
}

// submissionKey identifies a create request by caller and content. It is
// empty when the caller is unknown.
func submissionKey(ctx echo.Context, payload dto.CreateServiceRecordDTO) string {
	p, err := authz.PrincipalFromContext(ctx.Request().Context())
	if err != nil {
		return ""
	}
	serials := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item != nil {
			serials = append(serials, strings.ToUpper(strings.TrimSpace(item.SerialNumber)))
		}
	}
	return fmt.Sprintf("%s|%s|%d|%s|%s", p.Subject, payload.RecordType, payload.CompanyID, payload.TestDate.String, strings.Join(serials, ","))
}

func (c *ServiceRecordController) UpdateDates(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateRecordDatesDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.recordService.UpdateDates(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Record dates updated", http.StatusOK)
}

func (c *ServiceRecordController) UpdateCertificateNumber(ctx echo.Context) error {
	id, err := utils.ParseUintParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateCertificateNumberDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Invalid request body", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.recordService.UpdateCertificateNumber(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Certificate number updated", http.StatusOK)
}
