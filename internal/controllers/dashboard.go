package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrak/internal/services"
	"equiptrak/pkg/utils"
)

type DashboardController struct {
	equipmentService services.EquipmentServiceInterface
	logger           *zap.Logger
}

func NewDashboardController(service services.EquipmentServiceInterface, logger *zap.Logger) *DashboardController {
	return &DashboardController{equipmentService: service, logger: logger}
}

func (c *DashboardController) GetDashboard(ctx echo.Context) error {
	res, err := c.equipmentService.Dashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Dashboard fetched", http.StatusOK)
}
