package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equiptrak/internal/services"
	"equiptrak/pkg/utils"
)

type CertificateController struct {
	certificateService services.CertificateServiceInterface
	logger             *zap.Logger
}

func NewCertificateController(service services.CertificateServiceInterface, logger *zap.Logger) *CertificateController {
	return &CertificateController{certificateService: service, logger: logger}
}

func (c *CertificateController) FindCertificate(ctx echo.Context) error {
	res, err := c.certificateService.FindByNumber(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Certificate fetched", http.StatusOK)
}
