package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runServiceRecordRouter(secureGroup *echo.Group, ctrl *controllers.ServiceRecordController, adminOnly echo.MiddlewareFunc) {
	secureGroup.GET("/records", ctrl.GetRecords)
	secureGroup.GET("/records/:id", ctrl.FindRecord)
	secureGroup.POST("/records", ctrl.CreateRecord, adminOnly)
	secureGroup.PATCH("/records/:id/dates", ctrl.UpdateDates, adminOnly)
	secureGroup.PATCH("/records/:id/certificate-number", ctrl.UpdateCertificateNumber, adminOnly)
}
