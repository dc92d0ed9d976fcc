package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController, adminOnly echo.MiddlewareFunc) {
	secureGroup.GET("/equipment", ctrl.GetEquipments)
	// registered before /:id so that "export" is not taken for an id
	secureGroup.GET("/equipment/export", ctrl.ExportEquipments)
	secureGroup.GET("/equipment/:id", ctrl.FindEquipment)
	secureGroup.GET("/equipment/:id/latest-record", ctrl.LatestRecord)
	secureGroup.PUT("/equipment/:id", ctrl.UpdateEquipment, adminOnly)
	secureGroup.DELETE("/equipment/:id", ctrl.DeleteEquipment, adminOnly)
}
