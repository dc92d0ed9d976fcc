package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runEquipmentTypeRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentTypeController, adminOnly echo.MiddlewareFunc) {
	g := secureGroup.Group("/equipment-types", adminOnly)
	g.GET("", ctrl.GetEquipmentTypes)
	g.POST("", ctrl.CreateEquipmentType)
}
