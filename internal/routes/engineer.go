package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runEngineerRouter(secureGroup *echo.Group, ctrl *controllers.EngineerController, adminOnly echo.MiddlewareFunc) {
	g := secureGroup.Group("/engineers", adminOnly)
	g.GET("", ctrl.GetEngineers)
	g.GET("/:id", ctrl.FindEngineer)
	g.POST("", ctrl.CreateEngineer)
	g.PUT("/:id", ctrl.UpdateEngineer)
	g.DELETE("/:id", ctrl.DeleteEngineer)
}
