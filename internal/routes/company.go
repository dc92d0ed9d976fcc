package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runCompanyRouter(secureGroup *echo.Group, ctrl *controllers.CompanyController, adminOnly echo.MiddlewareFunc) {
	secureGroup.GET("/companies", ctrl.GetCompanies)
	secureGroup.GET("/companies/:id", ctrl.FindCompany)
	secureGroup.POST("/companies", ctrl.CreateCompany, adminOnly)
	secureGroup.PUT("/companies/:id", ctrl.UpdateCompany, adminOnly)
	secureGroup.DELETE("/companies/:id", ctrl.DeleteCompany, adminOnly)
}
