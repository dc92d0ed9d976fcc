package routes

import (
	"github.com/labstack/echo/v4"

	"equiptrak/internal/controllers"
)

func runCertificateRouter(secureGroup *echo.Group, ctrl *controllers.CertificateController) {
	secureGroup.GET("/certificates/:number", ctrl.FindCertificate)
}

func runDashboardRouter(secureGroup *echo.Group, ctrl *controllers.DashboardController) {
	secureGroup.GET("/dashboard", ctrl.GetDashboard)
}
