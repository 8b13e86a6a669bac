package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"profile-system/internal/controllers"
	"profile-system/internal/services"
	"profile-system/pkg/middleware"
)

func runReportRouter(
	g *echo.Group,
	reportService services.ReportServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	reportController := controllers.NewReportController(reportService, logger)

	g.GET("/reports/profiles/export", reportController.GetProfileReport, authMW.RequireHR)
}
