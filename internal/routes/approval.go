package routes

import (
	"profile-system/internal/controllers"
	"profile-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runApprovalRouter(g *echo.Group, approvalCtrl *controllers.ApprovalController, authMW *middleware.AuthMiddleware) {
	// Действия владельца анкеты.
	g.POST("/approvals/submit", approvalCtrl.Submit)
	g.POST("/approvals/unlock-request", approvalCtrl.RequestUnlock)

	// Решения HR.
	hr := g.Group("/approvals", authMW.RequireHR)
	hr.GET("/pending", approvalCtrl.ListPendingApprovals)
	hr.GET("/unlock-requests", approvalCtrl.ListPendingUnlocks)
	hr.POST("/:id/review", approvalCtrl.Review)
	hr.POST("/:id/unlock-review", approvalCtrl.ReviewUnlock)
}
