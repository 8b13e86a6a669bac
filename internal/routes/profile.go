package routes

import (
	"profile-system/internal/controllers"
	"profile-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func runProfileRouter(g *echo.Group, profileCtrl *controllers.ProfileController, authMW *middleware.AuthMiddleware) {
	// Собственная анкета.
	g.GET("/profiles/me", profileCtrl.GetMyProfile)
	g.GET("/profiles/me/categories", profileCtrl.GetMyCategories)
	g.POST("/profiles/me/categories/:id", profileCtrl.SaveMyCategoryFields)
	g.POST("/profiles/me/submit-all", profileCtrl.SubmitAll)

	// Анкеты сотрудников, только HR.
	hr := g.Group("/profiles", authMW.RequireHR)
	hr.GET("", profileCtrl.GetProfiles)
	hr.GET("/:userId/categories", profileCtrl.GetUserCategories)
	hr.PUT("/:userId/base-info", profileCtrl.UpsertBaseInfo)
	hr.POST("/:userId/categories/:id", profileCtrl.SaveUserCategoryFields)
}
