package routes

import (
	"profile-system/internal/controllers"
	"profile-system/pkg/middleware"

	"github.com/labstack/echo/v4"
)

// Чтение схемы доступно всем авторизованным, мутации - только HR.
func runSchemaRouter(g *echo.Group, schemaCtrl *controllers.SchemaController, authMW *middleware.AuthMiddleware) {
	g.GET("/schema/categories", schemaCtrl.GetSchema)
	g.GET("/schema/categories/:id", schemaCtrl.FindCategory)
	g.GET("/schema/field-presets", schemaCtrl.GetFieldPresets)

	admin := g.Group("/schema", authMW.RequireHR)
	admin.POST("/categories", schemaCtrl.CreateCategory)
	admin.PUT("/categories/:id", schemaCtrl.UpdateCategory)
	admin.DELETE("/categories/:id", schemaCtrl.DeleteCategory)
	admin.POST("/categories/:id/fields", schemaCtrl.AddField)
	admin.PUT("/fields/:fieldId", schemaCtrl.UpdateField)
	admin.DELETE("/fields/:fieldId", schemaCtrl.DeleteField)
	admin.PUT("/categories/:id/fields/reorder", schemaCtrl.ReorderFields)
	admin.PUT("/categories/:id/save-all", schemaCtrl.SaveAll)
}
