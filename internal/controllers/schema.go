package controllers

import (
	"net/http"
	"strconv"

	"profile-system/config"
	"profile-system/internal/dto"
	"profile-system/internal/services"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SchemaController struct {
	schemaService  services.SchemaServiceInterface
	builderService services.SchemaBuilderServiceInterface
	logger         *zap.Logger
}

func NewSchemaController(
	schemaService services.SchemaServiceInterface,
	builderService services.SchemaBuilderServiceInterface,
	logger *zap.Logger,
) *SchemaController {
	return &SchemaController{
		schemaService:  schemaService,
		builderService: builderService,
		logger:         logger,
	}
}

func parseIDParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный ID",
			err,
			map[string]interface{}{"param": ctx.Param(name)},
		)
	}
	return id, nil
}

// GetFieldPresets отдаёт именованные наборы расширений для конструктора файловых полей.
func (c *SchemaController) GetFieldPresets(ctx echo.Context) error {
	return utils.SuccessResponse(ctx, config.ExtensionPresets, "Наборы расширений получены", http.StatusOK)
}

func (c *SchemaController) GetSchema(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.schemaService.GetCategories(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Схема анкеты успешно получена", http.StatusOK)
}

func (c *SchemaController) FindCategory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.schemaService.FindCategory(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно найдена", http.StatusOK)
}

func (c *SchemaController) CreateCategory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.schemaService.CreateCategory(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно создана", http.StatusCreated)
}

func (c *SchemaController) UpdateCategory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateCategoryDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.schemaService.UpdateCategory(reqCtx, id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Категория успешно обновлена", http.StatusOK)
}

func (c *SchemaController) DeleteCategory(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.schemaService.DeleteCategory(reqCtx, id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Категория успешно удалена", http.StatusOK)
}

func (c *SchemaController) AddField(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	categoryID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateFieldDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.schemaService.AddField(reqCtx, categoryID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Поле успешно добавлено", http.StatusCreated)
}

func (c *SchemaController) UpdateField(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	fieldID, err := parseIDParam(ctx, "fieldId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateFieldDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.schemaService.UpdateField(reqCtx, fieldID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Поле успешно обновлено", http.StatusOK)
}

func (c *SchemaController) DeleteField(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	fieldID, err := parseIDParam(ctx, "fieldId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.schemaService.DeleteField(reqCtx, fieldID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Поле успешно удалено", http.StatusOK)
}

func (c *SchemaController) ReorderFields(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	categoryID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ReorderFieldsDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.schemaService.ReorderFields(reqCtx, categoryID, payload.FieldIDs); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Порядок полей успешно обновлён", http.StatusOK)
}

// SaveAll принимает итоговое состояние конструктора схемы по одной категории.
func (c *SchemaController) SaveAll(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	categoryID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.BuilderSaveAllDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.builderService.SaveAll(reqCtx, categoryID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Схема категории успешно сохранена", http.StatusOK)
}
