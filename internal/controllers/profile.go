package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"profile-system/internal/dto"
	"profile-system/internal/services"
	"profile-system/pkg/constants"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProfileController struct {
	profileService services.ProfileServiceInterface
	logger         *zap.Logger
}

func NewProfileController(profileService services.ProfileServiceInterface, logger *zap.Logger) *ProfileController {
	return &ProfileController{profileService: profileService, logger: logger}
}

func (c *ProfileController) GetMyProfile(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.profileService.FindByUserID(reqCtx, userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анкета успешно получена", http.StatusOK)
}

func (c *ProfileController) GetMyCategories(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetUserRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.profileService.GetCategoriesWithData(reqCtx, userID, role)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анкета с данными успешно получена", http.StatusOK)
}

// GetProfiles: список всех анкет, только для HR.
func (c *ProfileController) GetProfiles(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	limit, offset, _ := utils.ParsePaginationParams(ctx.QueryParams())

	res, total, err := c.profileService.GetAll(reqCtx, limit, offset)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список анкет успешно получен", http.StatusOK, total)
}

// GetUserCategories: просмотр анкеты сотрудника глазами HR.
func (c *ProfileController) GetUserCategories(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.profileService.GetCategoriesWithData(reqCtx, userID, constants.RoleHR)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анкета сотрудника успешно получена", http.StatusOK)
}

func (c *ProfileController) UpsertBaseInfo(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpsertBaseInfoDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.profileService.UpsertBaseInfo(reqCtx, userID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Базовый блок анкеты успешно сохранён", http.StatusOK)
}

// SaveMyCategoryFields: частичное сохранение одной категории своей анкеты.
// Запрос приходит как multipart/form-data: JSON со значениями в поле 'data',
// новые файлы - отдельными частями формы с именем поля схемы.
func (c *ProfileController) SaveMyCategoryFields(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetUserRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.saveCategoryFields(ctx, userID, role)
}

// SaveUserCategoryFields: правка анкеты сотрудника силами HR.
func (c *ProfileController) SaveUserCategoryFields(ctx echo.Context) error {
	userID, err := parseIDParam(ctx, "userId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.saveCategoryFields(ctx, userID, constants.RoleHR)
}

func (c *ProfileController) saveCategoryFields(ctx echo.Context, userID uint64, role string) error {
	reqCtx := ctx.Request().Context()
	categoryID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	dataString := ctx.FormValue("data")
	if dataString == "" {
		c.logger.Warn("ProfileController: Поле 'data' отсутствует в form-data")
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Поле 'data' с JSON обязательно", apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}

	var payload dto.SaveCategoryFieldsDTO
	if err := json.Unmarshal([]byte(dataString), &payload); err != nil {
		c.logger.Error("ProfileController: Неверный JSON в 'data'", zap.String("data", dataString), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный JSON в поле 'data'", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	files := map[string][]*multipart.FileHeader{}
	if form, errForm := ctx.MultipartForm(); errForm == nil && form != nil {
		for name, headers := range form.File {
			files[name] = headers
		}
	}

	if err := c.profileService.SaveCategoryFields(reqCtx, userID, role, categoryID, payload.Values, files); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Значения категории успешно сохранены", http.StatusOK)
}

// SubmitAll: массовое сохранение значений по нескольким категориям разом.
func (c *ProfileController) SubmitAll(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	role, err := utils.GetUserRoleFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.SubmitAllDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.profileService.SubmitAll(reqCtx, userID, role, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Массовое сохранение завершено", http.StatusOK)
}
