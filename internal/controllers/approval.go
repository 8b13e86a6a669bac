package controllers

import (
	"net/http"

	"profile-system/internal/dto"
	"profile-system/internal/services"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ApprovalController struct {
	approvalService services.ApprovalServiceInterface
	logger          *zap.Logger
}

func NewApprovalController(approvalService services.ApprovalServiceInterface, logger *zap.Logger) *ApprovalController {
	return &ApprovalController{approvalService: approvalService, logger: logger}
}

// Submit: владелец отправляет свою анкету на согласование.
func (c *ApprovalController) Submit(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.approvalService.SubmitForApproval(reqCtx, userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Анкета отправлена на согласование", http.StatusOK)
}

// Review: решение HR по отправленной анкете.
func (c *ApprovalController) Review(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	profileID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ReviewDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.approvalService.Review(reqCtx, profileID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Решение по анкете сохранено", http.StatusOK)
}

// RequestUnlock: владелец просит разблокировать анкету для правок.
func (c *ApprovalController) RequestUnlock(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	userID, err := utils.GetUserIDFromCtx(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UnlockRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.approvalService.RequestUnlock(reqCtx, userID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Запрос на разблокировку отправлен", http.StatusOK)
}

// ReviewUnlock: решение HR по запросу на разблокировку.
func (c *ApprovalController) ReviewUnlock(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	profileID, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.ReviewUnlockDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil),
			c.logger,
		)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.approvalService.ReviewUnlock(reqCtx, profileID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Решение по разблокировке сохранено", http.StatusOK)
}

func (c *ApprovalController) ListPendingApprovals(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.approvalService.ListPendingApprovals(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список анкет на согласовании получен", http.StatusOK)
}

func (c *ApprovalController) ListPendingUnlocks(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.approvalService.ListPendingUnlocks(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список запросов на разблокировку получен", http.StatusOK)
}
