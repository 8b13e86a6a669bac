package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "profile-system/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

// errorStatusList - карта "сентинельная ошибка -> HTTP статус".
var errorStatusList = map[error]int{
	apperrors.ErrNotFound:          http.StatusNotFound,
	apperrors.ErrBadRequest:        http.StatusBadRequest,
	apperrors.ErrDuplicateName:     http.StatusConflict,
	apperrors.ErrConflict:          http.StatusConflict,
	apperrors.ErrInvalidOrder:      http.StatusBadRequest,
	apperrors.ErrFieldLocked:       http.StatusForbidden,
	apperrors.ErrUnauthorized:      http.StatusUnauthorized,
	apperrors.ErrEmptyAuthHeader:   http.StatusUnauthorized,
	apperrors.ErrInvalidAuthHeader: http.StatusUnauthorized,
	apperrors.ErrTokenExpired:      http.StatusUnauthorized,
	apperrors.ErrForbidden:         http.StatusForbidden,
	apperrors.ErrInternalServer:    http.StatusInternalServerError,
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int, total ...uint64) error {
	response := &HTTPResponse{Status: true, Message: message, Body: body}
	if len(total) > 0 {
		limit, _, page := ParsePaginationParams(ctx.Request().URL.Query())
		totalPages := uint64(0)
		if limit > 0 {
			totalPages = (total[0] + limit - 1) / limit
		}
		response.Body = map[string]interface{}{
			"list": body,
			"pagination": map[string]interface{}{
				"total_count": total[0],
				"page":        page,
				"limit":       limit,
				"total_pages": totalPages,
			},
		}
	}
	return ctx.JSON(code, response)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Поле '%s' не прошло проверку '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": "Ошибка валидации: " + strings.Join(msgs, "; "),
		})
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"status":  false,
			"message": invalidInput.Message,
		})
	}

	for sentinel, statusCode := range errorStatusList {
		if errors.Is(err, sentinel) {
			return c.JSON(statusCode, map[string]interface{}{
				"status":  false,
				"message": sentinel.Error(),
			})
		}
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Внутренняя ошибка сервера",
	})
}
