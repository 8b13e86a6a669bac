package middleware

import (
	"context"
	"strings"

	"profile-system/pkg/constants"
	"profile-system/pkg/contextkeys"
	apperrors "profile-system/pkg/errors"
	"profile-system/pkg/service"
	"profile-system/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtSvc,
		logger:     logger,
	}
}

// Auth - это основная функция middleware.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// 1. Извлекаем токен из заголовка
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Warn("AuthMiddleware: Пустой заголовок Authorization")
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		// 2. Проверяем формат заголовка "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.logger.Warn("AuthMiddleware: Неверный формат заголовка Authorization")
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		tokenString := parts[1]

		// 3. Валидируем токен
		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.logger.Warn("AuthMiddleware: Ошибка валидации токена", zap.Error(err))
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}

		// 4. Записываем UserID и роль в контекст запроса для дальнейшего использования
		ctx := c.Request().Context()
		newCtx := context.WithValue(ctx, contextkeys.UserIDKey, claims.UserID)
		newCtx = context.WithValue(newCtx, contextkeys.UserRoleKey, claims.Role)
		c.SetRequest(c.Request().WithContext(newCtx))

		m.logger.Debug("AuthMiddleware: Пользователь успешно аутентифицирован",
			zap.Uint64("userID", claims.UserID), zap.String("role", claims.Role))

		// 5. Если все в порядке, передаем управление следующему обработчику
		return next(c)
	}
}

// RequireHR пускает дальше только пользователей с ролью HR.
func (m *AuthMiddleware) RequireHR(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Request().Context().Value(contextkeys.UserRoleKey).(string)
		if !ok || role != constants.RoleHR {
			m.logger.Warn("AuthMiddleware: Попытка доступа к HR-ресурсу без роли HR", zap.String("role", role))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		return next(c)
	}
}
