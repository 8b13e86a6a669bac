package utils

import (
	"context"

	"profile-system/pkg/contextkeys"
	apperrors "profile-system/pkg/errors"
)

// GetUserIDFromCtx достаёт UserID, положенный auth-middleware.
func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) (string, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(string)
	if !ok || role == "" {
		return "", apperrors.ErrUnauthorized
	}
	return role, nil
}
