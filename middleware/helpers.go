package middleware

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

const (
	jwtClaimSubject = "sub"
	jwtClaimRole    = "role"
)

func claimString(ctx context.Context, name string) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", errNoClaims
	}
	value, ok := claims[name]
	if !ok {
		return "", fmt.Errorf("missing '%s' claim in token", name)
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, value)
	}
	return s, nil
}

func GetUserRoleFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, jwtClaimRole)
}

func GetSubjectFromContext(ctx context.Context) (string, error) {
	return claimString(ctx, jwtClaimSubject)
}
