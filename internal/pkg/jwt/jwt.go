package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(caller user.Caller) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(caller user.Caller) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":         caller.UserID,
		"organization_id": caller.OrganizationID,
		"role":            string(caller.Role),
		"is_admin":        caller.IsAdmin,
		"type":            TokenTypeAccess,
		"exp":             expiresAt,
	})
	return tokenString, expiresAt, err
}

// CallerFromContext reads the verified access token claims placed on ctx by
// jwtauth.Verifier.
func CallerFromContext(ctx context.Context) (user.Caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Caller{}, user.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return user.Caller{}, user.ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	organizationID, _ := claims["organization_id"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	return user.Caller{
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           user.Role(role),
		IsAdmin:        isAdmin,
	}, nil
}
