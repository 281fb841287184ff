package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msvee3/Interview-prep/internal/apperr"
)

var (
	ErrMissingAuthHeader = fmt.Errorf("%w: missing or malformed Authorization header", apperr.ErrUnauthenticated)
	ErrInvalidToken      = fmt.Errorf("%w: invalid token", apperr.ErrUnauthenticated)
	ErrInvalidClaims     = fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthenticated)
)

// TokenVerifier turns an opaque bearer token into a subject id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// JWTVerifier accepts HMAC-signed tokens carrying the user id in "sub".
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenStr string) (string, error) {
	if len(v.secret) == 0 {
		return "", fmt.Errorf("%w: token verification is not configured", apperr.ErrUnauthenticated)
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidClaims
	}
	return subject(claims)
}

// subject extracts "sub" as a string. JSON numbers decode as float64.
func subject(claims jwt.MapClaims) (string, error) {
	switch v := claims["sub"].(type) {
	case string:
		if v == "" {
			return "", ErrInvalidClaims
		}
		return v, nil
	case float64:
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return "", ErrInvalidClaims
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingAuthHeader
	}
	return strings.TrimSpace(token), nil
}
