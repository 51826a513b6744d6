package jwt

import (
	"errors"
	"fmt"
	"time"

	"bluora_auth/internal/models"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// SessionClaims is the stateless bearer payload: identity attributes plus the
// registered expiry. Nothing about the session is stored server-side.
type SessionClaims struct {
	jwtlib.RegisteredClaims
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

func NewToken(user models.Claims, secret string, ttl time.Duration) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})

	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (models.Claims, error) {
	claims := &SessionClaims{}

	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Claims{}, err
	}

	if !token.Valid {
		return models.Claims{}, ErrInvalidToken
	}

	return models.Claims{
		ID:    claims.UserID,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
