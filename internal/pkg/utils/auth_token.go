package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/pkg/constants"
)

const authTokenTTL = 30 * 24 * time.Hour

// AuthTokenWrapper is the payload of an admin token.
type AuthTokenWrapper struct {
	Secret string `json:"secret"`
	jwt.StandardClaims
}

func signingKey() ([]byte, error) {
	key := viper.GetString(constants.ViperSecretKey)
	if key == "" {
		return nil, fmt.Errorf("%s is not configured", constants.ViperSecretKey)
	}
	return []byte(key), nil
}

// GenerateAuthToken signs token with the configured secret. ExpiresAt defaults
// to 30 days from now.
func GenerateAuthToken(token *AuthTokenWrapper) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}

	now := time.Now()
	if token.IssuedAt == 0 {
		token.IssuedAt = now.Unix()
	}
	if token.ExpiresAt == 0 {
		token.ExpiresAt = now.Add(authTokenTTL).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, token).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("jwt.SignedString: %w", err)
	}
	return signed, nil
}

func ParseAuthToken(tokenString string) (*AuthTokenWrapper, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}

	claims := new(AuthTokenWrapper)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", constants.ErrUnauthorized)
	}

	return claims, nil
}
