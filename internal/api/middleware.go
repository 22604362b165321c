package api

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/utils"
)

// RequestIDMiddleware reuses the caller's X-Request-ID or issues a new one and
// puts it on the request context for logging.
func (svc *APIService) RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		requestID := ctx.Request().Header.Get(constants.HeaderKeyRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx.Response().Header().Set(constants.HeaderKeyRequestID, requestID)
		ctx.Set(constants.CtxKeyRequestID, requestID)
		ctx.SetRequest(ctx.Request().WithContext(logger.WithRequestID(ctx.Request().Context(), requestID)))

		return next(ctx)
	}
}

// AdminMiddleware guards writes. The token comes from the secret_token cookie
// or an "Authorization: Bearer" header.
func (svc *APIService) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var raw string
		if cookie, err := ctx.Cookie(constants.CookieKeySecretToken); err == nil {
			raw = cookie.Value
		} else if header := ctx.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		}
		if raw == "" {
			return constants.ErrUnauthorized
		}

		token, err := utils.ParseAuthToken(raw)
		if err != nil {
			return err
		}

		if token.Secret != viper.GetString(constants.ViperSecretKey) {
			return constants.ErrUnauthorized
		}

		return next(ctx)
	}
}
