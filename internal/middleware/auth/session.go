package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	CookieName = "session"

	tokenKey     = "session"
	principalKey = "principal"
)

type Resolver interface {
	ResolveSession(ctx context.Context, claims *tokens.SessionClaims) (service.Principal, error)
}

// RequireLogin verifies the session cookie and resolves it against the session
// store. The resolved principal is available through PrincipalFromContext.
func RequireLogin(secret []byte, r Resolver) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  tokenKey,
		TokenLookup: "cookie:" + CookieName,
		KeyFunc:     tokens.KeyFunc(secret),
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Debug("session_rejected", "reason", "token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			tok, ok := c.Get(tokenKey).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			claims, ok := tok.Claims.(*tokens.SessionClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}

			p, err := r.ResolveSession(c.Request().Context(), claims)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					logging.FromContext(c.Request().Context()).Debug("session_rejected", "reason", "store", "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
				}
				logging.FromContext(c.Request().Context()).Error("session_resolve_failed", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
			}

			c.Set(principalKey, p)
			ctx := logging.IntoContext(c.Request().Context(),
				logging.FromContext(c.Request().Context()).With("user_id", p.UserID))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		})
	}
}

// RequireAdmin must run after RequireLogin.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}
		if !p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func PrincipalFromContext(c echo.Context) (service.Principal, bool) {
	p, ok := c.Get(principalKey).(service.Principal)
	return p, ok
}
