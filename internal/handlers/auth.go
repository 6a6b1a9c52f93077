package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHandler struct {
	Auth         *service.AuthService
	CookieSecure bool
}

func CreateCookie(name, value, path string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	c := CreateCookie(name, "", path, time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Register")

	var req transport.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("register_failed", "status", http.StatusBadRequest, "reason", "bad json")
		return err
	}

	if _, err := h.Auth.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		return serviceError(c, "register", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Usuário criado com sucesso"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Login")

	var req transport.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		l.Warn("login_failed", "status", http.StatusBadRequest, "reason", "bad json")
		return err
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(c, "login", err)
	}

	c.SetCookie(CreateCookie(authmw.CookieName, res.Token, "/", res.ExpiresAt, h.CookieSecure))
	return c.JSON(http.StatusOK, transport.LoginResponse{
		Message: "Login realizado com sucesso",
		User:    transport.UserSummary{ID: res.User.ID, Name: res.User.Name, Role: res.User.Role},
	})
}

// Logout always succeeds for the client; a revoke failure is only logged.
func (h *AuthHandler) Logout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "Logout")

	if ck, err := c.Cookie(authmw.CookieName); err == nil {
		if err := h.Auth.Logout(c.Request().Context(), ck.Value); err != nil {
			l.Error("logout_revoke_failed", "error", err)
		}
	}

	c.SetCookie(DeleteCookie(authmw.CookieName, "/", h.CookieSecure))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Logout realizado com sucesso"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := authmw.PrincipalFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	user, err := h.Auth.CurrentUser(c.Request().Context(), p.UserID)
	if err != nil {
		return serviceError(c, "current_user", err)
	}
	return c.JSON(http.StatusOK, transport.CurrentUser{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role})
}
