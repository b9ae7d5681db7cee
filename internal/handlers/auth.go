package handlers

import (
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/logging"
	"github.com/salonsys/salon-admin/internal/middleware/auth"
	"github.com/salonsys/salon-admin/internal/mykafka"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/token"
)

type AuthHandler struct {
	Repo     *repo.Repo
	Tokens   *token.Service
	Producer *mykafka.Producer
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	FullName string `json:"full_name" form:"full_name"`
	Password string `json:"password" form:"password"`
}

// The form entry point mirrors the OAuth2 password form: the username field
// carries the login identifier, which for this service is the email.
type formLoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type jsonLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateRegister(&req); err != nil {
		return httpError(c, err)
	}

	user, err := h.Repo.CreateUser(ctx, repo.NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		l.Warn("register failed", "username", req.Username, "error", err)
		return httpError(c, err)
	}

	publish(c, h.Producer, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

// Login is the form-encoded entry point.
func (h *AuthHandler) Login(c echo.Context) error {
	var req formLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return h.login(c, req.Username, req.Password)
}

// LoginJSON accepts {email, password}.
func (h *AuthHandler) LoginJSON(c echo.Context) error {
	var req jsonLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return h.login(c, req.Email, req.Password)
}

func (h *AuthHandler) login(c echo.Context, email, password string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	user, err := h.Repo.Authenticate(ctx, email, password)
	if err != nil {
		l.Warn("login failed", "error", err)
		return httpError(c, err)
	}

	accessToken, _, err := h.Tokens.Issue(user)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	publish(c, h.Producer, fmt.Sprint(user.ID), map[string]interface{}{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login successful", "user_id", user.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
		"user":         user,
	})
}

// Me returns the authenticated user's own projection.
func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

func validateRegister(req *registerRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 50 {
		return apperr.E(apperr.Invalid, "username must be 3-50 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return apperr.E(apperr.Invalid, "invalid email address")
	}
	if len(req.FullName) > 255 {
		return apperr.E(apperr.Invalid, "full name too long")
	}
	if len(req.Password) < 6 {
		return apperr.E(apperr.Invalid, "password must be at least 6 characters")
	}
	return nil
}
