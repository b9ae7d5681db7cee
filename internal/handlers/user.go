package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/logging"
	"github.com/salonsys/salon-admin/internal/middleware/auth"
	"github.com/salonsys/salon-admin/internal/repo"
)

// UserHandler exposes the administrative account controls. Registration can
// no longer self-elect admin, so activation and promotion happen here, behind
// the admin gate.
type UserHandler struct {
	Repo *repo.Repo
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), 100)

	users, err := h.Repo.ListUsers(c.Request().Context(), skip, limit)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) PatchUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}

	var flags repo.UserFlags
	if err := c.Bind(&flags); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Repo.UpdateUserFlags(c.Request().Context(), id, flags)
	if err != nil {
		return httpError(c, err)
	}

	if actor, ok := auth.CurrentUser(c); ok {
		logging.FromContext(c.Request().Context()).Info("user flags updated",
			"actor_id", actor.ID, "user_id", user.ID,
			"is_active", user.IsActive, "is_admin", user.IsAdmin)
	}
	return c.JSON(http.StatusOK, user)
}
