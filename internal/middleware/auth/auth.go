package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/logging"
	"github.com/salonsys/salon-admin/internal/models"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/token"
)

const userContextKey = "user"

// Gate authenticates bearer tokens and enforces the active/admin policy.
// It holds no state of its own and never writes.
type Gate struct {
	Tokens *token.Service
	Users  *repo.Repo
}

func NewGate(tokens *token.Service, users *repo.Repo) *Gate {
	return &Gate{Tokens: tokens, Users: users}
}

// RequireUser admits any active account.
func (g *Gate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, false)
}

// RequireAdmin admits only active admin accounts.
func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.require(next, true)
}

func (g *Gate) require(next echo.HandlerFunc, admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return unauthenticated(c, "missing bearer token")
		}

		claims, err := g.Tokens.Verify(raw)
		if err != nil {
			return unauthenticated(c, "invalid or expired token")
		}

		id, err := claims.UserID()
		if err != nil {
			return unauthenticated(c, "invalid token subject")
		}

		user, err := g.Users.FindUserByID(c.Request().Context(), id)
		if err != nil {
			// A store fault is not an auth failure: the caller gets 503,
			// never a misleading 401.
			if apperr.KindOf(err) == apperr.Unavailable {
				logging.FromContext(c.Request().Context()).Error("auth gate store fault", "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
			}
			return unauthenticated(c, "unknown user")
		}

		if !user.IsActive {
			return echo.NewHTTPError(http.StatusForbidden, "account is inactive")
		}
		if admin && !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
		}

		c.Set(userContextKey, user)

		ctx := c.Request().Context()
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID))
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// CurrentUser returns the user resolved by the gate for this request.
func CurrentUser(c echo.Context) (*models.User, bool) {
	u, ok := c.Get(userContextKey).(*models.User)
	return u, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(prefix):])
	return tok, tok != ""
}

func unauthenticated(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
