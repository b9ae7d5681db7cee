package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/logging"
	"github.com/salonsys/salon-admin/internal/mykafka"
)

// httpError maps error kinds onto status codes. Internal detail stays in the
// logs; the client only sees the classified message.
func httpError(c echo.Context, err error) error {
	switch apperr.KindOf(err) {
	case apperr.Invalid:
		return echo.NewHTTPError(http.StatusBadRequest, apperr.Message(err))
	case apperr.Unauthenticated:
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return echo.NewHTTPError(http.StatusUnauthorized, apperr.Message(err))
	case apperr.Forbidden:
		return echo.NewHTTPError(http.StatusForbidden, apperr.Message(err))
	case apperr.Duplicate:
		return echo.NewHTTPError(http.StatusConflict, apperr.Message(err))
	case apperr.NotFound:
		return echo.NewHTTPError(http.StatusNotFound, apperr.Message(err))
	case apperr.Unavailable:
		logging.FromContext(c.Request().Context()).Error("dependency unavailable", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
	default:
		logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// publish fires a domain event; delivery failures are logged and never fail
// the request.
func publish(c echo.Context, p *mykafka.Producer, key string, event map[string]interface{}) {
	if p == nil {
		return
	}
	ctx := c.Request().Context()
	if err := p.PublishEvent(ctx, mykafka.Topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "error", err)
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.E(apperr.Invalid, "invalid id")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperr.E(apperr.Invalid, "invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
