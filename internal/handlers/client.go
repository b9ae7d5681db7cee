package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/logging"
	"github.com/salonsys/salon-admin/internal/mykafka"
	"github.com/salonsys/salon-admin/internal/repo"
	"github.com/salonsys/salon-admin/internal/service/search"
	"github.com/salonsys/salon-admin/internal/storage"
)

type ClientHandler struct {
	Repo     *repo.Repo
	Producer *mykafka.Producer
	Photos   *storage.PhotoStore
	Search   *search.Index
}

type clientRequest struct {
	Name string `json:"name"`
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req clientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || len(req.Name) > 255 {
		return httpError(c, apperr.E(apperr.Invalid, "name must be 1-255 characters"))
	}

	client, err := h.Repo.CreateClient(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(c, err)
	}

	h.reindex(c, client.ID)
	publish(c, h.Producer, fmt.Sprint(client.ID), map[string]interface{}{
		"type":     "client_created",
		"clientID": client.ID,
		"name":     client.Name,
	})

	return c.JSON(http.StatusCreated, client)
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}
	client, err := h.Repo.GetClient(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) ListClients(c echo.Context) error {
	filter := repo.ClientFilter{
		Search: c.QueryParam("search"),
		Skip:   parseIntDefault(c.QueryParam("skip"), 0),
		Limit:  parseIntDefault(c.QueryParam("limit"), 100),
	}
	clients, err := h.Repo.ListClients(c.Request().Context(), filter)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// SearchClients serves the fuzzy search endpoint from elasticsearch when an
// index is configured and falls back to a store LIKE query otherwise.
func (h *ClientHandler) SearchClients(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return httpError(c, apperr.E(apperr.Invalid, "missing query parameter q"))
	}

	skip := parseIntDefault(c.QueryParam("skip"), 0)
	limit := parseIntDefault(c.QueryParam("limit"), 100)
	ctx := c.Request().Context()

	if h.Search.Enabled() {
		total, clients, err := h.Search.Search(ctx, q, skip, limit)
		if err != nil {
			logging.FromContext(ctx).Error("search index query failed", "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
		}
		return c.JSON(http.StatusOK, echo.Map{"total": total, "clients": clients})
	}

	clients, err := h.Repo.ListClients(ctx, repo.ClientFilter{Search: q, Skip: skip, Limit: limit})
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"total": int64(len(clients)), "clients": clients})
}

func (h *ClientHandler) UpdateClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}

	var upd repo.ClientUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if upd.Name != nil && (*upd.Name == "" || len(*upd.Name) > 255) {
		return httpError(c, apperr.E(apperr.Invalid, "name must be 1-255 characters"))
	}

	client, err := h.Repo.UpdateClient(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(c, err)
	}

	h.reindex(c, client.ID)
	publish(c, h.Producer, fmt.Sprint(client.ID), map[string]interface{}{
		"type":     "client_updated",
		"clientID": client.ID,
		"name":     client.Name,
	})

	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) DeleteClient(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}
	ctx := c.Request().Context()

	client, err := h.Repo.GetClient(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteClient(ctx, id); err != nil {
		return httpError(c, err)
	}

	if h.Photos != nil {
		if err := h.Photos.Remove(client.PhotoPath); err != nil {
			logging.FromContext(ctx).Warn("photo cleanup failed", "error", err)
		}
	}
	if err := h.Search.DeleteClient(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search deindex failed", "error", err)
	}
	publish(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":     "client_deleted",
		"clientID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto stores the multipart file and swaps the client's photo; the
// replaced file is removed after the store commits the new path.
func (h *ClientHandler) UploadPhoto(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}
	if h.Photos == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "photo storage not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return httpError(c, apperr.E(apperr.Invalid, "missing file field"))
	}

	name, err := h.Photos.Save(file)
	if err != nil {
		return httpError(c, apperr.Wrap(apperr.Invalid, "cannot store photo", err))
	}

	ctx := c.Request().Context()
	client, previous, err := h.Repo.SetClientPhoto(ctx, id, name)
	if err != nil {
		if rmErr := h.Photos.Remove(name); rmErr != nil {
			logging.FromContext(ctx).Warn("photo cleanup failed", "error", rmErr)
		}
		return httpError(c, err)
	}
	if previous != "" && previous != name {
		if err := h.Photos.Remove(previous); err != nil {
			logging.FromContext(ctx).Warn("photo cleanup failed", "error", err)
		}
	}

	publish(c, h.Producer, fmt.Sprint(client.ID), map[string]interface{}{
		"type":     "client_photo_updated",
		"clientID": client.ID,
		"photo":    name,
	})

	return c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) reindex(c echo.Context, id uint) {
	ctx := c.Request().Context()
	client, err := h.Repo.GetClient(ctx, id)
	if err != nil {
		logging.FromContext(ctx).Warn("search reindex lookup failed", "error", err)
		return
	}
	if err := h.Search.IndexClient(ctx, client); err != nil {
		logging.FromContext(ctx).Warn("search reindex failed", "error", err)
	}
}
