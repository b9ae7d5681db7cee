package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/mykafka"
	"github.com/salonsys/salon-admin/internal/repo"
)

type ProcedureHandler struct {
	Repo     *repo.Repo
	Producer *mykafka.Producer
}

type procedureRequest struct {
	ClientID    uint     `json:"client_id"`
	Date        string   `json:"date"`
	Kind        string   `json:"kind"`
	TonerAmount *float64 `json:"toner_amount"`
	Price       *float64 `json:"price"`
	Notes       string   `json:"notes"`
	Haircut     bool     `json:"haircut"`
}

type procedureUpdateRequest struct {
	Date        *string  `json:"date"`
	Kind        *string  `json:"kind"`
	TonerAmount *float64 `json:"toner_amount"`
	Price       *float64 `json:"price"`
	Notes       *string  `json:"notes"`
	Haircut     *bool    `json:"haircut"`
}

func (h *ProcedureHandler) CreateProcedure(c echo.Context) error {
	var req procedureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateProcedure(&req); err != nil {
		return httpError(c, err)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return httpError(c, err)
	}

	proc, err := h.Repo.CreateProcedure(c.Request().Context(), repo.NewProcedure{
		ClientID:    req.ClientID,
		Date:        date,
		Kind:        req.Kind,
		TonerAmount: req.TonerAmount,
		Price:       *req.Price,
		Notes:       req.Notes,
		Haircut:     req.Haircut,
	})
	if err != nil {
		return httpError(c, err)
	}

	publish(c, h.Producer, fmt.Sprint(proc.ID), map[string]interface{}{
		"type":        "procedure_created",
		"procedureID": proc.ID,
		"clientID":    proc.ClientID,
		"kind":        proc.Kind,
	})

	return c.JSON(http.StatusCreated, proc)
}

func (h *ProcedureHandler) GetProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}
	proc, err := h.Repo.GetProcedure(c.Request().Context(), id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, proc)
}

func (h *ProcedureHandler) ListProcedures(c echo.Context) error {
	filter := repo.ProcedureFilter{
		Search: c.QueryParam("search"),
		Kind:   c.QueryParam("kind"),
		Skip:   parseIntDefault(c.QueryParam("skip"), 0),
		Limit:  parseIntDefault(c.QueryParam("limit"), 100),
	}

	if v := c.QueryParam("client_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return httpError(c, apperr.E(apperr.Invalid, "invalid client_id"))
		}
		filter.ClientID = uint(id)
	}

	var err error
	if filter.DateFrom, err = parseOptionalDate(c.QueryParam("date_from")); err != nil {
		return httpError(c, err)
	}
	if filter.DateTo, err = parseOptionalDate(c.QueryParam("date_to")); err != nil {
		return httpError(c, err)
	}
	if v := c.QueryParam("haircut"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return httpError(c, apperr.E(apperr.Invalid, "invalid haircut flag"))
		}
		filter.Haircut = &b
	}

	procs, err := h.Repo.ListProcedures(c.Request().Context(), filter)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, procs)
}

func (h *ProcedureHandler) UpdateProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}

	var req procedureUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	upd := repo.ProcedureUpdate{
		TonerAmount: req.TonerAmount,
		Price:       req.Price,
		Notes:       req.Notes,
		Haircut:     req.Haircut,
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return httpError(c, err)
		}
		upd.Date = &d
	}
	if req.Kind != nil {
		if *req.Kind == "" || len(*req.Kind) > 100 {
			return httpError(c, apperr.E(apperr.Invalid, "kind must be 1-100 characters"))
		}
		upd.Kind = req.Kind
	}
	if req.Price != nil && *req.Price < 0 {
		return httpError(c, apperr.E(apperr.Invalid, "price must not be negative"))
	}
	if req.TonerAmount != nil && *req.TonerAmount < 0 {
		return httpError(c, apperr.E(apperr.Invalid, "toner amount must not be negative"))
	}
	if req.Notes != nil && len(*req.Notes) > 1000 {
		return httpError(c, apperr.E(apperr.Invalid, "notes too long"))
	}

	proc, err := h.Repo.UpdateProcedure(c.Request().Context(), id, upd)
	if err != nil {
		return httpError(c, err)
	}

	publish(c, h.Producer, fmt.Sprint(proc.ID), map[string]interface{}{
		"type":        "procedure_updated",
		"procedureID": proc.ID,
		"clientID":    proc.ClientID,
	})

	return c.JSON(http.StatusOK, proc)
}

func (h *ProcedureHandler) DeleteProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.Repo.DeleteProcedure(c.Request().Context(), id); err != nil {
		return httpError(c, err)
	}

	publish(c, h.Producer, fmt.Sprint(id), map[string]interface{}{
		"type":        "procedure_deleted",
		"procedureID": id,
	})

	return c.NoContent(http.StatusNoContent)
}

func validateProcedure(req *procedureRequest) error {
	if req.ClientID == 0 {
		return apperr.E(apperr.Invalid, "client_id is required")
	}
	if req.Date == "" {
		return apperr.E(apperr.Invalid, "date is required")
	}
	if req.Kind == "" || len(req.Kind) > 100 {
		return apperr.E(apperr.Invalid, "kind must be 1-100 characters")
	}
	if req.Price == nil || *req.Price < 0 {
		return apperr.E(apperr.Invalid, "price must not be negative")
	}
	if req.TonerAmount != nil && *req.TonerAmount < 0 {
		return apperr.E(apperr.Invalid, "toner amount must not be negative")
	}
	if len(req.Notes) > 1000 {
		return apperr.E(apperr.Invalid, "notes too long")
	}
	return nil
}
