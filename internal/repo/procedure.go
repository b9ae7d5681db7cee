package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/models"
	"github.com/salonsys/salon-admin/internal/util"
)

type NewProcedure struct {
	ClientID    uint
	Date        time.Time
	Kind        string
	TonerAmount *float64
	Price       float64
	Notes       string
	Haircut     bool
}

type ProcedureUpdate struct {
	Date        *time.Time
	Kind        *string
	TonerAmount *float64
	Price       *float64
	Notes       *string
	Haircut     *bool
}

type ProcedureFilter struct {
	ClientID uint
	Search   string
	Kind     string
	DateFrom *time.Time
	DateTo   *time.Time
	Haircut  *bool
	Skip     int
	Limit    int
}

// CreateProcedure verifies the referenced client first; a dangling client id
// is a caller mistake, not a store fault.
func (r *Repo) CreateProcedure(ctx context.Context, np NewProcedure) (*models.Procedure, error) {
	if _, err := r.GetClient(ctx, np.ClientID); err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.E(apperr.Invalid, "client not found")
		}
		return nil, err
	}

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	proc := models.Procedure{
		ClientID:    np.ClientID,
		Date:        np.Date,
		Kind:        np.Kind,
		TonerAmount: np.TonerAmount,
		Price:       np.Price,
		Notes:       np.Notes,
		Haircut:     np.Haircut,
	}
	if err := r.DB.WithContext(qctx).Create(&proc).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "procedure create failed", err)
	}
	return &proc, nil
}

func (r *Repo) GetProcedure(ctx context.Context, id uint) (*models.Procedure, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var proc models.Procedure
	if err := r.DB.WithContext(qctx).First(&proc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "procedure not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable, "procedure lookup failed", err)
	}
	return &proc, nil
}

// ListProcedures applies the full filter set, newest first.
func (r *Repo) ListProcedures(ctx context.Context, f ProcedureFilter) ([]models.Procedure, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	skip, limit := util.Clamp(f.Skip, f.Limit)

	q := r.DB.WithContext(qctx).Model(&models.Procedure{})
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(kind) LIKE ? OR LOWER(notes) LIKE ?", pattern, pattern)
	}
	if f.Kind != "" {
		q = q.Where("LOWER(kind) LIKE ?", "%"+strings.ToLower(f.Kind)+"%")
	}
	if f.DateFrom != nil {
		q = q.Where("date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date <= ?", *f.DateTo)
	}
	if f.Haircut != nil {
		q = q.Where("haircut = ?", *f.Haircut)
	}

	var procs []models.Procedure
	if err := q.Order("date DESC").Offset(skip).Limit(limit).Find(&procs).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "procedure list failed", err)
	}
	return procs, nil
}

func (r *Repo) UpdateProcedure(ctx context.Context, id uint, upd ProcedureUpdate) (*models.Procedure, error) {
	proc, err := r.GetProcedure(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Date != nil {
		proc.Date = *upd.Date
	}
	if upd.Kind != nil {
		proc.Kind = *upd.Kind
	}
	if upd.TonerAmount != nil {
		proc.TonerAmount = upd.TonerAmount
	}
	if upd.Price != nil {
		proc.Price = *upd.Price
	}
	if upd.Notes != nil {
		proc.Notes = *upd.Notes
	}
	if upd.Haircut != nil {
		proc.Haircut = *upd.Haircut
	}

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	if err := r.DB.WithContext(qctx).Save(proc).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "procedure update failed", err)
	}
	return proc, nil
}

func (r *Repo) DeleteProcedure(ctx context.Context, id uint) error {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	res := r.DB.WithContext(qctx).Delete(&models.Procedure{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Unavailable, "procedure delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.E(apperr.NotFound, "procedure not found")
	}
	return nil
}
