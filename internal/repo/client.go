package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/salonsys/salon-admin/internal/apperr"
	"github.com/salonsys/salon-admin/internal/models"
	"github.com/salonsys/salon-admin/internal/util"
)

type ClientFilter struct {
	Search string
	Skip   int
	Limit  int
}

type ClientUpdate struct {
	Name *string `json:"name"`
}

func (r *Repo) CreateClient(ctx context.Context, name string) (*models.Client, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	client := models.Client{Name: name}
	if err := r.DB.WithContext(qctx).Create(&client).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "client create failed", err)
	}
	return &client, nil
}

func (r *Repo) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	var client models.Client
	if err := r.DB.WithContext(qctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "client not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable, "client lookup failed", err)
	}
	return &client, nil
}

// ListClients filters by name substring, ordered by name. LOWER(...) LIKE is
// used instead of ILIKE so the same query runs on postgres and sqlite.
func (r *Repo) ListClients(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	skip, limit := util.Clamp(f.Skip, f.Limit)

	q := r.DB.WithContext(qctx).Model(&models.Client{})
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}

	var clients []models.Client
	if err := q.Order("name ASC").Offset(skip).Limit(limit).Find(&clients).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "client list failed", err)
	}
	return clients, nil
}

func (r *Repo) UpdateClient(ctx context.Context, id uint, upd ClientUpdate) (*models.Client, error) {
	client, err := r.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		client.Name = *upd.Name
	}

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	if err := r.DB.WithContext(qctx).Save(client).Error; err != nil {
		return nil, apperr.Wrap(apperr.Unavailable, "client update failed", err)
	}
	return client, nil
}

// SetClientPhoto records the stored photo filename and returns the previous
// one so the caller can clean it up.
func (r *Repo) SetClientPhoto(ctx context.Context, id uint, path string) (*models.Client, string, error) {
	client, err := r.GetClient(ctx, id)
	if err != nil {
		return nil, "", err
	}
	previous := client.PhotoPath

	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	if err := r.DB.WithContext(qctx).Model(client).Update("photo_path", path).Error; err != nil {
		return nil, "", apperr.Wrap(apperr.Unavailable, "client update failed", err)
	}
	client.PhotoPath = path
	return client, previous, nil
}

// DeleteClient removes the client and, via FK cascade, its procedures.
func (r *Repo) DeleteClient(ctx context.Context, id uint) error {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()

	res := r.DB.WithContext(qctx).Delete(&models.Client{}, id)
	if res.Error != nil {
		return apperr.Wrap(apperr.Unavailable, "client delete failed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.E(apperr.NotFound, "client not found")
	}
	return nil
}
