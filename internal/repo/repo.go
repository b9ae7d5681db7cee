package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// queryTimeout bounds every store access so a stalled connection cannot pin
// a request forever.
const queryTimeout = 3 * time.Second

type Repo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *Repo {
	return &Repo{DB: gdb}
}

func (r *Repo) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, queryTimeout)
}

// isUniqueViolation matches both the translated gorm error and the raw
// driver messages of postgres and sqlite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
