package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
)

// Repository persists audit entries.
type Repository interface {
	Insert(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter QueryFilter) ([]Entry, error)
}

// Guard checks caller permissions.
type Guard interface {
	Require(ctx context.Context, perm rbac.Permission) error
}

// Service coordinates audit writes and guarded reads.
type Service struct {
	repo  Repository
	guard Guard
	now   func() time.Time
}

// NewService constructs the audit service.
func NewService(repo Repository, guard Guard) *Service {
	return &Service{repo: repo, guard: guard, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Record appends an entry. Records are never mutated or deleted afterwards.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	if entry.Action == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("audit: entry requires action, entity, and entity id")
	}
	if entry.At.IsZero() {
		entry.At = s.now()
	}
	if entry.RecordID == uuid.Nil {
		entry.RecordID = uuid.New()
	}
	return s.repo.Insert(ctx, entry)
}

// Query returns records newest first. The limit defaults to 100 and is
// clamped to 500.
func (s *Service) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	if s.guard != nil {
		if err := s.guard.Require(ctx, rbac.PermAuditView); err != nil {
			return nil, err
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultQueryLimit
	}
	if filter.Limit > MaxQueryLimit {
		filter.Limit = MaxQueryLimit
	}
	return s.repo.Query(ctx, filter)
}
