package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// ListPeriods returns all fiscal periods with their lock state.
func (s *Service) ListPeriods(ctx context.Context) ([]Period, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return nil, err
	}
	return s.repo.ListPeriods(ctx)
}

// CreatePeriod inserts a new open fiscal period after checking overlap
// against existing windows.
func (s *Service) CreatePeriod(ctx context.Context, in PeriodInput) (Period, error) {
	if err := s.guard.Require(ctx, rbac.PermPeriodLock); err != nil {
		return Period{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return Period{}, err
	}
	if err := in.Validate(); err != nil {
		return Period{}, err
	}
	var period Period
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		conflict, err := tx.HasPeriodOverlap(ctx, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("ledger: period overlaps an existing window: %w", shared.ErrValidation)
		}
		period, err = tx.InsertPeriod(ctx, in)
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.recordPeriodAudit(ctx, "period.create", period.ID, principal.UserID, nil, map[string]any{
		"startDate": period.StartDate.Format("2006-01-02"),
		"endDate":   period.EndDate.Format("2006-01-02"),
	})
	return period, nil
}

// LockPeriod performs the one-way OPEN to LOCKED transition, stamping who
// locked the period and when. Locked periods stay locked: no unlock
// transition exists.
func (s *Service) LockPeriod(ctx context.Context, periodID int64) (Period, error) {
	if err := s.guard.Require(ctx, rbac.PermPeriodLock); err != nil {
		return Period{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return Period{}, err
	}
	var period Period
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetPeriodForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if current.IsLocked {
			return fmt.Errorf("ledger: period %d already locked: %w", periodID, shared.ErrInvalidStatus)
		}
		lockedAt := s.now()
		if err := tx.MarkPeriodLocked(ctx, periodID, principal.UserID, lockedAt); err != nil {
			return err
		}
		current.IsLocked = true
		current.LockedAt = &lockedAt
		lockedBy := principal.UserID
		current.LockedBy = &lockedBy
		period = current
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	s.recordPeriodAudit(ctx, "period.lock", period.ID, principal.UserID,
		map[string]any{"isLocked": false},
		map[string]any{"isLocked": true})
	return period, nil
}

func (s *Service) recordPeriodAudit(ctx context.Context, action string, periodID, userID int64, prev, next map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.Entry{
		At:            s.now(),
		Action:        action,
		Entity:        "fiscal_period",
		EntityID:      strconv.FormatInt(periodID, 10),
		UserID:        &userID,
		PreviousState: prev,
		NewState:      next,
	})
}
