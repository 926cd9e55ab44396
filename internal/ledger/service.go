package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Guard checks caller permissions and resolves the acting principal.
type Guard interface {
	Require(ctx context.Context, perm rbac.Permission) error
	Principal(ctx context.Context) (auth.Principal, error)
}

// CacheBumper invalidates cached report reads after a mutation.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service coordinates journal postings, cancellations, and reversals.
type Service struct {
	repo  Repository
	guard Guard
	audit AuditPort
	cache CacheBumper
	now   func() time.Time
}

// NewService constructs the ledger service.
func NewService(repo Repository, guard Guard, auditor AuditPort, cache CacheBumper) *Service {
	return &Service{repo: repo, guard: guard, audit: auditor, cache: cache, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateEntry validates and persists a new journal entry. Header and lines
// commit as one unit; the status defaults to APPROVED unless DRAFT is
// requested explicitly.
func (s *Service) CreateEntry(ctx context.Context, in EntryInput) (JournalEntry, error) {
	if err := s.guard.Require(ctx, rbac.PermJournalCreate); err != nil {
		return JournalEntry{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return JournalEntry{}, err
	}
	in.CreatedBy = principal.UserID

	var entry JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var txErr error
		entry, txErr = s.PostWithinTx(ctx, tx, in)
		return txErr
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.recordAudit(ctx, "journal.create", entry.ID, principal.UserID, "", nil, map[string]any{
		"status": string(entry.Status),
		"date":   entry.Date.Format("2006-01-02"),
		"lines":  len(entry.Lines),
	})
	s.bump(ctx)
	return entry, nil
}

// PostWithinTx runs the full validation path and persists the entry inside an
// existing transaction. The documents service uses it so a document and its
// triggered entry commit or roll back as one unit.
func (s *Service) PostWithinTx(ctx context.Context, tx TxRepository, in EntryInput) (JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return JournalEntry{}, err
	}
	if err := ensurePeriodOpen(ctx, tx, in.Date); err != nil {
		return JournalEntry{}, err
	}
	entry, err := tx.InsertEntry(ctx, in)
	if err != nil {
		return JournalEntry{}, err
	}
	if err := tx.InsertLines(ctx, entry.ID, in.Lines); err != nil {
		return JournalEntry{}, err
	}
	return tx.GetEntryWithLines(ctx, entry.ID)
}

// CancelEntry marks an entry CANCELLED. A second cancellation of the same
// entry is rejected rather than silently repeated, and superseded entries
// cannot be cancelled.
func (s *Service) CancelEntry(ctx context.Context, entryID int64, reason string) (JournalEntry, error) {
	if err := s.guard.Require(ctx, rbac.PermJournalCancel); err != nil {
		return JournalEntry{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return JournalEntry{}, err
	}

	var entry JournalEntry
	var prevStatus EntryStatus
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryWithLines(ctx, entryID)
		if err != nil {
			return err
		}
		if current.Status == EntryStatusCancelled {
			return fmt.Errorf("ledger: entry %d already cancelled: %w", entryID, shared.ErrInvalidStatus)
		}
		if current.ReplacedBy != nil {
			return fmt.Errorf("ledger: entry %d superseded by %d: %w", entryID, *current.ReplacedBy, shared.ErrInvalidStatus)
		}
		if err := ensurePeriodOpen(ctx, tx, current.Date); err != nil {
			return err
		}
		if err := tx.UpdateEntryStatus(ctx, current.ID, EntryStatusCancelled); err != nil {
			return err
		}
		prevStatus = current.Status
		current.Status = EntryStatusCancelled
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.recordAudit(ctx, "journal.cancel", entry.ID, principal.UserID, reason,
		map[string]any{"status": string(prevStatus)},
		map[string]any{"status": string(EntryStatusCancelled)})
	s.bump(ctx)
	return entry, nil
}

// ReverseEntry creates a successor with every line's debit and credit
// swapped and links the original to it via ReplacedBy. The original is
// permanently excluded from aggregation afterwards. The reversal carries the
// original date, so entries inside a locked period cannot be reversed;
// corrections then require a fresh entry in an open period.
func (s *Service) ReverseEntry(ctx context.Context, entryID int64) (JournalEntry, error) {
	if err := s.guard.Require(ctx, rbac.PermJournalCancel); err != nil {
		return JournalEntry{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return JournalEntry{}, err
	}

	var reversal JournalEntry
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryWithLines(ctx, entryID)
		if err != nil {
			return err
		}
		if !original.Active() {
			return fmt.Errorf("ledger: entry %d is not active: %w", entryID, shared.ErrInvalidStatus)
		}
		if err := ensurePeriodOpen(ctx, tx, original.Date); err != nil {
			return err
		}
		in := EntryInput{
			Date:          original.Date,
			Status:        EntryStatusApproved,
			DescriptionAr: reversalDescriptionAr(original),
			DescriptionEn: reversalDescriptionEn(original),
			DocumentType:  original.DocumentType,
			DocumentID:    original.DocumentID,
			ContactID:     original.ContactID,
			BankAccountID: original.BankAccountID,
			PropertyID:    original.PropertyID,
			ProjectID:     original.ProjectID,
			CreatedBy:     principal.UserID,
			Lines:         reverseLines(original.Lines),
		}
		reversal, err = s.PostWithinTx(ctx, tx, in)
		if err != nil {
			return err
		}
		return tx.SetEntryReplacedBy(ctx, original.ID, reversal.ID)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.recordAudit(ctx, "journal.reverse", entryID, principal.UserID, "",
		map[string]any{"replacedBy": nil},
		map[string]any{"replacedBy": reversal.ID})
	s.bump(ctx)
	return reversal, nil
}

// ListEntries returns entries whose date falls in the range, lines attached.
func (s *Service) ListEntries(ctx context.Context, from, to *time.Time) ([]JournalEntry, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return nil, err
	}
	return s.repo.ListEntries(ctx, from, to)
}

// GetEntry loads a single entry with lines.
func (s *Service) GetEntry(ctx context.Context, entryID int64) (JournalEntry, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var txErr error
		entry, txErr = tx.GetEntryWithLines(ctx, entryID)
		return txErr
	})
	return entry, err
}

func ensurePeriodOpen(ctx context.Context, tx TxRepository, date time.Time) error {
	period, err := tx.FindPeriodByDate(ctx, date)
	if err != nil {
		return err
	}
	if period != nil && period.IsLocked {
		return fmt.Errorf("ledger: period %d covering %s: %w", period.ID, date.Format("2006-01-02"), shared.ErrPeriodLocked)
	}
	return nil
}

func reverseLines(lines []JournalLine) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID:     line.AccountID,
			Debit:         line.Credit,
			Credit:        line.Debit,
			DescriptionAr: line.DescriptionAr,
			DescriptionEn: line.DescriptionEn,
		})
	}
	return out
}

func reversalDescriptionEn(original JournalEntry) string {
	return fmt.Sprintf("Reversal of entry %d", original.ID)
}

func reversalDescriptionAr(original JournalEntry) string {
	return fmt.Sprintf("عكس القيد %d", original.ID)
}

func (s *Service) recordAudit(ctx context.Context, action string, entryID, userID int64, reason string, prev, next map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.Entry{
		At:            s.now(),
		Action:        action,
		Entity:        "journal_entry",
		EntityID:      strconv.FormatInt(entryID, 10),
		UserID:        &userID,
		Reason:        reason,
		PreviousState: prev,
		NewState:      next,
	})
}

func (s *Service) bump(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}
