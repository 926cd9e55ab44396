package ledger

import (
	"context"
	"time"
)

// TxRepository exposes the transactional operations the journal engine needs.
// Every mutation of ledger truth happens through one of these inside WithTx.
type TxRepository interface {
	InsertEntry(ctx context.Context, in EntryInput) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineInput) error
	GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error)
	UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus) error
	SetEntryReplacedBy(ctx context.Context, entryID, successorID int64) error

	GetAccountByCode(ctx context.Context, code string) (Account, error)
	InsertAccount(ctx context.Context, in AccountInput) (Account, error)

	FindPeriodByDate(ctx context.Context, date time.Time) (*Period, error)
	GetPeriodForUpdate(ctx context.Context, periodID int64) (Period, error)
	HasPeriodOverlap(ctx context.Context, start, end time.Time) (bool, error)
	InsertPeriod(ctx context.Context, in PeriodInput) (Period, error)
	MarkPeriodLocked(ctx context.Context, periodID, lockedBy int64, lockedAt time.Time) error
}

// Repository abstracts the ledger store. Read methods run outside any
// transaction; reports and the forecast recompute from them on demand.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListAccounts(ctx context.Context) ([]Account, error)
	ListPeriods(ctx context.Context) ([]Period, error)
	// ListEntries returns entries with lines whose date falls in the
	// half-open-default range; nil bounds mean unbounded.
	ListEntries(ctx context.Context, from, to *time.Time) ([]JournalEntry, error)
}
