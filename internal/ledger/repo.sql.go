package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// PgRepository persists ledger entities in Postgres.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// WithTx executes fn within a repeatable-read transaction.
func (r *PgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &pgTx{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const accountColumns = `id, code, name_ar, name_en, type, is_active, created_at, updated_at`

// ListAccounts retrieves the chart ordered by code.
func (r *PgRepository) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListPeriods retrieves all fiscal periods ordered by start date.
func (r *PgRepository) ListPeriods(ctx context.Context) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, start_date, end_date, is_locked, locked_at, locked_by, created_at, updated_at
FROM fiscal_periods ORDER BY start_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.StartDate, &p.EndDate, &p.IsLocked, &p.LockedAt, &p.LockedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

const entryColumns = `id, date, status, description_ar, description_en, document_type, document_id,
contact_id, bank_account_id, property_id, project_id, replaced_by, created_by, created_at, updated_at`

// ListEntries retrieves entries in range, lines attached, ordered by date.
func (r *PgRepository) ListEntries(ctx context.Context, from, to *time.Time) ([]JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE ($1::date IS NULL OR date >= $1)
  AND ($2::date IS NULL OR date <= $2)
ORDER BY date, id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	index := map[int64]int{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	lineRows, err := r.pool.Query(ctx, `SELECT l.id, l.entry_id, l.account_id, l.debit, l.credit, l.description_ar, l.description_en
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE ($1::date IS NULL OR e.date >= $1)
  AND ($2::date IS NULL OR e.date <= $2)
ORDER BY l.entry_id, l.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var l JournalLine
		if err := lineRows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.DescriptionAr, &l.DescriptionEn); err != nil {
			return nil, err
		}
		if idx, ok := index[l.EntryID]; ok {
			entries[idx].Lines = append(entries[idx].Lines, l)
		}
	}
	return entries, lineRows.Err()
}

// NewTx wraps an open pgx transaction as a TxRepository. Other repositories
// embed it so their writes share one transaction with the ledger's.
func NewTx(tx pgx.Tx) TxRepository {
	return &pgTx{tx: tx}
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) InsertEntry(ctx context.Context, in EntryInput) (JournalEntry, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO journal_entries
(date, status, description_ar, description_en, document_type, document_id, contact_id, bank_account_id, property_id, project_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		in.Date, in.Status, in.DescriptionAr, in.DescriptionEn, in.DocumentType, in.DocumentID,
		in.ContactID, in.BankAccountID, in.PropertyID, in.ProjectID, in.CreatedBy)
	entry := JournalEntry{
		Date:          in.Date,
		Status:        in.Status,
		DescriptionAr: in.DescriptionAr,
		DescriptionEn: in.DescriptionEn,
		DocumentType:  in.DocumentType,
		DocumentID:    in.DocumentID,
		ContactID:     in.ContactID,
		BankAccountID: in.BankAccountID,
		PropertyID:    in.PropertyID,
		ProjectID:     in.ProjectID,
		CreatedBy:     in.CreatedBy,
	}
	if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (t *pgTx) InsertLines(ctx context.Context, entryID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := t.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, description_ar, description_en)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, line.Debit, line.Credit, line.DescriptionAr, line.DescriptionEn); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) GetEntryWithLines(ctx context.Context, entryID int64) (JournalEntry, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, entryID)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, fmt.Errorf("ledger: entry %d: %w", entryID, shared.ErrNotFound)
		}
		return JournalEntry{}, err
	}
	rows, err := t.tx.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, description_ar, description_en
FROM journal_lines WHERE entry_id=$1 ORDER BY id`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l JournalLine
		if err := rows.Scan(&l.ID, &l.EntryID, &l.AccountID, &l.Debit, &l.Credit, &l.DescriptionAr, &l.DescriptionEn); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, l)
	}
	return entry, rows.Err()
}

func (t *pgTx) UpdateEntryStatus(ctx context.Context, entryID int64, status EntryStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE journal_entries SET status=$2, updated_at=NOW() WHERE id=$1`, entryID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: entry %d: %w", entryID, shared.ErrNotFound)
	}
	return nil
}

func (t *pgTx) SetEntryReplacedBy(ctx context.Context, entryID, successorID int64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE journal_entries SET replaced_by=$2, updated_at=NOW() WHERE id=$1 AND replaced_by IS NULL`, entryID, successorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: entry %d already superseded: %w", entryID, shared.ErrInvalidStatus)
	}
	return nil
}

func (t *pgTx) GetAccountByCode(ctx context.Context, code string) (Account, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE code=$1 AND is_active`, code)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("ledger: account code %s: %w", code, shared.ErrNotFound)
		}
		return Account{}, err
	}
	return a, nil
}

func (t *pgTx) InsertAccount(ctx context.Context, in AccountInput) (Account, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO accounts (code, name_ar, name_en, type)
VALUES ($1,$2,$3,$4) RETURNING `+accountColumns, in.Code, in.NameAr, in.NameEn, in.Type)
	a, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, fmt.Errorf("ledger: account code %s taken: %w", in.Code, shared.ErrDuplicate)
		}
		return Account{}, err
	}
	return a, nil
}

func (t *pgTx) FindPeriodByDate(ctx context.Context, date time.Time) (*Period, error) {
	row := t.tx.QueryRow(ctx, `SELECT id, start_date, end_date, is_locked, locked_at, locked_by, created_at, updated_at
FROM fiscal_periods WHERE start_date <= $1 AND end_date >= $1 LIMIT 1`, date)
	var p Period
	err := row.Scan(&p.ID, &p.StartDate, &p.EndDate, &p.IsLocked, &p.LockedAt, &p.LockedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (t *pgTx) GetPeriodForUpdate(ctx context.Context, periodID int64) (Period, error) {
	row := t.tx.QueryRow(ctx, `SELECT id, start_date, end_date, is_locked, locked_at, locked_by, created_at, updated_at
FROM fiscal_periods WHERE id=$1 FOR UPDATE`, periodID)
	var p Period
	err := row.Scan(&p.ID, &p.StartDate, &p.EndDate, &p.IsLocked, &p.LockedAt, &p.LockedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, fmt.Errorf("ledger: period %d: %w", periodID, shared.ErrNotFound)
		}
		return Period{}, err
	}
	return p, nil
}

func (t *pgTx) HasPeriodOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fiscal_periods WHERE start_date <= $2 AND end_date >= $1)`, start, end).Scan(&exists)
	return exists, err
}

func (t *pgTx) InsertPeriod(ctx context.Context, in PeriodInput) (Period, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO fiscal_periods (start_date, end_date)
VALUES ($1,$2) RETURNING id, start_date, end_date, is_locked, locked_at, locked_by, created_at, updated_at`, in.StartDate, in.EndDate)
	var p Period
	err := row.Scan(&p.ID, &p.StartDate, &p.EndDate, &p.IsLocked, &p.LockedAt, &p.LockedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (t *pgTx) MarkPeriodLocked(ctx context.Context, periodID, lockedBy int64, lockedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE fiscal_periods SET is_locked=TRUE, locked_at=$2, locked_by=$3, updated_at=NOW()
WHERE id=$1 AND NOT is_locked`, periodID, lockedAt, lockedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ledger: period %d already locked: %w", periodID, shared.ErrInvalidStatus)
	}
	return nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.NameAr, &a.NameEn, &a.Type, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.Date, &e.Status, &e.DescriptionAr, &e.DescriptionEn, &e.DocumentType, &e.DocumentID,
		&e.ContactID, &e.BankAccountID, &e.PropertyID, &e.ProjectID, &e.ReplacedBy, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
