// Package ledgertest provides an in-memory ledger store for service tests.
// Transactions snapshot state on entry and roll back on error, mimicking the
// all-or-nothing behaviour of the Postgres repository.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// Repo is an in-memory ledger.Repository.
type Repo struct {
	Accounts map[int64]ledger.Account
	Entries  map[int64]ledger.JournalEntry
	Periods  map[int64]ledger.Period

	nextAccountID int64
	nextEntryID   int64
	nextLineID    int64
	nextPeriodID  int64

	now time.Time
}

// NewRepo constructs an empty store.
func NewRepo() *Repo {
	return &Repo{
		Accounts: make(map[int64]ledger.Account),
		Entries:  make(map[int64]ledger.JournalEntry),
		Periods:  make(map[int64]ledger.Period),
		now:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

// SeedChart creates the well-known accounts and returns them keyed by code.
func (r *Repo) SeedChart() map[string]ledger.Account {
	seed := []ledger.AccountInput{
		{Code: ledger.CodeCash, NameAr: "الصندوق", NameEn: "Cash", Type: ledger.AccountTypeAsset},
		{Code: ledger.CodeBank, NameAr: "البنك", NameEn: "Bank", Type: ledger.AccountTypeAsset},
		{Code: ledger.CodePayables, NameAr: "الذمم الدائنة", NameEn: "Accounts Payable", Type: ledger.AccountTypeLiability},
		{Code: ledger.CodeDepositsPayable, NameAr: "تأمينات مستردة", NameEn: "Deposits Payable", Type: ledger.AccountTypeLiability},
		{Code: ledger.CodeVATPayable, NameAr: "ضريبة القيمة المضافة", NameEn: "VAT Payable", Type: ledger.AccountTypeLiability},
		{Code: ledger.CodeRevenue, NameAr: "الإيرادات", NameEn: "Revenue", Type: ledger.AccountTypeRevenue},
		{Code: ledger.CodeExpense, NameAr: "المصروفات", NameEn: "Expense", Type: ledger.AccountTypeExpense},
	}
	out := make(map[string]ledger.Account, len(seed))
	for _, in := range seed {
		r.nextAccountID++
		account := ledger.Account{
			ID:        r.nextAccountID,
			Code:      in.Code,
			NameAr:    in.NameAr,
			NameEn:    in.NameEn,
			Type:      in.Type,
			IsActive:  true,
			CreatedAt: r.now,
			UpdatedAt: r.now,
		}
		r.Accounts[account.ID] = account
		out[account.Code] = account
	}
	return out
}

// AddPeriod seeds a fiscal period.
func (r *Repo) AddPeriod(start, end time.Time, locked bool) ledger.Period {
	r.nextPeriodID++
	p := ledger.Period{
		ID:        r.nextPeriodID,
		StartDate: start,
		EndDate:   end,
		IsLocked:  locked,
		CreatedAt: r.now,
		UpdatedAt: r.now,
	}
	if locked {
		at := r.now
		by := int64(1)
		p.LockedAt = &at
		p.LockedBy = &by
	}
	r.Periods[p.ID] = p
	return p
}

func (r *Repo) snapshot() *Repo {
	clone := &Repo{
		Accounts:      make(map[int64]ledger.Account, len(r.Accounts)),
		Entries:       make(map[int64]ledger.JournalEntry, len(r.Entries)),
		Periods:       make(map[int64]ledger.Period, len(r.Periods)),
		nextAccountID: r.nextAccountID,
		nextEntryID:   r.nextEntryID,
		nextLineID:    r.nextLineID,
		nextPeriodID:  r.nextPeriodID,
		now:           r.now,
	}
	for id, a := range r.Accounts {
		clone.Accounts[id] = a
	}
	for id, e := range r.Entries {
		lines := append([]ledger.JournalLine(nil), e.Lines...)
		e.Lines = lines
		clone.Entries[id] = e
	}
	for id, p := range r.Periods {
		clone.Periods[id] = p
	}
	return clone
}

func (r *Repo) restore(snap *Repo) {
	r.Accounts = snap.Accounts
	r.Entries = snap.Entries
	r.Periods = snap.Periods
	r.nextAccountID = snap.nextAccountID
	r.nextEntryID = snap.nextEntryID
	r.nextLineID = snap.nextLineID
	r.nextPeriodID = snap.nextPeriodID
}

// WithTx runs fn against a transactional view, rolling back on error.
func (r *Repo) WithTx(ctx context.Context, fn func(context.Context, ledger.TxRepository) error) error {
	snap := r.snapshot()
	if err := fn(ctx, &Tx{Repo: r}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

// ListAccounts returns accounts ordered by code.
func (r *Repo) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	out := make([]ledger.Account, 0, len(r.Accounts))
	for _, a := range r.Accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// ListPeriods returns periods ordered by start date.
func (r *Repo) ListPeriods(ctx context.Context) ([]ledger.Period, error) {
	out := make([]ledger.Period, 0, len(r.Periods))
	for _, p := range r.Periods {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// ListEntries returns entries in range ordered by date then id, lines attached.
func (r *Repo) ListEntries(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error) {
	var out []ledger.JournalEntry
	for _, e := range r.Entries {
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		e.Lines = append([]ledger.JournalLine(nil), e.Lines...)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Tx is the transactional view over Repo.
type Tx struct {
	Repo *Repo
}

func (t *Tx) InsertEntry(ctx context.Context, in ledger.EntryInput) (ledger.JournalEntry, error) {
	r := t.Repo
	r.nextEntryID++
	entry := ledger.JournalEntry{
		ID:            r.nextEntryID,
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
		CreatedAt:     r.now,
		UpdatedAt:     r.now,
	}
	r.Entries[entry.ID] = entry
	return entry, nil
}

func (t *Tx) InsertLines(ctx context.Context, entryID int64, lines []ledger.LineInput) error {
	r := t.Repo
	entry, ok := r.Entries[entryID]
	if !ok {
		return fmt.Errorf("ledgertest: entry %d: %w", entryID, shared.ErrNotFound)
	}
	for _, line := range lines {
		r.nextLineID++
		entry.Lines = append(entry.Lines, ledger.JournalLine{
			ID:            r.nextLineID,
			EntryID:       entryID,
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			DescriptionAr: line.DescriptionAr,
			DescriptionEn: line.DescriptionEn,
		})
	}
	r.Entries[entryID] = entry
	return nil
}

func (t *Tx) GetEntryWithLines(ctx context.Context, entryID int64) (ledger.JournalEntry, error) {
	entry, ok := t.Repo.Entries[entryID]
	if !ok {
		return ledger.JournalEntry{}, fmt.Errorf("ledgertest: entry %d: %w", entryID, shared.ErrNotFound)
	}
	entry.Lines = append([]ledger.JournalLine(nil), entry.Lines...)
	return entry, nil
}

func (t *Tx) UpdateEntryStatus(ctx context.Context, entryID int64, status ledger.EntryStatus) error {
	entry, ok := t.Repo.Entries[entryID]
	if !ok {
		return fmt.Errorf("ledgertest: entry %d: %w", entryID, shared.ErrNotFound)
	}
	entry.Status = status
	t.Repo.Entries[entryID] = entry
	return nil
}

func (t *Tx) SetEntryReplacedBy(ctx context.Context, entryID, successorID int64) error {
	entry, ok := t.Repo.Entries[entryID]
	if !ok {
		return fmt.Errorf("ledgertest: entry %d: %w", entryID, shared.ErrNotFound)
	}
	if entry.ReplacedBy != nil {
		return fmt.Errorf("ledgertest: entry %d already superseded: %w", entryID, shared.ErrInvalidStatus)
	}
	entry.ReplacedBy = &successorID
	t.Repo.Entries[entryID] = entry
	return nil
}

func (t *Tx) GetAccountByCode(ctx context.Context, code string) (ledger.Account, error) {
	for _, a := range t.Repo.Accounts {
		if a.Code == code && a.IsActive {
			return a, nil
		}
	}
	return ledger.Account{}, fmt.Errorf("ledgertest: account code %s: %w", code, shared.ErrNotFound)
}

func (t *Tx) InsertAccount(ctx context.Context, in ledger.AccountInput) (ledger.Account, error) {
	r := t.Repo
	for _, a := range r.Accounts {
		if a.Code == in.Code {
			return ledger.Account{}, fmt.Errorf("ledgertest: account code %s taken: %w", in.Code, shared.ErrDuplicate)
		}
	}
	r.nextAccountID++
	account := ledger.Account{
		ID:        r.nextAccountID,
		Code:      in.Code,
		NameAr:    in.NameAr,
		NameEn:    in.NameEn,
		Type:      in.Type,
		IsActive:  true,
		CreatedAt: r.now,
		UpdatedAt: r.now,
	}
	r.Accounts[account.ID] = account
	return account, nil
}

func (t *Tx) FindPeriodByDate(ctx context.Context, date time.Time) (*ledger.Period, error) {
	for _, p := range t.Repo.Periods {
		if p.Covers(date) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (t *Tx) GetPeriodForUpdate(ctx context.Context, periodID int64) (ledger.Period, error) {
	p, ok := t.Repo.Periods[periodID]
	if !ok {
		return ledger.Period{}, fmt.Errorf("ledgertest: period %d: %w", periodID, shared.ErrNotFound)
	}
	return p, nil
}

func (t *Tx) HasPeriodOverlap(ctx context.Context, start, end time.Time) (bool, error) {
	for _, p := range t.Repo.Periods {
		if !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tx) InsertPeriod(ctx context.Context, in ledger.PeriodInput) (ledger.Period, error) {
	r := t.Repo
	r.nextPeriodID++
	p := ledger.Period{
		ID:        r.nextPeriodID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		CreatedAt: r.now,
		UpdatedAt: r.now,
	}
	r.Periods[p.ID] = p
	return p, nil
}

func (t *Tx) MarkPeriodLocked(ctx context.Context, periodID, lockedBy int64, lockedAt time.Time) error {
	p, ok := t.Repo.Periods[periodID]
	if !ok {
		return fmt.Errorf("ledgertest: period %d: %w", periodID, shared.ErrNotFound)
	}
	if p.IsLocked {
		return fmt.Errorf("ledgertest: period %d already locked: %w", periodID, shared.ErrInvalidStatus)
	}
	p.IsLocked = true
	p.LockedAt = &lockedAt
	p.LockedBy = &lockedBy
	t.Repo.Periods[periodID] = p
	return nil
}

// AuditRecorder captures audit entries for assertions.
type AuditRecorder struct {
	Records []audit.Entry
}

// Record appends the entry.
func (a *AuditRecorder) Record(ctx context.Context, entry audit.Entry) error {
	a.Records = append(a.Records, entry)
	return nil
}
