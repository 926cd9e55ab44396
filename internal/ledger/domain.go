// Package ledger implements the double-entry core: chart of accounts,
// journal engine, and fiscal period locking. It is the sole writer of
// ledger truth; documents post through it, reports read from it.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// BalanceSide is the normal balance side of an account.
type BalanceSide string

const (
	SideDebit  BalanceSide = "DEBIT"
	SideCredit BalanceSide = "CREDIT"
)

// Well-known account codes the posting rules and reports depend on. Their
// absence fails the dependent operation before any side effect.
const (
	CodeCash            = "1000"
	CodeBank            = "1100"
	CodePayables        = "2000"
	CodeDepositsPayable = "2100"
	CodeVATPayable      = "2200"
	CodeRevenue         = "4000"
	CodeExpense         = "5000"
)

// EntryStatus enumerates journal entry lifecycle values.
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "DRAFT"
	EntryStatusApproved  EntryStatus = "APPROVED"
	EntryStatusCancelled EntryStatus = "CANCELLED"
)

// Account models a chart of accounts node.
type Account struct {
	ID        int64       `json:"id"`
	Code      string      `json:"code"`
	NameAr    string      `json:"nameAr"`
	NameEn    string      `json:"nameEn"`
	Type      AccountType `json:"type"`
	IsActive  bool        `json:"isActive"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NormalSide derives the balance side from the account type; it is never
// stored.
func (a Account) NormalSide() BalanceSide {
	switch a.Type {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// JournalEntry captures an atomic, balanced set of lines. Entries are never
// edited in place: corrections happen through cancellation or reversal, and
// ReplacedBy links an entry to its reversing successor.
type JournalEntry struct {
	ID            int64         `json:"id"`
	Date          time.Time     `json:"date"`
	Status        EntryStatus   `json:"status"`
	DescriptionAr string        `json:"descriptionAr,omitempty"`
	DescriptionEn string        `json:"descriptionEn,omitempty"`
	DocumentType  *string       `json:"documentType,omitempty"`
	DocumentID    *int64        `json:"documentId,omitempty"`
	ContactID     *int64        `json:"contactId,omitempty"`
	BankAccountID *int64        `json:"bankAccountId,omitempty"`
	PropertyID    *int64        `json:"propertyId,omitempty"`
	ProjectID     *int64        `json:"projectId,omitempty"`
	ReplacedBy    *int64        `json:"replacedBy,omitempty"`
	CreatedBy     int64         `json:"createdBy"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	Lines         []JournalLine `json:"lines"`
}

// Active reports whether the entry counts toward balances: cancelled and
// superseded entries are excluded from every aggregation.
func (e JournalEntry) Active() bool {
	return e.Status != EntryStatusCancelled && e.ReplacedBy == nil
}

// JournalLine stores one debit or credit amount for an account.
type JournalLine struct {
	ID            int64   `json:"id"`
	EntryID       int64   `json:"entryId"`
	AccountID     int64   `json:"accountId"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	DescriptionAr string  `json:"descriptionAr,omitempty"`
	DescriptionEn string  `json:"descriptionEn,omitempty"`
}

// Period represents a fiscal period window with a one-way OPEN to LOCKED
// transition. No unlock path exists.
type Period struct {
	ID        int64      `json:"id"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	IsLocked  bool       `json:"isLocked"`
	LockedAt  *time.Time `json:"lockedAt,omitempty"`
	LockedBy  *int64     `json:"lockedBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Covers reports whether the date falls inside the period window.
func (p Period) Covers(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// LineInput describes one journal line of a posting request.
type LineInput struct {
	AccountID     int64   `json:"accountId"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	DescriptionAr string  `json:"descriptionAr,omitempty"`
	DescriptionEn string  `json:"descriptionEn,omitempty"`
}

// EntryInput groups fields required to create a journal entry.
type EntryInput struct {
	Date          time.Time
	Status        EntryStatus
	DescriptionAr string
	DescriptionEn string
	DocumentType  *string
	DocumentID    *int64
	ContactID     *int64
	BankAccountID *int64
	PropertyID    *int64
	ProjectID     *int64
	CreatedBy     int64
	Lines         []LineInput
}

// Validate ensures the posting input meets the balance invariant. The status
// defaults to APPROVED when unset.
func (in *EntryInput) Validate() error {
	if in.Date.IsZero() {
		return fmt.Errorf("ledger: entry date required: %w", shared.ErrValidation)
	}
	switch in.Status {
	case "":
		in.Status = EntryStatusApproved
	case EntryStatusDraft, EntryStatusApproved:
	default:
		return fmt.Errorf("ledger: entry status %s not allowed at creation: %w", in.Status, shared.ErrValidation)
	}
	if len(in.Lines) < 2 {
		return fmt.Errorf("ledger: entry requires at least two lines: %w", shared.ErrValidation)
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account: %w", idx, shared.ErrValidation)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("ledger: line %d negative amount: %w", idx, shared.ErrValidation)
		}
		if line.Debit > 0 && line.Credit > 0 {
			return fmt.Errorf("ledger: line %d cannot be both debit and credit: %w", idx, shared.ErrValidation)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if fmt.Sprintf("%.2f", debit) != fmt.Sprintf("%.2f", credit) {
		return fmt.Errorf("ledger: debits %.2f != credits %.2f: %w", debit, credit, shared.ErrImbalanced)
	}
	return nil
}

// AccountInput groups fields required to create an account.
type AccountInput struct {
	Code   string
	NameAr string
	NameEn string
	Type   AccountType
}

// Validate checks account creation input.
func (in AccountInput) Validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return fmt.Errorf("ledger: account code required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(in.NameAr) == "" && strings.TrimSpace(in.NameEn) == "" {
		return fmt.Errorf("ledger: account name required: %w", shared.ErrValidation)
	}
	switch in.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return nil
	default:
		return fmt.Errorf("ledger: unknown account type %q: %w", in.Type, shared.ErrValidation)
	}
}

// PeriodInput groups fields required to create a fiscal period.
type PeriodInput struct {
	StartDate time.Time
	EndDate   time.Time
}

// Validate checks period creation input.
func (in PeriodInput) Validate() error {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return fmt.Errorf("ledger: period start and end required: %w", shared.ErrValidation)
	}
	if in.StartDate.After(in.EndDate) {
		return fmt.Errorf("ledger: period start after end: %w", shared.ErrValidation)
	}
	return nil
}
