// Package reports recomputes financial statements from raw journal lines on
// every call. No running balances are materialised, so a report can never
// drift from the entries it is derived from.
package reports

import (
	"math"
	"sort"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
)

// epsilon elides rows whose movement rounds to zero.
const epsilon = 0.001

// TrialBalanceRow aggregates one account's movement over the range.
type TrialBalanceRow struct {
	AccountID   int64              `json:"accountId"`
	Code        string             `json:"code"`
	NameAr      string             `json:"nameAr"`
	NameEn      string             `json:"nameEn"`
	Type        ledger.AccountType `json:"type"`
	TotalDebit  float64            `json:"totalDebit"`
	TotalCredit float64            `json:"totalCredit"`
	Balance     float64            `json:"balance"`
}

// TrialBalance lists per-account movements plus grand totals.
type TrialBalance struct {
	FromDate    string            `json:"fromDate,omitempty"`
	ToDate      string            `json:"toDate,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64           `json:"totalDebit"`
	TotalCredit float64           `json:"totalCredit"`
}

// BuildTrialBalance sums debits and credits per account over active entries.
// The balance carries the account's normal sign: debit minus credit for
// assets and expenses, credit minus debit otherwise. Near-zero rows are
// dropped; rows sort by account code.
func BuildTrialBalance(accounts []ledger.Account, entries []ledger.JournalEntry) TrialBalance {
	debits, credits := sumByAccount(entries)

	report := TrialBalance{Rows: []TrialBalanceRow{}}
	for _, account := range accounts {
		debit := debits[account.ID]
		credit := credits[account.ID]
		if math.Abs(debit) < epsilon && math.Abs(credit) < epsilon {
			continue
		}
		balance := debit - credit
		if account.NormalSide() == ledger.SideCredit {
			balance = credit - debit
		}
		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountID:   account.ID,
			Code:        account.Code,
			NameAr:      account.NameAr,
			NameEn:      account.NameEn,
			Type:        account.Type,
			TotalDebit:  debit,
			TotalCredit: credit,
			Balance:     balance,
		})
		report.TotalDebit += debit
		report.TotalCredit += credit
	}
	sort.Slice(report.Rows, func(i, j int) bool { return report.Rows[i].Code < report.Rows[j].Code })
	return report
}

// sumByAccount folds active entries into per-account debit and credit totals.
func sumByAccount(entries []ledger.JournalEntry) (debits, credits map[int64]float64) {
	debits = map[int64]float64{}
	credits = map[int64]float64{}
	for _, entry := range entries {
		if !entry.Active() {
			continue
		}
		for _, line := range entry.Lines {
			debits[line.AccountID] += line.Debit
			credits[line.AccountID] += line.Credit
		}
	}
	return debits, credits
}
