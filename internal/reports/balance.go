package reports

import (
	"math"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
)

// BalanceSheet states the cumulative financial position as of one date.
// NetIncome is the current fiscal year's result, folded into total equity as
// undistributed earnings.
type BalanceSheet struct {
	AsOfDate         string       `json:"asOfDate"`
	Assets           []ReportItem `json:"assets"`
	Liabilities      []ReportItem `json:"liabilities"`
	Equity           []ReportItem `json:"equity"`
	NetIncome        float64      `json:"netIncome"`
	TotalAssets      float64      `json:"totalAssets"`
	TotalLiabilities float64      `json:"totalLiabilities"`
	TotalEquity      float64      `json:"totalEquity"`
}

// BuildBalanceSheet accumulates every active entry dated on or before asOf.
// Assets carry debit minus credit, liabilities and equity the flipped sign.
// The year-to-date net income (from January 1st of asOf's year) joins total
// equity so the statement balances mid-year.
func BuildBalanceSheet(accounts []ledger.Account, entries []ledger.JournalEntry, asOf time.Time) BalanceSheet {
	debits, credits := sumByAccount(entries)

	report := BalanceSheet{
		AsOfDate:    asOf.Format("2006-01-02"),
		Assets:      []ReportItem{},
		Liabilities: []ReportItem{},
		Equity:      []ReportItem{},
	}
	for _, account := range accounts {
		switch account.Type {
		case ledger.AccountTypeAsset:
			amount := debits[account.ID] - credits[account.ID]
			if math.Abs(amount) < epsilon {
				continue
			}
			report.Assets = append(report.Assets, reportItem(account, amount))
			report.TotalAssets += amount
		case ledger.AccountTypeLiability:
			amount := credits[account.ID] - debits[account.ID]
			if math.Abs(amount) < epsilon {
				continue
			}
			report.Liabilities = append(report.Liabilities, reportItem(account, amount))
			report.TotalLiabilities += amount
		case ledger.AccountTypeEquity:
			amount := credits[account.ID] - debits[account.ID]
			if math.Abs(amount) < epsilon {
				continue
			}
			report.Equity = append(report.Equity, reportItem(account, amount))
			report.TotalEquity += amount
		}
	}
	sortItems(report.Assets)
	sortItems(report.Liabilities)
	sortItems(report.Equity)

	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	var ytd []ledger.JournalEntry
	for _, entry := range entries {
		if !entry.Date.Before(yearStart) {
			ytd = append(ytd, entry)
		}
	}
	income := BuildIncomeStatement(accounts, ytd)
	report.NetIncome = income.NetIncome
	report.TotalEquity += income.NetIncome
	return report
}
