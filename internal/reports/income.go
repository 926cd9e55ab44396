package reports

import (
	"math"
	"sort"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
)

// ReportItem is one account's contribution to a statement section.
type ReportItem struct {
	AccountID int64   `json:"accountId"`
	Code      string  `json:"code"`
	NameAr    string  `json:"nameAr"`
	NameEn    string  `json:"nameEn"`
	Amount    float64 `json:"amount"`
}

// IncomeStatement breaks revenue and expense down by account.
type IncomeStatement struct {
	FromDate     string       `json:"fromDate,omitempty"`
	ToDate       string       `json:"toDate,omitempty"`
	Revenue      []ReportItem `json:"revenue"`
	Expenses     []ReportItem `json:"expenses"`
	RevenueTotal float64      `json:"revenueTotal"`
	ExpenseTotal float64      `json:"expenseTotal"`
	NetIncome    float64      `json:"netIncome"`
}

// BuildIncomeStatement nets each revenue account as credit minus debit and
// each expense account as debit minus credit over active entries in range.
func BuildIncomeStatement(accounts []ledger.Account, entries []ledger.JournalEntry) IncomeStatement {
	debits, credits := sumByAccount(entries)

	report := IncomeStatement{Revenue: []ReportItem{}, Expenses: []ReportItem{}}
	for _, account := range accounts {
		switch account.Type {
		case ledger.AccountTypeRevenue:
			amount := credits[account.ID] - debits[account.ID]
			if math.Abs(amount) < epsilon {
				continue
			}
			report.Revenue = append(report.Revenue, reportItem(account, amount))
			report.RevenueTotal += amount
		case ledger.AccountTypeExpense:
			amount := debits[account.ID] - credits[account.ID]
			if math.Abs(amount) < epsilon {
				continue
			}
			report.Expenses = append(report.Expenses, reportItem(account, amount))
			report.ExpenseTotal += amount
		}
	}
	sortItems(report.Revenue)
	sortItems(report.Expenses)
	report.NetIncome = report.RevenueTotal - report.ExpenseTotal
	return report
}

func reportItem(account ledger.Account, amount float64) ReportItem {
	return ReportItem{
		AccountID: account.ID,
		Code:      account.Code,
		NameAr:    account.NameAr,
		NameEn:    account.NameEn,
		Amount:    amount,
	}
}

func sortItems(items []ReportItem) {
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
}
