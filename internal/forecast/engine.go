// Package forecast fits least-squares trends over trailing monthly totals of
// revenue, expense, and cash movement, and projects them forward.
package forecast

import (
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
)

const monthLayout = "2006-01"

// MonthPoint is one month's value in a series.
type MonthPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// Series carries a history, its projection, and the fitted trend.
type Series struct {
	History  []MonthPoint `json:"history"`
	Forecast []MonthPoint `json:"forecast"`
	Average  float64      `json:"average"`
	Slope    float64      `json:"slope"`
}

// Forecast bundles the three projected series.
type Forecast struct {
	Months         int    `json:"months"`
	ForecastMonths int    `json:"forecastMonths"`
	Revenue        Series `json:"revenue"`
	Expense        Series `json:"expense"`
	CashFlow       Series `json:"cashFlow"`
}

// Build aggregates the trailing months ending at now's month and projects
// horizon further months. Revenue and expense projections clamp to zero;
// cash flow may legitimately go negative.
func Build(accounts []ledger.Account, entries []ledger.JournalEntry, now time.Time, months, horizon int) Forecast {
	if months < 1 {
		months = 1
	}
	if horizon < 1 {
		horizon = 1
	}

	revenueIDs := map[int64]bool{}
	expenseIDs := map[int64]bool{}
	cashIDs := map[int64]bool{}
	for _, account := range accounts {
		switch {
		case account.Type == ledger.AccountTypeRevenue:
			revenueIDs[account.ID] = true
		case account.Type == ledger.AccountTypeExpense:
			expenseIDs[account.ID] = true
		case account.Code == ledger.CodeCash || account.Code == ledger.CodeBank:
			cashIDs[account.ID] = true
		}
	}

	labels := make([]string, months)
	index := map[string]int{}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		label := first.AddDate(0, i, 0).Format(monthLayout)
		labels[i] = label
		index[label] = i
	}

	revenue := make([]float64, months)
	expense := make([]float64, months)
	cash := make([]float64, months)
	for _, entry := range entries {
		if !entry.Active() {
			continue
		}
		i, ok := index[entry.Date.Format(monthLayout)]
		if !ok {
			continue
		}
		for _, line := range entry.Lines {
			switch {
			case revenueIDs[line.AccountID]:
				revenue[i] += line.Credit - line.Debit
			case expenseIDs[line.AccountID]:
				expense[i] += line.Debit - line.Credit
			case cashIDs[line.AccountID]:
				cash[i] += line.Debit - line.Credit
			}
		}
	}

	return Forecast{
		Months:         months,
		ForecastMonths: horizon,
		Revenue:        buildSeries(labels, revenue, first, horizon, true),
		Expense:        buildSeries(labels, expense, first, horizon, true),
		CashFlow:       buildSeries(labels, cash, first, horizon, false),
	}
}

func buildSeries(labels []string, values []float64, first time.Time, horizon int, clamp bool) Series {
	slope, intercept := fitLine(values)

	series := Series{Slope: slope}
	sum := 0.0
	for i, v := range values {
		series.History = append(series.History, MonthPoint{Month: labels[i], Value: v})
		sum += v
	}
	if len(values) > 0 {
		series.Average = sum / float64(len(values))
	}
	for k := 1; k <= horizon; k++ {
		projected := intercept + slope*float64(len(values)-1+k)
		if clamp && projected < 0 {
			projected = 0
		}
		month := first.AddDate(0, len(values)-1+k, 0).Format(monthLayout)
		series.Forecast = append(series.Forecast, MonthPoint{Month: month, Value: projected})
	}
	return series
}

// fitLine computes the closed-form least-squares slope and intercept against
// index 0..n-1. With fewer than two points the slope is zero and the
// intercept is the single observation, or zero absent data.
func fitLine(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) < 2 {
		if len(values) == 1 {
			return 0, values[0]
		}
		return 0, 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
