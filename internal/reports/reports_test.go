package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger/ledgertest"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
	"github.com/muhasaba-erp/muhasaba-erp/internal/reports"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

func seededLedger(t *testing.T) (*ledgertest.Repo, map[string]ledger.Account, *ledger.Service, context.Context) {
	t.Helper()
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc := ledger.NewService(repo, rbac.NewGuard(), nil, nil)
	ctx := auth.ContextWithPrincipal(context.Background(), &auth.Principal{UserID: 7, Role: auth.RoleAccountant})
	return repo, accounts, svc, ctx
}

func post(t *testing.T, svc *ledger.Service, ctx context.Context, date time.Time, lines []ledger.LineInput) ledger.JournalEntry {
	t.Helper()
	entry, err := svc.CreateEntry(ctx, ledger.EntryInput{Date: date, Lines: lines})
	require.NoError(t, err)
	return entry
}

func TestTrialBalanceQuarter(t *testing.T) {
	repo, accounts, svc, ctx := seededLedger(t)
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID
	vat := accounts[ledger.CodeVATPayable].ID

	q1 := func(day int) time.Time { return time.Date(2025, 2, day, 0, 0, 0, 0, time.UTC) }
	post(t, svc, ctx, q1(1), []ledger.LineInput{
		{AccountID: cash, Debit: 105}, {AccountID: revenue, Credit: 100}, {AccountID: vat, Credit: 5},
	})
	post(t, svc, ctx, q1(10), []ledger.LineInput{
		{AccountID: cash, Debit: 210}, {AccountID: revenue, Credit: 200}, {AccountID: vat, Credit: 10},
	})
	post(t, svc, ctx, q1(20), []ledger.LineInput{
		{AccountID: cash, Debit: 52.5}, {AccountID: revenue, Credit: 50}, {AccountID: vat, Credit: 2.5},
	})

	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	tb, err := reportSvc.TrialBalance(ctx, &from, &to)
	require.NoError(t, err)

	assert.InDelta(t, 367.5, tb.TotalDebit, 0.0001)
	assert.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.0001)
	require.Len(t, tb.Rows, 3)
	assert.Equal(t, ledger.CodeCash, tb.Rows[0].Code)
	assert.InDelta(t, 367.5, tb.Rows[0].Balance, 0.0001)
	assert.Equal(t, ledger.CodeVATPayable, tb.Rows[1].Code)
	assert.InDelta(t, 17.5, tb.Rows[1].Balance, 0.0001)
	assert.Equal(t, ledger.CodeRevenue, tb.Rows[2].Code)
	assert.InDelta(t, 350, tb.Rows[2].Balance, 0.0001)
}

func TestTrialBalanceSkipsCancelledAndSuperseded(t *testing.T) {
	repo, accounts, svc, _ := seededLedger(t)
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID
	ctx := auth.ContextWithPrincipal(context.Background(), &auth.Principal{UserID: 9, Role: auth.RoleApprover})

	date := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	kept := post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: cash, Debit: 100}, {AccountID: revenue, Credit: 100},
	})
	cancelled := post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: cash, Debit: 40}, {AccountID: revenue, Credit: 40},
	})
	reversed := post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: cash, Debit: 25}, {AccountID: revenue, Credit: 25},
	})

	_, err := svc.CancelEntry(ctx, cancelled.ID, "void")
	require.NoError(t, err)
	_, err = svc.ReverseEntry(ctx, reversed.ID)
	require.NoError(t, err)
	_ = kept

	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)
	tb, err := reportSvc.TrialBalance(ctx, nil, nil)
	require.NoError(t, err)

	// The reversal contributes symmetrically, so cash nets to the kept entry.
	assert.InDelta(t, 125, tb.TotalDebit, 0.0001)
	assert.InDelta(t, tb.TotalDebit, tb.TotalCredit, 0.0001)
	require.Len(t, tb.Rows, 2)
	assert.InDelta(t, 75, tb.Rows[0].Balance, 0.0001)
}

func TestIncomeStatement(t *testing.T) {
	repo, accounts, svc, ctx := seededLedger(t)
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID
	expense := accounts[ledger.CodeExpense].ID

	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: cash, Debit: 1000}, {AccountID: revenue, Credit: 1000},
	})
	post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: expense, Debit: 300}, {AccountID: cash, Credit: 300},
	})

	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)
	income, err := reportSvc.IncomeStatement(ctx, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1000, income.RevenueTotal, 0.0001)
	assert.InDelta(t, 300, income.ExpenseTotal, 0.0001)
	assert.InDelta(t, 700, income.NetIncome, 0.0001)
	require.Len(t, income.Revenue, 1)
	require.Len(t, income.Expenses, 1)
}

func TestBalanceSheetFoldsNetIncome(t *testing.T) {
	repo, accounts, svc, ctx := seededLedger(t)
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID
	vat := accounts[ledger.CodeVATPayable].ID

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	post(t, svc, ctx, date, []ledger.LineInput{
		{AccountID: cash, Debit: 105}, {AccountID: revenue, Credit: 100}, {AccountID: vat, Credit: 5},
	})

	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	bs, err := reportSvc.BalanceSheet(ctx, &asOf)
	require.NoError(t, err)

	assert.InDelta(t, 105, bs.TotalAssets, 0.0001)
	assert.InDelta(t, 5, bs.TotalLiabilities, 0.0001)
	assert.InDelta(t, 100, bs.NetIncome, 0.0001)
	assert.InDelta(t, 100, bs.TotalEquity, 0.0001)
	assert.InDelta(t, bs.TotalAssets, bs.TotalLiabilities+bs.TotalEquity, 0.0001)
}

func TestBalanceSheetPriorYearIncomeNotCounted(t *testing.T) {
	repo, accounts, svc, ctx := seededLedger(t)
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID

	post(t, svc, ctx, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), []ledger.LineInput{
		{AccountID: cash, Debit: 500}, {AccountID: revenue, Credit: 500},
	})
	post(t, svc, ctx, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), []ledger.LineInput{
		{AccountID: cash, Debit: 200}, {AccountID: revenue, Credit: 200},
	})

	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)
	asOf := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	bs, err := reportSvc.BalanceSheet(ctx, &asOf)
	require.NoError(t, err)
	assert.InDelta(t, 200, bs.NetIncome, 0.0001)
	assert.InDelta(t, 700, bs.TotalAssets, 0.0001)
}

func TestReportsRequirePermission(t *testing.T) {
	repo, _, _, _ := seededLedger(t)
	reportSvc := reports.NewService(repo, rbac.NewGuard(), nil)

	_, err := reportSvc.TrialBalance(context.Background(), nil, nil)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}
