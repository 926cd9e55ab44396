package jobs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger/ledgertest"
	"github.com/muhasaba-erp/muhasaba-erp/internal/observability"
	"github.com/muhasaba-erp/muhasaba-erp/jobs"
)

func TestIntegrityCheckerCountsViolations(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	err := repo.WithTx(context.Background(), func(ctx context.Context, tx ledger.TxRepository) error {
		good, err := tx.InsertEntry(ctx, ledger.EntryInput{Date: date, Status: ledger.EntryStatusApproved})
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, good.ID, []ledger.LineInput{
			{AccountID: cash, Debit: 100}, {AccountID: revenue, Credit: 100},
		}); err != nil {
			return err
		}
		bad, err := tx.InsertEntry(ctx, ledger.EntryInput{Date: date, Status: ledger.EntryStatusApproved})
		if err != nil {
			return err
		}
		return tx.InsertLines(ctx, bad.ID, []ledger.LineInput{
			{AccountID: cash, Debit: 100}, {AccountID: revenue, Credit: 90},
		})
	})
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	checker := jobs.NewIntegrityChecker(repo, nil, metrics)
	require.NoError(t, checker.Run(context.Background()))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `muhasaba_ledger_integrity_violations_total 1`), body)
	assert.True(t, strings.Contains(body, `muhasaba_jobs_total{job="ledger_integrity",result="ok"} 1`), body)
}

func TestIntegrityCheckerSkipsCancelled(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	cash := accounts[ledger.CodeCash].ID
	revenue := accounts[ledger.CodeRevenue].ID

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	err := repo.WithTx(context.Background(), func(ctx context.Context, tx ledger.TxRepository) error {
		entry, err := tx.InsertEntry(ctx, ledger.EntryInput{Date: date, Status: ledger.EntryStatusApproved})
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, entry.ID, []ledger.LineInput{
			{AccountID: cash, Debit: 100}, {AccountID: revenue, Credit: 90},
		}); err != nil {
			return err
		}
		return tx.UpdateEntryStatus(ctx, entry.ID, ledger.EntryStatusCancelled)
	})
	require.NoError(t, err)

	metrics := observability.NewMetrics()
	checker := jobs.NewIntegrityChecker(repo, nil, metrics)
	require.NoError(t, checker.Run(context.Background()))

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.False(t, strings.Contains(rr.Body.String(), `muhasaba_ledger_integrity_violations_total 1`))
}
