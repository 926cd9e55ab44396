package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/cache"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
)

// Reader supplies the chart and raw entries the builders aggregate.
type Reader interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	ListEntries(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
}

// Service serves the three reports behind the fetch-through cache.
type Service struct {
	reader Reader
	guard  ledger.Guard
	cache  *cache.Cache
}

// NewService constructs the reports service.
func NewService(reader Reader, guard ledger.Guard, c *cache.Cache) *Service {
	return &Service{reader: reader, guard: guard, cache: c}
}

// load fetches the chart and the entries in range concurrently.
func (s *Service) load(ctx context.Context, from, to *time.Time) ([]ledger.Account, []ledger.JournalEntry, error) {
	var (
		accounts []ledger.Account
		entries  []ledger.JournalEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.reader.ListAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.reader.ListEntries(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return accounts, entries, nil
}

func datePart(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// TrialBalance computes the trial balance for the range.
func (s *Service) TrialBalance(ctx context.Context, from, to *time.Time) (TrialBalance, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return TrialBalance{}, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "tb", datePart(from), datePart(to))
	if err != nil {
		return TrialBalance{}, err
	}
	var report TrialBalance
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		accounts, entries, err := s.load(ctx, from, to)
		if err != nil {
			return nil, err
		}
		tb := BuildTrialBalance(accounts, entries)
		tb.FromDate = datePart(from)
		tb.ToDate = datePart(to)
		return tb, nil
	})
	return report, err
}

// IncomeStatement computes the income statement for the range.
func (s *Service) IncomeStatement(ctx context.Context, from, to *time.Time) (IncomeStatement, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return IncomeStatement{}, err
	}
	key, err := s.cache.BuildKey(ctx, "reports", "income", datePart(from), datePart(to))
	if err != nil {
		return IncomeStatement{}, err
	}
	var report IncomeStatement
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		accounts, entries, err := s.load(ctx, from, to)
		if err != nil {
			return nil, err
		}
		income := BuildIncomeStatement(accounts, entries)
		income.FromDate = datePart(from)
		income.ToDate = datePart(to)
		return income, nil
	})
	return report, err
}

// BalanceSheet computes the cumulative position as of the date. asOf
// defaults to today when nil.
func (s *Service) BalanceSheet(ctx context.Context, asOf *time.Time) (BalanceSheet, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return BalanceSheet{}, err
	}
	at := time.Now()
	if asOf != nil {
		at = *asOf
	}
	key, err := s.cache.BuildKey(ctx, "reports", "bs", at.Format("2006-01-02"))
	if err != nil {
		return BalanceSheet{}, err
	}
	var report BalanceSheet
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		accounts, entries, err := s.load(ctx, nil, &at)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(accounts, entries, at), nil
	})
	return report, err
}
