package forecast

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/cache"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
)

const (
	defaultMonths  = 6
	defaultHorizon = 3
	maxMonths      = 36
	maxHorizon     = 12
)

// Reader supplies the chart and raw entries the engine aggregates.
type Reader interface {
	ListAccounts(ctx context.Context) ([]ledger.Account, error)
	ListEntries(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
}

// Service serves forecasts behind the fetch-through cache.
type Service struct {
	reader Reader
	guard  ledger.Guard
	cache  *cache.Cache
	now    func() time.Time
}

// NewService constructs the forecast service.
func NewService(reader Reader, guard ledger.Guard, c *cache.Cache) *Service {
	return &Service{reader: reader, guard: guard, cache: c, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get aggregates and projects using the given window, applying defaults and
// caps when the parameters are zero or out of range.
func (s *Service) Get(ctx context.Context, months, horizon int) (Forecast, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return Forecast{}, err
	}
	if months <= 0 {
		months = defaultMonths
	}
	if months > maxMonths {
		months = maxMonths
	}
	if horizon <= 0 {
		horizon = defaultHorizon
	}
	if horizon > maxHorizon {
		horizon = maxHorizon
	}

	at := s.now()
	key, err := s.cache.BuildKey(ctx, "forecast",
		fmt.Sprintf("%d:%d:%s", months, horizon, at.Format(monthLayout)))
	if err != nil {
		return Forecast{}, err
	}
	var out Forecast
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		from := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
		to := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1)

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
			entries, err = s.reader.ListEntries(gctx, &from, &to)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return Build(accounts, entries, at, months, horizon), nil
	})
	return out, err
}
