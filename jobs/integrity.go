package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/observability"
)

// EntryLister reads stored journal entries with their lines.
type EntryLister interface {
	ListEntries(ctx context.Context, from, to *time.Time) ([]ledger.JournalEntry, error)
}

// IntegrityChecker re-verifies that every active stored entry still balances.
// The invariant is enforced at write time, so any hit here means corruption
// outside the application path and is worth alerting on.
type IntegrityChecker struct {
	entries EntryLister
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewIntegrityChecker constructs the checker.
func NewIntegrityChecker(entries EntryLister, logger *slog.Logger, metrics *observability.Metrics) *IntegrityChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityChecker{entries: entries, logger: logger, metrics: metrics}
}

// Run scans all entries and reports imbalanced ones. It returns an error only
// when the scan itself fails; violations are logged and counted.
func (c *IntegrityChecker) Run(ctx context.Context) error {
	entries, err := c.entries.ListEntries(ctx, nil, nil)
	if err != nil {
		c.metrics.ObserveJob("ledger_integrity", err)
		return fmt.Errorf("jobs: integrity scan: %w", err)
	}

	violations := 0
	for _, entry := range entries {
		if !entry.Active() {
			continue
		}
		var debit, credit float64
		for _, line := range entry.Lines {
			debit += line.Debit
			credit += line.Credit
		}
		if fmt.Sprintf("%.2f", debit) != fmt.Sprintf("%.2f", credit) {
			violations++
			c.logger.Error("imbalanced journal entry",
				slog.Int64("entryId", entry.ID),
				slog.Float64("debit", debit),
				slog.Float64("credit", credit))
		}
	}
	c.metrics.ObserveJob("ledger_integrity", nil)
	c.metrics.CountIntegrityViolations(violations)
	c.logger.Info("ledger integrity scan finished",
		slog.Int("entries", len(entries)),
		slog.Int("violations", violations))
	return nil
}

// Handle adapts Run to an Asynq handler.
func (c *IntegrityChecker) Handle(ctx context.Context, _ *asynq.Task) error {
	return c.Run(ctx)
}
