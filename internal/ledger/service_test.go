package ledger_test

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
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

func ctxAs(role auth.Role, userID int64) context.Context {
	return auth.ContextWithPrincipal(context.Background(), &auth.Principal{UserID: userID, Role: role})
}

func newTestService(repo *ledgertest.Repo) (*ledger.Service, *ledgertest.AuditRecorder) {
	recorder := &ledgertest.AuditRecorder{}
	svc := ledger.NewService(repo, rbac.NewGuard(), recorder, nil)
	svc.WithNow(func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) })
	return svc, recorder
}

func balancedInput(accounts map[string]ledger.Account, date time.Time) ledger.EntryInput {
	return ledger.EntryInput{
		Date:          date,
		DescriptionEn: "Office rent",
		Lines: []ledger.LineInput{
			{AccountID: accounts[ledger.CodeExpense].ID, Debit: 500},
			{AccountID: accounts[ledger.CodeCash].ID, Credit: 500},
		},
	}
}

func TestCreateEntryBalanced(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, recorder := newTestService(repo)
	ctx := ctxAs(auth.RoleAccountant, 7)

	entry, err := svc.CreateEntry(ctx, balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusApproved, entry.Status)
	assert.Equal(t, int64(7), entry.CreatedBy)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, 500.0, entry.Lines[0].Debit)
	assert.Equal(t, 500.0, entry.Lines[1].Credit)

	require.Len(t, recorder.Records, 1)
	assert.Equal(t, "journal.create", recorder.Records[0].Action)
	assert.Equal(t, "journal_entry", recorder.Records[0].Entity)
}

func TestCreateEntryKeepsDraftStatus(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)

	in := balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	in.Status = ledger.EntryStatusDraft
	entry, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7), in)
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusDraft, entry.Status)
}

func TestCreateEntryImbalanced(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, recorder := newTestService(repo)

	in := balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	in.Lines[1].Credit = 499.99
	_, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7), in)
	require.ErrorIs(t, err, shared.ErrImbalanced)
	assert.Empty(t, repo.Entries)
	assert.Empty(t, recorder.Records)
}

func TestCreateEntryRequiresTwoLines(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)

	in := balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	in.Lines = in.Lines[:1]
	_, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateEntryRejectsLineWithBothSides(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)

	in := balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	in.Lines[0].Credit = 500
	_, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7), in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateEntryLockedPeriod(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	repo.AddPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		true,
	)
	svc, _ := newTestService(repo)

	_, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7),
		balancedInput(accounts, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	assert.Empty(t, repo.Entries)
}

func TestCreateEntryDateWithoutPeriodIsOpen(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	repo.AddPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		true,
	)
	svc, _ := newTestService(repo)

	_, err := svc.CreateEntry(ctxAs(auth.RoleAccountant, 7),
		balancedInput(accounts, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
}

func TestCreateEntryFailsClosedWithoutPrincipal(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)

	_, err := svc.CreateEntry(context.Background(),
		balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreateEntryDeniedForAuditor(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)

	_, err := svc.CreateEntry(ctxAs(auth.RoleAuditor, 3),
		balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCancelEntry(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, recorder := newTestService(repo)
	ctx := ctxAs(auth.RoleApprover, 9)

	entry, err := svc.CreateEntry(ctx, balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	cancelled, err := svc.CancelEntry(ctx, entry.ID, "duplicate posting")
	require.NoError(t, err)
	assert.Equal(t, ledger.EntryStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.Active())

	last := recorder.Records[len(recorder.Records)-1]
	assert.Equal(t, "journal.cancel", last.Action)
	assert.Equal(t, "duplicate posting", last.Reason)

	_, err = svc.CancelEntry(ctx, entry.ID, "again")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestCancelEntryNotFound(t *testing.T) {
	repo := ledgertest.NewRepo()
	repo.SeedChart()
	svc, _ := newTestService(repo)

	_, err := svc.CancelEntry(ctxAs(auth.RoleApprover, 9), 404, "")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestReverseEntry(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)
	ctx := ctxAs(auth.RoleApprover, 9)

	original, err := svc.CreateEntry(ctx, balancedInput(accounts, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	reversal, err := svc.ReverseEntry(ctx, original.ID)
	require.NoError(t, err)
	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, 500.0, reversal.Lines[0].Credit)
	assert.Equal(t, 500.0, reversal.Lines[1].Debit)
	assert.True(t, reversal.Date.Equal(original.Date))

	stored, err := svc.GetEntry(ctx, original.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReplacedBy)
	assert.Equal(t, reversal.ID, *stored.ReplacedBy)
	assert.False(t, stored.Active())
	assert.True(t, reversal.Active())

	_, err = svc.ReverseEntry(ctx, original.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	_, err = svc.CancelEntry(ctx, original.ID, "too late")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestReverseEntryLockedPeriod(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	svc, _ := newTestService(repo)
	ctx := ctxAs(auth.RoleApprover, 9)

	original, err := svc.CreateEntry(ctx, balancedInput(accounts, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	repo.AddPeriod(
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		true,
	)

	_, err = svc.ReverseEntry(ctx, original.ID)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)

	stored, err := svc.GetEntry(ctx, original.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReplacedBy)
}

func TestLockPeriod(t *testing.T) {
	repo := ledgertest.NewRepo()
	repo.SeedChart()
	period := repo.AddPeriod(
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		false,
	)
	svc, recorder := newTestService(repo)
	ctx := ctxAs(auth.RoleAdmin, 1)

	locked, err := svc.LockPeriod(ctx, period.ID)
	require.NoError(t, err)
	assert.True(t, locked.IsLocked)
	require.NotNil(t, locked.LockedBy)
	assert.Equal(t, int64(1), *locked.LockedBy)
	require.NotNil(t, locked.LockedAt)

	last := recorder.Records[len(recorder.Records)-1]
	assert.Equal(t, "period.lock", last.Action)

	_, err = svc.LockPeriod(ctx, period.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestLockPeriodDeniedForAccountant(t *testing.T) {
	repo := ledgertest.NewRepo()
	period := repo.AddPeriod(
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		false,
	)
	svc, _ := newTestService(repo)

	_, err := svc.LockPeriod(ctxAs(auth.RoleAccountant, 7), period.ID)
	require.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestCreatePeriodRejectsOverlap(t *testing.T) {
	repo := ledgertest.NewRepo()
	repo.AddPeriod(
		time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
		false,
	)
	svc, _ := newTestService(repo)

	_, err := svc.CreatePeriod(ctxAs(auth.RoleAdmin, 1), ledger.PeriodInput{
		StartDate: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateAccountDuplicateCode(t *testing.T) {
	repo := ledgertest.NewRepo()
	repo.SeedChart()
	svc, _ := newTestService(repo)
	ctx := ctxAs(auth.RoleAdmin, 1)

	_, err := svc.CreateAccount(ctx, ledger.AccountInput{
		Code:   ledger.CodeCash,
		NameEn: "Petty cash",
		Type:   ledger.AccountTypeAsset,
	})
	require.ErrorIs(t, err, shared.ErrDuplicate)

	created, err := svc.CreateAccount(ctx, ledger.AccountInput{
		Code:   "1200",
		NameEn: "Petty cash",
		Type:   ledger.AccountTypeAsset,
	})
	require.NoError(t, err)
	assert.Equal(t, "1200", created.Code)
	assert.Equal(t, ledger.SideDebit, created.NormalSide())
}
