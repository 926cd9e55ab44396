package documents_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhasaba-erp/muhasaba-erp/internal/documents"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger/ledgertest"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

func lineFor(t *testing.T, lines []ledger.LineInput, accountID int64) ledger.LineInput {
	t.Helper()
	for _, line := range lines {
		if line.AccountID == accountID {
			return line
		}
	}
	t.Fatalf("no line for account %d", accountID)
	return ledger.LineInput{}
}

func sums(lines []ledger.LineInput) (debit, credit float64) {
	for _, line := range lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

func TestReceiptRuleCashWithVAT(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypeReceipt,
		Amount:      100,
		VATAmount:   5,
		TotalAmount: 105,
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, 105.0, lineFor(t, lines, accounts[ledger.CodeCash].ID).Debit)
	assert.Equal(t, 100.0, lineFor(t, lines, accounts[ledger.CodeRevenue].ID).Credit)
	assert.Equal(t, 5.0, lineFor(t, lines, accounts[ledger.CodeVATPayable].ID).Credit)

	debit, credit := sums(lines)
	assert.Equal(t, debit, credit)
}

func TestInvoiceRuleBankNoVAT(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()
	bankAccount := int64(42)

	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:          documents.TypeInvoice,
		Amount:        250,
		TotalAmount:   250,
		BankAccountID: &bankAccount,
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 250.0, lineFor(t, lines, accounts[ledger.CodeBank].ID).Debit)
	assert.Equal(t, 250.0, lineFor(t, lines, accounts[ledger.CodeRevenue].ID).Credit)
}

func TestPurchaseInvoiceRuleItemAllocation(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	itemA := accounts[ledger.CodeBank].ID
	itemB := accounts[ledger.CodeCash].ID
	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypePurchaseInv,
		Amount:      200,
		VATAmount:   10,
		TotalAmount: 210,
		Items: []documents.ItemInput{
			{Amount: 80, AccountID: &itemA},
			{Amount: 60, AccountID: &itemB},
		},
	})
	require.NoError(t, err)
	require.Len(t, lines, 5)

	assert.Equal(t, 80.0, lineFor(t, lines, itemA).Debit)
	assert.Equal(t, 60.0, lineFor(t, lines, itemB).Debit)
	assert.Equal(t, 60.0, lineFor(t, lines, accounts[ledger.CodeExpense].ID).Debit)
	assert.Equal(t, 10.0, lineFor(t, lines, accounts[ledger.CodeVATPayable].ID).Debit)
	assert.Equal(t, 210.0, lineFor(t, lines, accounts[ledger.CodePayables].ID).Credit)

	debit, credit := sums(lines)
	assert.Equal(t, debit, credit)
}

func TestPurchaseInvoiceRuleNoItems(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypePurchaseInv,
		Amount:      300,
		TotalAmount: 300,
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 300.0, lineFor(t, lines, accounts[ledger.CodeExpense].ID).Debit)
	assert.Equal(t, 300.0, lineFor(t, lines, accounts[ledger.CodePayables].ID).Credit)
}

func TestPaymentRule(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypePayment,
		Amount:      120,
		TotalAmount: 120,
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 120.0, lineFor(t, lines, accounts[ledger.CodeExpense].ID).Debit)
	assert.Equal(t, 120.0, lineFor(t, lines, accounts[ledger.CodeCash].ID).Credit)
}

func TestDepositRule(t *testing.T) {
	repo := ledgertest.NewRepo()
	accounts := repo.SeedChart()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	lines, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypeDeposit,
		Amount:      500,
		TotalAmount: 500,
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 500.0, lineFor(t, lines, accounts[ledger.CodeCash].ID).Debit)
	assert.Equal(t, 500.0, lineFor(t, lines, accounts[ledger.CodeDepositsPayable].ID).Credit)
}

func TestRuleMissingChartAccount(t *testing.T) {
	repo := ledgertest.NewRepo()
	resolver := &ledgertest.Tx{Repo: repo}
	registry := documents.NewRegistry()

	_, err := registry.Lines(context.Background(), resolver, documents.DocumentInput{
		Type:        documents.TypeReceipt,
		Amount:      100,
		TotalAmount: 100,
	})
	require.ErrorIs(t, err, shared.ErrConfiguration)
}
