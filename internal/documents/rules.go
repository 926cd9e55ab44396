package documents

import (
	"context"
	"fmt"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// AccountResolver looks up chart accounts inside the posting transaction.
type AccountResolver interface {
	GetAccountByCode(ctx context.Context, code string) (ledger.Account, error)
}

// PostingRule builds the journal lines for one document type. A rule returns
// an error wrapping shared.ErrConfiguration when a required chart account is
// missing, which aborts the whole posting.
type PostingRule func(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error)

// Registry maps document types to their posting rules.
type Registry struct {
	rules map[DocumentType]PostingRule
}

// NewRegistry constructs the registry with the built-in rules.
func NewRegistry() *Registry {
	return &Registry{rules: map[DocumentType]PostingRule{
		TypeReceipt:     moneyInRule,
		TypeInvoice:     moneyInRule,
		TypePurchaseInv: purchaseInvoiceRule,
		TypePayment:     paymentRule,
		TypeDeposit:     depositRule,
	}}
}

// Lines applies the rule for the document type.
func (r *Registry) Lines(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error) {
	rule, ok := r.rules[in.Type]
	if !ok {
		return nil, fmt.Errorf("documents: no posting rule for type %s: %w", in.Type, shared.ErrConfiguration)
	}
	return rule(ctx, resolver, in)
}

func resolve(ctx context.Context, resolver AccountResolver, code string) (ledger.Account, error) {
	account, err := resolver.GetAccountByCode(ctx, code)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("documents: chart account %s unavailable: %w", code, shared.ErrConfiguration)
	}
	return account, nil
}

// cashOrBank picks the bank account when the document names a bank account,
// the cash account otherwise.
func cashOrBank(ctx context.Context, resolver AccountResolver, in DocumentInput) (ledger.Account, error) {
	code := ledger.CodeCash
	if in.BankAccountID != nil {
		code = ledger.CodeBank
	}
	return resolve(ctx, resolver, code)
}

// moneyInRule covers receipts and invoices: money in against revenue, with
// the VAT share owed to the tax authority.
func moneyInRule(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error) {
	money, err := cashOrBank(ctx, resolver, in)
	if err != nil {
		return nil, err
	}
	revenue, err := resolve(ctx, resolver, ledger.CodeRevenue)
	if err != nil {
		return nil, err
	}
	lines := []ledger.LineInput{
		{AccountID: money.ID, Debit: in.TotalAmount},
		{AccountID: revenue.ID, Credit: in.Amount},
	}
	if in.VATAmount > 0 {
		vat, err := resolve(ctx, resolver, ledger.CodeVATPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledger.LineInput{AccountID: vat.ID, Credit: in.VATAmount})
	}
	return lines, nil
}

// purchaseInvoiceRule allocates item amounts to their accounts, sends any
// unallocated remainder to the general expense account, books input VAT as a
// debit against the VAT liability, and credits payables with the total.
func purchaseInvoiceRule(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error) {
	var lines []ledger.LineInput
	allocated := 0.0
	for _, item := range in.Items {
		accountID := int64(0)
		switch {
		case item.AccountID != nil:
			accountID = *item.AccountID
		case item.AccountCode != nil:
			account, err := resolve(ctx, resolver, *item.AccountCode)
			if err != nil {
				return nil, err
			}
			accountID = account.ID
		default:
			continue
		}
		lines = append(lines, ledger.LineInput{
			AccountID:     accountID,
			Debit:         item.Amount,
			DescriptionEn: item.Description,
		})
		allocated += item.Amount
	}
	if remainder := in.Amount - allocated; remainder > 0.004 {
		expense, err := resolve(ctx, resolver, ledger.CodeExpense)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledger.LineInput{AccountID: expense.ID, Debit: remainder})
	}
	if in.VATAmount > 0 {
		vat, err := resolve(ctx, resolver, ledger.CodeVATPayable)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ledger.LineInput{AccountID: vat.ID, Debit: in.VATAmount})
	}
	payables, err := resolve(ctx, resolver, ledger.CodePayables)
	if err != nil {
		return nil, err
	}
	lines = append(lines, ledger.LineInput{AccountID: payables.ID, Credit: in.TotalAmount})
	return lines, nil
}

// paymentRule books an outgoing payment as expense against cash or bank.
func paymentRule(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error) {
	expense, err := resolve(ctx, resolver, ledger.CodeExpense)
	if err != nil {
		return nil, err
	}
	money, err := cashOrBank(ctx, resolver, in)
	if err != nil {
		return nil, err
	}
	return []ledger.LineInput{
		{AccountID: expense.ID, Debit: in.TotalAmount},
		{AccountID: money.ID, Credit: in.TotalAmount},
	}, nil
}

// depositRule books a refundable deposit as a liability until it is returned.
func depositRule(ctx context.Context, resolver AccountResolver, in DocumentInput) ([]ledger.LineInput, error) {
	money, err := cashOrBank(ctx, resolver, in)
	if err != nil {
		return nil, err
	}
	deposits, err := resolve(ctx, resolver, ledger.CodeDepositsPayable)
	if err != nil {
		return nil, err
	}
	return []ledger.LineInput{
		{AccountID: money.ID, Debit: in.TotalAmount},
		{AccountID: deposits.ID, Credit: in.TotalAmount},
	}, nil
}
