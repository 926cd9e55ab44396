// Package documents turns business documents into balanced journal entries.
// Each document type carries a posting rule that decides which accounts move;
// the document and its entry always commit in the same transaction.
package documents

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// DocumentType identifies the posting rule applied to a document.
type DocumentType string

const (
	TypeReceipt     DocumentType = "RECEIPT"
	TypeInvoice     DocumentType = "INVOICE"
	TypePurchaseInv DocumentType = "PURCHASE_INV"
	TypePayment     DocumentType = "PAYMENT"
	TypeDeposit     DocumentType = "DEPOSIT"
)

// DocumentStatus tracks a document through its lifecycle. Only APPROVED and
// PAID documents trigger a journal entry.
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "DRAFT"
	StatusApproved  DocumentStatus = "APPROVED"
	StatusPaid      DocumentStatus = "PAID"
	StatusCancelled DocumentStatus = "CANCELLED"
)

// Document is a persisted business document. SerialNumber is assigned at
// creation, EntryID links to the journal entry when one was posted.
type Document struct {
	ID            int64          `json:"id"`
	SerialNumber  string         `json:"serialNumber"`
	Type          DocumentType   `json:"type"`
	Status        DocumentStatus `json:"status"`
	Date          time.Time      `json:"date"`
	Amount        float64        `json:"amount"`
	VATAmount     float64        `json:"vatAmount"`
	TotalAmount   float64        `json:"totalAmount"`
	DescriptionAr string         `json:"descriptionAr,omitempty"`
	DescriptionEn string         `json:"descriptionEn,omitempty"`
	ContactID     *int64         `json:"contactId,omitempty"`
	BankAccountID *int64         `json:"bankAccountId,omitempty"`
	PropertyID    *int64         `json:"propertyId,omitempty"`
	ProjectID     *int64         `json:"projectId,omitempty"`
	EntryID       *int64         `json:"entryId,omitempty"`
	CreatedBy     int64          `json:"createdBy"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Items         []DocumentItem `json:"items,omitempty"`
}

// DocumentItem is a line of a purchase invoice. AccountID optionally routes
// the item to a specific expense or asset account.
type DocumentItem struct {
	ID          int64   `json:"id"`
	DocumentID  int64   `json:"documentId"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	AccountID   *int64  `json:"accountId,omitempty"`
}

// ItemInput describes one purchase invoice item at creation.
type ItemInput struct {
	Description string
	Amount      float64
	AccountID   *int64
	AccountCode *string
}

// DocumentInput groups fields required to create a document. When VATRate is
// set and VATAmount is zero, the VAT amount is derived from Amount.
type DocumentInput struct {
	Type          DocumentType
	Status        DocumentStatus
	Date          time.Time
	Amount        float64
	VATAmount     float64
	VATRate       float64
	TotalAmount   float64
	DescriptionAr string
	DescriptionEn string
	ContactID     *int64
	BankAccountID *int64
	PropertyID    *int64
	ProjectID     *int64
	CreatedBy     int64
	Items         []ItemInput
}

// Validate normalises amounts and checks the input. VAT derivation and the
// total reconciliation run on decimals so 15% of 200.10 comes out exact.
func (in *DocumentInput) Validate() error {
	switch in.Type {
	case TypeReceipt, TypeInvoice, TypePurchaseInv, TypePayment, TypeDeposit:
	default:
		return fmt.Errorf("documents: unknown document type %q: %w", in.Type, shared.ErrValidation)
	}
	switch in.Status {
	case "":
		in.Status = StatusApproved
	case StatusDraft, StatusApproved, StatusPaid:
	default:
		return fmt.Errorf("documents: status %s not allowed at creation: %w", in.Status, shared.ErrValidation)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("documents: document date required: %w", shared.ErrValidation)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("documents: amount must be positive: %w", shared.ErrValidation)
	}
	if in.VATAmount < 0 || in.VATRate < 0 {
		return fmt.Errorf("documents: negative VAT: %w", shared.ErrValidation)
	}
	for i, item := range in.Items {
		if item.Amount <= 0 {
			return fmt.Errorf("documents: item %d amount must be positive: %w", i, shared.ErrValidation)
		}
	}

	amount := decimal.NewFromFloat(in.Amount)
	vat := decimal.NewFromFloat(in.VATAmount)
	if vat.IsZero() && in.VATRate > 0 {
		vat = amount.Mul(decimal.NewFromFloat(in.VATRate)).Round(2)
		in.VATAmount, _ = vat.Float64()
	}
	total := amount.Add(vat)
	if in.TotalAmount == 0 {
		in.TotalAmount, _ = total.Float64()
	} else if !decimal.NewFromFloat(in.TotalAmount).Round(2).Equal(total.Round(2)) {
		return fmt.Errorf("documents: total %.2f does not equal amount plus VAT %s: %w",
			in.TotalAmount, total.StringFixed(2), shared.ErrValidation)
	}

	if in.Type == TypePurchaseInv && len(in.Items) > 0 {
		sum := decimal.Zero
		for _, item := range in.Items {
			sum = sum.Add(decimal.NewFromFloat(item.Amount))
		}
		if sum.Round(2).GreaterThan(amount.Round(2)) {
			return fmt.Errorf("documents: item total %s exceeds document amount: %w",
				sum.StringFixed(2), shared.ErrValidation)
		}
	}
	return nil
}

// ShouldPost reports whether the document status triggers a journal entry.
func (in DocumentInput) ShouldPost() bool {
	return in.Status == StatusApproved || in.Status == StatusPaid
}

// ParseType converts a request string into a DocumentType.
func ParseType(s string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TypeReceipt, TypeInvoice, TypePurchaseInv, TypePayment, TypeDeposit:
		return t, nil
	default:
		return "", fmt.Errorf("documents: unknown document type %q: %w", s, shared.ErrValidation)
	}
}
