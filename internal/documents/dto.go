package documents

import (
	"fmt"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

const dateLayout = "2006-01-02"

type itemRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	AccountID   *int64  `json:"accountId"`
	AccountCode *string `json:"accountCode"`
}

type createDocumentRequest struct {
	Type          string        `json:"type" validate:"required,oneof=RECEIPT INVOICE PURCHASE_INV PAYMENT DEPOSIT"`
	Status        string        `json:"status" validate:"omitempty,oneof=DRAFT APPROVED PAID"`
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	Amount        float64       `json:"amount" validate:"required,gt=0"`
	VATRate       float64       `json:"vatRate" validate:"gte=0"`
	VATAmount     float64       `json:"vatAmount" validate:"gte=0"`
	TotalAmount   float64       `json:"totalAmount" validate:"gte=0"`
	DescriptionAr string        `json:"descriptionAr"`
	DescriptionEn string        `json:"descriptionEn"`
	ContactID     *int64        `json:"contactId"`
	BankAccountID *int64        `json:"bankAccountId"`
	PropertyID    *int64        `json:"propertyId"`
	ProjectID     *int64        `json:"projectId"`
	Items         []itemRequest `json:"items" validate:"omitempty,dive"`
}

func (r createDocumentRequest) toInput() (DocumentInput, error) {
	docType, err := ParseType(r.Type)
	if err != nil {
		return DocumentInput{}, err
	}
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return DocumentInput{}, fmt.Errorf("documents: bad date %q: %w", r.Date, shared.ErrValidation)
	}
	in := DocumentInput{
		Type:          docType,
		Status:        DocumentStatus(r.Status),
		Date:          date,
		Amount:        r.Amount,
		VATRate:       r.VATRate,
		VATAmount:     r.VATAmount,
		TotalAmount:   r.TotalAmount,
		DescriptionAr: r.DescriptionAr,
		DescriptionEn: r.DescriptionEn,
		ContactID:     r.ContactID,
		BankAccountID: r.BankAccountID,
		PropertyID:    r.PropertyID,
		ProjectID:     r.ProjectID,
	}
	for _, item := range r.Items {
		in.Items = append(in.Items, ItemInput{
			Description: item.Description,
			Amount:      item.Amount,
			AccountID:   item.AccountID,
			AccountCode: item.AccountCode,
		})
	}
	return in, nil
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("documents: bad date %q: %w", raw, shared.ErrValidation)
	}
	return &date, nil
}
