package ledger

import (
	"fmt"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

const dateLayout = "2006-01-02"

type lineRequest struct {
	AccountID     int64   `json:"accountId" validate:"required,gt=0"`
	Debit         float64 `json:"debit" validate:"gte=0"`
	Credit        float64 `json:"credit" validate:"gte=0"`
	DescriptionAr string  `json:"descriptionAr"`
	DescriptionEn string  `json:"descriptionEn"`
}

type createEntryRequest struct {
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	Status        string        `json:"status" validate:"omitempty,oneof=DRAFT APPROVED"`
	DescriptionAr string        `json:"descriptionAr"`
	DescriptionEn string        `json:"descriptionEn"`
	ContactID     *int64        `json:"contactId"`
	BankAccountID *int64        `json:"bankAccountId"`
	PropertyID    *int64        `json:"propertyId"`
	ProjectID     *int64        `json:"projectId"`
	Lines         []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

func (r createEntryRequest) toInput() (EntryInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return EntryInput{}, fmt.Errorf("ledger: bad date %q: %w", r.Date, shared.ErrValidation)
	}
	in := EntryInput{
		Date:          date,
		Status:        EntryStatus(r.Status),
		DescriptionAr: r.DescriptionAr,
		DescriptionEn: r.DescriptionEn,
		ContactID:     r.ContactID,
		BankAccountID: r.BankAccountID,
		PropertyID:    r.PropertyID,
		ProjectID:     r.ProjectID,
	}
	for _, line := range r.Lines {
		in.Lines = append(in.Lines, LineInput{
			AccountID:     line.AccountID,
			Debit:         line.Debit,
			Credit:        line.Credit,
			DescriptionAr: line.DescriptionAr,
			DescriptionEn: line.DescriptionEn,
		})
	}
	return in, nil
}

type cancelEntryRequest struct {
	Reason string `json:"reason"`
}

type createAccountRequest struct {
	Code   string `json:"code" validate:"required"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
	Type   string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

type createPeriodRequest struct {
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
}

func (r createPeriodRequest) toInput() (PeriodInput, error) {
	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return PeriodInput{}, fmt.Errorf("ledger: bad start date %q: %w", r.StartDate, shared.ErrValidation)
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return PeriodInput{}, fmt.Errorf("ledger: bad end date %q: %w", r.EndDate, shared.ErrValidation)
	}
	return PeriodInput{StartDate: start, EndDate: end}, nil
}

// parseDateParam parses an optional yyyy-mm-dd query parameter.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("ledger: bad date %q: %w", raw, shared.ErrValidation)
	}
	return &date, nil
}
