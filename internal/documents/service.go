package documents

import (
	"context"
	"strconv"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/rbac"
)

// Poster posts a journal entry inside an already-open transaction.
type Poster interface {
	PostWithinTx(ctx context.Context, tx ledger.TxRepository, in ledger.EntryInput) (ledger.JournalEntry, error)
}

// Service creates documents and drives their posting rules.
type Service struct {
	repo   Repository
	poster Poster
	rules  *Registry
	guard  ledger.Guard
	audit  ledger.AuditPort
	cache  ledger.CacheBumper
	now    func() time.Time
}

// NewService constructs the documents service.
func NewService(repo Repository, poster Poster, guard ledger.Guard, auditor ledger.AuditPort, cache ledger.CacheBumper) *Service {
	return &Service{
		repo:   repo,
		poster: poster,
		rules:  NewRegistry(),
		guard:  guard,
		audit:  auditor,
		cache:  cache,
		now:    time.Now,
	}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create persists the document and, when its status is APPROVED or PAID,
// builds and posts the journal entry through the same transaction. Any rule
// or validation failure rolls back both writes.
func (s *Service) Create(ctx context.Context, in DocumentInput) (Document, error) {
	if err := s.guard.Require(ctx, rbac.PermDocumentCreate); err != nil {
		return Document{}, err
	}
	principal, err := s.guard.Principal(ctx)
	if err != nil {
		return Document{}, err
	}
	in.CreatedBy = principal.UserID
	if err := in.Validate(); err != nil {
		return Document{}, err
	}

	var doc Document
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		serial, err := tx.NextSerial(ctx, in.Type, in.Date.Year())
		if err != nil {
			return err
		}
		doc, err = tx.InsertDocument(ctx, in, serial)
		if err != nil {
			return err
		}
		if len(in.Items) > 0 {
			if err := tx.InsertItems(ctx, doc.ID, in.Items); err != nil {
				return err
			}
		}
		if in.ShouldPost() {
			lines, err := s.rules.Lines(ctx, tx, in)
			if err != nil {
				return err
			}
			docType := string(in.Type)
			entry, err := s.poster.PostWithinTx(ctx, tx, ledger.EntryInput{
				Date:          in.Date,
				Status:        ledger.EntryStatusApproved,
				DescriptionAr: in.DescriptionAr,
				DescriptionEn: in.DescriptionEn,
				DocumentType:  &docType,
				DocumentID:    &doc.ID,
				ContactID:     in.ContactID,
				BankAccountID: in.BankAccountID,
				PropertyID:    in.PropertyID,
				ProjectID:     in.ProjectID,
				CreatedBy:     principal.UserID,
				Lines:         lines,
			})
			if err != nil {
				return err
			}
			if err := tx.SetDocumentEntry(ctx, doc.ID, entry.ID); err != nil {
				return err
			}
		}
		doc, err = tx.GetDocumentWithItems(ctx, doc.ID)
		return err
	})
	if err != nil {
		return Document{}, err
	}

	if s.audit != nil {
		state := map[string]any{
			"serialNumber": doc.SerialNumber,
			"type":         string(doc.Type),
			"status":       string(doc.Status),
			"totalAmount":  doc.TotalAmount,
		}
		if doc.EntryID != nil {
			state["entryId"] = *doc.EntryID
		}
		_ = s.audit.Record(ctx, audit.Entry{
			At:       s.now(),
			Action:   "document.create",
			Entity:   "accounting_document",
			EntityID: strconv.FormatInt(doc.ID, 10),
			UserID:   &principal.UserID,
			NewState: state,
		})
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return doc, nil
}

// List returns documents filtered by type and date range.
func (s *Service) List(ctx context.Context, docType *DocumentType, from, to *time.Time) ([]Document, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return nil, err
	}
	return s.repo.ListDocuments(ctx, docType, from, to)
}

// Get loads one document with items.
func (s *Service) Get(ctx context.Context, documentID int64) (Document, error) {
	if err := s.guard.Require(ctx, rbac.PermReportView); err != nil {
		return Document{}, err
	}
	return s.repo.GetDocument(ctx, documentID)
}
