package documents

import (
	"context"
	"time"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
)

// TxRepository embeds the ledger transaction port so a document and its
// journal entry are written through the same transaction.
type TxRepository interface {
	ledger.TxRepository

	NextSerial(ctx context.Context, docType DocumentType, year int) (string, error)
	InsertDocument(ctx context.Context, in DocumentInput, serial string) (Document, error)
	InsertItems(ctx context.Context, documentID int64, items []ItemInput) error
	SetDocumentEntry(ctx context.Context, documentID, entryID int64) error
	GetDocumentWithItems(ctx context.Context, documentID int64) (Document, error)
}

// Repository is the persistence port of the documents service.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	ListDocuments(ctx context.Context, docType *DocumentType, from, to *time.Time) ([]Document, error)
	GetDocument(ctx context.Context, documentID int64) (Document, error)
}
