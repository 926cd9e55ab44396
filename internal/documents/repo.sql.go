package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// PgRepository persists documents in Postgres.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PgRepository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// WithTx executes fn within a repeatable-read transaction shared with the
// ledger port, so document and journal writes commit or roll back together.
func (r *PgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("documents repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &pgTx{TxRepository: ledger.NewTx(tx), tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const documentColumns = `id, serial_number, type, status, doc_date, amount, vat_amount, total_amount,
description_ar, description_en, contact_id, bank_account_id, property_id, project_id, entry_id,
created_by, created_at, updated_at`

// ListDocuments retrieves documents filtered by type and date range, newest
// first, without items.
func (r *PgRepository) ListDocuments(ctx context.Context, docType *DocumentType, from, to *time.Time) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM accounting_documents
WHERE ($1::text IS NULL OR type = $1)
  AND ($2::date IS NULL OR doc_date >= $2)
  AND ($3::date IS NULL OR doc_date <= $3)
ORDER BY doc_date DESC, id DESC`, docType, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// GetDocument loads one document with its items.
func (r *PgRepository) GetDocument(ctx context.Context, documentID int64) (Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM accounting_documents WHERE id=$1`, documentID)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, fmt.Errorf("documents: document %d: %w", documentID, shared.ErrNotFound)
		}
		return Document{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, document_id, description, amount, account_id
FROM document_items WHERE document_id=$1 ORDER BY id`, documentID)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item DocumentItem
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Description, &item.Amount, &item.AccountID); err != nil {
			return Document{}, err
		}
		d.Items = append(d.Items, item)
	}
	return d, rows.Err()
}

type pgTx struct {
	ledger.TxRepository
	tx pgx.Tx
}

var serialPrefixes = map[DocumentType]string{
	TypeReceipt:     "RCT",
	TypeInvoice:     "INV",
	TypePurchaseInv: "PUR",
	TypePayment:     "PAY",
	TypeDeposit:     "DEP",
}

// NextSerial issues the next per-type serial for the year, e.g. RCT-2025-000042.
func (t *pgTx) NextSerial(ctx context.Context, docType DocumentType, year int) (string, error) {
	prefix, ok := serialPrefixes[docType]
	if !ok {
		return "", fmt.Errorf("documents: no serial prefix for type %s: %w", docType, shared.ErrConfiguration)
	}
	var count int64
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM accounting_documents
WHERE type=$1 AND date_part('year', doc_date)=$2`, docType, year).Scan(&count)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%06d", prefix, year, count+1), nil
}

func (t *pgTx) InsertDocument(ctx context.Context, in DocumentInput, serial string) (Document, error) {
	row := t.tx.QueryRow(ctx, `INSERT INTO accounting_documents
(serial_number, type, status, doc_date, amount, vat_amount, total_amount, description_ar, description_en,
 contact_id, bank_account_id, property_id, project_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING id, created_at, updated_at`,
		serial, in.Type, in.Status, in.Date, in.Amount, in.VATAmount, in.TotalAmount,
		in.DescriptionAr, in.DescriptionEn, in.ContactID, in.BankAccountID, in.PropertyID, in.ProjectID, in.CreatedBy)
	doc := Document{
		SerialNumber:  serial,
		Type:          in.Type,
		Status:        in.Status,
		Date:          in.Date,
		Amount:        in.Amount,
		VATAmount:     in.VATAmount,
		TotalAmount:   in.TotalAmount,
		DescriptionAr: in.DescriptionAr,
		DescriptionEn: in.DescriptionEn,
		ContactID:     in.ContactID,
		BankAccountID: in.BankAccountID,
		PropertyID:    in.PropertyID,
		ProjectID:     in.ProjectID,
		CreatedBy:     in.CreatedBy,
	}
	if err := row.Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (t *pgTx) InsertItems(ctx context.Context, documentID int64, items []ItemInput) error {
	for _, item := range items {
		if _, err := t.tx.Exec(ctx, `INSERT INTO document_items (document_id, description, amount, account_id)
VALUES ($1,$2,$3,$4)`, documentID, item.Description, item.Amount, item.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func (t *pgTx) SetDocumentEntry(ctx context.Context, documentID, entryID int64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE accounting_documents SET entry_id=$2, updated_at=NOW()
WHERE id=$1 AND entry_id IS NULL`, documentID, entryID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("documents: document %d already posted: %w", documentID, shared.ErrInvalidStatus)
	}
	return nil
}

func (t *pgTx) GetDocumentWithItems(ctx context.Context, documentID int64) (Document, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM accounting_documents WHERE id=$1`, documentID)
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, fmt.Errorf("documents: document %d: %w", documentID, shared.ErrNotFound)
		}
		return Document{}, err
	}
	rows, err := t.tx.Query(ctx, `SELECT id, document_id, description, amount, account_id
FROM document_items WHERE document_id=$1 ORDER BY id`, documentID)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item DocumentItem
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Description, &item.Amount, &item.AccountID); err != nil {
			return Document{}, err
		}
		d.Items = append(d.Items, item)
	}
	return d, rows.Err()
}

func scanDocument(row pgx.Row) (Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.SerialNumber, &d.Type, &d.Status, &d.Date, &d.Amount, &d.VATAmount, &d.TotalAmount,
		&d.DescriptionAr, &d.DescriptionEn, &d.ContactID, &d.BankAccountID, &d.PropertyID, &d.ProjectID, &d.EntryID,
		&d.CreatedBy, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
