package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

const doctypeDIANDocument = "DIAN document"

var _ repository.DIANDocumentRepository = (*DIANDocumentRepo)(nil)

// DIANDocumentRepo implementación de DIANDocumentRepository (usable con pool o tx).
type DIANDocumentRepo struct {
	q Querier
}

// NewDIANDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDIANDocumentRepository(q Querier) *DIANDocumentRepo {
	return &DIANDocumentRepo{q: q}
}

const dianDocumentColumns = `name, COALESCE(xml, ''), COALESCE(representation, ''),
	COALESCE(xml_dian_tercero, ''), COALESCE(xml_cufe, ''), xml_issue_date, COALESCE(xml_content, ''),
	COALESCE(status, ''), creation, modified`

// Create persiste un nuevo documento.
func (r *DIANDocumentRepo) Create(ctx context.Context, doc *entity.DIANDocument) error {
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	query := `
		INSERT INTO "tabDIAN document" (name, xml, representation, xml_dian_tercero, xml_cufe,
			xml_issue_date, xml_content, status, creation, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		doc.Name, doc.XML, doc.Representation, nullIfEmpty(doc.XMLDianTercero), nullIfEmpty(doc.XMLCufe),
		doc.XMLIssueDate, doc.XMLContent, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create dian document %s: %w", doc.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert dian document: %w", err)
	}
	return nil
}

// GetByName obtiene un documento por su llave.
func (r *DIANDocumentRepo) GetByName(ctx context.Context, name string) (*entity.DIANDocument, error) {
	query := `SELECT ` + dianDocumentColumns + ` FROM "tabDIAN document" WHERE name = $1`
	d, err := scanDIANDocument(r.q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dian document: %w", err)
	}
	return d, nil
}

// GetByCufe obtiene el documento que ya registró ese CUFE.
func (r *DIANDocumentRepo) GetByCufe(ctx context.Context, cufe string) (*entity.DIANDocument, error) {
	if cufe == "" {
		return nil, nil
	}
	query := `SELECT ` + dianDocumentColumns + ` FROM "tabDIAN document" WHERE xml_cufe = $1 LIMIT 1`
	d, err := scanDIANDocument(r.q.QueryRow(ctx, query, cufe))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dian document by cufe: %w", err)
	}
	return d, nil
}

// Update reescribe los campos extraídos, adjuntos y estado.
func (r *DIANDocumentRepo) Update(ctx context.Context, doc *entity.DIANDocument) error {
	doc.UpdatedAt = time.Now()
	query := `
		UPDATE "tabDIAN document" SET xml = $2, representation = $3, xml_dian_tercero = $4, xml_cufe = $5,
			xml_issue_date = $6, xml_content = $7, status = $8, modified = $9
		WHERE name = $1`
	tag, err := r.q.Exec(ctx, query,
		doc.Name, doc.XML, doc.Representation, nullIfEmpty(doc.XMLDianTercero), nullIfEmpty(doc.XMLCufe),
		doc.XMLIssueDate, doc.XMLContent, doc.Status, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update dian document %s: %w", doc.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("update dian document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update dian document %s: %w", doc.Name, domain.ErrNotFound)
	}
	return nil
}

// SetStatus cambia solo el estado de procesamiento.
func (r *DIANDocumentRepo) SetStatus(ctx context.Context, name, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE "tabDIAN document" SET status = $2, modified = $3 WHERE name = $1`,
		name, status, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set status %s: %w", name, domain.ErrNotFound)
	}
	return nil
}

// Rename cambia la llave del documento y mueve sus adjuntos (tabFile.attached_to_name).
// Debe ejecutarse dentro de una transacción.
func (r *DIANDocumentRepo) Rename(ctx context.Context, oldName, newName string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE "tabDIAN document" SET name = $2, modified = $3 WHERE name = $1`,
		oldName, newName, time.Now(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename %s -> %s: %w", oldName, newName, domain.ErrDuplicate)
		}
		return fmt.Errorf("rename dian document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename %s: %w", oldName, domain.ErrNotFound)
	}
	_, err = r.q.Exec(ctx,
		`UPDATE "tabFile" SET attached_to_name = $3 WHERE attached_to_doctype = $1 AND attached_to_name = $2`,
		doctypeDIANDocument, oldName, newName,
	)
	if err != nil {
		return fmt.Errorf("reattach files: %w", err)
	}
	return nil
}

func scanDIANDocument(row pgx.Row) (*entity.DIANDocument, error) {
	var d entity.DIANDocument
	err := row.Scan(
		&d.Name, &d.XML, &d.Representation, &d.XMLDianTercero, &d.XMLCufe,
		&d.XMLIssueDate, &d.XMLContent, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
