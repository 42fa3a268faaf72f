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

var _ repository.FileRepository = (*FileRepo)(nil)

// FileRepo implementación de FileRepository sobre "tabFile".
type FileRepo struct {
	q Querier
}

// NewFileRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFileRepository(q Querier) *FileRepo {
	return &FileRepo{q: q}
}

const fileColumns = `name, COALESCE(file_name, ''), COALESCE(file_url, ''), COALESCE(is_private, 0) = 1,
	COALESCE(attached_to_doctype, ''), COALESCE(attached_to_name, ''), COALESCE(attached_to_field, ''),
	COALESCE(file_size, 0), creation`

// Create persiste la fila del adjunto.
func (r *FileRepo) Create(ctx context.Context, f *entity.File) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO "tabFile" (name, file_name, file_url, is_private, attached_to_doctype, attached_to_name,
			attached_to_field, file_size, creation, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`
	_, err := r.q.Exec(ctx, query,
		f.Name, f.FileName, f.FileURL, boolToInt(f.IsPrivate), f.AttachedToType, f.AttachedToName,
		nullIfEmpty(f.AttachedToField), f.FileSize, f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create file %s: %w", f.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

// GetByURL obtiene el primer adjunto registrado con esa URL.
func (r *FileRepo) GetByURL(ctx context.Context, fileURL string) (*entity.File, error) {
	query := `SELECT ` + fileColumns + ` FROM "tabFile" WHERE file_url = $1 ORDER BY creation LIMIT 1`
	f, err := scanFile(r.q.QueryRow(ctx, query, fileURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return f, nil
}

// ListAttachedTo lista los adjuntos de un registro en orden de creación.
func (r *FileRepo) ListAttachedTo(ctx context.Context, doctype, name string) ([]*entity.File, error) {
	query := `SELECT ` + fileColumns + ` FROM "tabFile"
		WHERE attached_to_doctype = $1 AND attached_to_name = $2 ORDER BY creation, name`
	rows, err := r.q.Query(ctx, query, doctype, name)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()
	var list []*entity.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

// Update reescribe nombre, URL y enlace del adjunto.
func (r *FileRepo) Update(ctx context.Context, f *entity.File) error {
	query := `
		UPDATE "tabFile" SET file_name = $2, file_url = $3, is_private = $4, attached_to_doctype = $5,
			attached_to_name = $6, attached_to_field = $7, file_size = $8, modified = $9
		WHERE name = $1`
	tag, err := r.q.Exec(ctx, query,
		f.Name, f.FileName, f.FileURL, boolToInt(f.IsPrivate), f.AttachedToType, f.AttachedToName,
		nullIfEmpty(f.AttachedToField), f.FileSize, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update file %s: %w", f.Name, domain.ErrNotFound)
	}
	return nil
}

func scanFile(row pgx.Row) (*entity.File, error) {
	var f entity.File
	err := row.Scan(
		&f.Name, &f.FileName, &f.FileURL, &f.IsPrivate,
		&f.AttachedToType, &f.AttachedToName, &f.AttachedToField, &f.FileSize, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
