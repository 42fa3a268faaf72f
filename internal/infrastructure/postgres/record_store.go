package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/va-app/va-dian/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore acceso genérico a las tablas "tab<Doctype>" del ERP.
// Los valores se leen como texto.
type RecordStore struct {
	q Querier
}

// NewRecordStore construye el adaptador. Pasar pool o tx (Querier).
func NewRecordStore(q Querier) *RecordStore {
	return &RecordStore{q: q}
}

// GetField lee un campo de un registro. Una tabla inexistente (doctype no instalado) equivale a registro ausente.
func (s *RecordStore) GetField(ctx context.Context, kind, name, field string) (string, bool, error) {
	table, err := tableName(kind)
	if err != nil {
		return "", false, err
	}
	col, err := columnName(field)
	if err != nil {
		return "", false, err
	}
	query := fmt.Sprintf(`SELECT COALESCE(CAST(%s AS text), '') FROM %s WHERE name = $1`, col, table)
	var v string
	err = s.q.QueryRow(ctx, query, name).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUndefinedTable(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s.%s: %w", kind, field, err)
	}
	return v, true, nil
}

// Find lista los registros que cumplen el filtro, en orden de creación.
func (s *RecordStore) Find(ctx context.Context, kind string, filter repository.Filter, fields ...string) ([]repository.Record, error) {
	table, err := tableName(kind)
	if err != nil {
		return nil, err
	}
	cols := []string{"name"}
	names := []string{"name"}
	for _, f := range fields {
		if f == "name" {
			continue
		}
		col, err := columnName(f)
		if err != nil {
			return nil, err
		}
		cols = append(cols, fmt.Sprintf("CAST(%s AS text)", col))
		names = append(names, f)
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var where []string
	var args []any
	for _, k := range keys {
		col, err := columnName(k)
		if err != nil {
			return nil, err
		}
		args = append(args, filter[k])
		where = append(where, fmt.Sprintf("CAST(%s AS text) = $%d", col, len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(cols, ", "), table)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY creation, name"

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	defer rows.Close()

	var out []repository.Record
	for rows.Next() {
		values := make([]*string, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		rec := make(repository.Record, len(names))
		for i, n := range names {
			if values[i] != nil {
				rec[n] = *values[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Upsert inserta el registro o actualiza solo los campos dados.
func (s *RecordStore) Upsert(ctx context.Context, kind, name string, fields map[string]string) (string, error) {
	table, err := tableName(kind)
	if err != nil {
		return "", err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k != "name" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	now := time.Now()
	cols := []string{"name", "creation", "modified"}
	placeholders := []string{"$1", "$2", "$2"}
	sets := []string{"modified = EXCLUDED.modified"}
	args := []any{name, now}
	for _, k := range keys {
		col, err := columnName(k)
		if err != nil {
			return "", err
		}
		args = append(args, fields[k])
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (name) DO UPDATE SET %s RETURNING name`,
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(sets, ", "),
	)
	var out string
	if err := s.q.QueryRow(ctx, query, args...).Scan(&out); err != nil {
		return "", fmt.Errorf("upsert %s %s: %w", kind, name, err)
	}
	return out, nil
}
