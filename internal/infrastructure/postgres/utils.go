package postgres

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isUndefinedTable verifica si la tabla no existe (42P01), p. ej. un doctype no instalado.
func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P01"
}

// Los doctypes y campos del ERP usan letras, dígitos, espacios y guion bajo.
var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*$`)

// tableName devuelve el identificador SQL de la tabla de un doctype: "tab<Doctype>".
func tableName(doctype string) (string, error) {
	if !identPattern.MatchString(doctype) {
		return "", fmt.Errorf("doctype inválido %q", doctype)
	}
	return pgx.Identifier{"tab" + doctype}.Sanitize(), nil
}

// columnName devuelve el identificador SQL de un campo.
func columnName(field string) (string, error) {
	if !identPattern.MatchString(field) || strings.Contains(field, " ") {
		return "", fmt.Errorf("campo inválido %q", field)
	}
	return pgx.Identifier{field}.Sanitize(), nil
}

// nullIfEmpty guarda NULL en lugar de cadena vacía (columnas únicas u opcionales del ERP).
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
