package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var _ repository.TerceroRepository = (*TerceroRepo)(nil)

// TerceroRepo implementación de TerceroRepository sobre la tabla "tabDIAN tercero".
type TerceroRepo struct {
	q Querier
}

// NewTerceroRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTerceroRepository(q Querier) *TerceroRepo {
	return &TerceroRepo{q: q}
}

const terceroColumns = `name,
	COALESCE(numero_de_identificacion, ''), COALESCE(tipo_de_documento, ''), COALESCE(tipo_de_contribuyente, ''),
	COALESCE(primer_apellido, ''), COALESCE(segundo_apellido, ''), COALESCE(primer_nombre, ''), COALESCE(otros_nombres, ''),
	COALESCE(razon_social, ''), COALESCE(nombre_comercial, ''), COALESCE(nombre_completo, ''),
	COALESCE(direccion_principal, ''), COALESCE(correo_electronico, ''), COALESCE(telefono_1, ''), COALESCE(telefono_2, ''),
	COALESCE(codigo_postal, ''), COALESCE(ciudad_municipio, ''), COALESCE(departamento, ''), COALESCE(pais, '')`

// GetByNIT obtiene un tercero por NIT.
func (r *TerceroRepo) GetByNIT(ctx context.Context, nit string) (*entity.Tercero, error) {
	query := `SELECT ` + terceroColumns + ` FROM "tabDIAN tercero" WHERE name = $1`
	t, err := scanTercero(r.q.QueryRow(ctx, query, nit))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tercero: %w", err)
	}
	return t, nil
}

// Upsert inserta el tercero completo; si ya existe actualiza solo los campos de contacto y razón social.
// xmax = 0 identifica la fila recién insertada.
func (r *TerceroRepo) Upsert(ctx context.Context, t *entity.Tercero) (bool, error) {
	if t == nil || t.NIT == "" {
		return false, errors.New("upsert tercero: nit vacío")
	}
	query := `
		INSERT INTO "tabDIAN tercero" (
			name, numero_de_identificacion, tipo_de_documento, tipo_de_contribuyente,
			primer_apellido, segundo_apellido, primer_nombre, otros_nombres,
			razon_social, nombre_comercial, nombre_completo, direccion_principal,
			correo_electronico, telefono_1, telefono_2, codigo_postal,
			ciudad_municipio, departamento, pais, creation, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $20)
		ON CONFLICT (name) DO UPDATE SET
			razon_social = EXCLUDED.razon_social,
			direccion_principal = EXCLUDED.direccion_principal,
			codigo_postal = EXCLUDED.codigo_postal,
			ciudad_municipio = EXCLUDED.ciudad_municipio,
			departamento = EXCLUDED.departamento,
			pais = EXCLUDED.pais,
			correo_electronico = EXCLUDED.correo_electronico,
			telefono_1 = EXCLUDED.telefono_1,
			modified = EXCLUDED.modified
		RETURNING (xmax = 0)`
	var created bool
	err := r.q.QueryRow(ctx, query,
		t.NIT, t.NumeroIdentificacion, t.TipoDocumento, t.TipoContribuyente,
		t.PrimerApellido, t.SegundoApellido, t.PrimerNombre, t.OtrosNombres,
		t.RazonSocial, t.NombreComercial, t.NombreCompleto, t.DireccionPrincipal,
		t.CorreoElectronico, t.Telefono1, t.Telefono2, t.CodigoPostal,
		t.CiudadMunicipio, t.Departamento, t.Pais, time.Now(),
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert tercero: %w", err)
	}
	return created, nil
}

// Search busca por NIT, razón social o nombre completo (sin distinguir mayúsculas).
func (r *TerceroRepo) Search(ctx context.Context, query string, limit, offset int) ([]*entity.Tercero, error) {
	sql := `SELECT ` + terceroColumns + ` FROM "tabDIAN tercero"`
	args := []any{}
	if q := strings.TrimSpace(query); q != "" {
		args = append(args, "%"+q+"%")
		sql += ` WHERE name ILIKE $1 OR razon_social ILIKE $1 OR nombre_completo ILIKE $1`
	}
	sql += ` ORDER BY name`
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		sql += fmt.Sprintf(` OFFSET $%d`, len(args))
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search terceros: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tercero
	for rows.Next() {
		t, err := scanTercero(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tercero: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTercero(row pgx.Row) (*entity.Tercero, error) {
	var t entity.Tercero
	err := row.Scan(
		&t.NIT, &t.NumeroIdentificacion, &t.TipoDocumento, &t.TipoContribuyente,
		&t.PrimerApellido, &t.SegundoApellido, &t.PrimerNombre, &t.OtrosNombres,
		&t.RazonSocial, &t.NombreComercial, &t.NombreCompleto,
		&t.DireccionPrincipal, &t.CorreoElectronico, &t.Telefono1, &t.Telefono2,
		&t.CodigoPostal, &t.CiudadMunicipio, &t.Departamento, &t.Pais,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
