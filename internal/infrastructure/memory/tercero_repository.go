package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
	"github.com/va-app/va-dian/internal/domain/tercero"
)

var _ repository.TerceroRepository = (*TerceroRepository)(nil)

// TerceroRepository terceros guardados en el RecordStore bajo el doctype "DIAN tercero",
// de modo que el resolver ve lo que se inserta aquí.
type TerceroRepository struct {
	store *RecordStore
}

// NewTerceroRepository construye el repositorio sobre store.
func NewTerceroRepository(store *RecordStore) *TerceroRepository {
	return &TerceroRepository{store: store}
}

func (r *TerceroRepository) GetByNIT(ctx context.Context, nit string) (*entity.Tercero, error) {
	recs, err := r.store.Find(ctx, tercero.KindTercero, repository.Filter{"name": nit}, terceroFields...)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return terceroFromRecord(recs[0]), nil
}

func (r *TerceroRepository) Upsert(ctx context.Context, t *entity.Tercero) (bool, error) {
	if t == nil || t.NIT == "" {
		return false, errors.New("upsert tercero: nit vacío")
	}
	existing, err := r.GetByNIT(ctx, t.NIT)
	if err != nil {
		return false, err
	}
	fields := t.UpsertFields()
	if existing == nil {
		fields = terceroRecord(t)
	}
	if _, err := r.store.Upsert(ctx, tercero.KindTercero, t.NIT, fields); err != nil {
		return false, err
	}
	return existing == nil, nil
}

func (r *TerceroRepository) Search(ctx context.Context, query string, limit, offset int) ([]*entity.Tercero, error) {
	recs, err := r.store.Find(ctx, tercero.KindTercero, nil, terceroFields...)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*entity.Tercero
	for _, rec := range recs {
		t := terceroFromRecord(rec)
		if q != "" && !strings.Contains(strings.ToLower(t.NIT+" "+t.RazonSocial+" "+t.NombreCompleto), q) {
			continue
		}
		out = append(out, t)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

var terceroFields = []string{
	"numero_de_identificacion", "tipo_de_documento", "tipo_de_contribuyente",
	"primer_apellido", "segundo_apellido", "primer_nombre", "otros_nombres",
	"razon_social", "nombre_comercial", "nombre_completo", "direccion_principal",
	"correo_electronico", "telefono_1", "telefono_2", "codigo_postal",
	"ciudad_municipio", "departamento", "pais",
}

func terceroRecord(t *entity.Tercero) map[string]string {
	return map[string]string{
		"numero_de_identificacion": t.NumeroIdentificacion,
		"tipo_de_documento":        t.TipoDocumento,
		"tipo_de_contribuyente":    t.TipoContribuyente,
		"primer_apellido":          t.PrimerApellido,
		"segundo_apellido":         t.SegundoApellido,
		"primer_nombre":            t.PrimerNombre,
		"otros_nombres":            t.OtrosNombres,
		"razon_social":             t.RazonSocial,
		"nombre_comercial":         t.NombreComercial,
		"nombre_completo":          t.NombreCompleto,
		"direccion_principal":      t.DireccionPrincipal,
		"correo_electronico":       t.CorreoElectronico,
		"telefono_1":               t.Telefono1,
		"telefono_2":               t.Telefono2,
		"codigo_postal":            t.CodigoPostal,
		"ciudad_municipio":         t.CiudadMunicipio,
		"departamento":             t.Departamento,
		"pais":                     t.Pais,
	}
}

func terceroFromRecord(rec repository.Record) *entity.Tercero {
	return &entity.Tercero{
		NIT:                  rec["name"],
		NumeroIdentificacion: rec["numero_de_identificacion"],
		TipoDocumento:        rec["tipo_de_documento"],
		TipoContribuyente:    rec["tipo_de_contribuyente"],
		PrimerApellido:       rec["primer_apellido"],
		SegundoApellido:      rec["segundo_apellido"],
		PrimerNombre:         rec["primer_nombre"],
		OtrosNombres:         rec["otros_nombres"],
		RazonSocial:          rec["razon_social"],
		NombreComercial:      rec["nombre_comercial"],
		NombreCompleto:       rec["nombre_completo"],
		DireccionPrincipal:   rec["direccion_principal"],
		CorreoElectronico:    rec["correo_electronico"],
		Telefono1:            rec["telefono_1"],
		Telefono2:            rec["telefono_2"],
		CodigoPostal:         rec["codigo_postal"],
		CiudadMunicipio:      rec["ciudad_municipio"],
		Departamento:         rec["departamento"],
		Pais:                 rec["pais"],
	}
}
