package repository

import "context"

// Record fila genérica del ERP: nombre de campo -> valor como texto.
// Un campo NULL no aparece en el mapa.
type Record map[string]string

// Filter filtros de igualdad campo = valor, combinados con AND.
type Filter map[string]string

// RecordStore acceso genérico a los registros del ERP por tipo de documento (doctype).
// El tercero resolver y los casos de uso lo usan para leer campos de enlace
// (custom_dian_tercero, supplier, party_type...) sin conocer cada tabla.
type RecordStore interface {
	// GetField devuelve el valor de un campo. found es false si el registro no existe;
	// un campo NULL o vacío devuelve ("", true, nil).
	GetField(ctx context.Context, kind, name, field string) (value string, found bool, err error)
	// Find lista los registros que cumplen el filtro con los campos pedidos (siempre incluye "name").
	Find(ctx context.Context, kind string, filter Filter, fields ...string) ([]Record, error)
	// Upsert crea o actualiza el registro name con los campos dados y devuelve su nombre.
	Upsert(ctx context.Context, kind, name string, fields map[string]string) (string, error)
}
