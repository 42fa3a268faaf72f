// Package memory implementa los puertos de repositorio en memoria, para pruebas
// y para ejecutar casos de uso sin base de datos.
package memory

import (
	"context"
	"sync"

	"github.com/va-app/va-dian/internal/domain/repository"
)

var _ repository.RecordStore = (*RecordStore)(nil)

// RecordStore almacén de registros por doctype, seguro para uso concurrente.
type RecordStore struct {
	mu    sync.RWMutex
	kinds map[string]*table
	reads int
	err   error
}

type table struct {
	order []string
	rows  map[string]repository.Record
}

// NewRecordStore crea un almacén vacío.
func NewRecordStore() *RecordStore {
	return &RecordStore{kinds: make(map[string]*table)}
}

// Put inserta o reemplaza un registro completo.
func (s *RecordStore) Put(kind, name string, fields map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(kind, name, fields, true)
}

// FailWith hace que toda lectura o escritura posterior devuelva err (nil restablece).
func (s *RecordStore) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Reads número de lecturas (GetField y Find) atendidas.
func (s *RecordStore) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

// GetField implementa repository.RecordStore.
func (s *RecordStore) GetField(_ context.Context, kind, name, field string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return "", false, s.err
	}
	t, ok := s.kinds[kind]
	if !ok {
		return "", false, nil
	}
	row, ok := t.rows[name]
	if !ok {
		return "", false, nil
	}
	return row[field], true, nil
}

// Find implementa repository.RecordStore. Devuelve los registros en orden de inserción.
func (s *RecordStore) Find(_ context.Context, kind string, filter repository.Filter, fields ...string) ([]repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.kinds[kind]
	if !ok {
		return nil, nil
	}
	var out []repository.Record
	for _, name := range t.order {
		row := t.rows[name]
		if !matches(row, filter) {
			continue
		}
		rec := repository.Record{"name": name}
		for _, f := range fields {
			if v, ok := row[f]; ok {
				rec[f] = v
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// Upsert implementa repository.RecordStore: mezcla los campos dados con los existentes.
func (s *RecordStore) Upsert(_ context.Context, kind, name string, fields map[string]string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.put(kind, name, fields, false)
	return name, nil
}

func (s *RecordStore) put(kind, name string, fields map[string]string, replace bool) {
	t, ok := s.kinds[kind]
	if !ok {
		t = &table{rows: make(map[string]repository.Record)}
		s.kinds[kind] = t
	}
	row, exists := t.rows[name]
	if !exists {
		t.order = append(t.order, name)
	}
	if !exists || replace {
		row = repository.Record{}
	}
	for k, v := range fields {
		row[k] = v
	}
	row["name"] = name
	t.rows[name] = row
}

func matches(row repository.Record, filter repository.Filter) bool {
	for k, v := range filter {
		if row[k] != v {
			return false
		}
	}
	return true
}
