package tercero

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

// Resolver determina el NIT del tercero de una línea contable y su etiqueta "<nit>: <nombre>".
// Un tipo de parte o de comprobante desconocido, o un dato faltante, produce UnknownParty;
// solo los errores del RecordStore se devuelven como error.
type Resolver struct {
	store  repository.RecordStore
	tables Tables
	memo   *memo
}

// NewResolver construye un resolver sin memoria entre llamadas.
func NewResolver(store repository.RecordStore, tables Tables) *Resolver {
	return &Resolver{store: store, tables: tables}
}

// Session devuelve una copia que memoriza resultados por (tipo, parte), (comprobante, número) y NIT.
// Está pensada para una sola petición o lote; no se debe compartir entre peticiones.
func (r *Resolver) Session() *Resolver {
	return &Resolver{store: r.store, tables: r.tables, memo: newMemo()}
}

// ResolvePartyID devuelve el NIT del tercero o UnknownParty.
// Si la línea trae tipo y parte, esa parte prevalece y el comprobante no se consulta.
func (r *Resolver) ResolvePartyID(ctx context.Context, line entity.PartyReference, voucher entity.VoucherReference) (string, error) {
	if line.IsExplicit() {
		return r.resolveParty(ctx, line)
	}
	return r.resolveVoucher(ctx, voucher)
}

// ResolvePartyLabel resuelve el NIT y lo presenta como etiqueta.
func (r *Resolver) ResolvePartyLabel(ctx context.Context, line entity.PartyReference, voucher entity.VoucherReference) (string, error) {
	nit, err := r.ResolvePartyID(ctx, line, voucher)
	if err != nil {
		return "", err
	}
	return r.Label(ctx, nit)
}

// Label devuelve "<nit>: <nombre>". Si el NIT no tiene registro el nombre queda vacío;
// un NIT vacío o UnknownParty devuelve UnknownParty.
func (r *Resolver) Label(ctx context.Context, nit string) (string, error) {
	nit = strings.TrimSpace(nit)
	if nit == "" || nit == UnknownParty {
		return UnknownParty, nil
	}
	key := "nit\x00" + nit
	if v, ok := r.memo.get(key); ok {
		return v, nil
	}
	recs, err := r.store.Find(ctx, KindTercero, repository.Filter{"name": nit}, fieldNombreCompleto, fieldRazonSocial)
	if err != nil {
		return "", fmt.Errorf("label tercero %s: %w", nit, err)
	}
	var name string
	if len(recs) > 0 {
		name = recs[0][fieldNombreCompleto]
		if name == "" {
			name = recs[0][fieldRazonSocial]
		}
	}
	label := nit + ": " + name
	r.memo.put(key, label)
	return label, nil
}

func (r *Resolver) resolveParty(ctx context.Context, p entity.PartyReference) (string, error) {
	lookup, ok := r.tables.Parties[p.Type]
	if !ok {
		return UnknownParty, nil
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return UnknownParty, nil
	}
	if lookup.Direct {
		return id, nil
	}

	key := "party\x00" + string(p.Type) + "\x00" + id
	if v, ok := r.memo.get(key); ok {
		return v, nil
	}
	nit, err := r.field(ctx, lookup.Kind, id, lookup.Field)
	if err != nil {
		return "", err
	}
	r.memo.put(key, nit)
	return nit, nil
}

func (r *Resolver) resolveVoucher(ctx context.Context, v entity.VoucherReference) (string, error) {
	if v.IsEmpty() {
		return UnknownParty, nil
	}
	lookup, ok := r.tables.Vouchers[v.Type]
	if !ok {
		return UnknownParty, nil
	}

	key := "voucher\x00" + string(v.Type) + "\x00" + v.No
	if cached, ok := r.memo.get(key); ok {
		return cached, nil
	}

	var (
		nit string
		err error
	)
	switch {
	case lookup.NITField != "":
		nit, err = r.field(ctx, string(v.Type), v.No, lookup.NITField)
	case lookup.PartyTypeField != "":
		var recs []repository.Record
		recs, err = r.store.Find(ctx, string(v.Type), repository.Filter{"name": v.No}, lookup.PartyTypeField, lookup.PartyField)
		if err != nil {
			return "", fmt.Errorf("resolve %s %s: %w", v.Type, v.No, err)
		}
		nit = UnknownParty
		if len(recs) > 0 {
			party := entity.PartyReference{
				Type: entity.PartyType(recs[0][lookup.PartyTypeField]),
				ID:   recs[0][lookup.PartyField],
			}
			if party.IsExplicit() {
				nit, err = r.resolveParty(ctx, party)
			}
		}
	default:
		var id string
		id, err = r.rawField(ctx, string(v.Type), v.No, lookup.PartyField)
		if err == nil {
			nit, err = r.resolveParty(ctx, entity.PartyReference{Type: lookup.PartyType, ID: id})
		}
	}
	if err != nil {
		return "", err
	}
	r.memo.put(key, nit)
	return nit, nil
}

// field lee un campo que contiene un NIT; vacío o inexistente es UnknownParty.
func (r *Resolver) field(ctx context.Context, kind, name, field string) (string, error) {
	v, err := r.rawField(ctx, kind, name, field)
	if err != nil {
		return "", err
	}
	if v == "" {
		return UnknownParty, nil
	}
	return v, nil
}

func (r *Resolver) rawField(ctx context.Context, kind, name, field string) (string, error) {
	v, found, err := r.store.GetField(ctx, kind, name, field)
	if err != nil {
		return "", fmt.Errorf("resolve %s %s.%s: %w", kind, name, field, err)
	}
	if !found {
		return "", nil
	}
	return strings.TrimSpace(v), nil
}

// memo caché de una sesión. Un *memo nil no guarda nada.
type memo struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemo() *memo {
	return &memo{values: make(map[string]string)}
}

func (m *memo) get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memo) put(key, value string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}
