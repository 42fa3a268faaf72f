// Package tercero casos de uso de la tabla "DIAN tercero" y de la resolución de terceros.
package tercero

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/va-app/va-dian/internal/application/dto"
	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
	domaintercero "github.com/va-app/va-dian/internal/domain/tercero"
	pkgdian "github.com/va-app/va-dian/pkg/dian"
)

// UseCase casos de uso de terceros.
type UseCase struct {
	repo     repository.TerceroRepository
	resolver *domaintercero.Resolver
	log      zerolog.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.TerceroRepository, resolver *domaintercero.Resolver, log zerolog.Logger) *UseCase {
	return &UseCase{repo: repo, resolver: resolver, log: log}
}

// Upsert crea el tercero o actualiza sus datos de contacto. El NIT se guarda sin dígito de verificación.
func (uc *UseCase) Upsert(ctx context.Context, t *entity.Tercero) (*dto.UpsertTerceroResponse, error) {
	if t == nil {
		return nil, domain.ErrInvalidInput
	}
	in := *t
	in.NIT = pkgdian.NormalizeNIT(t.NIT)
	if in.NIT == "" {
		return nil, fmt.Errorf("%w: nit es obligatorio", domain.ErrInvalidInput)
	}
	if in.RazonSocial == "" && in.NombreCompleto == "" {
		return nil, fmt.Errorf("%w: razon_social o nombre_completo es obligatorio", domain.ErrInvalidInput)
	}
	created, err := uc.repo.Upsert(ctx, &in)
	if err != nil {
		return nil, fmt.Errorf("upsert tercero %s: %w", in.NIT, err)
	}
	uc.log.Info().Str("nit", in.NIT).Bool("created", created).Msg("tercero guardado")
	return &dto.UpsertTerceroResponse{NIT: in.NIT, Created: created}, nil
}

// Get devuelve el tercero por NIT (con o sin dígito de verificación).
func (uc *UseCase) Get(ctx context.Context, nit string) (*entity.Tercero, error) {
	key := pkgdian.NormalizeNIT(nit)
	if key == "" {
		return nil, domain.ErrInvalidInput
	}
	t, err := uc.repo.GetByNIT(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get tercero %s: %w", key, err)
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Search lista terceros cuyo NIT o nombre contiene query.
func (uc *UseCase) Search(ctx context.Context, query string, page dto.PageRequest) (*dto.TerceroListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.Search(ctx, strings.TrimSpace(query), page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("search terceros: %w", err)
	}
	if list == nil {
		list = []*entity.Tercero{}
	}
	return &dto.TerceroListResponse{
		Items: list,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Resolve resuelve el tercero de una línea contable (parte explícita o comprobante) y su etiqueta.
func (uc *UseCase) Resolve(ctx context.Context, req dto.ResolveTerceroRequest) (*dto.ResolveTerceroResponse, error) {
	line := entity.PartyReference{Type: entity.PartyType(req.PartyType), ID: req.Party}
	voucher := entity.VoucherReference{Type: entity.VoucherType(req.VoucherType), No: req.VoucherNo}
	if !line.IsExplicit() && voucher.IsEmpty() {
		return nil, fmt.Errorf("%w: se requiere party_type/party o voucher_type/voucher_no", domain.ErrInvalidInput)
	}
	r := uc.resolver.Session()
	nit, err := r.ResolvePartyID(ctx, line, voucher)
	if err != nil {
		return nil, err
	}
	label, err := r.Label(ctx, nit)
	if err != nil {
		return nil, err
	}
	return &dto.ResolveTerceroResponse{Tercero: nit, Label: label}, nil
}
