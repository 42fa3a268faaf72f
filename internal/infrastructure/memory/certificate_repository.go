package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var _ repository.CertificateRepository = (*CertificateRepository)(nil)

// CertificateRepository configuraciones y certificados en memoria.
type CertificateRepository struct {
	mu      sync.RWMutex
	configs map[string]entity.CertificateConfig
	order   []string
	certs   map[string]entity.Certificate
}

// NewCertificateRepository construye el repositorio con las configuraciones dadas.
func NewCertificateRepository(configs ...entity.CertificateConfig) *CertificateRepository {
	r := &CertificateRepository{
		configs: make(map[string]entity.CertificateConfig),
		certs:   make(map[string]entity.Certificate),
	}
	for _, c := range configs {
		r.configs[c.Name] = c
	}
	return r
}

func (r *CertificateRepository) GetConfig(_ context.Context, name string) (*entity.CertificateConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.configs[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CertificateRepository) FindExisting(_ context.Context, config, tercero string, from, to time.Time) (*entity.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		c := r.certs[name]
		if c.Config == config && c.Tercero == tercero && c.FromDate.Equal(from) && c.ToDate.Equal(to) {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CertificateRepository) Create(_ context.Context, c *entity.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[c.Name]; ok {
		return fmt.Errorf("create certificate %s: %w", c.Name, domain.ErrDuplicate)
	}
	r.certs[c.Name] = *c
	r.order = append(r.order, c.Name)
	return nil
}

func (r *CertificateRepository) Update(_ context.Context, c *entity.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[c.Name]; !ok {
		return fmt.Errorf("update certificate %s: %w", c.Name, domain.ErrNotFound)
	}
	r.certs[c.Name] = *c
	return nil
}

func (r *CertificateRepository) ListByPeriod(_ context.Context, config string, from, to time.Time) ([]*entity.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Certificate
	for _, name := range r.order {
		c := r.certs[name]
		if c.Config == config && c.FromDate.Equal(from) && c.ToDate.Equal(to) {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *CertificateRepository) Delete(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.certs[name]; !ok {
		return fmt.Errorf("delete certificate %s: %w", name, domain.ErrNotFound)
	}
	delete(r.certs, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
