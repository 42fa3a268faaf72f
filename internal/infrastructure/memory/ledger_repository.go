package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

var (
	_ repository.GLEntryRepository = (*GLEntryRepository)(nil)
	_ repository.AccountRepository = (*AccountRepository)(nil)
)

// GLEntryRepository libro mayor en memoria.
type GLEntryRepository struct {
	mu      sync.RWMutex
	entries []entity.GLEntry
}

// NewGLEntryRepository construye el repositorio con las líneas dadas.
func NewGLEntryRepository(entries ...entity.GLEntry) *GLEntryRepository {
	return &GLEntryRepository{entries: append([]entity.GLEntry(nil), entries...)}
}

// Add agrega líneas al libro.
func (r *GLEntryRepository) Add(entries ...entity.GLEntry) {
	r.mu.Lock()
	r.entries = append(r.entries, entries...)
	r.mu.Unlock()
}

func (r *GLEntryRepository) List(_ context.Context, f repository.GLEntryFilter) ([]entity.GLEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	accounts := make(map[string]bool, len(f.Accounts))
	for _, a := range f.Accounts {
		accounts[a] = true
	}
	var out []entity.GLEntry
	for _, e := range r.entries {
		switch {
		case f.Company != "" && e.Company != f.Company:
			continue
		case f.FromDate != nil && e.PostingDate.Before(*f.FromDate):
			continue
		case f.ToDate != nil && e.PostingDate.After(*f.ToDate):
			continue
		case len(accounts) > 0 && !accounts[e.Account]:
			continue
		case f.ExcludeCancelled && e.IsCancelled:
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PostingDate.Equal(out[j].PostingDate) {
			return out[i].PostingDate.Before(out[j].PostingDate)
		}
		return out[i].Account < out[j].Account
	})
	return out, nil
}

// AccountRepository plan de cuentas en memoria.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]entity.Account
}

// NewAccountRepository construye el plan con las cuentas dadas.
func NewAccountRepository(accounts ...entity.Account) *AccountRepository {
	r := &AccountRepository{accounts: make(map[string]entity.Account)}
	for _, a := range accounts {
		r.accounts[a.Name] = a
	}
	return r
}

func (r *AccountRepository) GetByName(_ context.Context, name string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[name]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepository) ListLeavesBetween(_ context.Context, lft, rgt int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Account
	for _, a := range r.accounts {
		if !a.IsGroup && a.Lft > lft && a.Rgt < rgt {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lft < out[j].Lft })
	names := make([]string, 0, len(out))
	for _, a := range out {
		names = append(names, a.Name)
	}
	return names, nil
}
