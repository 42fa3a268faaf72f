package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

const doctypeDIANDocument = "DIAN document"

var (
	_ repository.DIANDocumentRepository = (*DIANDocumentRepository)(nil)
	_ repository.FileRepository         = (*FileRepository)(nil)
)

// DIANDocumentRepository documentos DIAN en memoria. Rename reengancha los adjuntos de files.
type DIANDocumentRepository struct {
	mu    sync.RWMutex
	docs  map[string]entity.DIANDocument
	files *FileRepository
}

// NewDIANDocumentRepository construye el repositorio; files puede ser nil.
func NewDIANDocumentRepository(files *FileRepository) *DIANDocumentRepository {
	return &DIANDocumentRepository{docs: make(map[string]entity.DIANDocument), files: files}
}

func (r *DIANDocumentRepository) Create(_ context.Context, doc *entity.DIANDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.Name]; ok {
		return fmt.Errorf("create dian document %s: %w", doc.Name, domain.ErrDuplicate)
	}
	r.docs[doc.Name] = *doc
	return nil
}

func (r *DIANDocumentRepository) GetByName(_ context.Context, name string) (*entity.DIANDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.docs[name]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *DIANDocumentRepository) GetByCufe(_ context.Context, cufe string) (*entity.DIANDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.docs {
		if d.XMLCufe != "" && d.XMLCufe == cufe {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (r *DIANDocumentRepository) Update(_ context.Context, doc *entity.DIANDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.Name]; !ok {
		return fmt.Errorf("update dian document %s: %w", doc.Name, domain.ErrNotFound)
	}
	r.docs[doc.Name] = *doc
	return nil
}

func (r *DIANDocumentRepository) SetStatus(_ context.Context, name, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[name]
	if !ok {
		return fmt.Errorf("set status %s: %w", name, domain.ErrNotFound)
	}
	d.Status = status
	r.docs[name] = d
	return nil
}

func (r *DIANDocumentRepository) Rename(ctx context.Context, oldName, newName string) error {
	r.mu.Lock()
	d, ok := r.docs[oldName]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("rename %s: %w", oldName, domain.ErrNotFound)
	}
	if _, taken := r.docs[newName]; taken {
		r.mu.Unlock()
		return fmt.Errorf("rename %s -> %s: %w", oldName, newName, domain.ErrDuplicate)
	}
	delete(r.docs, oldName)
	d.Name = newName
	r.docs[newName] = d
	r.mu.Unlock()

	if r.files != nil {
		r.files.reattach(doctypeDIANDocument, oldName, newName)
	}
	return nil
}

// Len número de documentos guardados.
func (r *DIANDocumentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// FileRepository filas de adjuntos en memoria, en orden de creación.
type FileRepository struct {
	mu    sync.RWMutex
	order []string
	files map[string]entity.File
}

// NewFileRepository construye el repositorio vacío.
func NewFileRepository() *FileRepository {
	return &FileRepository{files: make(map[string]entity.File)}
}

func (r *FileRepository) Create(_ context.Context, f *entity.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[f.Name]; ok {
		return fmt.Errorf("create file %s: %w", f.Name, domain.ErrDuplicate)
	}
	r.files[f.Name] = *f
	r.order = append(r.order, f.Name)
	return nil
}

func (r *FileRepository) GetByURL(_ context.Context, fileURL string) (*entity.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.order {
		if f := r.files[name]; f.FileURL == fileURL {
			return &f, nil
		}
	}
	return nil, nil
}

func (r *FileRepository) ListAttachedTo(_ context.Context, doctype, name string) ([]*entity.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.File
	for _, n := range r.order {
		f := r.files[n]
		if f.AttachedToType == doctype && f.AttachedToName == name {
			out = append(out, &f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *FileRepository) Update(_ context.Context, f *entity.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[f.Name]; !ok {
		return fmt.Errorf("update file %s: %w", f.Name, domain.ErrNotFound)
	}
	r.files[f.Name] = *f
	return nil
}

func (r *FileRepository) reattach(doctype, oldName, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, f := range r.files {
		if f.AttachedToType == doctype && f.AttachedToName == oldName {
			f.AttachedToName = newName
			r.files[k] = f
		}
	}
}
