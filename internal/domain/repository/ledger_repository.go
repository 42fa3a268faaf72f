package repository

import (
	"context"
	"time"

	"github.com/va-app/va-dian/internal/domain/entity"
)

// GLEntryFilter criterios de consulta del libro mayor. Los campos vacíos no filtran.
type GLEntryFilter struct {
	Company          string
	FromDate         *time.Time
	ToDate           *time.Time
	Accounts         []string
	ExcludeCancelled bool
}

// GLEntryRepository lectura de la tabla "GL Entry" del ERP.
type GLEntryRepository interface {
	// List devuelve las líneas ordenadas por fecha de contabilización, cuenta y creación.
	List(ctx context.Context, f GLEntryFilter) ([]entity.GLEntry, error)
}

// AccountRepository lectura del plan de cuentas (tabla "Account").
type AccountRepository interface {
	GetByName(ctx context.Context, name string) (*entity.Account, error)
	// ListLeavesBetween cuentas hoja con lft > lft y rgt < rgt (descendientes de un grupo).
	ListLeavesBetween(ctx context.Context, lft, rgt int) ([]string, error)
}
