package ledger

import (
	"context"
	"fmt"

	"github.com/va-app/va-dian/internal/domain"
	"github.com/va-app/va-dian/internal/domain/entity"
	"github.com/va-app/va-dian/internal/domain/repository"
)

// ExpandAccount devuelve la cuenta y las cuentas que representa: ella misma si es hoja,
// o sus cuentas hoja descendientes (intervalo lft/rgt) si es un grupo.
func ExpandAccount(ctx context.Context, accounts repository.AccountRepository, name string) (*entity.Account, []string, error) {
	acc, err := accounts.GetByName(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("get account %s: %w", name, err)
	}
	if acc == nil {
		return nil, nil, fmt.Errorf("cuenta %s: %w", name, domain.ErrNotFound)
	}
	if !acc.IsGroup {
		return acc, []string{acc.Name}, nil
	}
	leaves, err := accounts.ListLeavesBetween(ctx, acc.Lft, acc.Rgt)
	if err != nil {
		return nil, nil, fmt.Errorf("expand account %s: %w", name, err)
	}
	return acc, leaves, nil
}
