package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/wtaconnect/backoffice/internal/audit"
)

// GuardError reports why an order mutation was refused.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string { return e.Reason }

// Auditor receives order lifecycle events.
type Auditor interface {
	Emit(ctx context.Context, ev audit.Event)
}

type deleteStore interface {
	Get(ctx context.Context, tenantID, id int64) (*Record, error)
	DeletePending(ctx context.Context, tenantID, id int64) error
}

type DeleteResult struct {
	ID      int64  `json:"id"`
	Numero  int64  `json:"numero"`
	Message string `json:"message"`
}

// Deleter removes unlinked pending orders.
type Deleter struct {
	store   deleteStore
	auditor Auditor
}

func NewDeleter(store deleteStore, auditor Auditor) *Deleter {
	return &Deleter{store: store, auditor: auditor}
}

// Delete checks, in order: the order exists for the tenant, it is not
// linked to the ERP, its status is 1, 2 or 500. The delete itself is
// conditional on the same checks.
func (d *Deleter) Delete(ctx context.Context, tenantID, id int64) (*DeleteResult, error) {
	r, err := d.store.Get(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if r == nil {
		return nil, &GuardError{Reason: fmt.Sprintf("Pedido não encontrado %d", id)}
	}
	if r.Linked() {
		return nil, &GuardError{Reason: fmt.Sprintf("Não é possível excluir pedido com orderId %s", r.OrderID)}
	}
	if !pending(r.Status) {
		return nil, &GuardError{Reason: fmt.Sprintf("Não é possível excluir pedido com este status %d", r.ID)}
	}

	if err := d.store.DeletePending(ctx, tenantID, id); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, &GuardError{Reason: fmt.Sprintf("Pedido alterado durante a exclusão %d", id)}
		}
		return nil, fmt.Errorf("delete order: %w", err)
	}

	if d.auditor != nil {
		d.auditor.Emit(ctx, audit.Event{
			Type:     audit.TypeOrderDeleted,
			TenantID: tenantID,
			OrderID:  id,
			Numero:   r.Numero,
		})
	}
	return &DeleteResult{
		ID:      id,
		Numero:  r.Numero,
		Message: fmt.Sprintf("Pedido excluído com sucesso %d", r.Numero),
	}, nil
}
