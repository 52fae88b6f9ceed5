package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/wtaconnect/backoffice/internal/period"
)

// Filters is the user-supplied order search. Zero values are not applied.
type Filters struct {
	StartDate       *time.Time
	EndDate         *time.Time
	Status          string // display label, e.g. "NFe emitida"
	Numero          int64
	EcommerceNumber string
	OrderID         string
}

// Lister runs order searches for the listing screen.
type Lister struct {
	orders Source
}

func NewLister(src Source) *Lister {
	return &Lister{orders: src}
}

// List returns the tenant's orders matching f, projected for display.
// A status label outside the known set matches nothing.
func (l *Lister) List(ctx context.Context, tenantID int64, f Filters) ([]Order, error) {
	q := Query{
		TenantID:        tenantID,
		Numero:          f.Numero,
		NumeroEcommerce: f.EcommerceNumber,
		OrderID:         f.OrderID,
	}
	if f.Status != "" {
		q.Status = StatusToCode(f.Status)
		if q.Status == 0 {
			return []Order{}, nil
		}
	}
	if f.StartDate != nil {
		q.From = period.DayStart(*f.StartDate)
	}
	if f.EndDate != nil {
		q.To = period.DayEnd(*f.EndDate)
	}

	rs, err := l.orders.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return ProjectAll(rs), nil
}
