package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wtaconnect/backoffice/internal/audit"
)

var (
	ErrNFeNotFound       = errors.New("nfe not found")
	ErrAlreadyCheckedOut = errors.New("nfe already checked out")
	ErrInvalidAccessKey  = errors.New("access key must have 44 digits")
)

// checkout_data is stored shifted to UTC-3 but still suffixed with Z.
const checkoutOffset = -3 * time.Hour

const checkoutLayout = "2006-01-02T15:04:05.000Z"

type checkoutStore interface {
	FindByAccessKey(ctx context.Context, tenantID int64, chave string) (*Record, error)
	MarkCheckedOut(ctx context.Context, tenantID, id int64, at, user string) error
}

// CheckoutResult is returned after an access key is confirmed.
type CheckoutResult struct {
	ID          int64  `json:"id"`
	ChaveAcesso string `json:"chave_acesso"`
	CheckedAt   string `json:"checkout_data"`
	User        string `json:"checkout_user"`
}

// Checkout confirms scanned NFe access keys against pre-seeded orders.
type Checkout struct {
	store   checkoutStore
	auditor Auditor
	nowFunc func() time.Time
}

func NewCheckout(store checkoutStore, auditor Auditor) *Checkout {
	return &Checkout{store: store, auditor: auditor, nowFunc: time.Now}
}

// Confirm stamps the checkout fields of the tenant's order with this key.
// Each key can be confirmed once; records are never created here.
func (c *Checkout) Confirm(ctx context.Context, tenantID int64, chave, user string) (*CheckoutResult, error) {
	if !validAccessKey(chave) {
		return nil, ErrInvalidAccessKey
	}
	if user == "" {
		user = "unknown"
	}

	r, err := c.store.FindByAccessKey(ctx, tenantID, chave)
	if err != nil {
		return nil, fmt.Errorf("find nfe: %w", err)
	}
	if r == nil {
		return nil, ErrNFeNotFound
	}
	if r.CheckoutStatus != 0 {
		return nil, ErrAlreadyCheckedOut
	}

	at := c.nowFunc().UTC().Add(checkoutOffset).Format(checkoutLayout)
	if err := c.store.MarkCheckedOut(ctx, tenantID, r.ID, at, user); err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, ErrAlreadyCheckedOut
		}
		return nil, fmt.Errorf("checkout nfe: %w", err)
	}

	if c.auditor != nil {
		c.auditor.Emit(ctx, audit.Event{
			Type:        audit.TypeNFeCheckedOut,
			TenantID:    tenantID,
			OrderID:     r.ID,
			Numero:      r.Numero,
			ChaveAcesso: chave,
			User:        user,
		})
	}
	return &CheckoutResult{ID: r.ID, ChaveAcesso: chave, CheckedAt: at, User: user}, nil
}

func validAccessKey(s string) bool {
	if len(s) != 44 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
