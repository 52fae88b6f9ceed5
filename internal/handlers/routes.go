package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wtaconnect/backoffice/internal/logger"
	"github.com/wtaconnect/backoffice/internal/orders"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/session"
	"github.com/wtaconnect/backoffice/internal/tenants"
	"github.com/wtaconnect/backoffice/internal/validation"
	"github.com/wtaconnect/backoffice/internal/winthor"
)

type DashboardService interface {
	Compute(ctx context.Context, tenantID int64, p period.Period) (*orders.DashboardResult, error)
}

type OrderLister interface {
	List(ctx context.Context, tenantID int64, f orders.Filters) ([]orders.Order, error)
}

type OrderDeleter interface {
	Delete(ctx context.Context, tenantID, id int64) (*orders.DeleteResult, error)
}

type InvoiceFetcher interface {
	InvoiceXML(ctx context.Context, tenantID int64, orderID string) (*winthor.Invoice, error)
}

type NFeCheckout interface {
	Confirm(ctx context.Context, tenantID int64, chave, user string) (*orders.CheckoutResult, error)
}

type TenantConfig interface {
	Get(ctx context.Context, id int64) (*tenants.Tenant, error)
	SetFlags(ctx context.Context, id int64, u tenants.FlagsUpdate) (*tenants.Tenant, error)
}

// HandlerConfig groups dependencies for the API routes.
type HandlerConfig struct {
	Session   *session.Verifier
	Logger    logger.Logger
	Dashboard DashboardService
	Orders    OrderLister
	Deleter   OrderDeleter
	Invoices  InvoiceFetcher
	Checkout  NFeCheckout
	Tenants   TenantConfig
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(cfg.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", cfg.Session.Middleware())
	v := validation.New()
	RegisterDashboardRoutes(api, cfg, v)
	RegisterOrdersRoutes(api, cfg, v)
	RegisterCheckoutRoutes(api, cfg, v)
	RegisterTenantRoutes(api, cfg, v)
	return r
}
