package validation

// DashboardQuery is the query string of GET /api/dashboard.
type DashboardQuery struct {
	Period string `form:"period" validate:"omitempty,oneof=daily weekly monthly"`
}

// ListOrdersQuery is the query string of GET /api/orders. Every field is optional.
type ListOrdersQuery struct {
	StartDate       string `form:"startDate" validate:"omitempty,filterdate"` // 2006-01-02 or RFC 3339
	EndDate         string `form:"endDate" validate:"omitempty,filterdate"`
	Status          string `form:"status" validate:"omitempty,max=64"` // display label, e.g. "NFe emitida"
	Numero          string `form:"numero" validate:"omitempty,numeric,max=18"`
	EcommerceNumber string `form:"ecommerceNumber" validate:"omitempty,max=64"`
	OrderID         string `form:"orderId" validate:"omitempty,max=64"`
}

// CheckoutRequest is the payload for POST /api/checkout/nfe
type CheckoutRequest struct {
	ChaveAcesso string `json:"chave_acesso" validate:"required,len=44,numeric"` // NFe access key
}

// TenantFlagsRequest is the payload for PUT /api/tenant/config. Omitted flags are not changed.
type TenantFlagsRequest struct {
	ValidarEtapa    *bool `json:"wta_validar_etapa"`
	ValidarEstoque  *bool `json:"wta_validar_estoque"`
	ReprocessarHora *bool `json:"wta_reprocessar_hora"`
}
