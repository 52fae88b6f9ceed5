package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wtaconnect/backoffice/internal/orders"
	"github.com/wtaconnect/backoffice/internal/period"
	"github.com/wtaconnect/backoffice/internal/session"
	"github.com/wtaconnect/backoffice/internal/tenants"
	"github.com/wtaconnect/backoffice/internal/winthor"
)

const testSecret = "handler-secret"

type fakeDashboard struct {
	gotTenant int64
	gotPeriod period.Period
	err       error
}

func (f *fakeDashboard) Compute(ctx context.Context, tenantID int64, p period.Period) (*orders.DashboardResult, error) {
	f.gotTenant, f.gotPeriod = tenantID, p
	if f.err != nil {
		return nil, f.err
	}
	return orders.Aggregate(nil, nil), nil
}

type fakeLister struct {
	got orders.Filters
}

func (f *fakeLister) List(ctx context.Context, tenantID int64, fl orders.Filters) ([]orders.Order, error) {
	f.got = fl
	return []orders.Order{}, nil
}

type fakeDeleter struct {
	err error
}

func (f *fakeDeleter) Delete(ctx context.Context, tenantID, id int64) (*orders.DeleteResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &orders.DeleteResult{ID: id, Numero: 77, Message: "Pedido excluído com sucesso 77"}, nil
}

type fakeInvoices struct {
	err error
}

func (f *fakeInvoices) InvoiceXML(ctx context.Context, tenantID int64, orderID string) (*winthor.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &winthor.Invoice{InvoiceXML: "PG5mZS8+", XMLContent: "<nfe/>"}, nil
}

type fakeCheckout struct {
	gotUser string
	err     error
}

func (f *fakeCheckout) Confirm(ctx context.Context, tenantID int64, chave, user string) (*orders.CheckoutResult, error) {
	f.gotUser = user
	if f.err != nil {
		return nil, f.err
	}
	return &orders.CheckoutResult{ChaveAcesso: chave, User: user}, nil
}

type fakeTenants struct {
	tenant *tenants.Tenant
}

func (f *fakeTenants) Get(ctx context.Context, id int64) (*tenants.Tenant, error) {
	return f.tenant, nil
}

func (f *fakeTenants) SetFlags(ctx context.Context, id int64, u tenants.FlagsUpdate) (*tenants.Tenant, error) {
	if f.tenant == nil {
		return nil, tenants.ErrNotFound
	}
	if u.ValidarEtapa != nil {
		f.tenant.ValidarEtapa = tenants.Flag(*u.ValidarEtapa)
	}
	return f.tenant, nil
}

type testDeps struct {
	dashboard *fakeDashboard
	lister    *fakeLister
	deleter   *fakeDeleter
	invoices  *fakeInvoices
	checkout  *fakeCheckout
	tenants   *fakeTenants
}

func newTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	d := &testDeps{
		dashboard: &fakeDashboard{},
		lister:    &fakeLister{},
		deleter:   &fakeDeleter{},
		invoices:  &fakeInvoices{},
		checkout:  &fakeCheckout{},
		tenants:   &fakeTenants{tenant: &tenants.Tenant{ID: 7, ValidarEtapa: true}},
	}
	r := NewRouter(HandlerConfig{
		Session:   session.NewVerifier(testSecret, ""),
		Dashboard: d.dashboard,
		Orders:    d.lister,
		Deleter:   d.deleter,
		Invoices:  d.invoices,
		Checkout:  d.checkout,
		Tenants:   d.tenants,
	})
	return r, d
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	tok, err := session.Sign(testSecret, session.User{Name: "Ana", TenantID: 7}, time.Hour)
	if err != nil {
		t.Fatalf("sign session: %v", err)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: tok})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func TestHealthAndAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", w.Code)
	}
}

func TestDashboard(t *testing.T) {
	r, d := newTestRouter(t)

	w, resp := do(t, r, http.MethodGet, "/api/dashboard?period=weekly", "")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if d.dashboard.gotTenant != 7 || d.dashboard.gotPeriod != period.Weekly {
		t.Fatalf("unexpected call: tenant=%d period=%s", d.dashboard.gotTenant, d.dashboard.gotPeriod)
	}
	data := resp.Data.(map[string]interface{})
	if data["averageProcessingTime"] != nil {
		t.Fatalf("expected null average, got %v", data["averageProcessingTime"])
	}

	w, _ = do(t, r, http.MethodGet, "/api/dashboard?period=yearly", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid period, got %d", w.Code)
	}

	d.dashboard.err = errors.New("store down")
	w, resp = do(t, r, http.MethodGet, "/api/dashboard", "")
	if w.Code != http.StatusInternalServerError || resp.Success {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestListOrders_Filters(t *testing.T) {
	r, d := newTestRouter(t)

	path := "/api/orders?startDate=2024-05-01&endDate=2024-05-02&status=NFe%20emitida&numero=1001&ecommerceNumber=MLB-1"
	w, resp := do(t, r, http.MethodGet, path, "")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	f := d.lister.got
	if f.StartDate == nil || f.EndDate == nil || f.Status != "NFe emitida" || f.Numero != 1001 || f.EcommerceNumber != "MLB-1" {
		t.Fatalf("unexpected filters %+v", f)
	}
	if _, isList := resp.Data.([]interface{}); !isList {
		t.Fatalf("expected list data, got %T", resp.Data)
	}

	w, _ = do(t, r, http.MethodGet, "/api/orders?startDate=05/01/2024", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestDeleteOrder(t *testing.T) {
	r, d := newTestRouter(t)

	w, resp := do(t, r, http.MethodDelete, "/api/orders/10", "")
	if w.Code != http.StatusOK || resp.Message != "Pedido excluído com sucesso 77" {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}

	d.deleter.err = &orders.GuardError{Reason: "Não é possível excluir pedido com orderId ERP-1"}
	w, resp = do(t, r, http.MethodDelete, "/api/orders/10", "")
	if w.Code != http.StatusConflict || resp.Success || resp.Message != "Não é possível excluir pedido com orderId ERP-1" {
		t.Fatalf("expected 409 guard response, got %d: %s", w.Code, w.Body.String())
	}

	w, _ = do(t, r, http.MethodDelete, "/api/orders/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestInvoiceXML_ErrorMapping(t *testing.T) {
	r, d := newTestRouter(t)

	w, resp := do(t, r, http.MethodGet, "/api/orders/123/invoice-xml", "")
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	cases := []struct {
		err  error
		code int
	}{
		{&winthor.ConfigError{Reason: "totvs_host / totvs_port ausentes"}, http.StatusPreconditionFailed},
		{&winthor.TransportError{Op: "invoice", Status: 401, Body: "expired"}, http.StatusBadGateway},
		{&winthor.ContentError{Op: "invoice", Reason: "campo invoiceXml ausente"}, http.StatusBadGateway},
		{winthor.ErrOrderIDRequired, http.StatusBadRequest},
		{&winthor.TransportError{Op: "invoice", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		d.invoices.err = tc.err
		w, resp = do(t, r, http.MethodGet, "/api/orders/123/invoice-xml", "")
		if w.Code != tc.code || resp.Success || resp.Error == "" {
			t.Fatalf("%T: expected %d with error detail, got %d: %s", tc.err, tc.code, w.Code, w.Body.String())
		}
	}
}

func TestCheckout(t *testing.T) {
	r, d := newTestRouter(t)
	key := strings.Repeat("3", 44)

	w, resp := do(t, r, http.MethodPost, "/api/checkout/nfe", `{"chave_acesso":"`+key+`"}`)
	if w.Code != http.StatusOK || !resp.Success {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if d.checkout.gotUser != "Ana" {
		t.Fatalf("expected user name stamped, got %q", d.checkout.gotUser)
	}

	w, _ = do(t, r, http.MethodPost, "/api/checkout/nfe", `{"chave_acesso":"123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short key, got %d", w.Code)
	}

	d.checkout.err = orders.ErrNFeNotFound
	w, _ = do(t, r, http.MethodPost, "/api/checkout/nfe", `{"chave_acesso":"`+key+`"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	d.checkout.err = orders.ErrAlreadyCheckedOut
	w, _ = do(t, r, http.MethodPost, "/api/checkout/nfe", `{"chave_acesso":"`+key+`"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestTenantConfig(t *testing.T) {
	r, d := newTestRouter(t)

	w, resp := do(t, r, http.MethodGet, "/api/tenant/config", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data := resp.Data.(map[string]interface{})
	if data["wta_validar_etapa"] != true || data["totvs_configurado"] != false {
		t.Fatalf("unexpected config view %v", data)
	}
	if _, leaked := data["totvs_login"]; leaked {
		t.Fatalf("credentials must not be exposed")
	}

	w, resp = do(t, r, http.MethodPut, "/api/tenant/config", `{"wta_validar_etapa":false}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Data.(map[string]interface{})["wta_validar_etapa"] != false {
		t.Fatalf("expected flag cleared")
	}

	w, _ = do(t, r, http.MethodPut, "/api/tenant/config", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 with no flags, got %d", w.Code)
	}

	d.tenants.tenant = nil
	w, _ = do(t, r, http.MethodGet, "/api/tenant/config", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing tenant, got %d", w.Code)
	}
}
