package validation

import (
	"strings"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestListOrdersQuery_Valid(t *testing.T) {
	v := New()

	q := ListOrdersQuery{
		StartDate:       "2024-05-01",
		EndDate:         "2024-05-10T00:00:00-03:00",
		Status:          "NFe emitida",
		Numero:          "1001",
		EcommerceNumber: "MLB-1",
	}
	if err := v.Struct(q); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
	if err := v.Struct(ListOrdersQuery{}); err != nil {
		t.Fatalf("expected empty query to be valid, got: %v", err)
	}
}

func TestListOrdersQuery_Invalid(t *testing.T) {
	v := New()

	cases := map[string]ListOrdersQuery{
		"bad date":       {StartDate: "01/05/2024"},
		"reversed range": {StartDate: "2024-05-10", EndDate: "2024-05-01"},
		"non numeric":    {Numero: "12a"},
	}
	for name, q := range cases {
		if err := v.Struct(q); err == nil {
			t.Fatalf("%s: expected validation error, got nil", name)
		}
	}
}

func TestDashboardQuery(t *testing.T) {
	v := New()
	for _, p := range []string{"", "daily", "weekly", "monthly"} {
		if err := v.Struct(DashboardQuery{Period: p}); err != nil {
			t.Fatalf("%q: expected valid, got %v", p, err)
		}
	}
	if err := v.Struct(DashboardQuery{Period: "yearly"}); err == nil {
		t.Fatal("expected validation error for yearly")
	}
}

func TestCheckoutRequest(t *testing.T) {
	v := New()
	if err := v.Struct(CheckoutRequest{ChaveAcesso: strings.Repeat("1", 44)}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	for _, key := range []string{"", strings.Repeat("1", 43), strings.Repeat("x", 44)} {
		if err := v.Struct(CheckoutRequest{ChaveAcesso: key}); err == nil {
			t.Fatalf("%q: expected validation error", key)
		}
	}
}

func TestTenantFlagsRequest(t *testing.T) {
	v := New()
	if err := v.Struct(TenantFlagsRequest{ValidarEtapa: boolPtr(false)}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.Struct(TenantFlagsRequest{}); err == nil {
		t.Fatal("expected validation error when no flag is supplied")
	}
}
