package db

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func testContext(t *testing.T, target string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestExtractTenantID_FromHeader(t *testing.T) {
	c := testContext(t, "/")
	c.Request().Header.Set("X-Tenant-ID", "sunrise_house")

	if tid := extractTenantID(c, "default"); tid != "sunrise_house" {
		t.Errorf("expected sunrise_house, got %s", tid)
	}
}

func TestExtractTenantID_FromQuery(t *testing.T) {
	c := testContext(t, "/?tenant_id=willow_lodge")

	if tid := extractTenantID(c, "default"); tid != "willow_lodge" {
		t.Errorf("expected willow_lodge, got %s", tid)
	}
}

func TestExtractTenantID_FromCredential(t *testing.T) {
	c := testContext(t, "/")
	c.Set("jwt_tenant_id", "oak_court")

	if tid := extractTenantID(c, "default"); tid != "oak_court" {
		t.Errorf("expected oak_court, got %s", tid)
	}
}

func TestExtractTenantID_Default(t *testing.T) {
	c := testContext(t, "/")

	if tid := extractTenantID(c, "default"); tid != "default" {
		t.Errorf("expected default, got %s", tid)
	}
}

func TestExtractTenantID_Priority(t *testing.T) {
	// Credential claim wins over the header, which wins over the query.
	c := testContext(t, "/?tenant_id=query")
	c.Request().Header.Set("X-Tenant-ID", "header")
	c.Set("jwt_tenant_id", "credential")

	if tid := extractTenantID(c, "default"); tid != "credential" {
		t.Errorf("expected credential claim to win, got %s", tid)
	}

	c = testContext(t, "/?tenant_id=query")
	c.Request().Header.Set("X-Tenant-ID", "header")
	if tid := extractTenantID(c, "default"); tid != "header" {
		t.Errorf("expected header over query, got %s", tid)
	}
}

func TestExtractTenantID_EmptyCredentialFallsThrough(t *testing.T) {
	c := testContext(t, "/")
	c.Request().Header.Set("X-Tenant-ID", "sunrise_house")
	c.Set("jwt_tenant_id", "")

	if tid := extractTenantID(c, "default"); tid != "sunrise_house" {
		t.Errorf("expected header when claim is empty, got %s", tid)
	}
}

func TestTenantIDPattern(t *testing.T) {
	cases := []struct {
		input string
		valid bool
	}{
		{"sunrise", true},
		{"SUNRISE", true},
		{"home_1", true},
		{"a", true},
		{"A1B2C3", true},
		{"a-b", false},
		{"a.b", false},
		{"a b", false},
		{"a/b", false},
		{"", false},
		{"'; DROP TABLE", false},
		{"home@1", false},
	}
	for _, tc := range cases {
		if got := tenantIDPattern.MatchString(tc.input); got != tc.valid {
			t.Errorf("tenantIDPattern.MatchString(%q) = %v, want %v", tc.input, got, tc.valid)
		}
	}
}

func TestCreateTenantSchema_InvalidID(t *testing.T) {
	// The identifier gate must fire before any connection is touched.
	for _, id := range []string{"invalid-id!", "home.with.dot", "ho me", "drop;table"} {
		if err := CreateTenantSchema(context.Background(), nil, id, ""); err == nil {
			t.Errorf("expected error for invalid tenant ID %q", id)
		}
	}
}

func TestConnFromContext_Nil(t *testing.T) {
	if conn := ConnFromContext(context.Background()); conn != nil {
		t.Error("expected nil conn from empty context")
	}

	ctx := context.WithValue(context.Background(), DBConnKey, "not-a-conn")
	if conn := ConnFromContext(ctx); conn != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestTenantFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), TenantIDKey, "sunrise_house")
	if tid := TenantFromContext(ctx); tid != "sunrise_house" {
		t.Errorf("expected sunrise_house, got %s", tid)
	}

	if tid := TenantFromContext(context.Background()); tid != "" {
		t.Errorf("expected empty string, got %s", tid)
	}

	wrong := context.WithValue(context.Background(), TenantIDKey, 12345)
	if tid := TenantFromContext(wrong); tid != "" {
		t.Errorf("expected empty string for wrong type, got %q", tid)
	}
}

func TestTxFromContext_Nil(t *testing.T) {
	if tx := TxFromContext(context.Background()); tx != nil {
		t.Error("expected nil tx from empty context")
	}

	ctx := context.WithValue(context.Background(), DBTxKey, "not-a-tx")
	if tx := TxFromContext(ctx); tx != nil {
		t.Error("expected nil when context value is wrong type")
	}
}

func TestWithTx_UnreachableDatabase(t *testing.T) {
	pool := unreachablePool(t)

	called := false
	err := WithTx(context.Background(), pool, func(context.Context) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected begin error against unreachable database")
	}
	if called {
		t.Fatal("fn must not run when the transaction cannot begin")
	}
}
