package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
)

func limitedHandler(cfg RateLimitConfig) echo.HandlerFunc {
	return RateLimit(cfg)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
}

func doRequest(e *echo.Echo, handler echo.HandlerFunc, tenant string) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if tenant != "" {
		c.Set("jwt_tenant_id", tenant)
	}
	return rec, handler(c)
}

func TestRateLimit_BurstPasses(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	for i := 0; i < 5; i++ {
		rec, err := doRequest(e, handler, "")
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i+1, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "10" {
			t.Errorf("request %d: X-RateLimit-Limit = %q, want 10", i+1, got)
		}
	}
}

func TestRateLimit_DeniesBeyondBurst(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})

	for i := 0; i < 2; i++ {
		if _, err := doRequest(e, handler, ""); err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
	}

	_, err := doRequest(e, handler, "")
	if err == nil {
		t.Fatal("third request should be denied")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("want echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", httpErr.Code)
	}
}

func TestRateLimit_DeniedResponseHeaders(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	if _, err := doRequest(e, handler, ""); err != nil {
		t.Fatalf("first request: %v", err)
	}
	rec, err := doRequest(e, handler, "")
	if err == nil {
		t.Fatal("second request should be denied")
	}

	retryAfter := rec.Header().Get("Retry-After")
	if retryAfter == "" {
		t.Fatal("Retry-After not set")
	}
	secs, perr := strconv.Atoi(retryAfter)
	if perr != nil {
		t.Fatalf("Retry-After %q is not an integer", retryAfter)
	}
	if secs < 1 {
		t.Errorf("Retry-After = %d, want >= 1", secs)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}
}

func TestRateLimit_BucketsAreSeparatedByTenant(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 1})

	if _, err := doRequest(e, handler, "sunrise_house"); err != nil {
		t.Fatalf("sunrise_house first request: %v", err)
	}
	if _, err := doRequest(e, handler, "sunrise_house"); err == nil {
		t.Fatal("sunrise_house second request should be denied")
	}
	// Another home behind the same IP still has its own budget.
	if _, err := doRequest(e, handler, "willow_lodge"); err != nil {
		t.Fatalf("willow_lodge first request: %v", err)
	}
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	if cfg.RequestsPerSecond != 100 {
		t.Errorf("RequestsPerSecond = %f, want 100", cfg.RequestsPerSecond)
	}
	if cfg.BurstSize != 200 {
		t.Errorf("BurstSize = %d, want 200", cfg.BurstSize)
	}
}

func TestTokenBucket_RetryAfterZeroRate(t *testing.T) {
	b := newTokenBucket(0, 1)
	b.allow()
	if got := b.retryAfter(); got != 1 {
		t.Errorf("retryAfter = %d, want 1 when the bucket never refills", got)
	}
}

func TestRateLimiterStore_ReusesBuckets(t *testing.T) {
	store := newRateLimiterStore(RateLimitConfig{RequestsPerSecond: 10, BurstSize: 5})

	a := store.getBucket("10.0.0.1")
	if a == nil {
		t.Fatal("nil bucket")
	}
	if b := store.getBucket("10.0.0.1"); a != b {
		t.Error("same key should yield the same bucket")
	}
	if c := store.getBucket("10.0.0.2"); a == c {
		t.Error("different keys should yield different buckets")
	}
}
