package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 5)
	defer rl.Stop()

	for i := 0; i < 5; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("Request %d should be allowed within burst", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Request beyond burst should be denied")
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	if !rl.Allow("10.0.0.1") {
		t.Fatal("First client's first request should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("First client's second request should be denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("Second client should have its own budget")
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	rl := NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	e := echo.New()
	next := func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
	mw := RateLimitMiddleware(rl)(next)

	for i, wantStatus := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		req.RemoteAddr = "192.168.1.5:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := mw(c); err != nil {
			t.Fatalf("Request %d: expected no error, got %v", i, err)
		}
		if rec.Code != wantStatus {
			t.Errorf("Request %d: expected status %d, got %d", i, wantStatus, rec.Code)
		}
	}
}
