package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/planners", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://app.wayfare.dev"})

	req := httptest.NewRequest(http.MethodGet, "/planners", nil)
	req.Header.Set("Origin", "https://app.wayfare.dev")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.wayfare.dev" {
		t.Fatalf("expected origin echoed back, got %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORSDeniesUnknownOrigin(t *testing.T) {
	router := newCORSRouter([]string{"https://app.wayfare.dev"})

	req := httptest.NewRequest(http.MethodGet, "/planners", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected the request itself to proceed, got %d", rr.Code)
	}
}

func TestCORSWildcard(t *testing.T) {
	router := newCORSRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/planners", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := newCORSRouter([]string{"https://app.wayfare.dev"})

	req := httptest.NewRequest(http.MethodOptions, "/planners", nil)
	req.Header.Set("Origin", "https://app.wayfare.dev")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatal("expected allow-methods header on preflight")
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Fatal("expected allow-headers header on preflight")
	}
}
