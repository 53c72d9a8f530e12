package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wayfare-dev/wayfare/internal/infra/config"
	httproutes "github.com/wayfare-dev/wayfare/internal/transport/http/routes"
)

func testDependencies() httproutes.Dependencies {
	return httproutes.Dependencies{
		Config: &config.AppConfig{App: config.AppSettings{Env: "test"}},
		Logger: zap.NewNop(),
	}
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(context.Context) error        { return s.err }
func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestReadyEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDependencies()
	deps.Database = stubChecker{}
	deps.Cache = stubChecker{}

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpointDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)

	deps := testDependencies()
	deps.Database = stubChecker{}
	deps.Cache = stubChecker{err: errors.New("connection refused")}

	r := httproutes.Register(deps)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/planners", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := httproutes.Register(testDependencies())
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
