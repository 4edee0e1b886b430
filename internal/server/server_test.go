package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"globlex/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func TestServer_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/api/v1/status", http.StatusOK},
		{http.MethodGet, "/api/config", http.StatusOK},
		{http.MethodGet, "/api/runs", http.StatusOK},
		{http.MethodOptions, "/api/calculate", http.StatusNoContent},
		{http.MethodGet, "/api/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("CORS header = %q", got)
			}
		})
	}

	// 数据库已迁移
	if v, err := srv.GetStore().SchemaVersion(); err != nil || v < 1 {
		t.Errorf("schema version = %d, err = %v", v, err)
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(RateLimiterConfig{
		Rate:  rate.Limit(0.001),
		Burst: 2,
		IdentifierExtractor: func(c *gin.Context) string {
			return c.GetHeader("X-Client")
		},
	}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Client", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("a"); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := hit("a"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	// 其他客户端不受影响
	if code := hit("b"); code != http.StatusOK {
		t.Errorf("other client status = %d", code)
	}
}

func TestRateLimiterStore_ExpiresVisitors(t *testing.T) {
	s := newRateLimiterStore(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: 1, ExpiresIn: time.Minute})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if !s.allow("a") {
		t.Fatal("first request denied")
	}
	if s.allow("a") {
		t.Fatal("second request allowed")
	}

	now = now.Add(2 * time.Minute)
	if !s.allow("b") {
		t.Fatal("b denied")
	}
	if _, ok := s.visitors["a"]; ok {
		t.Error("expired visitor a not cleaned up")
	}
}
