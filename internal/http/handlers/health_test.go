package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/cohorthub/internal/http/handlers"
)

type fakePinger struct {
	pingFn func(ctx context.Context) error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}
	return nil
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]handlers.Pinger
		wantStatus int
	}{
		{name: "no deps", checks: nil, wantStatus: http.StatusOK},
		{name: "all up", checks: map[string]handlers.Pinger{"postgres": &fakePinger{}, "redis": &fakePinger{}}, wantStatus: http.StatusOK},
		{
			name: "redis down",
			checks: map[string]handlers.Pinger{
				"postgres": &fakePinger{},
				"redis":    &fakePinger{pingFn: func(context.Context) error { return errors.New("refused") }},
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.checks)
			r := setupRouter(http.MethodGet, "/readyz", h.Readyz)

			w := serve(r, newRequest(http.MethodGet, "/readyz"))
			if w.Code != tt.wantStatus {
				t.Fatalf("got %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestDocs(t *testing.T) {
	w := serve(setupRouter(http.MethodGet, "/docs", handlers.DocsPage), newRequest(http.MethodGet, "/docs"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "swagger-ui") {
		t.Fatalf("docs page: got %d", w.Code)
	}

	w = serve(setupRouter(http.MethodGet, "/docs/openapi.yaml", handlers.OpenAPISpec), newRequest(http.MethodGet, "/docs/openapi.yaml"))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/auth/signup") {
		t.Fatalf("openapi: got %d", w.Code)
	}
}
