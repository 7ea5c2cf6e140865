package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/cohorthub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the tests.
func init() {
	gin.SetMode(gin.TestMode)
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

// setupRouter mounts one handler behind the same error plumbing the real router uses.
func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := gin.New()
	r.Use(middlewares.RequestID(), middlewares.Recovery(log), middlewares.ErrorResponder(log))
	r.Handle(method, path, h...)

	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func newRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}
	return resp
}
