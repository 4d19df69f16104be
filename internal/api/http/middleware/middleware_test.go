package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/confreg-server/internal/api/http/reqctx"
	"github.com/dtroode/confreg-server/internal/logger"
	"github.com/dtroode/confreg-server/internal/metrics"
	"github.com/dtroode/confreg-server/internal/testutil"
)

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAdminToken(subject string, ttl time.Duration) (string, error) {
	args := m.Called(subject, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseAdminToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCORS(t *testing.T) {
	c := NewCORS([]string{"http://localhost:3000", " https://confreg.example.com "}, testutil.MakeNoopLogger())
	h := c.Handle(http.HandlerFunc(okHandler))

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantStatus int
		wantAllow  string
	}{
		{name: "no origin", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "allowed origin", method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllow: "http://localhost:3000"},
		{name: "trimmed entry", method: http.MethodPost, origin: "https://confreg.example.com", wantStatus: http.StatusOK, wantAllow: "https://confreg.example.com"},
		{name: "preflight", method: http.MethodOptions, origin: "http://localhost:3000", preflight: true, wantStatus: http.StatusNoContent, wantAllow: "http://localhost:3000"},
		{name: "rejected origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/register", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			if tt.preflight {
				assert.Equal(t, corsAllowedMethods, rec.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, corsAllowedHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
			}
			if tt.wantStatus == http.StatusForbidden {
				assert.JSONEq(t, `{"success":false,"message":"Not allowed by CORS"}`, rec.Body.String())
			}
		})
	}
}

func TestCORS_EmptyListRejectsBrowsers(t *testing.T) {
	h := NewCORS(nil, testutil.MakeNoopLogger()).Handle(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		parseErr   error
		wantParse  bool
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good", wantParse: true, wantStatus: http.StatusOK},
		{name: "lower-case scheme", header: "bearer good", wantParse: true, wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer good", parseErr: errors.New("expired"), wantParse: true, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &MockTokenManager{}
			if tt.wantParse {
				tokens.On("ParseAdminToken", "good").Return("ops", tt.parseErr).Once()
			}
			cm := reqctx.NewManager()

			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject, _ = cm.GetAdminSubject(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			NewAuthenticate(tokens, cm, testutil.MakeNoopLogger()).Handle(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ops", gotSubject)
			} else {
				assert.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, rec.Body.String())
			}
			tokens.AssertExpectations(t)
		})
	}
}

func TestLogging_LogsRouteAndStatus(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogging(logger.NewWithWriter(&buf, 0, "text"))

	r := chi.NewRouter()
	r.Use(l.Handle)
	r.Get("/admin/stats", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	out := buf.String()
	assert.Contains(t, out, "HTTP request completed")
	assert.Contains(t, out, "route=/admin/stats")
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "HTTP request failed")
}

func TestMetrics_ObservesRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(NewMetrics(m).Handle)
	r.Get("/", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	count, err := promtest.GatherAndCount(reg, "confreg_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
