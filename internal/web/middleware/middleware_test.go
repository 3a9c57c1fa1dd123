package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/supplierdb/internal/config"
	"github.com/stretchr/testify/assert"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(r.RemoteAddr))
})

func TestAPIKeyAuth(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"alpha", "beta"}}

	tests := []struct {
		name   string
		cfg    *config.SecurityConfig
		header map[string]string
		want   int
	}{
		{"disabled", &config.SecurityConfig{}, nil, http.StatusOK},
		{"missing", cfg, nil, http.StatusUnauthorized},
		{"invalid", cfg, map[string]string{APIKeyHeader: "gamma"}, http.StatusForbidden},
		{"valid header", cfg, map[string]string{APIKeyHeader: "beta"}, http.StatusOK},
		{"bearer", cfg, map[string]string{"Authorization": "Bearer alpha"}, http.StatusOK},
		{"no keys configured", &config.SecurityConfig{RequireAPIKey: true}, map[string]string{APIKeyHeader: "alpha"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			APIKeyAuth(tt.cfg)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"code":"AUTH`)
			}
		})
	}
}

func TestTrustedRealIP(t *testing.T) {
	handler := TrustedRealIP([]string{"10.0.0.0/8", "192.168.1.5", "not-an-ip"})(ok)

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"trusted real ip", "10.1.2.3:5555", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"trusted forwarded first hop", "10.1.2.3:5555", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.1.2.3"}, "203.0.113.9"},
		{"single address entry", "192.168.1.5:80", map[string]string{"X-Real-IP": "198.51.100.1"}, "198.51.100.1"},
		{"untrusted ignored", "172.16.0.1:5555", map[string]string{"X-Real-IP": "203.0.113.7"}, "172.16.0.1:5555"},
		{"invalid header ignored", "10.1.2.3:5555", map[string]string{"X-Real-IP": "bogus"}, "10.1.2.3:5555"},
		{"no headers", "10.1.2.3:5555", nil, "10.1.2.3:5555"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rw.Write([]byte("abc"))
	rw.Write([]byte("de"))
	assert.Equal(t, 5, rw.bytes)
	assert.True(t, rw.wroteHeader)
}
