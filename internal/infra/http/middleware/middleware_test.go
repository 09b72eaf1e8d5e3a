package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
)

func TestRealIP(t *testing.T) {
	trusted := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("2001:db8:ffff::/48"),
	}

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"cloudfront ipv4", map[string]string{"CloudFront-Viewer-Address": "203.0.113.7:51234"}, "10.0.0.1:80", "203.0.113.7"},
		{"cloudfront ipv6", map[string]string{"CloudFront-Viewer-Address": "2001:db8::1:443"}, "10.0.0.1:80", "2001:db8::1"},
		{"xff pula proxies confiáveis", map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.3"}, "10.0.0.1:80", "198.51.100.2"},
		{"xff forjado à esquerda", map[string]string{"X-Forwarded-For": "1.2.3.4, 198.51.100.2"}, "10.0.0.1:80", "198.51.100.2"},
		{"x-real-ip", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.1:80", "198.51.100.9"},
		{"cabeçalho inválido", map[string]string{"CloudFront-Viewer-Address": "lixo"}, "10.0.0.1:80", "10.0.0.1"},
		{"sem cabeçalhos", nil, "10.0.0.1:80", "10.0.0.1"},
		{"peer não confiável ignora cloudfront", map[string]string{"CloudFront-Viewer-Address": "203.0.113.7:1"}, "192.0.2.10:4444", "192.0.2.10"},
		{"peer não confiável ignora xff", map[string]string{"X-Forwarded-For": "203.0.113.8"}, "192.0.2.10:4444", "192.0.2.10"},
		{"peer ipv6 confiável", map[string]string{"X-Real-IP": "198.51.100.9"}, "[2001:db8:ffff::2]:443", "198.51.100.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := RealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), r)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRealIP_NoTrustedProxiesIgnoresHeaders(t *testing.T) {
	var got string
	h := RealIP(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:80"
	r.Header.Set("X-Forwarded-For", "203.0.113.8")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "10.0.0.1", got)
}

func TestLimit_SpoofedHeadersDoNotBypass(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := RealIP(nil)(Limit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	codes := []int{}
	for _, spoofed := range []string{"203.0.113.1", "203.0.113.2"} {
		r := httptest.NewRequest(http.MethodPost, "/leads", nil)
		r.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestServiceAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"token certo", "s3gredo", "Bearer s3gredo", http.StatusNoContent},
		{"bearer minúsculo", "s3gredo", "bearer s3gredo", http.StatusNoContent},
		{"sem header", "s3gredo", "", http.StatusUnauthorized},
		{"token errado", "s3gredo", "Bearer s3gred0", http.StatusUnauthorized},
		{"prefixo do token", "s3gredo", "Bearer s3g", http.StatusUnauthorized},
		{"outro esquema", "s3gredo", "Basic s3gredo", http.StatusUnauthorized},
		{"nada configurado", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/users", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ServiceAuth(tt.token)(ok).ServeHTTP(rec, r)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(3 * time.Minute)
	rl.evict()
	assert.Empty(t, rl.visitors)
}

func TestLimit(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := Limit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/leads", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/leads", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Ctx(r.Context(), base).Info("dentro do handler")
		seen = w.Header().Get(RequestIDHeader)
		w.WriteHeader(http.StatusCreated)
	})
	h := RequestID(AccessLog(base)(inner))

	t.Run("gera id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", nil))

		id := rec.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, seen)

		entries := logs.TakeAll()
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.Equal(t, id, e.ContextMap()["request_id"])
		}
		assert.Equal(t, int64(http.StatusCreated), entries[1].ContextMap()["status"])
	})

	t.Run("reaproveita id recebido", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/enrollment/{leadId}/progress", func(w http.ResponseWriter, r *http.Request) {})

	before := counterValue(t, httpRequestsTotal.WithLabelValues(http.MethodGet, "/enrollment/{leadId}/progress", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/enrollment/42/progress", nil))
	after := counterValue(t, httpRequestsTotal.WithLabelValues(http.MethodGet, "/enrollment/{leadId}/progress", "200"))

	assert.Equal(t, before+1, after)
}

func TestFunnelCounters(t *testing.T) {
	before := counterValue(t, waitlistJoins.WithLabelValues("JOINED"))
	RecordWaitlistJoin("")
	assert.Equal(t, before+1, counterValue(t, waitlistJoins.WithLabelValues("JOINED")))

	before = counterValue(t, leadsCaptured.WithLabelValues("page", "true"))
	RecordLeadCaptured("page", true)
	assert.Equal(t, before+1, counterValue(t, leadsCaptured.WithLabelValues("page", "true")))
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
