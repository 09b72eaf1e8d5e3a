package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID reaproveita o X-Request-ID recebido ou gera um uuid, e coloca o id no
// logger do context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.WithFields(r.Context(), zap.String("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLog escreve uma linha por requisição depois da resposta.
func AccessLog(base *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			log := logger.Ctx(r.Context(), base)
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rw.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("ip", ClientIP(r)),
			}
			if rw.statusCode >= http.StatusInternalServerError {
				log.Warn("request", fields...)
				return
			}
			log.Info("request", fields...)
		})
	}
}

// RealIP reescreve o RemoteAddr com o IP do visitante, como o RealIP do chi, mas só
// quando a conexão vem de um proxy confiável (CloudFront, ALB). De qualquer outro
// peer os cabeçalhos são ignorados, senão o cliente escolhe o próprio IP e fura o
// rate limit. Ordem: CloudFront-Viewer-Address, X-Forwarded-For (da direita para a
// esquerda, pulando proxies confiáveis), X-Real-IP.
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(trusted) > 0 && isTrusted(trusted, stripPort(r.RemoteAddr)) {
				if ip := forwardedIP(r, trusted); ip != "" {
					// com porta, para IPv6 não ser confundido com ip:porta
					r.RemoteAddr = net.JoinHostPort(ip, "0")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedIP(r *http.Request, trusted []netip.Prefix) string {
	if viewer := stripPort(r.Header.Get("CloudFront-Viewer-Address")); validIP(viewer) {
		return viewer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if !validIP(hop) {
				break
			}
			if !isTrusted(trusted, hop) || i == 0 {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); validIP(xri) {
		return xri
	}
	return ""
}

func isTrusted(trusted []netip.Prefix, ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func validIP(s string) bool {
	_, err := netip.ParseAddr(s)
	return err == nil
}

// ClientIP é o IP que o rate limit e a captura de leads usam; com RealIP na frente
// já é o do visitante.
func ClientIP(r *http.Request) string {
	return stripPort(r.RemoteAddr)
}

// stripPort aceita "ip:porta", "[ipv6]:porta" e ip puro.
func stripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	// CloudFront manda IPv6 sem colchetes: 2001:db8::1:443
	if strings.Count(addr, ":") > 1 {
		if i := strings.LastIndex(addr, ":"); i > 0 && net.ParseIP(addr[:i]) != nil {
			return addr[:i]
		}
	}
	return addr
}
