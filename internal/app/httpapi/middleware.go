package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/metrics"
	"github.com/marcelojr/urna-digital/internal/platform/security"
)

const headerRequestID = "X-Request-ID"

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
	ctxKeyClaims
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

func claimsFrom(ctx context.Context) *security.Claims {
	claims, _ := ctx.Value(ctxKeyClaims).(*security.Claims)
	return claims
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Wrap aplica request id, log e métricas a todas as rotas do mux.
func (a *API) Wrap(next http.Handler) http.Handler {
	return a.withRequestID(a.withLogging(next))
}

func (a *API) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID, id)))
	})
}

// withLogging registra uma linha por requisição; a rota vem do padrão casado pelo ServeMux.
func (a *API) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, route, rec.status, elapsed)
		a.logger.Info("http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

// requireRole valida o bearer token, consulta a revogação e confere o papel.
func (a *API) requireRole(next http.HandlerFunc, roles ...domain.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			a.responderErro(w, r, domain.ErrUnauthorized)
			return
		}

		claims, err := a.tokens.Parse(raw)
		if err != nil {
			a.logger.Debug("token rejeitado", "err", err, "request_id", requestIDFrom(r.Context()))
			a.responderErro(w, r, domain.ErrUnauthorized)
			return
		}

		if a.revocations != nil {
			revoked, err := a.revocations.IsRevoked(r.Context(), claims.UserID())
			if err != nil {
				a.responderErro(w, r, err)
				return
			}
			if revoked {
				a.responderErro(w, r, fmt.Errorf("%w: sessao revogada", domain.ErrUnauthorized))
				return
			}
		}

		if !slices.Contains(roles, claims.Role) {
			a.responderErro(w, r, domain.ErrForbidden)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), ctxKeyClaims, claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
