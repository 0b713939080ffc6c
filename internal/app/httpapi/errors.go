package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
)

const genericErrorMessage = "erro interno, tente novamente mais tarde"

type errorResponse struct {
	Erro     string              `json:"erro"`
	Campos   []domain.FieldError `json:"campos,omitempty"`
	Detalhes map[string]any      `json:"detalhes,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrInvalidCandidate),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrResultsNotAvailable):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// responderErro traduz o erro de domínio; falhas de infraestrutura só mostram detalhe fora de produção.
func (a *API) responderErro(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Erro: err.Error()}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Campos = verr.Fields
	}

	var serr *domain.StateError
	if errors.As(err, &serr) {
		body.Detalhes = map[string]any{
			"status":    serr.Status,
			"startDate": serr.StartDate.Format(time.RFC3339),
			"endDate":   serr.EndDate.Format(time.RFC3339),
		}
	}

	var pending *domain.ResultsPendingError
	if errors.As(err, &pending) {
		body.Detalhes = map[string]any{"availableAfter": pending.EndDate.Format(time.RFC3339)}
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("erro interno", "err", err, "method", r.Method, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
		if a.production {
			body = errorResponse{Erro: genericErrorMessage}
		}
	}

	responderJSON(w, status, body)
}

// outcomeFor resume o erro num rótulo de métrica de baixa cardinalidade.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, domain.ErrInvalidState):
		return "closed"
	case errors.Is(err, domain.ErrInvalidCandidate),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
