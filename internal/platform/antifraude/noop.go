package antifraude

import (
	"context"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// Noop libera tudo; usado quando ANTIFRAUDE_RATE_LIMIT_ENABLED=false.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

// Allow só recusa quando o contexto já foi cancelado.
func (Noop) Allow(ctx context.Context, _ string, _ ...string) error {
	return ctx.Err()
}

var _ domain.RateLimiter = Noop{}
