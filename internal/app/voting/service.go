// Pacote voting implementa as regras de negócio das eleições: ciclo de vida, registro de votos e apuração.
package voting

import (
	"context"
	"errors"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/clock"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

// Service concentra as regras de eleição e delega acesso a repositórios, contador e fila.
// Contador, fila e limitador são opcionais.
type Service struct {
	elections domain.ElectionRepository
	votes     domain.VoteRepository
	turnout   domain.Counter
	events    domain.EventQueue
	limiter   domain.RateLimiter
	clock     domain.Clock
	ids       *ids.Generator
}

func NewService(
	elections domain.ElectionRepository,
	votes domain.VoteRepository,
	turnout domain.Counter,
	events domain.EventQueue,
	limiter domain.RateLimiter,
	clk domain.Clock,
	idsGen *ids.Generator,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Service{
		elections: elections,
		votes:     votes,
		turnout:   turnout,
		events:    events,
		limiter:   limiter,
		clock:     clk,
		ids:       idsGen,
	}
}

// loadElection valida o identificador antes de ir ao banco, separando id malformado de inexistente.
func (s *Service) loadElection(ctx context.Context, id string) (domain.Election, error) {
	canonical, ok := ids.Canonical(id)
	if !ok {
		return domain.Election{}, domain.ErrInvalidID
	}
	e, err := s.elections.FindByID(ctx, domain.ElectionID(canonical))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Election{}, domain.ErrNotFound
		}
		return domain.Election{}, err
	}
	return e, nil
}

func stateError(err error, e domain.Election, status domain.ElectionStatus) error {
	return &domain.StateError{
		Err:       err,
		Status:    status,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
	}
}
