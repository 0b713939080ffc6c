package voting

import (
	"context"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/logger"
)

// ListElections devolve todas as eleições com o status recalculado pelo relógio.
func (s *Service) ListElections(ctx context.Context) ([]domain.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	keys := make([]string, len(elections))
	for i := range elections {
		elections[i].Status = elections[i].StatusAt(now)
		keys[i] = TurnoutKey(elections[i].ID)
	}

	if s.turnout != nil && len(elections) > 0 {
		totals, err := s.turnout.GetMany(ctx, keys)
		if err != nil {
			// Comparecimento é informativo; a listagem segue sem ele.
			logger.Warn("voting: falha lendo comparecimento", "error", err)
			return elections, nil
		}
		for i := range elections {
			if v, ok := totals[keys[i]]; ok {
				elections[i].Turnout = &v
			}
		}
	}

	return elections, nil
}

func (s *Service) GetElection(ctx context.Context, id string) (domain.Election, error) {
	e, err := s.loadElection(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}
	e.Status = e.StatusAt(s.clock.Now())

	turnout, err := s.turnoutFor(ctx, e.ID)
	if err != nil {
		return domain.Election{}, err
	}
	e.Turnout = &turnout
	return e, nil
}

// turnoutFor prefere o contador Redis e cai para COUNT no banco quando ele não tem valor.
func (s *Service) turnoutFor(ctx context.Context, id domain.ElectionID) (int64, error) {
	if s.turnout != nil {
		v, err := s.turnout.Get(ctx, TurnoutKey(id))
		if err == nil && v > 0 {
			return v, nil
		}
		if err != nil {
			logger.Warn("voting: falha lendo contador", "election_id", id, "error", err)
		}
	}
	return s.votes.CountByElection(ctx, id)
}

func (s *Service) CreateElection(ctx context.Context, in ElectionInput, creator domain.UserID) (domain.Election, error) {
	e, err := s.mergeElection(in, domain.Election{})
	if err != nil {
		return domain.Election{}, err
	}

	now := s.clock.Now()
	e.ID = domain.ElectionID(s.ids.New())
	e.Status = e.StatusAt(now)
	e.CreatedBy = creator
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.elections.Create(ctx, e); err != nil {
		return domain.Election{}, err
	}
	return e, nil
}

// UpdateElection só é permitido enquanto a eleição ainda não começou.
func (s *Service) UpdateElection(ctx context.Context, id string, in ElectionInput) (domain.Election, error) {
	current, err := s.loadElection(ctx, id)
	if err != nil {
		return domain.Election{}, err
	}

	now := s.clock.Now()
	if status := current.StatusAt(now); status != domain.StatusUpcoming {
		return domain.Election{}, stateError(domain.ErrConflict, current, status)
	}

	e, err := s.mergeElection(in, current)
	if err != nil {
		return domain.Election{}, err
	}
	e.Status = e.StatusAt(now)
	e.UpdatedAt = now

	if err := s.elections.Update(ctx, e); err != nil {
		return domain.Election{}, err
	}
	return e, nil
}

// DeleteElection remove a eleição e seus votos; contador e evento são efeitos colaterais tolerantes a falha.
func (s *Service) DeleteElection(ctx context.Context, id string) (domain.DeleteReport, error) {
	current, err := s.loadElection(ctx, id)
	if err != nil {
		return domain.DeleteReport{}, err
	}

	now := s.clock.Now()
	if status := current.StatusAt(now); status != domain.StatusUpcoming {
		return domain.DeleteReport{}, stateError(domain.ErrConflict, current, status)
	}

	report, err := s.elections.DeleteCascade(ctx, current.ID)
	if err != nil {
		return domain.DeleteReport{}, err
	}

	if s.turnout != nil {
		if err := s.turnout.Delete(ctx, TurnoutKey(current.ID)); err != nil {
			logger.Warn("voting: falha removendo contador", "election_id", current.ID, "error", err)
		}
	}

	if s.events != nil {
		ev := domain.ElectionEvent{
			Type:         domain.EventElectionDeleted,
			ElectionID:   current.ID,
			VotesDeleted: report.VotesDeleted,
			OccurredAt:   now,
		}
		if err := s.events.Publish(ctx, ev); err != nil {
			logger.Warn("voting: falha publicando evento", "election_id", current.ID, "error", err)
		}
	}

	return report, nil
}
