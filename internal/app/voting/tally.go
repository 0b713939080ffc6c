package voting

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// Results apura sob demanda; nada é guardado entre chamadas.
func (s *Service) Results(ctx context.Context, id string) (domain.Results, error) {
	e, err := s.loadElection(ctx, id)
	if err != nil {
		return domain.Results{}, err
	}

	now := s.clock.Now()
	if e.StatusAt(now) != domain.StatusCompleted {
		return domain.Results{}, &domain.ResultsPendingError{EndDate: e.EndDate}
	}

	votes, err := s.votes.ListByElection(ctx, e.ID)
	if err != nil {
		return domain.Results{}, err
	}

	return Tally(e, votes, now), nil
}

// Tally conta votos por candidato. Todo candidato aparece, mesmo sem votos, e
// vencedores são todos os que empatam no máximo; sem votos, todos empatam.
func Tally(e domain.Election, votes []domain.Vote, now time.Time) domain.Results {
	counts := make(map[domain.CandidateID]int64, len(e.Candidates))
	for _, v := range votes {
		counts[v.CandidateID]++
	}
	total := int64(len(votes))

	rows := make([]domain.CandidateResult, len(e.Candidates))
	for i, c := range e.Candidates {
		n := counts[c.ID]
		rows[i] = domain.CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			Votes:       n,
			Percentage:  percentage(n, total),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Votes > rows[j].Votes
	})

	winners := []domain.CandidateResult{}
	if len(rows) > 0 {
		top := rows[0].Votes
		for _, r := range rows {
			if r.Votes == top {
				winners = append(winners, r)
			}
		}
	}

	return domain.Results{
		ElectionID:  e.ID,
		Title:       e.Title,
		Description: e.Description,
		TotalVotes:  total,
		Results:     rows,
		Winners:     winners,
		IsTie:       len(winners) > 1,
		EndDate:     e.EndDate,
		LastUpdated: now,
	}
}

func percentage(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	p := float64(n) / float64(total) * 100
	return math.Round(p*100) / 100
}
