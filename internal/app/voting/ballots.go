package voting

import (
	"context"
	"errors"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/antifraude"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
	"github.com/marcelojr/urna-digital/internal/platform/logger"
)

// Ballot é o pedido de voto já autenticado.
type Ballot struct {
	ElectionID  string
	CandidateID string
	UserID      domain.UserID
	AuditHash   string
}

// CastVote registra um voto por eleitor e eleição. O pré-check só evita trabalho;
// quem garante a unicidade é o índice do banco.
func (s *Service) CastVote(ctx context.Context, b Ballot) (domain.Vote, error) {
	candidateID, ok := ids.Canonical(b.CandidateID)
	if !ok || !ids.Valid(b.ElectionID) {
		return domain.Vote{}, domain.ErrInvalidID
	}

	e, err := s.loadElection(ctx, b.ElectionID)
	if err != nil {
		return domain.Vote{}, err
	}

	now := s.clock.Now()
	if status := e.StatusAt(now); status != domain.StatusActive {
		return domain.Vote{}, stateError(domain.ErrInvalidState, e, status)
	}

	candidate, ok := e.Candidate(domain.CandidateID(candidateID))
	if !ok {
		return domain.Vote{}, domain.ErrInvalidCandidate
	}

	// Cota por eleitor e eleição.
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, antifraude.ScopeVote, string(e.ID), string(b.UserID)); err != nil {
			return domain.Vote{}, err
		}
	}

	_, err = s.votes.FindByElectionAndUser(ctx, e.ID, b.UserID)
	switch {
	case err == nil:
		return domain.Vote{}, domain.ErrAlreadyVoted
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Vote{}, err
	}

	vote := domain.Vote{
		ID:          domain.VoteID(s.ids.New()),
		ElectionID:  e.ID,
		UserID:      b.UserID,
		CandidateID: candidate.ID,
		AuditHash:   b.AuditHash,
		CastAt:      now,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		return domain.Vote{}, err
	}

	if s.turnout != nil {
		if _, err := s.turnout.Increment(ctx, TurnoutKey(e.ID), 1); err != nil {
			logger.Warn("voting: falha incrementando contador", "election_id", e.ID, "error", err)
		}
	}

	return vote, nil
}

// VoteStatus informa se o eleitor já votou e em quem, com os dados públicos do candidato.
func (s *Service) VoteStatus(ctx context.Context, electionID string, userID domain.UserID) (domain.VoteStatus, error) {
	e, err := s.loadElection(ctx, electionID)
	if err != nil {
		return domain.VoteStatus{}, err
	}

	status := domain.VoteStatus{ElectionID: e.ID}
	vote, err := s.votes.FindByElectionAndUser(ctx, e.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return status, nil
		}
		return domain.VoteStatus{}, err
	}

	status.HasVoted = true
	votedAt := vote.CastAt
	status.VotedAt = &votedAt
	if c, ok := e.Candidate(vote.CandidateID); ok {
		summary := c.Summary()
		status.Candidate = &summary
	} else {
		status.Candidate = &domain.CandidateSummary{ID: vote.CandidateID}
	}
	return status, nil
}
