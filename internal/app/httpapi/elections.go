package httpapi

import (
	"net/http"
	"time"

	"github.com/marcelojr/urna-digital/internal/app/voting"
	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/metrics"
	"github.com/marcelojr/urna-digital/internal/platform/security"
)

func (a *API) listElections(w http.ResponseWriter, r *http.Request) {
	elections, err := a.voting.ListElections(r.Context())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	if elections == nil {
		elections = []domain.Election{}
	}
	responderJSON(w, http.StatusOK, elections)
}

func (a *API) getElection(w http.ResponseWriter, r *http.Request) {
	e, err := a.voting.GetElection(r.Context(), r.PathValue("id"))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, e)
}

func (a *API) createElection(w http.ResponseWriter, r *http.Request) {
	var in voting.ElectionInput
	if err := decodeJSON(w, r, &in); err != nil {
		metrics.ObserveElectionOperation("create", outcomeFor(err))
		a.responderErro(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	e, err := a.voting.CreateElection(r.Context(), in, claims.UserID())
	metrics.ObserveElectionOperation("create", outcomeFor(err))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	a.logger.Info("eleicao criada", "election_id", e.ID, "admin", claims.UserID())
	responderJSON(w, http.StatusCreated, e)
}

func (a *API) updateElection(w http.ResponseWriter, r *http.Request) {
	var in voting.ElectionInput
	if err := decodeJSON(w, r, &in); err != nil {
		metrics.ObserveElectionOperation("update", outcomeFor(err))
		a.responderErro(w, r, err)
		return
	}

	e, err := a.voting.UpdateElection(r.Context(), r.PathValue("id"), in)
	metrics.ObserveElectionOperation("update", outcomeFor(err))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, e)
}

type deleteResponse struct {
	Message          string `json:"message"`
	ElectionsDeleted int64  `json:"electionsDeleted"`
	VotesDeleted     int64  `json:"votesDeleted"`
}

func (a *API) deleteElection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, err := a.voting.DeleteElection(r.Context(), id)
	metrics.ObserveElectionOperation("delete", outcomeFor(err))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	a.logger.Info("eleicao removida", "election_id", id, "votes_deleted", report.VotesDeleted)
	responderJSON(w, http.StatusOK, deleteResponse{
		Message:          "Eleicao removida com sucesso",
		ElectionsDeleted: report.ElectionsDeleted,
		VotesDeleted:     report.VotesDeleted,
	})
}

type voteRequest struct {
	CandidateID string `json:"candidateId"`
}

type voteResponse struct {
	Message     string `json:"message"`
	VoteID      string `json:"voteId"`
	ElectionID  string `json:"electionId"`
	CandidateID string `json:"candidateId"`
	Timestamp   string `json:"timestamp"`
}

func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveVoteRequest("invalid_payload")
		a.responderErro(w, r, err)
		return
	}

	claims := claimsFrom(r.Context())
	ballot := voting.Ballot{
		ElectionID:  r.PathValue("id"),
		CandidateID: req.CandidateID,
		UserID:      claims.UserID(),
		AuditHash:   security.AuditHash(a.auditSalt, clientIP(r), r.UserAgent()),
	}

	vote, err := a.voting.CastVote(r.Context(), ballot)
	if err != nil {
		status := outcomeFor(err)
		metrics.ObserveVoteRequest(status)
		a.logger.Warn("falha ao registrar voto", "err", err, "election_id", ballot.ElectionID, "status", status)
		a.responderErro(w, r, err)
		return
	}

	metrics.ObserveVoteRequest("accepted")
	a.logger.Info("voto registrado", "election_id", vote.ElectionID)
	responderJSON(w, http.StatusCreated, voteResponse{
		Message:     "Voto registrado com sucesso",
		VoteID:      string(vote.ID),
		ElectionID:  string(vote.ElectionID),
		CandidateID: string(vote.CandidateID),
		Timestamp:   vote.CastAt.UTC().Format(time.RFC3339),
	})
}

func (a *API) voteStatus(w http.ResponseWriter, r *http.Request) {
	status, err := a.voting.VoteStatus(r.Context(), r.PathValue("id"), claimsFrom(r.Context()).UserID())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, status)
}

func (a *API) getResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.voting.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, results)
}
