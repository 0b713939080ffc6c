package domain

import (
	"time"
)

type (
	ElectionID  string
	CandidateID string
	VoteID      string
	UserID      string
)

// ElectionStatus é sempre derivado do relógio; o valor gravado serve apenas como referência.
type ElectionStatus string

const (
	StatusUpcoming  ElectionStatus = "upcoming"
	StatusActive    ElectionStatus = "active"
	StatusCompleted ElectionStatus = "completed"
)

type Role string

const (
	RoleVoter Role = "voter"
	RoleAdmin Role = "admin"
)

type Election struct {
	ID          ElectionID     `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	StartDate   time.Time      `json:"startDate"`
	EndDate     time.Time      `json:"endDate"`
	Candidates  []Candidate    `json:"candidates"`
	Status      ElectionStatus `json:"status"`
	CreatedBy   UserID         `json:"createdBy,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	// Turnout é o comparecimento parcial; nunca expõe votos por candidato antes do fim.
	Turnout *int64 `json:"turnout,omitempty"`
}

type Candidate struct {
	ID    CandidateID `json:"id"`
	Name  string      `json:"name"`
	Party string      `json:"party"`
	Bio   string      `json:"bio"`
}

type Vote struct {
	ID          VoteID      `json:"id"`
	ElectionID  ElectionID  `json:"electionId"`
	UserID      UserID      `json:"voterId"`
	CandidateID CandidateID `json:"candidateId"`
	CastAt      time.Time   `json:"timestamp"`
	AuditHash   string      `json:"-"`
}

type User struct {
	ID           UserID    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	VoterID      string    `json:"voterId"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Verified     bool      `json:"isVerified"`
	Active       bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CandidateSummary é a visão pública de um candidato usada no status de voto.
type CandidateSummary struct {
	ID    CandidateID `json:"id"`
	Name  string      `json:"name"`
	Party string      `json:"party"`
}

type VoteStatus struct {
	ElectionID ElectionID        `json:"electionId"`
	HasVoted   bool              `json:"hasVoted"`
	VotedAt    *time.Time        `json:"votedAt,omitempty"`
	Candidate  *CandidateSummary `json:"candidate,omitempty"`
}

type CandidateResult struct {
	CandidateID CandidateID `json:"candidateId"`
	Name        string      `json:"name"`
	Party       string      `json:"party"`
	Votes       int64       `json:"votes"`
	Percentage  float64     `json:"percentage"`
}

type Results struct {
	ElectionID  ElectionID        `json:"electionId"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TotalVotes  int64             `json:"totalVotes"`
	Results     []CandidateResult `json:"results"`
	Winners     []CandidateResult `json:"winners"`
	IsTie       bool              `json:"isTie"`
	EndDate     time.Time         `json:"endDate"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

type DeleteReport struct {
	ElectionsDeleted int64 `json:"electionsDeleted"`
	VotesDeleted     int64 `json:"votesDeleted"`
}

// AgeRange filtra a listagem de eleitores; vazio significa todos.
type AgeRange string

const (
	AgeRangeAll    AgeRange = ""
	AgeRange18To60 AgeRange = "18-60"
	AgeRange61Plus AgeRange = "61+"
)

const (
	MinVoterAge    = 18
	MaxVoterAge    = 120
	seniorVoterAge = 61
)

type VoterStats struct {
	Total     int64 `json:"total"`
	Age18To60 int64 `json:"age18to60"`
	Age61Plus int64 `json:"age61plus"`
}

const EventElectionDeleted = "election.deleted"

// ElectionEvent trafega pela fila consumida pelo worker de reconciliação.
type ElectionEvent struct {
	Type         string     `json:"type"`
	ElectionID   ElectionID `json:"electionId"`
	VotesDeleted int64      `json:"votesDeleted"`
	OccurredAt   time.Time  `json:"occurredAt"`
}

// StatusAt aplica a regra temporal: antes do início é upcoming, depois do fim é completed.
func StatusAt(now, start, end time.Time) ElectionStatus {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.After(end):
		return StatusCompleted
	default:
		return StatusActive
	}
}

func (e Election) StatusAt(now time.Time) ElectionStatus {
	return StatusAt(now, e.StartDate, e.EndDate)
}

func (e Election) Candidate(id CandidateID) (Candidate, bool) {
	for _, c := range e.Candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

func (c Candidate) Summary() CandidateSummary {
	return CandidateSummary{ID: c.ID, Name: c.Name, Party: c.Party}
}

// Bounds devolve o intervalo de idade inclusivo do filtro; max zero indica sem teto.
func (r AgeRange) Bounds() (lo, hi int, ok bool) {
	switch r {
	case AgeRange18To60:
		return MinVoterAge, seniorVoterAge - 1, true
	case AgeRange61Plus:
		return seniorVoterAge, 0, true
	default:
		return 0, 0, false
	}
}
