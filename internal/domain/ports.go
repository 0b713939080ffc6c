package domain

import (
	"context"
	"time"
)

type ElectionRepository interface {
	Create(ctx context.Context, e Election) error
	// Update grava os campos e substitui a lista de candidatos numa única transação.
	Update(ctx context.Context, e Election) error
	FindByID(ctx context.Context, id ElectionID) (Election, error)
	List(ctx context.Context) ([]Election, error)
	DeleteCascade(ctx context.Context, id ElectionID) (DeleteReport, error)
}

type VoteRepository interface {
	// Create devolve ErrAlreadyVoted quando a unicidade (eleição, eleitor) é violada.
	Create(ctx context.Context, v Vote) error
	FindByElectionAndUser(ctx context.Context, electionID ElectionID, userID UserID) (Vote, error)
	ListByElection(ctx context.Context, electionID ElectionID) ([]Vote, error)
	CountByElection(ctx context.Context, electionID ElectionID) (int64, error)
	DeleteByElection(ctx context.Context, electionID ElectionID) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	FindByID(ctx context.Context, id UserID) (User, error)
	FindByVoterID(ctx context.Context, voterID string) (User, error)
	FindByEmailOrVoterID(ctx context.Context, email, voterID string) (User, error)
	ExistsByEmailOrVoterID(ctx context.Context, email, voterID string, exclude UserID) (bool, error)
	SetActive(ctx context.Context, id UserID, active bool) error
	ListVoters(ctx context.Context, ageRange AgeRange) ([]User, error)
	VoterStats(ctx context.Context) (VoterStats, error)
}

type Counter interface {
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
	GetMany(ctx context.Context, keys []string) (map[string]int64, error)
	Delete(ctx context.Context, key string) error
}

type EventQueue interface {
	Publish(ctx context.Context, ev ElectionEvent) error
	Consume(ctx context.Context, handler func(context.Context, ElectionEvent) error) error
}

type RateLimiter interface {
	Allow(ctx context.Context, scope string, parts ...string) error
}

type RevocationStore interface {
	Revoke(ctx context.Context, id UserID, ttl time.Duration) error
	IsRevoked(ctx context.Context, id UserID) (bool, error)
}

type Clock interface {
	Now() time.Time
}
