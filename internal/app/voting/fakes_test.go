package voting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/clock"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

type serviceDependencies struct {
	electionRepo *inMemoryElectionRepo
	voteRepo     *inMemoryVoteRepo
	counter      *inMemoryCounter
	queue        *recordingQueue
	limiter      *countingLimiter
	clock        *clock.Manual
	idGen        *ids.Generator
	baseTime     time.Time
}

func newServiceDeps() serviceDependencies {
	base := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)

	return serviceDependencies{
		electionRepo: newInMemoryElectionRepo(),
		voteRepo:     newInMemoryVoteRepo(),
		counter:      newInMemoryCounter(),
		queue:        &recordingQueue{},
		limiter:      &countingLimiter{},
		clock:        clock.NewManual(base),
		idGen:        ids.NewGenerator(),
		baseTime:     base,
	}
}

func (d serviceDependencies) service() *Service {
	return NewService(d.electionRepo, d.voteRepo, d.counter, d.queue, d.limiter, d.clock, d.idGen)
}

type inMemoryElectionRepo struct {
	mu   sync.Mutex
	data map[domain.ElectionID]domain.Election
}

func newInMemoryElectionRepo() *inMemoryElectionRepo {
	return &inMemoryElectionRepo{data: make(map[domain.ElectionID]domain.Election)}
}

func (r *inMemoryElectionRepo) Create(_ context.Context, e domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.Candidates = append([]domain.Candidate(nil), e.Candidates...)
	r.data[e.ID] = e
	return nil
}

func (r *inMemoryElectionRepo) Update(_ context.Context, e domain.Election) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[e.ID]; !ok {
		return domain.ErrNotFound
	}
	e.Candidates = append([]domain.Candidate(nil), e.Candidates...)
	r.data[e.ID] = e
	return nil
}

func (r *inMemoryElectionRepo) FindByID(_ context.Context, id domain.ElectionID) (domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.data[id]
	if !ok {
		return domain.Election{}, domain.ErrNotFound
	}
	e.Candidates = append([]domain.Candidate(nil), e.Candidates...)
	return e, nil
}

func (r *inMemoryElectionRepo) List(_ context.Context) ([]domain.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]domain.Election, 0, len(r.data))
	for _, e := range r.data {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (r *inMemoryElectionRepo) DeleteCascade(_ context.Context, id domain.ElectionID) (domain.DeleteReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return domain.DeleteReport{}, domain.ErrNotFound
	}
	delete(r.data, id)
	return domain.DeleteReport{ElectionsDeleted: 1}, nil
}

// put grava direto, sem passar pelas validações do serviço.
func (r *inMemoryElectionRepo) put(e domain.Election) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[e.ID] = e
}

type voteKey struct {
	election domain.ElectionID
	user     domain.UserID
}

// inMemoryVoteRepo reproduz o índice único (eleição, eleitor) sob o mutex.
type inMemoryVoteRepo struct {
	mu    sync.Mutex
	lista []domain.Vote
	keys  map[voteKey]bool
}

func newInMemoryVoteRepo() *inMemoryVoteRepo {
	return &inMemoryVoteRepo{keys: make(map[voteKey]bool)}
}

func (r *inMemoryVoteRepo) Create(_ context.Context, v domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := voteKey{v.ElectionID, v.UserID}
	if r.keys[k] {
		return domain.ErrAlreadyVoted
	}
	r.keys[k] = true
	r.lista = append(r.lista, v)
	return nil
}

func (r *inMemoryVoteRepo) FindByElectionAndUser(_ context.Context, electionID domain.ElectionID, userID domain.UserID) (domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.lista {
		if v.ElectionID == electionID && v.UserID == userID {
			return v, nil
		}
	}
	return domain.Vote{}, domain.ErrNotFound
}

func (r *inMemoryVoteRepo) ListByElection(_ context.Context, electionID domain.ElectionID) ([]domain.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Vote
	for _, v := range r.lista {
		if v.ElectionID == electionID {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *inMemoryVoteRepo) CountByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	votes, _ := r.ListByElection(ctx, electionID)
	return int64(len(votes)), nil
}

func (r *inMemoryVoteRepo) DeleteByElection(_ context.Context, electionID domain.ElectionID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.Vote
	var removed int64
	for _, v := range r.lista {
		if v.ElectionID == electionID {
			delete(r.keys, voteKey{v.ElectionID, v.UserID})
			removed++
			continue
		}
		kept = append(kept, v)
	}
	r.lista = kept
	return removed, nil
}

func (r *inMemoryVoteRepo) DeleteOrphans(context.Context) (int64, error) {
	return 0, nil
}

type inMemoryCounter struct {
	mu      sync.Mutex
	valores map[string]int64
}

func newInMemoryCounter() *inMemoryCounter {
	return &inMemoryCounter{valores: make(map[string]int64)}
}

func (c *inMemoryCounter) Increment(_ context.Context, key string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valores[key] += delta
	return c.valores[key], nil
}

func (c *inMemoryCounter) Get(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valores[key], nil
}

func (c *inMemoryCounter) GetMany(_ context.Context, keys []string) (map[string]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make(map[string]int64)
	for _, k := range keys {
		if v, ok := c.valores[k]; ok {
			result[k] = v
		}
	}
	return result, nil
}

func (c *inMemoryCounter) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.valores, key)
	return nil
}

type recordingQueue struct {
	mu     sync.Mutex
	events []domain.ElectionEvent
}

func (r *recordingQueue) Publish(_ context.Context, ev domain.ElectionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingQueue) Consume(ctx context.Context, handler func(context.Context, domain.ElectionEvent) error) error {
	r.mu.Lock()
	events := r.events
	r.events = nil
	r.mu.Unlock()
	for _, ev := range events {
		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (r *recordingQueue) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type countingLimiter struct {
	mu    sync.Mutex
	calls int
	last  []string
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, scope string, parts ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	l.last = append([]string{scope}, parts...)
	return l.err
}

func strPtr(s string) *string { return &s }

func validInput(start, end time.Time, names ...string) ElectionInput {
	in := ElectionInput{
		Title:       strPtr("Eleicao do Conselho"),
		Description: strPtr("Escolha dos conselheiros"),
		StartDate:   strPtr(start.Format(time.RFC3339)),
		EndDate:     strPtr(end.Format(time.RFC3339)),
	}
	for _, n := range names {
		in.Candidates = append(in.Candidates, CandidateInput{Name: n, Party: "Partido " + n, Bio: "Bio de " + n})
	}
	return in
}
