package accounts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/clock"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
	"github.com/marcelojr/urna-digital/internal/platform/security"
)

type inMemoryUserRepo struct {
	mu   sync.Mutex
	data map[domain.UserID]domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{data: make(map[domain.UserID]domain.User)}
}

func (r *inMemoryUserRepo) Create(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.data {
		if other.Email == u.Email || other.VoterID == u.VoterID {
			return domain.ErrConflict
		}
	}
	r.data[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.data[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) FindByID(_ context.Context, id domain.UserID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *inMemoryUserRepo) FindByVoterID(_ context.Context, voterID string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.VoterID == voterID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *inMemoryUserRepo) FindByEmailOrVoterID(_ context.Context, email, voterID string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.Email == email || u.VoterID == voterID {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *inMemoryUserRepo) ExistsByEmailOrVoterID(_ context.Context, email, voterID string, exclude domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.data {
		if u.ID == exclude {
			continue
		}
		if u.Email == email || u.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryUserRepo) SetActive(_ context.Context, id domain.UserID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.data[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Active = active
	r.data[id] = u
	return nil
}

func (r *inMemoryUserRepo) ListVoters(_ context.Context, ageRange domain.AgeRange) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lo, hi, ok := ageRange.Bounds()
	var result []domain.User
	for _, u := range r.data {
		if u.Role != domain.RoleVoter || !u.Active {
			continue
		}
		if ok && (u.Age < lo || (hi > 0 && u.Age > hi)) {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].VoterID < result[j].VoterID })
	return result, nil
}

func (r *inMemoryUserRepo) VoterStats(ctx context.Context) (domain.VoterStats, error) {
	all, _ := r.ListVoters(ctx, domain.AgeRangeAll)
	var stats domain.VoterStats
	for _, u := range all {
		stats.Total++
		if u.Age >= 61 {
			stats.Age61Plus++
		} else {
			stats.Age18To60++
		}
	}
	return stats, nil
}

type recordingRevocations struct {
	mu      sync.Mutex
	revoked map[domain.UserID]time.Duration
	err     error
}

func (r *recordingRevocations) Revoke(_ context.Context, id domain.UserID, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.revoked == nil {
		r.revoked = map[domain.UserID]time.Duration{}
	}
	r.revoked[id] = ttl
	return nil
}

func (r *recordingRevocations) IsRevoked(_ context.Context, id domain.UserID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

type countingLimiter struct {
	calls [][]string
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, scope string, parts ...string) error {
	l.calls = append(l.calls, append([]string{scope}, parts...))
	return l.err
}

type accountDeps struct {
	users       *inMemoryUserRepo
	tokens      *security.TokenManager
	revocations *recordingRevocations
	limiter     *countingLimiter
	now         time.Time
}

func newAccountDeps() accountDeps {
	return accountDeps{
		users:       newInMemoryUserRepo(),
		tokens:      security.NewTokenManager([]byte("segredo"), "urna", time.Hour),
		revocations: &recordingRevocations{},
		limiter:     &countingLimiter{},
		now:         time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (d accountDeps) service(production bool) *Service {
	return NewService(d.users, security.NewHasher(4), d.tokens, d.revocations, d.limiter, clock.NewManual(d.now), ids.NewGenerator(), production)
}

func validRegister(voterID, email string, age int) RegisterInput {
	return RegisterInput{
		FullName: "Eleitor " + voterID,
		Email:    email,
		VoterID:  voterID,
		Password: "segredo123",
		Age:      age,
	}
}
