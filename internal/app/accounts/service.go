// Pacote accounts mantém o cadastro de eleitores e administradores: registro, login, perfil e desativação.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/antifraude"
	"github.com/marcelojr/urna-digital/internal/platform/clock"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

// RegistrationMessage acompanha a resposta de cadastro. A conta já nasce verificada;
// o texto foi mantido como está até haver fluxo real de confirmação por e-mail.
const RegistrationMessage = "Cadastro realizado com sucesso. Verifique seu e-mail para ativar a conta."

type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) error
}

type TokenIssuer interface {
	Issue(u domain.User) (string, time.Time, error)
	TTL() time.Duration
}

type Service struct {
	users       domain.UserRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
	revocations domain.RevocationStore
	limiter     domain.RateLimiter
	clock       domain.Clock
	ids         *ids.Generator
	production  bool
}

func NewService(
	users domain.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	revocations domain.RevocationStore,
	limiter domain.RateLimiter,
	clk domain.Clock,
	idsGen *ids.Generator,
	production bool,
) *Service {
	if idsGen == nil {
		idsGen = ids.DefaultGenerator()
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Service{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		limiter:     limiter,
		clock:       clk,
		ids:         idsGen,
		production:  production,
	}
}

type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	VoterID  string `json:"voterId"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Phone    string `json:"phone"`
}

// Register cria sempre um eleitor ativo e verificado.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	u := domain.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    normalizeEmail(in.Email),
		VoterID:  strings.TrimSpace(in.VoterID),
		Age:      in.Age,
		Phone:    strings.TrimSpace(in.Phone),
	}

	var errs fieldErrors
	validateProfile(u, &errs)
	if u.VoterID == "" {
		errs.add("voterId", "titulo de eleitor obrigatorio")
	}
	validatePassword(in.Password, &errs)
	if err := errs.err(); err != nil {
		return domain.User{}, err
	}

	exists, err := s.users.ExistsByEmailOrVoterID(ctx, u.Email, u.VoterID, "")
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, fmt.Errorf("%w: e-mail ou titulo de eleitor ja cadastrado", domain.ErrConflict)
	}

	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return domain.User{}, fmt.Errorf("accounts: gerar hash: %w", err)
	}

	now := s.clock.Now()
	u.ID = domain.UserID(s.ids.New())
	u.PasswordHash = hash
	u.Role = domain.RoleVoter
	u.Verified = true
	u.Active = true
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.users.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

type LoginInput struct {
	VoterID  string
	Password string
	ClientIP string
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

// Login responde igual para título desconhecido e senha errada.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	voterID := strings.TrimSpace(in.VoterID)
	if voterID == "" || in.Password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, antifraude.ScopeLogin, in.ClientIP, voterID); err != nil {
			return Session{}, err
		}
	}

	u, err := s.users.FindByVoterID(ctx, voterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, domain.ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, []byte(in.Password)); err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	if !u.Active {
		return Session{}, fmt.Errorf("%w: conta desativada", domain.ErrForbidden)
	}
	if s.production && !u.Verified {
		return Session{}, fmt.Errorf("%w: conta nao verificada", domain.ErrUnauthorized)
	}

	token, expiresAt, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

func (s *Service) Profile(ctx context.Context, id domain.UserID) (domain.User, error) {
	return s.users.FindByID(ctx, id)
}

type ProfileInput struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Age      *int    `json:"age"`
}

func (s *Service) UpdateProfile(ctx context.Context, id domain.UserID, in ProfileInput) (domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if in.FullName != nil {
		u.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Age != nil {
		u.Age = *in.Age
	}

	var errs fieldErrors
	validateProfile(u, &errs)
	if err := errs.err(); err != nil {
		return domain.User{}, err
	}

	exists, err := s.users.ExistsByEmailOrVoterID(ctx, u.Email, u.VoterID, u.ID)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, fmt.Errorf("%w: e-mail ja utilizado por outra conta", domain.ErrConflict)
	}

	u.UpdatedAt = s.clock.Now()
	if err := s.users.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

type VoterList struct {
	Voters []domain.User     `json:"voters"`
	Stats  domain.VoterStats `json:"stats"`
}

// ListVoters filtra pela faixa etária; as estatísticas ignoram o filtro.
func (s *Service) ListVoters(ctx context.Context, ageRange string) (VoterList, error) {
	voters, err := s.users.ListVoters(ctx, domain.AgeRange(strings.TrimSpace(ageRange)))
	if err != nil {
		return VoterList{}, err
	}
	stats, err := s.users.VoterStats(ctx)
	if err != nil {
		return VoterList{}, err
	}
	if voters == nil {
		voters = []domain.User{}
	}
	return VoterList{Voters: voters, Stats: stats}, nil
}

// DeactivateSelf não se aplica a administradores.
func (s *Service) DeactivateSelf(ctx context.Context, id domain.UserID) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return fmt.Errorf("%w: administradores nao podem se desativar", domain.ErrForbidden)
	}
	return s.deactivate(ctx, u.ID)
}

func (s *Service) DeactivateVoter(ctx context.Context, targetID string) error {
	canonical, ok := ids.Canonical(targetID)
	if !ok {
		return domain.ErrInvalidID
	}
	u, err := s.users.FindByID(ctx, domain.UserID(canonical))
	if err != nil {
		return err
	}
	if u.Role == domain.RoleAdmin {
		return fmt.Errorf("%w: administradores nao podem ser desativados", domain.ErrForbidden)
	}
	return s.deactivate(ctx, u.ID)
}

// deactivate é lógico: o registro permanece para preservar o histórico de votos.
// Falha na revogação volta ao chamador; SetActive é idempotente e a operação pode ser repetida.
func (s *Service) deactivate(ctx context.Context, id domain.UserID) error {
	if err := s.users.SetActive(ctx, id, false); err != nil {
		return err
	}
	if s.revocations != nil {
		if err := s.revocations.Revoke(ctx, id, s.tokens.TTL()); err != nil {
			return fmt.Errorf("accounts: revogando sessoes: %w", err)
		}
	}
	return nil
}

type AdminInput struct {
	FullName string
	Email    string
	VoterID  string
	Password string
	Age      int
}

// EnsureAdmin cria a conta administrativa quando nenhum usuário ocupa o e-mail ou o título.
func (s *Service) EnsureAdmin(ctx context.Context, in AdminInput) (domain.User, bool, error) {
	u := domain.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    normalizeEmail(in.Email),
		VoterID:  strings.TrimSpace(in.VoterID),
		Age:      in.Age,
	}

	existing, err := s.users.FindByEmailOrVoterID(ctx, u.Email, u.VoterID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, false, err
	}

	var errs fieldErrors
	validateProfile(u, &errs)
	if u.VoterID == "" {
		errs.add("voterId", "titulo de eleitor obrigatorio")
	}
	validatePassword(in.Password, &errs)
	if err := errs.err(); err != nil {
		return domain.User{}, false, err
	}

	hash, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return domain.User{}, false, fmt.Errorf("accounts: gerar hash: %w", err)
	}

	now := s.clock.Now()
	u.ID = domain.UserID(s.ids.New())
	u.PasswordHash = hash
	u.Role = domain.RoleAdmin
	u.Verified = true
	u.Active = true
	u.CreatedAt = now
	u.UpdatedAt = now

	if err := s.users.Create(ctx, u); err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}
