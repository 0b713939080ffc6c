// Pacote httpapi expõe os handlers REST e traduz requisições HTTP para os serviços de votação e contas.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/marcelojr/urna-digital/internal/app/accounts"
	"github.com/marcelojr/urna-digital/internal/app/voting"
	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/security"
)

const maxBodyBytes = 1 << 20

type VotingService interface {
	ListElections(ctx context.Context) ([]domain.Election, error)
	GetElection(ctx context.Context, id string) (domain.Election, error)
	CreateElection(ctx context.Context, in voting.ElectionInput, creator domain.UserID) (domain.Election, error)
	UpdateElection(ctx context.Context, id string, in voting.ElectionInput) (domain.Election, error)
	DeleteElection(ctx context.Context, id string) (domain.DeleteReport, error)
	CastVote(ctx context.Context, b voting.Ballot) (domain.Vote, error)
	VoteStatus(ctx context.Context, electionID string, userID domain.UserID) (domain.VoteStatus, error)
	Results(ctx context.Context, id string) (domain.Results, error)
}

type AccountsService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (domain.User, error)
	Login(ctx context.Context, in accounts.LoginInput) (accounts.Session, error)
	Profile(ctx context.Context, id domain.UserID) (domain.User, error)
	UpdateProfile(ctx context.Context, id domain.UserID, in accounts.ProfileInput) (domain.User, error)
	ListVoters(ctx context.Context, ageRange string) (accounts.VoterList, error)
	DeactivateSelf(ctx context.Context, id domain.UserID) error
	DeactivateVoter(ctx context.Context, targetID string) error
}

type TokenParser interface {
	Parse(raw string) (*security.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, id domain.UserID) (bool, error)
}

type Options struct {
	Voting      VotingService
	Accounts    AccountsService
	Tokens      TokenParser
	Revocations RevocationChecker
	AuditSalt   string
	Production  bool
	Logger      *slog.Logger
}

// API empacota handlers HTTP ligados aos serviços, ao verificador de sessão e ao logger.
type API struct {
	voting      VotingService
	accounts    AccountsService
	tokens      TokenParser
	revocations RevocationChecker
	auditSalt   string
	production  bool
	logger      *slog.Logger
}

func New(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		voting:      opts.Voting,
		accounts:    opts.Accounts,
		tokens:      opts.Tokens,
		revocations: opts.Revocations,
		auditSalt:   opts.AuditSalt,
		production:  opts.Production,
		logger:      logger,
	}
}

func (a *API) Register(mux *http.ServeMux) {
	// Mantemos as rotas centralizadas para facilitar testes e reuso em servidores diferentes.
	mux.HandleFunc("GET /elections", a.listElections)
	mux.HandleFunc("GET /elections/{id}", a.getElection)
	mux.HandleFunc("GET /elections/{id}/results", a.getResults)
	mux.Handle("POST /elections", a.requireRole(a.createElection, domain.RoleAdmin))
	mux.Handle("PUT /elections/{id}", a.requireRole(a.updateElection, domain.RoleAdmin))
	mux.Handle("DELETE /elections/{id}", a.requireRole(a.deleteElection, domain.RoleAdmin))
	mux.Handle("POST /elections/{id}/vote", a.requireRole(a.castVote, domain.RoleVoter))
	mux.Handle("GET /elections/{id}/vote-status", a.requireRole(a.voteStatus, domain.RoleVoter))

	mux.HandleFunc("POST /auth/register", a.register)
	mux.HandleFunc("POST /auth/login", a.login)
	mux.Handle("GET /auth/profile", a.requireRole(a.getProfile, domain.RoleVoter, domain.RoleAdmin))
	mux.Handle("PUT /auth/profile", a.requireRole(a.updateProfile, domain.RoleVoter, domain.RoleAdmin))
	mux.Handle("POST /auth/deactivate", a.requireRole(a.deactivateSelf, domain.RoleVoter, domain.RoleAdmin))
	mux.Handle("GET /auth/voters", a.requireRole(a.listVoters, domain.RoleAdmin))
	mux.Handle("POST /auth/voters/{id}/deactivate", a.requireRole(a.deactivateVoter, domain.RoleAdmin))
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderMensagem(w http.ResponseWriter, status int, message string) {
	responderJSON(w, status, map[string]string{"message": message})
}

// decodeJSON limita o corpo e converte qualquer falha de parsing em erro de validação.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: payload invalido", domain.ErrValidation)
	}
	return nil
}

// clientIP usa o primeiro endereço do X-Forwarded-For quando presente.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
