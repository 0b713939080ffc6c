package httpapi

import (
	"net/http"
	"strings"

	"github.com/marcelojr/urna-digital/internal/app/accounts"
	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/metrics"
)

type registerResponse struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var in accounts.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.responderErro(w, r, err)
		return
	}

	u, err := a.accounts.Register(r.Context(), in)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}

	a.logger.Info("eleitor cadastrado", "user_id", u.ID)
	responderJSON(w, http.StatusCreated, registerResponse{Message: accounts.RegistrationMessage, User: u})
}

type loginRequest struct {
	VoterID  string `json:"voterId"`
	Password string `json:"password"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		metrics.ObserveLoginAttempt("invalid_payload")
		a.responderErro(w, r, err)
		return
	}

	session, err := a.accounts.Login(r.Context(), accounts.LoginInput{
		VoterID:  req.VoterID,
		Password: req.Password,
		ClientIP: clientIP(r),
	})
	if err != nil {
		metrics.ObserveLoginAttempt(outcomeFor(err))
		a.responderErro(w, r, err)
		return
	}

	metrics.ObserveLoginAttempt("success")
	responderJSON(w, http.StatusOK, session)
}

func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	u, err := a.accounts.Profile(r.Context(), claimsFrom(r.Context()).UserID())
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, u)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in accounts.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.responderErro(w, r, err)
		return
	}

	u, err := a.accounts.UpdateProfile(r.Context(), claimsFrom(r.Context()).UserID(), in)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, u)
}

func (a *API) listVoters(w http.ResponseWriter, r *http.Request) {
	// O "+" de "61+" chega como espaço quando o cliente não codifica a query.
	ageRange := strings.ReplaceAll(r.URL.Query().Get("ageRange"), " ", "+")
	list, err := a.accounts.ListVoters(r.Context(), ageRange)
	if err != nil {
		a.responderErro(w, r, err)
		return
	}
	responderJSON(w, http.StatusOK, list)
}

func (a *API) deactivateSelf(w http.ResponseWriter, r *http.Request) {
	id := claimsFrom(r.Context()).UserID()
	if err := a.accounts.DeactivateSelf(r.Context(), id); err != nil {
		a.responderErro(w, r, err)
		return
	}
	a.logger.Info("conta desativada pelo titular", "user_id", id)
	responderMensagem(w, http.StatusOK, "Conta desativada com sucesso")
}

func (a *API) deactivateVoter(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("id")
	if err := a.accounts.DeactivateVoter(r.Context(), target); err != nil {
		a.responderErro(w, r, err)
		return
	}
	a.logger.Info("eleitor desativado por administrador", "user_id", target, "admin", claimsFrom(r.Context()).UserID())
	responderMensagem(w, http.StatusOK, "Eleitor desativado com sucesso")
}
