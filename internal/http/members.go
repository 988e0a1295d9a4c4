package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verotasks/api/internal/member"
)

// ListMembers devolve a equipe consolidada (cadastro + vínculo).
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.members.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, "não foi possível listar a equipe", nil)
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// CreateMember provisiona colaborador novo (cadastro + vínculo ativo).
func (h *Handler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Senha       string `json:"senha"`
		Role        string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	profile, err := h.members.CreateUser(r.Context(), member.CreateUserInput{
		Email:       payload.Email,
		DisplayName: payload.DisplayName,
		Senha:       payload.Senha,
		Role:        payload.Role,
	})
	if err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, profile)
}

// SetMemberRole troca o papel do vínculo.
func (h *Handler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "uid inválido", nil)
		return
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	if err := h.members.SetRole(r.Context(), uid, payload.Role); err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SetMemberActive liga ou desliga o acesso do colaborador.
func (h *Handler) SetMemberActive(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "uid inválido", nil)
		return
	}

	var payload struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	if err := h.members.SetActive(r.Context(), uid, payload.Active); err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProvisionMember cria ou atualiza o vínculo de um cadastro existente.
func (h *Handler) ProvisionMember(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "uid"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "uid inválido", nil)
		return
	}

	var payload struct {
		Role   string `json:"role"`
		Active bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	m, err := h.members.Provision(r.Context(), uid, payload.Role, payload.Active)
	if err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleMemberError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, member.ErrEmailTaken):
		WriteError(w, http.StatusConflict, CodeConflict, err.Error(), nil)
	case errors.Is(err, member.ErrInvalidRole),
		errors.Is(err, member.ErrInvalidEmail),
		errors.Is(err, member.ErrWeakPassword),
		errors.Is(err, member.ErrNameRequired):
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, CodeInternal, "erro ao administrar equipe", nil)
	}
}
