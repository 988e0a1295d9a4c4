package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verotasks/api/internal/member"
	"github.com/verotasks/api/internal/notify"
)

// LinkTelegram consome o token que o colaborador recebeu no chat do
// bot e grava o vínculo no cadastro. A validação do token fica no bot;
// aqui só persiste o retrato devolvido.
func (h *Handler) LinkTelegram(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeAuth, "subject inválido", nil)
		return
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}
	if strings.TrimSpace(payload.Token) == "" {
		WriteError(w, http.StatusBadRequest, CodeValidation, "token de vínculo obrigatório", nil)
		return
	}

	acct, err := h.bot.LinkTelegram(r.Context(), strings.TrimSpace(payload.Token), subject.String())
	if err != nil {
		h.handleBotError(w, err)
		return
	}

	now := time.Now().UTC()
	link := member.TelegramLink{
		Linked:    true,
		ChatID:    acct.ChatID,
		Username:  acct.Username,
		FirstName: acct.FirstName,
		LinkedAt:  &now,
	}
	if err := h.members.SetTelegram(r.Context(), subject, link); err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"telegram": link})
}

// UnlinkTelegram desfaz o vínculo. O aviso ao bot é melhor esforço: a
// remoção local vale mesmo sem resposta dele.
func (h *Handler) UnlinkTelegram(w http.ResponseWriter, r *http.Request) {
	subject, err := h.subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, CodeAuth, "subject inválido", nil)
		return
	}

	profile, err := h.members.Profile(r.Context(), subject)
	if err != nil {
		h.handleMemberError(w, err)
		return
	}

	if profile.Telegram == nil {
		WriteJSON(w, http.StatusOK, map[string]any{"telegram": member.TelegramLink{Linked: false}})
		return
	}

	if err := h.bot.UnlinkTelegram(r.Context(), profile.Telegram.ChatID, subject.String()); err != nil {
		log.Warn().Err(err).Str("uid", subject.String()).Msg("bot não confirmou o desvínculo do telegram")
	}

	if err := h.members.ClearTelegram(r.Context(), subject); err != nil {
		h.handleMemberError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"telegram": member.TelegramLink{Linked: false}})
}

func (h *Handler) handleBotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notify.ErrMissingEnv):
		WriteError(w, http.StatusServiceUnavailable, CodeNotConfigured, err.Error(), nil)
	default:
		WriteError(w, http.StatusBadGateway, CodeBotError, err.Error(), nil)
	}
}
