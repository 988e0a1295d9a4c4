package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/verotasks/api/internal/http/middleware"
	"github.com/verotasks/api/internal/task"
)

// SignalTask registra o reporte do escritório sobre uma tarefa e
// encaminha ao bot. A gravação vale mesmo quando o aviso ao supervisor
// falha; a resposta distingue os dois desfechos.
func (h *Handler) SignalTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "id inválido", nil)
		return
	}

	var payload struct {
		State       string `json:"state"`
		Comment     string `json:"comment"`
		Email       string `json:"email"`
		ForceNotify bool   `json:"force_notify"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	result, err := h.tasks.Signal(r.Context(), task.SignalInput{
		TaskID:  id,
		State:   payload.State,
		Comment: payload.Comment,
		By: task.SignalAuthor{
			UID:   httpmiddleware.GetSubject(r.Context()),
			Email: payload.Email,
		},
		ForceNotify: payload.ForceNotify,
	})
	if err != nil {
		h.handleTaskError(w, err)
		return
	}

	response := map[string]any{
		"task":     result.Task,
		"notified": result.Notified,
	}
	if result.NotifyErr != nil {
		response["notify_error"] = result.NotifyErr.Error()
	}

	WriteJSON(w, http.StatusOK, response)
}
