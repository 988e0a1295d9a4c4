package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verotasks/api/internal/board"
	"github.com/verotasks/api/internal/task"
)

// ListTasks serve a visão derivada do estado mesclado: filtros,
// ordenação e janela de página aplicados sobre o snapshot do hub.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	params := viewParamsFromQuery(r)
	result := board.View(h.hub.Rows(), params)

	WriteJSON(w, http.StatusOK, map[string]any{
		"items":      result.Items,
		"total":      result.Total,
		"page":       result.Page,
		"page_count": result.PageCount,
		"page_size":  result.PageSize,
		"stale":      h.hub.Err() != nil,
	})
}

// GetTask lê a tarefa direto do armazenamento autoritativo.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "id inválido", nil)
		return
	}

	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		h.handleTaskError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, t)
}

// TaskCounts agrega os grupos de status para o cabeçalho do painel.
func (h *Handler) TaskCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.tasks.Counts(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, CodeInternal, "não foi possível agregar tarefas", nil)
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}

// SuggestTasks devolve sugestões de busca a partir do snapshot do hub
// e dos nomes da equipe.
func (h *Handler) SuggestTasks(w http.ResponseWriter, r *http.Request) {
	needle := r.URL.Query().Get("q")

	labels, err := h.members.DisplayNames(r.Context())
	if err != nil {
		labels = nil
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions": board.Suggest(h.hub.Rows(), labels, needle),
	})
}

// CreateTask abre tarefa nova em nome do supervisor autenticado.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		AssigneeID  *uuid.UUID `json:"assignee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	var createdBy *uuid.UUID
	if subject, err := h.subjectUUID(r); err == nil {
		createdBy = &subject
	}

	t, err := h.tasks.Create(r.Context(), task.CreateTaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    payload.Priority,
		AssigneeID:  payload.AssigneeID,
		CreatedBy:   createdBy,
	})
	if err != nil {
		h.handleTaskError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, t)
}

// UpdateTask aplica edição parcial do supervisor.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "id inválido", nil)
		return
	}

	var payload struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		Status        *string    `json:"status"`
		Priority      *string    `json:"priority"`
		AssigneeID    *uuid.UUID `json:"assignee_id"`
		ClearAssignee bool       `json:"clear_assignee"`
		MasterComment *string    `json:"master_comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	t, err := h.tasks.Update(r.Context(), task.UpdateTaskInput{
		ID:            id,
		Title:         payload.Title,
		Description:   payload.Description,
		Status:        payload.Status,
		Priority:      payload.Priority,
		AssigneeID:    payload.AssigneeID,
		ClearAssignee: payload.ClearAssignee,
		MasterComment: payload.MasterComment,
	})
	if err != nil {
		h.handleTaskError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, t)
}

// DeleteTask exclui e confirma a durabilidade com releitura
// autoritativa. Exclusão aceita mas não persistida volta como conflito.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "id inválido", nil)
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		h.handleTaskError(w, err)
		return
	}

	if err := h.verifier.VerifyDeleted(r.Context(), id); err != nil {
		var notDurable *board.NotDurableError
		if errors.As(err, &notDurable) {
			WriteError(w, http.StatusConflict, CodeDeleteRejected, notDurable.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, CodeInternal, "não foi possível confirmar a exclusão", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type bulkSelection struct {
	IDs []uuid.UUID `json:"ids"`
}

// BulkPatchTasks aplica mutação parcial sobre a seleção em lotes.
func (h *Handler) BulkPatchTasks(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		bulkSelection
		Patch struct {
			Status        *string    `json:"status"`
			Priority      *string    `json:"priority"`
			AssigneeID    *uuid.UUID `json:"assignee_id"`
			ClearAssignee bool       `json:"clear_assignee"`
		} `json:"patch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	patch := task.BulkPatch{
		Status:        payload.Patch.Status,
		Priority:      payload.Patch.Priority,
		AssigneeID:    payload.Patch.AssigneeID,
		ClearAssignee: payload.Patch.ClearAssignee,
	}
	if patch.Status != nil && !task.IsValidStatus(*patch.Status) {
		WriteError(w, http.StatusBadRequest, CodeValidation, task.ErrInvalidStatus.Error(), nil)
		return
	}
	if patch.Priority != nil && !task.IsValidPriority(*patch.Priority) {
		WriteError(w, http.StatusBadRequest, CodeValidation, task.ErrInvalidPriority.Error(), nil)
		return
	}

	result := h.executor.ApplyPatch(r.Context(), payload.IDs, patch)
	h.writeBulkResult(w, result)
}

// BulkDeleteTasks exclui a seleção em lotes e verifica durabilidade.
func (h *Handler) BulkDeleteTasks(w http.ResponseWriter, r *http.Request) {
	var payload bulkSelection
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido", nil)
		return
	}

	result := h.executor.Delete(r.Context(), payload.IDs, h.verifier)
	h.writeBulkResult(w, result)
}

func (h *Handler) writeBulkResult(w http.ResponseWriter, result board.BulkResult) {
	switch {
	case errors.Is(result.Err, board.ErrEmptySelection), errors.Is(result.Err, board.ErrEmptyPatch):
		WriteError(w, http.StatusBadRequest, CodeValidation, result.Err.Error(), nil)
	case result.Err != nil:
		// Lotes anteriores permanecem aplicados; o painel recarrega para
		// refletir o prefixo.
		WriteError(w, http.StatusInternalServerError, CodeBulkPartial, result.Err.Error(), map[string]any{
			"applied":       result.Applied,
			"total_batches": result.TotalBatches,
		})
	case result.VerifyErr != nil:
		WriteError(w, http.StatusConflict, CodeDeleteRejected, result.VerifyErr.Error(), map[string]any{
			"applied":       result.Applied,
			"total_batches": result.TotalBatches,
		})
	default:
		WriteJSON(w, http.StatusOK, map[string]any{
			"applied":       result.Applied,
			"total_batches": result.TotalBatches,
		})
	}
}

func (h *Handler) handleTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		WriteError(w, http.StatusNotFound, CodeNotFound, err.Error(), nil)
	case errors.Is(err, task.ErrTitleTooShort),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidPriority),
		errors.Is(err, task.ErrEmptySignal):
		WriteError(w, http.StatusBadRequest, CodeValidation, err.Error(), nil)
	case errors.Is(err, task.ErrTaskClosed):
		WriteError(w, http.StatusConflict, CodeTaskClosed, err.Error(), nil)
	case errors.Is(err, task.ErrResendThrottled):
		WriteError(w, http.StatusTooManyRequests, CodeRateLimit, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, CodeInternal, "erro ao processar tarefa", nil)
	}
}

func viewParamsFromQuery(r *http.Request) board.ViewParams {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	return board.ViewParams{
		Query:    q.Get("q"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Sort:     board.SortKey(q.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	}
}
