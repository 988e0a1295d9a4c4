package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("tarefa não encontrada")
	ErrTitleTooShort   = errors.New("título deve ter pelo menos 3 caracteres")
	ErrInvalidStatus   = errors.New("status inválido")
	ErrInvalidPriority = errors.New("prioridade inválida")
	ErrTaskClosed      = errors.New("tarefa encerrada não aceita novo sinal do escritório")
	ErrEmptySignal     = errors.New("estado do sinal é obrigatório")
)

const (
	StatusOpen    = "open"
	StatusPending = "pending"
	StatusBlocked = "blocked"
	StatusDone    = "done"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var (
	validStatuses = map[string]struct{}{
		StatusOpen:    {},
		StatusPending: {},
		StatusBlocked: {},
		StatusDone:    {},
	}
	validPriorities = map[string]struct{}{
		PriorityLow:    {},
		PriorityMedium: {},
		PriorityHigh:   {},
		PriorityUrgent: {},
	}

	// Vocabulário legado em português, presente em documentos antigos.
	// A normalização acontece na borda; o canônico é sempre o conjunto acima.
	statusAliases = map[string]string{
		"aberta":         StatusOpen,
		"pendente":       StatusPending,
		"deu_ruim":       StatusBlocked,
		"feito":          StatusDone,
		"feita":          StatusDone,
		"feito_detalhes": StatusDone,
	}
	priorityAliases = map[string]string{
		"baixa": PriorityLow,
		"media": PriorityMedium,
		"alta":  PriorityHigh,
	}

	priorityRank = map[string]int{
		PriorityUrgent: 5,
		PriorityHigh:   4,
		PriorityMedium: 3,
		PriorityLow:    2,
	}
)

// Task é a entidade central do quadro compartilhado.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	CreatedBy   *uuid.UUID `json:"created_by,omitempty"`

	// Último sinal do escritório e sua cópia denormalizada para
	// leitores legados que só conhecem office_comment.
	OfficeSignal     *Signal    `json:"office_signal,omitempty"`
	OfficeComment    string     `json:"office_comment"`
	OfficeSignaledAt *time.Time `json:"office_signaled_at,omitempty"`

	MasterComment string    `json:"master_comment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Signal registra o reporte mais recente do escritório sobre a tarefa.
type Signal struct {
	State     string       `json:"state"`
	Comment   string       `json:"comment"`
	UpdatedAt time.Time    `json:"updated_at"`
	UpdatedBy SignalAuthor `json:"updated_by"`
}

// SignalAuthor identifica quem emitiu o sinal.
type SignalAuthor struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// CreateTaskInput encapsula campos para criação de tarefa.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    string
	AssigneeID  *uuid.UUID
	CreatedBy   *uuid.UUID
}

// UpdateTaskInput permite atualização parcial pelo master.
type UpdateTaskInput struct {
	ID            uuid.UUID
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	AssigneeID    *uuid.UUID
	ClearAssignee bool
	MasterComment *string
}

// SignalInput encapsula um novo sinal do escritório.
type SignalInput struct {
	TaskID      uuid.UUID
	State       string
	Comment     string
	By          SignalAuthor
	ForceNotify bool
}

// BulkPatch descreve a mutação parcial aplicada em massa.
type BulkPatch struct {
	Status        *string
	Priority      *string
	AssigneeID    *uuid.UUID
	ClearAssignee bool
}

// IsZero indica patch sem nenhum campo preenchido.
func (p BulkPatch) IsZero() bool {
	return p.Status == nil && p.Priority == nil && p.AssigneeID == nil && !p.ClearAssignee
}

// NormalizeStatus traduz aliases legados e aplica default "open".
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusOpen
	}
	if canonical, ok := statusAliases[status]; ok {
		return canonical
	}
	return status
}

// NormalizePriority traduz aliases legados e aplica default "medium".
func NormalizePriority(priority string) string {
	priority = strings.ToLower(strings.TrimSpace(priority))
	if priority == "" {
		return PriorityMedium
	}
	if canonical, ok := priorityAliases[priority]; ok {
		return canonical
	}
	return priority
}

// IsValidStatus indica se o status canônico é aceito.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[NormalizeStatus(status)]
	return ok
}

// IsValidPriority indica se a prioridade canônica é aceita.
func IsValidPriority(priority string) bool {
	_, ok := validPriorities[NormalizePriority(priority)]
	return ok
}

// IsTerminalStatus indica status que encerra a tarefa do lado do escritório.
// done/blocked são finais: o escritório não re-sinaliza depois disso.
func IsTerminalStatus(status string) bool {
	s := NormalizeStatus(status)
	return s == StatusDone || s == StatusBlocked
}

// PriorityRank devolve o peso de ordenação; valores desconhecidos
// assumem o peso de "medium".
func PriorityRank(priority string) int {
	if rank, ok := priorityRank[NormalizePriority(priority)]; ok {
		return rank
	}
	return priorityRank[PriorityMedium]
}

// SearchText devolve o texto pesquisável da tarefa em minúsculas.
func (t *Task) SearchText() string {
	parts := []string{t.Title, t.Description, t.MasterComment, t.OfficeComment}
	return strings.ToLower(strings.TrimSpace(strings.Join(parts, " ")))
}
