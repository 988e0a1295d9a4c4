package task

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrResendThrottled indica reenvio forçado antes do intervalo mínimo.
	ErrResendThrottled = errors.New("aguarde antes de reenviar o sinal")
)

type repository interface {
	Create(ctx context.Context, input CreateTaskInput) (*Task, error)
	Get(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context) ([]*Task, error)
	Update(ctx context.Context, input UpdateTaskInput) (*Task, error)
	ApplySignal(ctx context.Context, taskID uuid.UUID, signal Signal) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// Notifier encaminha o sinal ao serviço do bot. Devolve se o master
// foi de fato notificado nesta chamada.
type Notifier interface {
	NotifySignal(ctx context.Context, input SignalInput) (bool, error)
}

// Service reúne as regras de negócio das tarefas.
type Service struct {
	repo     repository
	notifier Notifier

	// Guarda de reenvio por tarefa para o forceNotify.
	resendGap time.Duration
	mu        sync.Mutex
	lastForce map[uuid.UUID]time.Time
}

// NewService cria nova instância do serviço.
func NewService(repo repository, notifier Notifier, resendGap time.Duration) *Service {
	if resendGap <= 0 {
		resendGap = 15 * time.Second
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		resendGap: resendGap,
		lastForce: make(map[uuid.UUID]time.Time),
	}
}

// Create abre nova tarefa (sempre com status "open").
func (s *Service) Create(ctx context.Context, input CreateTaskInput) (*Task, error) {
	input.Title = strings.TrimSpace(input.Title)
	if len([]rune(input.Title)) < 3 {
		return nil, ErrTitleTooShort
	}

	input.Priority = NormalizePriority(input.Priority)
	if !IsValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	input.Description = strings.TrimSpace(input.Description)
	return s.repo.Create(ctx, input)
}

// Get recupera uma tarefa.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	return s.repo.Get(ctx, id)
}

// List devolve a coleção completa na ordem da assinatura.
func (s *Service) List(ctx context.Context) ([]*Task, error) {
	return s.repo.List(ctx)
}

// Counts agrega os grupos de status para o cabeçalho do painel.
func (s *Service) Counts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}

// Update aplica edição do master (todos os campos).
func (s *Service) Update(ctx context.Context, input UpdateTaskInput) (*Task, error) {
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if len([]rune(trimmed)) < 3 {
			return nil, ErrTitleTooShort
		}
		input.Title = &trimmed
	}

	if input.Status != nil {
		normalized := NormalizeStatus(*input.Status)
		if !IsValidStatus(normalized) {
			return nil, ErrInvalidStatus
		}
		input.Status = &normalized
	}

	if input.Priority != nil {
		normalized := NormalizePriority(*input.Priority)
		if !IsValidPriority(normalized) {
			return nil, ErrInvalidPriority
		}
		input.Priority = &normalized
	}

	return s.repo.Update(ctx, input)
}

// Delete remove a tarefa. A confirmação no armazenamento autoritativo
// é feita pelo verificador, na camada que orquestra a operação.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// SignalResult descreve o desfecho de um sinal do escritório.
type SignalResult struct {
	Task     *Task
	Notified bool
	// NotifyErr carrega falha do encaminhamento. O sinal já está salvo
	// quando este campo é preenchido: a falha não desfaz a gravação.
	NotifyErr error
}

// Signal registra o reporte do escritório e encaminha ao bot.
func (s *Service) Signal(ctx context.Context, input SignalInput) (*SignalResult, error) {
	input.State = strings.TrimSpace(input.State)
	if input.State == "" {
		return nil, ErrEmptySignal
	}

	current, err := s.repo.Get(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	// Encerrada pelo master é final para o escritório.
	if IsTerminalStatus(current.Status) {
		return nil, ErrTaskClosed
	}

	if input.ForceNotify {
		if err := s.allowForce(input.TaskID); err != nil {
			return nil, err
		}
	}

	signal := Signal{
		State:     input.State,
		Comment:   strings.TrimSpace(input.Comment),
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: input.By,
	}

	updated, err := s.repo.ApplySignal(ctx, input.TaskID, signal)
	if err != nil {
		return nil, err
	}

	result := &SignalResult{Task: updated}
	if s.notifier == nil {
		return result, nil
	}

	notified, err := s.notifier.NotifySignal(ctx, input)
	if err != nil {
		log.Warn().Err(err).Str("task_id", input.TaskID.String()).Msg("sinal salvo, mas o master não foi avisado")
		result.NotifyErr = err
		return result, nil
	}

	result.Notified = notified
	return result, nil
}

func (s *Service) allowForce(taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if last, ok := s.lastForce[taskID]; ok && now.Sub(last) < s.resendGap {
		return ErrResendThrottled
	}
	s.lastForce[taskID] = now
	return nil
}
