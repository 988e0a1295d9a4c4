package board

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

// DefaultBatchCap fica abaixo do limite de mutações por transação do
// armazenamento autoritativo.
const DefaultBatchCap = 450

var (
	// ErrEmptySelection indica operação em massa sem ids.
	ErrEmptySelection = errors.New("nenhuma tarefa selecionada")
	// ErrEmptyPatch indica patch sem nenhum campo para aplicar.
	ErrEmptyPatch = errors.New("nada para aplicar")
)

// ExecState é o estado corrente do executor.
type ExecState int

const (
	StateIdle ExecState = iota
	StateRunning
	StateCompleted
	StatePartiallyFailed
)

// BulkStore aplica um lote com semântica tudo-ou-nada por lote.
type BulkStore interface {
	ApplyPatch(ctx context.Context, ids []uuid.UUID, patch task.BulkPatch) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
}

// BulkResult reporta o desfecho: quantos ids entraram em lotes que
// commitaram e, se houve falha, o erro do lote que interrompeu tudo.
type BulkResult struct {
	Applied      int
	TotalBatches int
	// Err é a falha do lote interrompido. Lotes anteriores permanecem
	// aplicados; lotes seguintes não foram tentados.
	Err error
	// VerifyErr carrega falha da verificação amostral pós-exclusão.
	// Distinto de Err: o armazenamento aceitou a escrita, mas a
	// releitura autoritativa ainda encontrou o documento.
	VerifyErr error
}

// Executor particiona a seleção em lotes limitados e os aplica em
// sequência: o lote N precisa estar durável antes do N+1 ser emitido,
// garantindo que falha no meio deixa um prefixo bem definido aplicado.
// Não há cancelamento: uma vez iniciado, roda até concluir ou falhar.
type Executor struct {
	store    BulkStore
	batchCap int

	mu         sync.Mutex
	state      ExecState
	batchIndex int
	batchTotal int
}

// NewExecutor cria executor com o teto de lote informado (0 = padrão).
func NewExecutor(store BulkStore, batchCap int) *Executor {
	if batchCap <= 0 {
		batchCap = DefaultBatchCap
	}
	return &Executor{store: store, batchCap: batchCap}
}

// State devolve o estado corrente e, quando em execução, o progresso.
func (e *Executor) State() (ExecState, int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.batchIndex, e.batchTotal
}

// ApplyPatch aplica a mutação parcial sobre a seleção inteira.
func (e *Executor) ApplyPatch(ctx context.Context, ids []uuid.UUID, patch task.BulkPatch) BulkResult {
	if patch.IsZero() {
		return BulkResult{Err: ErrEmptyPatch}
	}
	return e.run(ctx, ids, func(ctx context.Context, batch []uuid.UUID) error {
		return e.store.ApplyPatch(ctx, batch, patch)
	}, nil)
}

// Delete exclui a seleção inteira. Após o último lote commitar, uma
// verificação amostral confirma durabilidade num id representativo.
func (e *Executor) Delete(ctx context.Context, ids []uuid.UUID, verifier *Verifier) BulkResult {
	return e.run(ctx, ids, func(ctx context.Context, batch []uuid.UUID) error {
		return e.store.DeleteBatch(ctx, batch)
	}, verifier)
}

func (e *Executor) run(ctx context.Context, ids []uuid.UUID, apply func(context.Context, []uuid.UUID) error, verifier *Verifier) BulkResult {
	if len(ids) == 0 {
		return BulkResult{Err: ErrEmptySelection}
	}

	batches := chunkIDs(ids, e.batchCap)
	result := BulkResult{TotalBatches: len(batches)}

	e.setRunning(len(batches))

	for i, batch := range batches {
		e.setProgress(i + 1)

		if err := apply(ctx, batch); err != nil {
			result.Err = err
			e.setState(StatePartiallyFailed)
			return result
		}
		result.Applied += len(batch)
	}

	if verifier != nil {
		if err := verifier.VerifyDeleted(ctx, ids[0]); err != nil {
			result.VerifyErr = err
		}
	}

	e.setState(StateCompleted)
	return result
}

func (e *Executor) setRunning(total int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateRunning
	e.batchIndex = 0
	e.batchTotal = total
}

func (e *Executor) setProgress(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.batchIndex = index
}

func (e *Executor) setState(state ExecState) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	var out [][]uuid.UUID
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}
