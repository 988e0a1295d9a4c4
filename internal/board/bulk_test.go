package board

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

type stubBulkStore struct {
	patchBatches  [][]uuid.UUID
	deleteBatches [][]uuid.UUID
	failOnBatch   int // 1-based; 0 = nunca falha
	err           error
}

func (s *stubBulkStore) ApplyPatch(ctx context.Context, ids []uuid.UUID, patch task.BulkPatch) error {
	s.patchBatches = append(s.patchBatches, ids)
	if s.failOnBatch > 0 && len(s.patchBatches) == s.failOnBatch {
		return s.err
	}
	return nil
}

func (s *stubBulkStore) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	s.deleteBatches = append(s.deleteBatches, ids)
	if s.failOnBatch > 0 && len(s.deleteBatches) == s.failOnBatch {
		return s.err
	}
	return nil
}

type stubReader struct {
	found map[uuid.UUID]*task.Task
	err   error
}

func (s *stubReader) Get(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	if t, ok := s.found[id]; ok {
		return t, nil
	}
	return nil, task.ErrNotFound
}

func statusPatch() task.BulkPatch {
	done := task.StatusDone
	return task.BulkPatch{Status: &done}
}

func TestExecutorSplits900Into2Batches(t *testing.T) {
	store := &stubBulkStore{}
	exec := NewExecutor(store, 450)

	result := exec.ApplyPatch(context.Background(), ids(900), statusPatch())

	if result.Err != nil {
		t.Fatalf("falha inesperada: %v", result.Err)
	}
	if len(store.patchBatches) != 2 {
		t.Fatalf("900 ids deveriam virar 2 lotes, viraram %d", len(store.patchBatches))
	}
	if len(store.patchBatches[0]) != 450 || len(store.patchBatches[1]) != 450 {
		t.Fatalf("lotes de tamanho errado: %d e %d", len(store.patchBatches[0]), len(store.patchBatches[1]))
	}
	if result.Applied != 900 {
		t.Fatalf("applied errado: %d", result.Applied)
	}
}

func TestExecutorSplits451Into450Plus1(t *testing.T) {
	store := &stubBulkStore{}
	exec := NewExecutor(store, 450)

	result := exec.ApplyPatch(context.Background(), ids(451), statusPatch())

	if len(store.patchBatches) != 2 {
		t.Fatalf("451 ids deveriam virar 2 lotes, viraram %d", len(store.patchBatches))
	}
	if len(store.patchBatches[0]) != 450 || len(store.patchBatches[1]) != 1 {
		t.Fatalf("lotes de tamanho errado: %d e %d", len(store.patchBatches[0]), len(store.patchBatches[1]))
	}
	if result.TotalBatches != 2 {
		t.Fatalf("totalBatches errado: %d", result.TotalBatches)
	}
}

func TestExecutorStopsAtFirstFailedBatch(t *testing.T) {
	boom := errors.New("lote recusado")
	store := &stubBulkStore{failOnBatch: 2, err: boom}
	exec := NewExecutor(store, 100)

	result := exec.ApplyPatch(context.Background(), ids(350), statusPatch())

	if !errors.Is(result.Err, boom) {
		t.Fatalf("erro do lote não propagado: %v", result.Err)
	}
	// Lote 1 commitou; lote 2 falhou; lotes 3 e 4 nunca foram emitidos.
	if len(store.patchBatches) != 2 {
		t.Fatalf("lotes após a falha foram emitidos: %d", len(store.patchBatches))
	}
	if result.Applied != 100 {
		t.Fatalf("prefixo aplicado errado: %d", result.Applied)
	}

	state, _, _ := exec.State()
	if state != StatePartiallyFailed {
		t.Fatalf("estado final errado: %d", state)
	}
}

func TestExecutorRejectsEmptySelectionAndPatch(t *testing.T) {
	exec := NewExecutor(&stubBulkStore{}, 0)

	if result := exec.ApplyPatch(context.Background(), nil, statusPatch()); !errors.Is(result.Err, ErrEmptySelection) {
		t.Fatalf("seleção vazia: %v", result.Err)
	}
	if result := exec.ApplyPatch(context.Background(), ids(1), task.BulkPatch{}); !errors.Is(result.Err, ErrEmptyPatch) {
		t.Fatalf("patch vazio: %v", result.Err)
	}
}

func TestExecutorDeleteRunsSampleVerification(t *testing.T) {
	store := &stubBulkStore{}
	exec := NewExecutor(store, 450)

	selection := ids(3)

	// Releitura autoritativa ainda encontra o primeiro id: a exclusão
	// foi aceita pela escrita, mas rejeitada na persistência.
	reader := &stubReader{found: map[uuid.UUID]*task.Task{
		selection[0]: {ID: selection[0]},
	}}

	result := exec.Delete(context.Background(), selection, NewVerifier(reader))

	if result.Err != nil {
		t.Fatalf("exclusão não deveria falhar: %v", result.Err)
	}
	var notDurable *NotDurableError
	if !errors.As(result.VerifyErr, &notDurable) {
		t.Fatalf("esperava NotDurableError, obteve %v", result.VerifyErr)
	}
	if notDurable.ID != selection[0] {
		t.Fatalf("id errado na verificação: %s", notDurable.ID)
	}
}

func TestExecutorDeleteVerifiesCleanWhenGone(t *testing.T) {
	store := &stubBulkStore{}
	exec := NewExecutor(store, 450)

	result := exec.Delete(context.Background(), ids(3), NewVerifier(&stubReader{}))

	if result.Err != nil || result.VerifyErr != nil {
		t.Fatalf("exclusão limpa reportou erro: %v / %v", result.Err, result.VerifyErr)
	}

	state, _, _ := exec.State()
	if state != StateCompleted {
		t.Fatalf("estado final errado: %d", state)
	}
}
