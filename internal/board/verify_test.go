package board

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

func TestVerifyDeletedConfirmsAbsence(t *testing.T) {
	v := NewVerifier(&stubReader{})

	if err := v.VerifyDeleted(context.Background(), uuid.New()); err != nil {
		t.Fatalf("ausência deveria confirmar a exclusão: %v", err)
	}
}

func TestVerifyDeletedDetectsRejectedDelete(t *testing.T) {
	id := uuid.New()
	v := NewVerifier(&stubReader{found: map[uuid.UUID]*task.Task{
		id: {ID: id, Title: "ainda aqui"},
	}})

	err := v.VerifyDeleted(context.Background(), id)

	var notDurable *NotDurableError
	if !errors.As(err, &notDurable) {
		t.Fatalf("documento presente deveria virar NotDurableError: %v", err)
	}
	if notDurable.ID != id {
		t.Fatalf("id errado: %s", notDurable.ID)
	}
}

func TestVerifyDeletedPropagatesReadErrors(t *testing.T) {
	boom := errors.New("storage fora do ar")
	v := NewVerifier(&stubReader{err: boom})

	err := v.VerifyDeleted(context.Background(), uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("erro de leitura deveria propagar, obteve %v", err)
	}

	var notDurable *NotDurableError
	if errors.As(err, &notDurable) {
		t.Fatal("erro de leitura não é falha de durabilidade")
	}
}
