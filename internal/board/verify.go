package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

// PrimaryReader lê direto do armazenamento autoritativo, nunca de
// cache local ou do estado mesclado em memória.
type PrimaryReader interface {
	Get(ctx context.Context, id uuid.UUID) (*task.Task, error)
}

// NotDurableError indica que a exclusão reportada como aceita não
// persistiu: a releitura autoritativa ainda encontrou o documento.
// Normalmente é política de autorização rejeitando em silêncio, ou
// um processo recriando o documento.
type NotDurableError struct {
	ID uuid.UUID
}

func (e *NotDurableError) Error() string {
	return fmt.Sprintf("exclusão não persistiu no servidor (documento ainda existe): id=%s", e.ID)
}

// Verifier confirma durabilidade de exclusões. Existe porque "a
// chamada de escrita não retornou erro" não é evidência suficiente:
// exclusões que somem do cache local e voltam após recarregar são uma
// classe de bug de primeira ordem que este componente captura.
type Verifier struct {
	reader PrimaryReader
}

// NewVerifier cria verificador sobre a leitura autoritativa.
func NewVerifier(reader PrimaryReader) *Verifier {
	return &Verifier{reader: reader}
}

// VerifyDeleted relê a tarefa no armazenamento. Documento ainda
// presente é falha de verificação, distinta de "exclusão falhou".
func (v *Verifier) VerifyDeleted(ctx context.Context, id uuid.UUID) error {
	_, err := v.reader.Get(ctx, id)
	if errors.Is(err, task.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return &NotDurableError{ID: id}
}
