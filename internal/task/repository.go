package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/verotasks/api/internal/db"
)

const taskColumns = `id, title, description, status, priority, assignee_id, created_by,
        office_signal, office_comment, office_signaled_at, master_comment, created_at, updated_at`

// Repository provê acesso à tabela de tarefas e publica eventos de
// mudança no Redis para os assinantes ao vivo.
type Repository struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool, rdb *redis.Client) *Repository {
	return &Repository{pool: pool, rdb: rdb}
}

// Create insere nova tarefa.
func (r *Repository) Create(ctx context.Context, input CreateTaskInput) (*Task, error) {
	query := fmt.Sprintf(`
        INSERT INTO tasks (title, description, status, priority, assignee_id, created_by)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING %s
    `, taskColumns)

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Title),
		strings.TrimSpace(input.Description),
		StatusOpen,
		NormalizePriority(input.Priority),
		input.AssigneeID,
		input.CreatedBy,
	)

	created, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, ChangeEvent{Type: EventAdded, Task: *created})
	return created, nil
}

// Get busca a tarefa direto no armazenamento autoritativo. É a leitura
// usada pelo verificador de exclusão: nunca passa pelo estado em memória.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1`, taskColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

// List devolve a coleção completa na ordem declarada da assinatura
// (created_at decrescente). Alimenta o estado inicial do merger.
func (r *Repository) List(ctx context.Context) ([]*Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks ORDER BY created_at DESC, id DESC`, taskColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return tasks, nil
}

// Update aplica atualização parcial do master.
func (r *Repository) Update(ctx context.Context, input UpdateTaskInput) (*Task, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Title != nil {
		setParts = append(setParts, fmt.Sprintf("title = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Title))
		idx++
	}
	if input.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Description))
		idx++
	}
	if input.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, NormalizeStatus(*input.Status))
		idx++
	}
	if input.Priority != nil {
		setParts = append(setParts, fmt.Sprintf("priority = $%d", idx))
		args = append(args, NormalizePriority(*input.Priority))
		idx++
	}
	if input.AssigneeID != nil {
		setParts = append(setParts, fmt.Sprintf("assignee_id = $%d", idx))
		args = append(args, *input.AssigneeID)
		idx++
	} else if input.ClearAssignee {
		setParts = append(setParts, "assignee_id = NULL")
	}
	if input.MasterComment != nil {
		setParts = append(setParts, fmt.Sprintf("master_comment = $%d", idx))
		args = append(args, strings.TrimSpace(*input.MasterComment))
		idx++
	}

	if len(setParts) == 0 {
		return r.Get(ctx, input.ID)
	}

	setParts = append(setParts, "updated_at = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE tasks
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, taskColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	updated, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, ChangeEvent{Type: EventModified, Task: *updated})
	return updated, nil
}

// ApplySignal grava o sinal do escritório e seus campos denormalizados.
func (r *Repository) ApplySignal(ctx context.Context, taskID uuid.UUID, signal Signal) (*Task, error) {
	payload, err := json.Marshal(signal)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
        UPDATE tasks
        SET office_signal = $1,
            office_comment = $2,
            office_signaled_at = now(),
            updated_at = now()
        WHERE id = $3
        RETURNING %s
    `, taskColumns)

	row := r.pool.QueryRow(ctx, query, payload, strings.TrimSpace(signal.Comment), taskID)
	updated, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	r.publish(ctx, ChangeEvent{Type: EventModified, Task: *updated})
	return updated, nil
}

// Delete remove a tarefa. A confirmação de durabilidade é papel do
// verificador, não desta chamada.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	r.publish(ctx, ChangeEvent{Type: EventRemoved, Task: Task{ID: id}})
	return nil
}

// ApplyPatch aplica um lote de atualização em massa. O lote inteiro
// commita ou falha junto; lotes distintos são independentes.
func (r *Repository) ApplyPatch(ctx context.Context, ids []uuid.UUID, patch BulkPatch) error {
	if len(ids) == 0 || patch.IsZero() {
		return nil
	}

	setParts := []string{}
	args := []any{}
	idx := 1

	if patch.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, NormalizeStatus(*patch.Status))
		idx++
	}
	if patch.Priority != nil {
		setParts = append(setParts, fmt.Sprintf("priority = $%d", idx))
		args = append(args, NormalizePriority(*patch.Priority))
		idx++
	}
	if patch.AssigneeID != nil {
		setParts = append(setParts, fmt.Sprintf("assignee_id = $%d", idx))
		args = append(args, *patch.AssigneeID)
		idx++
	} else if patch.ClearAssignee {
		setParts = append(setParts, "assignee_id = NULL")
	}

	setParts = append(setParts, "updated_at = now()")
	args = append(args, ids)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ANY($%d)`,
		strings.Join(setParts, ", "), idx)

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	})
	if err != nil {
		return err
	}

	r.publishBatch(ctx, ids, EventModified)
	return nil
}

// DeleteBatch exclui um lote inteiro numa única transação.
func (r *Repository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = ANY($1)`, ids)
		return err
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		r.publish(ctx, ChangeEvent{Type: EventRemoved, Task: Task{ID: id}})
	}
	return nil
}

// CountByStatus agrega contagens por grupo de status e sinais pendentes.
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT status, count(*),
               count(*) FILTER (WHERE office_signal IS NOT NULL)
        FROM tasks
        GROUP BY status
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		StatusOpen:    0,
		StatusPending: 0,
		StatusBlocked: 0,
		StatusDone:    0,
		"office_ping": 0,
	}
	for rows.Next() {
		var status string
		var total, signaled int
		if err := rows.Scan(&status, &total, &signaled); err != nil {
			return nil, err
		}
		counts[NormalizeStatus(status)] += total
		counts["office_ping"] += signaled
	}

	return counts, rows.Err()
}

func (r *Repository) publishBatch(ctx context.Context, ids []uuid.UUID, eventType string) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = ANY($1)`, taskColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		log.Warn().Err(err).Msg("falha ao recarregar lote para publicação")
		return
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Warn().Err(err).Msg("falha ao decodificar tarefa do lote")
			return
		}
		r.publish(ctx, ChangeEvent{Type: eventType, Task: *t})
	}
}

// publish envia o evento pelo Redis em melhor esforço: falha de
// publicação não derruba a mutação que já commitou.
func (r *Repository) publish(ctx context.Context, event ChangeEvent) {
	if r.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("falha ao serializar evento de tarefa")
		return
	}

	if err := r.rdb.Publish(ctx, EventsChannel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("task_id", event.Task.ID.String()).Msg("falha ao publicar evento de tarefa")
	}
}

func scanTask(row pgx.Row) (*Task, error) {
	var (
		t          Task
		signalJSON []byte
	)
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &t.CreatedBy, &signalJSON, &t.OfficeComment,
		&t.OfficeSignaledAt, &t.MasterComment, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if len(signalJSON) > 0 {
		var sig Signal
		if err := json.Unmarshal(signalJSON, &sig); err == nil {
			t.OfficeSignal = &sig
		}
	}

	t.Status = NormalizeStatus(t.Status)
	t.Priority = NormalizePriority(t.Priority)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if t.OfficeSignaledAt != nil {
		utc := t.OfficeSignaledAt.UTC()
		t.OfficeSignaledAt = &utc
	}

	return &t, nil
}
