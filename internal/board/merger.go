// Package board consolida a reconciliação de listas ao vivo que os
// painéis (master e escritório) compartilham: merge incremental de
// eventos, visão filtrada/ordenada/paginada, conjunto de seleção,
// executor de mutações em massa e verificador de exclusão durável.
package board

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

// Merger é o único dono da coleção bruta de tarefas. Aplica lotes de
// eventos da assinatura ao vivo preservando a identidade (ponteiro)
// das linhas não mencionadas, para que a camada de UI possa pular
// re-render por igualdade referencial.
type Merger struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*task.Task
	rows    []*task.Task
	less    func(a, b *task.Task) bool
	lastErr error
}

// NewMerger cria coleção vazia com a ordem declarada da assinatura
// (created_at decrescente por padrão).
func NewMerger() *Merger {
	return &Merger{
		byID: make(map[uuid.UUID]*task.Task),
		less: newestFirst,
	}
}

func newestFirst(a, b *task.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	// desempate estável para timestamps idênticos
	return a.ID.String() > b.ID.String()
}

// Prime substitui a coleção pelo estado inicial lido do armazenamento.
func (m *Merger) Prime(rows []*task.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[uuid.UUID]*task.Task, len(rows))
	m.rows = make([]*task.Task, 0, len(rows))
	for _, t := range rows {
		if t == nil || t.ID == uuid.Nil {
			continue
		}
		if _, dup := m.byID[t.ID]; dup {
			continue
		}
		m.byID[t.ID] = t
		m.rows = append(m.rows, t)
	}
	m.resort()
	m.lastErr = nil
}

// Apply incorpora um lote ordenado de eventos. Eventos do mesmo
// documento são aplicados na ordem de entrega; a posição final segue
// a ordem declarada, não a ordem de chegada.
func (m *Merger) Apply(events []task.ChangeEvent) {
	if len(events) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range events {
		id := ev.Task.ID
		if id == uuid.Nil {
			continue
		}

		switch ev.Type {
		case task.EventRemoved:
			if _, ok := m.byID[id]; !ok {
				continue
			}
			delete(m.byID, id)
			for i, row := range m.rows {
				if row.ID == id {
					m.rows = append(m.rows[:i], m.rows[i+1:]...)
					break
				}
			}
		case task.EventAdded, task.EventModified:
			clone := ev.Task
			if _, ok := m.byID[id]; ok {
				for i, row := range m.rows {
					if row.ID == id {
						m.rows[i] = &clone
						break
					}
				}
			} else {
				m.rows = append(m.rows, &clone)
			}
			m.byID[id] = &clone
		}
	}

	m.resort()
	m.lastErr = nil
}

// Fail registra erro da assinatura congelando o último estado bom:
// vale mais coleção desatualizada que coleção vazia.
func (m *Merger) Fail(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}

// Rows devolve um snapshot da coleção na ordem declarada.
func (m *Merger) Rows() []*task.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*task.Task, len(m.rows))
	copy(out, m.rows)
	return out
}

// Has indica se o documento segue presente na coleção bruta.
func (m *Merger) Has(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok
}

// Len devolve o tamanho atual da coleção.
func (m *Merger) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Err devolve o último erro da assinatura, se houver.
func (m *Merger) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Merger) resort() {
	sort.SliceStable(m.rows, func(i, j int) bool {
		return m.less(m.rows[i], m.rows[j])
	})
}
