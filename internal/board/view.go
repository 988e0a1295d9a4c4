package board

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

// SortKey identifica a ordenação pedida pelo painel.
type SortKey string

const (
	SortRecent     SortKey = "recent"
	SortOldest     SortKey = "old"
	SortPriority   SortKey = "priority"
	SortLastSignal SortKey = "last_signal"
)

// DefaultPageSize é o tamanho de página dos painéis.
const DefaultPageSize = 20

// ViewParams parametriza a visão derivada da coleção bruta.
type ViewParams struct {
	Query    string
	Status   string
	Priority string
	Sort     SortKey
	Page     int
	PageSize int
}

// ViewResult é a fatia visível mais os metadados de paginação.
type ViewResult struct {
	Items     []*task.Task
	Total     int
	PageCount int
	Page      int
	PageSize  int
}

// View é função pura: (coleção, filtros, ordenação, janela) → fatia.
// Recalculada a cada mudança de coleção ou de parâmetro.
func View(rows []*task.Task, p ViewParams) ViewResult {
	filtered := Filter(rows, p)

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total := len(filtered)
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return ViewResult{
		Items:     filtered[start:end],
		Total:     total,
		PageCount: pageCount,
		Page:      page,
		PageSize:  pageSize,
	}
}

// Filter aplica filtros e ordenação sem paginar. É a base do
// "selecionar tudo que casa com o filtro".
func Filter(rows []*task.Task, p ViewParams) []*task.Task {
	query := strings.ToLower(strings.TrimSpace(p.Query))
	status := strings.TrimSpace(p.Status)
	priority := strings.TrimSpace(p.Priority)

	out := make([]*task.Task, 0, len(rows))
	for _, t := range rows {
		if t == nil {
			continue
		}
		if status != "" && status != "all" && task.NormalizeStatus(t.Status) != task.NormalizeStatus(status) {
			continue
		}
		if priority != "" && priority != "all" && task.NormalizePriority(t.Priority) != task.NormalizePriority(priority) {
			continue
		}
		if query != "" && !strings.Contains(t.SearchText(), query) {
			continue
		}
		out = append(out, t)
	}

	sortRows(out, p.Sort)
	return out
}

// VisibleIDs extrai os ids da fatia visível.
func (r ViewResult) VisibleIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, t := range r.Items {
		ids = append(ids, t.ID)
	}
	return ids
}

func sortRows(rows []*task.Task, key SortKey) {
	switch key {
	case SortOldest:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		})
	case SortPriority:
		sort.SliceStable(rows, func(i, j int) bool {
			return task.PriorityRank(rows[i].Priority) > task.PriorityRank(rows[j].Priority)
		})
	case SortLastSignal:
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].OfficeSignaledAt, rows[j].OfficeSignaledAt
			switch {
			case a == nil && b == nil:
				return false
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return a.After(*b)
			}
		})
	default: // SortRecent
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		})
	}
}
