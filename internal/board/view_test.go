package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

func seedRows(n int) []*task.Task {
	base := time.Now().UTC()
	rows := make([]*task.Task, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, &task.Task{
			ID:        uuid.New(),
			Title:     fmt.Sprintf("tarefa %02d", i),
			Status:    task.StatusOpen,
			Priority:  task.PriorityMedium,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return rows
}

func TestViewPaginatesConsistently(t *testing.T) {
	rows := seedRows(45)

	seen := make(map[uuid.UUID]struct{})
	for page := 1; page <= 3; page++ {
		result := View(rows, ViewParams{Sort: SortRecent, Page: page, PageSize: 20})
		if result.Total != 45 {
			t.Fatalf("total errado: %d", result.Total)
		}
		if result.PageCount != 3 {
			t.Fatalf("pageCount errado: %d", result.PageCount)
		}
		for _, item := range result.Items {
			if _, dup := seen[item.ID]; dup {
				t.Fatalf("item repetido entre páginas: %s", item.Title)
			}
			seen[item.ID] = struct{}{}
		}
	}
	if len(seen) != 45 {
		t.Fatalf("páginas não cobrem a coleção: %d", len(seen))
	}
}

func TestViewClampsPageBeyondRange(t *testing.T) {
	rows := seedRows(25)

	result := View(rows, ViewParams{Sort: SortRecent, Page: 99, PageSize: 20})
	if result.Page != 2 {
		t.Fatalf("página fora do intervalo deveria clampar em 2, obteve %d", result.Page)
	}
	if len(result.Items) != 5 {
		t.Fatalf("última página deveria ter 5 itens, obteve %d", len(result.Items))
	}

	empty := View(nil, ViewParams{Page: 5})
	if empty.Page != 1 || empty.PageCount != 1 {
		t.Fatalf("coleção vazia: page=%d pageCount=%d", empty.Page, empty.PageCount)
	}
}

func TestFilterByStatusNormalizesAliases(t *testing.T) {
	rows := seedRows(3)
	rows[0].Status = "feito" // alias legado de done
	rows[1].Status = task.StatusDone
	rows[2].Status = task.StatusOpen

	got := Filter(rows, ViewParams{Status: "done"})
	if len(got) != 2 {
		t.Fatalf("filtro por done deveria casar alias legado: %d", len(got))
	}

	all := Filter(rows, ViewParams{Status: "all"})
	if len(all) != 3 {
		t.Fatalf("status=all não deveria filtrar: %d", len(all))
	}
}

func TestFilterByQuerySearchesAllTextFields(t *testing.T) {
	rows := seedRows(3)
	rows[0].Description = "revisar ORÇAMENTO anual"
	rows[1].MasterComment = "orcamento? não"
	rows[2].OfficeComment = "sem relação"

	got := Filter(rows, ViewParams{Query: "orçamento"})
	if len(got) != 1 || got[0].ID != rows[0].ID {
		t.Fatalf("busca deveria casar só a descrição acentuada: %d", len(got))
	}
}

func TestSortPriorityRanksUnknownAsMedium(t *testing.T) {
	rows := seedRows(3)
	rows[0].Priority = task.PriorityLow
	rows[1].Priority = "???"
	rows[2].Priority = task.PriorityUrgent

	got := Filter(rows, ViewParams{Sort: SortPriority})
	if got[0].Priority != task.PriorityUrgent {
		t.Fatalf("urgent deveria vir primeiro, veio %s", got[0].Priority)
	}
	if got[2].Priority != task.PriorityLow {
		t.Fatalf("low deveria vir por último, veio %s", got[2].Priority)
	}
	if got[1].Priority != "???" {
		t.Fatalf("desconhecida deveria ocupar o meio (peso de medium), veio %s", got[1].Priority)
	}
}

func TestSortLastSignalPutsUnsignaledLast(t *testing.T) {
	rows := seedRows(3)
	now := time.Now().UTC()
	older := now.Add(-time.Hour)
	rows[1].OfficeSignaledAt = &older
	rows[2].OfficeSignaledAt = &now

	got := Filter(rows, ViewParams{Sort: SortLastSignal})
	if got[0].ID != rows[2].ID || got[1].ID != rows[1].ID || got[2].ID != rows[0].ID {
		t.Fatal("ordenação por último sinal deveria pôr sem-sinal no fim")
	}
}
