package board

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

func TestSuggestRanksExactOverPrefixOverSubstring(t *testing.T) {
	now := time.Now().UTC()
	rows := []*task.Task{
		{ID: uuid.New(), Title: "relatório mensal", CreatedAt: now},
		{ID: uuid.New(), Title: "relatório", CreatedAt: now},
		{ID: uuid.New(), Title: "enviar relatório", CreatedAt: now},
	}

	got := Suggest(rows, nil, "relatório")
	if len(got) < 3 {
		t.Fatalf("esperava 3 sugestões, obteve %d: %v", len(got), got)
	}
	if got[0] != "relatório" {
		t.Fatalf("igualdade exata deveria liderar: %v", got)
	}
	if got[1] != "relatório mensal" {
		t.Fatalf("prefixo deveria vir antes de substring: %v", got)
	}
}

func TestSuggestIncludesTeamLabels(t *testing.T) {
	got := Suggest(nil, []string{"Mariana Souza", "Pedro Lima"}, "mar")
	if len(got) != 1 || got[0] != "Mariana Souza" {
		t.Fatalf("rótulo da equipe deveria casar: %v", got)
	}
}

func TestSuggestIgnoresShortNeedleAndDedups(t *testing.T) {
	now := time.Now().UTC()
	rows := []*task.Task{
		{ID: uuid.New(), Title: "Backup", CreatedAt: now},
		{ID: uuid.New(), Title: "backup", CreatedAt: now},
	}

	if got := Suggest(rows, nil, "b"); got != nil {
		t.Fatalf("busca de 1 caractere não sugere: %v", got)
	}

	got := Suggest(rows, nil, "backup")
	if len(got) != 1 {
		t.Fatalf("duplicatas case-insensitive deveriam colapsar: %v", got)
	}
}
