package board

import (
	"testing"

	"github.com/google/uuid"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestSelectionToggle(t *testing.T) {
	s := NewSelection()
	id := uuid.New()

	s.Toggle(id)
	if !s.Has(id) {
		t.Fatal("toggle deveria selecionar")
	}
	s.Toggle(id)
	if s.Has(id) {
		t.Fatal("segundo toggle deveria desselecionar")
	}

	s.Toggle(uuid.Nil)
	if s.Count() != 0 {
		t.Fatal("uuid nulo não deve entrar na seleção")
	}
}

func TestSelectVisibleIsPageScoped(t *testing.T) {
	s := NewSelection()
	page1 := ids(3)
	page2 := ids(3)

	s.SelectVisible(page1)
	s.SelectVisible(page2)
	if s.Count() != 6 {
		t.Fatalf("seleção deveria acumular entre páginas: %d", s.Count())
	}

	// Limpar a página 2 não toca a página 1.
	s.ClearVisible(page2)
	if s.Count() != 3 {
		t.Fatalf("clear da página 2 vazou: %d", s.Count())
	}
	for _, id := range page1 {
		if !s.Has(id) {
			t.Fatal("seleção da página 1 foi perdida")
		}
	}
}

func TestSelectAllFilteredReplacesSelection(t *testing.T) {
	s := NewSelection()
	old := ids(2)
	s.SelectVisible(old)

	filtered := ids(4)
	s.SelectAllFiltered(filtered)

	if s.Count() != 4 {
		t.Fatalf("esperava seleção substituída com 4: %d", s.Count())
	}
	for _, id := range old {
		if s.Has(id) {
			t.Fatal("seleção antiga sobreviveu ao select-all-filtered")
		}
	}
}

func TestSelectionPruneDropsDepartedIDs(t *testing.T) {
	s := NewSelection()
	keep := uuid.New()
	gone := uuid.New()
	s.Toggle(keep)
	s.Toggle(gone)

	s.Prune(func(id uuid.UUID) bool { return id == keep })

	if s.Has(gone) || !s.Has(keep) {
		t.Fatal("prune deveria descartar só o id que saiu da coleção")
	}
}

func TestSelectionIDsDeterministicOrder(t *testing.T) {
	s := NewSelection()
	batch := ids(10)
	s.SelectVisible(batch)

	first := s.IDs()
	second := s.IDs()
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("IDs deveria devolver ordem estável")
		}
	}
}
