package board

import (
	"sort"

	"github.com/google/uuid"
)

// Selection rastreia ids de tarefas selecionadas através de páginas e
// filtros. Estado efêmero do controlador: nunca persiste e é limpo
// após mutação em massa bem-sucedida.
type Selection struct {
	ids map[uuid.UUID]struct{}
}

// NewSelection cria conjunto vazio.
func NewSelection() *Selection {
	return &Selection{ids: make(map[uuid.UUID]struct{})}
}

// Toggle inverte a presença de um id.
func (s *Selection) Toggle(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// SelectVisible adiciona os ids da página atual, sem tocar nas
// seleções de outras páginas — é isso que habilita operação em massa
// atravessando páginas.
func (s *Selection) SelectVisible(visibleIDs []uuid.UUID) {
	for _, id := range visibleIDs {
		if id != uuid.Nil {
			s.ids[id] = struct{}{}
		}
	}
}

// ClearVisible remove apenas os ids da página atual.
func (s *Selection) ClearVisible(visibleIDs []uuid.UUID) {
	for _, id := range visibleIDs {
		delete(s.ids, id)
	}
}

// SelectAllFiltered substitui a seleção por tudo que casa com o filtro.
func (s *Selection) SelectAllFiltered(filteredIDs []uuid.UUID) {
	s.ids = make(map[uuid.UUID]struct{}, len(filteredIDs))
	for _, id := range filteredIDs {
		if id != uuid.Nil {
			s.ids[id] = struct{}{}
		}
	}
}

// Clear esvazia a seleção.
func (s *Selection) Clear() {
	s.ids = make(map[uuid.UUID]struct{})
}

// Has indica se o id está selecionado.
func (s *Selection) Has(id uuid.UUID) bool {
	_, ok := s.ids[id]
	return ok
}

// Count devolve o tamanho da seleção.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs devolve os ids em ordem determinística.
func (s *Selection) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Prune descarta ids que sumiram da coleção bruta, evitando que uma
// mutação em massa mire documento que já não existe.
func (s *Selection) Prune(exists func(uuid.UUID) bool) {
	for id := range s.ids {
		if !exists(id) {
			delete(s.ids, id)
		}
	}
}
