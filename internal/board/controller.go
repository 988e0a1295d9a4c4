package board

import (
	"sync"

	"github.com/google/uuid"

	"github.com/verotasks/api/internal/task"
)

// Controller amarra merger, visão e seleção num consumidor único.
// Cada painel vira um cliente fino fornecendo apenas filtros e
// patches; o estado compartilhado mora aqui.
type Controller struct {
	mu     sync.Mutex
	merger *Merger
	sel    *Selection
	params ViewParams
}

// NewController cria controlador com visão padrão (mais recentes
// primeiro, página 1).
func NewController() *Controller {
	return &Controller{
		merger: NewMerger(),
		sel:    NewSelection(),
		params: ViewParams{Sort: SortRecent, Page: 1, PageSize: DefaultPageSize},
	}
}

// Prime carrega o estado inicial da coleção.
func (c *Controller) Prime(rows []*task.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merger.Prime(rows)
	c.sel.Prune(c.merger.Has)
}

// ApplyEvents mescla um lote de eventos e poda da seleção os ids que
// deixaram a coleção.
func (c *Controller) ApplyEvents(events []task.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.merger.Apply(events)
	c.sel.Prune(c.merger.Has)
}

// Fail congela o último estado bom e registra o erro da assinatura.
func (c *Controller) Fail(err error) {
	c.merger.Fail(err)
}

// Err devolve o último erro da assinatura, se houver.
func (c *Controller) Err() error {
	return c.merger.Err()
}

// View recalcula a fatia visível com os parâmetros correntes.
func (c *Controller) View() ViewResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View(c.merger.Rows(), c.params)
}

// Rows expõe snapshot da coleção bruta na ordem declarada.
func (c *Controller) Rows() []*task.Task {
	return c.merger.Rows()
}

// SetQuery troca a busca textual e volta para a página 1.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Query = query
	c.params.Page = 1
}

// SetStatusFilter troca o filtro de status e volta para a página 1.
func (c *Controller) SetStatusFilter(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Status = status
	c.params.Page = 1
}

// SetPriorityFilter troca o filtro de prioridade e volta para a página 1.
func (c *Controller) SetPriorityFilter(priority string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Priority = priority
	c.params.Page = 1
}

// SetSort troca a ordenação e volta para a página 1.
func (c *Controller) SetSort(key SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Sort = key
	c.params.Page = 1
}

// SetPage navega para a página pedida (clampada na visão).
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	c.params.Page = page
}

// SetPageSize troca o tamanho de página, volta para a página 1 e
// limpa a seleção em andamento. Limpar a seleção é comportamento
// documentado do produto, sensível ao formato da página; ver DESIGN.md
// antes de mudar.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size <= 0 {
		size = DefaultPageSize
	}
	c.params.PageSize = size
	c.params.Page = 1
	c.sel.Clear()
}

// Params devolve cópia dos parâmetros correntes.
func (c *Controller) Params() ViewParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// ToggleSelect inverte a seleção de um id.
func (c *Controller) ToggleSelect(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Toggle(id)
}

// SelectAllVisible seleciona os ids da página corrente.
func (c *Controller) SelectAllVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := View(c.merger.Rows(), c.params)
	c.sel.SelectVisible(view.VisibleIDs())
}

// ClearVisible desseleciona apenas os ids da página corrente.
func (c *Controller) ClearVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := View(c.merger.Rows(), c.params)
	c.sel.ClearVisible(view.VisibleIDs())
}

// SelectAllFiltered seleciona tudo que casa com o filtro corrente,
// atravessando todas as páginas.
func (c *Controller) SelectAllFiltered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := Filter(c.merger.Rows(), c.params)
	ids := make([]uuid.UUID, 0, len(filtered))
	for _, t := range filtered {
		ids = append(ids, t.ID)
	}
	c.sel.SelectAllFiltered(ids)
}

// ClearSelection esvazia a seleção.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Clear()
}

// SelectedIDs devolve a seleção corrente em ordem determinística.
func (c *Controller) SelectedIDs() []uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.IDs()
}

// SelectedCount devolve o tamanho da seleção.
func (c *Controller) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Count()
}

// IsSelected indica se o id está na seleção.
func (c *Controller) IsSelected(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.Has(id)
}
