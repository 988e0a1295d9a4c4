package task

// Tipos de evento entregues pela assinatura ao vivo, na ordem de commit
// por entidade. Entre entidades distintas não há garantia de ordem.
const (
	EventAdded    = "added"
	EventModified = "modified"
	EventRemoved  = "removed"
)

// EventsChannel é o canal Redis que transporta mudanças de tarefas.
const EventsChannel = "verotasks:tasks:events"

// ChangeEvent descreve uma mudança incremental na coleção de tarefas.
// Para "removed" apenas o ID da tarefa é relevante.
type ChangeEvent struct {
	Type string `json:"type"`
	Task Task   `json:"task"`
}
