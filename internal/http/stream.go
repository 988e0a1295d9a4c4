package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/verotasks/api/internal/board"
	"github.com/verotasks/api/internal/task"
)

type taskLister interface {
	List(ctx context.Context) ([]*task.Task, error)
}

// Hub mantém o estado mesclado da coleção no servidor e retransmite
// cada evento aos painéis conectados. Falha na assinatura congela o
// último estado bom; os painéis continuam servidos com dados velhos
// até a reconexão.
type Hub struct {
	repo   taskLister
	feed   *task.Feed
	merger *board.Merger
	logger zerolog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub cria o hub sobre o repositório e a assinatura de eventos.
func NewHub(repo taskLister, feed *task.Feed, logger zerolog.Logger) *Hub {
	return &Hub{
		repo:   repo,
		feed:   feed,
		merger: board.NewMerger(),
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Start carrega o estado inicial e começa a consumir eventos.
func (h *Hub) Start(ctx context.Context) error {
	rows, err := h.repo.List(ctx)
	if err != nil {
		return err
	}
	h.merger.Prime(rows)

	events, errs := h.feed.Subscribe(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				h.merger.Apply([]task.ChangeEvent{event})
				h.broadcast(event)
			case err, ok := <-errs:
				if !ok {
					return
				}
				if err != nil {
					h.logger.Error().Err(err).Msg("assinatura de eventos interrompida")
					h.merger.Fail(err)
				}
			}
		}
	}()

	return nil
}

// Rows expõe o snapshot corrente da coleção mesclada.
func (h *Hub) Rows() []*task.Task {
	return h.merger.Rows()
}

// Err devolve o erro da assinatura, se o estado estiver congelado.
func (h *Hub) Err() error {
	return h.merger.Err()
}

type streamMessage struct {
	Event string       `json:"event"`
	Task  *task.Task   `json:"task,omitempty"`
	Tasks []*task.Task `json:"tasks,omitempty"`
}

func (h *Hub) broadcast(event task.ChangeEvent) {
	t := event.Task
	message, err := json.Marshal(streamMessage{Event: event.Type, Task: &t})
	if err != nil {
		h.logger.Warn().Err(err).Msg("evento não serializável")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = 54 * time.Second
)

// StreamTasks abre a conexão de tempo real: snapshot completo na
// entrada, depois um evento por mudança. Conexão sem snapshot não é
// registrada.
func (h *Handler) StreamTasks(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(h.cfg.AllowOrigins) == 0 {
				return true
			}
			for _, allowed := range h.cfg.AllowOrigins {
				if allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	snapshot, err := json.Marshal(streamMessage{Event: "snapshot", Tasks: h.hub.Rows()})
	if err != nil {
		h.hub.logger.Error().Err(err).Msg("snapshot não serializável")
		conn.Close()
		return
	}

	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		conn.Close()
		return
	}

	h.hub.register(conn)
	defer h.hub.unregister(conn)

	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(streamPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
