package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// EventTasksChanged отправляется подписчикам после изменения задач
const EventTasksChanged = "tasks.changed"

const writeTimeout = 5 * time.Second

// Event - сообщение подписчикам рабочего пространства
type Event struct {
	Type        string `json:"type"`
	WorkspaceID string `json:"workspaceId"`
	Revision    int64  `json:"revision"`
}

type Metrics interface {
	ClientConnected()
	ClientDisconnected()
}

type conn struct {
	ws          *websocket.Conn
	cancel      context.CancelFunc
	workspaceID string
}

// Hub хранит WebSocket-подключения, сгруппированные по рабочим пространствам
type Hub struct {
	metrics Metrics

	mu    sync.RWMutex
	conns map[string]map[*conn]struct{}
}

func NewHub(metrics Metrics) *Hub {
	return &Hub{
		metrics: metrics,
		conns:   make(map[string]map[*conn]struct{}),
	}
}

// Subscribe переводит запрос на WebSocket и держит подключение открытым,
// пока клиент не отключится. Доступ к рабочему пространству проверяет вызывающий.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, workspaceID string) {
	wsConn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("Ошибка подключения WebSocket: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: wsConn, cancel: cancel, workspaceID: workspaceID}
	h.add(c)

	defer func() {
		h.remove(c)
		wsConn.Close(websocket.StatusNormalClosure, "")
	}()

	// Читаем, чтобы заметить отключение клиента
	for {
		if _, _, err := wsConn.Read(ctx); err != nil {
			return
		}
	}
}

// Notify сообщает подписчикам рабочего пространства о новой ревизии задач
func (h *Hub) Notify(ctx context.Context, workspaceID string, revision int64) {
	h.Broadcast(ctx, Event{Type: EventTasksChanged, WorkspaceID: workspaceID, Revision: revision})
}

func (h *Hub) Broadcast(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Ошибка сериализации события: %v", err)
		return
	}

	h.mu.RLock()
	targets := make([]*conn, 0, len(h.conns[event.WorkspaceID]))
	for c := range h.conns[event.WorkspaceID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		err := c.ws.Write(writeCtx, websocket.MessageText, data)
		cancel()
		if err != nil {
			log.Printf("Ошибка отправки события подписчику: %v", err)
			h.remove(c)
		}
	}
}

// ConnectionCount возвращает число подписчиков рабочего пространства
func (h *Hub) ConnectionCount(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[workspaceID])
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[c.workspaceID]
	if !ok {
		set = make(map[*conn]struct{})
		h.conns[c.workspaceID] = set
	}
	set[c] = struct{}{}

	if h.metrics != nil {
		h.metrics.ClientConnected()
	}
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.conns[c.workspaceID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	c.cancel()
	delete(set, c)
	if len(set) == 0 {
		delete(h.conns, c.workspaceID)
	}

	if h.metrics != nil {
		h.metrics.ClientDisconnected()
	}
}
