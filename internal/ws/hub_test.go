package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gauge struct {
	n atomic.Int64
}

func (g *gauge) ClientConnected()    { g.n.Add(1) }
func (g *gauge) ClientDisconnected() { g.n.Add(-1) }

func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Subscribe(w, r, strings.TrimPrefix(r.URL.Path, "/ws/"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, workspaceID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + workspaceID
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	return c
}

func TestHub_NotifyWorkspace(t *testing.T) {
	g := &gauge{}
	hub := NewHub(g)
	srv := newHubServer(t, hub)

	alpha := dial(t, srv, "alpha")
	defer alpha.CloseNow()
	beta := dial(t, srv, "beta")
	defer beta.CloseNow()

	require.Eventually(t, func() bool {
		return hub.ConnectionCount("alpha") == 1 && hub.ConnectionCount("beta") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), g.n.Load())

	hub.Notify(context.Background(), "alpha", 7)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := alpha.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, Event{Type: EventTasksChanged, WorkspaceID: "alpha", Revision: 7}, event)

	// Подписчик другого пространства ничего не получает
	short, cancelShort := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelShort()
	_, _, err = beta.Read(short)
	assert.Error(t, err)
}

func TestHub_Disconnect(t *testing.T) {
	g := &gauge{}
	hub := NewHub(g)
	srv := newHubServer(t, hub)

	c := dial(t, srv, "alpha")
	require.Eventually(t, func() bool { return hub.ConnectionCount("alpha") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool { return hub.ConnectionCount("alpha") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(0), g.n.Load())
}

func TestHub_NoSubscribers(t *testing.T) {
	hub := NewHub(nil)

	assert.NotPanics(t, func() {
		hub.Notify(context.Background(), "nobody", 1)
	})
	assert.Equal(t, 0, hub.ConnectionCount("nobody"))
}

func TestHub_RemoveUnknown(t *testing.T) {
	hub := NewHub(nil)
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	assert.NotPanics(t, func() {
		hub.remove(&conn{cancel: cancel, workspaceID: "x"})
	})
}
