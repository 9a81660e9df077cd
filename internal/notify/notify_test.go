package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"starcg-market-api/internal/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	got []model.Notification
	err error
}

func (r *recordingNotifier) Notify(ctx context.Context, n model.Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{err: errors.New("sink down")}
	c := &recordingNotifier{}

	err := NewFanout(nil, a, b, c).Notify(context.Background(), model.Notification{Title: "t"})
	assert.ErrorContains(t, err, "sink down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(zap.NewNop().Sugar()).Notify(context.Background(), model.Notification{Title: "t"}))
}

func TestHub_BroadcastsToClients(t *testing.T) {
	hub := NewHub(nil, zap.NewNop().Sugar(), nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()
	defer hub.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	oldPrice, newPrice := 100.0, 80.0
	require.NoError(t, hub.Notify(context.Background(), model.Notification{
		Title: "Price drop: Sword", ItemName: "Sword", OldPrice: &oldPrice, NewPrice: &newPrice,
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, "Sword", msg.Data.ItemName)
	assert.Equal(t, 80.0, *msg.Data.NewPrice)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"https://allowed.example"}, zap.NewNop().Sugar(), nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	assert.Error(t, err)
	assert.Zero(t, hub.ClientCount())
}
