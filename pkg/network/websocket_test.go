package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/goban/pkg/state"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoardServer(t *testing.T, boards ...interface{}) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		for _, b := range boards {
			if s, ok := b.(string); ok {
				assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(s)))
				continue
			}
			assert.NoError(t, conn.WriteJSON(b))
		}
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
}

func TestWSBoardClient(t *testing.T) {
	server := newBoardServer(t,
		state.BoardView{Frame: 1, Rows: []string{"W........"}},
		"not json",
		state.BoardView{Frame: 2, Rows: []string{"WB......."}},
	)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boards := make(chan state.BoardView, 4)
	client := NewWSBoardClient("ws"+strings.TrimPrefix(server.URL, "http"), boards)
	require.NoError(t, client.Connect(ctx))

	err := client.HandleMessages(ctx)
	assert.Error(t, err, "the server closed the stream")

	require.Len(t, boards, 2, "malformed boards are skipped")
	assert.Equal(t, int32(1), (<-boards).Frame)
	assert.Equal(t, "WB.......", (<-boards).Rows[0])
}

func TestWSBoardClient_connectError(t *testing.T) {
	client := NewWSBoardClient("ws://127.0.0.1:1/ws", make(chan state.BoardView))
	assert.Error(t, client.Connect(context.Background()))
}
