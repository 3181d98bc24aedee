package network

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/gorilla/websocket"
)

// WSBoardClient follows the board stream of a status API.
type WSBoardClient struct {
	serverAddr string
	boardChan  chan<- state.BoardView
	conn       *websocket.Conn
}

// NewWSBoardClient creates a client for the board stream at serverAddr,
// e.g. ws://localhost:8080/ws. Received boards are sent to boardChan.
func NewWSBoardClient(serverAddr string, boardChan chan<- state.BoardView) *WSBoardClient {
	return &WSBoardClient{
		serverAddr: serverAddr,
		boardChan:  boardChan,
	}
}

// Connect establishes a connection to the WebSocket server.
func (c *WSBoardClient) Connect(ctx context.Context) error {
	log.Info("Connecting to board stream at %s", c.serverAddr)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.serverAddr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %v", err)
	}
	c.conn = conn
	return nil
}

// HandleMessages reads boards until ctx is done or the connection closes.
func (c *WSBoardClient) HandleMessages(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()
	defer c.conn.Close()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Error("Error reading board stream from %s: %v", c.serverAddr, err)
			}
			return fmt.Errorf("board stream closed: %v", err)
		}

		if err := c.handleMessage(ctx, message); err != nil {
			log.Error("Failed to handle message: %v", err)
		}
	}
}

func (c *WSBoardClient) handleMessage(ctx context.Context, b []byte) error {
	board := state.BoardView{}
	if err := json.Unmarshal(b, &board); err != nil {
		return fmt.Errorf("failed to deserialize board: %v", err)
	}
	log.Trace("Received board for frame %d", board.Frame)

	select {
	case c.boardChan <- board:
	case <-ctx.Done():
	}
	return nil
}
