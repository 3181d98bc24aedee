package state

import (
	"context"
	"fmt"

	gametypes "github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/rollback"
)

// Snapshot is the latest view of a running session published for readers
// outside the game loop.
type Snapshot struct {
	SessionID      string               `json:"sessionId"`
	LocalHandle    int                  `json:"localHandle"`
	Frame          int32                `json:"frame"`
	ConfirmedFrame int32                `json:"confirmedFrame"`
	Running        bool                 `json:"running"`
	GameState      gametypes.GameState  `json:"-"`
	Players        []rollback.PeerStats `json:"peers"`
}

// StateManager provides shared access to the latest snapshot.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the latest snapshot.
	Get(ctx context.Context) (*Snapshot, error)
	// Set publishes a snapshot.
	Set(ctx context.Context, snapshot *Snapshot) error
	// Updates returns a channel that receives a value whenever a new snapshot is published.
	// The channel is closed when ctx is done.
	Updates(ctx context.Context) <-chan struct{}
}

// BoardView is the wire form of a snapshot's board.
type BoardView struct {
	SessionID       string   `json:"sessionId"`
	Frame           int32    `json:"frame"`
	CurrentPlayer   string   `json:"currentPlayer"`
	CurrentPlayerID uint8    `json:"currentPlayerId"`
	Rows            []string `json:"rows"`
	Black           int      `json:"black"`
	White           int      `json:"white"`
	Checksum        string   `json:"checksum"`
}

func NewBoardView(s *Snapshot) BoardView {
	return BoardView{
		SessionID:       s.SessionID,
		Frame:           s.Frame,
		CurrentPlayer:   s.GameState.CurrentPlayer.String(),
		CurrentPlayerID: s.GameState.CurrentPlayerID,
		Rows:            s.GameState.Board.Rows(),
		Black:           s.GameState.Board.Count(gametypes.TileStateBlack),
		White:           s.GameState.Board.Count(gametypes.TileStateWhite),
		Checksum:        fmt.Sprintf("%016x", s.GameState.Checksum()),
	}
}
