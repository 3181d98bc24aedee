package scenes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cbodonnell/goban/client/input"
	"github.com/cbodonnell/goban/client/objects"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/session"
	"github.com/cbodonnell/goban/pkg/state"
)

// GameScene shows the board of a running session and feeds it the local pointer.
type GameScene struct {
	*BaseScene

	ctx      context.Context
	manager  *session.Manager
	snapshot *state.Snapshot
}

var _ Scene = &GameScene{}

func NewGameScene(ctx context.Context, manager *session.Manager) (Scene, error) {
	root := objects.NewSortedZIndexObject("game-root")
	s := &GameScene{
		BaseScene: NewBaseScene(root),
		ctx:       ctx,
		manager:   manager,
		snapshot:  manager.Snapshot(),
	}

	if err := root.AddChild("board", objects.NewBoardObject("board", s.gameState)); err != nil {
		return nil, fmt.Errorf("failed to add board: %v", err)
	}
	if manager.Session().LocalHandle() >= 0 {
		if err := root.AddChild("hover", objects.NewHoverObject("hover", s.gameState, input.CursorPosition)); err != nil {
			return nil, fmt.Errorf("failed to add hover: %v", err)
		}
	}
	if err := root.AddChild("hud", objects.NewHUDObject("hud", s.status)); err != nil {
		return nil, fmt.Errorf("failed to add hud: %v", err)
	}
	if err := root.AddChild("overlay", objects.NewDynamicTextOverlayObject("overlay", s.overlay)); err != nil {
		return nil, fmt.Errorf("failed to add overlay: %v", err)
	}
	return s, nil
}

func (s *GameScene) Update() error {
	if s.manager.Session().LocalHandle() >= 0 {
		s.manager.Session().SetLocalPointer(input.Pointer())
	}

	if err := s.manager.Tick(s.ctx); err != nil {
		return fmt.Errorf("failed to tick session: %v", err)
	}
	s.snapshot = s.manager.Snapshot()

	if err := s.BaseScene.Update(); err != nil {
		return fmt.Errorf("failed to update base scene: %v", err)
	}
	return nil
}

func (s *GameScene) gameState() types.GameState {
	return s.snapshot.GameState
}

func (s *GameScene) status() string {
	gs := s.snapshot.GameState
	parts := []string{
		fmt.Sprintf("%s to play", capitalize(gs.CurrentPlayer.String())),
		fmt.Sprintf("B %d W %d", gs.Board.Count(types.TileStateBlack), gs.Board.Count(types.TileStateWhite)),
		fmt.Sprintf("frame %d", s.snapshot.Frame),
	}
	for _, p := range s.snapshot.Players {
		if p.Kind == "remote" {
			parts = append(parts, fmt.Sprintf("ping %dms", p.Ping))
		}
	}
	return strings.Join(parts, "  ")
}

func (s *GameScene) overlay() string {
	if s.manager.Disconnected() {
		return "Host disconnected"
	}
	if !s.snapshot.Running {
		return "Waiting for players"
	}
	for _, p := range s.snapshot.Players {
		if p.Kind == "remote" && p.Disconnected {
			return fmt.Sprintf("Player %d disconnected", p.Handle)
		}
	}
	for _, p := range s.snapshot.Players {
		if p.Kind == "remote" && p.Interrupted {
			return "Connection interrupted\nreconnecting"
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
