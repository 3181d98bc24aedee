package game

import (
	"context"
	"fmt"

	"github.com/cbodonnell/goban/client/input"
	"github.com/cbodonnell/goban/client/scenes"
	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/session"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	ctx context.Context
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// manager runs the rollback session.
	manager *session.Manager
	// mode is the current game mode.
	mode GameMode
	// scene is the current scene.
	scene scenes.Scene
}

type GameMode int

const (
	GameModePlay GameMode = iota
	GameModeError
)

func (m GameMode) String() string {
	switch m {
	case GameModePlay:
		return "Play"
	case GameModeError:
		return "Error"
	}
	return "Unknown"
}

type NewGameOptions struct {
	Debug   bool
	Manager *session.Manager
}

func NewGame(ctx context.Context, opts NewGameOptions) (*Game, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	g := &Game{
		ctx:     ctx,
		debug:   opts.Debug,
		manager: opts.Manager,
	}

	if err := g.loadGame(); err != nil {
		return nil, fmt.Errorf("failed to load game scene: %v", err)
	}

	return g, nil
}

func (g *Game) SetScene(scene scenes.Scene) error {
	if g.scene != nil {
		if err := g.scene.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy previous scene: %v", err)
		}
	}

	g.scene = scene
	if err := g.scene.Init(); err != nil {
		return fmt.Errorf("failed to initialize scene: %v", err)
	}

	return nil
}

func (g *Game) loadGame() error {
	gameScene, err := scenes.NewGameScene(g.ctx, g.manager)
	if err != nil {
		return fmt.Errorf("failed to create game scene: %v", err)
	}
	if err := g.SetScene(gameScene); err != nil {
		return fmt.Errorf("failed to set game scene: %v", err)
	}
	g.mode = GameModePlay
	return nil
}

func (g *Game) loadError(msg string) error {
	errorScene, err := scenes.NewErrorScene(msg)
	if err != nil {
		return fmt.Errorf("failed to create error scene: %v", err)
	}
	if err := g.SetScene(errorScene); err != nil {
		return fmt.Errorf("failed to set error scene: %v", err)
	}
	g.mode = GameModeError
	return nil
}

func (g *Game) Update() error {
	if input.IsNegativeJustPressed() || g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if err := g.scene.Update(); err != nil {
		if g.mode != GameModePlay {
			return fmt.Errorf("failed to update scene: %v", err)
		}
		log.Error("Session failed: %v", err)
		if err := g.loadError("Session error"); err != nil {
			return fmt.Errorf("failed to load error scene: %v", err)
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	snapshot := g.manager.Snapshot()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n   Confirmed: %d", snapshot.ConfirmedFrame))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n   Checksum: %016x", snapshot.GameState.Checksum()))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return constants.ScreenWidth, constants.ScreenHeight
}
