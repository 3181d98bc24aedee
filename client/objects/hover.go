package objects

import (
	"github.com/cbodonnell/goban/pkg/game"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
)

// HoverObject previews the stone of the player on turn on the empty tile
// the cursor would select.
type HoverObject struct {
	*BaseObject

	locator  *game.TileLocator
	stateFn  func() types.GameState
	cursorFn func() (int, int)

	index int
	stone types.TileState
}

var _ GameObject = &HoverObject{}

func NewHoverObject(id string, stateFn func() types.GameState, cursorFn func() (int, int)) *HoverObject {
	return &HoverObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOptions{ZIndex: 1}),
		locator:    game.NewTileLocator(),
		stateFn:    stateFn,
		cursorFn:   cursorFn,
		index:      -1,
	}
}

func (o *HoverObject) Update() error {
	o.index = -1
	x, y := o.cursorFn()
	index, ok := o.locator.TileAt(float64(x), float64(y))
	if !ok {
		return nil
	}
	state := o.stateFn()
	if state.Board[index].State != types.TileStateEmpty {
		return nil
	}
	o.index = index
	o.stone = state.CurrentPlayer
	return nil
}

func (o *HoverObject) Draw(screen *ebiten.Image) {
	if o.index < 0 {
		return
	}
	x, y := types.TileCenter(o.index)
	drawStone(screen, float32(x), float32(y), o.stone, 96)
}
