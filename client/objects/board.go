package objects

import (
	"image/color"

	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	boardColor = color.NRGBA{R: 220, G: 179, B: 92, A: 255}
	lineColor  = color.NRGBA{R: 40, G: 30, B: 20, A: 255}
	whiteStone = color.NRGBA{R: 245, G: 245, B: 240, A: 255}
	blackStone = color.NRGBA{R: 20, G: 20, B: 20, A: 255}
)

const stoneRadius = float32(constants.TileSize/2) - 2

// BoardObject draws the grid and the stones of the state returned by StateFn.
type BoardObject struct {
	*BaseObject

	stateFn func() types.GameState
	grid    *ebiten.Image
}

var _ GameObject = &BoardObject{}

func NewBoardObject(id string, stateFn func() types.GameState) *BoardObject {
	return &BoardObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOptions{ZIndex: 0}),
		stateFn:    stateFn,
	}
}

func (o *BoardObject) Init() error {
	if o.grid != nil {
		return nil
	}
	o.grid = ebiten.NewImage(constants.ScreenWidth, constants.ScreenHeight)
	o.grid.Fill(boardColor)

	first := float32(constants.BoardOffset)
	last := float32(constants.BoardOffset + constants.TileSize*(constants.BoardSize-1))
	for i := 0; i < constants.BoardSize; i++ {
		p := first + float32(constants.TileSize)*float32(i)
		vector.StrokeLine(o.grid, first, p, last, p, 1, lineColor, false)
		vector.StrokeLine(o.grid, p, first, p, last, 1, lineColor, false)
	}
	return nil
}

func (o *BoardObject) Destroy() error {
	if o.grid != nil {
		o.grid.Deallocate()
		o.grid = nil
	}
	return nil
}

func (o *BoardObject) Draw(screen *ebiten.Image) {
	screen.DrawImage(o.grid, nil)

	state := o.stateFn()
	for i, tile := range state.Board {
		if tile.State == types.TileStateEmpty {
			continue
		}
		x, y := types.TileCenter(i)
		drawStone(screen, float32(x), float32(y), tile.State, 255)
	}
}

func drawStone(screen *ebiten.Image, x, y float32, state types.TileState, alpha uint8) {
	fill := whiteStone
	if state == types.TileStateBlack {
		fill = blackStone
	}
	fill.A = alpha
	outline := lineColor
	outline.A = alpha
	vector.DrawFilledCircle(screen, x, y, stoneRadius, fill, true)
	vector.StrokeCircle(screen, x, y, stoneRadius, 1, outline, true)
}
