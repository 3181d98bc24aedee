package game

import (
	"math"

	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/solarlune/resolv"
)

const (
	CollisionSpaceTagTile  string = "tile"
	CollisionSpaceTagProbe string = "probe"

	collisionCellSize = 16
)

// TileLocator maps pixel positions to tiles.
// It holds a collision space with one object per tile and is not safe for concurrent use.
type TileLocator struct {
	space   *resolv.Space
	probe   *resolv.Object
	indices map[*resolv.Object]int
	extent  float64
}

// NewTileLocator builds the collision space covering the board.
func NewTileLocator() *TileLocator {
	extent := int(constants.BoardOffset*2 + constants.TileSize*(constants.BoardSize-1))
	space := resolv.NewSpace(extent, extent, collisionCellSize, collisionCellSize)

	half := constants.TileSize / 2
	indices := make(map[*resolv.Object]int, constants.TileCount)
	for i := 0; i < constants.TileCount; i++ {
		x, y := types.TileCenter(i)
		obj := resolv.NewObject(x-half, y-half, constants.TileSize, constants.TileSize, CollisionSpaceTagTile)
		space.Add(obj)
		indices[obj] = i
	}

	probe := resolv.NewObject(0, 0, 1, 1, CollisionSpaceTagProbe)
	space.Add(probe)

	return &TileLocator{
		space:   space,
		probe:   probe,
		indices: indices,
		extent:  float64(extent),
	}
}

// TileAt returns the tile whose center is nearest to (x, y) and strictly closer
// than the snapping distance.
func (l *TileLocator) TileAt(x, y float64) (int, bool) {
	if x < 0 || y < 0 || x >= l.extent || y >= l.extent {
		return 0, false
	}

	l.probe.Position.X = x
	l.probe.Position.Y = y
	l.probe.Update()

	collision := l.probe.Check(0, 0, CollisionSpaceTagTile)
	if collision == nil {
		return 0, false
	}

	best, bestDistance := -1, math.Inf(1)
	for _, obj := range collision.Objects {
		index, ok := l.indices[obj]
		if !ok {
			continue
		}
		cx, cy := types.TileCenter(index)
		distance := math.Hypot(x-cx, y-cy)
		if distance < constants.SnapDistance && distance < bestDistance {
			best, bestDistance = index, distance
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
