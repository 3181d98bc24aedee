package types

import (
	"fmt"
	"strings"

	"github.com/cbodonnell/goban/pkg/game/constants"
)

// Board is the 9x9 grid in row-major order: index = row*9 + col.
// It is an array so that assigning a Board copies every tile.
type Board [constants.TileCount]Tile

// IndexOf returns the tile index of the given row and column.
func IndexOf(row, col int) int {
	return row*constants.BoardSize + col
}

// RowCol returns the row and column of the given tile index.
func RowCol(index int) (row, col int) {
	return index / constants.BoardSize, index % constants.BoardSize
}

// InBounds reports whether index addresses a tile.
func InBounds(index int) bool {
	return index >= 0 && index < constants.TileCount
}

// TileCenter returns the pixel position of the center of the tile at index.
func TileCenter(index int) (x, y float64) {
	row, col := RowCol(index)
	return float64(col)*constants.TileSize + constants.BoardOffset, float64(row)*constants.TileSize + constants.BoardOffset
}

// Neighbors returns the orthogonal neighbors of index in the order up, down, left, right.
// Left and right never wrap onto another row. It panics if index is out of range.
func Neighbors(index int) []int {
	return AppendNeighbors(make([]int, 0, 4), index)
}

// AppendNeighbors appends the neighbors of index to dst and returns the extended slice.
func AppendNeighbors(dst []int, index int) []int {
	if !InBounds(index) {
		panic(fmt.Sprintf("tile index %d out of range", index))
	}
	row := index / constants.BoardSize
	if up := index - constants.BoardSize; InBounds(up) {
		dst = append(dst, up)
	}
	if down := index + constants.BoardSize; InBounds(down) {
		dst = append(dst, down)
	}
	if left := index - 1; InBounds(left) && left/constants.BoardSize == row {
		dst = append(dst, left)
	}
	if right := index + 1; InBounds(right) && right/constants.BoardSize == row {
		dst = append(dst, right)
	}
	return dst
}

// ResetLiveness clears IsAlive on every tile.
func (b *Board) ResetLiveness() {
	for i := range b {
		b[i].IsAlive = false
	}
}

// Count returns the number of tiles in the given state.
func (b *Board) Count(state TileState) int {
	n := 0
	for i := range b {
		if b[i].State == state {
			n++
		}
	}
	return n
}

// Rows returns the board as one string per row, using '.', 'B' and 'W'.
func (b *Board) Rows() []string {
	rows := make([]string, 0, constants.BoardSize)
	var sb strings.Builder
	for row := 0; row < constants.BoardSize; row++ {
		sb.Reset()
		for col := 0; col < constants.BoardSize; col++ {
			sb.WriteRune(b[IndexOf(row, col)].State.Rune())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

// ParseBoard builds a board from rows of '.', 'B' and 'W'. Whitespace is ignored.
func ParseBoard(rows ...string) (Board, error) {
	var b Board
	cells := make([]rune, 0, constants.TileCount)
	for _, row := range rows {
		for _, r := range row {
			switch r {
			case ' ', '\t', '\n':
				continue
			}
			cells = append(cells, r)
		}
	}
	if len(cells) != constants.TileCount {
		return b, fmt.Errorf("expected %d tiles, got %d", constants.TileCount, len(cells))
	}
	for i, r := range cells {
		switch r {
		case '.':
			b[i].State = TileStateEmpty
		case 'B':
			b[i].State = TileStateBlack
		case 'W':
			b[i].State = TileStateWhite
		default:
			return b, fmt.Errorf("invalid tile %q at index %d", r, i)
		}
	}
	return b, nil
}
