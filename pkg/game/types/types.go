package types

// TileState is the content of a single tile.
type TileState uint8

const (
	TileStateEmpty TileState = iota
	TileStateBlack
	TileStateWhite
)

func (s TileState) String() string {
	switch s {
	case TileStateEmpty:
		return "empty"
	case TileStateBlack:
		return "black"
	case TileStateWhite:
		return "white"
	default:
		return "unknown"
	}
}

// Rune returns the single character used to print the tile.
func (s TileState) Rune() rune {
	switch s {
	case TileStateBlack:
		return 'B'
	case TileStateWhite:
		return 'W'
	default:
		return '.'
	}
}

// Opponent returns the other stone color. Empty has no opponent and is returned unchanged.
func (s TileState) Opponent() TileState {
	switch s {
	case TileStateBlack:
		return TileStateWhite
	case TileStateWhite:
		return TileStateBlack
	default:
		return s
	}
}

// Tile is a single board position.
// IsAlive is scratch space for capture resolution and has no meaning between passes.
type Tile struct {
	State   TileState `json:"state"`
	IsAlive bool      `json:"-"`
}
