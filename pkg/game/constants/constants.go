package constants

const (
	// BoardSize is the number of rows and columns on the board
	BoardSize = 9
	// TileCount is the number of tiles on the board
	TileCount = BoardSize * BoardSize

	// TileSize is the width and height of a tile in pixels
	TileSize float64 = 32.0
	// BoardOffset is the pixel position of the center of the first tile on both axes
	BoardOffset float64 = 32.0
	// SnapDistance is the distance from a tile center within which a click selects that tile.
	// The comparison is strict.
	SnapDistance float64 = 16.0

	// ScreenWidth of the window
	ScreenWidth = 320
	// ScreenHeight of the window
	ScreenHeight = 320

	// FPS is the fixed simulation rate
	FPS = 60
	// InputSize is the size of an encoded input in bytes
	InputSize = 4
	// DefaultFrameDelay is the local input delay in frames
	DefaultFrameDelay = 2
	// NumPlayers is the number of players in a game
	NumPlayers = 2
)
