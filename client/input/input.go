package input

import (
	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// IsPositiveJustPressed returns a boolean value indicating whether the generic positive input is just pressed.
// This is used to handle both mouse and touch inputs.
func IsPositiveJustPressed() bool {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	return len(inpututil.AppendJustPressedTouchIDs(nil)) > 0
}

// IsNegativeJustPressed returns a boolean value indicating whether the generic negative input is just pressed.
func IsNegativeJustPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}

// CursorPosition returns the cursor position, or the position of the most
// recent touch when there is one.
func CursorPosition() (int, int) {
	touchIDs := inpututil.AppendJustPressedTouchIDs(nil)
	if len(touchIDs) > 0 {
		return ebiten.TouchPosition(touchIDs[len(touchIDs)-1])
	}
	return ebiten.CursorPosition()
}

// Pointer samples the pointer for the current tick.
func Pointer() messages.PointerState {
	x, y := CursorPosition()
	return messages.NewPointerState(x, y, IsPositiveJustPressed())
}
