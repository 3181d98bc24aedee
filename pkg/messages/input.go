package messages

import (
	"encoding/binary"

	"github.com/cbodonnell/goban/pkg/game/constants"
)

// EncodedInput is one player's input for one frame: a big-endian (x << 16) | y
// pointer position, or all zeros when no move was made.
type EncodedInput [constants.InputSize]byte

// NoMove is the zero input.
var NoMove EncodedInput

// PointerState is the local pointer sampled once per tick.
type PointerState struct {
	X       uint16
	Y       uint16
	Clicked bool
}

// NewPointerState clamps pointer coordinates to the 16-bit range of the codec.
func NewPointerState(x, y int, clicked bool) PointerState {
	return PointerState{
		X:       clamp16(x),
		Y:       clamp16(y),
		Clicked: clicked,
	}
}

func clamp16(v int) uint16 {
	if v < 0 {
		return 0
	}
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

// EncodeInput packs the pointer position when a click occurred this tick.
// A click at (0, 0) encodes to NoMove.
func EncodeInput(p PointerState) EncodedInput {
	var in EncodedInput
	if !p.Clicked {
		return in
	}
	binary.BigEndian.PutUint32(in[:], uint32(p.X)<<16|uint32(p.Y))
	return in
}

// DecodeInput unpacks a pointer position. ok is false for NoMove.
func DecodeInput(in EncodedInput) (x, y uint16, ok bool) {
	v := binary.BigEndian.Uint32(in[:])
	if v == 0 {
		return 0, 0, false
	}
	return uint16(v >> 16), uint16(v & 0xFFFF), true
}

// IsNoMove reports whether the input carries no move.
func (in EncodedInput) IsNoMove() bool {
	return in == NoMove
}

// flattenInputs concatenates inputs for the wire.
func flattenInputs(inputs []EncodedInput) []byte {
	b := make([]byte, 0, len(inputs)*constants.InputSize)
	for _, in := range inputs {
		b = append(b, in[:]...)
	}
	return b
}

// splitInputs is the inverse of flattenInputs.
func splitInputs(b []byte) ([]EncodedInput, bool) {
	if len(b)%constants.InputSize != 0 {
		return nil, false
	}
	inputs := make([]EncodedInput, len(b)/constants.InputSize)
	for i := range inputs {
		copy(inputs[i][:], b[i*constants.InputSize:])
	}
	return inputs, true
}
