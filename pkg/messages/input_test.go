package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeInput(t *testing.T) {
	tests := []struct {
		name    string
		pointer PointerState
		want    EncodedInput
	}{
		{
			name:    "no click",
			pointer: PointerState{X: 100, Y: 200},
			want:    EncodedInput{0, 0, 0, 0},
		},
		{
			name:    "click is big endian x then y",
			pointer: PointerState{X: 0x0102, Y: 0x0304, Clicked: true},
			want:    EncodedInput{0x01, 0x02, 0x03, 0x04},
		},
		{
			name:    "click on a tile center",
			pointer: PointerState{X: 64, Y: 32, Clicked: true},
			want:    EncodedInput{0x00, 0x40, 0x00, 0x20},
		},
		{
			name:    "click at the origin is indistinguishable from no move",
			pointer: PointerState{X: 0, Y: 0, Clicked: true},
			want:    NoMove,
		},
		{
			name:    "maximum coordinates",
			pointer: PointerState{X: 0xFFFF, Y: 0xFFFF, Clicked: true},
			want:    EncodedInput{0xFF, 0xFF, 0xFF, 0xFF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeInput(tt.pointer))
		})
	}
}

func TestDecodeInput(t *testing.T) {
	x, y, ok := DecodeInput(NoMove)
	assert.False(t, ok)
	assert.Zero(t, x)
	assert.Zero(t, y)

	x, y, ok = DecodeInput(EncodedInput{0x00, 0x40, 0x00, 0x20})
	assert.True(t, ok)
	assert.Equal(t, uint16(64), x)
	assert.Equal(t, uint16(32), y)

	x, y, ok = DecodeInput(EncodedInput{0x00, 0x00, 0x00, 0x01})
	assert.True(t, ok)
	assert.Equal(t, uint16(0), x)
	assert.Equal(t, uint16(1), y)
}

func TestEncodeDecodeInverse(t *testing.T) {
	for _, p := range [][2]uint16{{1, 0}, {0, 1}, {32, 32}, {288, 288}, {65535, 1}, {12345, 54321}} {
		in := EncodeInput(PointerState{X: p[0], Y: p[1], Clicked: true})
		x, y, ok := DecodeInput(in)
		assert.True(t, ok)
		assert.Equal(t, p[0], x)
		assert.Equal(t, p[1], y)
	}
}

func TestNewPointerState(t *testing.T) {
	assert.Equal(t, PointerState{X: 0, Y: 0xFFFF, Clicked: true}, NewPointerState(-5, 70000, true))
	assert.Equal(t, PointerState{X: 10, Y: 20}, NewPointerState(10, 20, false))
}
