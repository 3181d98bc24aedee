package terminal

import (
	"testing"

	"github.com/cbodonnell/goban/pkg/game"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLines(t *testing.T) {
	gs := types.NewGameState()
	require.True(t, game.ApplyMove(&gs, types.IndexOf(0, 0)))
	require.True(t, game.ApplyMove(&gs, types.IndexOf(8, 8)))
	view := state.NewBoardView(&state.Snapshot{Frame: 42, GameState: gs})

	tests := []struct {
		name   string
		status string
		want   []string
	}{
		{
			name: "board",
			want: []string{
				"   A B C D E F G H J",
				" 9 W . . . . . . . .",
				" 8 . . . . . . . . .",
				" 7 . . . . . . . . .",
				" 6 . . . . . . . . .",
				" 5 . . . . . . . . .",
				" 4 . . . . . . . . .",
				" 3 . . . . . . . . .",
				" 2 . . . . . . . . .",
				" 1 . . . . . . . . B",
				"",
				"white to play  B 1  W 1  frame 42",
			},
		},
		{
			name:   "with status",
			status: "host disconnected",
			want: []string{
				"   A B C D E F G H J",
				" 9 W . . . . . . . .",
				" 8 . . . . . . . . .",
				" 7 . . . . . . . . .",
				" 6 . . . . . . . . .",
				" 5 . . . . . . . . .",
				" 4 . . . . . . . . .",
				" 3 . . . . . . . . .",
				" 2 . . . . . . . . .",
				" 1 . . . . . . . . B",
				"",
				"white to play  B 1  W 1  frame 42",
				"host disconnected",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lines(view, tt.status))
		})
	}
}
