package rollback

import (
	"testing"

	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncTestSession(t *testing.T) {
	tests := []struct {
		name     string
		unstable bool
		wantErr  error
	}{
		{name: "deterministic game", unstable: false},
		{name: "nondeterministic game", unstable: true, wantErr: ErrMismatchedChecksum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game := newFakeGame()
			game.unstable = tt.unstable
			session, err := NewSyncTestSession(NewSyncTestSessionOptions{
				Game:          game,
				NumPlayers:    2,
				CheckDistance: 7,
			})
			require.NoError(t, err)

			var got error
			for i := 0; i < 100 && got == nil; i++ {
				if i%5 == 0 {
					require.NoError(t, session.AddLocalInput(i%2, testMove))
				}
				got = session.AdvanceFrame()
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, got, tt.wantErr)
				return
			}
			require.NoError(t, got)
			assert.Equal(t, int32(100), session.CurrentFrame())
			assert.Equal(t, int32(100), game.state.Frame)
		})
	}
}

func TestSyncTestSession_AddLocalInput(t *testing.T) {
	session, err := NewSyncTestSession(NewSyncTestSessionOptions{Game: newFakeGame(), NumPlayers: 2, CheckDistance: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, session.AddLocalInput(2, messages.NoMove), ErrInvalidRequest)
	assert.ErrorIs(t, session.AddLocalInput(-1, messages.NoMove), ErrInvalidRequest)
	assert.NoError(t, session.AddLocalInput(1, testMove))
}

func TestNewSyncTestSession_validation(t *testing.T) {
	_, err := NewSyncTestSession(NewSyncTestSessionOptions{Game: newFakeGame(), NumPlayers: 2})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
