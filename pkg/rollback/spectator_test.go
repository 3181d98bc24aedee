package rollback

import (
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSpectator(t *testing.T, network *memoryNetwork, c *clock) (*SpectatorSession, *fakeGame) {
	game := newFakeGame()
	session, err := NewSpectatorSession(NewSpectatorSessionOptions{
		Game:       game,
		Transport:  network.transport("s"),
		Host:       "a",
		NumPlayers: 2,
		Now:        c.Now,
	})
	require.NoError(t, err)
	return session, game
}

func spectatorInputs(frames int) []messages.EncodedInput {
	inputs := make([]messages.EncodedInput, 0, frames*2)
	for i := 0; i < frames; i++ {
		inputs = append(inputs, messages.NoMove, testMove)
	}
	return inputs
}

func TestNewSpectatorSession_validation(t *testing.T) {
	network := newMemoryNetwork()
	tests := []struct {
		name string
		opts NewSpectatorSessionOptions
	}{
		{name: "no game", opts: NewSpectatorSessionOptions{Transport: network.transport("s"), Host: "a", NumPlayers: 2}},
		{name: "no host", opts: NewSpectatorSessionOptions{Game: newFakeGame(), Transport: network.transport("s"), NumPlayers: 2}},
		{name: "no players", opts: NewSpectatorSessionOptions{Game: newFakeGame(), Transport: network.transport("s"), Host: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpectatorSession(tt.opts)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestSpectatorSession_AdvanceFrame(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	session, game := newTestSpectator(t, network, c)

	assert.ErrorIs(t, session.AdvanceFrame(), ErrNotSynchronized)

	host := network.transport("a")
	require.NoError(t, host.Send("s", &messages.Packet{Type: messages.PacketTypeSyncRequest, Timestamp: 42}))
	assert.ErrorIs(t, session.AdvanceFrame(), ErrNotSynchronized)

	replies, err := host.Receive()
	require.NoError(t, err)
	require.NotEmpty(t, replies)
	assert.Equal(t, messages.PacketTypeSyncReply, replies[0].Packet.Type)
	assert.Equal(t, int64(42), replies[0].Packet.Timestamp)

	require.NoError(t, host.Send("s", &messages.Packet{
		Type:    messages.PacketTypeSpectatorInput,
		Frame:   0,
		Players: 2,
		Inputs:  spectatorInputs(3),
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, session.AdvanceFrame())
	}
	assert.Equal(t, int32(3), session.CurrentFrame())
	assert.Equal(t, int32(3), game.state.Frame)
	assert.ErrorIs(t, session.AdvanceFrame(), ErrPredictionThreshold)

	acks, err := host.Receive()
	require.NoError(t, err)
	require.NotEmpty(t, acks)
	last := acks[len(acks)-1].Packet
	assert.Equal(t, messages.PacketTypeInputAck, last.Type)
	assert.Equal(t, int32(2), last.AckFrame)

	events := session.Events()
	require.Len(t, events, 1)
	assert.Equal(t, EventSynchronized, events[0].Type)
}

func TestSpectatorSession_catchup(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	session, _ := newTestSpectator(t, network, c)

	host := network.transport("a")
	require.NoError(t, host.Send("s", &messages.Packet{
		Type:    messages.PacketTypeSpectatorInput,
		Frame:   0,
		Players: 2,
		Inputs:  spectatorInputs(20),
	}))

	require.NoError(t, session.AdvanceFrame())
	assert.Equal(t, int32(1+DefaultCatchupSpeed), session.CurrentFrame())
	assert.Equal(t, 20-1-DefaultCatchupSpeed, session.FramesBehind())
}

func TestSpectatorSession_hostDisconnected(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	session, _ := newTestSpectator(t, network, c)

	host := network.transport("a")
	require.NoError(t, host.Send("s", &messages.Packet{
		Type:    messages.PacketTypeSpectatorInput,
		Players: 2,
		Inputs:  spectatorInputs(1),
	}))
	require.NoError(t, session.AdvanceFrame())

	c.Advance(time.Second)
	assert.ErrorIs(t, session.AdvanceFrame(), ErrPredictionThreshold)
	c.Advance(2 * time.Second)
	assert.ErrorIs(t, session.AdvanceFrame(), ErrHostDisconnected)

	var types []EventType
	for _, e := range session.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{EventSynchronized, EventNetworkInterrupted, EventDisconnected}, types)
}

func TestSpectatorSession_followsHost(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, b := newTestPeers(t, network, c, 2, false, "s")
	spectator, game := newTestSpectator(t, network, c)

	for i := 0; i < 200; i++ {
		inA := messages.NoMove
		if i%13 == 0 {
			inA = testMove
		}
		a.advance(t, inA)
		b.advance(t, messages.NoMove)
		if err := spectator.AdvanceFrame(); err != nil {
			require.True(t, errors.Is(err, ErrNotSynchronized) || errors.Is(err, ErrPredictionThreshold), err)
		}
		c.Advance(tick)
	}

	require.True(t, spectator.Running())
	require.Greater(t, spectator.CurrentFrame(), int32(100))
	assert.Equal(t, a.game.history[game.state.Frame], game.state)
}
