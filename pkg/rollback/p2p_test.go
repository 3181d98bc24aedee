package rollback

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeState struct {
	Frame int32
	Acc   uint64
}

// fakeGame folds every input into an accumulator.
type fakeGame struct {
	state fakeState
	// bias makes two instances disagree
	bias uint64
	// unstable games give different results when a frame is simulated twice
	unstable bool
	calls    uint64
	history  map[int32]fakeState
}

func newFakeGame() *fakeGame {
	return &fakeGame{history: make(map[int32]fakeState)}
}

func (g *fakeGame) Snapshot() (State, uint64) {
	return g.state, g.state.Acc ^ uint64(g.state.Frame)<<32
}

func (g *fakeGame) Restore(state State) {
	g.state = state.(fakeState)
}

func (g *fakeGame) AdvanceFrame(frame int32, inputs []GameInput) {
	for _, in := range inputs {
		g.state.Acc = g.state.Acc*31 + uint64(binary.BigEndian.Uint32(in.Input[:])) + uint64(in.Handle) + g.bias
	}
	if g.unstable {
		g.calls++
		g.state.Acc += g.calls
	}
	g.state.Frame = frame + 1
	g.history[frame+1] = g.state
}

// memoryNetwork delivers packets between transports on the next Receive.
type memoryNetwork struct {
	inboxes map[string][]messages.AddressedPacket
	muted   map[string]bool
}

func newMemoryNetwork() *memoryNetwork {
	return &memoryNetwork{
		inboxes: make(map[string][]messages.AddressedPacket),
		muted:   make(map[string]bool),
	}
}

func (n *memoryNetwork) transport(addr string) *memoryTransport {
	return &memoryTransport{network: n, addr: addr}
}

type memoryTransport struct {
	network *memoryNetwork
	addr    string
}

func (t *memoryTransport) Send(addr string, packet *messages.Packet) error {
	if t.network.muted[t.addr] {
		return nil
	}
	p := *packet
	p.Inputs = append([]messages.EncodedInput(nil), packet.Inputs...)
	t.network.inboxes[addr] = append(t.network.inboxes[addr], messages.AddressedPacket{Addr: t.addr, Packet: &p})
	return nil
}

func (t *memoryTransport) Receive() ([]messages.AddressedPacket, error) {
	packets := t.network.inboxes[t.addr]
	delete(t.network.inboxes, t.addr)
	return packets, nil
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

const tick = time.Second / 60

type testPeer struct {
	session *P2PSession
	game    *fakeGame
	events  []Event
}

func (p *testPeer) advance(t *testing.T, input messages.EncodedInput) {
	require.NoError(t, p.session.AddLocalInput(p.session.LocalHandle(), input))
	err := p.session.AdvanceFrame()
	if err != nil && !errors.Is(err, ErrNotSynchronized) && !errors.Is(err, ErrPredictionThreshold) {
		require.NoError(t, err)
	}
	p.events = append(p.events, p.session.Events()...)
}

func (p *testPeer) hasEvent(eventType EventType) bool {
	for _, e := range p.events {
		if e.Type == eventType {
			return true
		}
	}
	return false
}

func newTestPeers(t *testing.T, network *memoryNetwork, c *clock, frameDelay int, sparse bool, spectators ...string) (*testPeer, *testPeer) {
	newPeer := func(addr string, players []Player, spectators []string) *testPeer {
		game := newFakeGame()
		session, err := NewP2PSession(NewP2PSessionOptions{
			Game:         game,
			Transport:    network.transport(addr),
			Players:      players,
			Spectators:   spectators,
			FrameDelay:   frameDelay,
			SparseSaving: sparse,
			Now:          c.Now,
		})
		require.NoError(t, err)
		return &testPeer{session: session, game: game}
	}
	a := newPeer("a", []Player{LocalPlayer(), RemotePlayer("b")}, spectators)
	b := newPeer("b", []Player{RemotePlayer("a"), LocalPlayer()}, nil)
	return a, b
}

func synchronize(t *testing.T, c *clock, a, b *testPeer) {
	for i := 0; i < 100 && !(a.session.Running() && b.session.Running()); i++ {
		a.advance(t, messages.NoMove)
		b.advance(t, messages.NoMove)
		c.Advance(tick)
	}
	require.True(t, a.session.Running())
	require.True(t, b.session.Running())
}

func TestNewP2PSession_validation(t *testing.T) {
	network := newMemoryNetwork()
	tests := []struct {
		name    string
		players []Player
	}{
		{name: "no players", players: nil},
		{name: "no local player", players: []Player{RemotePlayer("a"), RemotePlayer("b")}},
		{name: "two local players", players: []Player{LocalPlayer(), LocalPlayer()}},
		{name: "remote without address", players: []Player{LocalPlayer(), RemotePlayer("")}},
		{name: "duplicate address", players: []Player{LocalPlayer(), RemotePlayer("b"), RemotePlayer("b")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewP2PSession(NewP2PSessionOptions{
				Game:      newFakeGame(),
				Transport: network.transport("a"),
				Players:   tt.players,
			})
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestP2PSession_AddLocalInput(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, _ := newTestPeers(t, network, c, 2, false)

	assert.ErrorIs(t, a.session.AddLocalInput(1, testMove), ErrInvalidRequest)

	require.NoError(t, a.session.AddLocalInput(0, testMove))
	require.NoError(t, a.session.AddLocalInput(0, messages.NoMove))
	assert.Equal(t, testMove, a.session.localInput, "a pending move is kept")
}

func TestP2PSession_notSynchronized(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, _ := newTestPeers(t, network, c, 2, false)

	require.NoError(t, a.session.AddLocalInput(0, messages.NoMove))
	assert.ErrorIs(t, a.session.AdvanceFrame(), ErrNotSynchronized)
	assert.Equal(t, int32(0), a.session.CurrentFrame())

	sent := network.inboxes["b"]
	require.Len(t, sent, 1)
	assert.Equal(t, messages.PacketTypeSyncRequest, sent[0].Packet.Type)
}

func TestP2PSession_localOnly(t *testing.T) {
	network := newMemoryNetwork()
	game := newFakeGame()
	session, err := NewP2PSession(NewP2PSessionOptions{
		Game:       game,
		Transport:  network.transport("a"),
		Players:    []Player{LocalPlayer()},
		FrameDelay: 2,
	})
	require.NoError(t, err)
	assert.True(t, session.Running())

	for i := 0; i < 10; i++ {
		require.NoError(t, session.AddLocalInput(0, messages.NoMove))
		require.NoError(t, session.AdvanceFrame())
	}
	assert.Equal(t, int32(10), session.CurrentFrame())
	assert.Equal(t, int32(11), session.ConfirmedFrame())
}

func TestP2PSession_rollback(t *testing.T) {
	tests := []struct {
		name       string
		frameDelay int
		sparse     bool
	}{
		{name: "no delay", frameDelay: 0},
		{name: "no delay with sparse saving", frameDelay: 0, sparse: true},
		{name: "default delay", frameDelay: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			network := newMemoryNetwork()
			c := &clock{}
			a, b := newTestPeers(t, network, c, tt.frameDelay, tt.sparse)
			synchronize(t, c, a, b)
			assert.True(t, a.hasEvent(EventSynchronized))
			assert.True(t, b.hasEvent(EventSynchronized))

			for i := 0; i < 120; i++ {
				inA, inB := messages.NoMove, messages.NoMove
				if i%17 == 3 {
					inA = testMove
				}
				if i%11 == 5 {
					inB = messages.EncodeInput(messages.PointerState{X: uint16(i), Y: 32, Clicked: true})
				}
				a.advance(t, inA)
				b.advance(t, inB)
				c.Advance(tick)
			}

			confirmed := a.session.ConfirmedFrame()
			if other := b.session.ConfirmedFrame(); other < confirmed {
				confirmed = other
			}
			require.Greater(t, confirmed, int32(100))
			for frame := int32(1); frame <= confirmed; frame++ {
				require.Equal(t, a.game.history[frame], b.game.history[frame], "frame %d", frame)
			}

			if tt.frameDelay == 0 {
				assert.Greater(t, a.session.FramesResimulated(), 0)
			}
			assert.False(t, a.hasEvent(EventDesyncDetected))
			assert.False(t, b.hasEvent(EventDesyncDetected))
		})
	}
}

func TestP2PSession_desync(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, b := newTestPeers(t, network, c, 2, false)
	b.game.bias = 1
	synchronize(t, c, a, b)

	for i := 0; i < 150; i++ {
		a.advance(t, messages.NoMove)
		b.advance(t, messages.NoMove)
		c.Advance(tick)
	}

	for _, p := range []*testPeer{a, b} {
		var desync *Event
		for i := range p.events {
			if p.events[i].Type == EventDesyncDetected {
				desync = &p.events[i]
				break
			}
		}
		require.NotNil(t, desync)
		assert.Equal(t, int32(DefaultChecksumInterval), desync.Frame)
		assert.NotEqual(t, desync.LocalChecksum, desync.RemoteChecksum)
	}
}

func TestP2PSession_disconnect(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, b := newTestPeers(t, network, c, 2, false)
	synchronize(t, c, a, b)

	network.muted["b"] = true
	for i := 0; i < 30; i++ {
		a.advance(t, messages.NoMove)
		c.Advance(100 * time.Millisecond)
	}

	assert.True(t, a.hasEvent(EventNetworkInterrupted))
	assert.True(t, a.hasEvent(EventDisconnected))
	stats := a.session.Peers()
	require.Len(t, stats, 1)
	assert.True(t, stats[0].Disconnected)

	frame := a.session.CurrentFrame()
	a.advance(t, messages.NoMove)
	assert.Equal(t, frame+1, a.session.CurrentFrame(), "keeps running without the remote player")
}

func TestP2PSession_interruptedAndResumed(t *testing.T) {
	network := newMemoryNetwork()
	c := &clock{}
	a, b := newTestPeers(t, network, c, 2, false)
	synchronize(t, c, a, b)

	network.muted["b"] = true
	for i := 0; i < 8; i++ {
		a.advance(t, messages.NoMove)
		c.Advance(100 * time.Millisecond)
	}
	network.muted["b"] = false
	for i := 0; i < 5; i++ {
		a.advance(t, messages.NoMove)
		b.advance(t, messages.NoMove)
		c.Advance(tick)
	}

	assert.True(t, a.hasEvent(EventNetworkInterrupted))
	assert.True(t, a.hasEvent(EventNetworkResumed))
	assert.False(t, a.hasEvent(EventDisconnected))
}
