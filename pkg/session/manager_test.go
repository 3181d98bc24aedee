package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/cbodonnell/goban/pkg/rollback"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriver struct {
	game    rollback.Game
	running bool
	frame   int32
	err     error
	events  []rollback.Event
	inputs  []messages.EncodedInput
	peers   []rollback.PeerStats
	steps   int
}

func (d *fakeDriver) AddLocalInput(handle int, in messages.EncodedInput) error {
	d.inputs = append(d.inputs, in)
	return nil
}

func (d *fakeDriver) AdvanceFrame() error {
	d.steps++
	if d.err != nil {
		return d.err
	}
	var in messages.EncodedInput
	if len(d.inputs) > 0 {
		in = d.inputs[len(d.inputs)-1]
	}
	d.game.AdvanceFrame(d.frame, []rollback.GameInput{{Handle: 0, Input: in}})
	d.frame++
	return nil
}

func (d *fakeDriver) Events() []rollback.Event {
	events := d.events
	d.events = nil
	return events
}

func (d *fakeDriver) Running() bool               { return d.running }
func (d *fakeDriver) CurrentFrame() int32         { return d.frame }
func (d *fakeDriver) Peers() []rollback.PeerStats { return d.peers }

func TestNewManager_validation(t *testing.T) {
	_, err := NewManager(NewManagerOptions{Driver: &fakeDriver{}})
	assert.Error(t, err)
	_, err = NewManager(NewManagerOptions{Session: NewSession(NewSessionOptions{})})
	assert.Error(t, err)
}

func TestManager_Tick(t *testing.T) {
	s := NewSession(NewSessionOptions{LocalHandle: 0})
	d := &fakeDriver{game: s, running: true, peers: []rollback.PeerStats{{Handle: 1, Ping: 20}}}
	sm := state.NewInMemoryStateManager()
	m, err := NewManager(NewManagerOptions{ID: "match-1", Session: s, Driver: d, StateManager: sm})
	require.NoError(t, err)

	ctx := context.Background()
	s.SetLocalPointer(messages.PointerState{X: 32, Y: 32, Clicked: true})
	require.NoError(t, m.Tick(ctx))

	assert.Equal(t, []messages.EncodedInput{click(32, 32)}, d.inputs)
	assert.Equal(t, 1, s.MovesApplied())

	snapshot, err := sm.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "match-1", snapshot.SessionID)
	assert.Equal(t, int32(1), snapshot.Frame)
	assert.Equal(t, "W........", snapshot.GameState.Board.Rows()[0])
	assert.Equal(t, d.peers, snapshot.Players)
}

func TestManager_Tick_notRunning(t *testing.T) {
	s := NewSession(NewSessionOptions{LocalHandle: 0})
	d := &fakeDriver{game: s, err: rollback.ErrNotSynchronized}
	m, err := NewManager(NewManagerOptions{Session: s, Driver: d})
	require.NoError(t, err)

	s.SetLocalPointer(messages.PointerState{X: 32, Y: 32, Clicked: true})
	require.NoError(t, m.Tick(context.Background()))
	assert.Empty(t, d.inputs, "no input is added before the session runs")
	assert.Equal(t, click(32, 32), s.CollectLocalInput(), "the click waits for the session")
}

func TestManager_Tick_errors(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		wantErr          bool
		wantDisconnected bool
	}{
		{name: "prediction threshold", err: rollback.ErrPredictionThreshold},
		{name: "host disconnected", err: rollback.ErrHostDisconnected, wantDisconnected: true},
		{name: "unexpected", err: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(NewSessionOptions{LocalHandle: -1})
			m, err := NewManager(NewManagerOptions{Session: s, Driver: &fakeDriver{game: s, running: true, err: tt.err}})
			require.NoError(t, err)

			err = m.Tick(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantDisconnected, m.Disconnected())
		})
	}
}

func TestManager_events(t *testing.T) {
	s := NewSession(NewSessionOptions{LocalHandle: 0})
	d := &fakeDriver{game: s, running: true}
	desyncs := make(chan *models.DesyncReport, 1)
	var seen []rollback.EventType
	m, err := NewManager(NewManagerOptions{
		ID:         "match-1",
		Session:    s,
		Driver:     d,
		DesyncChan: desyncs,
		OnEvent:    func(e rollback.Event) { seen = append(seen, e.Type) },
	})
	require.NoError(t, err)

	d.events = []rollback.Event{
		{Type: rollback.EventDesyncDetected, Handle: 1, Frame: 60, LocalChecksum: 1, RemoteChecksum: 2},
		{Type: rollback.EventDesyncDetected, Handle: 1, Frame: 120, LocalChecksum: 3, RemoteChecksum: 4},
		{Type: rollback.EventWaitRecommendation, Handle: 1, SkipFrames: 2},
	}
	require.NoError(t, m.Tick(context.Background()))
	assert.Equal(t, []rollback.EventType{
		rollback.EventDesyncDetected,
		rollback.EventDesyncDetected,
		rollback.EventWaitRecommendation,
	}, seen)

	require.Len(t, desyncs, 1, "reports are dropped when the channel is full")
	report := <-desyncs
	assert.Equal(t, "match-1", report.MatchID)
	assert.Equal(t, int32(60), report.Frame)
	assert.Equal(t, uint64(2), report.RemoteChecksum)

	steps := d.steps
	require.NoError(t, m.Tick(context.Background()))
	require.NoError(t, m.Tick(context.Background()))
	assert.Equal(t, steps, d.steps, "recommended frames are skipped")
	require.NoError(t, m.Tick(context.Background()))
	assert.Equal(t, steps+1, d.steps)
}

func TestManager_Start(t *testing.T) {
	s := NewSession(NewSessionOptions{LocalHandle: -1})
	d := &fakeDriver{game: s, running: true}
	m, err := NewManager(NewManagerOptions{Session: s, Driver: d, TickInterval: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- m.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
