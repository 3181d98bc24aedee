package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/cbodonnell/goban/pkg/repositories/models"
	"github.com/cbodonnell/goban/pkg/rollback"
	"github.com/cbodonnell/goban/pkg/state"
)

// Driver is the rollback session advancing the game, either a P2P session or
// a spectator session.
type Driver interface {
	AdvanceFrame() error
	Events() []rollback.Event
	Running() bool
	CurrentFrame() int32
}

// InputDriver is a Driver that accepts local input.
type InputDriver interface {
	Driver
	AddLocalInput(handle int, input messages.EncodedInput) error
}

type peerReporter interface {
	Peers() []rollback.PeerStats
}

type confirmedReporter interface {
	ConfirmedFrame() int32
}

// Manager runs the frame loop of one participant: it feeds the local input
// to the driver, advances it and publishes what happened.
type Manager struct {
	id           string
	session      *Session
	driver       Driver
	stateManager state.StateManager
	desyncChan   chan<- *models.DesyncReport
	onEvent      func(rollback.Event)
	tickInterval time.Duration

	skipFrames   int
	disconnected bool
}

type NewManagerOptions struct {
	// ID identifies the match in published snapshots and desync reports
	ID      string
	Session *Session
	Driver  Driver
	// StateManager is optional
	StateManager state.StateManager
	// DesyncChan is optional. Reports are dropped when it is full.
	DesyncChan chan<- *models.DesyncReport
	// OnEvent is called for every session event after the manager handled it
	OnEvent      func(rollback.Event)
	TickInterval time.Duration
}

func NewManager(opts NewManagerOptions) (*Manager, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.Driver == nil {
		return nil, fmt.Errorf("driver is required")
	}
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = time.Second / 60
	}
	return &Manager{
		id:           opts.ID,
		session:      opts.Session,
		driver:       opts.Driver,
		stateManager: opts.StateManager,
		desyncChan:   opts.DesyncChan,
		onEvent:      opts.OnEvent,
		tickInterval: tickInterval,
	}, nil
}

// Start runs Tick on a ticker until ctx is done or the session ends.
func (m *Manager) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil {
				return err
			}
			if m.disconnected {
				return nil
			}
		}
	}
}

// Tick runs one iteration of the frame loop. It only returns an error when
// the session cannot continue.
func (m *Manager) Tick(ctx context.Context) error {
	if err := m.advance(); err != nil {
		return err
	}
	m.processEvents()
	m.publish(ctx)
	return nil
}

func (m *Manager) advance() error {
	if m.skipFrames > 0 {
		m.skipFrames--
		return nil
	}

	if d, ok := m.driver.(InputDriver); ok && m.driver.Running() && m.session.LocalHandle() >= 0 {
		if err := d.AddLocalInput(m.session.LocalHandle(), m.session.CollectLocalInput()); err != nil {
			return fmt.Errorf("failed to add local input: %v", err)
		}
	}

	err := m.driver.AdvanceFrame()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rollback.ErrNotSynchronized):
		log.Trace("Waiting for peers to synchronize")
		return nil
	case errors.Is(err, rollback.ErrPredictionThreshold):
		log.Trace("Prediction threshold reached at frame %d", m.driver.CurrentFrame())
		return nil
	case errors.Is(err, rollback.ErrHostDisconnected):
		m.disconnected = true
		return nil
	default:
		return fmt.Errorf("failed to advance frame: %w", err)
	}
}

func (m *Manager) processEvents() {
	for _, e := range m.driver.Events() {
		switch e.Type {
		case rollback.EventSynchronized:
			log.Info("Synchronized with player %d at %s", e.Handle, e.Addr)
		case rollback.EventNetworkInterrupted:
			log.Warn("Connection to player %d interrupted, disconnecting in %s", e.Handle, e.DisconnectIn)
		case rollback.EventNetworkResumed:
			log.Info("Connection to player %d resumed", e.Handle)
		case rollback.EventDisconnected:
			log.Warn("Player %d at %s disconnected", e.Handle, e.Addr)
		case rollback.EventDesyncDetected:
			log.Error("Desync with player %d at frame %d: local %016x, remote %016x", e.Handle, e.Frame, e.LocalChecksum, e.RemoteChecksum)
			m.reportDesync(e)
		case rollback.EventWaitRecommendation:
			log.Debug("Skipping %d frames to let peers catch up", e.SkipFrames)
			m.skipFrames += e.SkipFrames
		}
		if m.onEvent != nil {
			m.onEvent(e)
		}
	}
}

func (m *Manager) reportDesync(e rollback.Event) {
	if m.desyncChan == nil {
		return
	}
	report := &models.DesyncReport{
		MatchID:        m.id,
		Frame:          e.Frame,
		Handle:         e.Handle,
		LocalChecksum:  e.LocalChecksum,
		RemoteChecksum: e.RemoteChecksum,
		CreatedAt:      time.Now(),
	}
	select {
	case m.desyncChan <- report:
	default:
		log.Warn("Desync report channel is full, dropping report for frame %d", e.Frame)
	}
}

func (m *Manager) publish(ctx context.Context) {
	if m.stateManager == nil {
		return
	}
	snapshot := m.Snapshot()
	if err := m.stateManager.Set(ctx, snapshot); err != nil {
		log.Error("Failed to publish snapshot: %v", err)
	}
}

// Snapshot describes the current frame for readers outside the loop.
func (m *Manager) Snapshot() *state.Snapshot {
	snapshot := &state.Snapshot{
		SessionID:      m.id,
		LocalHandle:    m.session.LocalHandle(),
		Frame:          m.driver.CurrentFrame(),
		ConfirmedFrame: m.driver.CurrentFrame(),
		Running:        m.driver.Running(),
		GameState:      m.session.State(),
	}
	if c, ok := m.driver.(confirmedReporter); ok {
		snapshot.ConfirmedFrame = c.ConfirmedFrame()
	}
	if p, ok := m.driver.(peerReporter); ok {
		snapshot.Players = p.Peers()
	}
	return snapshot
}

func (m *Manager) Session() *Session {
	return m.session
}

func (m *Manager) Running() bool {
	return m.driver.Running()
}

// Disconnected reports whether the spectated host is gone.
func (m *Manager) Disconnected() bool {
	return m.disconnected
}
