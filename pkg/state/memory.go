package state

import (
	"context"
	"fmt"
	"sync"

	gametypes "github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/rollback"
)

type InMemoryStateManager struct {
	lock        sync.RWMutex
	snapshot    *Snapshot
	subscribers map[chan struct{}]struct{}
}

var _ StateManager = &InMemoryStateManager{}

func NewInMemoryStateManager() *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: &Snapshot{
			LocalHandle:    -1,
			ConfirmedFrame: rollback.NullFrame,
			GameState:      gametypes.NewGameState(),
		},
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*Snapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return copySnapshot(m.snapshot), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	m.snapshot = copySnapshot(snapshot)
	for ch := range m.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (m *InMemoryStateManager) Updates(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	m.lock.Lock()
	m.subscribers[ch] = struct{}{}
	m.lock.Unlock()

	go func() {
		<-ctx.Done()
		m.lock.Lock()
		delete(m.subscribers, ch)
		close(ch)
		m.lock.Unlock()
	}()

	return ch
}

func copySnapshot(s *Snapshot) *Snapshot {
	c := *s
	c.Players = make([]rollback.PeerStats, len(s.Players))
	copy(c.Players, s.Players)
	return &c
}
