package rollback

import (
	"fmt"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
)

// SyncTestSession checks that a Game is deterministic. Every frame it rolls
// back CheckDistance frames, simulates them again with the same inputs and
// compares the checksums with those of the first simulation.
type SyncTestSession struct {
	game          Game
	numPlayers    int
	checkDistance int

	currentFrame int32
	states       *savedStates
	checksums    map[int32]uint64
	inputs       map[int32][]GameInput
	pending      []messages.EncodedInput
}

type NewSyncTestSessionOptions struct {
	Game       Game
	NumPlayers int
	// CheckDistance is the number of frames resimulated every frame
	CheckDistance int
}

func NewSyncTestSession(opts NewSyncTestSessionOptions) (*SyncTestSession, error) {
	if opts.Game == nil {
		return nil, fmt.Errorf("%w: game is required", ErrInvalidRequest)
	}
	if opts.NumPlayers <= 0 {
		return nil, fmt.Errorf("%w: invalid number of players %d", ErrInvalidRequest, opts.NumPlayers)
	}
	if opts.CheckDistance <= 0 {
		return nil, fmt.Errorf("%w: check distance must be positive", ErrInvalidRequest)
	}
	return &SyncTestSession{
		game:          opts.Game,
		numPlayers:    opts.NumPlayers,
		checkDistance: opts.CheckDistance,
		states:        newSavedStates(opts.CheckDistance + 2),
		checksums:     make(map[int32]uint64),
		inputs:        make(map[int32][]GameInput),
		pending:       make([]messages.EncodedInput, opts.NumPlayers),
	}, nil
}

// AddLocalInput sets the input of a player for the next frame. Every handle is local.
func (s *SyncTestSession) AddLocalInput(handle int, input messages.EncodedInput) error {
	if handle < 0 || handle >= s.numPlayers {
		return fmt.Errorf("%w: invalid handle %d", ErrInvalidRequest, handle)
	}
	s.pending[handle] = input
	return nil
}

// AdvanceFrame simulates the next frame and then verifies the last CheckDistance frames.
func (s *SyncTestSession) AdvanceFrame() error {
	inputs := make([]GameInput, s.numPlayers)
	for handle, in := range s.pending {
		inputs[handle] = GameInput{Handle: handle, Input: in, Status: InputStatusConfirmed}
		s.pending[handle] = messages.NoMove
	}
	s.inputs[s.currentFrame] = inputs

	if err := s.simulate(); err != nil {
		return err
	}

	if s.currentFrame > int32(s.checkDistance) {
		end := s.currentFrame
		target := end - int32(s.checkDistance)
		cell, ok := s.states.get(target)
		if !ok {
			return fmt.Errorf("no saved state for frame %d", target)
		}
		log.Trace("Resimulating frames %d to %d", target, end)
		s.game.Restore(cell.state)
		s.currentFrame = target
		for s.currentFrame < end {
			if err := s.simulate(); err != nil {
				return err
			}
		}
	}

	delete(s.inputs, s.currentFrame-int32(s.checkDistance)-1)
	delete(s.checksums, s.currentFrame-int32(s.checkDistance)-2)
	return nil
}

// simulate saves the current frame, compares its checksum with an earlier
// simulation of the same frame and advances.
func (s *SyncTestSession) simulate() error {
	state, checksum := s.game.Snapshot()
	if previous, ok := s.checksums[s.currentFrame]; ok && previous != checksum {
		return fmt.Errorf("%w: frame %d was %x and is now %x", ErrMismatchedChecksum, s.currentFrame, previous, checksum)
	}
	s.checksums[s.currentFrame] = checksum
	s.states.save(s.currentFrame, state, checksum)

	s.game.AdvanceFrame(s.currentFrame, s.inputs[s.currentFrame])
	s.currentFrame++
	return nil
}

func (s *SyncTestSession) CurrentFrame() int32 {
	return s.currentFrame
}

func (s *SyncTestSession) NumPlayers() int {
	return s.numPlayers
}
