package session

import (
	"fmt"
	"sort"

	"github.com/cbodonnell/goban/pkg/game"
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/cbodonnell/goban/pkg/rollback"
)

// Session is the game as seen by one participant: the authoritative board,
// the local player and its sampled pointer. It is driven by a rollback
// session and is not safe for concurrent use.
type Session struct {
	localHandle  int
	enforceTurns bool

	state   types.GameState
	locator *game.TileLocator
	pointer messages.PointerState

	movesApplied int
}

type NewSessionOptions struct {
	// LocalHandle is the handle of the local player, or -1 for a spectator
	LocalHandle int
	// EnforceTurns ignores moves from the player who is not on turn
	EnforceTurns bool
}

func NewSession(opts NewSessionOptions) *Session {
	return &Session{
		localHandle:  opts.LocalHandle,
		enforceTurns: opts.EnforceTurns,
		state:        types.NewGameState(),
		locator:      game.NewTileLocator(),
	}
}

func (s *Session) LocalHandle() int {
	return s.localHandle
}

// SetLocalPointer records the pointer for the current tick. A click stays
// pending until it is collected.
func (s *Session) SetLocalPointer(p messages.PointerState) {
	clicked := s.pointer.Clicked || p.Clicked
	s.pointer = p
	s.pointer.Clicked = clicked
}

// CollectLocalInput encodes the local pointer and consumes its click.
func (s *Session) CollectLocalInput() messages.EncodedInput {
	in := messages.EncodeInput(s.pointer)
	s.pointer.Clicked = false
	return in
}

// OnFrameConfirmed applies the inputs of one frame in ascending handle order.
func (s *Session) OnFrameConfirmed(frame int32, inputs map[int]messages.EncodedInput) {
	handles := make([]int, 0, len(inputs))
	for handle := range inputs {
		handles = append(handles, handle)
	}
	sort.Ints(handles)

	for _, handle := range handles {
		s.applyInput(frame, handle, inputs[handle])
	}
}

func (s *Session) applyInput(frame int32, handle int, in messages.EncodedInput) {
	x, y, ok := messages.DecodeInput(in)
	if !ok {
		return
	}
	if s.enforceTurns && handle != int(s.state.CurrentPlayerID) {
		log.Trace("Frame %d: ignoring move from player %d out of turn", frame, handle)
		return
	}
	index, ok := s.locator.TileAt(float64(x), float64(y))
	if !ok {
		log.Trace("Frame %d: no tile near (%d, %d) from player %d", frame, x, y, handle)
		return
	}
	if game.ApplyMove(&s.state, index) {
		s.movesApplied++
		log.Trace("Frame %d: player %d placed at %d", frame, handle, index)
	}
}

// Snapshot returns a copy of the game state and its checksum.
func (s *Session) Snapshot() (rollback.State, uint64) {
	return s.state.Copy(), s.state.Checksum()
}

// Restore replaces the game state with a snapshot taken by Snapshot.
func (s *Session) Restore(state rollback.State) {
	gs, ok := state.(types.GameState)
	if !ok {
		panic(fmt.Sprintf("unexpected snapshot type %T", state))
	}
	s.state = gs
}

// AdvanceFrame applies the inputs of a simulated frame.
func (s *Session) AdvanceFrame(frame int32, inputs []rollback.GameInput) {
	byHandle := make(map[int]messages.EncodedInput, len(inputs))
	for _, in := range inputs {
		byHandle[in.Handle] = in.Input
	}
	s.OnFrameConfirmed(frame, byHandle)
}

// State returns a copy of the current game state.
func (s *Session) State() types.GameState {
	return s.state.Copy()
}

// MovesApplied counts accepted moves, including those simulated again after a rollback.
func (s *Session) MovesApplied() int {
	return s.movesApplied
}
