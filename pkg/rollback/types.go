package rollback

import (
	"errors"
	"time"

	"github.com/cbodonnell/goban/pkg/messages"
)

// NullFrame marks the absence of a frame.
const NullFrame int32 = -1

const (
	DefaultMaxPredictionFrames   = 8
	DefaultChecksumInterval      = 60
	DefaultDisconnectTimeout     = 2 * time.Second
	DefaultDisconnectNotifyStart = 500 * time.Millisecond
	DefaultMaxFramesBehind       = 10
	DefaultCatchupSpeed          = 1

	// NumSyncRoundtrips is the number of sync replies needed before a peer counts as synchronized
	NumSyncRoundtrips = 5

	syncRetryInterval     = 200 * time.Millisecond
	qualityReportInterval = time.Second
	inputHistoryFrames    = 256
	checksumHistory       = 16
)

var (
	ErrNotSynchronized     = errors.New("session is not synchronized")
	ErrPredictionThreshold = errors.New("prediction threshold reached")
	ErrMismatchedChecksum  = errors.New("mismatched checksum")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrHostDisconnected    = errors.New("host disconnected")
)

type PlayerKind uint8

const (
	PlayerKindLocal PlayerKind = iota
	PlayerKindRemote
	PlayerKindSpectator
)

func (k PlayerKind) String() string {
	switch k {
	case PlayerKindLocal:
		return "local"
	case PlayerKindRemote:
		return "remote"
	case PlayerKindSpectator:
		return "spectator"
	default:
		return "unknown"
	}
}

// Player describes a session participant. A player's handle is its index in the session's player list.
type Player struct {
	Kind PlayerKind
	Addr string
}

func LocalPlayer() Player {
	return Player{Kind: PlayerKindLocal}
}

func RemotePlayer(addr string) Player {
	return Player{Kind: PlayerKindRemote, Addr: addr}
}

type InputStatus uint8

const (
	InputStatusConfirmed InputStatus = iota
	InputStatusPredicted
	InputStatusDisconnected
)

func (s InputStatus) String() string {
	switch s {
	case InputStatusConfirmed:
		return "confirmed"
	case InputStatusPredicted:
		return "predicted"
	case InputStatusDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// GameInput is one player's input for the frame being simulated.
type GameInput struct {
	Handle int
	Input  messages.EncodedInput
	Status InputStatus
}

// State is an opaque snapshot produced by a Game.
type State interface{}

// Game is the deterministic simulation driven by a session.
type Game interface {
	// Snapshot returns a copy of the current state and its checksum.
	Snapshot() (State, uint64)
	// Restore replaces the current state with a snapshot.
	Restore(state State)
	// AdvanceFrame simulates one frame. inputs are ordered by handle.
	AdvanceFrame(frame int32, inputs []GameInput)
}

// Transport sends and receives packets without blocking.
type Transport interface {
	Send(addr string, packet *messages.Packet) error
	Receive() ([]messages.AddressedPacket, error)
}
