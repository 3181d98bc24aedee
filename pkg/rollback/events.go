package rollback

import "time"

type EventType uint8

const (
	EventSynchronized EventType = iota + 1
	EventNetworkInterrupted
	EventNetworkResumed
	EventDisconnected
	EventDesyncDetected
	EventWaitRecommendation
)

func (t EventType) String() string {
	switch t {
	case EventSynchronized:
		return "Synchronized"
	case EventNetworkInterrupted:
		return "NetworkInterrupted"
	case EventNetworkResumed:
		return "NetworkResumed"
	case EventDisconnected:
		return "Disconnected"
	case EventDesyncDetected:
		return "DesyncDetected"
	case EventWaitRecommendation:
		return "WaitRecommendation"
	default:
		return "Unknown"
	}
}

// Event is a notification for the owner of a session.
type Event struct {
	Type   EventType
	Handle int
	Addr   string
	// Frame is set for desync events
	Frame          int32
	LocalChecksum  uint64
	RemoteChecksum uint64
	// DisconnectIn is set for interruption events
	DisconnectIn time.Duration
	// SkipFrames is set for wait recommendations
	SkipFrames int
}
