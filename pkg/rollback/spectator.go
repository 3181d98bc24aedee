package rollback

import (
	"fmt"
	"time"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
)

// SpectatorSession replays the confirmed inputs relayed by a host peer.
// It never predicts, so it never rolls back.
type SpectatorSession struct {
	game      Game
	transport Transport
	now       func() time.Time

	host       *peer
	numPlayers int
	queues     []*InputQueue

	maxFramesBehind   int
	catchupSpeed      int
	disconnectTimeout time.Duration
	notifyTimeout     time.Duration

	running      bool
	currentFrame int32
	events       []Event
}

type NewSpectatorSessionOptions struct {
	Game      Game
	Transport Transport
	// Host is the address of the peer relaying inputs
	Host       string
	NumPlayers int
	// MaxFramesBehind is how far the spectator may lag before it simulates extra frames per tick
	MaxFramesBehind int
	// CatchupSpeed is the number of extra frames simulated per tick while catching up
	CatchupSpeed          int
	DisconnectTimeout     time.Duration
	DisconnectNotifyStart time.Duration
	Now                   func() time.Time
}

func NewSpectatorSession(opts NewSpectatorSessionOptions) (*SpectatorSession, error) {
	if opts.Game == nil {
		return nil, fmt.Errorf("%w: game is required", ErrInvalidRequest)
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidRequest)
	}
	if opts.Host == "" {
		return nil, fmt.Errorf("%w: host address is required", ErrInvalidRequest)
	}
	if opts.NumPlayers <= 0 || opts.NumPlayers > 0xFF {
		return nil, fmt.Errorf("%w: invalid number of players %d", ErrInvalidRequest, opts.NumPlayers)
	}
	if opts.MaxFramesBehind <= 0 {
		opts.MaxFramesBehind = DefaultMaxFramesBehind
	}
	if opts.CatchupSpeed <= 0 {
		opts.CatchupSpeed = DefaultCatchupSpeed
	}
	if opts.DisconnectTimeout <= 0 {
		opts.DisconnectTimeout = DefaultDisconnectTimeout
	}
	if opts.DisconnectNotifyStart <= 0 {
		opts.DisconnectNotifyStart = DefaultDisconnectNotifyStart
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	queues := make([]*InputQueue, opts.NumPlayers)
	for i := range queues {
		queues[i] = NewInputQueue()
	}

	return &SpectatorSession{
		game:              opts.Game,
		transport:         opts.Transport,
		now:               opts.Now,
		host:              newPeer(0, PlayerKindRemote, opts.Host),
		numPlayers:        opts.NumPlayers,
		queues:            queues,
		maxFramesBehind:   opts.MaxFramesBehind,
		catchupSpeed:      opts.CatchupSpeed,
		disconnectTimeout: opts.DisconnectTimeout,
		notifyTimeout:     opts.DisconnectNotifyStart,
	}, nil
}

// AdvanceFrame simulates the next frame once its inputs have been received,
// and a few more when the spectator has fallen behind the host.
func (s *SpectatorSession) AdvanceFrame() error {
	now := s.now()
	s.poll(now)

	if s.host.disconnected {
		return ErrHostDisconnected
	}
	if !s.running {
		return ErrNotSynchronized
	}

	frames := 1
	if s.FramesBehind() > s.maxFramesBehind {
		frames += s.catchupSpeed
	}

	for i := 0; i < frames; i++ {
		inputs, ok := s.confirmedInputs(s.currentFrame)
		if !ok {
			if i == 0 {
				return ErrPredictionThreshold
			}
			break
		}
		s.game.AdvanceFrame(s.currentFrame, inputs)
		s.currentFrame++
	}

	if oldest := s.currentFrame - inputHistoryFrames; oldest > 0 {
		for _, q := range s.queues {
			q.DiscardBefore(oldest)
		}
	}
	return nil
}

func (s *SpectatorSession) confirmedInputs(frame int32) ([]GameInput, bool) {
	inputs := make([]GameInput, s.numPlayers)
	for handle, q := range s.queues {
		in, ok := q.ConfirmedInput(frame)
		if !ok {
			return nil, false
		}
		inputs[handle] = GameInput{Handle: handle, Input: in, Status: InputStatusConfirmed}
	}
	return inputs, true
}

func (s *SpectatorSession) poll(now time.Time) {
	packets, err := s.transport.Receive()
	if err != nil {
		log.Error("Failed to receive packets: %v", err)
	}

	for _, ap := range packets {
		if ap.Addr != s.host.addr || s.host.disconnected {
			continue
		}
		s.host.lastRecv = now
		if s.host.interrupted {
			s.host.interrupted = false
			log.Info("Connection to host resumed")
			s.emit(Event{Type: EventNetworkResumed, Addr: s.host.addr})
		}
		s.handlePacket(ap.Packet)
	}

	if s.host.disconnected {
		return
	}
	if s.host.synchronized {
		s.send(&messages.Packet{
			Type:     messages.PacketTypeInputAck,
			AckFrame: s.lastReceivedFrame(),
		})
	}
	if s.running {
		s.checkTimeout(now)
	}
}

func (s *SpectatorSession) handlePacket(packet *messages.Packet) {
	switch packet.Type {
	case messages.PacketTypeSyncRequest:
		s.send(&messages.Packet{
			Type:      messages.PacketTypeSyncReply,
			Timestamp: packet.Timestamp,
		})
		s.host.synchronized = true
	case messages.PacketTypeQualityReport:
		s.send(&messages.Packet{
			Type:      messages.PacketTypeQualityReply,
			Frame:     s.currentFrame,
			Timestamp: packet.Timestamp,
		})
	case messages.PacketTypeSpectatorInput:
		if int(packet.Players) != s.numPlayers {
			log.Warn("Host sent inputs for %d players, expected %d", packet.Players, s.numPlayers)
			return
		}
		s.host.synchronized = true
		for i := 0; i+s.numPlayers <= len(packet.Inputs); i += s.numPlayers {
			frame := packet.Frame + int32(i/s.numPlayers)
			for handle, q := range s.queues {
				q.AddInput(frame, packet.Inputs[i+handle])
			}
		}
		if !s.running && s.lastReceivedFrame() >= 0 {
			s.running = true
			log.Info("Spectating %d players from %s", s.numPlayers, s.host.addr)
			s.emit(Event{Type: EventSynchronized, Addr: s.host.addr})
		}
	case messages.PacketTypeQualityReply, messages.PacketTypeInputAck, messages.PacketTypeChecksumReport:
	default:
		log.Debug("Ignoring unexpected %s packet from host", packet.Type)
	}
}

func (s *SpectatorSession) checkTimeout(now time.Time) {
	silent := now.Sub(s.host.lastRecv)
	switch {
	case silent >= s.disconnectTimeout:
		s.host.disconnected = true
		log.Warn("Disconnected from host after %s of silence", silent)
		s.emit(Event{Type: EventDisconnected, Addr: s.host.addr})
	case silent >= s.notifyTimeout && !s.host.interrupted:
		s.host.interrupted = true
		log.Warn("Connection to host interrupted")
		s.emit(Event{Type: EventNetworkInterrupted, Addr: s.host.addr, DisconnectIn: s.disconnectTimeout - silent})
	}
}

func (s *SpectatorSession) send(packet *messages.Packet) {
	if err := s.transport.Send(s.host.addr, packet); err != nil {
		log.Error("Failed to send %s packet to host: %v", packet.Type, err)
	}
}

func (s *SpectatorSession) lastReceivedFrame() int32 {
	last := s.queues[0].LastConfirmedFrame()
	for _, q := range s.queues[1:] {
		if f := q.LastConfirmedFrame(); f < last {
			last = f
		}
	}
	return last
}

func (s *SpectatorSession) emit(e Event) {
	s.events = append(s.events, e)
}

// Events drains the pending events.
func (s *SpectatorSession) Events() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *SpectatorSession) Running() bool {
	return s.running
}

func (s *SpectatorSession) CurrentFrame() int32 {
	return s.currentFrame
}

// FramesBehind is the number of received frames not simulated yet.
func (s *SpectatorSession) FramesBehind() int {
	return int(s.lastReceivedFrame() + 1 - s.currentFrame)
}

func (s *SpectatorSession) NumPlayers() int {
	return s.numPlayers
}
