package rollback

import (
	"fmt"
	"time"

	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
)

// P2PSession runs a game between peers that each simulate every frame.
// Remote inputs that have not arrived yet are predicted; when they arrive and
// differ, the session restores an earlier snapshot and simulates forward again.
//
// A P2PSession is driven from a single goroutine: call AddLocalInput and then
// AdvanceFrame once per tick.
type P2PSession struct {
	game      Game
	transport Transport
	now       func() time.Time

	numPlayers  int
	localHandle int
	peers       []*peer
	peersByAddr map[string]*peer
	queues      []*InputQueue
	states      *savedStates

	frameDelay        int
	maxPrediction     int
	sparseSaving      bool
	checksumInterval  int32
	disconnectTimeout time.Duration
	notifyTimeout     time.Duration

	running        bool
	currentFrame   int32
	confirmedFrame int32
	lastSavedFrame int32

	localInput    messages.EncodedInput
	hasLocalInput bool

	pendingChecksums map[int32]uint64
	localChecksums   map[int32]uint64

	framesResimulated int
	events            []Event
}

type NewP2PSessionOptions struct {
	Game      Game
	Transport Transport
	// Players are indexed by handle and must contain exactly one local player.
	Players []Player
	// Spectators are addresses that receive confirmed inputs.
	Spectators            []string
	FrameDelay            int
	MaxPredictionFrames   int
	SparseSaving          bool
	ChecksumInterval      int
	DisconnectTimeout     time.Duration
	DisconnectNotifyStart time.Duration
	// Now defaults to time.Now
	Now func() time.Time
}

func NewP2PSession(opts NewP2PSessionOptions) (*P2PSession, error) {
	if opts.Game == nil {
		return nil, fmt.Errorf("%w: game is required", ErrInvalidRequest)
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("%w: transport is required", ErrInvalidRequest)
	}
	if len(opts.Players) == 0 || len(opts.Players) > 0xFF {
		return nil, fmt.Errorf("%w: invalid number of players %d", ErrInvalidRequest, len(opts.Players))
	}
	if opts.FrameDelay < 0 {
		return nil, fmt.Errorf("%w: negative frame delay", ErrInvalidRequest)
	}
	if opts.MaxPredictionFrames <= 0 {
		opts.MaxPredictionFrames = DefaultMaxPredictionFrames
	}
	if opts.ChecksumInterval <= 0 {
		opts.ChecksumInterval = DefaultChecksumInterval
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

	s := &P2PSession{
		game:              opts.Game,
		transport:         opts.Transport,
		now:               opts.Now,
		numPlayers:        len(opts.Players),
		localHandle:       -1,
		peersByAddr:       make(map[string]*peer),
		queues:            make([]*InputQueue, len(opts.Players)),
		states:            newSavedStates(opts.MaxPredictionFrames + 2),
		frameDelay:        opts.FrameDelay,
		maxPrediction:     opts.MaxPredictionFrames,
		sparseSaving:      opts.SparseSaving,
		checksumInterval:  int32(opts.ChecksumInterval),
		disconnectTimeout: opts.DisconnectTimeout,
		notifyTimeout:     opts.DisconnectNotifyStart,
		confirmedFrame:    NullFrame,
		lastSavedFrame:    NullFrame,
		pendingChecksums:  make(map[int32]uint64),
		localChecksums:    make(map[int32]uint64),
	}

	for handle, player := range opts.Players {
		s.queues[handle] = NewInputQueue()
		switch player.Kind {
		case PlayerKindLocal:
			if s.localHandle >= 0 {
				return nil, fmt.Errorf("%w: more than one local player", ErrInvalidRequest)
			}
			s.localHandle = handle
		case PlayerKindRemote:
			if err := s.addPeer(newPeer(handle, PlayerKindRemote, player.Addr)); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: player %d has kind %s", ErrInvalidRequest, handle, player.Kind)
		}
	}
	if s.localHandle < 0 {
		return nil, fmt.Errorf("%w: no local player", ErrInvalidRequest)
	}
	for i, addr := range opts.Spectators {
		if err := s.addPeer(newPeer(s.numPlayers+i, PlayerKindSpectator, addr)); err != nil {
			return nil, err
		}
	}

	// the first frames have no local input because of the delay
	local := s.queues[s.localHandle]
	for frame := int32(0); frame < int32(s.frameDelay); frame++ {
		local.AddInput(frame, messages.NoMove)
	}

	if len(s.peers) == 0 {
		s.running = true
	}

	return s, nil
}

func (s *P2PSession) addPeer(p *peer) error {
	if p.addr == "" {
		return fmt.Errorf("%w: %s %d has no address", ErrInvalidRequest, p.kind, p.handle)
	}
	if _, ok := s.peersByAddr[p.addr]; ok {
		return fmt.Errorf("%w: duplicate address %s", ErrInvalidRequest, p.addr)
	}
	s.peers = append(s.peers, p)
	s.peersByAddr[p.addr] = p
	return nil
}

// AddLocalInput registers the local input for the next frame.
// A pending move is not replaced by "no move", so a click made while the
// session is stalled is applied once it resumes.
func (s *P2PSession) AddLocalInput(handle int, input messages.EncodedInput) error {
	if handle != s.localHandle {
		return fmt.Errorf("%w: handle %d is not local", ErrInvalidRequest, handle)
	}
	if s.hasLocalInput && !s.localInput.IsNoMove() && input.IsNoMove() {
		return nil
	}
	s.localInput = input
	s.hasLocalInput = true
	return nil
}

// AdvanceFrame processes the network, rolls back if needed and simulates the next frame.
// It returns ErrNotSynchronized until every peer has completed the handshake and
// ErrPredictionThreshold while waiting for remote inputs. Both are transient.
func (s *P2PSession) AdvanceFrame() error {
	now := s.now()
	s.poll(now)

	if !s.running {
		s.sendSyncRequests(now)
		return ErrNotSynchronized
	}

	if first := s.firstIncorrectFrame(); first != NullFrame {
		if err := s.adjustSimulation(first); err != nil {
			return fmt.Errorf("failed to roll back to frame %d: %v", first, err)
		}
	}
	s.updateConfirmedFrame()

	if s.sparseSaving && s.currentFrame-s.lastSavedFrame >= int32(s.maxPrediction) && s.confirmedFrame+1 > s.lastSavedFrame {
		if err := s.adjustSimulation(s.lastSavedFrame); err != nil {
			return fmt.Errorf("failed to resimulate from frame %d: %v", s.lastSavedFrame, err)
		}
	}

	if s.currentFrame-s.confirmedFrame > int32(s.maxPrediction) {
		s.sendInputs(now)
		log.Trace("Frame %d is %d frames ahead of the last confirmed frame", s.currentFrame, s.currentFrame-s.confirmedFrame)
		return ErrPredictionThreshold
	}

	if !s.hasLocalInput {
		return fmt.Errorf("%w: no local input for frame %d", ErrInvalidRequest, s.currentFrame)
	}
	s.queues[s.localHandle].AddInput(s.currentFrame+int32(s.frameDelay), s.localInput)
	s.localInput = messages.NoMove
	s.hasLocalInput = false

	s.simulateFrame()
	s.updateConfirmedFrame()

	s.sendInputs(now)
	s.reportChecksums()
	s.checkFrameAdvantage()
	s.discardHistory()

	return nil
}

func (s *P2PSession) simulateFrame() {
	if !s.sparseSaving || s.currentFrame == 0 || s.currentFrame <= s.confirmedFrame+1 {
		s.saveCurrentFrame()
	}
	s.game.AdvanceFrame(s.currentFrame, s.frameInputs(s.currentFrame))
	s.currentFrame++
}

func (s *P2PSession) saveCurrentFrame() {
	state, checksum := s.game.Snapshot()
	s.states.save(s.currentFrame, state, checksum)
	s.lastSavedFrame = s.currentFrame
	if s.currentFrame > 0 && s.currentFrame%s.checksumInterval == 0 {
		if _, reported := s.localChecksums[s.currentFrame]; !reported {
			s.pendingChecksums[s.currentFrame] = checksum
		}
	}
}

func (s *P2PSession) frameInputs(frame int32) []GameInput {
	inputs := make([]GameInput, s.numPlayers)
	for handle, q := range s.queues {
		in, status := q.Input(frame)
		inputs[handle] = GameInput{
			Handle: handle,
			Input:  in,
			Status: status,
		}
	}
	return inputs
}

// adjustSimulation restores the newest snapshot at or before target and
// simulates forward to the current frame.
func (s *P2PSession) adjustSimulation(target int32) error {
	end := s.currentFrame
	cell, ok := s.states.latestAtOrBefore(target)
	if !ok {
		return fmt.Errorf("no saved state at or before frame %d", target)
	}

	log.Debug("Rolling back from frame %d to frame %d", end, cell.frame)
	s.game.Restore(cell.state)
	s.currentFrame = cell.frame
	for _, q := range s.queues {
		q.ResetPrediction(cell.frame)
	}

	for s.currentFrame < end {
		s.simulateFrame()
		s.framesResimulated++
	}
	return nil
}

func (s *P2PSession) firstIncorrectFrame() int32 {
	first := NullFrame
	for _, q := range s.queues {
		f := q.FirstIncorrectFrame()
		if f != NullFrame && (first == NullFrame || f < first) {
			first = f
		}
	}
	return first
}

func (s *P2PSession) updateConfirmedFrame() {
	confirmed := s.queues[s.localHandle].LastConfirmedFrame()
	for _, q := range s.queues {
		if q.Disconnected() {
			continue
		}
		if f := q.LastConfirmedFrame(); f < confirmed {
			confirmed = f
		}
	}
	s.confirmedFrame = confirmed
}

func (s *P2PSession) poll(now time.Time) {
	packets, err := s.transport.Receive()
	if err != nil {
		log.Error("Failed to receive packets: %v", err)
	}

	for _, ap := range packets {
		p := s.peerFor(ap)
		if p == nil {
			log.Debug("Ignoring %s packet from unknown address %s", ap.Packet.Type, ap.Addr)
			continue
		}
		if p.disconnected {
			continue
		}
		p.lastRecv = now
		if p.interrupted {
			p.interrupted = false
			log.Info("Connection to %s %d resumed", p.kind, p.handle)
			s.emit(Event{Type: EventNetworkResumed, Handle: p.handle, Addr: p.addr})
		}
		s.handlePacket(p, ap.Packet, now)
	}

	if s.running {
		s.checkTimeouts(now)
	}
}

// peerFor finds the sender of a packet. Players may also be recognized by
// handle, when the address they were configured with resolves differently.
func (s *P2PSession) peerFor(ap messages.AddressedPacket) *peer {
	if p, ok := s.peersByAddr[ap.Addr]; ok {
		return p
	}
	switch ap.Packet.Type {
	case messages.PacketTypeSyncRequest, messages.PacketTypeSyncReply, messages.PacketTypeInput:
	default:
		return nil
	}
	for _, p := range s.peers {
		if p.kind == PlayerKindRemote && p.handle == int(ap.Packet.Handle) && !p.synchronized {
			log.Debug("Player %d configured as %s is sending from %s", p.handle, p.addr, ap.Addr)
			s.peersByAddr[ap.Addr] = p
			return p
		}
	}
	return nil
}

func (s *P2PSession) handlePacket(p *peer, packet *messages.Packet, now time.Time) {
	switch packet.Type {
	case messages.PacketTypeSyncRequest:
		s.send(p, &messages.Packet{
			Type:      messages.PacketTypeSyncReply,
			Handle:    uint8(s.localHandle),
			Timestamp: packet.Timestamp,
		})
	case messages.PacketTypeSyncReply:
		if p.synchronized || packet.Timestamp != p.syncNonce {
			return
		}
		p.syncRoundtrips++
		if p.syncRoundtrips < NumSyncRoundtrips {
			s.sendSyncRequest(p, now)
			return
		}
		p.synchronized = true
		log.Info("Synchronized with %s %d at %s", p.kind, p.handle, p.addr)
		s.checkRunning(now)
	case messages.PacketTypeInput:
		if p.kind != PlayerKindRemote {
			return
		}
		if packet.AckFrame > p.ackFrame {
			p.ackFrame = packet.AckFrame
		}
		q := s.queues[p.handle]
		for i, in := range packet.Inputs {
			q.AddInput(packet.Frame+int32(i), in)
		}
	case messages.PacketTypeInputAck:
		if packet.AckFrame > p.ackFrame {
			p.ackFrame = packet.AckFrame
		}
	case messages.PacketTypeQualityReport:
		s.send(p, &messages.Packet{
			Type:      messages.PacketTypeQualityReply,
			Handle:    uint8(s.localHandle),
			Frame:     s.currentFrame,
			Timestamp: packet.Timestamp,
		})
	case messages.PacketTypeQualityReply:
		rtt := now.UnixMilli() - packet.Timestamp
		if rtt < 0 {
			return
		}
		p.recordRTT(rtt)
		// the reply left the peer half a round trip ago
		inFlight := int32(p.ping * constants.FPS / 2000)
		p.frameAdvantage = s.currentFrame - (packet.Frame + inFlight)
	case messages.PacketTypeChecksumReport:
		if p.kind != PlayerKindRemote {
			return
		}
		p.checksums[packet.Frame] = packet.Checksum
		s.compareChecksums(p, packet.Frame)
	default:
		log.Debug("Ignoring unexpected %s packet from %s %d", packet.Type, p.kind, p.handle)
	}
}

func (s *P2PSession) checkRunning(now time.Time) {
	for _, p := range s.peers {
		if !p.synchronized {
			return
		}
	}
	if s.running {
		return
	}
	s.running = true
	for _, p := range s.peers {
		p.lastRecv = now
	}
	log.Info("Session synchronized with %d peers", len(s.peers))
	s.emit(Event{Type: EventSynchronized, Handle: s.localHandle})
}

func (s *P2PSession) sendSyncRequests(now time.Time) {
	for _, p := range s.peers {
		if p.synchronized || (!p.lastSyncSent.IsZero() && now.Sub(p.lastSyncSent) < syncRetryInterval) {
			continue
		}
		s.sendSyncRequest(p, now)
	}
}

func (s *P2PSession) sendSyncRequest(p *peer, now time.Time) {
	p.lastSyncSent = now
	s.send(p, &messages.Packet{
		Type:      messages.PacketTypeSyncRequest,
		Handle:    uint8(s.localHandle),
		Timestamp: p.newSyncNonce(),
	})
}

func (s *P2PSession) sendInputs(now time.Time) {
	local := s.queues[s.localHandle]
	for _, p := range s.peers {
		if p.disconnected {
			continue
		}
		switch p.kind {
		case PlayerKindRemote:
			s.send(p, &messages.Packet{
				Type:     messages.PacketTypeInput,
				Handle:   uint8(s.localHandle),
				Frame:    p.ackFrame + 1,
				AckFrame: s.queues[p.handle].LastConfirmedFrame(),
				Inputs:   local.Confirmed(p.ackFrame+1, messages.MaxInputsPerPacket),
			})
		case PlayerKindSpectator:
			s.sendSpectatorInputs(p)
		}
		if now.Sub(p.lastQualitySent) >= qualityReportInterval {
			p.lastQualitySent = now
			s.send(p, &messages.Packet{
				Type:      messages.PacketTypeQualityReport,
				Handle:    uint8(s.localHandle),
				Frame:     s.currentFrame,
				Timestamp: now.UnixMilli(),
			})
		}
	}
}

// sendSpectatorInputs sends every confirmed frame the spectator has not acknowledged,
// with the inputs of all players for each frame.
func (s *P2PSession) sendSpectatorInputs(p *peer) {
	from := p.ackFrame + 1
	last := from + int32(messages.MaxInputsPerPacket/s.numPlayers) - 1
	if s.confirmedFrame < last {
		last = s.confirmedFrame
	}
	var inputs []messages.EncodedInput
frames:
	for frame := from; frame <= last; frame++ {
		row := make([]messages.EncodedInput, 0, s.numPlayers)
		for _, q := range s.queues {
			in, ok := q.ConfirmedInput(frame)
			if !ok {
				break frames
			}
			row = append(row, in)
		}
		inputs = append(inputs, row...)
	}
	s.send(p, &messages.Packet{
		Type:    messages.PacketTypeSpectatorInput,
		Handle:  uint8(s.localHandle),
		Frame:   from,
		Players: uint8(s.numPlayers),
		Inputs:  inputs,
	})
}

func (s *P2PSession) send(p *peer, packet *messages.Packet) {
	if err := s.transport.Send(p.addr, packet); err != nil {
		log.Error("Failed to send %s packet to %s %d: %v", packet.Type, p.kind, p.handle, err)
	}
}

func (s *P2PSession) reportChecksums() {
	for frame, checksum := range s.pendingChecksums {
		if frame > s.confirmedFrame+1 {
			continue
		}
		delete(s.pendingChecksums, frame)
		s.localChecksums[frame] = checksum
		for _, p := range s.peers {
			if p.kind != PlayerKindRemote || p.disconnected {
				continue
			}
			s.send(p, &messages.Packet{
				Type:     messages.PacketTypeChecksumReport,
				Handle:   uint8(s.localHandle),
				Frame:    frame,
				Checksum: checksum,
			})
			s.compareChecksums(p, frame)
		}
	}
}

func (s *P2PSession) compareChecksums(p *peer, frame int32) {
	local, ok := s.localChecksums[frame]
	if !ok {
		return
	}
	remote, ok := p.checksums[frame]
	if !ok {
		return
	}
	delete(p.checksums, frame)
	if local == remote {
		log.Trace("Checksum of frame %d matches player %d", frame, p.handle)
		return
	}
	log.Error("Desync with player %d at frame %d: local checksum %x, remote checksum %x", p.handle, frame, local, remote)
	s.emit(Event{
		Type:           EventDesyncDetected,
		Handle:         p.handle,
		Addr:           p.addr,
		Frame:          frame,
		LocalChecksum:  local,
		RemoteChecksum: remote,
	})
}

func (s *P2PSession) checkTimeouts(now time.Time) {
	for _, p := range s.peers {
		if p.disconnected {
			continue
		}
		silent := now.Sub(p.lastRecv)
		switch {
		case silent >= s.disconnectTimeout:
			p.disconnected = true
			if p.kind == PlayerKindRemote {
				s.queues[p.handle].Disconnect()
			}
			log.Warn("Disconnected %s %d after %s of silence", p.kind, p.handle, silent)
			s.emit(Event{Type: EventDisconnected, Handle: p.handle, Addr: p.addr})
		case silent >= s.notifyTimeout && !p.interrupted:
			p.interrupted = true
			log.Warn("Connection to %s %d interrupted", p.kind, p.handle)
			s.emit(Event{
				Type:         EventNetworkInterrupted,
				Handle:       p.handle,
				Addr:         p.addr,
				DisconnectIn: s.disconnectTimeout - silent,
			})
		}
	}
}

// checkFrameAdvantage recommends skipping frames when this peer runs ahead of the others.
func (s *P2PSession) checkFrameAdvantage() {
	if s.currentFrame%constants.FPS != 0 {
		return
	}
	for _, p := range s.peers {
		if p.kind != PlayerKindRemote || p.disconnected {
			continue
		}
		if p.frameAdvantage >= 3 {
			s.emit(Event{Type: EventWaitRecommendation, Handle: p.handle, Addr: p.addr, SkipFrames: int(p.frameAdvantage / 2)})
			p.frameAdvantage = 0
		}
	}
}

func (s *P2PSession) discardHistory() {
	oldest := s.currentFrame - inputHistoryFrames
	if oldest <= 0 {
		return
	}
	for _, q := range s.queues {
		q.DiscardBefore(oldest)
	}
	for frame := range s.localChecksums {
		if frame < s.confirmedFrame-checksumHistory*s.checksumInterval {
			delete(s.localChecksums, frame)
		}
	}
	for _, p := range s.peers {
		for frame := range p.checksums {
			if frame < s.confirmedFrame-checksumHistory*s.checksumInterval {
				delete(p.checksums, frame)
			}
		}
	}
}

func (s *P2PSession) emit(e Event) {
	s.events = append(s.events, e)
}

// Events drains the pending events.
func (s *P2PSession) Events() []Event {
	events := s.events
	s.events = nil
	return events
}

func (s *P2PSession) Running() bool {
	return s.running
}

func (s *P2PSession) CurrentFrame() int32 {
	return s.currentFrame
}

// ConfirmedFrame is the last frame for which every player's input is known.
func (s *P2PSession) ConfirmedFrame() int32 {
	return s.confirmedFrame
}

func (s *P2PSession) LocalHandle() int {
	return s.localHandle
}

func (s *P2PSession) NumPlayers() int {
	return s.numPlayers
}

func (s *P2PSession) FrameDelay() int {
	return s.frameDelay
}

// FramesResimulated counts the frames simulated again because of rollbacks.
func (s *P2PSession) FramesResimulated() int {
	return s.framesResimulated
}

// Peers returns the connection stats of every remote player and spectator.
func (s *P2PSession) Peers() []PeerStats {
	stats := make([]PeerStats, 0, len(s.peers))
	for _, p := range s.peers {
		stats = append(stats, p.stats())
	}
	return stats
}
