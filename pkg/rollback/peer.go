package rollback

import (
	"math/rand"
	"time"
)

// peer is the connection state of a remote player or spectator.
type peer struct {
	handle int
	kind   PlayerKind
	addr   string

	syncNonce      int64
	syncRoundtrips int
	synchronized   bool
	lastSyncSent   time.Time

	lastRecv     time.Time
	interrupted  bool
	disconnected bool

	// ackFrame is the last local frame the peer has confirmed receiving
	ackFrame int32

	rtts            []int64
	ping            int64
	lastQualitySent time.Time
	frameAdvantage  int32

	checksums map[int32]uint64
}

func newPeer(handle int, kind PlayerKind, addr string) *peer {
	return &peer{
		handle:    handle,
		kind:      kind,
		addr:      addr,
		ackFrame:  NullFrame,
		checksums: make(map[int32]uint64),
	}
}

func (p *peer) newSyncNonce() int64 {
	p.syncNonce = rand.Int63n(1<<62) + 1
	return p.syncNonce
}

func (p *peer) recordRTT(rtt int64) {
	p.rtts = append(p.rtts, rtt)
	if len(p.rtts) > maxRecentRTTs {
		p.rtts = p.rtts[len(p.rtts)-maxRecentRTTs:]
	}
	p.ping = medianRTT(removeOutlierRTTs(p.rtts))
}

// PeerStats describes the connection to one remote participant.
type PeerStats struct {
	Handle         int    `json:"handle"`
	Kind           string `json:"kind"`
	Addr           string `json:"addr"`
	Ping           int64  `json:"ping"`
	Synchronized   bool   `json:"synchronized"`
	Interrupted    bool   `json:"interrupted"`
	Disconnected   bool   `json:"disconnected"`
	AckFrame       int32  `json:"ackFrame"`
	FrameAdvantage int32  `json:"frameAdvantage"`
}

func (p *peer) stats() PeerStats {
	return PeerStats{
		Handle:         p.handle,
		Kind:           p.kind.String(),
		Addr:           p.addr,
		Ping:           p.ping,
		Synchronized:   p.synchronized,
		Interrupted:    p.interrupted,
		Disconnected:   p.disconnected,
		AckFrame:       p.ackFrame,
		FrameAdvantage: p.frameAdvantage,
	}
}
