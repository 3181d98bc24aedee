package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/messages"
	"github.com/cbodonnell/goban/pkg/queue"
)

// UDPSocket sends packets to peers and queues the packets it receives
// until the session polls for them.
type UDPSocket struct {
	conn         *net.UDPConn
	MessageQueue queue.Queue

	lock  sync.RWMutex
	addrs map[string]*net.UDPAddr
}

type NewUDPSocketOptions struct {
	// Port to listen on. 0 picks a free port.
	Port         int
	MessageQueue queue.Queue
}

// ListenUDP binds a UDP socket. Call Start to begin receiving.
func ListenUDP(opts NewUDPSocketOptions) (*UDPSocket, error) {
	if opts.MessageQueue == nil {
		return nil, fmt.Errorf("message queue is required")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", opts.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %v", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP address: %v", err)
	}

	log.Info("UDP socket listening on %s", conn.LocalAddr().String())

	return &UDPSocket{
		conn:         conn,
		MessageQueue: opts.MessageQueue,
		addrs:        make(map[string]*net.UDPAddr),
	}, nil
}

// NormalizeAddr resolves addr to the form packets from that peer are reported with.
func NormalizeAddr(addr string) (string, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to resolve UDP address %s: %v", addr, err)
	}
	return udpAddr.String(), nil
}

// Start reads packets until ctx is done or the socket is closed.
func (s *UDPSocket) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	buf := make([]byte, messages.UDPMessageBufferSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Debug("UDP socket closed")
				return
			}
			log.Error("Failed to read packet from UDP connection: %v", err)
			continue
		}

		packet, err := messages.DeserializePacket(buf[:n])
		if err != nil {
			log.Warn("Failed to deserialize packet from %s: %v", addr.String(), err)
			continue
		}

		log.Trace("Received %s packet from %s", packet.Type, addr.String())

		if err := s.MessageQueue.Enqueue(messages.AddressedPacket{Addr: addr.String(), Packet: packet}); err != nil {
			log.Error("Failed to enqueue packet: %v", err)
		}
	}
}

// Send writes a packet to addr without waiting for delivery.
func (s *UDPSocket) Send(addr string, packet *messages.Packet) error {
	udpAddr, err := s.resolve(addr)
	if err != nil {
		return err
	}

	b, err := messages.SerializePacket(packet)
	if err != nil {
		return fmt.Errorf("failed to serialize packet: %v", err)
	}

	if _, err := s.conn.WriteToUDP(b, udpAddr); err != nil {
		return fmt.Errorf("failed to write packet to UDP connection: %v", err)
	}
	return nil
}

func (s *UDPSocket) resolve(addr string) (*net.UDPAddr, error) {
	s.lock.RLock()
	udpAddr, ok := s.addrs[addr]
	s.lock.RUnlock()
	if ok {
		return udpAddr, nil
	}

	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address %s: %v", addr, err)
	}

	s.lock.Lock()
	s.addrs[addr] = udpAddr
	s.lock.Unlock()
	return udpAddr, nil
}

// Receive returns every packet received since the last call.
func (s *UDPSocket) Receive() ([]messages.AddressedPacket, error) {
	items, err := s.MessageQueue.ReadAllMessages()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages from queue: %v", err)
	}

	packets := make([]messages.AddressedPacket, 0, len(items))
	for _, item := range items {
		packet, ok := item.(messages.AddressedPacket)
		if !ok {
			log.Warn("Unexpected item of type %T in packet queue", item)
			continue
		}
		packets = append(packets, packet)
	}
	return packets, nil
}

func (s *UDPSocket) LocalAddr() string {
	return s.conn.LocalAddr().String()
}

func (s *UDPSocket) Close() error {
	return s.conn.Close()
}
