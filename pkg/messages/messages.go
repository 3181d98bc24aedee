package messages

import "fmt"

const (
	// UDPMessageBufferSize represents the maximum size of a datagram
	UDPMessageBufferSize = 1024
	// MaxInputsPerPacket bounds the number of inputs carried by one packet
	MaxInputsPerPacket = 128
)

// PacketType identifies the purpose of a packet.
type PacketType uint8

const (
	PacketTypeSyncRequest PacketType = iota + 1
	PacketTypeSyncReply
	PacketTypeInput
	PacketTypeInputAck
	PacketTypeQualityReport
	PacketTypeQualityReply
	PacketTypeChecksumReport
	PacketTypeSpectatorInput
)

func (t PacketType) String() string {
	switch t {
	case PacketTypeSyncRequest:
		return "SyncRequest"
	case PacketTypeSyncReply:
		return "SyncReply"
	case PacketTypeInput:
		return "Input"
	case PacketTypeInputAck:
		return "InputAck"
	case PacketTypeQualityReport:
		return "QualityReport"
	case PacketTypeQualityReply:
		return "QualityReply"
	case PacketTypeChecksumReport:
		return "ChecksumReport"
	case PacketTypeSpectatorInput:
		return "SpectatorInput"
	default:
		return fmt.Sprintf("PacketType(%d)", uint8(t))
	}
}

// Packet is the unit exchanged between peers.
// Not every field is meaningful for every type.
type Packet struct {
	Type PacketType
	// Handle is the sender's player handle
	Handle uint8
	// Frame is the frame of the first input, or the frame a checksum was taken at
	Frame int32
	// AckFrame is the last frame the sender has received from the recipient
	AckFrame int32
	// Timestamp is a sync nonce or a send time in milliseconds
	Timestamp int64
	Checksum  uint64
	// Players is the number of inputs per frame in a spectator packet
	Players uint8
	// Inputs are consecutive frames starting at Frame. Spectator packets carry
	// Players inputs per frame in handle order.
	Inputs []EncodedInput
}

// AddressedPacket is a packet together with the address of its sender.
type AddressedPacket struct {
	Addr   string
	Packet *Packet
}
