package messages

import (
	"fmt"

	packetfb "github.com/cbodonnell/goban/flatbuffers/packet"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/klauspost/compress/zstd"
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic(fmt.Sprintf("Failed to create zstd encoder: %v", err))
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(UDPMessageBufferSize*64))
	if err != nil {
		panic(fmt.Sprintf("Failed to create zstd decoder: %v", err))
	}
}

// SerializePacket encodes a packet as a compressed flatbuffer.
func SerializePacket(p *Packet) ([]byte, error) {
	b, err := SerializePacketFlatbuffer(p)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize packet: %v", err)
	}

	compressed := encoder.EncodeAll(b, make([]byte, 0, len(b)))
	if len(compressed) > UDPMessageBufferSize {
		return nil, fmt.Errorf("packet of %d bytes exceeds the buffer size", len(compressed))
	}

	return compressed, nil
}

// DeserializePacket is the inverse of SerializePacket.
func DeserializePacket(data []byte) (*Packet, error) {
	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress packet: %v", err)
	}

	p, err := DeserializePacketFlatbuffer(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize packet: %v", err)
	}

	return p, nil
}

func SerializePacketFlatbuffer(p *Packet) ([]byte, error) {
	if len(p.Inputs) > MaxInputsPerPacket*int(max(p.Players, 1)) {
		return nil, fmt.Errorf("too many inputs: %d", len(p.Inputs))
	}

	builder := flatbuffers.NewBuilder(64)

	var inputs flatbuffers.UOffsetT
	if len(p.Inputs) > 0 {
		inputs = builder.CreateByteVector(flattenInputs(p.Inputs))
	}

	packetfb.PacketStart(builder)
	packetfb.PacketAddType(builder, byte(p.Type))
	packetfb.PacketAddHandle(builder, p.Handle)
	packetfb.PacketAddFrame(builder, p.Frame)
	packetfb.PacketAddAckFrame(builder, p.AckFrame)
	packetfb.PacketAddTimestamp(builder, p.Timestamp)
	packetfb.PacketAddChecksum(builder, p.Checksum)
	if len(p.Inputs) > 0 {
		packetfb.PacketAddInputs(builder, inputs)
	}
	packetfb.PacketAddPlayers(builder, p.Players)
	packetOffset := packetfb.PacketEnd(builder)
	packetfb.FinishPacketBuffer(builder, packetOffset)

	return builder.FinishedBytes(), nil
}

// DeserializePacketFlatbuffer reads a packet from an uncompressed flatbuffer.
// Malformed buffers return an error.
func DeserializePacketFlatbuffer(b []byte) (p *Packet, err error) {
	if len(b) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("buffer of %d bytes is too short", len(b))
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("malformed packet: %v", r)
		}
	}()

	fb := packetfb.GetRootAsPacket(b, 0)
	p = &Packet{
		Type:      PacketType(fb.Type()),
		Handle:    fb.Handle(),
		Frame:     fb.Frame(),
		AckFrame:  fb.AckFrame(),
		Timestamp: fb.Timestamp(),
		Checksum:  fb.Checksum(),
		Players:   fb.Players(),
	}
	if raw := fb.InputsBytes(); len(raw) > 0 {
		inputs, ok := splitInputs(raw)
		if !ok {
			return nil, fmt.Errorf("inputs length %d is not a multiple of the input size", len(raw))
		}
		p.Inputs = inputs
	}

	return p, nil
}
