package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializePacket(t *testing.T) {
	tests := []struct {
		name   string
		packet *Packet
	}{
		{
			name: "input packet",
			packet: &Packet{
				Type:     PacketTypeInput,
				Handle:   1,
				Frame:    42,
				AckFrame: -1,
				Inputs: []EncodedInput{
					NoMove,
					EncodeInput(PointerState{X: 64, Y: 96, Clicked: true}),
					NoMove,
				},
			},
		},
		{
			name: "checksum report",
			packet: &Packet{
				Type:      PacketTypeChecksumReport,
				Frame:     120,
				AckFrame:  118,
				Timestamp: 1718000000000,
				Checksum:  0xDEADBEEFCAFEF00D,
			},
		},
		{
			name: "spectator packet",
			packet: &Packet{
				Type:    PacketTypeSpectatorInput,
				Frame:   0,
				Players: 2,
				Inputs:  []EncodedInput{NoMove, NoMove, {0, 32, 0, 32}, NoMove},
			},
		},
		{
			name:   "empty sync request",
			packet: &Packet{Type: PacketTypeSyncRequest},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := SerializePacket(tt.packet)
			require.NoError(t, err)

			got, err := DeserializePacket(b)
			require.NoError(t, err)
			assert.Equal(t, tt.packet, got)
		})
	}
}

func TestSerializePacket_tooManyInputs(t *testing.T) {
	_, err := SerializePacket(&Packet{
		Type:   PacketTypeInput,
		Inputs: make([]EncodedInput, MaxInputsPerPacket+1),
	})
	assert.Error(t, err)
}

func TestDeserializePacket_malformed(t *testing.T) {
	_, err := DeserializePacket([]byte("not a packet"))
	assert.Error(t, err)

	_, err = DeserializePacketFlatbuffer([]byte{0xFF, 0xFF, 0xFF, 0x7F, 0x00})
	assert.Error(t, err)

	_, err = DeserializePacketFlatbuffer([]byte{0x01})
	assert.Error(t, err)
}

func TestPacketType_String(t *testing.T) {
	assert.Equal(t, "Input", PacketTypeInput.String())
	assert.Equal(t, "PacketType(99)", PacketType(99).String())
}
