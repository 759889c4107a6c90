// Package pseudotcp contains the codec for the fixed 8-byte header of
// the pseudo-TCP datagram transport relayed by the medium.
//
// The wire layout is one byte per field:
//
//	0 flowID | 1 flags | 2 seq | 3 ackSeq | 4 reserved | 5 ECN | 6 reserved | 7 window
//
// followed by an opaque payload. A datagram is at most [MaxPacketSize] bytes.
package pseudotcp

import "errors"

// HeaderSize is the size of the pseudo-TCP header.
const HeaderSize = 8

// MaxPacketSize is the maximum size of a pseudo-TCP datagram.
const MaxPacketSize = 64

// Header field offsets.
const (
	OffsetFlowID    = 0
	OffsetFlags     = 1
	OffsetSeq       = 2
	OffsetAckSeq    = 3
	OffsetReservedA = 4
	OffsetECN       = 5
	OffsetReservedB = 6
	OffsetWindow    = 7
)

// Flag bits.
const (
	FlagSYN = uint8(0x01)
	FlagFIN = uint8(0x02)
	FlagRST = uint8(0x04)
	FlagACK = uint8(0x10)
)

// ECN byte values. Any value >= ECNActive means the bit is set.
const (
	ECNDisabled = uint8(0x00)
	ECNActive   = uint8(0x01)
)

// ErrShortPacket indicates a datagram shorter than [HeaderSize].
var ErrShortPacket = errors.New("pseudotcp: packet shorter than header")

// Header is the decoded pseudo-TCP header.
type Header struct {
	FlowID    uint8
	Flags     uint8
	Seq       uint8
	AckSeq    uint8
	ReservedA uint8
	ECN       uint8
	ReservedB uint8
	Window    uint8
}

// Decode decodes the header at the beginning of data. The only possible
// error is [ErrShortPacket]; flag and ECN values are never validated.
func Decode(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortPacket
	}
	h := &Header{
		FlowID:    data[OffsetFlowID],
		Flags:     data[OffsetFlags],
		Seq:       data[OffsetSeq],
		AckSeq:    data[OffsetAckSeq],
		ReservedA: data[OffsetReservedA],
		ECN:       data[OffsetECN],
		ReservedB: data[OffsetReservedB],
		Window:    data[OffsetWindow],
	}
	return h, nil
}

// put writes the header into b, which MUST be at least HeaderSize bytes.
func (h *Header) put(b []byte) {
	b[OffsetFlowID] = h.FlowID
	b[OffsetFlags] = h.Flags
	b[OffsetSeq] = h.Seq
	b[OffsetAckSeq] = h.AckSeq
	b[OffsetReservedA] = h.ReservedA
	b[OffsetECN] = h.ECN
	b[OffsetReservedB] = h.ReservedB
	b[OffsetWindow] = h.Window
}

// Encode returns the wire representation of the header.
func (h *Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the wire representation of the header to b.
func (h *Header) AppendTo(b []byte) []byte {
	b = append(b, make([]byte, HeaderSize)...)
	h.put(b[len(b)-HeaderSize:])
	return b
}

// ECNSet returns whether the ECN byte signals congestion.
func (h *Header) ECNSet() bool {
	return h.ECN >= ECNActive
}

// MarkECN returns a copy of packet whose ECN byte is set to [ECNActive]. The
// input is never modified. A packet too short to carry the ECN byte is
// returned as an unmodified copy.
func MarkECN(packet []byte) []byte {
	out := append([]byte(nil), packet...)
	if len(out) > OffsetECN {
		out[OffsetECN] = ECNActive
	}
	return out
}
