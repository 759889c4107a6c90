package pseudotcp

//
// gopacket integration
//

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// LayerTypePseudoTCP is the gopacket layer type of the pseudo-TCP header.
var LayerTypePseudoTCP = gopacket.RegisterLayerType(
	2187,
	gopacket.LayerTypeMetadata{
		Name:    "PseudoTCP",
		Decoder: gopacket.DecodeFunc(decodeLayer),
	},
)

// Layer is the pseudo-TCP header as a gopacket layer.
type Layer struct {
	layers.BaseLayer
	Header
}

var (
	_ gopacket.DecodingLayer     = &Layer{}
	_ gopacket.SerializableLayer = &Layer{}
)

// LayerType implements gopacket.Layer.
func (l *Layer) LayerType() gopacket.LayerType {
	return LayerTypePseudoTCP
}

// CanDecode implements gopacket.DecodingLayer.
func (l *Layer) CanDecode() gopacket.LayerClass {
	return LayerTypePseudoTCP
}

// NextLayerType implements gopacket.DecodingLayer.
func (l *Layer) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// DecodeFromBytes implements gopacket.DecodingLayer.
func (l *Layer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	h, err := Decode(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	l.Header = *h
	l.BaseLayer = layers.BaseLayer{
		Contents: data[:HeaderSize],
		Payload:  data[HeaderSize:],
	}
	return nil
}

// SerializeTo implements gopacket.SerializableLayer.
func (l *Layer) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.PrependBytes(HeaderSize)
	if err != nil {
		return err
	}
	l.Header.put(bytes)
	return nil
}

func decodeLayer(data []byte, p gopacket.PacketBuilder) error {
	l := &Layer{}
	if err := l.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(l)
	return p.NextDecoder(l.NextLayerType())
}

// Dissection is the result of [Dissect].
type Dissection struct {
	// Header is the decoded header or nil.
	Header *Header

	// Payload is the opaque payload following the header.
	Payload []byte

	// Err is the decoding error, if any.
	Err error
}

// Dissect decodes raw with gopacket. Malformed input is reported
// through the Err field of the returned [Dissection].
func Dissect(raw []byte) *Dissection {
	packet := gopacket.NewPacket(raw, LayerTypePseudoTCP, gopacket.DecodeOptions{NoCopy: true})
	d := &Dissection{}
	if el := packet.ErrorLayer(); el != nil {
		d.Err = el.Error()
	}
	if l, ok := packet.Layer(LayerTypePseudoTCP).(*Layer); ok {
		h := l.Header
		d.Header = &h
	}
	if app := packet.ApplicationLayer(); app != nil {
		d.Payload = app.Payload()
	}
	return d
}

// Serialize builds a datagram carrying the given header and payload.
func Serialize(h Header, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, &Layer{Header: h}, gopacket.Payload(payload))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
