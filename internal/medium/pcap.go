package medium

//
// Capturing relayed packets
//

import (
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// PacketDumper observes the packets emitted by the relay.
type PacketDumper interface {
	// Dump is called for each datagram sent from src to dst.
	Dump(src, dst net.Addr, datagram []byte) error
}

// PCAPDumper is a [PacketDumper] writing a raw-IP pcap file in which each
// datagram is wrapped into synthetic IP and UDP headers.
type PCAPDumper struct {
	closer io.Closer
	now    func() time.Time
	writer *pcapgo.Writer
}

var _ PacketDumper = &PCAPDumper{}

// pcapSnapLen is the snapshot length written in the pcap header.
const pcapSnapLen = 256

// NewPCAPDumper writes the pcap file header on w and returns a dumper.
func NewPCAPDumper(w io.Writer) (*PCAPDumper, error) {
	writer := pcapgo.NewWriter(w)
	if err := writer.WriteFileHeader(pcapSnapLen, layers.LinkTypeRaw); err != nil {
		return nil, err
	}
	dumper := &PCAPDumper{
		now:    time.Now,
		writer: writer,
	}
	return dumper, nil
}

// CreatePCAPDumper is like [NewPCAPDumper] but creates the given file, which
// the [*PCAPDumper.Close] method closes.
func CreatePCAPDumper(filename string) (*PCAPDumper, error) {
	fp, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	dumper, err := NewPCAPDumper(fp)
	if err != nil {
		fp.Close()
		return nil, err
	}
	dumper.closer = fp
	return dumper, nil
}

// Dump implements PacketDumper.
func (d *PCAPDumper) Dump(src, dst net.Addr, datagram []byte) error {
	srcUDP, ok := src.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("medium: pcap: not an UDP address: %s", src)
	}
	dstUDP, ok := dst.(*net.UDPAddr)
	if !ok {
		return fmt.Errorf("medium: pcap: not an UDP address: %s", dst)
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(srcUDP.Port),
		DstPort: layers.UDPPort(dstUDP.Port),
	}
	var network gopacket.SerializableLayer
	if src4, dst4 := srcUDP.IP.To4(), dstUDP.IP.To4(); src4 != nil && dst4 != nil {
		ip := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    src4,
			DstIP:    dst4,
		}
		udp.SetNetworkLayerForChecksum(ip)
		network = ip
	} else {
		ip := &layers.IPv6{
			Version:    6,
			HopLimit:   64,
			NextHeader: layers.IPProtocolUDP,
			SrcIP:      srcUDP.IP.To16(),
			DstIP:      dstUDP.IP.To16(),
		}
		udp.SetNetworkLayerForChecksum(ip)
		network = ip
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, network, udp, gopacket.Payload(datagram)); err != nil {
		return err
	}
	data := buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     d.now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	return d.writer.WritePacket(ci, data)
}

// Close closes the underlying file, if any.
func (d *PCAPDumper) Close() error {
	if d.closer != nil {
		return d.closer.Close()
	}
	return nil
}
