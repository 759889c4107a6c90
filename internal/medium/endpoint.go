package medium

//
// Relay endpoints
//

import (
	"context"
	"fmt"
	"net"

	"github.com/ooni/medium/internal/model"
)

// Direction is the direction in which a packet travels.
type Direction int

const (
	// DirectionSenderToReceiver is the impaired direction.
	DirectionSenderToReceiver = Direction(iota)

	// DirectionReceiverToSender is the direction that is never impaired.
	DirectionReceiverToSender
)

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case DirectionSenderToReceiver:
		return "sender_to_receiver"
	case DirectionReceiverToSender:
		return "receiver_to_sender"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Endpoint is a bound datagram socket paired with the fixed peer to
// which it forwards what it receives. The zero value is invalid; use
// [NewEndpoint] or fill all the fields.
type Endpoint struct {
	// Name is the MANDATORY name used when logging.
	Name string

	// Conn is the MANDATORY bound socket.
	Conn net.PacketConn

	// Peer is the MANDATORY forwarding destination.
	Peer net.Addr
}

// NewEndpoint binds bindAddr using listener and forwards to peerAddr.
func NewEndpoint(ctx context.Context, listener model.UDPListener, name, bindAddr, peerAddr string) (*Endpoint, error) {
	peer, err := net.ResolveUDPAddr("udp", peerAddr)
	if err != nil {
		return nil, fmt.Errorf("medium: %s: resolve peer: %w", name, err)
	}
	conn, err := listener.ListenPacket(ctx, "udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("medium: %s: listen: %w", name, err)
	}
	ep := &Endpoint{
		Name: name,
		Conn: conn,
		Peer: peer,
	}
	return ep, nil
}

// Forward sends datagram to the peer.
func (ep *Endpoint) Forward(datagram []byte) error {
	_, err := ep.Conn.WriteTo(datagram, ep.Peer)
	return err
}

// Close closes the socket.
func (ep *Endpoint) Close() error {
	return ep.Conn.Close()
}
