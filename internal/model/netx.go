package model

//
// Network extensions
//

import (
	"context"
	"net"
)

// UDPListener creates bound datagram sockets. The [*net.ListenConfig]
// type implements this interface.
type UDPListener interface {
	ListenPacket(ctx context.Context, network, address string) (net.PacketConn, error)
}
