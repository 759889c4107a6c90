package mocks

import (
	"context"
	"net"
)

// UDPListener is a mockable model.UDPListener.
type UDPListener struct {
	MockListenPacket func(ctx context.Context, network, address string) (net.PacketConn, error)
}

// ListenPacket calls MockListenPacket.
func (ul *UDPListener) ListenPacket(ctx context.Context, network, address string) (net.PacketConn, error) {
	return ul.MockListenPacket(ctx, network, address)
}
