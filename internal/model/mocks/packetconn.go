package mocks

import (
	"net"
	"time"
)

// PacketConn allows mocking a net.PacketConn.
type PacketConn struct {
	MockReadFrom func(p []byte) (int, net.Addr, error)

	MockWriteTo func(p []byte, addr net.Addr) (int, error)

	MockClose func() error

	MockLocalAddr func() net.Addr

	MockSetDeadline func(t time.Time) error

	MockSetReadDeadline func(t time.Time) error

	MockSetWriteDeadline func(t time.Time) error
}

var _ net.PacketConn = &PacketConn{}

// ReadFrom calls MockReadFrom.
func (c *PacketConn) ReadFrom(p []byte) (int, net.Addr, error) {
	return c.MockReadFrom(p)
}

// WriteTo calls MockWriteTo.
func (c *PacketConn) WriteTo(p []byte, addr net.Addr) (int, error) {
	return c.MockWriteTo(p, addr)
}

// Close calls MockClose.
func (c *PacketConn) Close() error {
	return c.MockClose()
}

// LocalAddr calls MockLocalAddr.
func (c *PacketConn) LocalAddr() net.Addr {
	return c.MockLocalAddr()
}

// SetDeadline calls MockSetDeadline.
func (c *PacketConn) SetDeadline(t time.Time) error {
	return c.MockSetDeadline(t)
}

// SetReadDeadline calls MockSetReadDeadline.
func (c *PacketConn) SetReadDeadline(t time.Time) error {
	return c.MockSetReadDeadline(t)
}

// SetWriteDeadline calls MockSetWriteDeadline.
func (c *PacketConn) SetWriteDeadline(t time.Time) error {
	return c.MockSetWriteDeadline(t)
}
