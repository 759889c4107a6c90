package mocks

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

func TestPacketConn(t *testing.T) {
	expected := errors.New("mocked error")

	t.Run("ReadFrom", func(t *testing.T) {
		c := &PacketConn{
			MockReadFrom: func(p []byte) (int, net.Addr, error) {
				return 0, nil, expected
			},
		}
		if _, _, err := c.ReadFrom(make([]byte, 64)); !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("WriteTo", func(t *testing.T) {
		c := &PacketConn{
			MockWriteTo: func(p []byte, addr net.Addr) (int, error) {
				return 0, expected
			},
		}
		if _, err := c.WriteTo(nil, &net.UDPAddr{}); !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("Close", func(t *testing.T) {
		c := &PacketConn{
			MockClose: func() error {
				return expected
			},
		}
		if err := c.Close(); !errors.Is(err, expected) {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("LocalAddr", func(t *testing.T) {
		addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 4444}
		c := &PacketConn{
			MockLocalAddr: func() net.Addr {
				return addr
			},
		}
		if c.LocalAddr() != addr {
			t.Fatal("unexpected address")
		}
	})

	t.Run("deadlines", func(t *testing.T) {
		var count int
		c := &PacketConn{
			MockSetDeadline: func(t time.Time) error {
				count++
				return nil
			},
			MockSetReadDeadline: func(t time.Time) error {
				count++
				return nil
			},
			MockSetWriteDeadline: func(t time.Time) error {
				count++
				return nil
			},
		}
		now := time.Now()
		_ = c.SetDeadline(now)
		_ = c.SetReadDeadline(now)
		_ = c.SetWriteDeadline(now)
		if count != 3 {
			t.Fatal("unexpected count", count)
		}
	})
}

func TestUDPListener(t *testing.T) {
	expected := errors.New("mocked error")
	ul := &UDPListener{
		MockListenPacket: func(ctx context.Context, network, address string) (net.PacketConn, error) {
			return nil, expected
		},
	}
	if _, err := ul.ListenPacket(context.Background(), "udp", "127.0.0.1:0"); !errors.Is(err, expected) {
		t.Fatal("unexpected error", err)
	}
}
