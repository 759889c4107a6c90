package medium

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/ooni/medium/internal/model/mocks"
)

func TestDirectionString(t *testing.T) {
	if DirectionSenderToReceiver.String() != "sender_to_receiver" {
		t.Fatal("unexpected string")
	}
	if DirectionReceiverToSender.String() != "receiver_to_sender" {
		t.Fatal("unexpected string")
	}
	if Direction(7).String() != "Direction(7)" {
		t.Fatal("unexpected string")
	}
}

func TestNewEndpoint(t *testing.T) {
	t.Run("on success", func(t *testing.T) {
		var closed bool
		conn := &mocks.PacketConn{
			MockWriteTo: func(p []byte, addr net.Addr) (int, error) {
				if addr.String() != "127.0.0.1:6666" {
					t.Fatal("unexpected peer", addr)
				}
				return len(p), nil
			},
			MockClose: func() error {
				closed = true
				return nil
			},
		}
		listener := &mocks.UDPListener{
			MockListenPacket: func(ctx context.Context, network, address string) (net.PacketConn, error) {
				if network != "udp" || address != "127.0.0.1:4444" {
					t.Fatal("unexpected arguments", network, address)
				}
				return conn, nil
			},
		}
		ep, err := NewEndpoint(context.Background(), listener, "sender side", "127.0.0.1:4444", "127.0.0.1:6666")
		if err != nil {
			t.Fatal(err)
		}
		if err := ep.Forward([]byte("abc")); err != nil {
			t.Fatal(err)
		}
		if err := ep.Close(); err != nil || !closed {
			t.Fatal("close failed", err)
		}
	})

	t.Run("with bad peer address", func(t *testing.T) {
		listener := &mocks.UDPListener{
			MockListenPacket: func(ctx context.Context, network, address string) (net.PacketConn, error) {
				t.Fatal("should not be called")
				return nil, nil
			},
		}
		ep, err := NewEndpoint(context.Background(), listener, "sender side", "127.0.0.1:4444", "antani")
		if err == nil || ep != nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("when listen fails", func(t *testing.T) {
		expected := errors.New("mocked error")
		listener := &mocks.UDPListener{
			MockListenPacket: func(ctx context.Context, network, address string) (net.PacketConn, error) {
				return nil, expected
			},
		}
		ep, err := NewEndpoint(context.Background(), listener, "sender side", "127.0.0.1:4444", "127.0.0.1:6666")
		if !errors.Is(err, expected) || ep != nil {
			t.Fatal("unexpected error", err)
		}
	})

	t.Run("with a real listener", func(t *testing.T) {
		ep, err := NewEndpoint(context.Background(), NewListenConfig(0), "receiver side", "127.0.0.1:0", "127.0.0.1:3333")
		if err != nil {
			t.Fatal(err)
		}
		defer ep.Close()
		if ep.Conn.LocalAddr().(*net.UDPAddr).Port == 0 {
			t.Fatal("expected a bound port")
		}
	})
}
