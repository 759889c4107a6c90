package medium

import (
	"context"
	"net"
	"syscall"
	"testing"

	"golang.org/x/sys/unix"
)

func getRecvBuffer(t *testing.T, conn net.PacketConn) int {
	raw, err := conn.(syscall.Conn).SyscallConn()
	if err != nil {
		t.Fatal(err)
	}
	var (
		size int
		serr error
	)
	err = raw.Control(func(fd uintptr) {
		size, serr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
	})
	if err != nil {
		t.Fatal(err)
	}
	if serr != nil {
		t.Fatal(serr)
	}
	return size
}

func TestNewListenConfigSetsRecvBuffer(t *testing.T) {
	listen := func(size int) int {
		conn, err := NewListenConfig(size).ListenPacket(context.Background(), "udp", "127.0.0.1:0")
		if err != nil {
			t.Fatal(err)
		}
		defer conn.Close()
		return getRecvBuffer(t, conn)
	}
	// linux doubles the requested value and clamps it to rmem_max
	if small := listen(4096); small != 2*4096 {
		t.Fatal("unexpected receive buffer size", small)
	}
	if listen(0) <= 0 {
		t.Fatal("expected the default receive buffer")
	}
}
