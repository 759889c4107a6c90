//go:build unix

package medium

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// NewListenConfig returns the [*net.ListenConfig] used to bind the
// endpoints. A positive recvBufferSize sets SO_RCVBUF, which bounds how
// many datagrams queue while the relay loop is busy.
func NewListenConfig(recvBufferSize int) *net.ListenConfig {
	lc := &net.ListenConfig{}
	if recvBufferSize > 0 {
		lc.Control = func(network, address string, c syscall.RawConn) error {
			var serr error
			if err := c.Control(func(fd uintptr) {
				serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferSize)
			}); err != nil {
				return err
			}
			return serr
		}
	}
	return lc
}
