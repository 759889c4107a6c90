//go:build !unix

package medium

import "net"

// NewListenConfig returns the [*net.ListenConfig] used to bind the
// endpoints. The receive buffer size is ignored on this platform.
func NewListenConfig(recvBufferSize int) *net.ListenConfig {
	return &net.ListenConfig{}
}
