package medium

//
// Multiplexing the relay sources
//

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/ooni/medium/internal/pseudotcp"
)

// QuitCommand is the control line that stops the relay.
const QuitCommand = "quit"

// IsQuitCommand returns whether line asks the relay to stop. Leading and
// trailing whitespace is ignored; the comparison is case sensitive.
func IsQuitCommand(line string) bool {
	return strings.TrimSpace(line) == QuitCommand
}

// sourceKind tells which source is ready.
type sourceKind int

const (
	// sourceTimeout means that no source became ready in time.
	sourceTimeout = sourceKind(iota)

	// sourceCanceled means that the context has been canceled.
	sourceCanceled

	// sourceSender means that the sender side has a datagram.
	sourceSender

	// sourceReceiver means that the receiver side has a datagram.
	sourceReceiver

	// sourceControl means that the control input has a line.
	sourceControl
)

// readyEvent is what [*multiplexor.wait] returns. Which fields are
// meaningful depends on kind.
type readyEvent struct {
	kind sourceKind

	// datagram and err are set for sourceSender and sourceReceiver.
	datagram []byte
	err      error

	// line is set for sourceControl.
	line string
}

// readErrorBackoff is how long a reader pauses after a read error
// other than [net.ErrClosed] before reading again.
const readErrorBackoff = 10 * time.Millisecond

// multiplexor turns blocking reads into events consumed by the relay
// loop. Each reader holds at most one pending event, so datagrams the
// loop has not consumed yet stay in the kernel receive buffer. A pending
// control line is always served before pending datagrams.
type multiplexor struct {
	control chan readyEvent
	done    chan struct{}
	events  chan readyEvent
	once    sync.Once
	wg      sync.WaitGroup
}

func newMultiplexor() *multiplexor {
	return &multiplexor{
		control: make(chan readyEvent),
		done:    make(chan struct{}),
		events:  make(chan readyEvent),
	}
}

// addEndpoint starts reading datagrams from ep.
func (m *multiplexor) addEndpoint(kind sourceKind, ep *Endpoint) {
	m.wg.Add(1)
	go m.readEndpoint(kind, ep)
}

func (m *multiplexor) readEndpoint(kind sourceKind, ep *Endpoint) {
	defer m.wg.Done()
	for {
		buffer := make([]byte, pseudotcp.MaxPacketSize)
		count, _, err := ep.Conn.ReadFrom(buffer)
		if errors.Is(err, net.ErrClosed) {
			return
		}
		ev := readyEvent{kind: kind, datagram: buffer[:count], err: err}
		select {
		case m.events <- ev:
		case <-m.done:
			return
		}
		if err == nil {
			continue
		}
		// a persistent error (e.g. ICMP unreachable storms) must not spin
		select {
		case <-time.After(readErrorBackoff):
		case <-m.done:
			return
		}
	}
}

// addControl starts reading lines from r. We do not wait for this
// reader on stop because a terminal read cannot be interrupted.
func (m *multiplexor) addControl(r io.Reader) {
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case m.control <- readyEvent{kind: sourceControl, line: scanner.Text()}:
			case <-m.done:
				return
			}
		}
	}()
}

// wait blocks for at most timeout until a source is ready.
func (m *multiplexor) wait(ctx context.Context, timeout time.Duration) readyEvent {
	if ctx.Err() != nil {
		return readyEvent{kind: sourceCanceled}
	}
	select {
	case ev := <-m.control:
		return ev
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return readyEvent{kind: sourceCanceled}
	case ev := <-m.control:
		return ev
	case ev := <-m.events:
		return ev
	case <-timer.C:
		return readyEvent{kind: sourceTimeout}
	}
}

// stop releases the readers. The caller MUST close the endpoints before
// calling join so that readers blocked in ReadFrom return.
func (m *multiplexor) stop() {
	m.once.Do(func() { close(m.done) })
}

// join waits for the endpoint readers to return.
func (m *multiplexor) join() {
	m.wg.Wait()
}
