// Package medium implements a UDP relay that sits between the sender and
// the receiver of the pseudo-TCP transport and impairs the sender->receiver
// path once traffic exceeds a configured number of packets per second.
//
// The relay is a single loop. Reader goroutines only hand datagrams and
// control lines to the loop, which alone owns the [impair.RateWindow], the
// [impair.Policy] and the forwarding decisions.
package medium

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ooni/medium/internal/impair"
	"github.com/ooni/medium/internal/model"
	"github.com/ooni/medium/internal/pseudotcp"
)

// Relay is the impairment relay. The zero value is invalid; fill all the
// fields marked as MANDATORY before calling [*Relay.Run].
type Relay struct {
	// Control is the OPTIONAL line-oriented control input. The
	// [QuitCommand] line stops the relay.
	Control io.Reader

	// Debug OPTIONALLY logs the raw bytes of each datagram.
	Debug bool

	// Dumper is the OPTIONAL observer of emitted datagrams.
	Dumper PacketDumper

	// Logger is the MANDATORY logger.
	Logger model.Logger

	// Policy is the MANDATORY impairment policy.
	Policy *impair.Policy

	// ReceiverSide is the MANDATORY endpoint receiving from the receiver
	// and forwarding to the sender.
	ReceiverSide *Endpoint

	// ReportSeconds OPTIONALLY logs the sender packet count of each window.
	ReportSeconds bool

	// SenderSide is the MANDATORY endpoint receiving from the sender
	// and forwarding to the receiver.
	SenderSide *Endpoint

	// Stats contains the relay counters. Read it after Run returns.
	Stats Stats

	// TimeNow is the OPTIONAL clock; we use time.Now when nil.
	TimeNow func() time.Time

	// Verbose OPTIONALLY logs the decoded header of each datagram.
	Verbose bool
}

// Run runs the relay loop until the control input contains the quit
// command or ctx is done. Run closes both endpoints before returning.
// You MUST NOT call this function more than once.
func (r *Relay) Run(ctx context.Context) error {
	logger := model.ValidLoggerOrDefault(r.Logger)
	now := r.TimeNow
	if now == nil {
		now = time.Now
	}

	mux := newMultiplexor()
	mux.addEndpoint(sourceSender, r.SenderSide)
	mux.addEndpoint(sourceReceiver, r.ReceiverSide)
	if r.Control != nil {
		mux.addControl(r.Control)
	}
	defer func() {
		mux.stop()
		r.SenderSide.Close()
		r.ReceiverSide.Close()
		mux.join()
	}()

	for _, ep := range []*Endpoint{r.SenderSide, r.ReceiverSide} {
		logger.Infof("medium: %s: %s -> %s", ep.Name, ep.Conn.LocalAddr(), ep.Peer)
	}
	logger.Infof("medium: mode=%s limit=%d", r.Policy.Config().Mode, r.Policy.Config().Limit)

	window := impair.NewRateWindow(now())
	for {
		if count, reset := window.MaybeReset(now()); reset {
			r.Stats.observeWindow(count)
			if r.ReportSeconds {
				logger.Infof("%d packets received last second", count)
			}
		}

		timeout := window.Remaining(now())
		if timeout <= 0 || timeout > impair.WindowDuration {
			timeout = impair.WindowDuration
		}

		ev := mux.wait(ctx, timeout)
		switch ev.kind {
		case sourceTimeout:
			// nothing

		case sourceCanceled:
			logger.Infof("medium: interrupted: %s", ctx.Err())
			return nil

		case sourceSender:
			r.onSenderDatagram(logger, window, ev)

		case sourceReceiver:
			r.onReceiverDatagram(logger, ev)

		case sourceControl:
			if IsQuitCommand(ev.line) {
				logger.Info("medium: quit requested")
				return nil
			}

		default:
			panic(fmt.Sprintf("medium: unhandled source kind: %d", ev.kind))
		}
	}
}

// onSenderDatagram accounts for and impairs a sender datagram.
func (r *Relay) onSenderDatagram(logger model.Logger, window *impair.RateWindow, ev readyEvent) {
	if ev.err != nil {
		r.onIOError(logger, r.SenderSide, DirectionSenderToReceiver, "read", ev.err)
		return
	}
	window.Increment()
	decision := r.Policy.Decide(window)
	r.Stats.observeDecision(decision)
	datagram := ev.datagram
	switch decision {
	case impair.DecisionPass:
		// nothing

	case impair.DecisionDrop:
		logger.Debugf("medium: dropping packet #%d of this window", window.Count)
		r.diagnose(logger, DirectionSenderToReceiver, datagram)
		return

	case impair.DecisionTagAndPass:
		logger.Debugf("medium: tagging packet #%d of this window", window.Count)
		datagram = pseudotcp.MarkECN(datagram)

	default:
		panic(fmt.Sprintf("medium: unhandled decision: %s", decision))
	}
	r.forward(logger, DirectionSenderToReceiver, r.SenderSide, datagram)
	r.diagnose(logger, DirectionSenderToReceiver, datagram)
}

// onReceiverDatagram forwards a receiver datagram unmodified.
func (r *Relay) onReceiverDatagram(logger model.Logger, ev readyEvent) {
	if ev.err != nil {
		r.onIOError(logger, r.ReceiverSide, DirectionReceiverToSender, "read", ev.err)
		return
	}
	r.Stats.observePassthrough()
	r.forward(logger, DirectionReceiverToSender, r.ReceiverSide, ev.datagram)
	r.diagnose(logger, DirectionReceiverToSender, ev.datagram)
}

// forward sends datagram using ep. A failed write loses the datagram.
func (r *Relay) forward(logger model.Logger, dir Direction, ep *Endpoint, datagram []byte) {
	if err := ep.Forward(datagram); err != nil {
		r.onIOError(logger, ep, dir, "write", err)
		return
	}
	r.Stats.observeForward(dir)
	if r.Dumper != nil {
		if err := r.Dumper.Dump(ep.Conn.LocalAddr(), ep.Peer, datagram); err != nil {
			logger.Warnf("medium: cannot dump packet: %s", err.Error())
		}
	}
}

// onIOError accounts for a socket error of ep and logs it when
// diagnostics are enabled. The loop continues regardless.
func (r *Relay) onIOError(logger model.Logger, ep *Endpoint, dir Direction, operation string, err error) {
	r.Stats.observeError(dir, operation)
	if r.Verbose || r.Debug {
		logger.Warnf("medium: %s: %s %s failed: %s", ep.Name, dir, operation, err.Error())
	}
}

// diagnose logs the datagram according to the Debug and Verbose settings.
func (r *Relay) diagnose(logger model.Logger, dir Direction, datagram []byte) {
	origin := "sender"
	if dir == DirectionReceiverToSender {
		origin = "receiver"
	}
	if r.Debug {
		logger.Infof("message %x received from %s", datagram, origin)
	}
	if !r.Verbose {
		return
	}
	d := pseudotcp.Dissect(datagram)
	if d.Err != nil {
		logger.Warnf("new %s message: cannot decode header: %s", origin, d.Err.Error())
		return
	}
	logger.Infof("new %s message received", origin)
	for _, line := range pseudotcp.Describe(d.Header) {
		logger.Infof("    %s", line)
	}
}
