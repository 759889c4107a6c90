package main

import (
	"context"
	"errors"
	"net"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/ooni/medium/internal/model"
	"github.com/ooni/medium/internal/pseudotcp"
	"github.com/pborman/getopt/v2"
)

// SinkCmd implements the `burst sink` command.
type SinkCmd struct{}

// sinkConfig contains the `burst sink` settings.
type sinkConfig struct {
	// Address is where to listen.
	Address string

	// Idle is how long to wait for packets before stopping.
	Idle time.Duration

	// ReplyTo OPTIONALLY is where to send an ACK for each packet.
	ReplyTo string

	// Verbose enables debug logging.
	Verbose bool
}

// newSinkConfig returns the default settings.
func newSinkConfig() *sinkConfig {
	return &sinkConfig{
		Address: "127.0.0.1:6666",
		Idle:    5 * time.Second,
	}
}

// Validate returns an error if the settings cannot be used.
func (c *sinkConfig) Validate() error {
	if c.Idle <= 0 {
		return errors.New("the idle timeout must be positive")
	}
	return nil
}

// sinkResult contains what `burst sink` observed.
type sinkResult struct {
	// Packets counts the received packets.
	Packets int64

	// Marked counts the packets with the ECN bit set.
	Marked int64

	// Malformed counts the packets we could not decode.
	Malformed int64

	// Flows counts the packets of each flow.
	Flows map[uint8]int64

	// Runs counts the packets of each `burst send` run.
	Runs map[uuid.UUID]int64
}

// Help returns the command help.
func (cmd *SinkCmd) Help() string {
	return makeHelp(cmd, cmd.newGetoptParser(newSinkConfig()))
}

// BriefDescription returns a brief description of the command.
func (cmd *SinkCmd) BriefDescription() string {
	return "receives packets and counts those carrying the ECN mark"
}

// Main is the main of the `burst sink` command.
func (cmd *SinkCmd) Main(args []string) {
	config := newSinkConfig()
	getopt := cmd.newGetoptParser(config)
	getopt.Parse(args)
	mustNotHavePositionalArguments(getopt, "sink")
	fatalOnError(config.Validate())
	logger := newLogger(config.Verbose)
	conn, err := net.ListenPacket("udp", config.Address)
	fatalOnError(err)
	defer conn.Close()
	result, err := cmd.run(context.Background(), logger, conn, config)
	fatalOnError(err)
	cmd.report(logger, result)
	if result.Packets <= 0 {
		os.Exit(1)
	}
}

// newGetoptParser returns the getopt parser for the sink command.
func (cmd *SinkCmd) newGetoptParser(config *sinkConfig) *getopt.Set {
	getopt := getopt.New()
	getopt.SetProgram("burst sink")
	getopt.SetParameters("")
	getopt.FlagLong(&config.Address, "address", 'a', "address where to receive packets")
	getopt.FlagLong(&config.Idle, "idle", 'i', "stop after not receiving packets for this long")
	getopt.FlagLong(&config.ReplyTo, "reply-to", 'r', "OPTIONAL address where to send ACKs")
	getopt.FlagLong(&config.Verbose, "verbose", 'v', "log every packet")
	return getopt
}

// run receives packets from conn until it has been idle for config.Idle.
func (cmd *SinkCmd) run(
	ctx context.Context, logger model.Logger, conn net.PacketConn, config *sinkConfig) (*sinkResult, error) {
	var replyTo net.Addr
	if config.ReplyTo != "" {
		addr, err := net.ResolveUDPAddr("udp", config.ReplyTo)
		if err != nil {
			return nil, err
		}
		replyTo = addr
	}
	result := &sinkResult{
		Flows: map[uint8]int64{},
		Runs:  map[uuid.UUID]int64{},
	}
	buffer := make([]byte, pseudotcp.MaxPacketSize)
	for ctx.Err() == nil {
		conn.SetReadDeadline(time.Now().Add(config.Idle))
		count, _, err := conn.ReadFrom(buffer)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			break
		}
		if err != nil {
			return nil, err
		}
		result.Packets++
		d := pseudotcp.Dissect(buffer[:count])
		if d.Err != nil {
			logger.Warnf("malformed packet %x: %s", buffer[:count], d.Err.Error())
			result.Malformed++
			continue
		}
		result.Flows[d.Header.FlowID]++
		if runID, err := uuid.FromBytes(d.Payload[:min(len(d.Payload), 16)]); err == nil {
			result.Runs[runID]++
		}
		if d.Header.ECNSet() {
			logger.Infof("flow %d: seq %d carries the ECN mark", d.Header.FlowID, d.Header.Seq)
			result.Marked++
		}
		logger.Debugf("received %x", buffer[:count])
		if replyTo != nil {
			cmd.reply(logger, conn, replyTo, d.Header)
		}
	}
	return result, nil
}

// reply acknowledges the packet with the given header.
func (cmd *SinkCmd) reply(logger model.Logger, conn net.PacketConn, addr net.Addr, h *pseudotcp.Header) {
	ack := pseudotcp.Header{
		FlowID: h.FlowID,
		Flags:  pseudotcp.FlagACK,
		AckSeq: h.Seq,
		Window: h.Window,
	}
	if _, err := conn.WriteTo(ack.Encode(), addr); err != nil {
		logger.Warnf("cannot send ACK: %s", err.Error())
	}
}

// report logs the result.
func (cmd *SinkCmd) report(logger model.Logger, result *sinkResult) {
	logger.Infof("received %d packets (%d malformed), %d with the ECN mark",
		result.Packets, result.Malformed, result.Marked)
	var flows []int
	for flowID := range result.Flows {
		flows = append(flows, int(flowID))
	}
	sort.Ints(flows)
	for _, flowID := range flows {
		logger.Infof("    flow %d: %d packets", flowID, result.Flows[uint8(flowID)])
	}
	for runID, count := range result.Runs {
		logger.Infof("    run %s: %d packets", runID, count)
	}
}
