package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ooni/medium/internal/model"
	"github.com/ooni/medium/internal/pseudotcp"
	"github.com/pborman/getopt/v2"
	"github.com/schollz/progressbar/v3"
)

// SendCmd implements the `burst send` command.
type SendCmd struct{}

// sendConfig contains the `burst send` settings.
type sendConfig struct {
	// Address is where to send packets.
	Address string

	// Bind is the local address to use.
	Bind string

	// Count is the number of packets to send.
	Count int

	// FlowID is the flow ID of the packets.
	FlowID uint8

	// Interval is the time to wait between packets.
	Interval time.Duration

	// PayloadSize is the size of the payload following the header. The
	// payload starts with the run ID when it is large enough.
	PayloadSize int

	// Progress is where to draw the progress bar.
	Progress io.Writer

	// Verbose enables debug logging.
	Verbose bool
}

// newSendConfig returns the default settings.
func newSendConfig() *sendConfig {
	return &sendConfig{
		Address:     "127.0.0.1:4444",
		Bind:        "127.0.0.1:3333",
		Count:       150,
		FlowID:      1,
		PayloadSize: 16,
		Progress:    os.Stderr,
	}
}

// Validate returns an error if the settings cannot be used.
func (c *sendConfig) Validate() error {
	if c.Count <= 0 {
		return errors.New("the number of packets must be positive")
	}
	if c.PayloadSize < 0 || c.PayloadSize > pseudotcp.MaxPacketSize-pseudotcp.HeaderSize {
		return errors.New("invalid payload size")
	}
	if c.Interval < 0 {
		return errors.New("negative interval")
	}
	return nil
}

// Help returns the command help.
func (cmd *SendCmd) Help() string {
	return makeHelp(cmd, cmd.newGetoptParser(newSendConfig()))
}

// BriefDescription returns a brief description of the command.
func (cmd *SendCmd) BriefDescription() string {
	return "sends a burst of packets with increasing sequence numbers"
}

// Main is the main of the `burst send` command.
func (cmd *SendCmd) Main(args []string) {
	config := newSendConfig()
	getopt := cmd.newGetoptParser(config)
	getopt.Parse(args)
	mustNotHavePositionalArguments(getopt, "send")
	fatalOnError(config.Validate())
	fatalOnError(cmd.run(context.Background(), newLogger(config.Verbose), config))
}

// newGetoptParser returns the getopt parser for the send command.
func (cmd *SendCmd) newGetoptParser(config *sendConfig) *getopt.Set {
	getopt := getopt.New()
	getopt.SetProgram("burst send")
	getopt.SetParameters("")
	getopt.FlagLong(&config.Address, "address", 'a', "address of the medium sender side")
	getopt.FlagLong(&config.Bind, "bind", 'b', "local address to send from")
	getopt.FlagLong(&config.Count, "count", 'c', "number of packets to send")
	getopt.FlagLong(&config.FlowID, "flow-id", 'f', "flow ID to use")
	getopt.FlagLong(&config.Interval, "interval", 'i', "time to wait between packets")
	getopt.FlagLong(&config.PayloadSize, "payload-size", 0, "payload bytes following the header")
	getopt.FlagLong(&config.Verbose, "verbose", 'v', "log every packet")
	return getopt
}

// run sends the packets.
func (cmd *SendCmd) run(ctx context.Context, logger model.Logger, config *sendConfig) error {
	peer, err := net.ResolveUDPAddr("udp", config.Address)
	if err != nil {
		return err
	}
	lc := &net.ListenConfig{}
	conn, err := lc.ListenPacket(ctx, "udp", config.Bind)
	if err != nil {
		return err
	}
	defer conn.Close()
	runID := uuid.Must(uuid.NewRandom())
	payload := make([]byte, config.PayloadSize)
	copy(payload, runID[:])
	logger.Infof("run %s: sending %d packets to %s", runID, config.Count, peer)
	bar := progressbar.NewOptions64(
		int64(config.Count),
		progressbar.OptionSetDescription("sending"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(config.Progress, "\n")
		}),
		progressbar.OptionSetWriter(config.Progress),
	)
	t0 := time.Now()
	for idx := 0; idx < config.Count; idx++ {
		header := pseudotcp.Header{
			FlowID: config.FlowID,
			Flags:  pseudotcp.FlagACK,
			Seq:    uint8(idx),
			Window: pseudotcp.MaxPacketSize,
		}
		if idx == 0 {
			header.Flags = pseudotcp.FlagSYN
		}
		packet, err := pseudotcp.Serialize(header, payload)
		if err != nil {
			return err
		}
		if _, err := conn.WriteTo(packet, peer); err != nil {
			return err
		}
		bar.Add(1)
		logger.Debugf("sent %x", packet)
		if config.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Interval):
			}
		}
	}
	logger.Infof("sent %d packets to %s in %s", config.Count, peer, time.Since(t0))
	return nil
}
