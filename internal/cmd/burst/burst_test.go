package main

import (
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ooni/medium/internal/model"
	"github.com/ooni/medium/internal/pseudotcp"
)

func TestSendCmdGetopt(t *testing.T) {
	config := newSendConfig()
	cmd := &SendCmd{}
	getopt := cmd.newGetoptParser(config)
	args := []string{"burst send", "-a", "127.0.0.1:7777", "--count", "7", "-f", "3", "-i", "10ms"}
	if err := getopt.Getopt(args, nil); err != nil {
		t.Fatal(err)
	}
	expect := newSendConfig()
	expect.Address = "127.0.0.1:7777"
	expect.Count = 7
	expect.FlowID = 3
	expect.Interval = 10 * time.Millisecond
	config.Progress, expect.Progress = nil, nil
	if diff := cmp.Diff(expect, config); diff != "" {
		t.Fatal(diff)
	}
	if !strings.Contains(cmd.Help(), "--payload-size") {
		t.Fatal("unexpected help", cmd.Help())
	}
}

func TestSendConfigValidate(t *testing.T) {
	invalid := []func(c *sendConfig){
		func(c *sendConfig) { c.Count = 0 },
		func(c *sendConfig) { c.PayloadSize = -1 },
		func(c *sendConfig) { c.PayloadSize = pseudotcp.MaxPacketSize },
		func(c *sendConfig) { c.Interval = -time.Second },
	}
	for idx, modify := range invalid {
		config := newSendConfig()
		modify(config)
		if err := config.Validate(); err == nil {
			t.Fatal("expected an error for case", idx)
		}
	}
	if err := newSendConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSinkConfigValidate(t *testing.T) {
	config := newSinkConfig()
	if err := config.Validate(); err != nil {
		t.Fatal(err)
	}
	config.Idle = 0
	if err := config.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSendToSink(t *testing.T) {
	sink, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer sink.Close()
	acks, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer acks.Close()

	sendConfig := newSendConfig()
	sendConfig.Address = sink.LocalAddr().String()
	sendConfig.Bind = "127.0.0.1:0"
	sendConfig.Count = 20
	sendConfig.FlowID = 9
	sendConfig.Progress = io.Discard
	if err := (&SendCmd{}).run(context.Background(), model.DiscardLogger, sendConfig); err != nil {
		t.Fatal(err)
	}

	// a marked packet and a malformed packet
	marked := pseudotcp.MarkECN((&pseudotcp.Header{FlowID: 4, Seq: 1}).Encode())
	client, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	for _, packet := range [][]byte{marked, {1, 2, 3}} {
		if _, err := client.WriteTo(packet, sink.LocalAddr()); err != nil {
			t.Fatal(err)
		}
	}

	sinkConfig := newSinkConfig()
	sinkConfig.Idle = 200 * time.Millisecond
	sinkConfig.ReplyTo = acks.LocalAddr().String()
	result, err := (&SinkCmd{}).run(context.Background(), model.DiscardLogger, sink, sinkConfig)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Runs) != 1 {
		t.Fatal("expected a single run", result.Runs)
	}
	for _, count := range result.Runs {
		if count != 20 {
			t.Fatal("unexpected number of packets in the run", count)
		}
	}
	result.Runs = nil
	expect := &sinkResult{
		Packets:   22,
		Marked:    1,
		Malformed: 1,
		Flows:     map[uint8]int64{9: 20, 4: 1},
	}
	if diff := cmp.Diff(expect, result); diff != "" {
		t.Fatal(diff)
	}

	acks.SetReadDeadline(time.Now().Add(time.Second))
	buffer := make([]byte, pseudotcp.MaxPacketSize)
	count, _, err := acks.ReadFrom(buffer)
	if err != nil {
		t.Fatal(err)
	}
	h, err := pseudotcp.Decode(buffer[:count])
	if err != nil {
		t.Fatal(err)
	}
	if h.Flags != pseudotcp.FlagACK || h.FlowID != 9 || h.AckSeq != 0 {
		t.Fatalf("unexpected ACK %+v", h)
	}
}
