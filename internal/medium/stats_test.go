package medium

import (
	"testing"

	"github.com/ooni/medium/internal/impair"
)

func TestStats(t *testing.T) {
	t.Run("Summary fails without windows", func(t *testing.T) {
		s := &Stats{}
		if _, err := s.Summary(); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("Summary describes the windows", func(t *testing.T) {
		s := &Stats{}
		s.observeDecision(impair.DecisionPass)
		s.observeDecision(impair.DecisionDrop)
		s.observeDecision(impair.DecisionTagAndPass)
		s.observeForward(DirectionSenderToReceiver)
		s.observeForward(DirectionSenderToReceiver)
		s.observePassthrough()
		s.observeForward(DirectionReceiverToSender)
		s.observeError(DirectionReceiverToSender, "write")
		for _, count := range []int64{100, 300, 2000} {
			s.observeWindow(count)
		}
		summary, err := s.Summary()
		if err != nil {
			t.Fatal(err)
		}
		expect := "windows: 3; sender rate: mean 800.00 pkt/s, median 300.00 pkt/s, " +
			"max   2.00 kpkt/s; forwarded: 2->, 1<-; dropped: 1; tagged: 1; errors: 1"
		if summary != expect {
			t.Fatalf("expected %q, got %q", expect, summary)
		}
	})
}
