package medium

//
// Statistics collected by the relay loop
//

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/ooni/medium/internal/humanize"
	"github.com/ooni/medium/internal/impair"
)

// Stats contains the counters of a [*Relay]. The relay loop is the only
// writer; read them after [*Relay.Run] has returned.
type Stats struct {
	// Forwarded counts the packets forwarded in each direction.
	Forwarded [2]int64

	// Dropped counts the sender packets dropped by the policy.
	Dropped int64

	// Tagged counts the sender packets forwarded with the ECN bit set.
	Tagged int64

	// Errors counts failed reads and writes.
	Errors int64

	// Windows contains the sender packet count of each finished window.
	Windows []float64
}

// observeDecision accounts for a policy decision.
func (s *Stats) observeDecision(decision impair.Decision) {
	metricPacketsCount.WithLabelValues(DirectionSenderToReceiver.String(), decision.String()).Inc()
	switch decision {
	case impair.DecisionDrop:
		s.Dropped++
	case impair.DecisionTagAndPass:
		s.Tagged++
	}
}

// observePassthrough accounts for a receiver packet.
func (s *Stats) observePassthrough() {
	metricPacketsCount.WithLabelValues(DirectionReceiverToSender.String(), impair.DecisionPass.String()).Inc()
}

// observeForward accounts for a successfully forwarded packet.
func (s *Stats) observeForward(dir Direction) {
	s.Forwarded[dir]++
}

// observeError accounts for a socket error.
func (s *Stats) observeError(dir Direction, operation string) {
	metricIOErrorsCount.WithLabelValues(dir.String(), operation).Inc()
	s.Errors++
}

// observeWindow accounts for a finished window.
func (s *Stats) observeWindow(count int64) {
	metricWindowPackets.Set(float64(count))
	metricWindowPacketsSummary.Observe(float64(count))
	s.Windows = append(s.Windows, float64(count))
}

// Summary describes the finished windows, or returns an error when no
// window has finished yet.
func (s *Stats) Summary() (string, error) {
	mean, err := stats.Mean(s.Windows)
	if err != nil {
		return "", err
	}
	median, err := stats.Median(s.Windows)
	if err != nil {
		return "", err
	}
	max, err := stats.Max(s.Windows)
	if err != nil {
		return "", err
	}
	summary := fmt.Sprintf(
		"windows: %d; sender rate: mean %s, median %s, max %s; forwarded: %d->, %d<-; dropped: %d; tagged: %d; errors: %d",
		len(s.Windows),
		humanize.SI(mean, "pkt/s"),
		humanize.SI(median, "pkt/s"),
		humanize.SI(max, "pkt/s"),
		s.Forwarded[DirectionSenderToReceiver],
		s.Forwarded[DirectionReceiverToSender],
		s.Dropped,
		s.Tagged,
		s.Errors,
	)
	return summary, nil
}
