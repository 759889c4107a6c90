package medium

//
// Metrics definitions
//

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricPacketsCount counts relayed packets by direction and decision.
	metricPacketsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medium_packets_count",
		Help: "Total number of packets received by direction and impairment decision",
	}, []string{"direction", "decision"})

	// metricIOErrorsCount counts socket errors by direction and operation.
	metricIOErrorsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "medium_io_errors_count",
		Help: "Total number of failed socket reads and writes",
	}, []string{"direction", "operation"})

	// metricWindowPackets gauges the packets counted in the last finished window.
	metricWindowPackets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "medium_window_packets_gauge",
		Help: "Number of sender packets counted in the last finished one-second window",
	})

	// metricWindowPacketsSummary summarizes the per-window packet counts.
	metricWindowPacketsSummary = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "medium_window_packets",
		Help: "Summarizes the number of sender packets counted in each one-second window",
		Objectives: map[float64]float64{
			0.5:  0.05,
			0.9:  0.01,
			0.99: 0.001,
		},
	})
)
