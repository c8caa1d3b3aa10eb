package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lemurdb",
		Subsystem: "storage",
		Name:      "blocks_written_total",
		Help:      "Number of blocks completed by disk writers.",
	})

	tuplesWritten = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lemurdb",
		Subsystem: "storage",
		Name:      "tuples_written_total",
		Help:      "Number of tuples added to disk writers.",
	})

	blocksRead = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lemurdb",
		Subsystem: "storage",
		Name:      "blocks_read_total",
		Help:      "Number of full blocks read by disk scans.",
	})
)
