package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ChunkAttempts.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	ChunkAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_chunk_attempts_total",
		Help: "Ranged transfer attempts by source and outcome",
	}, []string{"source", "outcome"})

	Failovers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_failovers_total",
		Help: "Chunks switched from the official source to the mirror",
	})

	BytesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mcfetch_downloaded_bytes_total",
		Help: "Bytes written to destination files",
	})

	TasksFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mcfetch_tasks_finished_total",
		Help: "Tasks that reached a terminal status",
	}, []string{"status"})

	PoolInUse = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mcfetch_pool_slots_in_use",
		Help: "Worker pool slots currently held by transfers",
	})
)
