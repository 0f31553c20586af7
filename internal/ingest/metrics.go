package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalIngested tracks tools that made it through the whole pipeline.
	TotalIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tooldir_tools_ingested_total",
		Help: "The total number of tools successfully ingested.",
	})
	// TotalProbeFailures tracks domains that failed the reachability probe.
	TotalProbeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tooldir_probe_failures_total",
		Help: "The total number of failed domain reachability probes.",
	})
	// TotalExtractionFailures tracks content-fetch and completion failures.
	TotalExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tooldir_extraction_failures_total",
		Help: "The total number of failed metadata extractions.",
	})
	// TotalFaviconFailures tracks favicon-service failures.
	TotalFaviconFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tooldir_favicon_failures_total",
		Help: "The total number of failed favicon fetches.",
	})
	// TotalCompletions tracks requests sent to the language model.
	TotalCompletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tooldir_completions_total",
		Help: "The total number of language model completion requests sent.",
	})
)
