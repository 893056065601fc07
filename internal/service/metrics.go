package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeFound   = "found"
	outcomeNoRoute = "no_route"
	outcomeError   = "error"
)

var (
	// searchTotal counts cheapest-route searches by outcome
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_advisor_search_total",
		Help: "Total cheapest-route searches by outcome",
	}, []string{"outcome"})

	searchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_advisor_search_duration_seconds",
		Help:    "Cheapest-route search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	searchRounds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_advisor_search_rounds",
		Help:    "Rounds taken per cheapest-route search",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64},
	})

	searchExpansions = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "travel_advisor_search_expansions",
		Help:    "Search nodes expanded per cheapest-route search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// importedRecords counts records written by the bulk importer
	importedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_advisor_imported_records_total",
		Help: "Records written by the bulk importer by kind and result",
	}, []string{"kind", "result"})
)
