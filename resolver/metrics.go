/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricBuilds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "neoacl",
		Subsystem: "resolver",
		Name:      "snapshot_builds_total",
		Help:      "Session access snapshots built (cache misses).",
	})

	metricCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "neoacl",
		Subsystem: "resolver",
		Name:      "cache_hits_total",
		Help:      "Session access snapshots served from the cache.",
	})

	metricDenials = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "neoacl",
		Subsystem: "resolver",
		Name:      "access_denials_total",
		Help:      "Privilege checks that failed.",
	})
)

func init() {
	prometheus.MustRegister(metricBuilds)
	prometheus.MustRegister(metricCacheHits)
	prometheus.MustRegister(metricDenials)
}
