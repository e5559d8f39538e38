// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step outcome label values.
const (
	statusSuccess = "success"
	statusError   = "error"
	statusSkipped = "skipped"
)

var (
	// Report collection metrics
	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chdiag_collection_duration_seconds",
			Help:    "Time taken to collect a complete diagnostics report",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	collectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chdiag_collection_total",
			Help: "Total number of collection runs",
		},
		[]string{"status"}, // success or error
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chdiag_step_duration_seconds",
			Help:    "Time taken by individual diagnostic steps",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"kind"}, // query, command, unit
	)

	stepTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chdiag_step_total",
			Help: "Total number of diagnostic steps by outcome",
		},
		[]string{"kind", "status"}, // success, error, skipped
	)

	connectionRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chdiag_connection_retries_total",
			Help: "Connection attempts to the server that were retried",
		},
	)

	reportItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chdiag_report_items",
			Help: "Number of items in the last collected report",
		},
	)
)

// RecordRetry counts a retried connection attempt. Its signature matches
// client.WithRetryHook.
func RecordRetry(_ uint, _ error) {
	connectionRetries.Inc()
}
