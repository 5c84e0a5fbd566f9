/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	FamilyName = "eureka_client"

	success = "SUCCESS"
	failure = "FAILURE"
)

// Pxx are the latency quantiles and their allowed errors.
var Pxx = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: FamilyName,
			Subsystem: "registry",
			Name:      "request_total",
			Help:      "Counter of requests sent to the registry",
		}, []string{"operation", "status"})

	requestLatency = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace:  FamilyName,
			Subsystem:  "registry",
			Name:       "request_durations_microseconds",
			Help:       "Latency of requests sent to the registry",
			Objectives: Pxx,
		}, []string{"operation", "status"})

	registryInstances = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: FamilyName,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of keys in the local registry cache indexes",
		}, []string{"index"})

	reRegistrations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: FamilyName,
			Subsystem: "lifecycle",
			Name:      "reregister_total",
			Help:      "Counter of re-registrations triggered by failed heartbeats",
		})
)

const (
	OperationRegister   = "register"
	OperationHeartbeat  = "heartbeat"
	OperationDeregister = "deregister"
	OperationFetch      = "fetch"
)

func init() {
	prometheus.MustRegister(requestCounter, requestLatency, registryInstances, reRegistrations)
}

func ReportRequest(operation string, err error, start time.Time) {
	elapsed := float64(time.Since(start).Nanoseconds()) / float64(time.Microsecond)
	status := success
	if err != nil {
		status = failure
	}
	requestLatency.WithLabelValues(operation, status).Observe(elapsed)
	requestCounter.WithLabelValues(operation, status).Inc()
}

func ReportRegister(err error, start time.Time) {
	ReportRequest(OperationRegister, err, start)
}

func ReportHeartbeat(err error, start time.Time) {
	ReportRequest(OperationHeartbeat, err, start)
}

func ReportDeregister(err error, start time.Time) {
	ReportRequest(OperationDeregister, err, start)
}

func ReportFetch(err error, start time.Time) {
	ReportRequest(OperationFetch, err, start)
}

func ReportReRegister() {
	reRegistrations.Inc()
}

// SetCacheSize records the number of distinct apps and vips after a
// successful fetch.
func SetCacheSize(apps, vips int) {
	registryInstances.WithLabelValues("app").Set(float64(apps))
	registryInstances.WithLabelValues("vip").Set(float64(vips))
}
