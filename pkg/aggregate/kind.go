// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aggregate

import (
	"strings"

	"github.com/coder14159/olive/pkg/sweep"
	"github.com/pkg/errors"
)

// Kind selects which result file of a run is aggregated.
type Kind string

const (
	// LatencySummary holds a single row of latency percentiles.
	LatencySummary Kind = "latency-summary"
	// LatencyInterval holds latency percentiles sampled every interval.
	LatencyInterval Kind = "latency-interval"
	// ThroughputInterval holds throughput sampled every interval.
	ThroughputInterval Kind = "throughput-interval"
)

// Kinds lists every supported kind.
var Kinds = []Kind{LatencySummary, LatencyInterval, ThroughputInterval}

// ParseKind accepts a kind name with or without the .csv extension.
func ParseKind(name string) (Kind, error) {
	name = strings.TrimSuffix(strings.ToLower(name), ".csv")
	for _, kind := range Kinds {
		if string(kind) == name {
			return kind, nil
		}
	}
	return "", errors.Wrapf(sweep.ErrConfiguration, "unknown result kind %q", name)
}

// FileName returns name of the CSV file written by the stats writer.
func (k Kind) FileName() string {
	return string(k) + ".csv"
}

// IsLatency reports whether values are nanosecond latencies.
func (k Kind) IsLatency() bool {
	return k == LatencySummary || k == LatencyInterval
}
