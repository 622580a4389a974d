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

// Package ipc launches the shared memory benchmark binaries: a producer
// (server), its consumers (clients) and the shared memory removal tool.
package ipc

import (
	"strings"

	"github.com/pkg/errors"
)

// ReadyMarker is printed by the producer once its queue exists in shared memory.
const ReadyMarker = "Found or created queue"

// Statistics accepted by the consumer --stats option.
const (
	StatLatency    = "latency"
	StatThroughput = "throughput"
	StatInterval   = "interval"
)

// silentLogLevel is given to consumers whose output is discarded.
const silentLogLevel = "ERROR"

// ToolType selects the queue flavour under test.
type ToolType string

const (
	// SPMC is single producer, multiple consumers queue.
	SPMC ToolType = "spmc"
	// SPSC is a set of single producer, single consumer queues.
	SPSC ToolType = "spsc"
)

// ParseToolType validates tool type name.
func ParseToolType(name string) (ToolType, error) {
	switch ToolType(strings.ToLower(name)) {
	case SPMC:
		return SPMC, nil
	case SPSC:
		return SPSC, nil
	}
	return "", errors.Errorf("unknown tool type %q, expected spmc or spsc", name)
}

// ServerBinary returns producer executable name.
func (t ToolType) ServerBinary() string {
	return string(t) + "_server"
}

// ClientBinary returns consumer executable name.
func (t ToolType) ClientBinary() string {
	return string(t) + "_client"
}

// CleanupBinary is the executable removing named shared memory.
const CleanupBinary = "remove_shared_memory"

// ValidateStats checks the consumer statistics selection. Interval statistics
// are produced only together with latency or throughput.
func ValidateStats(stats []string) error {
	if len(stats) == 0 {
		return errors.New("at least one statistic is required")
	}
	intervalOnly := true
	for _, stat := range stats {
		switch stat {
		case StatLatency, StatThroughput:
			intervalOnly = false
		case StatInterval:
		default:
			return errors.Errorf("unknown statistic %q, expected latency, throughput or interval", stat)
		}
	}
	if intervalOnly {
		return errors.New("interval statistics require latency and/or throughput")
	}
	return nil
}
