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

package experiment

import (
	"time"

	"github.com/coder14159/olive/pkg/sweep"
	"github.com/sirupsen/logrus"
)

// RunState is the lifecycle stage of a single benchmark run.
type RunState int

const (
	// PENDING run has not started yet.
	PENDING RunState = iota
	// CLEANING removes shared memory left by previous runs.
	CLEANING
	// STARTING_PRODUCER waits for producer readiness.
	STARTING_PRODUCER
	// STARTING_CONSUMERS spawns consumers.
	STARTING_CONSUMERS
	// RUNNING producer and consumers exchange messages.
	RUNNING
	// DRAINING stops consumers and then producer.
	DRAINING
	// FINISHED run has released every resource.
	FINISHED
)

var runStateNames = []string{
	"PENDING", "CLEANING", "STARTING_PRODUCER", "STARTING_CONSUMERS", "RUNNING", "DRAINING", "FINISHED",
}

func (s RunState) String() string {
	if int(s) < len(runStateNames) {
		return runStateNames[s]
	}
	return "UNKNOWN"
}

// OutcomeKind tells how a run ended.
type OutcomeKind int

const (
	// Completed run ran for the whole duration.
	Completed OutcomeKind = iota
	// Skipped run was not started.
	Skipped
	// Failed run could not start all its processes.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Completed:
		return "completed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Reason explains skipped and failed runs.
type Reason string

const (
	// DirectoryExists means run directory was already populated.
	DirectoryExists Reason = "directory exists"
	// ProducerNotReady means producer did not print readiness marker in time.
	ProducerNotReady Reason = "producer not ready"
	// ConsumerNotStarted means a consumer could not be spawned.
	ConsumerNotStarted Reason = "consumer not started"
	// ProducerExited means producer terminated before end of run.
	ProducerExited Reason = "producer exited"
)

// RunOutcome is the result of a single run.
type RunOutcome struct {
	Combination sweep.Combination
	Kind        OutcomeKind
	Reason      Reason
	// Directory is the run directory, empty when results are not written.
	Directory string
	// Err holds details of a failed run.
	Err      error
	Duration time.Duration
}

func (o RunOutcome) String() string {
	if o.Reason == "" {
		return o.Kind.String()
	}
	return o.Kind.String() + " (" + string(o.Reason) + ")"
}

// run tracks state of a single benchmark run.
type run struct {
	combination sweep.Combination
	state       RunState
	log         *logrus.Entry
}

func newRun(c sweep.Combination) *run {
	return &run{combination: c, state: PENDING, log: logrus.WithFields(c.Fields())}
}

func (r *run) setState(state RunState) {
	r.log.Debugf("Run state %s -> %s", r.state, state)
	r.state = state
}
