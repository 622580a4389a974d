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

package executor

import (
	"os"
	"time"
)

// TaskState is an enum presenting current task state.
type TaskState int

const (
	// SPAWNED task state means that process was created but its output is not watched yet.
	SPAWNED TaskState = iota
	// RUNNING task state means that task is still running.
	RUNNING
	// READY task state means that readiness marker was observed in task output.
	READY
	// DRAINING task state means that task was asked to stop and did not exit yet.
	DRAINING
	// TERMINATED task state means that task completed or stopped.
	TERMINATED
)

func (s TaskState) String() string {
	switch s {
	case SPAWNED:
		return "SPAWNED"
	case RUNNING:
		return "RUNNING"
	case READY:
		return "READY"
	case DRAINING:
		return "DRAINING"
	case TERMINATED:
		return "TERMINATED"
	}
	return "UNKNOWN"
}

// StopResult tells how the task ended after Stop.
type StopResult int

const (
	// Stopped means that task exited within grace period (or was already terminated).
	Stopped StopResult = iota
	// ForcedExit means that task was killed after grace period elapsed.
	ForcedExit
)

func (r StopResult) String() string {
	if r == ForcedExit {
		return "ForcedExit"
	}
	return "Stopped"
}

// MarkerOutcome is the result of waiting for a readiness marker.
type MarkerOutcome int

const (
	// MarkerReady means that a line containing the marker was read.
	MarkerReady MarkerOutcome = iota
	// MarkerTimedOut means that timeout elapsed first. Task may still be running.
	MarkerTimedOut
	// MarkerProcessExited means that task exited before printing the marker.
	MarkerProcessExited
)

func (o MarkerOutcome) String() string {
	switch o {
	case MarkerReady:
		return "Ready"
	case MarkerTimedOut:
		return "TimedOut"
	case MarkerProcessExited:
		return "ProcessExited"
	}
	return "Unknown"
}

// MarkerResult is returned by AwaitMarker. ExitCode is set only for MarkerProcessExited.
type MarkerResult struct {
	Outcome  MarkerOutcome
	ExitCode int
}

// TaskHandle represents a process which can be stopped or monitored.
type TaskHandle interface {
	// Stop interrupts the task and kills it when it does not exit within grace period.
	Stop(grace time.Duration) (StopResult, error)
	// Status returns a state of the task.
	Status() TaskState
	// ExitCode returns a exitCode. If task is not terminated it returns error.
	// Tasks terminated by a signal report 128 + signal number.
	ExitCode() (int, error)
	// AwaitMarker blocks until a stdout line contains marker, timeout elapses or
	// task exits. Every line read is passed to observer (which can be nil).
	AwaitMarker(marker string, timeout time.Duration, observer LineObserver) (MarkerResult, error)
	// StdoutFile returns a file handle for file to the task's stdout file.
	StdoutFile() (*os.File, error)
	// StderrFile returns a file handle for file to the task's stderr file.
	StderrFile() (*os.File, error)
	// Wait does the blocking wait for the task completion in case of zero timeout.
	// It returns true if task is terminated.
	Wait(timeout time.Duration) bool
	// Clean closes the task's stdout & stderr files.
	Clean() error
	// EraseOutput removes task's stdout & stderr files.
	EraseOutput() error
	// Name returns binary name and pid for logs.
	Name() string
}
