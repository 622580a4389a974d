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

package ipc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrProducerNotReady is the cause of errors returned when producer does not
// report readiness.
var ErrProducerNotReady = errors.New("producer not ready")

// ProducerConfig holds producer settings shared by every run of a sweep.
type ProducerConfig struct {
	Path           string
	ToolType       ToolType
	MemoryName     string
	LogLevel       string
	CPU            isolation.CPU
	ReadyMarker    string
	StartupTimeout time.Duration
}

// DefaultProducerConfig returns producer settings with readiness marker and
// startup timeout set.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		ToolType:       SPMC,
		LogLevel:       "INFO",
		ReadyMarker:    ReadyMarker,
		StartupTimeout: 5 * time.Second,
	}
}

// Producer is a launcher for the queue producer of one parameter combination.
type Producer struct {
	exec        executor.Executor
	conf        ProducerConfig
	combination sweep.Combination
}

var _ executor.Launcher = Producer{}

// NewProducer is a constructor for Producer.
func NewProducer(exec executor.Executor, config ProducerConfig, combination sweep.Combination) Producer {
	return Producer{
		exec:        exec,
		conf:        config,
		combination: combination,
	}
}

func (p Producer) buildCommand() executor.Command {
	args := append([]string{}, p.conf.CPU.Args()...)
	args = append(args,
		"--name", p.conf.MemoryName,
		"--message_size", p.combination.MessageSize(),
		"--queue_size", p.combination.QueueSize(),
		"--rate", p.combination.Rate(),
		"--log_level", p.conf.LogLevel,
	)
	if p.conf.ToolType == SPSC {
		args = append(args, "--clients", strconv.Itoa(p.combination.ClientCount()))
	}
	return executor.Command{Path: p.conf.Path, Args: args}
}

// Launch starts the producer and waits for its readiness marker. The producer
// is stopped when it does not become ready within startup timeout.
func (p Producer) Launch() (executor.TaskHandle, error) {
	command := p.buildCommand()
	task, err := p.exec.Execute(command)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot start producer %q", command.Name())
	}

	result, err := task.AwaitMarker(p.conf.ReadyMarker, p.conf.StartupTimeout,
		executor.LogLines(task.Name(), logrus.InfoLevel))
	if err == nil && result.Outcome == executor.MarkerReady {
		return task, nil
	}

	var reason string
	switch {
	case err != nil:
		reason = err.Error()
	case result.Outcome == executor.MarkerProcessExited:
		reason = fmt.Sprintf("exited with code %d before printing %q", result.ExitCode, p.conf.ReadyMarker)
	default:
		reason = fmt.Sprintf("did not print %q within %s", p.conf.ReadyMarker, p.conf.StartupTimeout)
	}

	if _, stopErr := task.Stop(time.Second); stopErr != nil {
		logrus.Errorf("failed to stop producer %q: %v", task.Name(), stopErr)
	}
	executor.LogUnsucessfulExecution(command.String(), task)
	if cleanErr := task.Clean(); cleanErr != nil {
		logrus.Errorf("failed to cleanup producer task: %v", cleanErr)
	}
	return nil, errors.Wrapf(ErrProducerNotReady, "producer %q %s", command.Name(), reason)
}

func (p Producer) String() string {
	return fmt.Sprintf("%s producer (%s)", p.conf.ToolType, p.combination)
}
