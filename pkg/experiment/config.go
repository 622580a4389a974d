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
	"strings"
	"time"

	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/pkg/errors"
)

// ErrSetupFailure is returned when shared memory cleanup or run directory
// preparation fails. It stops the whole sweep.
var ErrSetupFailure = errors.New("setup failure")

// CollisionPolicy decides what happens when a run directory is already populated.
type CollisionPolicy string

const (
	// SkipExisting leaves populated run directory untouched and skips the run.
	SkipExisting CollisionPolicy = "skip"
	// VersionExisting writes results to the first free vK subdirectory.
	VersionExisting CollisionPolicy = "version"
)

// ParseCollisionPolicy validates policy name.
func ParseCollisionPolicy(name string) (CollisionPolicy, error) {
	switch CollisionPolicy(strings.ToLower(name)) {
	case SkipExisting:
		return SkipExisting, nil
	case VersionExisting:
		return VersionExisting, nil
	}
	return "", errors.Wrapf(sweep.ErrConfiguration, "unknown directory collision policy %q, expected skip or version", name)
}

// Config is everything a run needs besides the parameter combination.
// It is assembled once from flags and never modified afterwards.
type Config struct {
	ToolType    ipc.ToolType
	MemoryName  string
	ServerPath  string
	ClientPath  string
	CleanupPath string

	// Duration is how long producer and consumers run.
	Duration       time.Duration
	StartupTimeout time.Duration
	StopGrace      time.Duration
	CleanupTimeout time.Duration
	ReadyMarker    string

	ServerCPU  isolation.CPU
	ClientCPUs []isolation.CPU

	// Stats selects statistics written by the last started consumer.
	Stats []string
	// ResultsRoot is the base of run directories. Empty disables result files.
	ResultsRoot string
	Collision   CollisionPolicy
	// LogLevel is passed to producer and stats writer.
	LogLevel string
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	switch {
	case c.MemoryName == "":
		return errors.Wrap(sweep.ErrConfiguration, "shared memory name is required")
	case c.ServerPath == "" || c.ClientPath == "" || c.CleanupPath == "":
		return errors.Wrap(sweep.ErrConfiguration, "producer, consumer and cleanup binaries are required")
	case c.Duration <= 0:
		return errors.Wrapf(sweep.ErrConfiguration, "run duration must be positive, got %s", c.Duration)
	case c.StartupTimeout <= 0:
		return errors.Wrapf(sweep.ErrConfiguration, "startup timeout must be positive, got %s", c.StartupTimeout)
	case c.ReadyMarker == "":
		return errors.Wrap(sweep.ErrConfiguration, "readiness marker is required")
	}
	if _, err := ParseCollisionPolicy(string(c.Collision)); err != nil {
		return err
	}
	if err := ipc.ValidateStats(c.Stats); err != nil {
		return errors.Wrap(sweep.ErrConfiguration, err.Error())
	}
	return nil
}

func (c Config) producerConfig() ipc.ProducerConfig {
	return ipc.ProducerConfig{
		Path:           c.ServerPath,
		ToolType:       c.ToolType,
		MemoryName:     c.MemoryName,
		LogLevel:       c.LogLevel,
		CPU:            c.ServerCPU,
		ReadyMarker:    c.ReadyMarker,
		StartupTimeout: c.StartupTimeout,
	}
}

func (c Config) consumerConfig(cpu isolation.CPU, prefetchSize string, statsWriter bool, directory string) ipc.ConsumerConfig {
	return ipc.ConsumerConfig{
		Path:         c.ClientPath,
		MemoryName:   c.MemoryName,
		LogLevel:     c.LogLevel,
		CPU:          cpu,
		PrefetchSize: prefetchSize,
		StatsWriter:  statsWriter,
		Stats:        c.Stats,
		Directory:    directory,
	}
}
