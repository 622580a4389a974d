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
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/coder14159/olive/pkg/conf"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/pkg/errors"
)

var (
	toolTypeFlag       = conf.NewStringFlag("tool_type", "Benchmark tool type: spmc or spsc.", string(ipc.SPMC))
	memoryNameFlag     = conf.NewStringFlag("memory_name", "Name of the shared memory segment.", "")
	timeoutFlag        = conf.NewDurationFlag("timeout", "Run time of every parameter combination.", 10*time.Second)
	startupTimeoutFlag = conf.NewDurationFlag("startup_timeout", "Time to wait for producer readiness.", 5*time.Second)
	stopGraceFlag      = conf.NewDurationFlag("stop_grace_period", "Time between interrupt and kill of a benchmark process.", 5*time.Second)
	cleanupTimeoutFlag = conf.NewDurationFlag("cleanup_timeout", "Time limit of the shared memory cleanup tool.", 10*time.Second)
	readyMarkerFlag    = conf.NewStringFlag("ready_marker", "Producer output which signals readiness.", ipc.ReadyMarker)

	serverCPUFlag = conf.NewIntFlag("server_cpu", "Bind producer to cpu id. Negative value disables binding.", -1)
	serverPGOFlag = conf.NewBoolFlag("server_pgo", "Use profile guided optimised producer binary.", false)

	clientCPUFlag = conf.NewSliceFlag("client_cpu", "Bind consumers to cpu ids. "+
		"The list may hold fewer values than consumers, the last started consumers are bound.")
	clientStatsFlag = conf.NewSliceFlag("client_stats", "Statistics written by the last started consumer: latency, throughput, interval.",
		ipc.StatLatency, ipc.StatThroughput)
	// ClientDirectoryFlag is the results root.
	ClientDirectoryFlag    = conf.NewStringFlag("client_directory", "Base directory of run results. Empty disables result files.", "")
	clientPGOFlag          = conf.NewBoolFlag("client_pgo", "Use profile guided optimised consumer binary.", false)
	directoryCollisionFlag = conf.NewStringFlag("directory_collision", "Populated run directory handling: skip or version.", string(SkipExisting))

	// BaseDirFlag is the project directory holding the build tree.
	BaseDirFlag = conf.NewStringFlag("base_dir", "Project directory with makefile and build tree.", ".")
	binDirFlag  = conf.NewStringFlag("bin_dir", "Directory of benchmark binaries. Overrides build tree layout.", "")
	// BuildTypeFlag selects binaries of the build tree.
	BuildTypeFlag = conf.NewStringFlag("build_type", "Build type of binaries: release, debug, pgo_profile or pgo_release.", ipc.Release.String())
	// JobsFlag is the make parallelism.
	JobsFlag = conf.NewIntFlag("jobs", "Parallel make jobs.", runtime.NumCPU())
	// BuildTimeoutFlag limits a single make invocation.
	BuildTimeoutFlag = conf.NewDurationFlag("build_timeout", "Time limit of building a single binary.", 10*time.Minute)
)

func configurationError(err error) error {
	return errors.Wrap(sweep.ErrConfiguration, err.Error())
}

// BinaryPath returns path of benchmark binary name built with buildType.
func BinaryPath(name string, buildType ipc.BuildType) string {
	if binDir := binDirFlag.Value(); binDir != "" {
		return filepath.Join(binDir, name)
	}
	return filepath.Join(BaseDirFlag.Value(), ipc.BinDir(buildType), name)
}

// BuildTypes returns build types of producer and consumer binaries.
func BuildTypes() (server, client ipc.BuildType, err error) {
	buildType, err := ipc.ParseBuildType(BuildTypeFlag.Value())
	if err != nil {
		return buildType, buildType, configurationError(err)
	}
	server, client = buildType, buildType
	if serverPGOFlag.Value() {
		server = ipc.PGORelease
	}
	if clientPGOFlag.Value() {
		client = ipc.PGORelease
	}
	return server, client, nil
}

// ConfigFromFlags assembles run configuration from parsed flags. Callers
// may adjust the result and must Validate it.
func ConfigFromFlags() (Config, error) {
	toolType, err := ipc.ParseToolType(toolTypeFlag.Value())
	if err != nil {
		return Config{}, configurationError(err)
	}
	serverBuild, clientBuild, err := BuildTypes()
	if err != nil {
		return Config{}, err
	}
	serverCPU, err := isolation.ParseCPU(strconv.Itoa(serverCPUFlag.Value()))
	if err != nil {
		return Config{}, configurationError(err)
	}
	clientCPUs, err := isolation.ParseCPUs(clientCPUFlag.Value())
	if err != nil {
		return Config{}, configurationError(err)
	}
	collision, err := ParseCollisionPolicy(directoryCollisionFlag.Value())
	if err != nil {
		return Config{}, err
	}

	config := Config{
		ToolType:       toolType,
		MemoryName:     memoryNameFlag.Value(),
		ServerPath:     BinaryPath(toolType.ServerBinary(), serverBuild),
		ClientPath:     BinaryPath(toolType.ClientBinary(), clientBuild),
		CleanupPath:    BinaryPath(ipc.CleanupBinary, ipc.Release),
		Duration:       timeoutFlag.Value(),
		StartupTimeout: startupTimeoutFlag.Value(),
		StopGrace:      stopGraceFlag.Value(),
		CleanupTimeout: cleanupTimeoutFlag.Value(),
		ReadyMarker:    readyMarkerFlag.Value(),
		ServerCPU:      serverCPU,
		ClientCPUs:     clientCPUs,
		Stats:          clientStatsFlag.Value(),
		ResultsRoot:    ClientDirectoryFlag.Value(),
		Collision:      collision,
		LogLevel:       conf.BinaryLogLevel(),
	}
	return config, nil
}
