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

package main

import (
	"os"
	"time"

	"github.com/coder14159/olive/pkg/conf"
	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/experiment"
	"github.com/coder14159/olive/pkg/experiment/logger"
	"github.com/coder14159/olive/pkg/metadata"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/utils/errutil"
	"github.com/coder14159/olive/pkg/visualization"
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/nu7hatch/gouuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	appName           = "ipc-pgo"
	defaultMemoryName = "spmc_pgo"
)

func main() {
	os.Exit(run())
}

func exitCode(err error) int {
	if errors.Cause(err) == sweep.ErrConfiguration {
		return experiment.ExUsage
	}
	return experiment.ExFailure
}

func withIntervalStats(stats []string) []string {
	for _, stat := range stats {
		if stat == ipc.StatInterval {
			return stats
		}
	}
	return append(append([]string(nil), stats...), ipc.StatInterval)
}

// phase builds binaries of buildType and runs the sweep with them.
func phase(name string, local executor.Executor, builder ipc.Builder, config experiment.Config,
	buildType ipc.BuildType, s sweep.Sweep, options experiment.SweepOptions) (experiment.SweepReport, error) {

	logrus.Infof("PGO phase %q with %s binaries", name, buildType)
	config, err := experiment.BuildBinaries(builder, config, buildType, buildType)
	if err != nil {
		return experiment.SweepReport{}, errors.Wrapf(err, "phase %q", name)
	}
	cleaner := ipc.NewCleaner(local, config.CleanupPath, config.CleanupTimeout)
	experiment.CleanupOnInterrupt(cleaner, config)
	report, err := experiment.RunSweep(experiment.NewOrchestrator(local, cleaner, config), s, options)
	if err != nil {
		return report, errors.Wrapf(err, "phase %q", name)
	}
	if !report.Succeeded() {
		return report, errors.Errorf("phase %q: %d of %d runs failed", name, report.Count(experiment.Failed), len(report.Outcomes))
	}
	return report, nil
}

func run() int {
	experimentStart := time.Now()

	conf.SetAppName(appName)
	conf.SetHelp(`Builds producer and consumer with profile instrumentation, runs them to gather profile data
and rebuilds them optimised with the collected profile. The optimised binaries are verified with a
second run which writes statistics to the client directory.`)
	progress := experiment.Configure()

	config, err := experiment.ConfigFromFlags()
	if err == nil {
		if config.MemoryName == "" {
			config.MemoryName = defaultMemoryName
		}
		config.Stats = withIntervalStats(config.Stats)
		err = config.Validate()
	}
	if err != nil {
		logrus.Errorf("Invalid configuration: %v", err)
		return exitCode(err)
	}
	s, err := sweep.FromFlags()
	if err != nil {
		logrus.Errorf("Invalid sweep: %v", err)
		return exitCode(err)
	}

	uid, err := uuid.NewV4()
	errutil.CheckWithContext(err, "Cannot generate experiment ID")
	experimentDirectory := logger.Initialize(appName, uid.String())

	md, err := metadata.NewFile(uid.String(), experimentDirectory)
	errutil.CheckWithContext(err, "Cannot create metadata file")
	errutil.CheckWithContext(metadata.RecordRuntimeEnv(md, experimentStart), "Cannot save runtime environment")
	errutil.CheckWithContext(md.RecordMap(experiment.SweepMetadata(s), metadata.TypeSweep), "Cannot save sweep")

	stopAll := executor.RegisterInterruptHandle()
	defer stopAll()

	local := executor.NewLocalWithOutputDir(experimentDirectory)
	builder := ipc.NewBuilder(local, experiment.BaseDirFlag.Value(),
		experiment.JobsFlag.Value(), experiment.BuildTimeoutFlag.Value())

	experiment.LogRunHeader(config, s, metadata.GetPlatformMetrics())

	// Profile data is written by instrumented binaries, result files are not needed.
	profileConfig := config
	profileConfig.ResultsRoot = ""
	if _, err := phase("profile", local, builder, profileConfig, ipc.PGOProfile, s,
		experiment.SweepOptions{Progress: progress}); err != nil {
		logrus.Errorf("Profiling failed: %v", err)
		return experiment.ExFailure
	}

	report, err := phase("release", local, builder, config, ipc.PGORelease, s,
		experiment.SweepOptions{Progress: progress, Metadata: md})
	if drawErr := visualization.DrawTable(os.Stdout, report.Table()); drawErr != nil {
		logrus.Warnf("Cannot print sweep report: %v", drawErr)
	}
	if err != nil {
		logrus.Errorf("Verification failed: %v", err)
		return experiment.ExFailure
	}
	return 0
}
