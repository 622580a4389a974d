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

const appName = "ipc-sweep"

var buildFlag = conf.NewBoolFlag("build", "Build benchmark binaries with make before the sweep.", false)

func main() {
	os.Exit(run())
}

func exitCode(err error) int {
	if errors.Cause(err) == sweep.ErrConfiguration {
		return experiment.ExUsage
	}
	return experiment.ExFailure
}

func run() int {
	experimentStart := time.Now()

	conf.SetAppName(appName)
	conf.SetHelp(`Runs producer and consumers of the shared memory queue benchmark for every combination of
queue size, rate, message size, consumer count and prefetch size. Results of every run are stored
in a directory named after its parameters, populated directories are skipped.`)
	progress := experiment.Configure()

	config, err := experiment.ConfigFromFlags()
	if err == nil {
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

	if buildFlag.Value() {
		serverBuild, clientBuild, err := experiment.BuildTypes()
		if err != nil {
			logrus.Errorf("Invalid build type: %v", err)
			return exitCode(err)
		}
		builder := ipc.NewBuilder(local, experiment.BaseDirFlag.Value(),
			experiment.JobsFlag.Value(), experiment.BuildTimeoutFlag.Value())
		config, err = experiment.BuildBinaries(builder, config, serverBuild, clientBuild)
		if err != nil {
			logrus.Errorf("Build failed: %v", err)
			return experiment.ExFailure
		}
	}

	platform, err := md.GetByKind(metadata.TypePlatform)
	if err != nil {
		platform = metadata.GetPlatformMetrics()
	}
	experiment.LogRunHeader(config, s, platform)

	cleaner := ipc.NewCleaner(local, config.CleanupPath, config.CleanupTimeout)
	experiment.CleanupOnInterrupt(cleaner, config)
	orchestrator := experiment.NewOrchestrator(local, cleaner, config)

	report, err := experiment.RunSweep(orchestrator, s, experiment.SweepOptions{
		Progress: progress,
		Metadata: md,
	})
	if drawErr := visualization.DrawTable(os.Stdout, report.Table()); drawErr != nil {
		logrus.Warnf("Cannot print sweep report: %v", drawErr)
	}
	if err != nil {
		logrus.Errorf("Sweep aborted: %v", err)
		return experiment.ExFailure
	}
	if !report.Succeeded() {
		logrus.Errorf("%d of %d runs failed", report.Count(experiment.Failed), len(report.Outcomes))
		return experiment.ExFailure
	}
	return 0
}
