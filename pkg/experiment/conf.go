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
	"fmt"
	"os"

	"github.com/coder14159/olive/pkg/conf"
	"github.com/coder14159/olive/pkg/metadata"
	"github.com/coder14159/olive/pkg/utils/errutil"
	"github.com/sirupsen/logrus"
)

const (
	// ExFailure is exit code of a sweep with failed runs or setup failure.
	ExFailure = 1
	// ExUsage is exit code of invalid command line (see sysexits.h).
	ExUsage = 64
)

var (
	// DumpConfigFlag name includes dash to excluded it from dumping.
	dumpConfigFlag = conf.NewBoolFlag("config-dump", "Dump configuration as environment script.", false)

	// DumpConfigExperimentIDFlag name includes dash to excluded it from dumping.
	dumpConfigExperimentIDFlag = conf.NewStringFlag("config-dump-experiment-id", "Dump configuration based on experiment ID.", "")

	// LogDirFlag is the parent of experiment log directories.
	LogDirFlag = conf.NewStringFlag("log_dir", "Directory where experiment logs and metadata are stored.", os.TempDir())
)

// Configure handles configuration parsing, generation and restoration based on config-* flags.
// Returns true when progress should be shown instead of logs (log level is error).
// Note: exits if configuration generation was requested.
func Configure() bool {
	err := conf.ParseFlags()
	if err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(ExUsage)
	}
	logrus.SetLevel(conf.LogLevel())

	if dumpConfigFlag.Value() {
		previousExperimentID := dumpConfigExperimentIDFlag.Value()
		if previousExperimentID != "" {
			directory := ExperimentDir(LogDirFlag.Value(), conf.AppName(), previousExperimentID)
			previous, err := metadata.NewFile(previousExperimentID, directory)
			errutil.CheckWithContext(err, "Cannot open metadata of experiment "+previousExperimentID)
			flags, err := previous.GetByKind(metadata.TypeFlags)
			errutil.Check(err)
			fmt.Println(conf.DumpConfigMap(flags))
		} else {
			fmt.Println(conf.DumpConfig())
		}
		os.Exit(0)
	}

	return conf.LogLevel() == logrus.ErrorLevel
}
