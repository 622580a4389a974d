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
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MasterLogFile is the name of the log file in experiment directory.
const MasterLogFile = "master.log"

// ExperimentDir returns directory of experiment logs.
func ExperimentDir(logDir, appName, uuid string) string {
	return filepath.Join(logDir, appName, uuid)
}

// CreateExperimentDir creates experiment directory and opens master log file in it.
func CreateExperimentDir(logDir, appName, uuid string) (experimentDirectory string, logFile *os.File, err error) {
	experimentDirectory = ExperimentDir(logDir, appName, uuid)
	err = os.MkdirAll(experimentDirectory, 0777)
	if err != nil {
		return "", nil, errors.Wrapf(err, "cannot create experiment directory %q", experimentDirectory)
	}

	masterLogFilename := filepath.Join(experimentDirectory, MasterLogFile)
	logFile, err = os.OpenFile(masterLogFilename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "could not open log file %q", masterLogFilename)
	}

	return experimentDirectory, logFile, nil
}
