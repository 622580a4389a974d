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
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const outputFilesPrefix = "olive"

func createExecutorOutputFiles(command Command, parentDir string) (outputDir string, stdout, stderr *os.File, err error) {
	if command.Path == "" {
		return "", nil, nil, errors.New("empty command")
	}

	if parentDir == "" {
		parentDir = os.TempDir()
	}
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		return "", nil, nil, errors.Wrapf(err, "cannot create %q", parentDir)
	}

	outputDir, err = ioutil.TempDir(parentDir, outputFilesPrefix+"_"+command.Name()+"_")
	if err != nil {
		return "", nil, nil, errors.Wrapf(err, "failed to create output directory for %s", command.Name())
	}

	stdout, err = os.Create(filepath.Join(outputDir, "stdout"))
	if err != nil {
		os.RemoveAll(outputDir)
		return "", nil, nil, err
	}

	stderr, err = os.Create(filepath.Join(outputDir, "stderr"))
	if err != nil {
		stdout.Close()
		os.RemoveAll(outputDir)
		return "", nil, nil, err
	}

	return outputDir, stdout, stderr, nil
}
