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
	"strings"
	"time"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/pkg/errors"
)

// Cleaner removes named shared memory with the removal tool.
type Cleaner struct {
	exec    executor.Executor
	path    string
	timeout time.Duration
}

// NewCleaner is a constructor for Cleaner.
func NewCleaner(exec executor.Executor, path string, timeout time.Duration) Cleaner {
	return Cleaner{exec: exec, path: path, timeout: timeout}
}

// Remove deletes the named shared memory. Missing memory is not an error.
func (c Cleaner) Remove(names ...string) error {
	command := executor.Command{
		Path: c.path,
		Args: []string{"--names", strings.Join(names, ",")},
	}
	exitCode, err := executor.Run(c.exec, command, c.timeout)
	if err != nil {
		return errors.Wrapf(err, "cannot remove shared memory %q", strings.Join(names, ","))
	}
	if exitCode != 0 {
		return errors.Errorf("removing shared memory %q failed with exit code %d", strings.Join(names, ","), exitCode)
	}
	return nil
}
