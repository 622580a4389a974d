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
	"path/filepath"
	"strings"
)

// LineObserver receives every stdout line of a task.
type LineObserver func(line string)

// Command describes a process to start. Path is executed directly, without a
// shell.
type Command struct {
	Path string
	Args []string
	// Env is appended to the environment of the current process.
	Env []string
	Dir string
	// Silent discards stdout and stderr of the process.
	Silent bool
	// Observer is called for every stdout line as soon as it is read.
	Observer LineObserver
}

// Name returns the binary name.
func (c Command) Name() string {
	return filepath.Base(c.Path)
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Executor is responsible for creating execution environment for given workload.
// It returns Task handle when workload started gracefully.
// Workload is executed asynchronously.
type Executor interface {
	// Execute executes command on underlying platform.
	Execute(command Command) (TaskHandle, error)
	// Name returns user-friendly name of executor.
	Name() string
}
