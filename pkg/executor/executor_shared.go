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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Run executes command, waits up to timeout for it to complete and returns its
// exit code. Output of the task is erased unless it failed. A task that does
// not finish in time is killed.
//
// Commands usually fail because wrong parameters or binary that should be executed is not installed properly.
func Run(executor Executor, command Command, timeout time.Duration) (int, error) {
	handle, err := executor.Execute(command)
	if err != nil {
		return -1, errors.Wrapf(err, "cannot execute %q on %q", command.Name(), executor.Name())
	}

	if !handle.Wait(timeout) {
		logrus.Errorf("task %q launched on %q did not finish within %s", command.String(), executor.Name(), timeout)
		if _, stopErr := handle.Stop(0); stopErr != nil {
			logrus.Errorf("cannot stop %q: %v", handle.Name(), stopErr)
		}
		LogUnsucessfulExecution(command.String(), handle)
		handle.Clean()
		return -1, errors.Errorf("task %q launched on %q did not finish within %s", command.Name(), executor.Name(), timeout)
	}

	exitCode, err := handle.ExitCode()
	if err != nil {
		// Something really wrong happened, print error message + logs
		logrus.Errorf("task %q launched on %q failed, cannot get exit code: %s", command.String(), executor.Name(), err.Error())
		LogUnsucessfulExecution(command.String(), handle)
		handle.Clean()
		return -1, errors.Wrapf(err, "task %q launched on %q failed, cannot get exit code", command.Name(), executor.Name())
	}

	if exitCode != 0 {
		// Task failed, log.Error exit code & stdout/err
		logrus.Errorf("task %q launched on %q failed: exit code %d", command.String(), executor.Name(), exitCode)
		LogUnsucessfulExecution(command.String(), handle)
		handle.Clean()
		return exitCode, nil
	}

	// Exit code is zero, so task ended successfully.
	logrus.Debugf("task %q launched on %q has ended successfully", command.String(), executor.Name())
	LogSuccessfulExecution(command.String(), handle)
	handle.Clean()
	handle.EraseOutput()
	return exitCode, nil
}
