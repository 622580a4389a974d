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
	"bufio"
	"strings"

	"github.com/coder14159/olive/pkg/utils/fs"
	"github.com/sirupsen/logrus"
)

// tailLineCount is number of output lines logged for a failed task.
const tailLineCount = 5

// taskLog returns log entry tagged with the task and its output files.
func taskLog(whatWasExecuted string, handle TaskHandle) (entry *logrus.Entry, stdoutFileName, stderrFileName string) {
	entry = logrus.WithField("task", handle.Name())
	if stdoutFile, err := handle.StdoutFile(); err != nil {
		entry.Debugf("No stdout file of %q: %v", whatWasExecuted, err)
	} else {
		stdoutFileName = stdoutFile.Name()
	}
	if stderrFile, err := handle.StderrFile(); err != nil {
		entry.Debugf("No stderr file of %q: %v", whatWasExecuted, err)
	} else {
		stderrFileName = stderrFile.Name()
	}
	return entry, stdoutFileName, stderrFileName
}

func logExitCode(entry *logrus.Entry, level logrus.Level, handle TaskHandle) {
	exitCode, err := handle.ExitCode()
	if err != nil {
		entry.Logf(level, "Could not read exit code: %v", err)
		return
	}
	entry.Logf(level, "Exit code: %d", exitCode)
}

// logTail logs last lines of an output file one by one, logrus has no
// multi-line entries.
func logTail(entry *logrus.Entry, stream, fileName string) {
	tail, err := fs.ReadTail(fileName, tailLineCount)
	if err != nil {
		entry.Errorf("Cannot read %s from %q: %v", stream, fileName, err)
		return
	}
	entry.Errorf("Last %d lines of %s (%q)", tailLineCount, stream, fileName)
	scanner := bufio.NewScanner(strings.NewReader(tail))
	for scanner.Scan() {
		entry.Errorf("%s: %s", stream, scanner.Text())
	}
}

// LogSuccessfulExecution logs output file names and exit code of a finished task.
func LogSuccessfulExecution(whatWasExecuted string, handle TaskHandle) {
	entry, stdoutFileName, stderrFileName := taskLog(whatWasExecuted, handle)
	entry.Debugf("Process %q has ended", whatWasExecuted)
	if stdoutFileName != "" {
		entry.Debugf("Output stored in %q and %q", stdoutFileName, stderrFileName)
	}
	logExitCode(entry, logrus.DebugLevel, handle)
}

// LogUnsucessfulExecution logs tails of stdout and stderr and exit code of a
// task that failed or had to be stopped.
func LogUnsucessfulExecution(whatWasExecuted string, handle TaskHandle) {
	entry, stdoutFileName, stderrFileName := taskLog(whatWasExecuted, handle)
	entry.Errorf("Command %q might have ended prematurely", whatWasExecuted)
	if stdoutFileName == "" {
		entry.Errorf("Output of %q was discarded", whatWasExecuted)
	} else {
		logTail(entry, "stdout", stdoutFileName)
		logTail(entry, "stderr", stderrFileName)
	}
	logExitCode(entry, logrus.ErrorLevel, handle)
}

// LogLines returns an observer which logs every line of a task at given level.
func LogLines(prefix string, level logrus.Level) LineObserver {
	return func(line string) {
		logrus.StandardLogger().Logf(level, "%s: %s", prefix, line)
	}
}
