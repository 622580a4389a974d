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
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	killTimeout = 5 * time.Second

	// Longest stdout line that is split into lines. Longer lines are truncated.
	maxLineLength = 1024 * 1024
)

// Local executor is responsible for providing the execution environment
// on local machine via exec.Command.
// It runs command as current user.
type Local struct {
	outputDir string
}

// NewLocal returns a Local instance keeping task output in the system temporary directory.
func NewLocal() Local {
	return Local{outputDir: os.TempDir()}
}

// NewLocalWithOutputDir returns a Local instance keeping task output below outputDir.
func NewLocalWithOutputDir(outputDir string) Local {
	return Local{outputDir: outputDir}
}

// Name returns user-friendly name of executor.
func (l Local) Name() string {
	return "Local executor"
}

// Execute runs the command given as input.
// Returned Task is able to stop & monitor the provisioned process.
func (l Local) Execute(command Command) (TaskHandle, error) {
	if command.Path == "" {
		return nil, errors.New("empty command")
	}
	log := logrus.WithField("command", command.Name())
	log.Debug("Starting ", command.String())

	cmd := exec.Command(command.Path, command.Args...)
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	// It is important to set additional Process Group ID for parent process and his children
	// to have ability to signal all the children processes.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	task := &localTask{
		command: command,
		cmd:     cmd,
		lines:   newLineLog(defaultLineLogLimit),
		waitEnd: make(chan struct{}),
		state:   SPAWNED,
	}

	var stdout io.ReadCloser
	if !command.Silent {
		var err error
		task.outputDir, task.stdoutFile, task.stderrFile, err = createExecutorOutputFiles(command, l.outputDir)
		if err != nil {
			return nil, err
		}
		log.Debugf("Created output files. Stdout path: %q Stderr path: %q",
			task.stdoutFile.Name(), task.stderrFile.Name())

		stdout, err = cmd.StdoutPipe()
		if err != nil {
			task.closeFiles()
			return nil, errors.Wrapf(err, "cannot open stdout of %q", command.Name())
		}
		cmd.Stderr = task.stderrFile
	}

	if err := cmd.Start(); err != nil {
		task.closeFiles()
		task.EraseOutput()
		return nil, errors.Wrapf(err, "cannot start %q", command.String())
	}
	task.pid = cmd.Process.Pid
	log.Debug("Started with pid ", task.pid)

	// waitEnd channel is closed when the process is reaped. It is not used for
	// passing any message.
	go func() {
		defer close(task.waitEnd)

		if stdout != nil {
			task.readStdout(stdout)
		}
		task.lines.close()

		// Wait() returns an error for non zero exit codes. Exit status is read
		// from process state in any case.
		if err := cmd.Wait(); err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				log.Errorf("Waiting for task %q failed: %v", command.Name(), err)
			}
		}

		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = exitCodeOf(cmd.ProcessState)
		}
		task.setExitCode(exitCode)

		log.Debugf("Ended %q with status code %d", task.Name(), exitCode)
	}()

	task.setState(RUNNING)
	register(task)
	return task, nil
}

// exitCodeOf returns exit status or 128 + signal number for signaled processes.
func exitCodeOf(state *os.ProcessState) int {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return state.ExitCode()
	}
	if status.Signaled() {
		return 128 + int(status.Signal())
	}
	return status.ExitStatus()
}

// localTask implements TaskHandle interface.
type localTask struct {
	command Command
	cmd     *exec.Cmd
	pid     int

	outputDir  string
	stdoutFile *os.File
	stderrFile *os.File

	lines   *lineLog
	waitEnd chan struct{}

	mu       sync.Mutex
	state    TaskState
	exitCode int
}

func (task *localTask) readStdout(stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(task.stdoutFile, line)
		if task.command.Observer != nil {
			task.command.Observer(line)
		}
		task.lines.append(line)
	}
	if err := scanner.Err(); err != nil {
		logrus.Warnf("Reading stdout of %q stopped: %v", task.Name(), err)
		// Drain so the process never blocks on a full pipe.
		io.Copy(task.stdoutFile, stdout)
	}
}

func (task *localTask) setState(state TaskState) {
	task.mu.Lock()
	defer task.mu.Unlock()
	if task.state == TERMINATED {
		return
	}
	// READY is only reachable from RUNNING, DRAINING only before termination.
	if state == READY && task.state != RUNNING {
		return
	}
	task.state = state
}

func (task *localTask) setExitCode(code int) {
	task.mu.Lock()
	defer task.mu.Unlock()
	task.exitCode = code
	task.state = TERMINATED
}

// isTerminated checks if waitEnd channel is closed. If it is closed, it means
// that wait ended and task is in terminated state.
func (task *localTask) isTerminated() bool {
	select {
	case <-task.waitEnd:
		return true
	default:
		return false
	}
}

// Name returns binary name and pid.
func (task *localTask) Name() string {
	return fmt.Sprintf("%s[%d]", task.command.Name(), task.pid)
}

// Status returns a state of the task.
func (task *localTask) Status() TaskState {
	task.mu.Lock()
	defer task.mu.Unlock()
	return task.state
}

// ExitCode returns exit code of terminated task.
func (task *localTask) ExitCode() (int, error) {
	task.mu.Lock()
	defer task.mu.Unlock()
	if task.state != TERMINATED {
		return -1, errors.Errorf("task %q is not terminated", task.Name())
	}
	return task.exitCode, nil
}

// signal sends sig to the whole process group.
// The kill syscall interprets a negated PID N as the process group N belongs to.
func (task *localTask) signal(sig syscall.Signal) error {
	logrus.Debug("Sending ", sig, " to PID ", -task.pid)
	err := syscall.Kill(-task.pid, sig)
	if err == syscall.ESRCH {
		// Group is already gone.
		return nil
	}
	return err
}

// Stop sends SIGINT to the task and waits up to grace for it to exit. Then it
// sends SIGKILL. Zero grace kills the task right away.
func (task *localTask) Stop(grace time.Duration) (StopResult, error) {
	if task.isTerminated() {
		return Stopped, nil
	}
	task.setState(DRAINING)

	if grace > 0 {
		if err := task.signal(syscall.SIGINT); err != nil {
			return Stopped, errors.Wrapf(err, "cannot interrupt %q", task.Name())
		}
		if task.Wait(grace) {
			return Stopped, nil
		}
		logrus.Warnf("Task %q did not exit within %s after interrupt, killing it", task.Name(), grace)
	}

	if err := task.signal(syscall.SIGKILL); err != nil {
		return ForcedExit, errors.Wrapf(err, "cannot kill %q", task.Name())
	}
	if !task.Wait(killTimeout) {
		return ForcedExit, errors.Errorf("cannot terminate task %q", task.Name())
	}
	return ForcedExit, nil
}

// AwaitMarker reads task output until a line contains marker.
func (task *localTask) AwaitMarker(marker string, timeout time.Duration, observer LineObserver) (MarkerResult, error) {
	if timeout <= 0 {
		return MarkerResult{}, errors.Errorf("invalid timeout %s for readiness of %q", timeout, task.Name())
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	cursor := 0
	for {
		lines, next, closed, changed := task.lines.from(cursor)
		cursor = next
		for _, line := range lines {
			if observer != nil {
				observer(line)
			}
			if strings.Contains(line, marker) {
				task.setState(READY)
				return MarkerResult{Outcome: MarkerReady}, nil
			}
		}

		if closed {
			// Output ended. The process either exited or closed its stdout
			// and keeps running.
			select {
			case <-task.waitEnd:
				code, _ := task.ExitCode()
				return MarkerResult{Outcome: MarkerProcessExited, ExitCode: code}, nil
			case <-deadline.C:
				return MarkerResult{Outcome: MarkerTimedOut}, nil
			}
		}

		select {
		case <-changed:
		case <-deadline.C:
			return MarkerResult{Outcome: MarkerTimedOut}, nil
		}
	}
}

// Wait waits for the command to finish with the given timeout time.
// Zero timeout waits forever. It returns true if task is terminated.
func (task *localTask) Wait(timeout time.Duration) bool {
	if task.isTerminated() {
		return true
	}

	var timeoutChannel <-chan time.Time
	if timeout != 0 {
		// In case of wait with timeout set the timeout channel.
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutChannel = timer.C
	}

	select {
	case <-task.waitEnd:
		return true
	case <-timeoutChannel:
		return false
	}
}

// StdoutFile returns task's stdout file rewound to the beginning.
func (task *localTask) StdoutFile() (*os.File, error) {
	return rewound(task.stdoutFile, "stdout", task.command)
}

// StderrFile returns task's stderr file rewound to the beginning.
func (task *localTask) StderrFile() (*os.File, error) {
	return rewound(task.stderrFile, "stderr", task.command)
}

func rewound(file *os.File, kind string, command Command) (*os.File, error) {
	if file == nil {
		return nil, errors.Errorf("%s of silent command %q is discarded", kind, command.Name())
	}
	if _, err := os.Stat(file.Name()); err != nil {
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return file, nil
}

func (task *localTask) closeFiles() error {
	var err error
	for _, file := range []*os.File{task.stdoutFile, task.stderrFile} {
		if file == nil {
			continue
		}
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Clean closes stdout and stderr files of a terminated task.
func (task *localTask) Clean() error {
	if !task.isTerminated() {
		return errors.Errorf("cannot clean running task %q", task.Name())
	}
	unregister(task)
	return task.closeFiles()
}

// EraseOutput removes task's output directory.
func (task *localTask) EraseOutput() error {
	if task.outputDir == "" {
		return nil
	}
	return os.RemoveAll(task.outputDir)
}
