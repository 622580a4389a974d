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
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

const readyMarker = "Found or created queue"

func shell(script string) Command {
	return Command{Path: "/bin/sh", Args: []string{"-c", script}}
}

// TestLocal tests the execution of process on local machine.
func TestLocal(t *testing.T) {
	logrus.SetLevel(logrus.ErrorLevel)

	Convey("While using Local executor", t, func() {
		outputDir, err := ioutil.TempDir("", "olive_local")
		So(err, ShouldBeNil)
		defer os.RemoveAll(outputDir)
		l := NewLocalWithOutputDir(outputDir)

		Convey("When producer prints readiness marker and keeps running", func() {
			task, err := l.Execute(shell("echo starting; echo '" + readyMarker + " /olive'; exec sleep 30"))
			So(err, ShouldBeNil)
			defer task.Clean()
			defer task.Stop(0)

			var observed []string
			result, err := task.AwaitMarker(readyMarker, 5*time.Second, func(line string) {
				observed = append(observed, line)
			})

			Convey("Marker should be observed and every line forwarded", func() {
				So(err, ShouldBeNil)
				So(result.Outcome, ShouldEqual, MarkerReady)
				So(task.Status(), ShouldEqual, READY)
				So(observed, ShouldResemble, []string{"starting", readyMarker + " /olive"})
			})

			Convey("Stop should interrupt it within grace period", func() {
				stopResult, err := task.Stop(5 * time.Second)
				So(err, ShouldBeNil)
				So(stopResult, ShouldEqual, Stopped)
				So(task.Status(), ShouldEqual, TERMINATED)

				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, 130)

				Convey("Stopping again should be a no-op", func() {
					stopResult, err := task.Stop(time.Second)
					So(err, ShouldBeNil)
					So(stopResult, ShouldEqual, Stopped)
				})
			})
		})

		Convey("When process never prints the marker", func() {
			task, err := l.Execute(shell("echo waiting; exec sleep 30"))
			So(err, ShouldBeNil)
			defer task.Clean()
			defer task.Stop(0)

			result, err := task.AwaitMarker(readyMarker, 200*time.Millisecond, nil)

			Convey("It should time out while process keeps running", func() {
				So(err, ShouldBeNil)
				So(result.Outcome, ShouldEqual, MarkerTimedOut)
				So(task.Status(), ShouldEqual, RUNNING)
				_, err := task.ExitCode()
				So(err, ShouldNotBeNil)
			})

			Convey("Waiting with short timeout should not terminate it", func() {
				So(task.Wait(10*time.Millisecond), ShouldBeFalse)
			})
		})

		Convey("When process exits before printing the marker", func() {
			task, err := l.Execute(shell("echo 'cannot open shared memory'; exit 3"))
			So(err, ShouldBeNil)
			defer task.Clean()

			result, err := task.AwaitMarker(readyMarker, 5*time.Second, nil)

			Convey("ProcessExited with its exit code should be reported", func() {
				So(err, ShouldBeNil)
				So(result.Outcome, ShouldEqual, MarkerProcessExited)
				So(result.ExitCode, ShouldEqual, 3)
				So(task.Status(), ShouldEqual, TERMINATED)
			})

			Convey("Output should be kept in stdout file", func() {
				file, err := task.StdoutFile()
				So(err, ShouldBeNil)
				content, err := ioutil.ReadAll(file)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "cannot open shared memory\n")
			})
		})

		Convey("When process ignores interrupt", func() {
			task, err := l.Execute(shell("trap '' INT; echo ready; sleep 30"))
			So(err, ShouldBeNil)
			defer task.Clean()
			defer task.Stop(0)

			result, err := task.AwaitMarker("ready", 5*time.Second, nil)
			So(err, ShouldBeNil)
			So(result.Outcome, ShouldEqual, MarkerReady)

			Convey("Stop should kill it after grace period", func() {
				stopResult, err := task.Stop(200 * time.Millisecond)
				So(err, ShouldBeNil)
				So(stopResult, ShouldEqual, ForcedExit)

				exitCode, err := task.ExitCode()
				So(err, ShouldBeNil)
				So(exitCode, ShouldEqual, 137)
			})
		})

		Convey("When several goroutines wait for the marker", func() {
			task, err := l.Execute(shell("sleep 0.2; echo '" + readyMarker + "'; exec sleep 30"))
			So(err, ShouldBeNil)
			defer task.Clean()
			defer task.Stop(0)

			var wg sync.WaitGroup
			outcomes := make(chan MarkerOutcome, 3)
			for i := 0; i < 3; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					result, _ := task.AwaitMarker(readyMarker, 5*time.Second, nil)
					outcomes <- result.Outcome
				}()
			}
			wg.Wait()
			close(outcomes)

			Convey("Each of them should see it", func() {
				for outcome := range outcomes {
					So(outcome, ShouldEqual, MarkerReady)
				}
			})
		})

		Convey("When command is silent", func() {
			task, err := l.Execute(Command{Path: "/bin/sh", Args: []string{"-c", "echo " + readyMarker}, Silent: true})
			So(err, ShouldBeNil)
			So(task.Wait(5*time.Second), ShouldBeTrue)
			defer task.Clean()

			Convey("Its output should be discarded", func() {
				_, err := task.StdoutFile()
				So(err, ShouldNotBeNil)
				result, err := task.AwaitMarker(readyMarker, time.Second, nil)
				So(err, ShouldBeNil)
				So(result.Outcome, ShouldEqual, MarkerProcessExited)
			})
		})

		Convey("When command has an observer", func() {
			var mu sync.Mutex
			var lines []string
			command := shell("echo one; echo two")
			command.Observer = func(line string) {
				mu.Lock()
				defer mu.Unlock()
				lines = append(lines, line)
			}
			task, err := l.Execute(command)
			So(err, ShouldBeNil)
			So(task.Wait(5*time.Second), ShouldBeTrue)
			defer task.Clean()

			Convey("It should receive every line", func() {
				mu.Lock()
				defer mu.Unlock()
				So(lines, ShouldResemble, []string{"one", "two"})
			})
		})

		Convey("When binary does not exist", func() {
			_, err := l.Execute(Command{Path: "/nonexistent/spmc_server"})

			Convey("Execute should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When task output is erased", func() {
			task, err := l.Execute(shell("echo done"))
			So(err, ShouldBeNil)
			So(task.Wait(5*time.Second), ShouldBeTrue)
			So(task.Clean(), ShouldBeNil)
			So(task.EraseOutput(), ShouldBeNil)

			Convey("Output directory should be gone", func() {
				entries, err := ioutil.ReadDir(outputDir)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestRun(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	Convey("When running a command to completion", t, func() {
		l := NewLocal()

		Convey("Exit code of successful command should be zero", func() {
			code, err := Run(l, shell("exit 0"), 5*time.Second)
			So(err, ShouldBeNil)
			So(code, ShouldEqual, 0)
		})

		Convey("Exit code of failed command should be returned", func() {
			code, err := Run(l, shell("echo 'no such segment' >&2; exit 2"), 5*time.Second)
			So(err, ShouldBeNil)
			So(code, ShouldEqual, 2)
		})

		Convey("Command exceeding the timeout should be killed", func() {
			code, err := Run(l, shell("exec sleep 30"), 100*time.Millisecond)
			So(err, ShouldNotBeNil)
			So(code, ShouldEqual, -1)
		})
	})
}

func TestInterruptHandle(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	Convey("When interrupt handle is registered", t, func() {
		stopAll := RegisterInterruptHandle()
		l := NewLocal()

		first, err := l.Execute(shell("exec sleep 30"))
		So(err, ShouldBeNil)
		second, err := l.Execute(shell("exec sleep 30"))
		So(err, ShouldBeNil)
		So(liveTaskHandles(), ShouldEqual, 2)

		Convey("Stopping all should terminate every live task", func() {
			stopAll()
			So(first.Status(), ShouldEqual, TERMINATED)
			So(second.Status(), ShouldEqual, TERMINATED)
			So(liveTaskHandles(), ShouldEqual, 0)
		})

		Convey("Cleaned tasks should not be stopped again", func() {
			first.Stop(time.Second)
			So(first.Clean(), ShouldBeNil)
			So(liveTaskHandles(), ShouldEqual, 1)
			stopAll()
			So(second.Status(), ShouldEqual, TERMINATED)
		})

		Convey("Interrupt should run hooks after every live task is stopped", func() {
			var statuses []TaskState
			OnInterrupt(func() {
				statuses = append(statuses, first.Status(), second.Status())
			})
			OnInterrupt(func() {
				statuses = append(statuses, TERMINATED)
			})

			globalTaskHandleStopper.interrupt()

			So(statuses, ShouldResemble, []TaskState{TERMINATED, TERMINATED, TERMINATED})
			So(liveTaskHandles(), ShouldEqual, 0)
		})
	})
}
