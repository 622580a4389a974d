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
	"testing"
	"time"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/executor/mocks"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

func combination(values map[string][]string) sweep.Combination {
	s, err := sweep.FromValues(values)
	if err != nil {
		panic(err)
	}
	return s.Combinations()[0]
}

func TestProducerWithMockedExecutor(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	c := combination(map[string][]string{
		sweep.Rate:        {"max"},
		sweep.ClientCount: {"4"},
		sweep.QueueSize:   {"1024000"},
		sweep.MessageSize: {"64"},
	})

	Convey("While using Producer launcher", t, func() {
		mockedExecutor := new(mocks.Executor)
		mockedTaskHandle := new(mocks.TaskHandle)

		config := DefaultProducerConfig()
		config.Path = "/opt/olive/bin/spmc_server"
		config.MemoryName = "olive_test"

		Convey("Unbound spmc producer should not get cpu and clients options", func() {
			command := NewProducer(mockedExecutor, config, c).buildCommand()
			So(command.Path, ShouldEqual, "/opt/olive/bin/spmc_server")
			So(command.Args, ShouldResemble, []string{
				"--name", "olive_test",
				"--message_size", "64",
				"--queue_size", "1024000",
				"--rate", "0",
				"--log_level", "INFO",
			})
			So(command.Silent, ShouldBeFalse)
		})

		Convey("Bound spsc producer should get cpu and clients options", func() {
			config.ToolType = SPSC
			config.CPU = isolation.Core(2)
			command := NewProducer(mockedExecutor, config, c).buildCommand()
			So(command.Args[:2], ShouldResemble, []string{"--cpu", "2"})
			So(command.Args[len(command.Args)-2:], ShouldResemble, []string{"--clients", "4"})
		})

		Convey("While simulating proper execution", func() {
			mockedExecutor.On("Execute", mock.AnythingOfType("executor.Command")).Return(mockedTaskHandle, nil).Once()
			mockedTaskHandle.On("Name").Return("spmc_server[100]")
			mockedTaskHandle.On("AwaitMarker", ReadyMarker, 5*time.Second, mock.Anything).
				Return(executor.MarkerResult{Outcome: executor.MarkerReady}, nil).Once()

			task, err := NewProducer(mockedExecutor, config, c).Launch()

			Convey("Task handle should be returned without error", func() {
				So(err, ShouldBeNil)
				So(task, ShouldEqual, mockedTaskHandle)
				mockedExecutor.AssertExpectations(t)
				mockedTaskHandle.AssertExpectations(t)
			})
		})

		Convey("While simulating producer that never becomes ready", func() {
			mockedExecutor.On("Execute", mock.AnythingOfType("executor.Command")).Return(mockedTaskHandle, nil).Once()
			mockedTaskHandle.On("Name").Return("spmc_server[100]")
			mockedTaskHandle.On("AwaitMarker", ReadyMarker, 5*time.Second, mock.Anything).
				Return(executor.MarkerResult{Outcome: executor.MarkerTimedOut}, nil).Once()
			mockedTaskHandle.On("Stop", time.Second).Return(executor.Stopped, nil).Once()
			mockedTaskHandle.On("StdoutFile").Return(nil, errors.New("no file"))
			mockedTaskHandle.On("StderrFile").Return(nil, errors.New("no file"))
			mockedTaskHandle.On("ExitCode").Return(130, nil)
			mockedTaskHandle.On("Clean").Return(nil).Once()

			task, err := NewProducer(mockedExecutor, config, c).Launch()

			Convey("Producer should be stopped and ProducerNotReady reported", func() {
				So(task, ShouldBeNil)
				So(errors.Cause(err), ShouldEqual, ErrProducerNotReady)
				So(err.Error(), ShouldContainSubstring, "within 5s")
				mockedTaskHandle.AssertExpectations(t)
			})
		})

		Convey("While simulating producer exiting early", func() {
			mockedExecutor.On("Execute", mock.AnythingOfType("executor.Command")).Return(mockedTaskHandle, nil).Once()
			mockedTaskHandle.On("Name").Return("spmc_server[100]")
			mockedTaskHandle.On("AwaitMarker", ReadyMarker, 5*time.Second, mock.Anything).
				Return(executor.MarkerResult{Outcome: executor.MarkerProcessExited, ExitCode: 1}, nil).Once()
			mockedTaskHandle.On("Stop", time.Second).Return(executor.Stopped, nil).Once()
			mockedTaskHandle.On("StdoutFile").Return(nil, errors.New("no file"))
			mockedTaskHandle.On("StderrFile").Return(nil, errors.New("no file"))
			mockedTaskHandle.On("ExitCode").Return(1, nil)
			mockedTaskHandle.On("Clean").Return(nil).Once()

			_, err := NewProducer(mockedExecutor, config, c).Launch()

			Convey("Exit code should be part of the error", func() {
				So(errors.Cause(err), ShouldEqual, ErrProducerNotReady)
				So(err.Error(), ShouldContainSubstring, "exited with code 1")
			})
		})

		Convey("While simulating executor failure", func() {
			mockedExecutor.On("Execute", mock.AnythingOfType("executor.Command")).Return(nil, errors.New("no such file")).Once()

			_, err := NewProducer(mockedExecutor, config, c).Launch()

			Convey("Error should be returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Cause(err), ShouldNotEqual, ErrProducerNotReady)
			})
		})
	})
}

func TestConsumer(t *testing.T) {
	Convey("While using Consumer launcher", t, func() {
		mockedExecutor := new(mocks.Executor)
		config := ConsumerConfig{
			Path:       "/opt/olive/bin/spmc_client",
			MemoryName: "olive_test",
			LogLevel:   "DEBUG",
			Stats:      []string{StatLatency, StatThroughput, StatInterval},
			Directory:  "/results/run",
		}

		Convey("Silent consumer should discard output and not write statistics", func() {
			command := NewConsumer(mockedExecutor, config, 0).buildCommand()
			So(command.Silent, ShouldBeTrue)
			So(command.Observer, ShouldBeNil)
			So(command.Args, ShouldResemble, []string{"--name", "olive_test", "--log_level", "ERROR"})
		})

		Convey("Stats writer should get statistics and directory", func() {
			config.StatsWriter = true
			config.CPU = isolation.Core(5)
			config.PrefetchSize = "16"
			command := NewConsumer(mockedExecutor, config, 3).buildCommand()
			So(command.Silent, ShouldBeFalse)
			So(command.Observer, ShouldNotBeNil)
			So(command.Args, ShouldResemble, []string{
				"--name", "olive_test", "--log_level", "DEBUG",
				"--cpu", "5",
				"--prefetch_size", "16",
				"--stats", "latency,throughput,interval",
				"--directory", "/results/run",
			})
		})

		Convey("Launch failure should be returned", func() {
			mockedExecutor.On("Execute", mock.AnythingOfType("executor.Command")).Return(nil, errors.New("fork failed")).Once()
			_, err := NewConsumer(mockedExecutor, config, 1).Launch()
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidateStats(t *testing.T) {
	Convey("When validating statistics selection", t, func() {
		So(ValidateStats([]string{StatLatency, StatInterval}), ShouldBeNil)
		So(ValidateStats([]string{StatInterval}), ShouldNotBeNil)
		So(ValidateStats([]string{"histogram"}), ShouldNotBeNil)
		So(ValidateStats(nil), ShouldNotBeNil)
	})
}

func TestToolType(t *testing.T) {
	Convey("When parsing tool type", t, func() {
		toolType, err := ParseToolType("SPSC")
		So(err, ShouldBeNil)
		So(toolType.ServerBinary(), ShouldEqual, "spsc_server")
		So(toolType.ClientBinary(), ShouldEqual, "spsc_client")

		_, err = ParseToolType("mpmc")
		So(err, ShouldNotBeNil)
	})
}
