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
	"fmt"
	"strings"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ConsumerConfig describes one consumer of a run.
type ConsumerConfig struct {
	Path         string
	MemoryName   string
	LogLevel     string
	CPU          isolation.CPU
	PrefetchSize string
	// StatsWriter consumers write statistics to Directory. Other consumers are silent.
	StatsWriter bool
	Stats       []string
	Directory   string
}

// Consumer is a launcher for a single queue consumer.
type Consumer struct {
	exec  executor.Executor
	conf  ConsumerConfig
	index int
}

var _ executor.Launcher = Consumer{}

// NewConsumer is a constructor for Consumer. Index is used only for logs.
func NewConsumer(exec executor.Executor, config ConsumerConfig, index int) Consumer {
	return Consumer{exec: exec, conf: config, index: index}
}

func (c Consumer) buildCommand() executor.Command {
	logLevel := c.conf.LogLevel
	if !c.conf.StatsWriter {
		logLevel = silentLogLevel
	}

	args := []string{"--name", c.conf.MemoryName, "--log_level", logLevel}
	args = append(args, c.conf.CPU.Args()...)
	if c.conf.PrefetchSize != "" {
		args = append(args, "--prefetch_size", c.conf.PrefetchSize)
	}

	command := executor.Command{Path: c.conf.Path, Silent: !c.conf.StatsWriter}
	if c.conf.StatsWriter {
		args = append(args, "--stats", strings.Join(c.conf.Stats, ","))
		if c.conf.Directory != "" {
			args = append(args, "--directory", c.conf.Directory)
		}
		command.Observer = executor.LogLines(fmt.Sprintf("client %d", c.index), logrus.InfoLevel)
	}
	command.Args = args
	return command
}

// Launch starts the consumer. It does not wait for anything.
func (c Consumer) Launch() (executor.TaskHandle, error) {
	command := c.buildCommand()
	task, err := c.exec.Execute(command)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot start consumer %d", c.index)
	}
	return task, nil
}

func (c Consumer) String() string {
	if c.conf.StatsWriter {
		return fmt.Sprintf("consumer %d (stats writer)", c.index)
	}
	return fmt.Sprintf("consumer %d", c.index)
}
