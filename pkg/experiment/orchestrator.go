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
	"time"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/results"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/utils/err_collection"
	"github.com/coder14159/olive/pkg/utils/fs"
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SharedMemoryCleaner removes named shared memory segments.
type SharedMemoryCleaner interface {
	Remove(names ...string) error
}

// Orchestrator executes benchmark runs one at a time.
type Orchestrator struct {
	conf    Config
	exec    executor.Executor
	cleaner SharedMemoryCleaner
}

// NewOrchestrator returns orchestrator running processes with exec.
func NewOrchestrator(exec executor.Executor, cleaner SharedMemoryCleaner, config Config) *Orchestrator {
	return &Orchestrator{conf: config, exec: exec, cleaner: cleaner}
}

// CleanupOnInterrupt makes interrupted driver remove shared memory segment
// of config once its processes are stopped.
func CleanupOnInterrupt(cleaner SharedMemoryCleaner, config Config) {
	executor.OnInterrupt(interruptCleanup(cleaner, config.MemoryName))
}

func interruptCleanup(cleaner SharedMemoryCleaner, memoryName string) func() {
	return func() {
		if err := cleaner.Remove(memoryName); err != nil {
			logrus.Errorf("Cannot remove shared memory %q after interrupt: %v", memoryName, err)
		}
	}
}

// Config returns configuration of the orchestrator.
func (o *Orchestrator) Config() Config {
	return o.conf
}

func setupFailure(err error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrSetupFailure, format+": %v", append(args, err)...)
}

// Execute performs a single run for combination. Failed and skipped runs are
// reported in the outcome; an error is returned only for setup failures which
// make further runs pointless. Every started process is stopped and shared
// memory is removed before Execute returns.
func (o *Orchestrator) Execute(c sweep.Combination) (outcome RunOutcome, err error) {
	r := newRun(c)
	outcome = RunOutcome{Combination: c}
	start := time.Now()
	r.log.Info("Starting run")

	r.setState(CLEANING)
	if cleanErr := o.cleaner.Remove(o.conf.MemoryName); cleanErr != nil {
		r.setState(FINISHED)
		return outcome, setupFailure(cleanErr, "cannot remove shared memory %q before run", o.conf.MemoryName)
	}

	var created bool
	defer func() {
		if outcome.Kind == Failed && created {
			if removed, removeErr := fs.RemoveIfEmpty(outcome.Directory); removeErr != nil {
				r.log.Warnf("Cannot remove run directory %q: %v", outcome.Directory, removeErr)
			} else if removed {
				r.log.Debugf("Removed empty run directory %q", outcome.Directory)
			}
		}
		if cleanErr := o.cleaner.Remove(o.conf.MemoryName); cleanErr != nil && err == nil {
			err = setupFailure(cleanErr, "cannot remove shared memory %q after run", o.conf.MemoryName)
		}
		outcome.Duration = time.Since(start)
		r.setState(FINISHED)
	}()

	if o.conf.ResultsRoot != "" {
		var skip bool
		outcome.Directory, created, skip, err = o.prepareDirectory(c)
		if err != nil {
			return outcome, err
		}
		if skip {
			r.log.Warnf("Run directory %q is already populated, skipping", outcome.Directory)
			outcome.Kind, outcome.Reason = Skipped, DirectoryExists
			return outcome, nil
		}
	}

	r.setState(STARTING_PRODUCER)
	producer, launchErr := ipc.NewProducer(o.exec, o.conf.producerConfig(), c).Launch()
	if launchErr != nil {
		r.log.Errorf("Producer failed to start: %v", launchErr)
		outcome.Kind, outcome.Reason, outcome.Err = Failed, ProducerNotReady, launchErr
		return outcome, nil
	}

	var consumers []executor.TaskHandle
	defer func() {
		r.setState(DRAINING)
		if stopErr := o.stopAll(consumers, producer); stopErr != nil {
			r.log.Errorf("Cannot stop every process: %v", stopErr)
		}
	}()

	r.setState(STARTING_CONSUMERS)
	count := c.ClientCount()
	prefetchSize, _ := c.PrefetchSize()
	bindings := isolation.ClientBindings(o.conf.ClientCPUs, count)
	for i := 0; i < count; i++ {
		statsWriter := i == count-1
		config := o.conf.consumerConfig(bindings[i], prefetchSize, statsWriter, outcome.Directory)
		consumer, launchErr := ipc.NewConsumer(o.exec, config, i).Launch()
		if launchErr != nil {
			r.log.Errorf("Consumer %d failed to start: %v", i, launchErr)
			outcome.Kind, outcome.Reason, outcome.Err = Failed, ConsumerNotStarted, launchErr
			return outcome, nil
		}
		consumers = append(consumers, consumer)
	}

	r.setState(RUNNING)
	r.log.Infof("Running for %s", o.conf.Duration)
	if producer.Wait(o.conf.Duration) {
		exitCode, _ := producer.ExitCode()
		r.log.Errorf("Producer exited with code %d before end of run", exitCode)
		executor.LogUnsucessfulExecution(producer.Name(), producer)
		outcome.Kind, outcome.Reason = Failed, ProducerExited
		outcome.Err = errors.Errorf("producer exited with code %d after %s of %s run",
			exitCode, time.Since(start).Round(time.Millisecond), o.conf.Duration)
		return outcome, nil
	}

	outcome.Kind = Completed
	return outcome, nil
}

// prepareDirectory resolves and creates run directory. Populated directory is
// skipped or versioned according to collision policy.
func (o *Orchestrator) prepareDirectory(c sweep.Combination) (directory string, created, skip bool, err error) {
	directory = results.Path(o.conf.ResultsRoot, c)
	populated, err := results.IsPopulated(directory)
	if err != nil {
		return directory, false, false, setupFailure(err, "cannot inspect run directory %q", directory)
	}
	if populated {
		if o.conf.Collision != VersionExisting {
			return directory, false, true, nil
		}
		directory, err = results.Uniquify(directory)
		if err != nil {
			return directory, false, false, setupFailure(err, "cannot version run directory %q", directory)
		}
	}

	if _, statErr := os.Stat(directory); os.IsNotExist(statErr) {
		created = true
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return directory, false, false, setupFailure(err, "cannot create run directory %q", directory)
	}
	return directory, created, false, nil
}

// stopAll interrupts every consumer concurrently and then the producer.
func (o *Orchestrator) stopAll(consumers []executor.TaskHandle, producer executor.TaskHandle) error {
	var group errgroup.Group
	for _, consumer := range consumers {
		consumer := consumer
		group.Go(func() error {
			return stopTask(consumer, o.conf.StopGrace)
		})
	}

	errs := &errcollection.ErrorCollection{}
	errs.Add(group.Wait())
	errs.Add(stopTask(producer, o.conf.StopGrace))
	return errs.GetErrIfAny()
}

func stopTask(task executor.TaskHandle, grace time.Duration) error {
	result, err := task.Stop(grace)
	if err != nil {
		return errors.Wrapf(err, "cannot stop %q", task.Name())
	}
	exitCode, _ := task.ExitCode()
	if result == executor.ForcedExit {
		logrus.Warnf("%q ignored interrupt and was killed", task.Name())
	} else {
		logrus.Debugf("%q stopped with exit code %d", task.Name(), exitCode)
	}
	return errors.Wrapf(task.Clean(), "cannot clean %q", task.Name())
}
