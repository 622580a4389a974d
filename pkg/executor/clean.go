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
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// interruptGracePeriod is given to every live task when the driver itself is interrupted.
const interruptGracePeriod = 2 * time.Second

type taskHandleStopper struct {
	taskHandles []TaskHandle
	afterStop   []func()
	sync.Mutex
}

var (
	globalTaskHandleStopper *taskHandleStopper
	globalStopperMutex      sync.Mutex
)

// RegisterInterruptHandle waits for Interrupt signal and stops unconditionally
// all live taskHandles started by Local executor. Returned function stops them
// on demand.
func RegisterInterruptHandle() func() {
	globalStopperMutex.Lock()
	defer globalStopperMutex.Unlock()
	globalTaskHandleStopper = &taskHandleStopper{taskHandles: []TaskHandle{}}
	return globalTaskHandleStopper.registerInterruptHandle()
}

// OnInterrupt adds hook run on Interrupt signal after every live task is stopped
// and before the driver exits. Hooks run in order they were added.
func OnInterrupt(hook func()) {
	globalStopperMutex.Lock()
	stopper := globalTaskHandleStopper
	globalStopperMutex.Unlock()
	if stopper == nil {
		logrus.Warn("clean: interrupt handle is not registered, hook ignored")
		return
	}
	stopper.Lock()
	defer stopper.Unlock()
	stopper.afterStop = append(stopper.afterStop, hook)
}

func register(t TaskHandle) {
	globalStopperMutex.Lock()
	stopper := globalTaskHandleStopper
	globalStopperMutex.Unlock()
	if stopper != nil {
		stopper.register(t)
	}
}

func unregister(t TaskHandle) {
	globalStopperMutex.Lock()
	stopper := globalTaskHandleStopper
	globalStopperMutex.Unlock()
	if stopper != nil {
		stopper.unregister(t)
	}
}

func (ths *taskHandleStopper) registerInterruptHandle() func() {
	logrus.Debugf("clean: interrupt handle initialized")

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		logrus.Warnf("clean: stopping all tasks on signal '%v'", <-c)
		ths.interrupt()
		os.Exit(1)
	}()
	return ths.stopAllTaskHandles
}

func (ths *taskHandleStopper) interrupt() {
	ths.stopAllTaskHandles()

	ths.Lock()
	hooks := ths.afterStop
	ths.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

func (ths *taskHandleStopper) stopAllTaskHandles() {
	ths.Lock()
	handles := ths.taskHandles
	ths.taskHandles = []TaskHandle{}
	ths.Unlock()

	// Stop in reverse order, consumers were started after producer.
	for i := len(handles) - 1; i >= 0; i-- {
		taskHandle := handles[i]
		logrus.Debugf("clean: stopping %q...", taskHandle.Name())
		result, err := taskHandle.Stop(interruptGracePeriod)
		logrus.Debugf("clean: taskHandle %q Stop() returned %v, %v", taskHandle.Name(), result, err)
	}
}

func (ths *taskHandleStopper) register(t TaskHandle) {
	ths.Lock()
	defer ths.Unlock()
	ths.taskHandles = append(ths.taskHandles, t)
}

func (ths *taskHandleStopper) unregister(t TaskHandle) {
	ths.Lock()
	defer ths.Unlock()
	for i, handle := range ths.taskHandles {
		if handle == t {
			ths.taskHandles = append(ths.taskHandles[:i], ths.taskHandles[i+1:]...)
			return
		}
	}
}

// liveTaskHandles returns number of tasks that will be stopped on interrupt.
func liveTaskHandles() int {
	globalStopperMutex.Lock()
	stopper := globalTaskHandleStopper
	globalStopperMutex.Unlock()
	if stopper == nil {
		return 0
	}
	stopper.Lock()
	defer stopper.Unlock()
	return len(stopper.taskHandles)
}
