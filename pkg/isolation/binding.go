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

package isolation

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CPU is an optional core binding of a benchmark process. The zero value is
// unbound.
type CPU struct {
	core  int
	bound bool
}

// Unbound leaves placement of the process to the scheduler.
func Unbound() CPU {
	return CPU{}
}

// Core binds the process to the given core.
func Core(core int) CPU {
	return CPU{core: core, bound: true}
}

// ParseCPU accepts a core number. Negative numbers, "none" and empty string
// mean unbound.
func ParseCPU(value string) (CPU, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "none") {
		return Unbound(), nil
	}
	core, err := strconv.Atoi(value)
	if err != nil {
		return Unbound(), errors.Errorf("invalid cpu %q", value)
	}
	if core < 0 {
		return Unbound(), nil
	}
	return Core(core), nil
}

// ParseCPUs parses a list of cores.
func ParseCPUs(values []string) ([]CPU, error) {
	cpus := make([]CPU, 0, len(values))
	for _, value := range values {
		cpu, err := ParseCPU(value)
		if err != nil {
			return nil, err
		}
		cpus = append(cpus, cpu)
	}
	return cpus, nil
}

// IsBound reports whether the process is pinned to a core.
func (c CPU) IsBound() bool {
	return c.bound
}

// Get returns the core. It panics when unbound.
func (c CPU) Get() int {
	if !c.bound {
		panic("cpu is unbound")
	}
	return c.core
}

// Args returns the --cpu option for the benchmark binaries. Unbound processes
// get no option at all.
func (c CPU) Args() []string {
	if !c.bound {
		return nil
	}
	return []string{"--cpu", strconv.Itoa(c.core)}
}

func (c CPU) String() string {
	if !c.bound {
		return "none"
	}
	return strconv.Itoa(c.core)
}

// ClientBindings returns one binding per client. When fewer cores than clients
// are given the front of the list is padded with unbound entries, so the last
// started clients (including the stats writer) are the pinned ones. Extra cores
// are ignored. The input slice is never modified.
func ClientBindings(cpus []CPU, clientCount int) []CPU {
	bindings := make([]CPU, 0, clientCount)
	for i := len(cpus); i < clientCount; i++ {
		bindings = append(bindings, Unbound())
	}
	for _, cpu := range cpus {
		if len(bindings) == clientCount {
			break
		}
		bindings = append(bindings, cpu)
	}
	return bindings
}
