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

package metadata

import (
	"bufio"
	"io/ioutil"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// HostNameKey defines a key in the platform metrics map
	HostNameKey = "host_name"
	// CPUCountKey defines a key in the platform metrics map
	CPUCountKey = "cpu_count"
	// ArchKey defines a key in the platform metrics map
	ArchKey = "arch"
	// CPUModelNameKey defines a key in the platform metrics map
	CPUModelNameKey = "cpu_model"
	// KernelVersionKey defines a key in the platform metrics map
	KernelVersionKey = "kernel_version"
	// PowerGovernorKey defines a key in the platform metrics map
	PowerGovernorKey = "power_governor"
)

var (
	cpuInfoPath       = "/proc/cpuinfo"
	kernelVersionPath = "/proc/sys/kernel/osrelease"
	governorPath      = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_governor"
)

// GetPlatformMetrics returns map of strings with platform metrics.
// If metric could not be retrieved value for the key is empty string.
func GetPlatformMetrics() map[string]string {
	platformMetrics := map[string]string{
		CPUCountKey: strconv.Itoa(runtime.NumCPU()),
		ArchKey:     runtime.GOARCH,
	}

	probes := []struct {
		key   string
		probe func() (string, error)
	}{
		{HostNameKey, os.Hostname},
		{CPUModelNameKey, CPUModelName},
		{KernelVersionKey, KernelVersion},
		{PowerGovernorKey, PowerGovernor},
	}
	for _, p := range probes {
		item, err := p.probe()
		if err != nil {
			logrus.Warnf("Failed to get %s platform metric. Skipping. Error: %s", p.key, err)
		}
		platformMetrics[p.key] = item
	}
	return platformMetrics
}

// CPUModelName returns first 'model name' entry of /proc/cpuinfo.
func CPUModelName() (string, error) {
	file, err := os.Open(cpuInfoPath)
	if err != nil {
		return "", errors.Wrapf(err, "cannot open %s", cpuInfoPath)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		chunks := strings.SplitN(scanner.Text(), ":", 2)
		if len(chunks) == 2 && strings.TrimSpace(chunks[0]) == "model name" {
			return strings.TrimSpace(chunks[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrapf(err, "cannot read %s", cpuInfoPath)
	}
	return "", errors.Errorf("did not find 'model name' in %s", cpuInfoPath)
}

// KernelVersion returns running kernel release.
func KernelVersion() (string, error) {
	return readContents(kernelVersionPath)
}

// PowerGovernor returns frequency scaling governor of the first CPU.
func PowerGovernor() (string, error) {
	return readContents(governorPath)
}

func readContents(name string) (string, error) {
	content, err := ioutil.ReadFile(name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", name)
	}
	return strings.TrimSpace(string(content)), nil
}
