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
	"strings"

	"github.com/coder14159/olive/pkg/metadata"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/visualization"
	"github.com/sirupsen/logrus"
)

func prettyValues(d sweep.Dimension) string {
	values := make([]string, len(d.Values()))
	for i, value := range d.Values() {
		switch d.Name() {
		case sweep.Rate:
			values[i] = visualization.ThroughputToPretty(value)
		case sweep.QueueSize, sweep.MessageSize:
			values[i] = visualization.SizeToPretty(value)
		default:
			values[i] = value
		}
	}
	return strings.Join(values, ", ")
}

// LogRunHeader logs host description and sweep parameters before the sweep starts.
func LogRunHeader(config Config, s sweep.Sweep, platform map[string]string) {
	logrus.Info("=====Host Machine=====")
	for _, key := range []string{metadata.HostNameKey, metadata.CPUCountKey, metadata.ArchKey, metadata.CPUModelNameKey} {
		if value := platform[key]; value != "" {
			logrus.Infof("%-22s%s", key+":", value)
		}
	}

	logrus.Info("=====Parameters=======")
	logrus.Infof("%-22s%s", "tool_type:", config.ToolType)
	logrus.Infof("%-22s%s", "memory_name:", config.MemoryName)
	logrus.Infof("%-22s%s", "run_time:", config.Duration)
	logrus.Infof("%-22s%s", "server_cpu:", config.ServerCPU)
	for _, d := range s.Dimensions() {
		logrus.Infof("%-22s%s", d.Name()+":", prettyValues(d))
	}
	logrus.Infof("%-22s%s", "client_stats:", strings.Join(config.Stats, ","))
	if config.ResultsRoot != "" {
		logrus.Infof("%-22s%s", "client_directory:", config.ResultsRoot)
	}
	logrus.Infof("%-22s%d", "combinations:", s.Len())
}

// SweepMetadata returns dimension values keyed by dimension name.
func SweepMetadata(s sweep.Sweep) map[string]string {
	values := map[string]string{}
	for _, d := range s.Dimensions() {
		values[d.Name()] = strings.Join(d.Values(), ",")
	}
	return values
}
