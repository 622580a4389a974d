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

package main

import (
	"fmt"
	"os"

	"github.com/coder14159/olive/pkg/aggregate"
	"github.com/coder14159/olive/pkg/conf"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/visualization"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	exFailure = 1
	exUsage   = 64
)

var (
	directoriesFlag  = conf.NewSliceFlag("client_directories", "Result directories to compare.")
	descriptionsFlag = conf.NewSliceFlag("client_directory_descriptions",
		"Legend names of result directories, one per directory in the same order.")
	kindFlag = conf.NewStringFlag("kind",
		"Result file to aggregate: latency-summary, latency-interval or throughput-interval.",
		string(aggregate.LatencySummary))
	percentilesFlag = conf.NewSliceFlag("client_latency_percentiles",
		"Percentiles of latency-interval files.", aggregate.DefaultPercentile)
	outputFlag = conf.NewStringFlag("output", "Write comparison table as CSV to this file.", "")
)

func main() {
	conf.SetAppName("ipc-aggregate")
	conf.SetHelp(`Merges result files of a parameter sweep into one comparison table.
Parameters with more than one value become legend entries of every column,
parameters with a single value become the table title.`)

	if err := conf.ParseFlags(); err != nil {
		logrus.Errorf("Cannot parse flags: %q", err.Error())
		os.Exit(exUsage)
	}
	logrus.SetLevel(conf.LogLevel())
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	os.Exit(run())
}

func exitCode(err error) int {
	if errors.Cause(err) == sweep.ErrConfiguration {
		return exUsage
	}
	return exFailure
}

func writeCSV(path string, table aggregate.ComparisonTable) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", path)
	}
	if err := table.WriteCSV(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "cannot write %q", path)
	}
	return file.Close()
}

func run() int {
	s, err := sweep.FromFlags()
	if err != nil {
		logrus.Errorf("Invalid sweep: %v", err)
		return exitCode(err)
	}
	kind, err := aggregate.ParseKind(kindFlag.Value())
	if err != nil {
		logrus.Errorf("Invalid result kind: %v", err)
		return exitCode(err)
	}

	table, err := aggregate.Aggregate(aggregate.Request{
		Roots:        directoriesFlag.Value(),
		Descriptions: descriptionsFlag.Value(),
		Sweep:        s,
		Kind:         kind,
		Percentiles:  percentilesFlag.Value(),
	})
	if err != nil {
		logrus.Errorf("Aggregation failed: %v", err)
		return exitCode(err)
	}
	if len(table.Missing) > 0 {
		logrus.Warnf("%d of %d result files missing", len(table.Missing), len(table.Missing)+table.Runs)
	}
	for _, list := range []*visualization.List{
		visualization.NewList("Skipped result directories", table.SkippedRoots...),
		visualization.NewList("Missing result files", table.Missing...),
	} {
		if err := visualization.PrintList(os.Stderr, list); err != nil {
			logrus.Warnf("Cannot print list: %v", err)
		}
	}

	if title := table.Title(); title != "" {
		fmt.Println(title)
	}
	if err := visualization.DrawTable(os.Stdout, visualization.NewTable(table.Headers(), table.Rows())); err != nil {
		logrus.Errorf("Cannot print comparison table: %v", err)
		return exFailure
	}

	if path := outputFlag.Value(); path != "" {
		if err := writeCSV(path, table); err != nil {
			logrus.Errorf("%v", err)
			return exFailure
		}
		logrus.Infof("Comparison table written to %q", path)
	}
	return 0
}
