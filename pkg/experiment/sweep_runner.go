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
	"fmt"

	"github.com/coder14159/olive/pkg/metadata"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/visualization"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

// Runner executes a single combination.
type Runner interface {
	Execute(c sweep.Combination) (RunOutcome, error)
}

// SweepOptions controls sweep reporting.
type SweepOptions struct {
	// Progress shows a progress bar instead of log lines.
	Progress bool
	// Metadata receives outcome of every run when set.
	Metadata metadata.Metadata
}

// SweepReport collects outcomes of every executed combination in sweep order.
type SweepReport struct {
	Outcomes []RunOutcome
}

// Count returns number of outcomes of kind.
func (r SweepReport) Count(kind OutcomeKind) int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Kind == kind {
			count++
		}
	}
	return count
}

// Succeeded reports whether no run failed.
func (r SweepReport) Succeeded() bool {
	return r.Count(Failed) == 0
}

// Table returns outcome of every run as a table.
func (r SweepReport) Table() *visualization.Table {
	table := visualization.NewTable([]string{"combination", "outcome", "directory", "duration"}, nil)
	for _, outcome := range r.Outcomes {
		table.Append(outcome.Combination.String(), outcome.String(), outcome.Directory, outcome.Duration.String())
	}
	return table
}

// RunSweep executes every combination of s sequentially. Failed and skipped
// runs do not stop the sweep, setup failures do.
func RunSweep(runner Runner, s sweep.Sweep, options SweepOptions) (SweepReport, error) {
	report := SweepReport{}
	total := s.Len()

	var bar *pb.ProgressBar
	if options.Progress {
		bar = pb.StartNew(total)
		bar.ShowCounters = false
		bar.ShowTimeLeft = true
		defer bar.Finish()
	}

	it := s.Iterator()
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		iteration := len(report.Outcomes) + 1
		if bar != nil {
			bar.Prefix(fmt.Sprintf("[%02d / %02d] %s ", iteration, total, c))
			// Changes to progress bar should be applied immediately
			bar.AlwaysUpdate = true
			bar.Update()
			bar.AlwaysUpdate = false
		}
		logrus.Infof("[%d / %d] %s", iteration, total, c)

		outcome, err := runner.Execute(c)
		if err != nil {
			return report, errors.Wrapf(err, "run %d of %d (%s)", iteration, total, c)
		}
		report.Outcomes = append(report.Outcomes, outcome)
		logrus.WithFields(c.Fields()).Infof("Run %s", outcome)

		if options.Metadata != nil {
			if err := options.Metadata.Record(c.String(), outcome.String(), metadata.TypeOutcome); err != nil {
				logrus.Warnf("Cannot record outcome of %s: %v", c, err)
			}
		}
		if bar != nil {
			bar.Add(1)
		}
	}

	logrus.Infof("Sweep finished: %d completed, %d skipped, %d failed",
		report.Count(Completed), report.Count(Skipped), report.Count(Failed))
	return report, nil
}
