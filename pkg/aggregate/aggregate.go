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

package aggregate

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/coder14159/olive/pkg/results"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrEmptyAggregation is returned when not a single run contributed data.
var ErrEmptyAggregation = errors.New("empty aggregation")

// DefaultPercentile is used for interval latencies when none is requested.
const DefaultPercentile = "99"

const (
	messagesColumn  = "messages_per_sec"
	bytesColumn     = "bytes_per_sec"
	megabytesColumn = "megabytes_per_sec"
)

// Request describes which results are merged into a comparison table.
type Request struct {
	// Roots are result trees compared with each other, in order.
	Roots []string
	// Descriptions optionally name every root in legends.
	Descriptions []string
	Sweep        sweep.Sweep
	Kind         Kind
	// Percentiles select latency-interval columns.
	Percentiles []string
}

// Validate checks request consistency.
func (r Request) Validate() error {
	if len(r.Roots) == 0 {
		return errors.Wrap(sweep.ErrConfiguration, "at least one result directory is required")
	}
	if len(r.Descriptions) > 0 && len(r.Descriptions) != len(r.Roots) {
		return errors.Wrapf(sweep.ErrConfiguration, "%d descriptions given for %d result directories",
			len(r.Descriptions), len(r.Roots))
	}
	if r.Sweep.Len() == 0 {
		return errors.Wrap(sweep.ErrConfiguration, "sweep has no combinations")
	}
	if _, err := ParseKind(string(r.Kind)); err != nil {
		return err
	}
	return nil
}

func (r Request) prefix(root int) string {
	if len(r.Descriptions) > 0 {
		return r.Descriptions[root]
	}
	if len(r.Roots) > 1 {
		return filepath.Base(filepath.Clean(r.Roots[root]))
	}
	return ""
}

// Aggregate loads result file of requested kind from every run directory of
// every root and merges them into a table. Roots are visited in order and
// runs in sweep order. Missing roots and files are logged and skipped.
func Aggregate(request Request) (ComparisonTable, error) {
	if err := request.Validate(); err != nil {
		return ComparisonTable{}, err
	}
	if request.Kind == LatencyInterval && len(request.Percentiles) == 0 {
		request.Percentiles = []string{DefaultPercentile}
	}

	table := ComparisonTable{Kind: request.Kind}
	texts := newTexts()

	for i, root := range request.Roots {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			logrus.Errorf("Invalid path: %s", root)
			table.SkippedRoots = append(table.SkippedRoots, root)
			continue
		}
		prefix := request.prefix(i)

		it := request.Sweep.Iterator()
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			run := results.Path(root, c)
			path := filepath.Join(run, request.Kind.FileName())

			dataset, err := LoadDataset(path)
			if errors.Cause(err) == ErrMissingResultFile {
				logrus.Warnf("Missing result file: %s", path)
				table.Missing = append(table.Missing, path)
				continue
			}
			if err != nil {
				return ComparisonTable{}, err
			}
			if dataset.Len() == 0 {
				logrus.Warnf("No samples in result file: %s", path)
				table.Missing = append(table.Missing, path)
				continue
			}
			logrus.Debugf("Loading: %s", path)

			legend := joinLegend(prefix, joinLegend(texts.legend(request.Sweep, c)...))
			if err := table.add(dataset, legend, run, request.Percentiles); err != nil {
				return ComparisonTable{}, errors.Wrapf(err, "cannot aggregate %s", path)
			}
			table.Runs++
		}
	}
	table.Titles = texts.titles

	if table.Runs == 0 {
		return table, errors.Wrapf(ErrEmptyAggregation, "no %s found under %s",
			request.Kind.FileName(), strings.Join(request.Roots, ", "))
	}
	return table, nil
}

func (t *ComparisonTable) add(dataset Dataset, legend, run string, percentiles []string) error {
	switch t.Kind {
	case LatencySummary:
		t.addSummary(dataset, legend, run)
		return nil
	case LatencyInterval:
		return t.addLatencyInterval(dataset, legend, run, percentiles)
	case ThroughputInterval:
		return t.addThroughputInterval(dataset, legend, run)
	}
	return errors.Errorf("unknown result kind %q", t.Kind)
}

// addSummary transposes the last summary row: percentile labels become the
// table index.
func (t *ComparisonTable) addSummary(dataset Dataset, legend, run string) {
	row := dataset.Rows[dataset.Len()-1]
	positions := make([]int, len(dataset.Columns))
	for i, label := range dataset.Columns {
		positions[i] = t.indexOf(label)
	}

	values := make([]decimal.NullDecimal, len(t.Index))
	for i, value := range row {
		values[positions[i]] = decimal.NullDecimal{Decimal: value.Round(0), Valid: true}
	}
	t.Columns = append(t.Columns, Column{Legend: legend, Run: run, Values: values})
}

func (t *ComparisonTable) indexOf(label string) int {
	for i, existing := range t.Index {
		if existing == label {
			return i
		}
	}
	t.Index = append(t.Index, label)
	return len(t.Index) - 1
}

func (t *ComparisonTable) addLatencyInterval(dataset Dataset, legend, run string, percentiles []string) error {
	for _, percentile := range percentiles {
		values, ok := dataset.Column(percentile)
		if !ok {
			return errors.Errorf("no %q percentile column", percentile)
		}
		t.Columns = append(t.Columns, Column{
			Legend:     joinLegend(legend, percentile+"%"),
			Percentile: percentile,
			Run:        run,
			Values:     valid(values, true),
		})
	}
	t.extendIndex(dataset.Len())
	return nil
}

func (t *ComparisonTable) addThroughputInterval(dataset Dataset, legend, run string) error {
	messages, ok := dataset.Column(messagesColumn)
	if !ok {
		return errors.Errorf("no %q column", messagesColumn)
	}
	sizeColumn := bytesColumn
	sizes, ok := dataset.Column(bytesColumn)
	if !ok {
		sizeColumn = megabytesColumn
		sizes, ok = dataset.Column(megabytesColumn)
	}
	if !ok {
		return errors.Errorf("neither %q nor %q column", bytesColumn, megabytesColumn)
	}

	t.Columns = append(t.Columns,
		Column{Legend: legend, Metric: messagesColumn, Run: run, Values: valid(messages, false)},
		Column{Legend: legend, Metric: sizeColumn, Run: run, Values: valid(sizes, false)},
	)
	t.extendIndex(dataset.Len())
	return nil
}

func (t *ComparisonTable) extendIndex(rows int) {
	for len(t.Index) < rows {
		t.Index = append(t.Index, strconv.Itoa(len(t.Index)))
	}
}

func valid(values []decimal.Decimal, round bool) []decimal.NullDecimal {
	result := make([]decimal.NullDecimal, len(values))
	for i, value := range values {
		if round {
			value = value.Round(0)
		}
		result[i] = decimal.NullDecimal{Decimal: value, Valid: true}
	}
	return result
}
