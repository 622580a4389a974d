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
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Column is a single series of a comparison table.
type Column struct {
	Legend string
	Metric string
	// Percentile is set for latency interval series.
	Percentile string
	// Run is the run directory the series was loaded from.
	Run    string
	Values []decimal.NullDecimal
}

// Header returns the text naming the column in rendered tables.
func (c Column) Header() string {
	if c.Legend == "" {
		return c.Metric
	}
	if c.Metric == "" {
		return c.Legend
	}
	return c.Legend + " " + c.Metric
}

// ComparisonTable is the merged result of a sweep: one or more columns per
// loaded run in sweep order, a row index, and title entries shared by every
// column.
type ComparisonTable struct {
	Kind    Kind
	Index   []string
	Columns []Column
	Titles  []string
	// Missing lists result files which were expected but not found.
	Missing []string
	// SkippedRoots lists result roots which do not exist.
	SkippedRoots []string
	// Runs is the number of run directories that contributed columns.
	Runs int
}

// Legends returns legend of every column.
func (t ComparisonTable) Legends() []string {
	legends := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		legends[i] = column.Legend
	}
	return legends
}

// Title returns title entries joined with spaces.
func (t ComparisonTable) Title() string {
	return joinLegend(t.Titles...)
}

// Len returns number of rows.
func (t ComparisonTable) Len() int {
	return len(t.Index)
}

// Value returns value in row of column. Columns shorter than the index have
// no value in the trailing rows.
func (t ComparisonTable) Value(row, column int) (decimal.Decimal, bool) {
	values := t.Columns[column].Values
	if row >= len(values) || !values[row].Valid {
		return decimal.Decimal{}, false
	}
	return values[row].Decimal, true
}

// Rows returns the table as text, index first. Absent values are empty.
func (t ComparisonTable) Rows() [][]string {
	rows := make([][]string, t.Len())
	for r := range rows {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, t.Index[r])
		for c := range t.Columns {
			value, ok := t.Value(r, c)
			if ok {
				row = append(row, value.String())
			} else {
				row = append(row, "")
			}
		}
		rows[r] = row
	}
	return rows
}

// Headers returns column headers of Rows.
func (t ComparisonTable) Headers() []string {
	headers := make([]string, 0, len(t.Columns)+1)
	headers = append(headers, t.indexName())
	for i, column := range t.Columns {
		header := column.Header()
		if header == "" {
			header = "series " + strconv.Itoa(i+1)
		}
		headers = append(headers, header)
	}
	return headers
}

func (t ComparisonTable) indexName() string {
	if t.Kind == LatencySummary {
		return "percentile"
	}
	return "interval"
}

// WriteCSV writes the table in wide format: index column followed by one
// column per series.
func (t ComparisonTable) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Headers()); err != nil {
		return errors.Wrap(err, "cannot write header")
	}
	if err := writer.WriteAll(t.Rows()); err != nil {
		return errors.Wrap(err, "cannot write rows")
	}
	return nil
}
