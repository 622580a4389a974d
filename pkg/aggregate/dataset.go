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
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrMissingResultFile is returned when a run directory has no requested CSV file.
var ErrMissingResultFile = errors.New("missing result file")

// Dataset is a parsed result CSV file: named columns and numeric rows.
type Dataset struct {
	Columns []string
	Rows    [][]decimal.Decimal
}

// LoadDataset reads CSV file at path. First record is the header, every other
// record must have the same number of numeric fields.
func LoadDataset(path string) (Dataset, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return Dataset{}, errors.Wrapf(ErrMissingResultFile, "%s", path)
	}
	if err != nil {
		return Dataset{}, errors.Wrapf(err, "cannot open %s", path)
	}
	defer file.Close()

	dataset, err := ReadDataset(file)
	return dataset, errors.Wrapf(err, "cannot load %s", path)
}

// ReadDataset parses CSV from r.
func ReadDataset(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Dataset{}, errors.New("no header")
	}
	if err != nil {
		return Dataset{}, err
	}

	dataset := Dataset{Columns: make([]string, len(header))}
	for i, name := range header {
		dataset.Columns[i] = strings.TrimSpace(name)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, err
		}
		row := make([]decimal.Decimal, len(record))
		for i, field := range record {
			row[i], err = decimal.NewFromString(strings.TrimSpace(field))
			if err != nil {
				return Dataset{}, errors.Wrapf(err, "line %d column %q", line, dataset.Columns[i])
			}
		}
		dataset.Rows = append(dataset.Rows, row)
	}
	return dataset, nil
}

// Index returns position of the named column or -1.
func (d Dataset) Index(name string) int {
	for i, column := range d.Columns {
		if column == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named column.
func (d Dataset) Column(name string) ([]decimal.Decimal, bool) {
	i := d.Index(name)
	if i < 0 {
		return nil, false
	}
	values := make([]decimal.Decimal, len(d.Rows))
	for r, row := range d.Rows {
		values[r] = row[i]
	}
	return values, true
}

// Len returns number of data rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}
