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

// Package sweep enumerates parameter combinations for benchmark runs.
//
// A sweep is the Cartesian product of up to five dimensions. Combinations are
// always produced in the same nesting order, outermost to innermost:
// rate, client_count, queue_size, message_size, prefetch_size.
// Directory layout and legend order of the aggregated results depend on it.
package sweep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Names of sweep dimensions.
const (
	QueueSize    = "queue_size"
	Rate         = "rate"
	MessageSize  = "message_size"
	ClientCount  = "client_count"
	PrefetchSize = "prefetch_size"
)

// MaxRate is the rate alias accepted on input. It is stored as "0".
const MaxRate = "max"

// ErrConfiguration is the cause of every error returned for invalid sweep input.
var ErrConfiguration = errors.New("configuration error")

// nestingOrder lists dimensions from the outermost to the innermost loop.
var nestingOrder = []string{Rate, ClientCount, QueueSize, MessageSize, PrefetchSize}

// optional dimensions may be omitted from a sweep.
var optional = map[string]bool{PrefetchSize: true}

// NestingOrder returns dimension names in enumeration order.
func NestingOrder() []string {
	return append([]string(nil), nestingOrder...)
}

func position(name string) int {
	for i, n := range nestingOrder {
		if n == name {
			return i
		}
	}
	return -1
}

// Dimension is a named axis of the parameter space.
type Dimension struct {
	name   string
	values []string
}

// NewDimension validates and normalizes values of a dimension. Value order is
// preserved.
func NewDimension(name string, values ...string) (Dimension, error) {
	if position(name) < 0 {
		return Dimension{}, errors.Wrapf(ErrConfiguration, "unknown dimension %q", name)
	}
	if len(values) == 0 {
		return Dimension{}, errors.Wrapf(ErrConfiguration, "dimension %q has no values", name)
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		v, err := normalize(name, value)
		if err != nil {
			return Dimension{}, err
		}
		normalized = append(normalized, v)
	}

	return Dimension{name: name, values: normalized}, nil
}

func normalize(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if name == Rate && strings.EqualFold(value, MaxRate) {
		return "0", nil
	}

	number, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return "", errors.Wrapf(ErrConfiguration, "dimension %q: value %q is not a non-negative integer", name, value)
	}
	if name == ClientCount && number < 1 {
		return "", errors.Wrapf(ErrConfiguration, "dimension %q: at least one client is required", name)
	}
	return strconv.FormatUint(number, 10), nil
}

// Name returns dimension name.
func (d Dimension) Name() string {
	return d.name
}

// Values returns a copy of dimension values.
func (d Dimension) Values() []string {
	return append([]string(nil), d.values...)
}

// Cardinality returns number of values.
func (d Dimension) Cardinality() int {
	return len(d.values)
}

// Sweep is an immutable set of dimensions kept in nesting order.
type Sweep struct {
	dimensions []Dimension
}

// New builds a sweep. Dimensions may be given in any order. All dimensions
// except prefetch_size are mandatory and none may repeat.
func New(dimensions ...Dimension) (Sweep, error) {
	byName := map[string]Dimension{}
	for _, d := range dimensions {
		if d.name == "" {
			return Sweep{}, errors.Wrap(ErrConfiguration, "uninitialized dimension")
		}
		if _, ok := byName[d.name]; ok {
			return Sweep{}, errors.Wrapf(ErrConfiguration, "dimension %q given more than once", d.name)
		}
		byName[d.name] = d
	}

	s := Sweep{}
	for _, name := range nestingOrder {
		d, ok := byName[name]
		if !ok {
			if optional[name] {
				continue
			}
			return Sweep{}, errors.Wrapf(ErrConfiguration, "dimension %q is required", name)
		}
		s.dimensions = append(s.dimensions, d)
	}
	return s, nil
}

// FromValues builds a sweep from raw values keyed by dimension name. Keys with
// no values are treated as absent.
func FromValues(values map[string][]string) (Sweep, error) {
	var dimensions []Dimension
	for name, vs := range values {
		if position(name) < 0 {
			return Sweep{}, errors.Wrapf(ErrConfiguration, "unknown dimension %q", name)
		}
		if len(vs) == 0 && optional[name] {
			continue
		}
		d, err := NewDimension(name, vs...)
		if err != nil {
			return Sweep{}, err
		}
		dimensions = append(dimensions, d)
	}
	return New(dimensions...)
}

// Dimensions returns dimensions in nesting order.
func (s Sweep) Dimensions() []Dimension {
	return append([]Dimension(nil), s.dimensions...)
}

// Dimension returns dimension by name.
func (s Sweep) Dimension(name string) (Dimension, bool) {
	for _, d := range s.dimensions {
		if d.name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Cardinality returns number of values of the named dimension or 0 when the
// dimension is not swept.
func (s Sweep) Cardinality(name string) int {
	d, _ := s.Dimension(name)
	return d.Cardinality()
}

// Len returns number of combinations.
func (s Sweep) Len() int {
	if len(s.dimensions) == 0 {
		return 0
	}
	total := 1
	for _, d := range s.dimensions {
		total *= len(d.values)
	}
	return total
}

// Iterator returns a fresh iterator positioned before the first combination.
func (s Sweep) Iterator() *Iterator {
	return &Iterator{sweep: s, indices: make([]int, len(s.dimensions))}
}

// Combinations materializes all combinations in enumeration order.
func (s Sweep) Combinations() []Combination {
	combinations := make([]Combination, 0, s.Len())
	it := s.Iterator()
	for c, ok := it.Next(); ok; c, ok = it.Next() {
		combinations = append(combinations, c)
	}
	return combinations
}

// Iterator walks the Cartesian product like an odometer: the innermost
// dimension changes fastest.
type Iterator struct {
	sweep   Sweep
	indices []int
	started bool
	done    bool
}

// Next returns the next combination. The second value is false when the sweep
// is exhausted.
func (it *Iterator) Next() (Combination, bool) {
	if it.done || len(it.sweep.dimensions) == 0 {
		it.done = true
		return Combination{}, false
	}

	if it.started {
		i := len(it.indices) - 1
		for ; i >= 0; i-- {
			it.indices[i]++
			if it.indices[i] < len(it.sweep.dimensions[i].values) {
				break
			}
			it.indices[i] = 0
		}
		if i < 0 {
			it.done = true
			return Combination{}, false
		}
	}
	it.started = true

	c := Combination{}
	for i, d := range it.sweep.dimensions {
		c.set(d.name, d.values[it.indices[i]])
	}
	return c, true
}

// Combination assigns one value to every swept dimension.
type Combination struct {
	values  [5]string
	present [5]bool
}

func (c *Combination) set(name, value string) {
	p := position(name)
	c.values[p] = value
	c.present[p] = true
}

// Value returns value of the named dimension.
func (c Combination) Value(name string) (string, bool) {
	p := position(name)
	if p < 0 || !c.present[p] {
		return "", false
	}
	return c.values[p], true
}

func (c Combination) get(name string) string {
	v, _ := c.Value(name)
	return v
}

// QueueSize returns queue size in bytes.
func (c Combination) QueueSize() string { return c.get(QueueSize) }

// Rate returns messages per second, "0" meaning as fast as possible.
func (c Combination) Rate() string { return c.get(Rate) }

// MessageSize returns message size in bytes.
func (c Combination) MessageSize() string { return c.get(MessageSize) }

// ClientCount returns number of consumers.
func (c Combination) ClientCount() int {
	count, _ := strconv.Atoi(c.get(ClientCount))
	return count
}

// PrefetchSize returns consumer prefetch size. The second value is false when
// prefetch size is not swept.
func (c Combination) PrefetchSize() (string, bool) {
	return c.Value(PrefetchSize)
}

// IsMaxRate reports whether producer is unthrottled.
func (c Combination) IsMaxRate() bool {
	return c.Rate() == "0"
}

// DisplayRate returns rate with "0" shown as "max".
func (c Combination) DisplayRate() string {
	return DisplayValue(Rate, c.Rate())
}

// DisplayValue renders a dimension value for humans.
func DisplayValue(name, value string) string {
	if name == Rate && value == "0" {
		return MaxRate
	}
	return value
}

// Fields returns combination as log fields.
func (c Combination) Fields() logrus.Fields {
	fields := logrus.Fields{}
	for p, name := range nestingOrder {
		if c.present[p] {
			fields[name] = DisplayValue(name, c.values[p])
		}
	}
	return fields
}

func (c Combination) String() string {
	parts := []string{}
	for p, name := range nestingOrder {
		if c.present[p] {
			parts = append(parts, fmt.Sprintf("%s=%s", name, DisplayValue(name, c.values[p])))
		}
	}
	return strings.Join(parts, " ")
}
