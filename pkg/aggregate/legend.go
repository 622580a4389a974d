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
	"strings"

	"github.com/coder14159/olive/pkg/sweep"
)

// legendOrder is the order in which dimensions appear in legends and titles.
var legendOrder = []string{sweep.Rate, sweep.MessageSize, sweep.QueueSize, sweep.ClientCount, sweep.PrefetchSize}

var displayNames = map[string]string{
	sweep.Rate:         "rate",
	sweep.MessageSize:  "message_size",
	sweep.QueueSize:    "queue_size",
	sweep.ClientCount:  "clients",
	sweep.PrefetchSize: "prefetch_size",
}

// Entry is a "name:value" text which belongs either to a legend or to the
// title shared by all series.
type Entry struct {
	Legend bool
	Text   string
}

// Classify places dimension value in the legend when the dimension varies
// across the sweep and in the title otherwise.
func Classify(dimension, value string, cardinality int) Entry {
	name, ok := displayNames[dimension]
	if !ok {
		name = dimension
	}
	return Entry{
		Legend: cardinality > 1,
		Text:   name + ":" + sweep.DisplayValue(dimension, value),
	}
}

// texts accumulates title entries in first seen order.
type texts struct {
	titles []string
	seen   map[string]bool
}

func newTexts() *texts {
	return &texts{seen: map[string]bool{}}
}

// legend classifies every dimension of combination. Legend parts are returned
// and title entries are remembered.
func (t *texts) legend(s sweep.Sweep, c sweep.Combination) []string {
	var parts []string
	for _, dimension := range legendOrder {
		value, ok := c.Value(dimension)
		if !ok {
			continue
		}
		entry := Classify(dimension, value, s.Cardinality(dimension))
		if entry.Legend {
			parts = append(parts, entry.Text)
			continue
		}
		if !t.seen[entry.Text] {
			t.seen[entry.Text] = true
			t.titles = append(t.titles, entry.Text)
		}
	}
	return parts
}

func joinLegend(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}
