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

package visualization

import (
	"fmt"
	"io"
)

// List is a titled list of values.
type List struct {
	title    string
	elements []string
}

// NewList creates a list printed under title.
func NewList(title string, elements ...string) *List {
	return &List{title, elements}
}

// Len returns number of elements.
func (l *List) Len() int {
	return len(l.elements)
}

// PrintList writes title and every element on its own indented line.
// Empty list is not printed.
func PrintList(w io.Writer, list *List) error {
	if list.Len() == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s (%d):\n", list.title, list.Len()); err != nil {
		return err
	}
	for _, value := range list.elements {
		if _, err := fmt.Fprintf(w, "  %s\n", value); err != nil {
			return err
		}
	}
	return nil
}
