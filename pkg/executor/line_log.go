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

package executor

import "sync"

// defaultLineLogLimit bounds number of lines kept in memory per task.
const defaultLineLogLimit = 4096

// lineLog is an append only list of output lines addressed by absolute
// position. Readers keep their own cursor so several of them (and lines
// written before anybody reads) never get lost. Only the newest limit lines
// are retained.
type lineLog struct {
	mu      sync.Mutex
	lines   []string
	base    int
	limit   int
	closed  bool
	changed chan struct{}
}

func newLineLog(limit int) *lineLog {
	return &lineLog{limit: limit, changed: make(chan struct{})}
}

func (l *lineLog) notify() {
	close(l.changed)
	l.changed = make(chan struct{})
}

func (l *lineLog) append(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lines = append(l.lines, line)
	if l.limit > 0 && len(l.lines) > l.limit {
		drop := len(l.lines) - l.limit
		l.lines = append(l.lines[:0], l.lines[drop:]...)
		l.base += drop
	}
	l.notify()
}

func (l *lineLog) close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.notify()
}

// from returns lines starting at cursor, the cursor following them, whether
// the log is closed and a channel closed on next change.
func (l *lineLog) from(cursor int) (lines []string, next int, closed bool, changed <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cursor < l.base {
		cursor = l.base
	}
	offset := cursor - l.base
	if offset < len(l.lines) {
		lines = append(lines, l.lines[offset:]...)
	}
	return lines, l.base + len(l.lines), l.closed, l.changed
}
