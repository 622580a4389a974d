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

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLineLog(t *testing.T) {
	Convey("When using line log", t, func() {
		log := newLineLog(3)

		Convey("Lines appended before reading should not be lost", func() {
			log.append("a")
			log.append("b")
			lines, next, closed, _ := log.from(0)
			So(lines, ShouldResemble, []string{"a", "b"})
			So(next, ShouldEqual, 2)
			So(closed, ShouldBeFalse)

			lines, next, _, _ = log.from(next)
			So(lines, ShouldBeEmpty)
			So(next, ShouldEqual, 2)
		})

		Convey("Only the newest lines should be retained", func() {
			for _, line := range []string{"a", "b", "c", "d", "e"} {
				log.append(line)
			}
			lines, next, _, _ := log.from(0)
			So(lines, ShouldResemble, []string{"c", "d", "e"})
			So(next, ShouldEqual, 5)
		})

		Convey("Readers should be notified about changes", func() {
			_, _, _, changed := log.from(0)
			go func() {
				time.Sleep(10 * time.Millisecond)
				log.append("late")
			}()
			select {
			case <-changed:
			case <-time.After(5 * time.Second):
				t.Fatal("no notification")
			}
			lines, _, _, _ := log.from(0)
			So(lines, ShouldResemble, []string{"late"})
		})

		Convey("Close should be visible and idempotent", func() {
			log.close()
			log.close()
			_, _, closed, _ := log.from(0)
			So(closed, ShouldBeTrue)
		})
	})
}
