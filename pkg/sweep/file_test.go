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

package sweep

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSweepFile(t *testing.T) {
	Convey("When parsing a sweep file", t, func() {
		Convey("Scalars and sequences should both be accepted", func() {
			f, err := ParseFile([]byte("rate: [max, 1000]\nclient_count: 4\nqueue_size: [1024]\nmessage_size: [64]\n"))
			So(err, ShouldBeNil)
			So(f[Rate], ShouldResemble, []string{"max", "1000"})
			So(f[ClientCount], ShouldResemble, []string{"4"})
		})

		Convey("Command line values should override file values", func() {
			f := File{Rate: {"0"}, ClientCount: {"1"}}
			merged := f.Merge(map[string][]string{ClientCount: {"2", "3"}, Rate: {}})
			So(merged[Rate], ShouldResemble, []string{"0"})
			So(merged[ClientCount], ShouldResemble, []string{"2", "3"})
		})

		Convey("Nested values should be rejected", func() {
			_, err := ParseFile([]byte("rate: [[1, 2]]\n"))
			So(errors.Cause(err), ShouldEqual, ErrConfiguration)
		})

		Convey("A document that is not a mapping should be rejected", func() {
			_, err := ParseFile([]byte("- 1\n- 2\n"))
			So(errors.Cause(err), ShouldEqual, ErrConfiguration)
		})
	})
}
