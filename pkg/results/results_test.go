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

package results

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/coder14159/olive/pkg/sweep"
	. "github.com/smartystreets/goconvey/convey"
)

func combinations(prefetch ...string) []sweep.Combination {
	values := map[string][]string{
		sweep.Rate:         {"max", "1000"},
		sweep.ClientCount:  {"2"},
		sweep.QueueSize:    {"1024"},
		sweep.MessageSize:  {"64"},
		sweep.PrefetchSize: prefetch,
	}
	s, err := sweep.FromValues(values)
	if err != nil {
		panic(err)
	}
	return s.Combinations()
}

func TestPath(t *testing.T) {
	Convey("When computing run directory", t, func() {
		Convey("Rate 0 should be rendered as max", func() {
			c := combinations()
			So(Path("/results", c[0]), ShouldEqual,
				"/results/server_queue_size/1024/server_rate/max/server_message_size/64/client_count/2")
			So(Path("/results", c[1]), ShouldEqual,
				"/results/server_queue_size/1024/server_rate/1000/server_message_size/64/client_count/2")
		})

		Convey("Prefetch size should be the last segment when swept", func() {
			c := combinations("16")
			So(Path("out", c[0]), ShouldEqual,
				"out/server_queue_size/1024/server_rate/max/server_message_size/64/client_count/2/client_prefetch_size/16")
		})
	})
}

func TestUniquify(t *testing.T) {
	Convey("When making a run directory unique", t, func() {
		root, err := ioutil.TempDir("", "olive_results")
		So(err, ShouldBeNil)
		defer os.RemoveAll(root)

		base := filepath.Join(root, "client_count", "1")

		Convey("Missing path should be returned unchanged and not created", func() {
			path, err := Uniquify(base)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, base)
			_, err = os.Stat(base)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("Existing path should get strictly increasing suffixes", func() {
			So(os.MkdirAll(base, 0755), ShouldBeNil)

			first, err := Uniquify(base)
			So(err, ShouldBeNil)
			So(first, ShouldEqual, filepath.Join(base, "v1"))
			So(os.Mkdir(first, 0755), ShouldBeNil)

			second, err := Uniquify(base)
			So(err, ShouldBeNil)
			So(second, ShouldEqual, filepath.Join(base, "v2"))
			_, err = os.Stat(second)
			So(os.IsNotExist(err), ShouldBeTrue)
		})
	})
}

func TestIsPopulated(t *testing.T) {
	Convey("When checking if run directory is populated", t, func() {
		root, err := ioutil.TempDir("", "olive_results")
		So(err, ShouldBeNil)
		defer os.RemoveAll(root)

		populated, err := IsPopulated(filepath.Join(root, "missing"))
		So(err, ShouldBeNil)
		So(populated, ShouldBeFalse)

		populated, err = IsPopulated(root)
		So(err, ShouldBeNil)
		So(populated, ShouldBeFalse)

		So(ioutil.WriteFile(filepath.Join(root, "latency-summary.csv"), []byte("0\n1\n"), 0644), ShouldBeNil)
		populated, err = IsPopulated(root)
		So(err, ShouldBeNil)
		So(populated, ShouldBeTrue)
	})
}
