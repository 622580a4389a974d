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

package metadata

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFileMetadata(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	Convey("While using metadata file", t, func() {
		dir, err := ioutil.TempDir("", "olive_metadata")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		metadata, err := NewFile("8b1d1bd4", dir)
		So(err, ShouldBeNil)
		So(metadata.Path(), ShouldEqual, filepath.Join(dir, FileName))

		Convey("Missing kind should be an error", func() {
			_, err := metadata.GetByKind(TypeFlags)
			So(err, ShouldNotBeNil)
		})

		Convey("Recorded values should be merged per kind", func() {
			So(metadata.Record("rate", "max", TypeSweep), ShouldBeNil)
			So(metadata.RecordMap(map[string]string{"client_count": "1,4"}, TypeSweep), ShouldBeNil)
			So(metadata.Record("rate=max", "completed", TypeOutcome), ShouldBeNil)

			values, err := metadata.GetByKind(TypeSweep)
			So(err, ShouldBeNil)
			So(values, ShouldResemble, map[string]string{"rate": "max", "client_count": "1,4"})
			So(metadata.Kinds(), ShouldResemble, []string{TypeOutcome, TypeSweep})

			Convey("Returned map should be a copy", func() {
				values["rate"] = "1000"
				again, _ := metadata.GetByKind(TypeSweep)
				So(again["rate"], ShouldEqual, "max")
			})

			Convey("Reopened file should keep metadata", func() {
				reopened, err := NewFile("8b1d1bd4", dir)
				So(err, ShouldBeNil)
				values, err := reopened.GetByKind(TypeOutcome)
				So(err, ShouldBeNil)
				So(values["rate=max"], ShouldEqual, "completed")
			})

			Convey("File of different experiment should not be reused", func() {
				_, err := NewFile("other", dir)
				So(err, ShouldNotBeNil)
			})

			Convey("Clear should remove the file", func() {
				So(metadata.Clear(), ShouldBeNil)
				_, err := os.Stat(metadata.Path())
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = metadata.GetByKind(TypeSweep)
				So(err, ShouldNotBeNil)
			})
		})

		Convey("Runtime environment should be recorded", func() {
			os.Setenv("OLIVE_TEST_METADATA", "yes")
			defer os.Unsetenv("OLIVE_TEST_METADATA")

			So(RecordRuntimeEnv(metadata, time.Now()), ShouldBeNil)

			environ, err := metadata.GetByKind(TypeEnviron)
			So(err, ShouldBeNil)
			So(environ["OLIVE_TEST_METADATA"], ShouldEqual, "yes")

			platform, err := metadata.GetByKind(TypePlatform)
			So(err, ShouldBeNil)
			So(platform[CPUCountKey], ShouldNotBeEmpty)
			So(platform[ArchKey], ShouldNotBeEmpty)

			_, err = metadata.GetByKind(TypeFlags)
			So(err, ShouldBeNil)
		})
	})
}
