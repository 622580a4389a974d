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

package conf

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

const testAppName = "testAppName"

var customFlag = NewStringFlag("custom_arg", "help", "default")

func clearEnv() {
	// Clear all environment variables in context of that test.
	logLevelFlag.clear()
	customFlag.clear()
}

func TestConf(t *testing.T) {
	Convey("While using Conf pkg", t, func() {
		clearEnv()
		defer clearEnv()

		dir, err := ioutil.TempDir("", "olive_conf")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)
		testReadmePath := filepath.Join(dir, "README.md")
		So(ioutil.WriteFile(testReadmePath, []byte("Sweep runner help."), 0644), ShouldBeNil)

		SetAppName(testAppName)
		SetHelpPath(testReadmePath)

		Convey("Name and help should match to specified one", func() {
			So(AppName(), ShouldEqual, testAppName)
			So(app.Help, ShouldEqual, "Sweep runner help.")
		})

		Convey("Log level can be fetched from env", func() {
			err := ParseEnv()
			So(err, ShouldBeNil)

			// Default one.
			So(LogLevel(), ShouldEqual, logrus.InfoLevel)
			So(BinaryLogLevel(), ShouldEqual, "INFO")

			os.Setenv(logLevelFlag.envName(), "warning")

			err = ParseEnv()
			So(err, ShouldBeNil)

			// Should be from environment.
			So(LogLevel(), ShouldEqual, logrus.WarnLevel)
			So(BinaryLogLevel(), ShouldEqual, "WARNING")
		})

		Convey("Unknown log level should fall back to default", func() {
			os.Setenv(logLevelFlag.envName(), "loud")
			err := ParseEnv()
			So(err, ShouldBeNil)
			So(LogLevel(), ShouldEqual, logrus.InfoLevel)
		})

		Convey("When some custom argument is defined", func() {
			Convey("When we not defined any environment variable we should have default value after parse", func() {
				err := ParseEnv()
				So(err, ShouldBeNil)
				So(customFlag.Value(), ShouldEqual, customFlag.defaultValue)
			})

			Convey("When we define custom environment variable we should have custom value after parse", func() {
				customValue := "customContent"
				os.Setenv(customFlag.envName(), customValue)

				err := ParseEnv()
				So(err, ShouldBeNil)
				So(customFlag.Value(), ShouldEqual, customValue)
			})
		})
	})
}
