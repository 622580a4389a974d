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

package experiment

import (
	"fmt"
	"testing"

	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeBuilder struct {
	built  []string
	failOn string
}

func (b *fakeBuilder) Build(name string, buildType ipc.BuildType) (string, error) {
	if name == b.failOn {
		return "", errors.New("make failed")
	}
	b.built = append(b.built, fmt.Sprintf("%s:%s", name, buildType))
	return "/build/" + buildType.String() + "/" + name, nil
}

func TestBuildBinaries(t *testing.T) {
	Convey("When building benchmark binaries", t, func() {
		config := testConfig("")
		builder := &fakeBuilder{}

		Convey("Cleanup tool should always be a release build", func() {
			built, err := BuildBinaries(builder, config, ipc.PGOProfile, ipc.PGOProfile)
			So(err, ShouldBeNil)
			So(builder.built, ShouldResemble, []string{
				ipc.CleanupBinary + ":" + ipc.Release.String(),
				"spmc_server:" + ipc.PGOProfile.String(),
				"spmc_client:" + ipc.PGOProfile.String(),
			})
			So(built.CleanupPath, ShouldEqual, "/build/"+ipc.Release.String()+"/"+ipc.CleanupBinary)
			So(built.ServerPath, ShouldEqual, "/build/"+ipc.PGOProfile.String()+"/spmc_server")
			So(config.ServerPath, ShouldNotEqual, built.ServerPath)
		})

		Convey("Failed build should stop remaining builds", func() {
			builder.failOn = "spmc_server"
			_, err := BuildBinaries(builder, config, ipc.Release, ipc.Release)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "cannot build producer")
			So(builder.built, ShouldHaveLength, 1)
		})
	})
}
