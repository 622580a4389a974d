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

package ipc

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/coder14159/olive/pkg/executor"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BuildType selects optimisation mode of the benchmark binaries.
type BuildType int

const (
	// Release is the optimised build.
	Release BuildType = iota
	// Debug build.
	Debug
	// PGOProfile build writes profile data when run.
	PGOProfile
	// PGORelease build is optimised with previously gathered profile data.
	PGORelease
)

var buildTypeNames = map[BuildType]string{
	Release:    "release",
	Debug:      "debug",
	PGOProfile: "pgo_profile",
	PGORelease: "pgo_release",
}

var buildTypeSuffixes = map[BuildType]string{
	Release:    "",
	Debug:      ".debug",
	PGOProfile: ".pgo_profile",
	PGORelease: ".pgo_release",
}

// ParseBuildType accepts release, debug, pgo_profile and pgo_release.
func ParseBuildType(name string) (BuildType, error) {
	for buildType, typeName := range buildTypeNames {
		if strings.EqualFold(name, typeName) {
			return buildType, nil
		}
	}
	return Release, errors.Errorf("unknown build type %q", name)
}

func (b BuildType) String() string {
	return buildTypeNames[b]
}

// MakeFlag returns the makefile macro enabling the build type.
func (b BuildType) MakeFlag() string {
	return strings.ToUpper(b.String()) + "=1"
}

// Arch returns the processor name used in build directory names.
func Arch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "i686"
	}
	return runtime.GOARCH
}

// Builder compiles benchmark binaries with make.
type Builder struct {
	exec       executor.Executor
	projectDir string
	jobs       int
	timeout    time.Duration
}

// NewBuilder is a constructor for Builder. Zero timeout waits forever.
func NewBuilder(exec executor.Executor, projectDir string, jobs int, timeout time.Duration) Builder {
	if jobs < 1 {
		jobs = 1
	}
	return Builder{exec: exec, projectDir: projectDir, jobs: jobs, timeout: timeout}
}

// BinDir returns bin directory of the build type relative to project directory.
func BinDir(buildType BuildType) string {
	return filepath.Join("build", Arch()+buildTypeSuffixes[buildType], "bin")
}

// BinaryPath returns absolute path of an executable of the build type.
func (b Builder) BinaryPath(name string, buildType BuildType) string {
	return filepath.Join(b.projectDir, BinDir(buildType), name)
}

func (b Builder) buildCommand(name string, buildType BuildType) executor.Command {
	return executor.Command{
		Path: "make",
		Args: []string{
			"-j" + strconv.Itoa(b.jobs),
			buildType.MakeFlag(),
			filepath.Join(BinDir(buildType), name),
		},
		Dir: b.projectDir,
	}
}

// Build makes the executable and returns its path.
func (b Builder) Build(name string, buildType BuildType) (string, error) {
	command := b.buildCommand(name, buildType)
	logrus.Infof("Building %s (%s): %s", name, buildType, command.String())

	exitCode, err := executor.Run(b.exec, command, b.timeout)
	if err != nil {
		return "", errors.Wrapf(err, "cannot build %s (%s)", name, buildType)
	}
	if exitCode != 0 {
		return "", errors.Errorf("building %s (%s) failed with exit code %d", name, buildType, exitCode)
	}
	return b.BinaryPath(name, buildType), nil
}
