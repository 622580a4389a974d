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
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/pkg/errors"
)

// BinaryBuilder makes benchmark executables.
type BinaryBuilder interface {
	Build(name string, buildType ipc.BuildType) (string, error)
}

// BuildBinaries builds the cleanup tool as release and producer and consumer
// binaries with their build types. Returned config points to the built binaries.
func BuildBinaries(builder BinaryBuilder, config Config, server, client ipc.BuildType) (Config, error) {
	cleanupPath, err := builder.Build(ipc.CleanupBinary, ipc.Release)
	if err != nil {
		return config, errors.Wrap(err, "cannot build cleanup tool")
	}
	serverPath, err := builder.Build(config.ToolType.ServerBinary(), server)
	if err != nil {
		return config, errors.Wrap(err, "cannot build producer")
	}
	clientPath, err := builder.Build(config.ToolType.ClientBinary(), client)
	if err != nil {
		return config, errors.Wrap(err, "cannot build consumer")
	}

	config.CleanupPath = cleanupPath
	config.ServerPath = serverPath
	config.ClientPath = clientPath
	return config, nil
}
