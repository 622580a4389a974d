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

// Package results maps parameter combinations to run directories.
package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/utils/fs"
	"github.com/pkg/errors"
)

// ErrDirectoryCollision is returned when a run directory already holds results.
var ErrDirectoryCollision = errors.New("run directory already populated")

// Path returns the run directory of the combination below root:
// server_queue_size/<v>/server_rate/<v|max>/server_message_size/<v>/client_count/<v>[/client_prefetch_size/<v>]
func Path(root string, c sweep.Combination) string {
	segments := []string{
		root,
		"server_queue_size", c.QueueSize(),
		"server_rate", c.DisplayRate(),
		"server_message_size", c.MessageSize(),
		"client_count", fmt.Sprint(c.ClientCount()),
	}
	if prefetch, ok := c.PrefetchSize(); ok {
		segments = append(segments, "client_prefetch_size", prefetch)
	}
	return filepath.Join(segments...)
}

// Uniquify returns path when it does not exist, otherwise the first path/vK
// (K = 1, 2, ...) that does not exist. It does not create anything.
func Uniquify(path string) (string, error) {
	found, err := pathExists(path)
	if err != nil || !found {
		return path, err
	}

	for k := 1; ; k++ {
		candidate := filepath.Join(path, fmt.Sprintf("v%d", k))
		found, err := pathExists(candidate)
		if err != nil {
			return "", err
		}
		if !found {
			return candidate, nil
		}
	}
}

// IsPopulated returns true when path exists and has at least one entry.
func IsPopulated(path string) (bool, error) {
	empty, err := fs.IsEmptyDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "cannot inspect %q", path)
	}
	return !empty, nil
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "cannot stat %q", path)
}
