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

// Predefined types of metadata.
// This selector allows to group metadata by their common characteristics.
// TypeFlags holds parameters passed to the driver, TypeEnviron the OLIVE_
// environment variables and TypePlatform recorded platform characteristics
// like number of CPUs. TypeSweep keeps sweep dimensions and TypeOutcome the
// result of every run.
const (
	TypeEmpty    = ""
	TypeFlags    = "flags"
	TypeEnviron  = "environ"
	TypePlatform = "platform"
	TypeSweep    = "sweep"
	TypeOutcome  = "outcome"
)

// Metadata interface defines methods which must be supported by a backend.
type Metadata interface {
	// Record stores a key and value and associates with the experiment id.
	Record(key string, value string, kind string) error
	// RecordMap stores a key and value map and associates with the experiment id.
	RecordMap(metadata map[string]string, kind string) error
	// GetByKind retrieves single metadata kind.
	// Returns error if no such kind was recorded.
	GetByKind(kind string) (map[string]string, error)
	// Clear deletes all metadata entries associated with the current experiment id.
	Clear() error
}
