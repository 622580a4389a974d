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
	"sort"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the name of metadata file written to the experiment directory.
const FileName = "metadata.yaml"

type document struct {
	ExperimentID string                       `yaml:"experiment_id"`
	Kinds        map[string]map[string]string `yaml:"metadata"`
}

// File keeps metadata of a single experiment in a YAML file. Every change is
// flushed immediately so an interrupted sweep still leaves its description.
type File struct {
	mu   sync.Mutex
	path string
	doc  document
}

// NewFile opens metadata file in directory. Metadata already stored there for
// the same experiment is preserved.
func NewFile(experimentID, directory string) (*File, error) {
	f := &File{
		path: filepath.Join(directory, FileName),
		doc: document{
			ExperimentID: experimentID,
			Kinds:        map[string]map[string]string{},
		},
	}

	content, err := ioutil.ReadFile(f.path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read metadata file %q", f.path)
	}

	var existing document
	if err := yaml.Unmarshal(content, &existing); err != nil {
		return nil, errors.Wrapf(err, "cannot parse metadata file %q", f.path)
	}
	if existing.ExperimentID != experimentID {
		return nil, errors.Errorf("metadata file %q belongs to experiment %q", f.path, existing.ExperimentID)
	}
	for kind, values := range existing.Kinds {
		f.doc.Kinds[kind] = values
	}
	return f, nil
}

// Path returns location of the metadata file.
func (f *File) Path() string {
	return f.path
}

// Record stores a key and value and associates with the experiment id.
func (f *File) Record(key, value, kind string) error {
	return f.RecordMap(map[string]string{key: value}, kind)
}

// RecordMap stores a key and value map and associates with the experiment id.
// Keys recorded earlier under the same kind are overwritten.
func (f *File) RecordMap(metadata map[string]string, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, ok := f.doc.Kinds[kind]
	if !ok {
		values = map[string]string{}
		f.doc.Kinds[kind] = values
	}
	for key, value := range metadata {
		values[key] = value
	}
	return f.flush()
}

// GetByKind returns a copy of metadata recorded under kind.
func (f *File) GetByKind(kind string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, ok := f.doc.Kinds[kind]
	if !ok {
		return nil, errors.Errorf("cannot retrieve metadata for experiment ID %q and %q kind", f.doc.ExperimentID, kind)
	}
	result := make(map[string]string, len(values))
	for key, value := range values {
		result[key] = value
	}
	return result, nil
}

// Kinds returns recorded kinds in sorted order.
func (f *File) Kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	kinds := make([]string, 0, len(f.doc.Kinds))
	for kind := range f.doc.Kinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Clear deletes all metadata entries and the file itself.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.doc.Kinds = map[string]map[string]string{}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "cannot remove metadata file %q", f.path)
	}
	return nil
}

func (f *File) flush() error {
	content, err := yaml.Marshal(&f.doc)
	if err != nil {
		return errors.Wrap(err, "cannot encode metadata")
	}
	tmp := f.path + ".tmp"
	if err := ioutil.WriteFile(tmp, content, 0644); err != nil {
		return errors.Wrapf(err, "cannot write metadata file %q", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, f.path), "cannot replace metadata file %q", f.path)
}

var _ Metadata = (*File)(nil)
