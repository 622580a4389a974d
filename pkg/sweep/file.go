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
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is a YAML sweep description, e.g.:
//
//	rate: [max, 1000000]
//	client_count: [1, 4]
//	queue_size: [1024000]
//	message_size: [32, 64]
type File map[string][]string

// UnmarshalYAML accepts both scalar and sequence values for a dimension.
func (f *File) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Wrap(ErrConfiguration, "sweep file must be a mapping of dimension names")
	}

	values := File{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		switch value.Kind {
		case yaml.ScalarNode:
			values[key.Value] = []string{value.Value}
		case yaml.SequenceNode:
			list := make([]string, 0, len(value.Content))
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return errors.Wrapf(ErrConfiguration, "dimension %q: nested values are not supported", key.Value)
				}
				list = append(list, item.Value)
			}
			values[key.Value] = list
		default:
			return errors.Wrapf(ErrConfiguration, "dimension %q: unsupported value at line %d", key.Value, value.Line)
		}
	}
	*f = values
	return nil
}

// LoadFile reads a YAML sweep description.
func LoadFile(path string) (File, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read sweep file %q", path)
	}
	return ParseFile(data)
}

// ParseFile parses a YAML sweep description.
func ParseFile(data []byte) (File, error) {
	f := File{}
	if err := yaml.Unmarshal(data, &f); err != nil {
		if errors.Cause(err) == ErrConfiguration {
			return nil, err
		}
		return nil, errors.Wrap(ErrConfiguration, fmt.Sprintf("invalid sweep file: %v", err))
	}
	return f, nil
}

// Merge returns values from the file overridden by non empty values from
// command line.
func (f File) Merge(overrides map[string][]string) map[string][]string {
	merged := map[string][]string{}
	for name, values := range f {
		merged[name] = values
	}
	for name, values := range overrides {
		if len(values) > 0 {
			merged[name] = values
		}
	}
	return merged
}
