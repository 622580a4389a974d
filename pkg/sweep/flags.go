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

	"github.com/coder14159/olive/pkg/conf"
	"github.com/pkg/errors"
)

var (
	// ServerQueueSizeFlag lists queue sizes of the producer.
	ServerQueueSizeFlag = conf.NewSliceFlag("server_queue_size", "Shared memory queue sizes in bytes.")
	// ServerRateFlag lists producer rates. "max" means unthrottled.
	ServerRateFlag = conf.NewSliceFlag("server_rate", "Producer rates in messages per second, 'max' or 0 for unthrottled.")
	// ServerMessageSizeFlag lists message sizes of the producer.
	ServerMessageSizeFlag = conf.NewSliceFlag("server_message_size", "Message sizes in bytes.")
	// ClientCountFlag lists numbers of consumers.
	ClientCountFlag = conf.NewSliceFlag("client_count", "Numbers of consumers.")
	// ClientPrefetchSizeFlag lists consumer prefetch sizes.
	ClientPrefetchSizeFlag = conf.NewSliceFlag("client_prefetch_size", "Consumer prefetch cache sizes in bytes.")
	// FileFlag points to a YAML sweep description.
	FileFlag = conf.NewStringFlag("sweep_file", "YAML file with sweep dimensions. Command line values take precedence.", "")
)

var defaultValues = map[string][]string{
	Rate:        {MaxRate},
	ClientCount: {"1"},
}

// FromFlags builds a sweep from dimension flags merged over the sweep file.
// Rate and client count fall back to defaults when given by neither.
func FromFlags() (Sweep, error) {
	values := map[string][]string{
		QueueSize:    ServerQueueSizeFlag.Value(),
		Rate:         ServerRateFlag.Value(),
		MessageSize:  ServerMessageSizeFlag.Value(),
		ClientCount:  ClientCountFlag.Value(),
		PrefetchSize: ClientPrefetchSizeFlag.Value(),
	}
	if path := FileFlag.Value(); path != "" {
		file, err := LoadFile(path)
		if err != nil {
			if errors.Cause(err) == ErrConfiguration {
				return Sweep{}, err
			}
			return Sweep{}, errors.Wrap(ErrConfiguration, err.Error())
		}
		values = file.Merge(values)
	}
	for name, defaults := range defaultValues {
		if len(values[name]) == 0 {
			values[name] = defaults
		}
	}
	for _, name := range []string{QueueSize, MessageSize} {
		if len(values[name]) == 0 {
			return Sweep{}, errors.Wrap(ErrConfiguration, fmt.Sprintf("no values of %s given", name))
		}
	}
	return FromValues(values)
}
