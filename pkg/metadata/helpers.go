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
	"os"
	"strings"
	"time"

	"github.com/coder14159/olive/pkg/conf"
	"github.com/pkg/errors"
)

// RecordRuntimeEnv stores what is needed to repeat a sweep: parsed flags,
// OLIVE_ environment variables, start time, host and platform details.
func RecordRuntimeEnv(metadata Metadata, sweepStart time.Time) error {
	hostname, err := os.Hostname()
	if err != nil {
		return errors.Wrap(err, "cannot retrieve hostname")
	}

	kinds := []struct {
		kind   string
		values map[string]string
	}{
		{TypeFlags, conf.GetFlags()},
		{TypeEnviron, prefixedEnviron(conf.EnvPrefix + "_")},
		{TypeEmpty, map[string]string{"time": sweepStart.Format(time.RFC3339), "host": hostname}},
		{TypePlatform, GetPlatformMetrics()},
	}
	for _, k := range kinds {
		if err := metadata.RecordMap(k.values, k.kind); err != nil {
			return errors.Wrapf(err, "cannot record %s metadata", k.kind)
		}
	}
	return nil
}

// prefixedEnviron returns environment variables starting with prefix.
func prefixedEnviron(prefix string) map[string]string {
	environ := map[string]string{}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		if name, value, ok := strings.Cut(env, "="); ok {
			environ[name] = value
		}
	}
	return environ
}
