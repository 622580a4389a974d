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

package visualization

import (
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/montanaflynn/stats"
)

var rateUnits = []struct {
	factor float64
	prefix string
}{
	{1e9, "G "},
	{1e6, "M "},
	{1e3, "K "},
}

// ThroughputToPretty formats a producer rate in messages per second.
// Rate "0" (and "max") means unlimited and is rendered as "max".
// Halves are rounded up, so 1250 is rendered as "1.3 K msgs/s".
func ThroughputToPretty(rate string) string {
	if rate == "max" || rate == "0" {
		return "max"
	}
	value, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return rate
	}
	for _, unit := range rateUnits {
		if value >= unit.factor {
			rounded, _ := stats.Round(value/unit.factor, 1)
			return strconv.FormatFloat(rounded, 'f', 1, 64) + " " + unit.prefix + "msgs/s"
		}
	}
	rounded, _ := stats.Round(value, 0)
	return strconv.FormatFloat(rounded, 'f', 0, 64) + " msgs/s"
}

// SizeToPretty formats a size given in bytes using 1024 based units.
func SizeToPretty(size string) string {
	value, err := strconv.ParseUint(size, 10, 64)
	if err != nil {
		return size
	}
	return bytefmt.ByteSize(value)
}
