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

package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// flagType is implemented by every registered flag.
type flagType interface {
	envName() string
	clear()
	current() string
}

// definedFlags holds every flag by name. Packages may declare the same flag
// as long as type and default agree.
var definedFlags = map[string]flagType{}

// typedFlag binds a kingpin flag to its OLIVE_<NAME> environment variable.
type typedFlag[T any] struct {
	name         string
	defaultValue T
	value        *T
}

func (f *typedFlag[T]) envName() string {
	return fmt.Sprintf("%s_%s", EnvPrefix, strings.ToUpper(f.name))
}

func (f *typedFlag[T]) clear() {
	os.Unsetenv(f.envName())
}

func (f *typedFlag[T]) current() string {
	return fmt.Sprint(f.Value())
}

// Value returns parsed value. Before ParseFlags it is the default.
func (f *typedFlag[T]) Value() T {
	if !isEnvParsed {
		return f.defaultValue
	}
	return *f.value
}

// clause registers flag in kingpin application. Empty default means none.
func clause(name, description, defaultValue string) *kingpin.FlagClause {
	c := app.Flag(name, description)
	c.OverrideDefaultFromEnvar(fmt.Sprintf("%s_%s", EnvPrefix, strings.ToUpper(name)))
	if defaultValue != "" {
		c.Default(defaultValue)
	}
	return c
}

// define returns already registered flag name or registers the one built by create.
func define[F flagType](name string, sameDefault func(F) bool, create func() F) F {
	if existing, ok := definedFlags[name]; ok {
		f, ok := existing.(F)
		if !ok {
			panic(fmt.Sprintf("flag %q was redefined with different type", name))
		}
		if !sameDefault(f) {
			panic(fmt.Sprintf("flag %q was redefined with different default value", name))
		}
		return f
	}

	f := create()
	definedFlags[name] = f
	isEnvParsed = false
	return f
}

// StringFlag is a flag with string value.
type StringFlag struct {
	*typedFlag[string]
}

// NewStringFlag defines a string flag.
func NewStringFlag(flagName string, description string, defaultValue string) *StringFlag {
	return define(flagName,
		func(f *StringFlag) bool { return f.defaultValue == defaultValue },
		func() *StringFlag {
			return &StringFlag{&typedFlag[string]{
				name:         flagName,
				defaultValue: defaultValue,
				value:        clause(flagName, description, defaultValue).String(),
			}}
		})
}

// IntFlag is a flag with int value.
type IntFlag struct {
	*typedFlag[int]
}

// NewIntFlag defines an int flag.
func NewIntFlag(flagName string, description string, defaultValue int) *IntFlag {
	return define(flagName,
		func(f *IntFlag) bool { return f.defaultValue == defaultValue },
		func() *IntFlag {
			return &IntFlag{&typedFlag[int]{
				name:         flagName,
				defaultValue: defaultValue,
				value:        clause(flagName, description, strconv.Itoa(defaultValue)).Int(),
			}}
		})
}

// BoolFlag is a flag with bool value.
type BoolFlag struct {
	*typedFlag[bool]
}

// NewBoolFlag defines a bool flag.
func NewBoolFlag(flagName string, description string, defaultValue bool) *BoolFlag {
	return define(flagName,
		func(f *BoolFlag) bool { return f.defaultValue == defaultValue },
		func() *BoolFlag {
			return &BoolFlag{&typedFlag[bool]{
				name:         flagName,
				defaultValue: defaultValue,
				value:        clause(flagName, description, strconv.FormatBool(defaultValue)).Bool(),
			}}
		})
}

// DurationFlag is a flag with duration value, e.g. "10s" or "1m30s".
type DurationFlag struct {
	*typedFlag[time.Duration]
}

// NewDurationFlag defines a duration flag.
func NewDurationFlag(flagName string, description string, defaultValue time.Duration) *DurationFlag {
	return define(flagName,
		func(f *DurationFlag) bool { return f.defaultValue == defaultValue },
		func() *DurationFlag {
			return &DurationFlag{&typedFlag[time.Duration]{
				name:         flagName,
				defaultValue: defaultValue,
				value:        clause(flagName, description, defaultValue.String()).Duration(),
			}}
		})
}

// SliceFlag is a cumulative flag with comma separated values.
type SliceFlag struct {
	*typedFlag[[]string]
}

// NewSliceFlag defines a slice flag.
func NewSliceFlag(flagName string, description string, elemsInDefaultSlice ...string) *SliceFlag {
	return define(flagName,
		func(f *SliceFlag) bool {
			return strings.Join(f.defaultValue, ",") == strings.Join(elemsInDefaultSlice, ",")
		},
		func() *SliceFlag {
			return &SliceFlag{&typedFlag[[]string]{
				name:         flagName,
				defaultValue: append([]string{}, elemsInDefaultSlice...),
				value:        StringList(clause(flagName, description, strings.Join(elemsInDefaultSlice, ","))),
			}}
		})
}

// Value returns a copy of parsed values. Before ParseFlags it is the default.
func (s *SliceFlag) Value() []string {
	return append([]string{}, s.typedFlag.Value()...)
}

func (s *SliceFlag) current() string {
	return strings.Join(s.Value(), stringListDelimiter)
}

func (s *SliceFlag) reset() {
	*s.value = (*s.value)[:0]
}
