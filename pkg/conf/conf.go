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
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

// EnvPrefix is prepended to upper cased flag names to get environment variable names.
const EnvPrefix = "OLIVE"

var (
	app          = kingpin.New("olive", "No help available")
	logLevelFlag = NewStringFlag(
		"log_level",
		"Log level of the driver and the benchmarked binaries: TRACE, DEBUG, INFO, WARNING, ERROR, FATAL",
		"INFO",
	)
	isEnvParsed = false
)

// binaryLogLevels maps driver levels onto level names of the benchmark binaries.
var binaryLogLevels = map[logrus.Level]string{
	logrus.TraceLevel: "TRACE",
	logrus.DebugLevel: "DEBUG",
	logrus.InfoLevel:  "INFO",
	logrus.WarnLevel:  "WARNING",
	logrus.ErrorLevel: "ERROR",
}

// SetHelpPath uses content of the file as application help.
func SetHelpPath(readmePath string) {
	readmeData, err := ioutil.ReadFile(readmePath)
	if err != nil {
		panic(errors.Wrapf(err, "reading %s failed", readmePath))
	}
	app.Help = string(readmeData)
}

// SetHelp sets the help message for the CLI.
func SetHelp(help string) {
	app.Help = help
}

// SetAppName sets application name for CLI output.
func SetAppName(name string) {
	app.Name = name
}

// AppName returns application name.
func AppName() string {
	return app.Name
}

// LogLevel returns configured log level. Unknown level names fall back to the
// default.
func LogLevel() logrus.Level {
	for _, name := range []string{logLevelFlag.Value(), logLevelFlag.defaultValue} {
		// Binaries call it WARNING, logrus accepts it as well.
		if level, err := logrus.ParseLevel(name); err == nil {
			return level
		}
	}
	panic(fmt.Sprintf("default log level %q is invalid", logLevelFlag.defaultValue))
}

// BinaryLogLevel returns configured log level in the form accepted by the
// benchmarked binaries.
func BinaryLogLevel() string {
	if name, ok := binaryLogLevels[LogLevel()]; ok {
		return name
	}
	return "FATAL"
}

// resetSliceFlags drops values accumulated by a previous parse.
func resetSliceFlags() {
	for _, flag := range definedFlags {
		if slice, ok := flag.(*SliceFlag); ok {
			slice.reset()
		}
	}
}

// ParseFlags parses command line of the process and environment variables.
func ParseFlags() error {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses given arguments and environment variables.
func ParseArgs(args []string) error {
	resetSliceFlags()
	if _, err := app.Parse(args); err != nil {
		return errors.Wrap(err, "could not parse command line flags")
	}
	isEnvParsed = true
	return nil
}

// ParseEnv parses environment variables only.
func ParseEnv() error {
	resetSliceFlags()
	if _, err := app.Parse(nil); err != nil {
		return errors.Wrap(err, "could not parse environment flags")
	}
	isEnvParsed = true
	return nil
}

type flagDefinition struct {
	Name, Value, Default, Help string
}

// getFlagsDefinition describes every registered flag in declaration order.
// Flags with a dash in the name (config-dump and friends) are skipped: they
// control the process and cannot be restored from environment.
func getFlagsDefinition() (flags []flagDefinition) {
	for _, model := range app.Model().Flags {
		if strings.Contains(model.Name, "-") {
			continue
		}
		flag, ok := definedFlags[model.Name]
		if !ok {
			continue
		}
		flags = append(flags, flagDefinition{
			Name:    model.Name,
			Help:    model.Help,
			Default: strings.Join(model.Default, ","),
			Value:   flag.current(),
		})
	}
	return flags
}

// DumpConfig dumps environment based configuration with current values of flags.
func DumpConfig() string {
	return DumpConfigMap(nil)
}

// DumpConfigMap dumps environment based configuration with current values
// overwritten by flagMap. Output is a shell script exporting every variable.
func DumpConfigMap(flagMap map[string]string) string {
	buffer := &bytes.Buffer{}
	buffer.WriteString("# Export are values.\n")
	buffer.WriteString("set -o allexport\n")

	for _, definition := range getFlagsDefinition() {
		fmt.Fprintf(buffer, "\n# %s\n", definition.Help)
		if definition.Default != "" {
			fmt.Fprintf(buffer, "# Default: %s\n", definition.Default)
		}
		value := definition.Value
		if mapValue, ok := flagMap[definition.Name]; ok {
			value = mapValue
		}
		fmt.Fprintf(buffer, "%s_%s=%s\n", EnvPrefix, strings.ToUpper(definition.Name), value)
	}

	buffer.WriteString("set +o allexport")
	return buffer.String()
}

// GetFlags returns current values of flags keyed by name.
func GetFlags() map[string]string {
	flagsMap := map[string]string{}
	for _, definition := range getFlagsDefinition() {
		flagsMap[definition.Name] = definition.Value
	}
	return flagsMap
}
