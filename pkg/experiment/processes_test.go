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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coder14159/olive/pkg/aggregate"
	"github.com/coder14159/olive/pkg/executor"
	"github.com/coder14159/olive/pkg/isolation"
	"github.com/coder14159/olive/pkg/results"
	"github.com/coder14159/olive/pkg/sweep"
	"github.com/coder14159/olive/pkg/workloads/ipc"
	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

// Producer never prints the marker when started with rate 1 and exits
// with code 3 shortly after getting ready when started with rate 2.
const producerScript = `#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
		--rate) rate="$2"; shift ;;
	esac
	shift
done
trap 'exit 0' INT
if [ "$rate" = "2" ]; then
	echo "Found or created queue"
	sleep 0.1
	exit 3
fi
if [ "$rate" != "1" ]; then
	echo "Found or created queue"
fi
while true; do sleep 0.05; done
`

const consumerScript = `#!/bin/sh
while [ $# -gt 0 ]; do
	case "$1" in
		--directory) directory="$2"; shift ;;
	esac
	shift
done
if [ -n "$directory" ]; then
	printf '0,50,99,100\n100,150,900,2000\n' > "$directory/latency-summary.csv"
fi
trap 'exit 0' INT
while true; do sleep 0.05; done
`

const cleanupScript = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/cleanup.log"
`

func writeScript(dir, name, content string) string {
	path := filepath.Join(dir, name)
	So(ioutil.WriteFile(path, []byte(content), 0755), ShouldBeNil)
	return path
}

func TestSweepWithProcesses(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	Convey("While running a sweep with stand-in binaries", t, func() {
		dir, err := ioutil.TempDir("", "olive_processes")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		bin := filepath.Join(dir, "bin")
		root := filepath.Join(dir, "results")
		So(os.MkdirAll(bin, 0755), ShouldBeNil)

		config := Config{
			ToolType:       ipc.SPMC,
			MemoryName:     "olive_processes",
			ServerPath:     writeScript(bin, "spmc_server", producerScript),
			ClientPath:     writeScript(bin, "spmc_client", consumerScript),
			CleanupPath:    writeScript(bin, ipc.CleanupBinary, cleanupScript),
			Duration:       200 * time.Millisecond,
			StartupTimeout: time.Second,
			StopGrace:      2 * time.Second,
			CleanupTimeout: 5 * time.Second,
			ReadyMarker:    ipc.ReadyMarker,
			ServerCPU:      isolation.Unbound(),
			Stats:          []string{ipc.StatLatency},
			ResultsRoot:    root,
			Collision:      SkipExisting,
			LogLevel:       "INFO",
		}
		So(config.Validate(), ShouldBeNil)

		local := executor.NewLocalWithOutputDir(dir)
		cleaner := ipc.NewCleaner(local, config.CleanupPath, config.CleanupTimeout)
		orchestrator := NewOrchestrator(local, cleaner, config)

		s, err := sweep.FromValues(map[string][]string{
			sweep.Rate:        {"1", "0"},
			sweep.ClientCount: {"2"},
			sweep.QueueSize:   {"1024"},
			sweep.MessageSize: {"32"},
		})
		So(err, ShouldBeNil)
		combinations := s.Combinations()

		report, err := RunSweep(orchestrator, s, SweepOptions{})
		So(err, ShouldBeNil)

		Convey("Producer never ready within startup timeout should fail its run and the sweep should proceed", func() {
			So(report.Outcomes, ShouldHaveLength, 2)
			So(report.Outcomes[0].Kind, ShouldEqual, Failed)
			So(report.Outcomes[0].Reason, ShouldEqual, ProducerNotReady)
			So(report.Outcomes[1].Kind, ShouldEqual, Completed)

			_, statErr := os.Stat(results.Path(root, combinations[0]))
			So(os.IsNotExist(statErr), ShouldBeTrue)
		})

		Convey("Shared memory should be removed before and after every run", func() {
			log, err := ioutil.ReadFile(filepath.Join(bin, "cleanup.log"))
			So(err, ShouldBeNil)
			So(string(log), ShouldEqual, "--names olive_processes\n--names olive_processes\n--names olive_processes\n--names olive_processes\n")
		})

		Convey("Results of completed run should be aggregated", func() {
			table, err := aggregate.Aggregate(aggregate.Request{
				Roots: []string{root},
				Sweep: s,
				Kind:  aggregate.LatencySummary,
			})
			So(err, ShouldBeNil)
			So(table.Runs, ShouldEqual, 1)
			So(table.Legends(), ShouldResemble, []string{"rate:max"})
			So(table.Titles, ShouldResemble, []string{"message_size:32", "queue_size:1024", "clients:2"})
		})

		Convey("Second sweep should skip populated directory", func() {
			again, err := RunSweep(orchestrator, s, SweepOptions{})
			So(err, ShouldBeNil)
			So(again.Outcomes[1].Kind, ShouldEqual, Skipped)
		})
	})
}

func TestProducerExitDuringRun(t *testing.T) {
	logrus.SetLevel(logrus.PanicLevel)

	Convey("While running with a producer which exits shortly after getting ready", t, func() {
		dir, err := ioutil.TempDir("", "olive_producer_exit")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		bin := filepath.Join(dir, "bin")
		root := filepath.Join(dir, "results")
		So(os.MkdirAll(bin, 0755), ShouldBeNil)

		config := Config{
			ToolType:       ipc.SPMC,
			MemoryName:     "olive_producer_exit",
			ServerPath:     writeScript(bin, "spmc_server", producerScript),
			ClientPath:     writeScript(bin, "spmc_client", consumerScript),
			CleanupPath:    writeScript(bin, ipc.CleanupBinary, cleanupScript),
			Duration:       3 * time.Second,
			StartupTimeout: time.Second,
			StopGrace:      2 * time.Second,
			CleanupTimeout: 5 * time.Second,
			ReadyMarker:    ipc.ReadyMarker,
			ServerCPU:      isolation.Unbound(),
			Stats:          []string{ipc.StatLatency},
			ResultsRoot:    root,
			Collision:      SkipExisting,
			LogLevel:       "INFO",
		}
		So(config.Validate(), ShouldBeNil)

		local := executor.NewLocalWithOutputDir(dir)
		cleaner := ipc.NewCleaner(local, config.CleanupPath, config.CleanupTimeout)
		orchestrator := NewOrchestrator(local, cleaner, config)

		s, err := sweep.FromValues(map[string][]string{
			sweep.Rate:        {"2"},
			sweep.ClientCount: {"1"},
			sweep.QueueSize:   {"1024"},
			sweep.MessageSize: {"32"},
		})
		So(err, ShouldBeNil)

		start := time.Now()
		report, err := RunSweep(orchestrator, s, SweepOptions{})
		So(err, ShouldBeNil)

		Convey("Run should fail with producer exit code well before end of run", func() {
			So(report.Outcomes, ShouldHaveLength, 1)
			So(report.Outcomes[0].Kind, ShouldEqual, Failed)
			So(report.Outcomes[0].Reason, ShouldEqual, ProducerExited)
			So(report.Outcomes[0].Err.Error(), ShouldContainSubstring, "code 3")
			So(report.Succeeded(), ShouldBeFalse)
			So(time.Since(start), ShouldBeLessThan, config.Duration)
		})

		Convey("Shared memory should still be removed before and after the run", func() {
			log, err := ioutil.ReadFile(filepath.Join(bin, "cleanup.log"))
			So(err, ShouldBeNil)
			So(string(log), ShouldEqual, "--names olive_producer_exit\n--names olive_producer_exit\n")
		})
	})
}
