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

package isolation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCPUBinding(t *testing.T) {
	Convey("When parsing cpu bindings", t, func() {
		Convey("Negative, empty and none values should be unbound", func() {
			for _, value := range []string{"-1", "", "none", "NONE"} {
				cpu, err := ParseCPU(value)
				So(err, ShouldBeNil)
				So(cpu.IsBound(), ShouldBeFalse)
				So(cpu.Args(), ShouldBeNil)
			}
		})

		Convey("Core number should be bound", func() {
			cpu, err := ParseCPU("3")
			So(err, ShouldBeNil)
			So(cpu.IsBound(), ShouldBeTrue)
			So(cpu.Get(), ShouldEqual, 3)
			So(cpu.Args(), ShouldResemble, []string{"--cpu", "3"})
		})

		Convey("Garbage should be rejected", func() {
			_, err := ParseCPU("first")
			So(err, ShouldNotBeNil)
		})

		Convey("Get on unbound cpu should panic", func() {
			So(func() { Unbound().Get() }, ShouldPanic)
		})
	})
}

func TestClientBindings(t *testing.T) {
	Convey("When distributing cores between clients", t, func() {
		cpus := []CPU{Core(2), Core(3)}

		Convey("Front of the list should be padded with unbound entries", func() {
			bindings := ClientBindings(cpus, 4)
			So(bindings, ShouldResemble, []CPU{Unbound(), Unbound(), Core(2), Core(3)})
		})

		Convey("Extra cores should be ignored", func() {
			So(ClientBindings(cpus, 1), ShouldResemble, []CPU{Core(2)})
		})

		Convey("Input should not be modified between sweep iterations", func() {
			ClientBindings(cpus, 4)
			So(ClientBindings(cpus, 3), ShouldResemble, []CPU{Unbound(), Core(2), Core(3)})
			So(cpus, ShouldHaveLength, 2)
		})

		Convey("No cores should leave every client unbound", func() {
			So(ClientBindings(nil, 2), ShouldResemble, []CPU{Unbound(), Unbound()})
		})
	})
}
