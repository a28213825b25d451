// Copyright 2014 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package xcbuild

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/escape"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
)

const (
	ninjaRequiredVersion = "1.5"
	invokeRule           = "invoke"
)

// A buildDef is the Ninja build statement of one invocation.  Paths are
// escaped.
type buildDef struct {
	Comment     string
	Outputs     []string
	Inputs      []string
	Implicits   []string
	OrderOnly   []string
	Command     string
	Description string
	Depfile     string
}

// targetPhony names the phony edge standing for every output of a target.
func targetPhony(target string) string {
	return "target-" + toNinjaName(target)
}

// newBuildDef describes inv, the index'th invocation of target.  An
// invocation without outputs gets a stand-in output that is never created,
// so it runs on every build.
func newBuildDef(target string, index int, inv *tool.Invocation, orderOnly []string) *buildDef {
	outputs := ninjaPaths(inv.Outputs)
	if len(outputs) == 0 {
		outputs = []string{targetPhony(target) + "-" + strconv.Itoa(index)}
	}
	b := &buildDef{
		Outputs:     outputs,
		Inputs:      ninjaPaths(inv.Inputs),
		Implicits:   ninjaPaths(inv.InputDependencies),
		OrderOnly:   orderOnly,
		Command:     escape.Ninja(shellCommand(inv)),
		Description: escape.Ninja(inv.LogMessage),
	}
	for _, info := range inv.DependencyInfo {
		if info.Format == dependency.Makefile {
			b.Depfile = escape.Ninja(info.Path)
			break
		}
	}
	return b
}

func (b *buildDef) WriteTo(nw *ninjaWriter) error {
	if err := nw.Build(b.Comment, invokeRule, b.Outputs, nil, b.Inputs, b.Implicits, b.OrderOnly); err != nil {
		return err
	}
	nw.ScopedAssign("command", b.Command)
	if b.Description != "" {
		nw.ScopedAssign("description", b.Description)
	}
	if b.Depfile != "" {
		nw.ScopedAssign("depfile", b.Depfile)
		nw.ScopedAssign("deps", "gcc")
	}
	return nw.Err()
}

// WriteNinja writes d as a Ninja manifest.  Each target gets a phony edge
// named "target-<name>" over its outputs, and the invocations of a target
// are ordered after the phony edges of its dependencies.  Invocations that
// only materialize auxiliary files are left out; see WriteAuxiliaryFiles.
func (d *Description) WriteNinja(w io.StringWriter) error {
	nw := newNinjaWriter(w)

	header := "Build description for " + d.Subject() + ", action " + d.Action + "."
	nw.Comment(header)
	nw.Assign("ninja_required_version", ninjaRequiredVersion)
	nw.BlankLine()

	nw.Rule(invokeRule)
	nw.ScopedAssign("command", "$command")
	nw.ScopedAssign("description", "$description")
	if err := nw.BlankLine(); err != nil {
		return err
	}

	var phonies []string
	for _, td := range d.Targets {
		var orderOnly []string
		for _, dep := range td.Dependencies {
			orderOnly = append(orderOnly, targetPhony(dep))
		}

		nw.Comment(fmt.Sprintf("Target %s (%d invocations)", td.Name, len(td.Invocations)))
		nw.BlankLine()

		var outputs []string
		for i := range td.Invocations {
			inv := &td.Invocations[i]
			if inv.Executable == "" {
				continue
			}
			b := newBuildDef(td.Name, i, inv, orderOnly)
			if err := b.WriteTo(nw); err != nil {
				return err
			}
			nw.BlankLine()
			outputs = append(outputs, b.Outputs...)
		}

		phony := targetPhony(td.Name)
		if err := nw.Build("", "phony", []string{phony}, nil, outputs, nil, orderOnly); err != nil {
			return err
		}
		nw.BlankLine()
		phonies = append(phonies, phony)
	}

	if len(phonies) > 0 {
		nw.Default(phonies...)
	}
	return nw.Err()
}
