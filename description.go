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
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// A Description is everything a build would run, target by target in an
// order where every target follows its dependencies.
type Description struct {
	Workspace string
	Scheme    string
	Action    string

	Targets     []*TargetDescription
	Diagnostics []pbxbuild.Diagnostic
}

// A TargetDescription holds the resolved settings and invocations of one
// target.
type TargetDescription struct {
	Name        string
	Target      *pbxproj.Target
	Environment *pbxbuild.TargetEnvironment
	// Level is the target's stage in the dependency graph: 0 for targets
	// without dependencies.
	Level        int
	Dependencies []string
	Invocations  []tool.Invocation
}

// Subject names what was described: the scheme, or the targets.
func (d *Description) Subject() string {
	if d.Scheme != "" {
		return "scheme " + d.Scheme
	}
	names := make([]string, len(d.Targets))
	for i, td := range d.Targets {
		names[i] = td.Name
	}
	return "targets " + strings.Join(names, ", ")
}

// Target returns the description of the target called name, or nil.
func (d *Description) Target(name string) *TargetDescription {
	for _, td := range d.Targets {
		if td.Name == name {
			return td
		}
	}
	return nil
}

// Invocations returns the invocations of every target in build order.
func (d *Description) Invocations() []tool.Invocation {
	var invs []tool.Invocation
	for _, td := range d.Targets {
		invs = append(invs, td.Invocations...)
	}
	return invs
}

// WriteAuxiliaryFiles writes the auxiliary files of every invocation to fs,
// creating parent directories.  Executable files are made executable when
// fs supports it.
func (d *Description) WriteAuxiliaryFiles(fs billy.Filesystem) error {
	for _, inv := range d.Invocations() {
		for _, aux := range inv.AuxiliaryFiles {
			if err := fs.MkdirAll(path.Dir(aux.Path), 0o755); err != nil {
				return fmt.Errorf("creating directory for %s: %w", aux.Path, err)
			}
			mode := os.FileMode(0o644)
			if aux.Executable {
				mode = 0o755
			}
			if err := util.WriteFile(fs, aux.Path, aux.Contents, mode); err != nil {
				return fmt.Errorf("writing %s: %w", aux.Path, err)
			}
			if ch, ok := fs.(billy.Change); ok && aux.Executable {
				if err := ch.Chmod(aux.Path, mode); err != nil {
					return fmt.Errorf("chmod %s: %w", aux.Path, err)
				}
			}
		}
	}
	return nil
}

// A CompileCommand is one entry of a clang JSON compilation database.
type CompileCommand struct {
	Directory string
	File      string
	Output    string
	Arguments []string
}

// CompileCommands returns a compilation database entry for every C-family
// compile in d.
func (d *Description) CompileCommands() []CompileCommand {
	var cmds []CompileCommand
	for _, inv := range d.Invocations() {
		if !strings.HasPrefix(inv.LogMessage, "CompileC ") || len(inv.Inputs) == 0 {
			continue
		}
		cmd := CompileCommand{
			Directory: inv.WorkingDirectory,
			File:      inv.Inputs[0],
			Arguments: inv.Argv(),
		}
		if len(inv.Outputs) > 0 {
			cmd.Output = inv.Outputs[0]
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Record returns d as plain maps and lists for the JSON and YAML outputs.
func (d *Description) Record() map[string]any {
	targets := make([]any, len(d.Targets))
	for i, td := range d.Targets {
		targets[i] = td.record()
	}
	diags := make([]any, len(d.Diagnostics))
	for i, diag := range d.Diagnostics {
		diags[i] = map[string]any{
			"severity": diag.Severity.String(),
			"target":   diag.Target,
			"file":     diag.File,
			"setting":  diag.Setting,
			"message":  diag.Message,
		}
	}
	return map[string]any{
		"workspace":   d.Workspace,
		"scheme":      d.Scheme,
		"action":      d.Action,
		"targets":     targets,
		"diagnostics": diags,
	}
}

func (td *TargetDescription) record() map[string]any {
	invs := make([]any, len(td.Invocations))
	for i := range td.Invocations {
		invs[i] = invocationRecord(&td.Invocations[i])
	}
	rec := map[string]any{
		"name":         td.Name,
		"level":        int64(td.Level),
		"dependencies": stringList(td.Dependencies),
		"invocations":  invs,
	}
	if te := td.Environment; te != nil {
		rec["configuration"] = te.Configuration
		rec["product"] = te.Value("FULL_PRODUCT_NAME")
		rec["architectures"] = stringList(te.Architectures)
		if te.SDK != nil {
			rec["sdk"] = te.SDK.CanonicalName
		}
	}
	return rec
}

func invocationRecord(inv *tool.Invocation) map[string]any {
	rec := map[string]any{
		"message":    inv.LogMessage,
		"executable": inv.Executable,
		"arguments":  stringList(inv.Arguments),
		"inputs":     stringList(inv.Inputs),
		"outputs":    stringList(inv.Outputs),
	}
	if inv.WorkingDirectory != "" {
		rec["workingDirectory"] = inv.WorkingDirectory
	}
	if len(inv.InputDependencies) > 0 {
		rec["inputDependencies"] = stringList(inv.InputDependencies)
	}
	if len(inv.Environment) > 0 {
		env := make(map[string]any, len(inv.Environment))
		for k, v := range inv.Environment {
			env[k] = v
		}
		rec["environment"] = env
	}
	if len(inv.AuxiliaryFiles) > 0 {
		var paths []string
		for _, aux := range inv.AuxiliaryFiles {
			paths = append(paths, aux.Path)
		}
		rec["auxiliaryFiles"] = stringList(paths)
	}
	if len(inv.DependencyInfo) > 0 {
		infos := make([]any, len(inv.DependencyInfo))
		for i, info := range inv.DependencyInfo {
			infos[i] = map[string]any{"format": info.Format.String(), "path": info.Path}
		}
		rec["dependencyInfo"] = infos
	}
	return rec
}

func stringList(strs []string) []any {
	out := make([]any, len(strs))
	for i, s := range strs {
		out[i] = s
	}
	return out
}

// WriteJSON writes d's record as indented JSON with sorted keys.
func (d *Description) WriteJSON(w io.Writer) error {
	_, err := io.WriteString(w, oj.JSON(d.Record(), &oj.Options{Indent: 2, Sort: true})+"\n")
	return err
}

// WriteYAML writes d's record as YAML.
func (d *Description) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.Record()); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCompileCommands writes d's compile commands as a clang JSON
// compilation database.
func (d *Description) WriteCompileCommands(w io.Writer) error {
	cmds := d.CompileCommands()
	list := make([]any, len(cmds))
	for i, cmd := range cmds {
		list[i] = map[string]any{
			"directory": cmd.Directory,
			"file":      cmd.File,
			"output":    cmd.Output,
			"arguments": stringList(cmd.Arguments),
		}
	}
	_, err := io.WriteString(w, oj.JSON(list, &oj.Options{Indent: 2, Sort: true})+"\n")
	return err
}
