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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xcbuild/xcbuild"
	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/descdb"
	"github.com/xcbuild/xcbuild/pbxbuild"
)

const (
	formatNinja           = "ninja"
	formatJSON            = "json"
	formatYAML            = "yaml"
	formatCompileCommands = "compile-commands"
)

type describeOptions struct {
	project       string
	workspace     string
	scheme        string
	targets       []string
	allTargets    bool
	action        string
	configuration string
	sdk           string
	archs         []string
	developerDir  string
	registry      string
	specs         []string
	derivedData   string
	jobs          int

	format    string
	output    string
	depfile   string
	db        string
	auxiliary bool
}

func newDescribeCommand(g *globalOptions) *cobra.Command {
	o := &describeOptions{}
	cmd := &cobra.Command{
		Use:   "describe [NAME=VALUE...]",
		Short: "Resolve a build and write its invocations",
		Long: `Resolve the targets of a scheme, or of named targets, into the tool
invocations a build would run.  Trailing NAME=VALUE arguments override
settings at the highest priority.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, g, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.project, "project", "", "path of the .xcodeproj to build")
	f.StringVar(&o.workspace, "workspace", "", "path of the .xcworkspace to build")
	f.StringVar(&o.scheme, "scheme", "", "scheme to build")
	f.StringArrayVar(&o.targets, "target", nil, "target to build, repeatable")
	f.BoolVar(&o.allTargets, "alltargets", false, "build every target of the project")
	f.StringVar(&o.action, "action", "build", "build action: build, test, archive, analyze or profile")
	f.StringVar(&o.configuration, "configuration", "", "build configuration, defaulting to the scheme's or project's")
	f.StringVar(&o.sdk, "sdk", "", "SDK to build against")
	f.StringSliceVar(&o.archs, "arch", nil, "architectures to build")
	f.StringVar(&o.developerDir, "developer-dir", "", "developer directory, defaulting to $DEVELOPER_DIR")
	f.StringVar(&o.registry, "registry", "", "HCL SDK registry, defaulting to registry.hcl in the developer directory")
	f.StringArrayVar(&o.specs, "specs", nil, "specification directory as domain=path, repeatable")
	f.StringVar(&o.derivedData, "derived-data", "", "derived data directory")
	f.IntVarP(&o.jobs, "jobs", "j", 0, "targets to resolve at once, defaulting to the number of CPUs")

	f.StringVar(&o.format, "format", formatNinja, "output format: ninja, json, yaml or compile-commands")
	f.StringVarP(&o.output, "output", "o", "-", "output file, - for standard output")
	f.StringVarP(&o.depfile, "depfile", "d", "", "write a depfile listing the inputs of the output file")
	f.StringVar(&o.db, "db", "", "also write the description to this SQLite database")
	f.BoolVar(&o.auxiliary, "write-auxiliary-files", false, "write the auxiliary files invocations expect, such as header maps")
	return cmd
}

func (o *describeOptions) config(g *globalOptions, overrides []string) (*xcbuild.Config, error) {
	if o.project != "" && o.workspace != "" {
		return nil, errors.New("--project and --workspace are exclusive")
	}
	ws := o.workspace
	if ws == "" {
		ws = o.project
	}
	specs := make([]string, len(o.specs))
	for i, s := range o.specs {
		if domain, dir, ok := strings.Cut(s, "="); ok {
			specs[i] = domain + "=" + g.abs(dir)
		} else {
			specs[i] = g.abs(s)
		}
	}
	return xcbuild.NewConfig(xcbuild.Config{
		Workspace:     g.abs(ws),
		Scheme:        o.scheme,
		Targets:       o.targets,
		AllTargets:    o.allTargets,
		Action:        o.action,
		Configuration: o.configuration,
		SDK:           o.sdk,
		Archs:         o.archs,
		Overrides:     overrides,
		DeveloperRoot: g.abs(o.developerDir),
		Registry:      g.abs(o.registry),
		Specs:         specs,
		DerivedData:   g.abs(o.derivedData),
		Jobs:          o.jobs,
		Environ:       g.environ,
		User:          g.user,
	})
}

func runDescribe(cmd *cobra.Command, g *globalOptions, o *describeOptions, args []string) error {
	for _, arg := range args {
		if !strings.Contains(arg, "=") {
			return fmt.Errorf("unexpected argument %q: want NAME=VALUE", arg)
		}
	}
	switch o.format {
	case formatNinja, formatJSON, formatYAML, formatCompileCommands:
	default:
		return fmt.Errorf("unknown format %q", o.format)
	}
	if o.depfile != "" && o.output == "-" {
		return errors.New("--depfile needs --output")
	}

	config, err := o.config(g, args)
	if err != nil {
		return err
	}
	c := xcbuild.NewContext(g.fs, config, g.logger)
	if err := c.Load(); err != nil {
		return err
	}
	// Targets that failed are reported after the rest is written.
	d, describeErr := c.Describe(cmd.Context())
	if d == nil {
		return describeErr
	}

	if err := writeOutput(cmd, g, o, d); err != nil {
		return err
	}
	if o.depfile != "" {
		if err := writeDepfile(g, g.abs(o.depfile), g.abs(o.output), c.Inputs()); err != nil {
			return err
		}
	}
	if o.auxiliary {
		if err := d.WriteAuxiliaryFiles(g.fs); err != nil {
			return err
		}
	}
	if o.db != "" {
		db, err := descdb.Open(g.abs(o.db))
		if err != nil {
			return err
		}
		if err := d.WriteDatabase(db); err != nil {
			_ = db.Close()
			return fmt.Errorf("writing %s: %w", o.db, err)
		}
		if err := db.Close(); err != nil {
			return err
		}
	}

	var warnings, errs int
	for _, diag := range d.Diagnostics {
		if diag.Severity == pbxbuild.SeverityError {
			errs++
		} else {
			warnings++
		}
	}
	g.logger.Info("described build", "subject", d.Subject(), "targets", len(d.Targets),
		"invocations", len(d.Invocations()), "warnings", warnings, "errors", errs)
	return describeErr
}

func writeOutput(cmd *cobra.Command, g *globalOptions, o *describeOptions, d *xcbuild.Description) error {
	if o.output == "-" {
		return writeFormat(cmd.OutOrStdout(), o.format, d)
	}

	name := g.abs(o.output)
	if err := g.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return err
	}
	f, err := g.fs.Create(name)
	if err != nil {
		return err
	}
	if err := writeFormat(f, o.format, d); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", o.output, err)
	}
	return f.Close()
}

func writeFormat(w io.Writer, format string, d *xcbuild.Description) error {
	buf := bufio.NewWriter(w)
	var err error
	switch format {
	case formatNinja:
		err = d.WriteNinja(buf)
	case formatJSON:
		err = d.WriteJSON(buf)
	case formatYAML:
		err = d.WriteYAML(buf)
	case formatCompileCommands:
		err = d.WriteCompileCommands(buf)
	}
	if err != nil {
		return err
	}
	return buf.Flush()
}

func writeDepfile(g *globalOptions, name, output string, inputs []string) error {
	f, err := g.fs.Create(name)
	if err != nil {
		return err
	}
	err = dependency.WriteMakefile(f, dependency.Info{Outputs: []string{output}, Inputs: inputs})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing depfile: %w", err)
	}
	return nil
}
