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
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/phase"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxspec"
	"github.com/xcbuild/xcbuild/xcsdk"
)

// ErrDependencyFailed is wrapped by the TargetError of a target skipped
// because a target it depends on could not be resolved.
var ErrDependencyFailed = errors.New("dependency failed")

// A TargetError describes a failure that stopped the resolution of one
// target.
type TargetError struct {
	Target string
	Err    error
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("target %s: %s", e.Target, e.Err)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// A Context loads the specifications, SDKs and workspace named by a Config
// and resolves them into a Description.
type Context struct {
	config *Config
	fs     billy.Filesystem
	logger *slog.Logger

	// Build and Workspace are set by Load.
	Build     *pbxbuild.BuildEnvironment
	Workspace *pbxbuild.WorkspaceContext
}

// NewContext returns a context reading from fs.  A nil logger logs to
// slog.Default().
func NewContext(fs billy.Filesystem, config *Config, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{config: config, fs: fs, logger: logger}
}

// Load reads the specification domains, the SDK registry and the
// workspace.  A specification domain that cannot be loaded at all is fatal.
func (c *Context) Load() error {
	specs := pbxspec.NewManager()
	specs.SetLogger(c.logger)
	loader := pbxspec.NewLoader(c.fs, specs)
	for _, d := range c.config.specDomains {
		c.logger.Debug("loading specifications", "domain", d.Domain, "path", d.Path)
		if err := loader.RegisterDomain(d.Domain, d.Path); err != nil {
			return fmt.Errorf("loading %s specifications: %w", d.Domain, err)
		}
	}

	sdks, err := xcsdk.Load(c.fs, c.config.Registry, c.config.DeveloperRoot, c.logger)
	if err != nil {
		return fmt.Errorf("loading SDK registry: %w", err)
	}

	defaults := pbxbuild.DefaultLevels(c.config.Environ, c.config.User)
	c.Build = pbxbuild.NewBuildEnvironment(c.fs, specs, sdks, defaults, c.logger)

	c.Workspace, err = pbxbuild.NewWorkspaceContext(c.fs, c.config.Workspace, c.config.User.UserName, c.logger)
	if err != nil {
		return err
	}
	c.logger.Debug("loaded workspace", "path", c.config.Workspace, "projects", len(c.Workspace.Projects))
	return nil
}

// Inputs lists the files Load read the workspace from, for depfiles.
func (c *Context) Inputs() []string {
	var inputs []string
	for _, p := range c.Workspace.Projects {
		inputs = append(inputs, p.Path+"/project.pbxproj")
	}
	return append(inputs, c.config.Registry)
}

// BuildContext returns the build the configuration asks for.
func (c *Context) BuildContext() (*pbxbuild.BuildContext, error) {
	bc := pbxbuild.NewBuildContext(c.Workspace, c.config.Action, c.logger)
	bc.Configuration = c.config.Configuration
	bc.Overrides = c.config.OverrideLevel()
	bc.DerivedDataRoot = c.config.DerivedData
	if c.config.Scheme != "" {
		bc.Scheme = c.Workspace.Scheme(c.config.Scheme)
		if bc.Scheme == nil {
			return nil, fmt.Errorf("scheme %q not found", c.config.Scheme)
		}
	}
	return bc, nil
}

// Graph resolves the targets bc builds and their dependencies.
func (c *Context) Graph(bc *pbxbuild.BuildContext) (*pbxbuild.DirectedGraph[*pbxproj.Target], error) {
	r := &pbxbuild.DependencyResolver{Context: bc}
	if bc.Scheme != nil {
		return r.ResolveSchemeDependencies()
	}
	if c.config.AllTargets || len(c.config.Targets) == 0 {
		return r.ResolveLegacyDependencies("")
	}

	merged := pbxbuild.NewDirectedGraph[*pbxproj.Target]()
	for _, name := range c.config.Targets {
		g, err := r.ResolveLegacyDependencies(name)
		if err != nil {
			return nil, err
		}
		for _, t := range g.Nodes() {
			merged.Insert(t, g.Dependencies(t)...)
		}
	}
	return merged, nil
}

// Describe resolves every target of the build, one dependency level at a
// time.  The targets of a level resolve concurrently, at most Jobs at once,
// and only read the environments of earlier levels.
//
// A target that fails to resolve does not stop the others: it and every
// target depending on it are left out, each reported as a TargetError.  The
// description of the remaining targets is returned together with the
// joined target errors.  A dependency cycle or a canceled ctx returns no
// description.
func (c *Context) Describe(ctx context.Context) (*Description, error) {
	bc, err := c.BuildContext()
	if err != nil {
		return nil, err
	}
	graph, err := c.Graph(bc)
	if err != nil {
		return nil, err
	}
	ok, levels := graph.Levels()
	if !ok {
		var names []string
		for _, t := range graph.Cycle() {
			names = append(names, t.Name)
		}
		return nil, &pbxbuild.CycleError{Members: names}
	}

	d := &Description{
		Workspace: c.config.Workspace,
		Scheme:    c.config.Scheme,
		Action:    c.config.Action,
	}
	envs := make(map[*pbxproj.Target]*pbxbuild.TargetEnvironment)
	failed := make(map[*pbxproj.Target]bool)
	var targetErrs []error
	for level, stage := range levels {
		c.logger.Debug("resolving level", "level", level, "targets", len(stage))
		results := make([]*TargetDescription, len(stage))
		errs := make([]error, len(stage))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.config.Jobs)
		for i, target := range stage {
			var deps []*pbxbuild.TargetEnvironment
			var broken *pbxproj.Target
			for _, dep := range graph.Closure(target) {
				if failed[dep] {
					broken = dep
					break
				}
				deps = append(deps, envs[dep])
			}
			if broken != nil {
				errs[i] = &TargetError{Target: target.Name, Err: fmt.Errorf("%w: %s", ErrDependencyFailed, broken.Name)}
				continue
			}
			var depNames []string
			for _, dep := range graph.Dependencies(target) {
				depNames = append(depNames, dep.Name)
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				td, err := c.describeTarget(bc, target, deps)
				if err != nil {
					errs[i] = &TargetError{Target: target.Name, Err: err}
					return nil
				}
				td.Level = level
				td.Dependencies = depNames
				results[i] = td
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, td := range results {
			if errs[i] != nil {
				c.logger.Warn("target not described", "target", stage[i].Name, "error", errs[i])
				failed[stage[i]] = true
				targetErrs = append(targetErrs, errs[i])
				continue
			}
			envs[td.Target] = td.Environment
			d.Targets = append(d.Targets, td)
		}
	}

	d.Diagnostics = bc.Diagnostics.List()
	return d, errors.Join(targetErrs...)
}

func (c *Context) describeTarget(bc *pbxbuild.BuildContext, target *pbxproj.Target, deps []*pbxbuild.TargetEnvironment) (*TargetDescription, error) {
	te, err := pbxbuild.ResolveTargetEnvironment(c.Build, bc, target, deps)
	if err != nil {
		return nil, err
	}
	invs := phase.PhaseInvocations(phase.NewEnvironment(c.Build, bc, te))
	c.logger.Debug("resolved target", "target", target.Name, "invocations", len(invs))
	return &TargetDescription{
		Name:        target.Name,
		Target:      target,
		Environment: te,
		Invocations: invs,
	}, nil
}
