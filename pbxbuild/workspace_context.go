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

package pbxbuild

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/xcscheme"
	"github.com/xcbuild/xcbuild/xcworkspace"
)

// A WorkspaceContext is everything loaded for one build: the workspace, or
// the single project standing in for one, every project it references and
// their schemes.
type WorkspaceContext struct {
	// BasePath is the directory holding the workspace or project bundle.
	BasePath        string
	Workspace       *xcworkspace.Workspace
	Projects        []*pbxproj.Project
	SchemeGroups    []*xcscheme.Group
	DerivedDataHash DerivedDataHash

	projects map[string]*pbxproj.Project
}

// NewWorkspaceContext opens the .xcworkspace or .xcodeproj bundle at path.
// Projects referenced by other projects are loaded too.  Scheme files that
// fail to parse are logged and skipped.
func NewWorkspaceContext(fs billy.Filesystem, path, user string, logger *slog.Logger) (*WorkspaceContext, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path = pathtools.Normalize(path)
	w := &WorkspaceContext{
		BasePath:        pathtools.Directory(path),
		DerivedDataHash: NewDerivedDataHash(path),
		projects:        make(map[string]*pbxproj.Project),
	}

	var projectPaths []string
	switch pathtools.Extension(path) {
	case "xcworkspace":
		ws, err := xcworkspace.Open(fs, path)
		if err != nil {
			return nil, fmt.Errorf("opening workspace: %w", err)
		}
		w.Workspace = ws
		projectPaths = ws.Projects
		w.addSchemes(fs, path, user, logger)
	case "xcodeproj":
		projectPaths = []string{path}
	default:
		return nil, fmt.Errorf("%s: not a workspace or project", path)
	}

	for _, p := range projectPaths {
		if err := w.load(fs, p, user, logger); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *WorkspaceContext) addSchemes(fs billy.Filesystem, bundle, user string, logger *slog.Logger) {
	group, err := xcscheme.Open(fs, bundle, user)
	if err != nil {
		logger.Warn("reading schemes", "bundle", bundle, "error", err)
	}
	w.SchemeGroups = append(w.SchemeGroups, group)
}

func (w *WorkspaceContext) load(fs billy.Filesystem, path, user string, logger *slog.Logger) error {
	path = pathtools.Normalize(path)
	if _, ok := w.projects[path]; ok {
		return nil
	}
	project, err := pbxproj.Load(fs, path)
	if err != nil {
		return fmt.Errorf("loading project %s: %w", path, err)
	}
	w.projects[path] = project
	w.Projects = append(w.Projects, project)
	w.addSchemes(fs, path, user, logger)

	for _, nested := range nestedProjects(project) {
		if err := w.load(fs, nested, user, logger); err != nil {
			logger.Warn("skipping referenced project", "project", nested, "error", err)
		}
	}
	return nil
}

// nestedProjects finds the project bundles referenced from project's
// navigator.
func nestedProjects(project *pbxproj.Project) []string {
	if project.MainGroup == nil {
		return nil
	}
	env := pbxsetting.NewEnvironment([]pbxsetting.Level{ProjectPathLevel(project)}, nil)
	var out []string
	project.MainGroup.Walk(func(f *pbxproj.FileReference) {
		if f.IsGroup() || !strings.HasSuffix(f.Path, ".xcodeproj") {
			return
		}
		out = append(out, pathtools.Normalize(env.ExpandString(f.ResolvedPath(), pbxsetting.Condition{})))
	})
	return out
}

// SourceRoot is the directory project paths are relative to.
func SourceRoot(project *pbxproj.Project) string {
	return pathtools.ResolveRelative(project.ProjectDirPath, pathtools.Directory(project.Path))
}

// ProjectPathLevel defines the settings locating project on disk.
func ProjectPathLevel(project *pbxproj.Project) pbxsetting.Level {
	root := SourceRoot(project)
	return pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("PROJECT_NAME", project.Name),
		pbxsetting.Create("PROJECT", "$(PROJECT_NAME)"),
		pbxsetting.CreateLiteral("PROJECT_DIR", root),
		pbxsetting.CreateLiteral("PROJECT_FILE_PATH", project.Path),
		pbxsetting.Create("SRCROOT", "$(PROJECT_DIR)"),
		pbxsetting.Create("SOURCE_ROOT", "$(SRCROOT)"),
	})
}

// Project returns the loaded project at path.
func (w *WorkspaceContext) Project(path string) *pbxproj.Project {
	return w.projects[pathtools.Normalize(path)]
}

// Scheme finds a scheme by name, searching the workspace's schemes before
// each project's.
func (w *WorkspaceContext) Scheme(name string) *xcscheme.Scheme {
	for _, g := range w.SchemeGroups {
		if g == nil {
			continue
		}
		if s := g.Scheme(name); s != nil {
			return s
		}
	}
	return nil
}

// ResolveBuildable returns the target a scheme entry refers to.
func (w *WorkspaceContext) ResolveBuildable(ref xcscheme.BuildableReference) *pbxproj.Target {
	project := w.Project(ref.ContainerPath(w.BasePath))
	if project == nil {
		return nil
	}
	if t := project.TargetByID(ref.BlueprintIdentifier); t != nil {
		return t
	}
	return project.TargetByName(ref.BlueprintName)
}

// ResolveDependency returns the target a dependency refers to.  A proxy
// whose container is a file reference names a target of another loaded
// project.
func (w *WorkspaceContext) ResolveDependency(from *pbxproj.Target, dep *pbxproj.TargetDependency) *pbxproj.Target {
	if dep.Target != nil {
		return dep.Target
	}
	proxy := dep.TargetProxy
	if proxy == nil || from.Project == nil {
		return nil
	}
	project := from.Project
	if proxy.ContainerPortal != project.ID {
		ref := project.FileReference(proxy.ContainerPortal)
		if ref == nil {
			return nil
		}
		env := pbxsetting.NewEnvironment([]pbxsetting.Level{ProjectPathLevel(project)}, nil)
		project = w.Project(env.ExpandString(ref.ResolvedPath(), pbxsetting.Condition{}))
		if project == nil {
			return nil
		}
	}
	if t := project.TargetByID(proxy.RemoteGlobalIDString); t != nil {
		return t
	}
	return project.TargetByName(proxy.RemoteInfo)
}

// Targets returns every target of every project, in load order.
func (w *WorkspaceContext) Targets() []*pbxproj.Target {
	var out []*pbxproj.Target
	for _, p := range w.Projects {
		out = append(out, p.Targets...)
	}
	return out
}
