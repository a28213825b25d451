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

// Package pbxproj is the project model: the objects of a project file,
// linked into a graph the build system reads.  The model is built once by
// Decode and never modified afterwards.
package pbxproj

import (
	"github.com/xcbuild/xcbuild/pbxsetting"
)

type Project struct {
	ID string
	// Path is the .xcodeproj bundle the project was loaded from.
	Path string
	Name string

	ProjectDirPath         string
	ProjectRoot            string
	BuildConfigurationList *ConfigurationList
	MainGroup              *FileReference
	ProductRefGroup        *FileReference
	Targets                []*Target

	fileReferences map[string]*FileReference
}

// TargetByName returns the target called name, or nil.
func (p *Project) TargetByName(name string) *Target {
	for _, t := range p.Targets {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// TargetByID returns the target with the object identifier id, or nil.
func (p *Project) TargetByID(id string) *Target {
	for _, t := range p.Targets {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// FileReference returns the file or group with the object identifier id.
func (p *Project) FileReference(id string) *FileReference {
	return p.fileReferences[id]
}

type TargetKind int

const (
	NativeTarget TargetKind = iota
	AggregateTarget
	LegacyTarget
)

var targetIsas = map[string]TargetKind{
	"PBXNativeTarget":    NativeTarget,
	"PBXAggregateTarget": AggregateTarget,
	"PBXLegacyTarget":    LegacyTarget,
}

func (k TargetKind) String() string {
	for isa, kind := range targetIsas {
		if kind == k {
			return isa
		}
	}
	return "PBXTarget"
}

type Target struct {
	ID          string
	Kind        TargetKind
	Name        string
	ProductName string
	// Project is the project declaring the target.
	Project *Project

	BuildConfigurationList *ConfigurationList
	BuildPhases            []*BuildPhase
	Dependencies           []*TargetDependency

	// Native targets.
	ProductType      string
	ProductReference *FileReference
	BuildRules       []*BuildRule

	// Legacy targets.
	BuildToolPath                  string
	BuildArgumentsString           string
	BuildWorkingDirectory          string
	PassBuildSettingsInEnvironment bool
}

// A ContainerItemProxy refers to an object by identifier, possibly in
// another project.
type ContainerItemProxy struct {
	ID                   string
	ContainerPortal      string
	ProxyType            int
	RemoteGlobalIDString string
	RemoteInfo           string
}

type TargetDependency struct {
	ID   string
	Name string
	// Target is set when the dependency names a target of the same project.
	Target      *Target
	TargetProxy *ContainerItemProxy
}

type BuildConfiguration struct {
	ID            string
	Name          string
	BuildSettings pbxsetting.Level
	// BaseConfigurationReference is the xcconfig file layered below
	// BuildSettings, if any.
	BaseConfigurationReference *FileReference
}

type ConfigurationList struct {
	ID                            string
	BuildConfigurations           []*BuildConfiguration
	DefaultConfigurationName      string
	DefaultConfigurationIsVisible bool
}

// Get returns the configuration called name, or nil.
func (l *ConfigurationList) Get(name string) *BuildConfiguration {
	if l == nil {
		return nil
	}
	for _, c := range l.BuildConfigurations {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Default returns the default configuration, or the first one.
func (l *ConfigurationList) Default() *BuildConfiguration {
	if l == nil {
		return nil
	}
	if c := l.Get(l.DefaultConfigurationName); c != nil {
		return c
	}
	if len(l.BuildConfigurations) > 0 {
		return l.BuildConfigurations[0]
	}
	return nil
}

type BuildPhaseKind int

const (
	HeadersPhase BuildPhaseKind = iota
	SourcesPhase
	FrameworksPhase
	ResourcesPhase
	CopyFilesPhase
	ShellScriptPhase
	RezPhase
	AppleScriptPhase
)

var phaseIsas = map[string]BuildPhaseKind{
	"PBXHeadersBuildPhase":     HeadersPhase,
	"PBXSourcesBuildPhase":     SourcesPhase,
	"PBXFrameworksBuildPhase":  FrameworksPhase,
	"PBXResourcesBuildPhase":   ResourcesPhase,
	"PBXCopyFilesBuildPhase":   CopyFilesPhase,
	"PBXShellScriptBuildPhase": ShellScriptPhase,
	"PBXRezBuildPhase":         RezPhase,
	"PBXAppleScriptBuildPhase": AppleScriptPhase,
}

func (k BuildPhaseKind) String() string {
	for isa, kind := range phaseIsas {
		if kind == k {
			return isa
		}
	}
	return "PBXBuildPhase"
}

// CopyFiles destinations (dstSubfolderSpec).
const (
	DestinationAbsolute         = 0
	DestinationWrapper          = 1
	DestinationExecutables      = 6
	DestinationResources        = 7
	DestinationFrameworks       = 10
	DestinationSharedFrameworks = 11
	DestinationSharedSupport    = 12
	DestinationPlugIns          = 13
	DestinationJavaResources    = 15
	DestinationProducts         = 16
)

type BuildPhase struct {
	ID    string
	Kind  BuildPhaseKind
	Name  string
	Files []*BuildFile

	RunOnlyForDeploymentPostprocessing bool

	// Copy files phases.
	DstPath          string
	DstSubfolderSpec int

	// Shell script phases.
	ShellPath        string
	ShellScript      string
	InputPaths       []string
	OutputPaths      []string
	ShowEnvVarsInLog bool
}

type BuildFile struct {
	ID      string
	FileRef *FileReference
	// Settings holds per-file settings such as COMPILER_FLAGS and
	// ATTRIBUTES.
	Settings map[string]any
}

// CompilerFlags returns the file's COMPILER_FLAGS setting.
func (b *BuildFile) CompilerFlags() string {
	s, _ := b.Settings["COMPILER_FLAGS"].(string)
	return s
}

// Attributes returns the file's ATTRIBUTES setting, such as Public or
// Private for headers.
func (b *BuildFile) Attributes() []string {
	return stringList(b.Settings["ATTRIBUTES"])
}

type BuildRule struct {
	ID                       string
	Name                     string
	CompilerSpec             string
	FileType                 string
	FilePatterns             string
	IsEditable               bool
	Script                   string
	OutputFiles              []string
	OutputFilesCompilerFlags []string
}
