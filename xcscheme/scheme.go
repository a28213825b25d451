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

// Package xcscheme reads .xcscheme files: which targets a scheme builds and
// the build configuration each action uses.
package xcscheme

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/xcbuild/xcbuild/pbxsetting"
)

type Scheme struct {
	XMLName       xml.Name      `xml:"Scheme"`
	Version       string        `xml:"version,attr"`
	BuildAction   BuildAction   `xml:"BuildAction"`
	TestAction    Action        `xml:"TestAction"`
	LaunchAction  Action        `xml:"LaunchAction"`
	ProfileAction Action        `xml:"ProfileAction"`
	AnalyzeAction Action        `xml:"AnalyzeAction"`
	ArchiveAction ArchiveAction `xml:"ArchiveAction"`

	// Name is the file name without its extension.  Shared is set for
	// schemes under xcshareddata.
	Name   string `xml:"-"`
	Path   string `xml:"-"`
	Shared bool   `xml:"-"`
}

type BuildAction struct {
	ParallelizeBuildables     string             `xml:"parallelizeBuildables,attr"`
	BuildImplicitDependencies string             `xml:"buildImplicitDependencies,attr"`
	Entries                   []BuildActionEntry `xml:"BuildActionEntries>BuildActionEntry"`
}

// Parallelize reports whether independent targets may build concurrently.
func (a BuildAction) Parallelize() bool {
	return pbxsetting.ParseBoolean(a.ParallelizeBuildables)
}

// ImplicitDependencies reports whether dependencies inferred from linked
// products are honored.  Missing means yes.
func (a BuildAction) ImplicitDependencies() bool {
	return a.BuildImplicitDependencies == "" || pbxsetting.ParseBoolean(a.BuildImplicitDependencies)
}

type BuildActionEntry struct {
	BuildForTesting    string             `xml:"buildForTesting,attr"`
	BuildForRunning    string             `xml:"buildForRunning,attr"`
	BuildForProfiling  string             `xml:"buildForProfiling,attr"`
	BuildForArchiving  string             `xml:"buildForArchiving,attr"`
	BuildForAnalyzing  string             `xml:"buildForAnalyzing,attr"`
	BuildableReference BuildableReference `xml:"BuildableReference"`
}

// BuildFor reports whether the entry is built for action ("test", "run",
// "profile", "archive" or "analyze").
func (e BuildActionEntry) BuildFor(action string) bool {
	var v string
	switch action {
	case "test":
		v = e.BuildForTesting
	case "run":
		v = e.BuildForRunning
	case "profile":
		v = e.BuildForProfiling
	case "archive":
		v = e.BuildForArchiving
	case "analyze":
		v = e.BuildForAnalyzing
	default:
		return false
	}
	return pbxsetting.ParseBoolean(v)
}

// A BuildableReference names a target by its object identifier inside a
// referenced container.
type BuildableReference struct {
	BuildableIdentifier string `xml:"BuildableIdentifier,attr"`
	BlueprintIdentifier string `xml:"BlueprintIdentifier,attr"`
	BuildableName       string `xml:"BuildableName,attr"`
	BlueprintName       string `xml:"BlueprintName,attr"`
	ReferencedContainer string `xml:"ReferencedContainer,attr"`
}

// ContainerPath resolves ReferencedContainer ("container:App.xcodeproj")
// against base, the directory holding the workspace or project.
func (r BuildableReference) ContainerPath(base string) string {
	p := strings.TrimPrefix(r.ReferencedContainer, "container:")
	if strings.HasPrefix(p, "/") || base == "" {
		return p
	}
	return strings.TrimSuffix(base, "/") + "/" + p
}

type Action struct {
	BuildConfiguration string `xml:"buildConfiguration,attr"`
}

type ArchiveAction struct {
	Action
	RevealArchiveInOrganizer string `xml:"revealArchiveInOrganizer,attr"`
}

// Parse decodes the contents of a .xcscheme file.
func Parse(data []byte) (*Scheme, error) {
	var s Scheme
	if err := xml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scheme: %w", err)
	}
	return &s, nil
}
