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

// Package tool synthesizes the invocations of individual tools: compilers,
// linkers, copies, scripts and the generated files they need.
package tool

import (
	"github.com/xcbuild/xcbuild/dependency"
)

// An AuxiliaryFile is content written to disk before an invocation runs,
// such as a link file list, a script or a header map.
type AuxiliaryFile struct {
	Path       string
	Contents   []byte
	Executable bool
}

// DependencyInfo names a file the invocation writes describing the inputs
// it actually read.
type DependencyInfo struct {
	Format dependency.Format
	Path   string
}

// An Invocation is one fully resolved command.  It is plain data: creating
// one touches neither the file system nor any process.
//
// An invocation without an Executable only materializes its auxiliary
// files.
type Invocation struct {
	Executable       string
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string

	Inputs  []string
	Outputs []string
	// InputDependencies must exist before the invocation runs but do not
	// make it out of date.
	InputDependencies []string

	DependencyInfo []DependencyInfo
	AuxiliaryFiles []AuxiliaryFile

	LogMessage           string
	ShowEnvironmentInLog bool
	// Target names the target the invocation belongs to.
	Target string
}

// Argv returns the executable followed by the arguments.
func (inv Invocation) Argv() []string {
	return append([]string{inv.Executable}, inv.Arguments...)
}
