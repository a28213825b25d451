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

// Package xcbuild resolves Xcode projects and workspaces into build
// descriptions: the ordered list of tool invocations a build of a scheme or
// of named targets would run, without running any of them.
//
// A Context loads three inputs through a billy.Filesystem: the
// specification domains describing compilers, linkers, file types and
// product types; an HCL registry of platforms, SDKs and toolchains; and the
// workspace or project itself.  Describe then walks the target dependency
// graph a level at a time.  Targets on the same level have no dependencies
// on each other, so their settings and invocations resolve concurrently.
//
// The resulting Description can be written as a Ninja manifest, as JSON or
// YAML, as a clang compilation database, or into a SQLite database with
// package descdb.  Problems that do not stop resolution, such as a file with
// no applicable build rule, are collected as diagnostics next to the
// invocations that could be resolved.
package xcbuild
