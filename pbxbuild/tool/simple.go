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

package tool

// Touch updates the modification time of path once deps are built.
func Touch(ctx *Context, path string, deps []string) Invocation {
	return ctx.finish(Invocation{
		Executable: "/usr/bin/touch",
		Arguments:  []string{"-c", path},
		Inputs:     deps,
		LogMessage: "Touch " + path,
	})
}

// MakeDirectory creates dir and its parents.
func MakeDirectory(ctx *Context, dir string) Invocation {
	return ctx.finish(Invocation{
		Executable: "/bin/mkdir",
		Arguments:  []string{"-p", dir},
		Outputs:    []string{dir},
		LogMessage: "MkDir " + dir,
	})
}

// Symlink points link at target.
func Symlink(ctx *Context, target, link string) Invocation {
	return ctx.finish(Invocation{
		Executable: "/bin/ln",
		Arguments:  []string{"-sfh", target, link},
		Outputs:    []string{link},
		LogMessage: "SymLink " + link + " " + target,
	})
}
