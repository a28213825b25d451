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
	"sort"
	"strings"

	"github.com/xcbuild/xcbuild/escape"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
)

// toNinjaName maps name onto the characters Ninja allows in names.
// Different names may map to the same result.
func toNinjaName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		valid := (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_' || r == '-' || r == '.'
		if valid {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func ninjaPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = escape.NinjaPath(p)
	}
	return out
}

// shellArgument quotes arg for /bin/sh.  Ninja values cannot hold a
// newline, so multi-line arguments are rebuilt with printf at run time.
func shellArgument(arg string) string {
	if !strings.Contains(arg, "\n") {
		return escape.Shell(arg)
	}
	encoded := strings.ReplaceAll(arg, `\`, `\\`)
	encoded = strings.ReplaceAll(encoded, "\n", `\n`)
	return `"$(printf '%b' ` + escape.Shell(encoded) + `)"`
}

// shellCommand is the /bin/sh command line that runs inv: a cd into its
// working directory, env assignments in name order, then argv.
func shellCommand(inv *tool.Invocation) string {
	var parts []string
	if inv.WorkingDirectory != "" {
		parts = append(parts, "cd", escape.Shell(inv.WorkingDirectory), "&&")
	}
	if len(inv.Environment) > 0 {
		names := make([]string, 0, len(inv.Environment))
		for name := range inv.Environment {
			names = append(names, name)
		}
		sort.Strings(names)
		parts = append(parts, "env")
		for _, name := range names {
			parts = append(parts, shellArgument(name+"="+inv.Environment[name]))
		}
	}
	for _, arg := range inv.Argv() {
		parts = append(parts, shellArgument(arg))
	}
	return strings.Join(parts, " ")
}
