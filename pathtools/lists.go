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

package pathtools

import (
	"path"
	"strings"
)

// ReplaceExtension swaps the extension of the last path element, appending one
// when the element has none.
func ReplaceExtension(p string, extension string) string {
	start := strings.LastIndex(p, "/") + 1
	dot := strings.LastIndex(p[start:], ".")
	if dot == -1 {
		return p + "." + extension
	}
	return p[:start+dot+1] + extension
}

// ResolveRelative joins p onto base unless p is already absolute.
func ResolveRelative(p, base string) string {
	if p == "" {
		return Normalize(base)
	}
	if IsAbsolute(p) || base == "" {
		return Normalize(p)
	}
	return Normalize(path.Join(base, p))
}

// Uniq drops repeated entries, keeping the first occurrence.
func Uniq(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
