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

// IsAbsolute reports whether p starts at the file system root.
func IsAbsolute(p string) bool {
	return strings.HasPrefix(p, "/")
}

// Normalize cleans p lexically.  The empty path stays empty.
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

// BaseName returns the last element of p, ignoring trailing slashes.
func BaseName(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// BaseNameWithoutExtension strips the final extension from BaseName(p):
// "/tmp/test.extension.xcodeproj" gives "test.extension".
func BaseNameWithoutExtension(p string) string {
	base := BaseName(p)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// Extension returns the text after the last dot of the last element, without
// the dot.
func Extension(p string) string {
	base := BaseName(p)
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// Directory returns everything before the last element of p.
func Directory(p string) string {
	p = strings.TrimRight(p, "/")
	i := strings.LastIndex(p, "/")
	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	default:
		return p[:i]
	}
}
