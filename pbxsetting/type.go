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

package pbxsetting

import (
	"strings"
)

// ParseBoolean interprets a setting value: YES, 1 and true (in any case) are
// true, anything else is false.
func ParseBoolean(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "1", "true":
		return true
	default:
		return false
	}
}

// FormatBoolean renders a boolean the way settings spell it.
func FormatBoolean(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// ParseList splits a list-typed setting on unquoted whitespace.  Single and
// double quotes group words and are removed; a backslash escapes the next
// character.
func ParseList(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		inWord  bool
		quote   byte
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
			inWord = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inWord = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if inWord {
				out = append(out, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	if inWord {
		out = append(out, cur.String())
	}
	return out
}

// FormatList joins list items into a value ParseList reads back, quoting
// items that contain whitespace or quotes.
func FormatList(list []string) string {
	parts := make([]string, len(list))
	for i, item := range list {
		if item == "" || strings.ContainsAny(item, " \t\n\"'\\") {
			parts[i] = `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(item) + `"`
		} else {
			parts[i] = item
		}
	}
	return strings.Join(parts, " ")
}
