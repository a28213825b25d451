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
	"path"
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
)

// splitOperators separates "NAME:op1:op2" into the setting name and its
// operators.  A "default=" operator swallows the rest of the text, colons
// included.
func splitOperators(text string) (string, []string) {
	name, rest, ok := strings.Cut(text, ":")
	if !ok {
		return text, nil
	}
	var ops []string
	for rest != "" {
		if strings.HasPrefix(rest, "default=") {
			ops = append(ops, rest)
			break
		}
		op, tail, more := strings.Cut(rest, ":")
		ops = append(ops, op)
		if !more {
			break
		}
		rest = tail
	}
	return name, ops
}

// applyOperator transforms an expanded value.  It reports false for an
// operator it does not know; the value is then passed through unchanged.
func applyOperator(op, value string) (string, bool) {
	if def, ok := strings.CutPrefix(op, "default="); ok {
		if value == "" {
			return def, true
		}
		return value, true
	}

	switch op {
	case "lower":
		return strings.ToLower(value), true
	case "upper":
		return strings.ToUpper(value), true
	case "quote":
		return quoteReplacer.Replace(value), true
	case "identifier", "c99extidentifier":
		return C99Identifier(value), true
	case "rfc1034identifier":
		return rfc1034Identifier(value), true
	case "dir":
		return pathtools.Directory(value), true
	case "file":
		return pathtools.BaseName(value), true
	case "base":
		return pathtools.BaseNameWithoutExtension(value), true
	case "suffix":
		if ext := path.Ext(pathtools.BaseName(value)); ext != "" {
			return ext, true
		}
		return "", true
	case "standardizepath":
		return pathtools.Normalize(value), true
	default:
		return value, false
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	` `, `\ `,
	`"`, `\"`,
	`'`, `\'`)

// C99Identifier replaces every character that cannot appear in a C
// identifier with '_', and prefixes a leading digit with '_'.
func C99Identifier(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if !isIdentifierChar(c) {
			b[i] = '_'
		}
	}
	if b[0] >= '0' && b[0] <= '9' {
		return "_" + string(b)
	}
	return string(b)
}

func rfc1034Identifier(s string) string {
	b := []byte(s)
	for i, c := range b {
		ok := c == '-' || c == '.' ||
			(c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9')
		if !ok {
			b[i] = '-'
		}
	}
	return string(b)
}
