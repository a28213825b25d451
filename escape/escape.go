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

// Package escape quotes strings for the consumers of synthesized build
// descriptions: POSIX shells, Makefile-style dependency files and Ninja.
package escape

import "strings"

// ShellList takes a slice of strings that may contain characters that are meaningful to a
// shell and escapes each one if necessary. A new slice containing the escaped strings is
// returned.
func ShellList(slice []string) []string {
	slice = append([]string(nil), slice...)

	for i, s := range slice {
		slice[i] = Shell(s)
	}
	return slice
}

func shellUnsafeChar(r rune) bool {
	switch {
	case 'A' <= r && r <= 'Z',
		'a' <= r && r <= 'z',
		'0' <= r && r <= '9',
		r == '_',
		r == '+',
		r == '-',
		r == '=',
		r == '.',
		r == ',',
		r == '/',
		r == '@',
		r == ':':
		return false
	default:
		return true
	}
}

// Shell takes a string that may contain characters that are meaningful to a shell and
// escapes it if necessary by wrapping it in single quotes, and replacing internal single
// quotes with '\'' (one single quote to end the quoting, a shell-escaped single quote to
// insert a real single quote, and then a single quote to restart quoting).  Spaces are
// meaningful: an argument containing one is always quoted, as is the empty argument.
func Shell(s string) string {
	if s == "" {
		return `''`
	}
	if strings.IndexFunc(s, shellUnsafeChar) == -1 {
		// No escaping necessary
		return s
	}

	return `'` + singleQuoteReplacer.Replace(s) + `'`
}

// ShellCommand joins argv into a single shell command line.
func ShellCommand(argv []string) string {
	return strings.Join(ShellList(argv), " ")
}

var singleQuoteReplacer = strings.NewReplacer(`'`, `'\''`)

// Makefile escapes a path for use as a target or prerequisite in a
// Makefile-style dependency file.
func Makefile(s string) string {
	return makefileEscaper.Replace(s)
}

func MakefileList(slice []string) []string {
	out := make([]string, len(slice))
	for i, s := range slice {
		out[i] = Makefile(s)
	}
	return out
}

var makefileEscaper = strings.NewReplacer(
	"$", "$$",
	"#", `\#`,
	" ", `\ `,
	"\t", "\\\t",
	":", `\:`)

// Ninja takes a string that may contain characters that are meaningful to Ninja ($)
// and escapes it so it will be passed through to the command untouched.
func Ninja(s string) string {
	return ninjaEscaper.Replace(s)
}

var ninjaEscaper = strings.NewReplacer(
	"$", "$$")

// NinjaPath escapes a path used in a build statement's input or output list.
func NinjaPath(s string) string {
	return ninjaPathEscaper.Replace(s)
}

var ninjaPathEscaper = strings.NewReplacer(
	"$", "$$",
	"\n", "$\n",
	" ", "$ ",
	":", "$:")
