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

package dependency

import (
	"fmt"
	"io"
	"strings"

	"github.com/xcbuild/xcbuild/escape"
)

// WriteMakefile writes info as a gcc-style depfile indicating that the
// outputs depend on the inputs.
func WriteMakefile(w io.Writer, info Info) error {
	if len(info.Outputs) == 0 {
		return fmt.Errorf("depfile needs at least one output")
	}
	targets := strings.Join(escape.MakefileList(info.Outputs), " ")
	if len(info.Inputs) == 0 {
		_, err := fmt.Fprintf(w, "%s:\n", targets)
		return err
	}
	_, err := fmt.Fprintf(w, "%s: \\\n %s\n", targets,
		strings.Join(escape.MakefileList(info.Inputs), " \\\n "))
	return err
}

// ParseMakefile reads the rules of a depfile.  Line continuations and
// backslash-escaped spaces are understood; every rule's targets become
// outputs and its prerequisites inputs.
func ParseMakefile(contents string) (Info, error) {
	var info Info
	contents = strings.ReplaceAll(contents, "\\\r\n", " ")
	contents = strings.ReplaceAll(contents, "\\\n", " ")

	for n, line := range strings.Split(contents, "\n") {
		words := splitMakefileWords(line)
		if len(words) == 0 {
			continue
		}
		colon := -1
		for i, w := range words {
			if w.colon {
				colon = i
				break
			}
		}
		if colon < 0 {
			return Info{}, fmt.Errorf("depfile line %d: missing ':'", n+1)
		}
		for _, w := range words[:colon+1] {
			if w.text != "" {
				info.Outputs = append(info.Outputs, w.text)
			}
		}
		for _, w := range words[colon+1:] {
			if w.text != "" {
				info.Inputs = append(info.Inputs, w.text)
			}
		}
	}
	return info, nil
}

type makefileWord struct {
	text string
	// colon is set on the word that ends the target list.
	colon bool
}

func splitMakefileWords(line string) []makefileWord {
	var words []makefileWord
	var cur strings.Builder
	inWord := false
	sawColon := false
	flush := func(colon bool) {
		if inWord || colon {
			words = append(words, makefileWord{text: cur.String(), colon: colon})
		}
		cur.Reset()
		inWord = false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
			inWord = true
		case c == '$' && i+1 < len(line) && line[i+1] == '$':
			i++
			cur.WriteByte('$')
			inWord = true
		case c == ':' && !sawColon && (i+1 == len(line) || line[i+1] == ' ' || line[i+1] == '\t'):
			sawColon = true
			flush(true)
		case c == ' ' || c == '\t' || c == '\r':
			flush(false)
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	flush(false)
	return words
}
