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
	"io"
	"strings"
	"unicode"
)

const (
	indentWidth = 4
	lineWidth   = 80
)

// ninjaWriter writes Ninja statements, wrapping long build lines with "$".
// The first write error sticks: later calls do nothing and Err reports it.
type ninjaWriter struct {
	w   io.StringWriter
	err error

	justDidBlankLine bool
}

func newNinjaWriter(w io.StringWriter) *ninjaWriter {
	return &ninjaWriter{w: w}
}

func (n *ninjaWriter) write(strs ...string) {
	for _, s := range strs {
		if n.err != nil {
			return
		}
		_, n.err = n.w.WriteString(s)
	}
}

func (n *ninjaWriter) Err() error {
	return n.err
}

// Comment writes comment as "#" lines no wider than the line width, split
// at spaces.  Newlines in comment start new lines.
func (n *ninjaWriter) Comment(comment string) error {
	n.justDidBlankLine = false
	const maxLineLen = lineWidth - len("# ")

	for _, para := range strings.Split(comment, "\n") {
		para = strings.TrimRightFunc(para, unicode.IsSpace)
		for len(para) > maxLineLen {
			split := strings.LastIndexFunc(para[:maxLineLen+1], unicode.IsSpace)
			if split <= 0 {
				break
			}
			n.write("# ", strings.TrimSpace(para[:split]), "\n")
			para = strings.TrimLeftFunc(para[split:], unicode.IsSpace)
		}
		n.write(strings.TrimSpace("# "+para), "\n")
	}
	return n.err
}

func (n *ninjaWriter) Rule(name string) error {
	n.justDidBlankLine = false
	n.write("rule ", name, "\n")
	return n.err
}

// Build writes one build statement.  The paths must already be escaped.
func (n *ninjaWriter) Build(comment, rule string, outputs, implicitOuts, explicitDeps, implicitDeps, orderOnlyDeps []string) error {
	if comment != "" {
		if err := n.Comment(comment); err != nil {
			return err
		}
	}
	n.justDidBlankLine = false

	wrap := &wrappingWriter{ninjaWriter: n, maxLineLen: lineWidth - len(" $")}
	wrap.word("build", false)
	for _, out := range outputs {
		wrap.word(out, true)
	}
	wrap.list("|", implicitOuts)
	wrap.word(":", false)
	wrap.word(rule, true)
	for _, dep := range explicitDeps {
		wrap.word(dep, true)
	}
	wrap.list("|", implicitDeps)
	wrap.list("||", orderOnlyDeps)
	n.write("\n")
	return n.err
}

func (n *ninjaWriter) Assign(name, value string) error {
	n.justDidBlankLine = false
	n.write(name, " = ", value, "\n")
	return n.err
}

func (n *ninjaWriter) ScopedAssign(name, value string) error {
	n.justDidBlankLine = false
	n.write(strings.Repeat(" ", indentWidth), name, " = ", value, "\n")
	return n.err
}

func (n *ninjaWriter) Default(targets ...string) error {
	n.justDidBlankLine = false
	wrap := &wrappingWriter{ninjaWriter: n, maxLineLen: lineWidth - len(" $")}
	wrap.word("default", false)
	for _, t := range targets {
		wrap.word(t, true)
	}
	n.write("\n")
	return n.err
}

// BlankLine writes an empty line unless the previous statement was one.
func (n *ninjaWriter) BlankLine() error {
	if !n.justDidBlankLine {
		n.justDidBlankLine = true
		n.write("\n")
	}
	return n.err
}

type wrappingWriter struct {
	*ninjaWriter
	maxLineLen int
	writtenLen int
}

func (w *wrappingWriter) word(s string, space bool) {
	spaceLen := 0
	if space {
		spaceLen = 1
	}
	if w.writtenLen > 0 && w.writtenLen+len(s)+spaceLen > w.maxLineLen {
		w.write(" $\n", strings.Repeat(" ", indentWidth*2))
		w.writtenLen = indentWidth * 2
	} else if space {
		w.write(" ")
		w.writtenLen++
	}
	w.write(s)
	w.writtenLen += len(s)
}

func (w *wrappingWriter) list(sep string, items []string) {
	if len(items) == 0 {
		return
	}
	w.word(sep, true)
	for _, item := range items {
		w.word(item, true)
	}
}
