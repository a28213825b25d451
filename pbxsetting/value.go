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

// EntryKind distinguishes literal text from a setting reference.
type EntryKind int

const (
	Literal EntryKind = iota
	Reference
)

// An Entry is one piece of a Value.  Literal entries carry Text; reference
// entries carry the (possibly itself referencing) Value naming the setting,
// including any ":operator" suffixes.
type Entry struct {
	Kind  EntryKind
	Text  string
	Value *Value
}

// A Value is the unexpanded form of a setting: an ordered sequence of literal
// and reference entries.  Adjacent entries concatenate with no separator.
type Value struct {
	entries []Entry
}

// String returns a Value holding s verbatim, with no references.
func String(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{entries: []Entry{{Kind: Literal, Text: s}}}
}

// Variable returns a Value that is a single reference to name.
func Variable(name string) Value {
	inner := String(name)
	return Value{entries: []Entry{{Kind: Reference, Value: &inner}}}
}

// FromEntries builds a Value from explicit entries, merging adjacent literals.
func FromEntries(entries ...Entry) Value {
	var v Value
	for _, e := range entries {
		v.appendEntry(e)
	}
	return v
}

func (v *Value) appendEntry(e Entry) {
	if e.Kind == Literal {
		if e.Text == "" {
			return
		}
		if n := len(v.entries); n > 0 && v.entries[n-1].Kind == Literal {
			v.entries[n-1].Text += e.Text
			return
		}
	}
	v.entries = append(v.entries, e)
}

// Entries returns a copy of the entry list.
func (v Value) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

// Empty reports whether the value has no entries at all.
func (v Value) Empty() bool {
	return len(v.entries) == 0
}

// Append returns the concatenation of v and other.
func (v Value) Append(other Value) Value {
	out := Value{entries: append([]Entry(nil), v.entries...)}
	for _, e := range other.entries {
		out.appendEntry(e)
	}
	return out
}

// Raw renders v back to setting syntax.  Literal '$' characters are doubled so
// that Parse(v.Raw()) reproduces v.
func (v Value) Raw() string {
	var sb strings.Builder
	v.writeRaw(&sb)
	return sb.String()
}

func (v Value) writeRaw(sb *strings.Builder) {
	for _, e := range v.entries {
		switch e.Kind {
		case Literal:
			sb.WriteString(strings.ReplaceAll(e.Text, "$", "$$"))
		case Reference:
			sb.WriteString("$(")
			if e.Value != nil {
				e.Value.writeRaw(sb)
			}
			sb.WriteString(")")
		}
	}
}

// Equal compares two values entry by entry.
func (v Value) Equal(other Value) bool {
	if len(v.entries) != len(other.entries) {
		return false
	}
	for i, e := range v.entries {
		o := other.entries[i]
		if e.Kind != o.Kind || e.Text != o.Text {
			return false
		}
		if e.Kind == Reference {
			var a, b Value
			if e.Value != nil {
				a = *e.Value
			}
			if o.Value != nil {
				b = *o.Value
			}
			if !a.Equal(b) {
				return false
			}
		}
	}
	return true
}

// Parse tokenizes setting syntax.  References may be written $(NAME),
// ${NAME} or $NAME, may nest ($(A_$(B))) and may carry operators
// ($(NAME:lower)).  "$$" is a literal dollar sign.  Parse never fails: an
// unterminated reference makes the rest of the string literal text.
func Parse(s string) Value {
	v, _, _ := parseValue(s, 0, 0)
	return v
}

func closerFor(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ')'
}

func isIdentifierChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// parseValue consumes s from i until the terminator (0 for end of string).
// It returns the parsed value, the index after the terminator and whether
// the terminator was seen.
func parseValue(s string, i int, terminator byte) (Value, int, bool) {
	var v Value
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			v.appendEntry(Entry{Kind: Literal, Text: lit.String()})
			lit.Reset()
		}
	}

	for i < len(s) {
		c := s[i]
		if terminator != 0 && c == terminator {
			flush()
			return v, i + 1, true
		}
		if c != '$' || i+1 >= len(s) {
			lit.WriteByte(c)
			i++
			continue
		}

		next := s[i+1]
		switch {
		case next == '$':
			lit.WriteByte('$')
			i += 2

		case next == '(' || next == '{':
			inner, end, closed := parseValue(s, i+2, closerFor(next))
			if !closed {
				lit.WriteString(s[i:])
				i = len(s)
				continue
			}
			flush()
			v.appendEntry(Entry{Kind: Reference, Value: &inner})
			i = end

		case isIdentifierChar(next):
			end := i + 1
			for end < len(s) && isIdentifierChar(s[end]) {
				end++
			}
			flush()
			inner := String(s[i+1 : end])
			v.appendEntry(Entry{Kind: Reference, Value: &inner})
			i = end

		default:
			lit.WriteByte('$')
			i++
		}
	}

	flush()
	return v, i, terminator == 0
}
