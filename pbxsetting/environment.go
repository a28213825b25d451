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
	"log/slog"
	"sort"
	"strings"
)

// MaxExpansionDepth bounds nested setting lookups during expansion.  A chain
// deeper than this, or a reference back to a setting that is still being
// expanded, is a reference cycle: the offending reference expands to "" and
// a warning is logged once per expansion.
const MaxExpansionDepth = 32

// An Environment is a stack of levels searched front to back, falling back
// to an optional parent.  Lookups and expansion never modify it.
//
// InsertFront and InsertBack exist for composing an environment; once it is
// shared it must be treated as read-only.
type Environment struct {
	levels []Level
	parent *Environment
	logger *slog.Logger
}

// NewEnvironment returns an environment over levels (highest priority first)
// that defers to parent when none of them define a setting.
func NewEnvironment(levels []Level, parent *Environment) *Environment {
	return &Environment{levels: append([]Level(nil), levels...), parent: parent}
}

// Child returns a new environment whose own levels shadow e.  Dropping the
// child restores e's values.
func (e *Environment) Child(levels ...Level) *Environment {
	return &Environment{levels: append([]Level(nil), levels...), parent: e, logger: e.logger}
}

// WithLogger sets the logger used for expansion diagnostics.
func (e *Environment) WithLogger(logger *slog.Logger) *Environment {
	e.logger = logger
	return e
}

func (e *Environment) InsertFront(levels ...Level) {
	e.levels = append(append([]Level(nil), levels...), e.levels...)
}

func (e *Environment) InsertBack(levels ...Level) {
	e.levels = append(e.levels, levels...)
}

// Parent returns the environment e defers to, or nil.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Levels returns e's own levels followed by its ancestors', highest priority
// first.
func (e *Environment) Levels() []Level {
	var out []Level
	for env := e; env != nil; env = env.parent {
		out = append(out, env.levels...)
	}
	return out
}

func (e *Environment) log() *slog.Logger {
	for env := e; env != nil; env = env.parent {
		if env.logger != nil {
			return env.logger
		}
	}
	return slog.Default()
}

// Resolve finds the raw setting that currently defines name under
// condition.
func (e *Environment) Resolve(name string, condition Condition) (Setting, bool) {
	for env := e; env != nil; env = env.parent {
		for _, level := range env.levels {
			if s, ok := level.Get(name, condition); ok {
				return s, true
			}
		}
	}
	return Setting{}, false
}

// Expand evaluates value against e.  Undefined settings expand to "".
func (e *Environment) Expand(value Value, condition Condition) string {
	ev := newEvaluator(e, condition)
	return ev.expand(value, frame{offset: -1}, 0)
}

// ExpandString parses and expands s.
func (e *Environment) ExpandString(s string, condition Condition) string {
	return e.Expand(Parse(s), condition)
}

// Value returns the expanded value of the setting called name.
func (e *Environment) Value(name string, condition Condition) string {
	return e.Expand(Variable(name), condition)
}

// Bool returns the setting called name interpreted with ParseBoolean.
func (e *Environment) Bool(name string, condition Condition) bool {
	return ParseBoolean(e.Value(name, condition))
}

// List returns the setting called name split with ParseList.
func (e *Environment) List(name string, condition Condition) []string {
	return ParseList(e.Value(name, condition))
}

// Names returns every setting name defined anywhere in e, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	for _, level := range e.Levels() {
		for _, name := range level.Names() {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComputeValues expands every setting in e, keyed by name.  Used to build the
// environment of script invocations.
func (e *Environment) ComputeValues(condition Condition) map[string]string {
	ev := newEvaluator(e, condition)
	values := make(map[string]string)
	for _, name := range e.Names() {
		values[name] = ev.lookup(name, frame{offset: -1}, 0)
	}
	return values
}

// frame identifies the setting whose value is being expanded, so that
// $(inherited) and self references continue below the level that defined it.
type frame struct {
	name   string
	offset int
}

type evaluator struct {
	levels    []Level
	condition Condition
	logger    *slog.Logger

	// active holds the settings being expanded.  Finished expansions are
	// kept in done; one truncated by the depth limit is reused only at the
	// same depth or deeper.
	active    map[frame]bool
	done      map[frame]expansion
	overflows int
	warned    bool
}

type expansion struct {
	value     string
	depth     int
	truncated bool
}

func newEvaluator(e *Environment, condition Condition) *evaluator {
	return &evaluator{
		levels:    e.Levels(),
		condition: condition,
		logger:    e.log(),
		active:    make(map[frame]bool),
		done:      make(map[frame]expansion),
	}
}

func (ev *evaluator) find(name string, start int) (Setting, int, bool) {
	for i := start; i < len(ev.levels); i++ {
		if s, ok := ev.levels[i].Get(name, ev.condition); ok {
			return s, i, true
		}
	}
	return Setting{}, -1, false
}

func (ev *evaluator) warn(msg, name string) {
	if ev.warned {
		return
	}
	ev.warned = true
	ev.logger.Warn(msg, "setting", name, "limit", MaxExpansionDepth)
}

func (ev *evaluator) expand(value Value, f frame, depth int) string {
	var sb strings.Builder
	for _, entry := range value.entries {
		switch entry.Kind {
		case Literal:
			sb.WriteString(entry.Text)
		case Reference:
			var inner string
			if entry.Value != nil {
				inner = ev.expand(*entry.Value, f, depth)
			}
			name, ops := splitOperators(inner)
			result := ev.lookup(name, f, depth+1)
			for _, op := range ops {
				var known bool
				result, known = applyOperator(op, result)
				if !known {
					ev.logger.Debug("unknown setting operator", "setting", name, "operator", op)
				}
			}
			sb.WriteString(result)
		}
	}
	return sb.String()
}

func (ev *evaluator) lookup(name string, f frame, depth int) string {
	if name == "" {
		return ""
	}
	if depth > MaxExpansionDepth {
		ev.overflows++
		ev.warn("setting expansion too deep, possible reference cycle", name)
		return ""
	}

	start := 0
	if name == "inherited" {
		if f.name == "" {
			return ""
		}
		name = f.name
		start = f.offset + 1
	} else if name == f.name {
		start = f.offset + 1
	}

	s, offset, ok := ev.find(name, start)
	if !ok {
		return ""
	}
	key := frame{name: name, offset: offset}
	if r, ok := ev.done[key]; ok && (!r.truncated || r.depth <= depth) {
		return r.value
	}
	if ev.active[key] {
		ev.warn("setting reference cycle", name)
		return ""
	}

	ev.active[key] = true
	overflows := ev.overflows
	v := ev.expand(s.Value, key, depth)
	delete(ev.active, key)
	ev.done[key] = expansion{value: v, depth: depth, truncated: ev.overflows != overflows}
	return v
}
