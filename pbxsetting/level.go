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

// A Level is one override layer: an ordered list of settings such as the
// contents of a build configuration or of an xcconfig file.
type Level struct {
	settings []Setting
}

func NewLevel(settings []Setting) Level {
	return Level{settings: append([]Setting(nil), settings...)}
}

// Settings returns a copy of the settings in declaration order.
func (l Level) Settings() []Setting {
	return append([]Setting(nil), l.settings...)
}

func (l Level) Len() int {
	return len(l.settings)
}

// Get searches the level from the last declaration backwards and returns the
// first setting named name whose condition matches condition.
func (l Level) Get(name string, condition Condition) (Setting, bool) {
	for i := len(l.settings) - 1; i >= 0; i-- {
		s := l.settings[i]
		if s.Name == name && s.Condition.Match(condition) {
			return s, true
		}
	}
	return Setting{}, false
}

// Names returns every setting name in the level, first declaration first,
// without repeats.
func (l Level) Names() []string {
	seen := make(map[string]bool, len(l.settings))
	var names []string
	for _, s := range l.settings {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}

// Append returns a level with extra settings declared after l's.
func (l Level) Append(settings ...Setting) Level {
	out := make([]Setting, 0, len(l.settings)+len(settings))
	out = append(out, l.settings...)
	out = append(out, settings...)
	return Level{settings: out}
}
