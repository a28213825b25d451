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
	"fmt"
	"strings"
)

// A Setting is a named, conditionally scoped, unexpanded value.
type Setting struct {
	Name      string
	Condition Condition
	Value     Value
}

// Create parses value as setting syntax.
func Create(name, value string) Setting {
	return Setting{Name: name, Value: Parse(value)}
}

// CreateConditional parses value as setting syntax under condition.
func CreateConditional(name, value string, condition Condition) Setting {
	return Setting{Name: name, Condition: condition, Value: Parse(value)}
}

// CreateLiteral stores value verbatim; '$' has no meaning in it.  Used for
// values imported from outside the settings language such as process
// environment variables.
func CreateLiteral(name, value string) Setting {
	return Setting{Name: name, Value: String(value)}
}

// String renders the setting as an xcconfig line.
func (s Setting) String() string {
	return fmt.Sprintf("%s%s = %s", s.Name, s.Condition, s.Value.Raw())
}

// ParseSetting reads one "NAME[domain=pattern]... = value" assignment.  A
// trailing ';' is dropped.  It returns false when the text is not an
// assignment.
func ParseSetting(text string) (Setting, bool) {
	// The key may itself contain '=' inside condition brackets.
	eq := -1
	depth := 0
	for i := 0; i < len(text) && eq < 0; i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '=':
			if depth == 0 {
				eq = i
			}
		}
	}
	if eq < 0 {
		return Setting{}, false
	}

	key := text[:eq]
	key = strings.TrimSpace(key)
	value := strings.TrimSpace(text[eq+1:])
	value = strings.TrimSpace(strings.TrimSuffix(value, ";"))

	name := key
	condition := Condition{}
	if open := strings.IndexByte(key, '['); open >= 0 {
		name = strings.TrimSpace(key[:open])
		values := make(map[string]string)
		rest := key[open:]
		for len(rest) > 0 {
			rest = strings.TrimSpace(rest)
			if !strings.HasPrefix(rest, "[") {
				return Setting{}, false
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Setting{}, false
			}
			clause := rest[1:end]
			rest = rest[end+1:]
			if k, v, ok := strings.Cut(clause, "="); ok {
				values[strings.TrimSpace(k)] = strings.TrimSpace(v)
			} else {
				return Setting{}, false
			}
		}
		condition = NewCondition(values)
	}

	if name == "" || strings.ContainsAny(name, " \t") {
		return Setting{}, false
	}

	return Setting{Name: name, Condition: condition, Value: Parse(value)}, true
}
