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
	"sort"
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
)

// Well-known condition domains.
const (
	ConditionArch    = "arch"
	ConditionSDK     = "sdk"
	ConditionConfig  = "config"
	ConditionVariant = "variant"
)

// A Condition scopes a setting to matching build contexts.  Each entry maps a
// domain ("arch", "sdk", ...) to a shell-style wildcard pattern.  The zero
// Condition is unconstrained.
type Condition struct {
	values map[string]string
}

// NewCondition copies values into a Condition.
func NewCondition(values map[string]string) Condition {
	if len(values) == 0 {
		return Condition{}
	}
	c := Condition{values: make(map[string]string, len(values))}
	for k, v := range values {
		c.values[k] = v
	}
	return c
}

// With returns a copy of c with key set to value.
func (c Condition) With(key, value string) Condition {
	out := Condition{values: make(map[string]string, len(c.values)+1)}
	for k, v := range c.values {
		out.values[k] = v
	}
	out.values[key] = value
	return out
}

func (c Condition) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c Condition) Len() int {
	return len(c.values)
}

// Keys returns the constrained domains in sorted order.
func (c Condition) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match reports whether every domain constrained by c is present in other
// with a value accepted by c's pattern.  Domains c does not mention are
// ignored, so the empty condition matches everything.
func (c Condition) Match(other Condition) bool {
	for k, pattern := range c.values {
		v, ok := other.values[k]
		if !ok {
			return false
		}
		if !pathtools.Wildcard(pattern, v) {
			return false
		}
	}
	return true
}

func (c Condition) Equal(other Condition) bool {
	if len(c.values) != len(other.values) {
		return false
	}
	for k, v := range c.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the condition in setting syntax, "[arch=x86_64][sdk=*]",
// with domains sorted.  Equal conditions render identically, so the string
// doubles as a cache key.
func (c Condition) String() string {
	var sb strings.Builder
	for _, k := range c.Keys() {
		sb.WriteString("[")
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(c.values[k])
		sb.WriteString("]")
	}
	return sb.String()
}
