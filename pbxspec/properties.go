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

package pbxspec

import (
	"sort"
	"strconv"

	"github.com/xcbuild/xcbuild/pbxsetting"
)

// Properties is the decoded object tree of one specification document.
// Values are strings, booleans, int64 or float64 numbers, []any and
// map[string]any, as produced by the JSON decoder.
type Properties map[string]any

func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns a scalar property as text.  Booleans render as YES/NO.
func (p Properties) String(key string) string {
	return scalarText(p[key])
}

// Bool interprets a boolean or YES/NO property.
func (p Properties) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return pbxsetting.ParseBoolean(v)
	case int64:
		return v != 0
	}
	return false
}

func (p Properties) Int(key string) int {
	switch v := p[key].(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// StringList returns an array property.  A lone string is a one-element
// list.
func (p Properties) StringList(key string) []string {
	return textList(p[key])
}

// Dict returns a nested dictionary property, or nil.
func (p Properties) Dict(key string) Properties {
	if m, ok := p[key].(map[string]any); ok {
		return Properties(m)
	}
	return nil
}

// StringMap returns a dictionary property with every value rendered as
// setting text.
func (p Properties) StringMap(key string) map[string]string {
	d := p.Dict(key)
	if d == nil {
		return nil
	}
	out := make(map[string]string, len(d))
	for k, v := range d {
		out[k] = settingText(v)
	}
	return out
}

// Keys returns the property names in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Level converts a dictionary property of build settings into a level.
// Keys are sorted so the level is deterministic.
func (p Properties) Level(key string) pbxsetting.Level {
	m := p.StringMap(key)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	settings := make([]pbxsetting.Setting, 0, len(keys))
	for _, k := range keys {
		if s, ok := pbxsetting.ParseSetting(k + " = " + m[k]); ok {
			settings = append(settings, s)
		} else {
			settings = append(settings, pbxsetting.Create(k, m[k]))
		}
	}
	return pbxsetting.NewLevel(settings)
}

func scalarText(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case bool:
		return pbxsetting.FormatBoolean(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// settingText renders a property as a setting value: arrays become
// space-separated lists.
func settingText(v any) string {
	if list, ok := v.([]any); ok {
		return pbxsetting.FormatList(textList(list))
	}
	return scalarText(v)
}

func textList(v any) []string {
	switch v := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, scalarText(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{scalarText(v)}
	}
}

// merge layers own over base.  Dictionaries of settings merge key by key
// and option arrays merge by option name; everything else is replaced.
func merge(base, own Properties) Properties {
	out := make(Properties, len(base)+len(own))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range own {
		switch k {
		case "Options", "Properties":
			out[k] = mergeOptions(base[k], v)
		case "DefaultBuildProperties", "DefaultBuildSettings", "EnvironmentVariables", "BuildSettings":
			out[k] = mergeDicts(base[k], v)
		default:
			out[k] = v
		}
	}
	return out
}

func mergeDicts(base, own any) any {
	b, ok1 := base.(map[string]any)
	o, ok2 := own.(map[string]any)
	if !ok1 || !ok2 {
		return own
	}
	out := make(map[string]any, len(b)+len(o))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

func mergeOptions(base, own any) any {
	b, ok1 := base.([]any)
	o, ok2 := own.([]any)
	if !ok1 || !ok2 {
		return own
	}
	name := func(v any) string {
		if m, ok := v.(map[string]any); ok {
			return scalarText(m["Name"])
		}
		return ""
	}
	index := make(map[string]int)
	out := make([]any, 0, len(b)+len(o))
	for _, opt := range b {
		if n := name(opt); n != "" {
			index[n] = len(out)
		}
		out = append(out, opt)
	}
	for _, opt := range o {
		if i, ok := index[name(opt)]; ok && name(opt) != "" {
			out[i] = opt
			continue
		}
		out = append(out, opt)
	}
	return out
}
