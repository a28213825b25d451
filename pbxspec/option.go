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
	"github.com/xcbuild/xcbuild/pbxsetting"
)

// Otherwise is the CommandLineArgs dictionary key used when no other key
// matches the option's value.
const Otherwise = "<<otherwise>>"

// Args is an argument template: either a plain list or a dictionary from
// option value to list.
type Args struct {
	List    []string
	ByValue map[string][]string
}

func decodeArgs(v any) *Args {
	switch v := v.(type) {
	case nil:
		return nil
	case map[string]any:
		a := &Args{ByValue: make(map[string][]string, len(v))}
		for k, item := range v {
			if s, ok := item.(string); ok {
				a.ByValue[k] = pbxsetting.ParseList(s)
			} else {
				a.ByValue[k] = textList(item)
			}
		}
		return a
	case string:
		return &Args{List: pbxsetting.ParseList(v)}
	default:
		return &Args{List: textList(v)}
	}
}

// For returns the unexpanded arguments for an option whose value is value.
// Dictionary templates fall back to the Otherwise key.
func (a *Args) For(value string) []string {
	if a == nil {
		return nil
	}
	if a.ByValue == nil {
		return a.List
	}
	if args, ok := a.ByValue[value]; ok {
		return args
	}
	return a.ByValue[Otherwise]
}

// An EnumValue is one allowed value of an Enumeration option, optionally
// with its own arguments.
type EnumValue struct {
	Value string
	Args  []string
}

// A PropertyOption declares a build setting a tool understands and how the
// setting's value becomes command-line arguments.
type PropertyOption struct {
	Name         string
	Type         string
	DefaultValue pbxsetting.Value
	HasDefault   bool
	Values       []EnumValue

	CommandLineArgs               *Args
	AdditionalLinkerArgs          *Args
	CommandLineFlag               string
	CommandLineFlagIfFalse        string
	CommandLinePrefixFlag         string
	SetValueInEnvironmentVariable string

	// FileTypes and Architectures restrict the option to inputs of those
	// file types and to those architectures.
	FileTypes     []string
	Architectures []string
	// Condition is an expression the option's settings must satisfy.
	Condition string

	IsInputDependency bool
}

func decodeOption(props Properties) PropertyOption {
	opt := PropertyOption{
		Name:                          props.String("Name"),
		Type:                          props.String("Type"),
		CommandLineArgs:               decodeArgs(props["CommandLineArgs"]),
		AdditionalLinkerArgs:          decodeArgs(props["AdditionalLinkerArgs"]),
		CommandLineFlag:               props.String("CommandLineFlag"),
		CommandLineFlagIfFalse:        props.String("CommandLineFlagIfFalse"),
		CommandLinePrefixFlag:         props.String("CommandLinePrefixFlag"),
		SetValueInEnvironmentVariable: props.String("SetValueInEnvironmentVariable"),
		FileTypes:                     props.StringList("FileTypes"),
		Architectures:                 props.StringList("Architectures"),
		Condition:                     props.String("Condition"),
		IsInputDependency:             props.Bool("IsInputDependency"),
	}
	if v, ok := props["DefaultValue"]; ok {
		opt.DefaultValue = pbxsetting.Parse(settingText(v))
		opt.HasDefault = true
	}
	if list, ok := props["Values"].([]any); ok {
		for _, item := range list {
			switch item := item.(type) {
			case map[string]any:
				p := Properties(item)
				ev := EnumValue{Value: p.String("Value")}
				if a := decodeArgs(p["CommandLineArgs"]); a != nil {
					ev.Args = a.List
				} else if flag := p.String("CommandLineFlag"); flag != "" {
					ev.Args = []string{flag}
				} else if p.Has("CommandLine") {
					ev.Args = pbxsetting.ParseList(p.String("CommandLine"))
				}
				opt.Values = append(opt.Values, ev)
			default:
				opt.Values = append(opt.Values, EnumValue{Value: scalarText(item)})
			}
		}
	}
	return opt
}

func decodeOptions(v any) []PropertyOption {
	list, _ := v.([]any)
	out := make([]PropertyOption, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, decodeOption(Properties(m)))
		}
	}
	return out
}

// DefaultSetting returns the option's default as a setting.
func (o PropertyOption) DefaultSetting() (pbxsetting.Setting, bool) {
	if !o.HasDefault || o.Name == "" {
		return pbxsetting.Setting{}, false
	}
	return pbxsetting.Setting{Name: o.Name, Value: o.DefaultValue}, true
}

// EnumArgs returns the arguments declared by an enumeration value, if any.
func (o PropertyOption) EnumArgs(value string) ([]string, bool) {
	for _, ev := range o.Values {
		if ev.Value == value && ev.Args != nil {
			return ev.Args, true
		}
	}
	return nil, false
}

// optionsLevel collects the defaults of options into one level.
func optionsLevel(options []PropertyOption) pbxsetting.Level {
	var settings []pbxsetting.Setting
	for _, o := range options {
		if s, ok := o.DefaultSetting(); ok {
			settings = append(settings, s)
		}
	}
	return pbxsetting.NewLevel(settings)
}
