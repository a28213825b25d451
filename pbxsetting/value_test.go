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
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(s string) Entry {
	return Entry{Kind: Literal, Text: s}
}

func ref(v Value) Entry {
	return Entry{Kind: Reference, Value: &v}
}

var valueParseTestCases = []struct {
	input string
	want  Value
	raw   string
}{
	{
		input: "",
		want:  Value{},
		raw:   "",
	},
	{
		input: "plain text",
		want:  String("plain text"),
		raw:   "plain text",
	},
	{
		input: "$(FOO)",
		want:  Variable("FOO"),
		raw:   "$(FOO)",
	},
	{
		input: "-I$(SRCROOT)/include",
		want:  FromEntries(lit("-I"), ref(String("SRCROOT")), lit("/include")),
		raw:   "-I$(SRCROOT)/include",
	},
	{
		input: "${FOO}_$BAR-baz",
		want:  FromEntries(ref(String("FOO")), lit("_"), ref(String("BAR")), lit("-baz")),
		raw:   "$(FOO)_$(BAR)-baz",
	},
	{
		input: "$(FOO)_$(BAR:upper)",
		want:  FromEntries(ref(String("FOO")), lit("_"), ref(String("BAR:upper"))),
		raw:   "$(FOO)_$(BAR:upper)",
	},
	{
		input: "$(FOO_$(BAR))",
		want:  FromEntries(ref(FromEntries(lit("FOO_"), ref(String("BAR"))))),
		raw:   "$(FOO_$(BAR))",
	},
	{
		input: "cost $$5",
		want:  String("cost $5"),
		raw:   "cost $$5",
	},
	{
		input: "trailing $",
		want:  String("trailing $"),
		raw:   "trailing $$",
	},
	{
		input: "broken $(FOO",
		want:  String("broken $(FOO"),
		raw:   "broken $$(FOO",
	},
	{
		input: "nested $(A_$(B)",
		want:  String("nested $(A_$(B)"),
		raw:   "nested $$(A_$$(B)",
	},
}

func TestValueParse(t *testing.T) {
	for _, tc := range valueParseTestCases {
		t.Run(tc.input, func(t *testing.T) {
			got := Parse(tc.input)
			assert.True(t, tc.want.Equal(got), "Parse(%q) = %#v", tc.input, got.Entries())
			assert.Equal(t, tc.raw, got.Raw())
			assert.True(t, got.Equal(Parse(got.Raw())), "round trip of %q", tc.input)
		})
	}
}

func TestValueAppend(t *testing.T) {
	v := String("a").Append(String("b")).Append(Variable("C"))
	assert.Equal(t, "ab$(C)", v.Raw())
	assert.Len(t, v.Entries(), 2)
}
