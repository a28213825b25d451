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
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentOverride(t *testing.T) {
	base := NewEnvironment([]Level{NewLevel([]Setting{Create("A", "parent"), Create("B", "b")})}, nil)
	child := base.Child(NewLevel([]Setting{Create("A", "child")}))

	assert.Equal(t, "child", child.Value("A", Condition{}))
	assert.Equal(t, "b", child.Value("B", Condition{}))

	// Dropping the child restores the parent's value.
	assert.Equal(t, "parent", child.Parent().Value("A", Condition{}))
	assert.Equal(t, "parent", base.Value("A", Condition{}))
}

func TestEnvironmentFrontToBack(t *testing.T) {
	env := NewEnvironment(nil, nil)
	env.InsertBack(NewLevel([]Setting{Create("A", "low")}))
	env.InsertFront(NewLevel([]Setting{Create("A", "high")}))
	assert.Equal(t, "high", env.Value("A", Condition{}))

	s, ok := env.Resolve("A", Condition{})
	require.True(t, ok)
	assert.Equal(t, "high", s.Value.Raw())

	_, ok = env.Resolve("MISSING", Condition{})
	assert.False(t, ok)
	assert.Equal(t, "", env.Value("MISSING", Condition{}))
}

func TestEnvironmentExpand(t *testing.T) {
	env := NewEnvironment([]Level{NewLevel([]Setting{
		Create("X", "abc"),
		Create("PRODUCT_NAME", "My App"),
		Create("SRCROOT", "/src"),
		Create("HEADERS", "$(SRCROOT)/include"),
		Create("SELECT", "B"),
		Create("VALUE_B", "picked"),
		Create("PATH_VALUE", "/a/b/c.tar.gz"),
		Create("MESSY", "/a//b/../c/"),
	})}, nil)

	testCases := []struct {
		input string
		want  string
	}{
		{"$(X)", "abc"},
		{"$(X:upper)", "ABC"},
		{"$(X:upper:lower)", "abc"},
		{"$(UNDEFINED:default=z)", "z"},
		{"$(X:default=z)", "abc"},
		{"$(UNDEFINED:default=a:b)", "a:b"},
		{"$(UNDEFINED:default=$(X))", "abc"},
		{"-I$(HEADERS)", "-I/src/include"},
		{"$(VALUE_$(SELECT))", "picked"},
		{"$(PRODUCT_NAME:identifier)", "My_App"},
		{"$(PRODUCT_NAME:rfc1034identifier)", "My-App"},
		{"$(PRODUCT_NAME:quote)", `My\ App`},
		{"$(PATH_VALUE:dir)", "/a/b"},
		{"$(PATH_VALUE:file)", "c.tar.gz"},
		{"$(PATH_VALUE:base)", "c.tar"},
		{"$(PATH_VALUE:suffix)", ".gz"},
		{"$(MESSY:standardizepath)", "/a/c"},
		{"$(X:nosuchoperator)", "abc"},
		{"$(UNDEFINED)", ""},
		{"$(X)_$(X)", "abc_abc"},
		{"unterminated $(X", "unterminated $(X"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, env.ExpandString(tc.input, Condition{}))
		})
	}
}

func TestEnvironmentInherited(t *testing.T) {
	env := NewEnvironment([]Level{
		NewLevel([]Setting{Create("OTHER_CFLAGS", "$(inherited) -Werror")}),
		NewLevel([]Setting{Create("OTHER_CFLAGS", "$(OTHER_CFLAGS) -Wall")}),
		NewLevel([]Setting{Create("OTHER_CFLAGS", "-O0")}),
	}, nil)
	assert.Equal(t, "-O0 -Wall -Werror", env.Value("OTHER_CFLAGS", Condition{}))

	// $(inherited) in a parent environment continues into the grandparent.
	child := env.Child(NewLevel([]Setting{Create("OTHER_CFLAGS", "$(inherited) -g")}))
	assert.Equal(t, "-O0 -Wall -Werror -g", child.Value("OTHER_CFLAGS", Condition{}))

	// Nothing to inherit from.
	bare := NewEnvironment([]Level{NewLevel([]Setting{Create("A", "$(inherited)x")})}, nil)
	assert.Equal(t, "x", bare.Value("A", Condition{}))
	assert.Equal(t, "", bare.ExpandString("$(inherited)", Condition{}))
}

func TestEnvironmentConditional(t *testing.T) {
	env := NewEnvironment([]Level{NewLevel([]Setting{
		Create("CFLAGS", "-Os"),
		CreateConditional("CFLAGS", "$(inherited) -mavx", NewCondition(map[string]string{"arch": "x86_64"})),
	}), NewLevel([]Setting{Create("CFLAGS", "-base")})}, nil)

	x86 := NewCondition(map[string]string{"arch": "x86_64", "sdk": "macosx"})
	arm := NewCondition(map[string]string{"arch": "arm64", "sdk": "macosx"})
	assert.Equal(t, "-base -mavx", env.Value("CFLAGS", x86))
	assert.Equal(t, "-Os", env.Value("CFLAGS", arm))
}

func TestEnvironmentCycleIsRecoverable(t *testing.T) {
	env := NewEnvironment([]Level{NewLevel([]Setting{
		Create("A", "a$(B)"),
		Create("B", "b$(A)"),
		Create("C", "fine"),
	})}, nil)

	var got string
	assert.NotPanics(t, func() { got = env.Value("A", Condition{}) })
	assert.Regexp(t, `^(ab)+a?b?$`, got)
	assert.Equal(t, "fine", env.Value("C", Condition{}))
}

func TestEnvironmentDoublingCycleFinishes(t *testing.T) {
	var logs bytes.Buffer
	env := NewEnvironment([]Level{NewLevel([]Setting{
		Create("A", "$(B)$(B)"),
		Create("B", "$(A)$(A)"),
	})}, nil).WithLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	done := make(chan map[string]string, 1)
	go func() {
		done <- env.ComputeValues(Condition{})
	}()
	select {
	case values := <-done:
		assert.Equal(t, map[string]string{"A": "", "B": ""}, values)
	case <-time.After(5 * time.Second):
		t.Fatal("expanding a doubling reference cycle did not finish")
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "setting reference cycle"))
}

func TestEnvironmentDeepChain(t *testing.T) {
	var settings []Setting
	for i := 0; i < MaxExpansionDepth+8; i++ {
		settings = append(settings, Create(fmt.Sprintf("S%d", i), fmt.Sprintf("$(S%d)$(S%d)", i+1, i+1)))
	}
	settings = append(settings, Create(fmt.Sprintf("S%d", MaxExpansionDepth+8), "x"))
	env := NewEnvironment([]Level{NewLevel(settings)}, nil).WithLogger(slog.New(slog.DiscardHandler))

	// Shared sub-expansions are evaluated once.
	assert.Equal(t, "xx", env.Value(fmt.Sprintf("S%d", MaxExpansionDepth+7), Condition{}))
	assert.Equal(t, strings.Repeat("x", 1<<10), env.Value(fmt.Sprintf("S%d", MaxExpansionDepth-2), Condition{}))
	// Too deep: truncated to "" instead of 2^40 copies.
	assert.Equal(t, "", env.Value("S0", Condition{}))
}

func TestEnvironmentComputeValues(t *testing.T) {
	env := NewEnvironment([]Level{NewLevel([]Setting{
		Create("A", "$(B)-a"),
		Create("B", "b"),
	})}, nil)
	assert.Equal(t, map[string]string{"A": "b-a", "B": "b"}, env.ComputeValues(Condition{}))
	assert.Equal(t, []string{"A", "B"}, env.Names())
}

func TestParseBoolean(t *testing.T) {
	for _, s := range []string{"YES", "yes", "1", "true", "TRUE", " YES "} {
		assert.True(t, ParseBoolean(s), s)
	}
	for _, s := range []string{"NO", "0", "", "false", "y", "enabled"} {
		assert.False(t, ParseBoolean(s), s)
	}
}

func TestParseList(t *testing.T) {
	testCases := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"  a b\tc ", []string{"a", "b", "c"}},
		{`"a b" c`, []string{"a b", "c"}},
		{`-DNAME='x y' z`, []string{"-DNAME=x y", "z"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`""`, []string{""}},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ParseList(tc.input), tc.input)
	}

	list := []string{"plain", "with space", `quo"te`, ""}
	assert.Equal(t, list, ParseList(FormatList(list)))
}
