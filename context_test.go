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
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/xcbuild/xcbuild/descdb"
	"github.com/xcbuild/xcbuild/pbxbuild/pbxbuildtest"
	"github.com/xcbuild/xcbuild/pbxbuild/phase"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T, cfg Config) *Config {
	t.Helper()
	if cfg.Workspace == "" {
		cfg.Workspace = pbxbuildtest.ProjectPath
	}
	cfg.DeveloperRoot = pbxbuildtest.DeveloperRoot
	cfg.DerivedData = pbxbuildtest.DerivedDataRoot
	cfg.Environ = []string{"HOME=/home/test"}
	cfg.User = pbxsetting.LocalUser{UserName: "test", UserID: 501, GroupName: "staff", GroupID: 20, Home: "/home/test"}
	cfg.Jobs = 2
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	return c
}

func loadContext(t *testing.T, fs billy.Filesystem, cfg Config) *Context {
	t.Helper()
	c := NewContext(fs, testConfig(t, cfg), testLogger)
	require.NoError(t, c.Load())
	return c
}

func describe(t *testing.T, cfg Config) *Description {
	t.Helper()
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	d, err := loadContext(t, fs, cfg).Describe(context.Background())
	require.NoError(t, err)
	return d
}

func targetNames(d *Description) []string {
	var names []string
	for _, td := range d.Targets {
		names = append(names, td.Name)
	}
	return names
}

func TestDescribeScheme(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	assert.Equal(t, []string{"A", "Gen", "Kit", "B"}, targetNames(d))
	assert.Equal(t, "scheme App", d.Subject())
	assert.Equal(t, "build", d.Action)

	b := d.Target("B")
	require.NotNil(t, b)
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, []string{"A", "Gen"}, b.Dependencies)
	assert.Zero(t, d.Target("Kit").Level)
	assert.Empty(t, d.Target("Gen").Dependencies)
	assert.Nil(t, d.Target("Make"))

	for _, td := range d.Targets {
		assert.NotEmpty(t, td.Invocations, td.Name)
		assert.Equal(t, "Debug", td.Environment.Configuration, td.Name)
	}
}

// Level-parallel resolution must produce what a sequential walk of the
// same build produces.
func TestDescribeMatchesSequentialResolution(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	f := pbxbuildtest.New(t)
	ctx := f.Context("build")
	order, envs := f.Resolve(t, ctx)
	require.Len(t, order, len(d.Targets))

	for _, target := range order {
		want := phase.PhaseInvocations(phase.NewEnvironment(f.Build, ctx, envs[target]))
		td := d.Target(target.Name)
		require.NotNil(t, td, target.Name)
		if diff := cmp.Diff(want, td.Invocations); diff != "" {
			t.Errorf("%s invocations differ (-sequential +described):\n%s", target.Name, diff)
		}
	}
}

func TestDescribeTargets(t *testing.T) {
	d := describe(t, Config{Targets: []string{"B"}})
	assert.ElementsMatch(t, []string{"B", "Gen"}, targetNames(d))
	assert.Equal(t, "B", d.Targets[len(d.Targets)-1].Name)
	assert.True(t, strings.HasPrefix(d.Subject(), "targets "))

	all := describe(t, Config{AllTargets: true})
	assert.Len(t, all.Targets, 5)
	assert.NotNil(t, all.Target("Make"))
}

func TestDescribeUnknownTarget(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	_, err := loadContext(t, fs, Config{Targets: []string{"Nope"}}).Describe(context.Background())
	assert.ErrorContains(t, err, `target "Nope" not found`)
}

func TestDescribeUnknownScheme(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	_, err := loadContext(t, fs, Config{Scheme: "Nope"}).Describe(context.Background())
	assert.ErrorContains(t, err, `scheme "Nope" not found`)
}

// brokenProductType makes the product type identifier inherit from a
// parent that is not registered, so targets of that type fail to resolve.
func brokenProductType(t *testing.T, fs billy.Filesystem, identifier string) {
	t.Helper()
	specs := strings.Replace(pbxbuildtest.Specs,
		`"Identifier": "`+identifier+`",`,
		`"Identifier": "`+identifier+`", "BasedOn": "com.example.product-type.missing",`, 1)
	require.NotEqual(t, pbxbuildtest.Specs, specs)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.DeveloperRoot+"/Specs/default/Core.xcspec", []byte(specs), 0644))
}

func TestDescribeTargetError(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	brokenProductType(t, fs, "com.apple.product-type.library.static")

	d, err := loadContext(t, fs, Config{Scheme: pbxbuildtest.SchemeName}).Describe(context.Background())
	var targetErr *TargetError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, "A", targetErr.Target)
	assert.ErrorIs(t, err, pbxspec.ErrBaseNotFound)

	// B depends on A and is skipped; the rest is still described.
	assert.ErrorIs(t, err, ErrDependencyFailed)
	assert.ErrorContains(t, err, "target B: dependency failed: A")
	require.NotNil(t, d)
	assert.Equal(t, []string{"Gen", "Kit"}, targetNames(d))
	assert.NotEmpty(t, d.Target("Kit").Invocations)
}

func TestDescribeIndependentTargetsSurviveFailure(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	brokenProductType(t, fs, "com.apple.product-type.framework")

	d, err := loadContext(t, fs, Config{AllTargets: true}).Describe(context.Background())
	var targetErr *TargetError
	require.ErrorAs(t, err, &targetErr)
	assert.Equal(t, "Kit", targetErr.Target)
	assert.NotErrorIs(t, err, ErrDependencyFailed)

	require.NotNil(t, d)
	assert.ElementsMatch(t, []string{"Gen", "A", "B", "Make"}, targetNames(d))
	assert.Nil(t, d.Target("Kit"))
}

func TestDescribeCanceled(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loadContext(t, fs, Config{Scheme: pbxbuildtest.SchemeName}).Describe(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadMissingRegistry(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	cfg := testConfig(t, Config{Scheme: pbxbuildtest.SchemeName})
	cfg.Registry = "/nowhere/registry.hcl"
	err := NewContext(fs, cfg, testLogger).Load()
	assert.ErrorContains(t, err, "loading SDK registry")
}

func TestOverrides(t *testing.T) {
	d := describe(t, Config{
		Scheme:    pbxbuildtest.SchemeName,
		Overrides: []string{"GCC_OPTIMIZATION_LEVEL=s"},
		Archs:     []string{"arm64"},
	})
	for _, td := range d.Targets {
		assert.Equal(t, "s", td.Environment.Value("GCC_OPTIMIZATION_LEVEL"), td.Name)
	}
	assert.Equal(t, []string{"arm64"}, d.Target("Kit").Environment.Architectures)
}

func TestWriteAuxiliaryFiles(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	out := memfs.New()
	require.NoError(t, d.WriteAuxiliaryFiles(out))

	var count int
	for _, inv := range d.Invocations() {
		for _, aux := range inv.AuxiliaryFiles {
			count++
			data, err := util.ReadFile(out, aux.Path)
			require.NoError(t, err, aux.Path)
			assert.Equal(t, aux.Contents, data, aux.Path)
		}
	}
	assert.NotZero(t, count)
}

func TestCompileCommands(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	cmds := d.CompileCommands()
	require.Len(t, cmds, 5)
	var files []string
	for _, cmd := range cmds {
		files = append(files, cmd.File[strings.LastIndex(cmd.File, "/")+1:])
		assert.Equal(t, pbxbuildtest.SourceRoot, cmd.Directory)
		assert.True(t, strings.HasSuffix(cmd.Output, ".o"), cmd.Output)
		assert.Contains(t, cmd.Arguments, cmd.File)
	}
	assert.Equal(t, []string{"a.c", "kit.c", "kit.c", "main.c", "grammar.c"}, files)

	var sb strings.Builder
	require.NoError(t, d.WriteCompileCommands(&sb))
	parsed, err := oj.ParseString(sb.String())
	require.NoError(t, err)
	assert.Len(t, parsed, 5)
}

func TestWriteJSONAndYAML(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	var js strings.Builder
	require.NoError(t, d.WriteJSON(&js))
	parsed, err := oj.ParseString(js.String())
	require.NoError(t, err)
	root, ok := parsed.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "App", root["scheme"])
	targets, ok := root["targets"].([]any)
	require.True(t, ok)
	require.Len(t, targets, 4)
	assert.Equal(t, "A", targets[0].(map[string]any)["name"])

	var ys strings.Builder
	require.NoError(t, d.WriteYAML(&ys))
	var fromYAML struct {
		Scheme  string `yaml:"scheme"`
		Targets []struct {
			Name         string   `yaml:"name"`
			Level        int      `yaml:"level"`
			Dependencies []string `yaml:"dependencies"`
		} `yaml:"targets"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(ys.String()), &fromYAML))
	assert.Equal(t, "App", fromYAML.Scheme)
	require.Len(t, fromYAML.Targets, 4)
	assert.Equal(t, "B", fromYAML.Targets[3].Name)
	assert.Equal(t, 1, fromYAML.Targets[3].Level)
	assert.Equal(t, []string{"A", "Gen"}, fromYAML.Targets[3].Dependencies)
}

func TestWriteDatabase(t *testing.T) {
	d := describe(t, Config{Scheme: pbxbuildtest.SchemeName})

	db, err := descdb.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, d.WriteDatabase(db))

	var targets, invocations int
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM targets`).Scan(&targets))
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM invocations`).Scan(&invocations))
	assert.Equal(t, 4, targets)
	assert.Equal(t, len(d.Invocations()), invocations)

	var product string
	require.NoError(t, db.DB().QueryRow(`SELECT product_path FROM targets WHERE name = 'A'`).Scan(&product))
	assert.Equal(t, d.Target("A").Environment.ProductPath(), product)
}
