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

package pbxbuild_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/pbxbuildtest"
	"github.com/xcbuild/xcbuild/pbxproj"
)

func names(targets []*pbxproj.Target) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.Name
	}
	return out
}

func TestWorkspaceContext(t *testing.T) {
	f := pbxbuildtest.New(t)
	w := f.Workspace

	assert.Equal(t, "/work", w.BasePath)
	require.Len(t, w.Projects, 1)
	assert.Equal(t, "App", w.Projects[0].Name)
	assert.Equal(t, []string{"B", "A", "Gen", "Kit", "Make"}, names(w.Targets()))
	assert.Equal(t, "App", w.DerivedDataHash.Name)
	assert.Same(t, w.Projects[0], w.Project("/work/./App.xcodeproj"))

	scheme := w.Scheme(pbxbuildtest.SchemeName)
	require.NotNil(t, scheme)
	assert.Nil(t, w.Scheme("Missing"))
	require.Len(t, scheme.BuildAction.Entries, 2)
	assert.Equal(t, "B", w.ResolveBuildable(scheme.BuildAction.Entries[0].BuildableReference).Name)
}

func TestResolveSchemeDependencies(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("build")

	graph, err := (&pbxbuild.DependencyResolver{Context: ctx}).ResolveSchemeDependencies()
	require.NoError(t, err)

	ok, order := graph.Ordered()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "Gen", "B", "Kit"}, names(order))

	b := f.Target(t, "B")
	assert.Equal(t, []string{"A", "Gen"}, names(graph.Dependencies(b)))

	ok, levels := graph.Levels()
	require.True(t, ok)
	require.Len(t, levels, 2)
	assert.Equal(t, []string{"A", "Gen", "Kit"}, names(levels[0]))
	assert.Equal(t, []string{"B"}, names(levels[1]))
}

func TestResolveSchemeWithoutImplicitDependencies(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	scheme := strings.Replace(pbxbuildtest.Scheme, `buildImplicitDependencies = "YES"`, `buildImplicitDependencies = "NO"`, 1)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.ProjectPath+"/xcshareddata/xcschemes/App.xcscheme", []byte(scheme), 0644))
	f := pbxbuildtest.Load(t, fs)

	graph, err := (&pbxbuild.DependencyResolver{Context: f.Context("build")}).ResolveSchemeDependencies()
	require.NoError(t, err)
	assert.False(t, graph.Contains(f.Target(t, "A")))
}

func TestResolveLegacyDependencies(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("build")
	ctx.Scheme = nil
	r := &pbxbuild.DependencyResolver{Context: ctx}

	graph, err := r.ResolveLegacyDependencies("B")
	require.NoError(t, err)
	ok, order := graph.Ordered()
	require.True(t, ok)
	assert.Equal(t, []string{"Gen", "B"}, names(order))

	// Targets that are free to go keep their declaration order even when
	// a dependent was declared before them.
	graph, err = r.ResolveLegacyDependencies("")
	require.NoError(t, err)
	assert.Equal(t, 5, graph.Len())
	ok, order = graph.Ordered()
	require.True(t, ok)
	assert.Equal(t, []string{"A", "Gen", "B", "Kit", "Make"}, names(order))

	_, err = r.ResolveLegacyDependencies("Nope")
	assert.Error(t, err)

	_, err = r.ResolveSchemeDependencies()
	assert.Error(t, err)
}

func TestDependencyCycle(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	project := strings.Replace(pbxbuildtest.Project,
		`"buildPhases": ["TAHeaders", "TASources"],
      "dependencies": []`,
		`"buildPhases": ["TAHeaders", "TASources"],
      "dependencies": ["DB"]`, 1)
	project = strings.Replace(project, `"TACL": {`, `"DB": { "isa": "PBXTargetDependency", "target": "TB" },
    "TACL": {`, 1)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.ProjectPath+"/project.pbxproj", []byte(project), 0644))
	f := pbxbuildtest.Load(t, fs)

	_, err := (&pbxbuild.DependencyResolver{Context: f.Context("build")}).ResolveSchemeDependencies()
	require.Error(t, err)
	assert.True(t, errors.Is(err, pbxbuild.ErrCycle))
	var cycle *pbxbuild.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "B"}, cycle.Members)
	assert.Equal(t, "dependency cycle: A -> B -> A", err.Error())
}

func TestTargetEnvironment(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("build")
	_, envs := f.Resolve(t, ctx)

	products := pbxbuildtest.DerivedDataRoot + "/" + f.Workspace.DerivedDataHash.String() + "/Build/Products/Debug"

	a := envs[f.Target(t, "A")]
	assert.Equal(t, "Debug", a.Configuration)
	assert.Equal(t, "com.apple.product-type.library.static", a.ProductType.Identifier)
	assert.Equal(t, "com.apple.package-type.static-library", a.PackageType.Identifier)
	assert.Equal(t, "macosx10.15", a.SDK.CanonicalName)
	assert.Equal(t, "macosx", a.Platform.Name)
	assert.Equal(t, []string{"x86_64"}, a.Architectures)
	assert.Equal(t, []string{"normal"}, a.Variants)
	assert.Equal(t, products+"/libA.a", a.ProductPath())
	assert.Equal(t, "libA.a", a.Value("FULL_PRODUCT_NAME"))
	assert.Equal(t, "staticlib", a.Value("MACH_O_TYPE"))
	assert.Equal(t, "/work", a.WorkingDirectory)
	assert.Equal(t, "/work", a.Value("SRCROOT"))
	assert.Equal(t, "0", a.Value("GCC_OPTIMIZATION_LEVEL"), "xcconfig below the project configuration")
	assert.Equal(t, "YES", a.Value("USE_HEADERMAP"), "build system default")

	b := envs[f.Target(t, "B")]
	require.Len(t, b.Dependencies, 2)
	assert.Equal(t, products+"/libA.a", b.Value("PRODUCT_PATH_A"))
	assert.Equal(t, products+"/libA.a", b.Value("DEPENDENCY_PRODUCT_PATHS"))
	assert.Equal(t, products+"/B", b.ProductPath())
	assert.Equal(t, "-Werror", b.Value("OTHER_CFLAGS"))
	assert.Equal(t, "", a.Value("PRODUCT_PATH_A"))

	kit := envs[f.Target(t, "Kit")]
	assert.Equal(t, []string{"arm64", "x86_64"}, kit.Architectures)
	assert.Equal(t, "Kit.framework/Versions/A/Kit", kit.Value("EXECUTABLE_PATH"))
	assert.Equal(t, products+"/Kit.framework", kit.ProductPath())

	gen := envs[f.Target(t, "Gen")]
	assert.Nil(t, gen.ProductType)
	assert.Equal(t, "", gen.ProductPath())

	assert.False(t, ctx.Diagnostics.HasErrors())
}

func TestTargetEnvironmentVariant(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("build")
	_, envs := f.Resolve(t, ctx)
	kit := envs[f.Target(t, "Kit")]

	env, cond := kit.Variant("arm64", "normal")
	objects := kit.Value("OBJECT_FILE_DIR")
	assert.True(t, strings.HasSuffix(objects, "/App.build/Debug/Kit.build/Objects"), objects)
	assert.Equal(t, objects+"-normal/arm64", env.Value("PER_ARCH_OBJECT_FILE_DIR", cond))
	assert.Equal(t, "arm64", env.Value("CURRENT_ARCH", cond))
	arch, ok := cond.Get("arch")
	assert.True(t, ok)
	assert.Equal(t, "arm64", arch)
}

func TestFileTypesAndRules(t *testing.T) {
	f := pbxbuildtest.New(t)
	_, envs := f.Resolve(t, f.Context("build"))
	b := envs[f.Target(t, "B")]

	testCases := []struct {
		path     string
		folder   bool
		fileType string
	}{
		{"/work/Sources/main.c", false, "sourcecode.c.c"},
		{"/work/Sources/grammar.l", false, "sourcecode.lex"},
		{"/out/libA.a", false, "archive.ar"},
		{"/out/Kit.framework", true, "wrapper.framework"},
		{"/work/README.TXT", false, "text"},
	}
	for _, tc := range testCases {
		ft := b.FileTypes.Resolve(tc.path, tc.folder)
		if assert.NotNil(t, ft, tc.path) {
			assert.Equal(t, tc.fileType, ft.Identifier, tc.path)
		}
	}
	assert.Nil(t, b.FileTypes.Resolve("/work/unknown.xyz", false))

	lex := b.BuildRules.Match(b.FileTypes.Lookup("sourcecode.lex"), "/work/Sources/grammar.l")
	require.NotNil(t, lex)
	assert.True(t, lex.IsScript())
	assert.Equal(t, []string{"$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).c"}, lex.Outputs)

	c := b.BuildRules.Match(b.FileTypes.Lookup("sourcecode.c.c"), "/work/Sources/main.c")
	require.NotNil(t, c)
	assert.False(t, c.IsScript())
	assert.Equal(t, "com.apple.compilers.llvm.clang.1_0", c.Tool.Identifier)

	assert.Nil(t, b.BuildRules.Match(b.FileTypes.Lookup("image.png"), "/work/icon.png"))
}

func TestUnknownProductType(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	project := strings.Replace(pbxbuildtest.Project, "com.apple.product-type.tool", "com.example.product-type.gadget", 1)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.ProjectPath+"/project.pbxproj", []byte(project), 0644))
	f := pbxbuildtest.Load(t, fs)
	ctx := f.Context("build")

	te, err := pbxbuild.ResolveTargetEnvironment(f.Build, ctx, f.Target(t, "B"), nil)
	require.NoError(t, err)
	assert.Equal(t, "com.example.product-type.gadget", te.ProductType.Identifier)

	var found bool
	for _, d := range ctx.Diagnostics.List() {
		if d.Target == "B" && strings.Contains(d.Message, "unknown product type") {
			found = true
			assert.Equal(t, pbxbuild.SeverityWarning, d.Severity)
		}
	}
	assert.True(t, found, "unknown product type is reported")
}

func TestMissingProductType(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	project := strings.Replace(pbxbuildtest.Project, `"productType": "com.apple.product-type.tool",`, "", 1)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.ProjectPath+"/project.pbxproj", []byte(project), 0644))
	f := pbxbuildtest.Load(t, fs)
	ctx := f.Context("build")

	te, err := pbxbuild.ResolveTargetEnvironment(f.Build, ctx, f.Target(t, "B"), nil)
	require.NoError(t, err)
	assert.True(t, te.ProductType.Unknown)
	assert.False(t, ctx.Diagnostics.HasErrors())

	var found bool
	for _, d := range ctx.Diagnostics.List() {
		if d.Target == "B" && d.Message == pbxbuild.ErrNoProductType.Error() {
			found = true
			assert.Equal(t, pbxbuild.SeverityWarning, d.Severity)
		}
	}
	assert.True(t, found, "missing product type is reported")
}

func TestConfigurationSelection(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("archive")
	b := f.Target(t, "B")
	assert.Equal(t, "Release", ctx.ConfigurationFor(b))

	ctx.Configuration = "Debug"
	assert.Equal(t, "Debug", ctx.ConfigurationFor(b))

	ctx = f.Context("build")
	ctx.Scheme = nil
	assert.Equal(t, "Debug", ctx.ConfigurationFor(b), "target default")
}

func TestMissingConfigurationWarns(t *testing.T) {
	f := pbxbuildtest.New(t)
	ctx := f.Context("build")
	ctx.Configuration = "Profile"

	te, err := pbxbuild.ResolveTargetEnvironment(f.Build, ctx, f.Target(t, "A"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Profile", te.Configuration)
	assert.NotEmpty(t, ctx.Diagnostics.List())
	assert.False(t, ctx.Diagnostics.HasErrors())
}
