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

package phase_test

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
	"github.com/xcbuild/xcbuild/pbxbuild/phase"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

type resolved struct {
	f        *pbxbuildtest.Fixture
	ctx      *pbxbuild.BuildContext
	envs     map[*pbxproj.Target]*pbxbuild.TargetEnvironment
	products string
}

func resolve(t *testing.T, f *pbxbuildtest.Fixture) *resolved {
	ctx := f.Context("build")
	_, envs := f.Resolve(t, ctx)
	return &resolved{
		f:        f,
		ctx:      ctx,
		envs:     envs,
		products: pbxbuildtest.DerivedDataRoot + "/" + f.Workspace.DerivedDataHash.String() + "/Build/Products/Debug",
	}
}

func (r *resolved) env(t *testing.T, name string) *phase.Environment {
	te := r.envs[r.f.Target(t, name)]
	require.NotNil(t, te, name)
	return phase.NewEnvironment(r.f.Build, r.ctx, te)
}

func verbs(invs []tool.Invocation) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i], _, _ = strings.Cut(inv.LogMessage, " ")
	}
	return out
}

func find(t *testing.T, invs []tool.Invocation, verb, suffix string) tool.Invocation {
	t.Helper()
	for _, inv := range invs {
		if strings.HasPrefix(inv.LogMessage, verb+" ") && len(inv.Outputs) > 0 && strings.HasSuffix(inv.Outputs[0], suffix) {
			return inv
		}
	}
	require.FailNow(t, "no invocation", "%s %s", verb, suffix)
	return tool.Invocation{}
}

func TestSortPhases(t *testing.T) {
	p := func(id string, kind pbxproj.BuildPhaseKind) *pbxproj.BuildPhase {
		return &pbxproj.BuildPhase{ID: id, Kind: kind}
	}
	phases := []*pbxproj.BuildPhase{
		p("sources", pbxproj.SourcesPhase),
		p("script", pbxproj.ShellScriptPhase),
		p("resources", pbxproj.ResourcesPhase),
		p("rez", pbxproj.RezPhase),
		p("headers", pbxproj.HeadersPhase),
		p("frameworks", pbxproj.FrameworksPhase),
		p("copy", pbxproj.CopyFilesPhase),
		p("sources2", pbxproj.SourcesPhase),
	}
	var ids []string
	for _, ph := range phase.SortPhases(phases) {
		ids = append(ids, ph.ID)
	}
	assert.Equal(t, []string{"sources", "script", "headers", "sources2", "frameworks", "resources", "copy", "rez"}, ids)
	assert.Equal(t, "sources", phases[0].ID, "input is not modified")
	assert.Equal(t, "resources", phases[2].ID)
}

func TestToolTarget(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	e := r.env(t, "B")
	invs := phase.PhaseInvocations(e)

	assert.Equal(t, []string{
		"WriteHeaderMap", "WriteHeaderMap", "WriteHeaderMap",
		"CompileC", "RuleScriptExecution", "CompileC",
		"Ld",
		"PhaseScriptExecution",
		"PBXCp",
	}, verbs(invs))

	objects := e.Target.Value("OBJECT_FILE_DIR") + "-normal/x86_64"
	derived := e.Target.Value("DERIVED_FILES_DIR")

	main := find(t, invs, "CompileC", "/main.o")
	assert.Equal(t, objects+"/main.o", main.Outputs[0])
	assert.Equal(t, []string{"/work/Sources/main.c"}, main.Inputs)
	assert.Subset(t, main.Arguments, []string{"-O0", "-arch", "x86_64", "-x", "c", "-Werror", "-DMAIN", "-c", "/work/Sources/main.c"})
	assert.Contains(t, main.Arguments, "-I"+r.products+"/include")
	assert.Subset(t, main.InputDependencies, tool.NewHeaderMaps(e.Target.Environment, e.Target.Condition).Paths())
	assert.Equal(t, "B", main.Target)
	assert.Equal(t, "/work", main.WorkingDirectory)

	lex := invs[4]
	assert.Equal(t, []string{"/work/Sources/grammar.l"}, lex.Inputs)
	assert.Equal(t, []string{derived + "/grammar.c"}, lex.Outputs)
	generated := invs[5]
	assert.Equal(t, []string{derived + "/grammar.c"}, generated.Inputs)
	assert.Equal(t, []string{objects + "/grammar.o"}, generated.Outputs)

	ld := find(t, invs, "Ld", "/B")
	assert.Equal(t, r.products+"/B", ld.Outputs[0])
	assert.Equal(t, []string{objects + "/main.o", objects + "/grammar.o", r.products + "/libA.a"}, ld.Inputs)
	assert.Contains(t, ld.Arguments, "-lA")
	assert.Contains(t, ld.Arguments, "-filelist")
	assert.NotContains(t, ld.Arguments, "-dynamiclib")
	require.Len(t, ld.AuxiliaryFiles, 1)
	assert.Equal(t, objects+"/main.o\n"+objects+"/grammar.o\n", string(ld.AuxiliaryFiles[0].Contents))
	require.Len(t, ld.DependencyInfo, 1)

	script := invs[7]
	assert.Contains(t, script.LogMessage, "Stamp")
	assert.Equal(t, []string{r.products + "/B"}, script.Inputs)
	assert.Equal(t, []string{derived + "/stamp"}, script.Outputs)
	assert.True(t, script.ShowEnvironmentInLog)

	copied := invs[8]
	assert.Equal(t, []string{r.products + "/share/data.txt"}, copied.Outputs)

	assert.False(t, r.ctx.Diagnostics.HasErrors())
}

func TestStaticLibraryTarget(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	invs := phase.PhaseInvocations(r.env(t, "A"))

	assert.Equal(t, []string{
		"WriteHeaderMap", "WriteHeaderMap", "WriteHeaderMap",
		"CpHeader", "CompileC", "Libtool",
	}, verbs(invs))

	header := invs[3]
	assert.Equal(t, []string{r.products + "/include/A/a.h"}, header.Outputs)

	lib := invs[5]
	assert.Equal(t, []string{r.products + "/libA.a"}, lib.Outputs)
	assert.Subset(t, lib.Arguments, []string{"-static", "-arch_only", "x86_64"})
	assert.Empty(t, lib.DependencyInfo)
}

func TestFrameworkTarget(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	e := r.env(t, "Kit")
	invs := phase.PhaseInvocations(e)
	wrapper := r.products + "/Kit.framework"

	assert.Equal(t, []string{
		"MkDir",
		"WriteHeaderMap", "WriteHeaderMap", "WriteHeaderMap",
		"ProcessInfoPlistFile",
		"SymLink", "SymLink", "SymLink", "SymLink",
		"CpHeader",
		"CompileC", "CompileC",
		"CpResource", "CpResource",
		"Rez",
		"Ld", "Ld", "CreateUniversalBinary",
		"Touch",
	}, verbs(invs))

	assert.Equal(t, []string{wrapper}, invs[0].Outputs)

	plist := invs[4]
	assert.Equal(t, []string{"/work/Resources/Info.plist"}, plist.Inputs)
	assert.Equal(t, []string{wrapper + "/Versions/A/Resources/Info.plist"}, plist.Outputs)
	assert.Subset(t, plist.Arguments, []string{"-platform", "macosx"})

	assert.Equal(t, []string{"-sfh", "A", wrapper + "/Versions/Current"}, invs[5].Arguments)
	assert.Equal(t, []string{"-sfh", "Versions/Current/Kit", wrapper + "/Kit"}, invs[6].Arguments)

	assert.Equal(t, []string{wrapper + "/Versions/A/Headers/kit.h"}, invs[9].Outputs)
	assert.Subset(t, invs[10].Arguments, []string{"-arch", "arm64"})
	assert.Subset(t, invs[11].Arguments, []string{"-arch", "x86_64"})

	assert.Equal(t, []string{wrapper + "/Versions/A/Resources/icon.png"}, invs[12].Outputs)
	assert.Equal(t, []string{wrapper + "/Versions/A/Resources/en.lproj/Localizable.strings"}, invs[13].Outputs)
	assert.Equal(t, []string{e.Target.Value("TARGET_TEMP_DIR") + "/ResourceManagerResources/kit.rsrc"}, invs[14].Outputs)

	objects := e.Target.Value("OBJECT_FILE_DIR") + "-normal"
	assert.Equal(t, []string{objects + "/arm64/Kit"}, invs[15].Outputs)
	assert.Contains(t, invs[15].Arguments, "-dynamiclib")
	assert.Equal(t, []string{objects + "/x86_64/Kit"}, invs[16].Outputs)
	lipo := invs[17]
	assert.Equal(t, []string{objects + "/arm64/Kit", objects + "/x86_64/Kit"}, lipo.Inputs)
	assert.Equal(t, []string{wrapper + "/Versions/A/Kit"}, lipo.Outputs)

	touch := invs[18]
	assert.Equal(t, []string{"-c", wrapper}, touch.Arguments)
	assert.Contains(t, touch.Inputs, wrapper+"/Versions/A/Kit")
	assert.Empty(t, touch.Outputs)
}

func TestAggregateAndLegacyTargets(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))

	gen := phase.PhaseInvocations(r.env(t, "Gen"))
	require.Len(t, gen, 1)
	assert.True(t, strings.HasPrefix(gen[0].LogMessage, `PhaseScriptExecution "Generate" `), gen[0].LogMessage)
	assert.False(t, gen[0].ShowEnvironmentInLog)
	require.Len(t, gen[0].Outputs, 1)
	assert.True(t, strings.HasSuffix(gen[0].Outputs[0], "/App.build/DerivedSources/gen.h"), gen[0].Outputs[0])

	ctx := r.f.Context("build")
	ctx.Scheme = nil
	ctx.Configuration = "Debug"
	legacyTarget := r.f.Target(t, "Make")
	te, err := pbxbuild.ResolveTargetEnvironment(r.f.Build, ctx, legacyTarget, nil)
	require.NoError(t, err)
	legacy := phase.PhaseInvocations(phase.NewEnvironment(r.f.Build, ctx, te))
	require.Len(t, legacy, 1)
	assert.Equal(t, "/usr/bin/make", legacy[0].Executable)
	assert.Equal(t, []string{"build"}, legacy[0].Arguments)
	assert.Equal(t, "/work/legacy", legacy[0].WorkingDirectory)
	assert.Equal(t, "Make", legacy[0].Environment["TARGET_NAME"])
}

func TestUnresolvableFilesAreReported(t *testing.T) {
	fs := memfs.New()
	pbxbuildtest.Files(t, fs)
	project := strings.Replace(pbxbuildtest.Project, `"files": ["BFMain", "BFLex"]`, `"files": ["BFMain", "BFIconSource", "BFLex"]`, 1)
	project = strings.Replace(project, `"BFMain": {`, `"BFIconSource": { "isa": "PBXBuildFile", "fileRef": "FIcon" },
    "BFMain": {`, 1)
	require.NoError(t, util.WriteFile(fs, pbxbuildtest.ProjectPath+"/project.pbxproj", []byte(project), 0644))
	r := resolve(t, pbxbuildtest.Load(t, fs))

	invs := phase.PhaseInvocations(r.env(t, "B"))
	assert.Len(t, invs, 9, "the other files still build")
	assert.True(t, r.ctx.Diagnostics.HasErrors())

	var found bool
	for _, d := range r.ctx.Diagnostics.List() {
		if d.Severity == pbxbuild.SeverityError && d.Target == "B" {
			found = true
			assert.Contains(t, d.Message, "icon.png")
		}
	}
	assert.True(t, found)
}

func TestFiles(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	e := r.env(t, "Kit")
	resources := e.Target.Target.BuildPhases[2]
	require.Equal(t, pbxproj.ResourcesPhase, resources.Kind)

	files := e.Files(resources, e.Target.Environment, e.Target.Condition, false)
	require.Len(t, files, 2)
	assert.Equal(t, "/work/Resources/icon.png", files[0].Path)
	assert.Equal(t, "image.png", files[0].FileType.Identifier)
	assert.Nil(t, files[0].Rule)
	assert.Equal(t, "", files[0].Localization)
	assert.Equal(t, "/work/Resources/en.lproj/Localizable.strings", files[1].Path)
	assert.Equal(t, "en", files[1].Localization)

	missing := &pbxproj.BuildPhase{ID: "X", Kind: pbxproj.SourcesPhase, Files: []*pbxproj.BuildFile{{ID: "BF"}}}
	assert.Empty(t, e.Files(missing, e.Target.Environment, e.Target.Condition, true))
	diags := r.ctx.Diagnostics.List()
	require.NotEmpty(t, diags)
	last := diags[len(diags)-1]
	assert.Equal(t, "BF", last.File)
	assert.Equal(t, phase.ErrNoFileReference.Error(), last.Message)
	assert.True(t, errors.Is(&pbxbuild.FileError{Err: phase.ErrNoFileReference}, phase.ErrNoFileReference))
}

func TestCopyDestination(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	e := r.env(t, "Kit")

	testCases := []struct {
		spec int
		path string
		want string
	}{
		{pbxproj.DestinationProducts, "share", r.products + "/share"},
		{pbxproj.DestinationWrapper, "Extras", r.products + "/Kit.framework/Extras"},
		{pbxproj.DestinationResources, "", r.products + "/Kit.framework/Versions/A/Resources"},
		{pbxproj.DestinationAbsolute, "/opt/kit", "/opt/kit"},
	}
	for _, tc := range testCases {
		dir, err := e.CopyDestination(&pbxproj.BuildPhase{Kind: pbxproj.CopyFilesPhase, DstSubfolderSpec: tc.spec, DstPath: tc.path})
		require.NoError(t, err)
		assert.Equal(t, tc.want, dir)
	}

	_, err := e.CopyDestination(&pbxproj.BuildPhase{DstSubfolderSpec: 99})
	assert.Error(t, err)
	_, err = e.CopyDestination(&pbxproj.BuildPhase{DstSubfolderSpec: pbxproj.DestinationAbsolute})
	assert.Error(t, err)

	assert.Empty(t, e.CopyFiles(&pbxproj.BuildPhase{ID: "C", DstSubfolderSpec: 99}))
}

func TestDeploymentOnlyPhase(t *testing.T) {
	r := resolve(t, pbxbuildtest.New(t))
	e := r.env(t, "Gen")
	script := *e.Target.Target.BuildPhases[0]
	script.RunOnlyForDeploymentPostprocessing = true
	assert.Empty(t, e.Phase(&script))

	script.RunOnlyForDeploymentPostprocessing = false
	assert.Len(t, e.Phase(&script), 1)
}
