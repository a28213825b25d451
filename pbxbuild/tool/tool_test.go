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

package tool

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/hmap"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

const testSpecs = `[
  {
    "Type": "FileType",
    "Identifier": "sourcecode.c.c",
    "Extensions": ["c"],
    "GccDialectName": "c"
  },
  {
    "Type": "FileType",
    "Identifier": "sourcecode.cpp.cpp",
    "Extensions": ["cpp"],
    "GccDialectName": "c++"
  },
  {
    "Type": "Compiler",
    "Identifier": "com.apple.compilers.llvm.clang.1_0",
    "ExecPath": "clang",
    "OutputFileExtension": "o",
    "DependencyInfoFormat": "makefile",
    "SupportsHeadermaps": "YES",
    "FileTypes": ["sourcecode.c.c", "sourcecode.cpp.cpp"],
    "EnvironmentVariables": { "LANG": "en_US.US-ASCII" },
    "Options": [
      { "Name": "GCC_OPTIMIZATION_LEVEL", "Type": "Enumeration", "DefaultValue": "s",
        "CommandLineArgs": ["-O$(value)"] },
      { "Name": "GCC_WARN_UNUSED_VARIABLE", "Type": "Boolean", "DefaultValue": "NO",
        "CommandLineFlag": "-Wunused-variable" },
      { "Name": "GCC_PREPROCESSOR_DEFINITIONS", "Type": "StringList",
        "CommandLinePrefixFlag": "-D" },
      { "Name": "CLANG_CXX_LIBRARY", "Type": "String", "DefaultValue": "libc++",
        "FileTypes": ["sourcecode.cpp.cpp"], "CommandLineArgs": ["-stdlib=$(value)"],
        "AdditionalLinkerArgs": ["-stdlib=$(value)"] },
      { "Name": "ARM_ONLY", "Type": "Boolean", "DefaultValue": "YES",
        "Architectures": ["arm64"], "CommandLineFlag": "-marm" },
      { "Name": "SDKROOT", "Type": "Path", "CommandLineFlag": "-isysroot",
        "SetValueInEnvironmentVariable": "SDKROOT" }
    ]
  },
  {
    "Type": "Linker",
    "Identifier": "com.apple.pbx.linkers.ld",
    "ExecPath": "clang",
    "SupportsInputFileList": "YES",
    "Options": [
      { "Name": "DEAD_CODE_STRIPPING", "Type": "Boolean", "DefaultValue": "NO",
        "CommandLineFlag": "-dead_strip" }
    ]
  },
  {
    "Type": "Linker",
    "Identifier": "com.apple.pbx.linkers.libtool",
    "ExecPath": "libtool",
    "SupportsInputFileList": "YES"
  },
  {
    "Type": "Tool",
    "Identifier": "com.apple.xcode.linkers.lipo",
    "ExecPath": "lipo"
  },
  {
    "Type": "Tool",
    "Identifier": "com.apple.compilers.pbxcp",
    "ExecPath": "builtin-copy"
  },
  {
    "Type": "Compiler",
    "Identifier": "com.apple.compilers.lex",
    "ExecPath": "lex",
    "CommandLine": "[exec-path] [options] -o $(OutputPath) [input]",
    "Outputs": ["$(DERIVED_FILES_DIR)/$(InputFileBase).yy.c"],
    "Options": [
      { "Name": "LEXFLAGS", "Type": "StringList", "CommandLineArgs": ["$(value)"] }
    ]
  }
]`

func newSpecs(t *testing.T) *pbxspec.Manager {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/specs/Tools.xcspec", []byte(testSpecs), 0644))
	m := pbxspec.NewManager()
	require.NoError(t, pbxspec.NewLoader(fs, m).LoadFile(pbxspec.DefaultDomain, "/specs/Tools.xcspec"))
	return m
}

func newSettings(settings ...string) *pbxsetting.Environment {
	var level []pbxsetting.Setting
	for _, s := range settings {
		setting, ok := pbxsetting.ParseSetting(s)
		if !ok {
			panic(s)
		}
		level = append(level, setting)
	}
	return pbxsetting.NewEnvironment([]pbxsetting.Level{pbxsetting.NewLevel(level)}, nil)
}

func newContext(fs billy.Filesystem) *Context {
	return &Context{FS: fs, WorkingDirectory: "/src", Target: "App"}
}

func TestClangResolve(t *testing.T) {
	specs := newSpecs(t)
	cc, err := specs.Compiler(ClangIdentifier)
	require.NoError(t, err)
	ft, err := specs.FileType("sourcecode.c.c")
	require.NoError(t, err)
	require.True(t, IsClang(cc))

	settings := newSettings(
		"OTHER_CFLAGS = -Werror",
		"GCC_PREPROCESSOR_DEFINITIONS = DEBUG=1 FOO",
		"CURRENT_ARCH = x86_64",
		"SDKROOT = /sdk",
	)
	r := &ClangResolver{Compiler: cc}
	inv, output := r.Resolve(newContext(nil), settings, pbxsetting.Condition{}, CompileRequest{
		Input:     "/src/main.c",
		FileType:  ft,
		OutputDir: "/obj",
		Flags:     []string{"-DFILE"},
	})

	assert.Equal(t, "/obj/main.o", output)
	assert.Equal(t, "clang", inv.Executable)
	assert.Equal(t, []string{"/src/main.c"}, inv.Inputs)
	assert.Equal(t, []string{"/obj/main.o"}, inv.Outputs)
	assert.Equal(t, "/src", inv.WorkingDirectory)
	assert.Equal(t, "App", inv.Target)
	assert.Equal(t, "CompileC /obj/main.o /src/main.c", inv.LogMessage)
	assert.Equal(t, map[string]string{"LANG": "en_US.US-ASCII", "SDKROOT": "/sdk"}, inv.Environment)
	assert.Equal(t, []DependencyInfo{{Format: dependency.Makefile, Path: "/obj/main.d"}}, inv.DependencyInfo)

	want := []string{
		"-Os", "-DDEBUG=1", "-DFOO", "-isysroot", "/sdk",
		"-x", "c", "-Werror", "-DFILE",
		"-MMD", "-MT", "dependencies", "-MF", "/obj/main.d",
		"-c", "/src/main.c", "-o", "/obj/main.o",
	}
	if diff := cmp.Diff(want, inv.Arguments); diff != "" {
		t.Errorf("arguments (-want +got):\n%s", diff)
	}
}

func TestOptionsResult(t *testing.T) {
	specs := newSpecs(t)
	cc, err := specs.Compiler(ClangIdentifier)
	require.NoError(t, err)
	cpp, err := specs.FileType("sourcecode.cpp.cpp")
	require.NoError(t, err)

	settings := newSettings("CURRENT_ARCH = arm64", "GCC_WARN_UNUSED_VARIABLE = YES")
	env := NewEnvironment(cc.Tool, settings, pbxsetting.Condition{}, nil, nil, nil)
	result := NewOptionsResult(env, cpp, nil)

	assert.Equal(t, []string{"-Os", "-Wunused-variable", "-stdlib=libc++", "-marm"}, result.Arguments)
	assert.Equal(t, []string{"-stdlib=libc++"}, result.LinkerArgs)
	assert.Empty(t, result.Environment)

	// Settings in front of the tool defaults win.
	env = NewEnvironment(cc.Tool, newSettings("GCC_OPTIMIZATION_LEVEL = 0"), pbxsetting.Condition{}, nil, nil, nil)
	assert.Equal(t, []string{"-O0"}, NewOptionsResult(env, nil, nil).Arguments)
}

func TestLink(t *testing.T) {
	specs := newSpecs(t)
	r, err := NewLinkerResolver(specs, nil)
	require.NoError(t, err)
	ctx := newContext(nil)

	settings := newSettings("OTHER_LDFLAGS = -lz", "DEAD_CODE_STRIPPING = YES")
	inv := r.Link(ctx, settings, pbxsetting.Condition{}, LinkRequest{
		Objects:        []string{"/obj/a.o", "/obj/b.o"},
		Libraries:      []string{"/sys/Foundation.framework", "/p/libA.a", "/x/other.o"},
		LocalLibraries: []string{"/p/libA.a"},
		Output:         "/out/App",
		Arch:           "x86_64",
		FileList:       "/obj/App.LinkFileList",
		DependencyInfo: "/obj/App_dependency_info.dat",
	})
	assert.Equal(t, "clang", inv.Executable)
	assert.Equal(t, []string{
		"-dead_strip", "-arch", "x86_64",
		"-filelist", "/obj/App.LinkFileList",
		"-framework", "Foundation", "-lA", "/x/other.o",
		"-lz", "-dependency_info", "/obj/App_dependency_info.dat",
		"-o", "/out/App",
	}, inv.Arguments)
	assert.Equal(t, []string{"/obj/a.o", "/obj/b.o", "/p/libA.a"}, inv.Inputs)
	assert.Equal(t, []AuxiliaryFile{{Path: "/obj/App.LinkFileList", Contents: []byte("/obj/a.o\n/obj/b.o\n")}}, inv.AuxiliaryFiles)
	assert.Equal(t, []DependencyInfo{{Format: dependency.Binary, Path: "/obj/App_dependency_info.dat"}}, inv.DependencyInfo)
	assert.Equal(t, "Ld /out/App x86_64", inv.LogMessage)

	inv = r.Link(ctx, newSettings(), pbxsetting.Condition{}, LinkRequest{
		Objects:  []string{"/obj/a.o"},
		Output:   "/out/libA.a",
		Arch:     "arm64",
		Static:   true,
		FileList: "/obj/A.LinkFileList",
	})
	assert.Equal(t, "libtool", inv.Executable)
	assert.Equal(t, []string{"-static", "-arch_only", "arm64", "-filelist", "/obj/A.LinkFileList", "-o", "/out/libA.a"}, inv.Arguments)
	assert.Empty(t, inv.DependencyInfo)

	inv = r.Merge(ctx, newSettings(), pbxsetting.Condition{}, []string{"/a/App", "/b/App"}, "/out/App")
	assert.Equal(t, []string{"lipo", "-create", "/a/App", "/b/App", "-output", "/out/App"}, inv.Argv())
}

func TestLibraryArguments(t *testing.T) {
	assert.Equal(t,
		[]string{"-framework", "UIKit", "-lz", "-lc++", "/x/lib.a", "/x/foo.o"},
		LibraryArguments([]string{"/s/UIKit.framework", "/s/libz.tbd", "libc++.dylib", "/x/lib.a", "/x/foo.o"}))
}

func TestCopy(t *testing.T) {
	r := NewCopyResolver(newSpecs(t), nil)
	inv := r.Resolve(newContext(nil), newSettings(), pbxsetting.Condition{}, "/src/res.png", "/out/App.app/Resources", "CpResource")
	assert.Equal(t, "builtin-copy", inv.Executable)
	assert.Equal(t, []string{
		"-exclude", ".DS_Store", "-exclude", "CVS", "-exclude", ".svn", "-exclude", ".git",
		"/src/res.png", "/out/App.app/Resources",
	}, inv.Arguments)
	assert.Equal(t, []string{"/out/App.app/Resources/res.png"}, inv.Outputs)
	assert.Equal(t, "CpResource /out/App.app/Resources/res.png /src/res.png", inv.LogMessage)

	stripped := r.Resolve(newContext(nil),
		newSettings("COPY_PHASE_STRIP = YES", "DEPLOYMENT_POSTPROCESSING = YES"),
		pbxsetting.Condition{}, "/src/lib.dylib", "/out", "PBXCp")
	assert.Contains(t, stripped.Arguments, "-strip-debug-symbols")
}

func TestShellScriptPhase(t *testing.T) {
	settings := newSettings(
		"SRCROOT = /src",
		"DERIVED_FILES_DIR = /obj/Derived",
		"TARGET_TEMP_DIR = /obj/tmp",
	)
	phase := &pbxproj.BuildPhase{
		ID:          "ABC",
		Kind:        pbxproj.ShellScriptPhase,
		Name:        "Generate",
		ShellScript: "echo hi",
		InputPaths:  []string{"$(SRCROOT)/in.txt", "$(UNDEFINED)"},
		OutputPaths: []string{"$(DERIVED_FILES_DIR)/out.h"},
	}
	inv := ScriptResolver{}.ShellScriptPhase(newContext(nil), settings, pbxsetting.Condition{}, phase)

	assert.Equal(t, []string{"/bin/sh", "-c", "/obj/tmp/Script-ABC.sh"}, inv.Argv())
	assert.Equal(t, []string{"/src/in.txt"}, inv.Inputs)
	assert.Equal(t, []string{"/obj/Derived/out.h"}, inv.Outputs)
	assert.Equal(t, []string{"/obj/tmp/Script-ABC.sh"}, inv.InputDependencies)
	assert.Equal(t, "/src/in.txt", inv.Environment["SCRIPT_INPUT_FILE_0"])
	assert.Equal(t, "1", inv.Environment["SCRIPT_OUTPUT_FILE_COUNT"])
	assert.Equal(t, "/src", inv.Environment["SRCROOT"])
	require.Len(t, inv.AuxiliaryFiles, 1)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(inv.AuxiliaryFiles[0].Contents))
	assert.True(t, inv.AuxiliaryFiles[0].Executable)
	assert.Equal(t, `PhaseScriptExecution "Generate" /obj/tmp/Script-ABC.sh`, inv.LogMessage)
}

func TestScriptRule(t *testing.T) {
	settings := newSettings("DERIVED_FILES_DIR = /obj/Derived")
	inv := ScriptResolver{}.Rule(newContext(nil), settings, pbxsetting.Condition{},
		"cp $INPUT_FILE_PATH $DERIVED_FILES_DIR", "/src/a.txt",
		[]string{"$(DERIVED_FILES_DIR)/$(INPUT_FILE_BASE).out"})

	assert.Equal(t, []string{"/bin/sh", "-c", "cp $INPUT_FILE_PATH $DERIVED_FILES_DIR"}, inv.Argv())
	assert.Equal(t, []string{"/obj/Derived/a.out"}, inv.Outputs)
	assert.Equal(t, ".txt", inv.Environment["INPUT_FILE_SUFFIX"])
	assert.Equal(t, "a", inv.Environment["INPUT_FILE_BASE"])
}

func TestLegacyTarget(t *testing.T) {
	target := &pbxproj.Target{
		Name:                           "Make",
		BuildToolPath:                  "/usr/bin/make",
		BuildArgumentsString:           "$(ACTION) -j4",
		BuildWorkingDirectory:          "sub",
		PassBuildSettingsInEnvironment: true,
	}
	inv := ScriptResolver{}.LegacyTarget(newContext(nil), newSettings("ACTION = clean"), pbxsetting.Condition{}, target)
	assert.Equal(t, []string{"/usr/bin/make", "clean", "-j4"}, inv.Argv())
	assert.Equal(t, "/src/sub", inv.WorkingDirectory)
	assert.Equal(t, "clean", inv.Environment["ACTION"])

	target.PassBuildSettingsInEnvironment = false
	inv = ScriptResolver{}.LegacyTarget(newContext(nil), newSettings("ACTION = build"), pbxsetting.Condition{}, target)
	assert.Empty(t, inv.Environment)
}

func TestGenericResolver(t *testing.T) {
	r, err := NewResolver(newSpecs(t), "com.apple.compilers.lex", nil)
	require.NoError(t, err)
	require.NotNil(t, r.Compiler)

	settings := newSettings("DERIVED_FILES_DIR = /obj/Derived", "LEXFLAGS = -i")
	inv := r.Resolve(newContext(nil), settings, pbxsetting.Condition{}, []string{"/src/grammar.l"}, nil, nil)
	assert.Equal(t, []string{"lex", "-i", "-o", "/obj/Derived/grammar.yy.c", "/src/grammar.l"}, inv.Argv())
	assert.Equal(t, []string{"/obj/Derived/grammar.yy.c"}, inv.Outputs)

	_, err = NewResolver(newSpecs(t), "com.example.missing", nil)
	assert.ErrorIs(t, err, pbxspec.ErrNotFound)
}

func TestSimpleInvocations(t *testing.T) {
	ctx := newContext(nil)
	assert.Equal(t, []string{"/bin/mkdir", "-p", "/out/App.app"}, MakeDirectory(ctx, "/out/App.app").Argv())
	assert.Equal(t, []string{"/bin/ln", "-sfh", "A", "/out/F.framework/Versions/Current"},
		Symlink(ctx, "A", "/out/F.framework/Versions/Current").Argv())

	touch := Touch(ctx, "/out/App.app", []string{"/out/App.app/App"})
	assert.Equal(t, []string{"/usr/bin/touch", "-c", "/out/App.app"}, touch.Argv())
	assert.Equal(t, []string{"/out/App.app/App"}, touch.Inputs)
	assert.Empty(t, touch.Outputs)
}

func TestHeadermap(t *testing.T) {
	entries := HeaderEntries("Lib", []string{"/src/include/a.h", "/src/b.h"})
	assert.Equal(t, []HeaderEntry{
		{Key: "a.h", Path: "/src/include/a.h"},
		{Key: "Lib/a.h", Path: "/src/include/a.h"},
		{Key: "b.h", Path: "/src/b.h"},
		{Key: "Lib/b.h", Path: "/src/b.h"},
	}, entries)

	inv := Headermap(newContext(nil), "/obj/Lib.hmap", entries)
	assert.Empty(t, inv.Executable)
	assert.Equal(t, []string{"/obj/Lib.hmap"}, inv.Outputs)
	require.Len(t, inv.AuxiliaryFiles, 1)

	h, err := hmap.Read(inv.AuxiliaryFiles[0].Contents)
	require.NoError(t, err)
	assert.Equal(t, 4, h.Len())
	prefix, suffix, ok := h.Get("Lib/a.h")
	require.True(t, ok)
	assert.Equal(t, "/src/include/", prefix)
	assert.Equal(t, "a.h", suffix)

	maps := NewHeaderMaps(newSettings("TARGET_TEMP_DIR = /obj/tmp", "PRODUCT_NAME = Lib"), pbxsetting.Condition{})
	assert.Equal(t, "/obj/tmp/Lib-own-target-headers.hmap", maps.OwnTarget)
	assert.Equal(t, []string{
		"-iquote", "/obj/tmp/Lib-own-target-headers.hmap",
		"-I", "/obj/tmp/Lib-all-target-headers.hmap",
		"-iquote", "/obj/tmp/Lib-project-headers.hmap",
	}, maps.Arguments())

	assert.Equal(t, []string{"/a.h", "/b.h"}, ProjectHeaders([]string{"/b.h", "/a.h"}, []string{"/a.h"}))
}

func TestInfoPlist(t *testing.T) {
	r := &InfoPlistResolver{}
	_, ok := r.Resolve(newContext(nil), newSettings(), pbxsetting.Condition{})
	assert.False(t, ok)

	settings := newSettings(
		"INFOPLIST_FILE = Info.plist",
		"TARGET_BUILD_DIR = /out",
		"INFOPLIST_PATH = App.app/Contents/Info.plist",
		"PKGINFO_PATH = App.app/Contents/PkgInfo",
		"GENERATE_PKGINFO_FILE = YES",
		"PLATFORM_NAME = macosx",
	)
	inv, ok := r.Resolve(newContext(nil), settings, pbxsetting.Condition{})
	require.True(t, ok)
	assert.Equal(t, []string{
		InfoPlistExecutable, "/src/Info.plist",
		"-genpkginfo", "/out/App.app/Contents/PkgInfo",
		"-platform", "macosx",
		"-o", "/out/App.app/Contents/Info.plist",
	}, inv.Argv())
	assert.Equal(t, []string{"/out/App.app/Contents/Info.plist", "/out/App.app/Contents/PkgInfo"}, inv.Outputs)
}

func TestCommandLine(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/tc/usr/bin/clang", nil, 0755))
	exec := &ExecutableResolver{FS: fs, Paths: []string{"/sdk/usr/bin", "/tc/usr/bin"}}
	assert.Equal(t, "/tc/usr/bin/clang", exec.Find("clang"))
	assert.Equal(t, "missing", exec.Find("missing"))
	assert.Equal(t, "builtin-copy", exec.Find("builtin-copy"))
	assert.Equal(t, "/bin/sh", exec.Find("/bin/sh"))

	var none *ExecutableResolver
	assert.Equal(t, "clang", none.Find("clang"))

	env := NewEnvironment(nil, newSettings(), pbxsetting.Condition{}, nil, nil, nil)
	cl := NewCommandLineResult(env, exec, CommandLineRequest{
		Executable:  "clang",
		Options:     []string{"-a", "-b"},
		SpecialArgs: []string{"-c"},
		RemovedArgs: []string{"-b"},
	})
	assert.Equal(t, "/tc/usr/bin/clang", cl.Executable)
	assert.Equal(t, []string{"-a", "-c"}, cl.Arguments)
}

func TestSearchPaths(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/src/lib/a/b", 0755))

	settings := newSettings(
		"BUILT_PRODUCTS_DIR = /out",
		"HEADER_SEARCH_PATHS = lib/**",
		"LIBRARY_SEARCH_PATHS = /usr/lib /out",
	)
	env := NewEnvironment(nil, settings, pbxsetting.Condition{}, nil, nil, nil)
	paths := NewSearchPaths(fs, env, "/src")

	assert.Equal(t, []string{"/out/include", "/src/lib", "/src/lib/a", "/src/lib/a/b"}, paths.HeaderSearchPaths)
	assert.Equal(t, []string{"/out"}, paths.FrameworkSearchPaths)
	assert.Equal(t, []string{"/out", "/usr/lib"}, paths.LibrarySearchPaths)
	assert.Equal(t, []string{"-L/out", "-L/usr/lib", "-F/out"}, paths.LinkerArguments())
}

func TestPrecompiledHeader(t *testing.T) {
	info := PrecompiledHeaderInfo{HeaderPath: "/src/Prefix.pch", Dialect: "objective-c", Arguments: []string{"-O0"}}
	other := info
	other.Arguments = []string{"-O2"}

	assert.Equal(t, info.Hash(), PrecompiledHeaderInfo{HeaderPath: "/src/Prefix.pch", Dialect: "objective-c", Arguments: []string{"-O0"}}.Hash())
	assert.NotEqual(t, info.Hash(), other.Hash())
	assert.Equal(t, "/shared/Prefix-"+info.Hash()+"/Prefix.pch.pch", info.OutputPath("/shared/"))

	specs := newSpecs(t)
	cc, err := specs.Compiler(ClangIdentifier)
	require.NoError(t, err)
	r := &ClangResolver{Compiler: cc}
	output := info.OutputPath("/shared")
	pch := r.ResolvePrecompiledHeader(newContext(nil), newSettings(), pbxsetting.Condition{}, info, output)
	assert.Equal(t, []string{"clang", "-x", "objective-c-header", "-O0", "-c", "/src/Prefix.pch", "-o", output}, pch.Argv())

	ft, err := specs.FileType("sourcecode.c.c")
	require.NoError(t, err)
	inv, _ := r.Resolve(newContext(nil), newSettings(), pbxsetting.Condition{}, CompileRequest{
		Input:                   "/src/main.c",
		FileType:                ft,
		OutputDir:               "/obj",
		PrecompiledHeader:       &info,
		PrecompiledHeaderOutput: output,
	})
	assert.Equal(t, []string{output}, inv.InputDependencies)
	assert.Contains(t, inv.Arguments, "/shared/Prefix-"+info.Hash()+"/Prefix.pch")
}
