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

// Package pbxbuildtest provides a small but complete workspace for tests: a
// specification database, an SDK registry and a project with static
// library, tool, framework, aggregate and legacy targets.
package pbxbuildtest

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
	"github.com/xcbuild/xcbuild/xcsdk"
)

const (
	DeveloperRoot   = "/Developer"
	ProjectPath     = "/work/App.xcodeproj"
	SourceRoot      = "/work"
	DerivedDataRoot = "/DerivedData"
	SchemeName      = "App"
)

const Specs = `[
  {
    "Type": "BuildSystem",
    "Identifier": "com.apple.build-system.core",
    "Options": [
      { "Name": "ARCHS", "Type": "StringList", "DefaultValue": "$(ARCHS_STANDARD)" },
      { "Name": "USE_HEADERMAP", "Type": "Boolean", "DefaultValue": "YES" },
      { "Name": "GCC_PRECOMPILE_PREFIX_HEADER", "Type": "Boolean", "DefaultValue": "NO" }
    ]
  },
  {
    "Type": "Architecture",
    "Identifier": "Standard",
    "ArchitectureSetting": "ARCHS_STANDARD",
    "RealArchitectures": ["arm64", "x86_64"]
  },
  { "Type": "FileType", "Identifier": "text", "Extensions": ["txt"] },
  { "Type": "FileType", "Identifier": "sourcecode", "BasedOn": "text" },
  { "Type": "FileType", "Identifier": "sourcecode.c", "BasedOn": "sourcecode" },
  { "Type": "FileType", "Identifier": "sourcecode.c.c", "BasedOn": "sourcecode.c", "Extensions": ["c"], "GccDialectName": "c" },
  { "Type": "FileType", "Identifier": "sourcecode.c.h", "BasedOn": "sourcecode.c", "Extensions": ["h"] },
  { "Type": "FileType", "Identifier": "sourcecode.lex", "BasedOn": "sourcecode", "Extensions": ["l", "lex"] },
  { "Type": "FileType", "Identifier": "sourcecode.rez", "BasedOn": "sourcecode", "Extensions": ["r"] },
  { "Type": "FileType", "Identifier": "archive.ar", "Extensions": ["a"] },
  { "Type": "FileType", "Identifier": "compiled.mach-o.executable" },
  { "Type": "FileType", "Identifier": "wrapper.framework", "Extensions": ["framework"], "IsWrapperFolder": "YES" },
  { "Type": "FileType", "Identifier": "image.png", "Extensions": ["png"] },
  { "Type": "FileType", "Identifier": "text.plist.xml", "BasedOn": "text", "Extensions": ["plist"] },
  { "Type": "FileType", "Identifier": "text.plist.strings", "BasedOn": "text", "Extensions": ["strings"] },
  {
    "Type": "Compiler",
    "Identifier": "com.apple.compilers.llvm.clang.1_0",
    "Name": "Apple Clang",
    "ExecPath": "clang",
    "OutputDir": "$(OBJECT_FILE_DIR_$(CURRENT_VARIANT))/$(CURRENT_ARCH)",
    "OutputFileExtension": "o",
    "DependencyInfoFormat": "makefile",
    "SupportsHeadermaps": "YES",
    "SynthesizeBuildRule": "YES",
    "FileTypes": ["sourcecode.c.c"],
    "Options": [
      { "Name": "GCC_OPTIMIZATION_LEVEL", "Type": "Enumeration", "DefaultValue": "s",
        "CommandLineArgs": ["-O$(value)"] },
      { "Name": "SDKROOT", "Type": "Path", "CommandLineFlag": "-isysroot" },
      { "Name": "CURRENT_ARCH", "Type": "String", "CommandLineFlag": "-arch" }
    ]
  },
  {
    "Type": "Compiler",
    "Identifier": "com.apple.compilers.rez",
    "ExecPath": "Rez",
    "RuleName": "Rez",
    "FileTypes": ["sourcecode.rez"],
    "Outputs": ["$(TARGET_TEMP_DIR)/ResourceManagerResources/$(InputFileBase).rsrc"],
    "CommandLine": "[exec-path] [input] -o [output]"
  },
  {
    "Type": "Linker",
    "Identifier": "com.apple.pbx.linkers.ld",
    "ExecPath": "clang",
    "SupportsInputFileList": "YES",
    "Options": [
      { "Name": "MACH_O_TYPE", "Type": "Enumeration",
        "Values": [ { "Value": "mh_execute" }, { "Value": "mh_dylib", "CommandLineFlag": "-dynamiclib" } ] }
    ]
  },
  { "Type": "Linker", "Identifier": "com.apple.pbx.linkers.libtool", "ExecPath": "libtool", "SupportsInputFileList": "YES" },
  { "Type": "Tool", "Identifier": "com.apple.xcode.linkers.lipo", "ExecPath": "lipo" },
  { "Type": "Tool", "Identifier": "com.apple.compilers.pbxcp", "ExecPath": "builtin-copy" },
  { "Type": "Tool", "Identifier": "com.apple.tools.info-plist-utility", "ExecPath": "builtin-infoPlistUtility" },
  {
    "Type": "PackageType",
    "Identifier": "com.apple.package-type.static-library",
    "DefaultBuildSettings": {
      "EXECUTABLE_PREFIX": "lib",
      "EXECUTABLE_SUFFIX": ".a",
      "EXECUTABLE_NAME": "$(EXECUTABLE_PREFIX)$(PRODUCT_NAME)$(EXECUTABLE_SUFFIX)",
      "EXECUTABLE_PATH": "$(EXECUTABLE_NAME)",
      "FULL_PRODUCT_NAME": "$(EXECUTABLE_NAME)",
      "PUBLIC_HEADERS_FOLDER_PATH": "include/$(PRODUCT_NAME)"
    },
    "ProductReference": { "FileType": "archive.ar", "Name": "$(EXECUTABLE_NAME)" }
  },
  {
    "Type": "PackageType",
    "Identifier": "com.apple.package-type.mach-o-executable",
    "DefaultBuildSettings": {
      "EXECUTABLE_NAME": "$(PRODUCT_NAME)",
      "EXECUTABLE_PATH": "$(EXECUTABLE_NAME)",
      "FULL_PRODUCT_NAME": "$(EXECUTABLE_NAME)"
    },
    "ProductReference": { "FileType": "compiled.mach-o.executable", "Name": "$(EXECUTABLE_NAME)", "IsLaunchable": "YES" }
  },
  {
    "Type": "PackageType",
    "Identifier": "com.apple.package-type.wrapper.framework",
    "DefaultBuildSettings": {
      "FRAMEWORK_VERSION": "A",
      "WRAPPER_SUFFIX": ".framework",
      "WRAPPER_NAME": "$(PRODUCT_NAME)$(WRAPPER_SUFFIX)",
      "FULL_PRODUCT_NAME": "$(WRAPPER_NAME)",
      "CONTENTS_FOLDER_PATH": "$(WRAPPER_NAME)/Versions/$(FRAMEWORK_VERSION)",
      "EXECUTABLE_NAME": "$(PRODUCT_NAME)",
      "EXECUTABLE_FOLDER_PATH": "$(CONTENTS_FOLDER_PATH)",
      "EXECUTABLE_PATH": "$(EXECUTABLE_FOLDER_PATH)/$(EXECUTABLE_NAME)",
      "UNLOCALIZED_RESOURCES_FOLDER_PATH": "$(CONTENTS_FOLDER_PATH)/Resources",
      "INFOPLIST_PATH": "$(UNLOCALIZED_RESOURCES_FOLDER_PATH)/Info.plist",
      "PUBLIC_HEADERS_FOLDER_PATH": "$(CONTENTS_FOLDER_PATH)/Headers"
    },
    "ProductReference": { "FileType": "wrapper.framework", "Name": "$(WRAPPER_NAME)" }
  },
  {
    "Type": "ProductType",
    "Identifier": "com.apple.product-type.library.static",
    "DefaultBuildProperties": { "MACH_O_TYPE": "staticlib" },
    "PackageTypes": ["com.apple.package-type.static-library"]
  },
  {
    "Type": "ProductType",
    "Identifier": "com.apple.product-type.tool",
    "DefaultBuildProperties": { "MACH_O_TYPE": "mh_execute" },
    "PackageTypes": ["com.apple.package-type.mach-o-executable"]
  },
  {
    "Type": "ProductType",
    "Identifier": "com.apple.product-type.framework",
    "IsWrapper": "YES",
    "HasInfoPlist": "YES",
    "DefaultBuildProperties": { "MACH_O_TYPE": "mh_dylib" },
    "PackageTypes": ["com.apple.package-type.wrapper.framework"]
  }
]`

const Registry = `
toolchain "com.apple.dt.toolchain.XcodeDefault" {
  path    = "${developer_root}/Toolchains/XcodeDefault.xctoolchain"
  aliases = ["default"]
}

platform "macosx" {
  identifier = "com.apple.platform.macosx"
  path       = "${developer_root}/Platforms/MacOSX.platform"
  family     = "macOS"

  sdk "macosx10.15" {
    version    = "10.15"
    path       = "${developer_root}/Platforms/MacOSX.platform/Developer/SDKs/MacOSX10.15.sdk"
    toolchains = ["com.apple.dt.toolchain.XcodeDefault"]
    default_settings = {
      ARCHS_STANDARD = "x86_64"
    }
  }
}
`

const Project = `{
  "archiveVersion": "1",
  "objectVersion": "46",
  "rootObject": "P",
  "objects": {
    "P": {
      "isa": "PBXProject",
      "buildConfigurationList": "PCL",
      "mainGroup": "G",
      "productRefGroup": "GP",
      "projectDirPath": "",
      "targets": ["TB", "TA", "TG", "TK", "TL"]
    },
    "PCL": { "isa": "XCConfigurationList", "buildConfigurations": ["PDebug", "PRelease"], "defaultConfigurationName": "Release" },
    "PDebug": {
      "isa": "XCBuildConfiguration",
      "name": "Debug",
      "baseConfigurationReference": "FConfig",
      "buildSettings": { "SDKROOT": "macosx", "PRODUCT_NAME": "$(TARGET_NAME)" }
    },
    "PRelease": { "isa": "XCBuildConfiguration", "name": "Release", "buildSettings": { "SDKROOT": "macosx", "PRODUCT_NAME": "$(TARGET_NAME)" } },

    "G": { "isa": "PBXGroup", "children": ["GS", "GR", "FConfig", "GP"], "sourceTree": "<group>" },
    "GS": { "isa": "PBXGroup", "path": "Sources", "children": ["FMain", "FLex", "FA", "FAH", "FKit", "FKitH", "FData", "FRez"], "sourceTree": "<group>" },
    "GR": { "isa": "PBXGroup", "path": "Resources", "children": ["FIcon", "FPlist", "VStrings"], "sourceTree": "<group>" },
    "GP": { "isa": "PBXGroup", "name": "Products", "children": ["FProductA", "FProductB", "FProductK"], "sourceTree": "<group>" },
    "FConfig": { "isa": "PBXFileReference", "path": "Config/Base.xcconfig", "sourceTree": "SOURCE_ROOT" },
    "FMain": { "isa": "PBXFileReference", "path": "main.c", "lastKnownFileType": "sourcecode.c.c", "sourceTree": "<group>" },
    "FLex": { "isa": "PBXFileReference", "path": "grammar.l", "sourceTree": "<group>" },
    "FA": { "isa": "PBXFileReference", "path": "a.c", "sourceTree": "<group>" },
    "FAH": { "isa": "PBXFileReference", "path": "a.h", "sourceTree": "<group>" },
    "FKit": { "isa": "PBXFileReference", "path": "kit.c", "sourceTree": "<group>" },
    "FKitH": { "isa": "PBXFileReference", "path": "kit.h", "sourceTree": "<group>" },
    "FData": { "isa": "PBXFileReference", "path": "data.txt", "sourceTree": "<group>" },
    "FRez": { "isa": "PBXFileReference", "path": "kit.r", "sourceTree": "<group>" },
    "FIcon": { "isa": "PBXFileReference", "path": "icon.png", "sourceTree": "<group>" },
    "FPlist": { "isa": "PBXFileReference", "path": "Info.plist", "sourceTree": "<group>" },
    "VStrings": { "isa": "PBXVariantGroup", "name": "Localizable.strings", "children": ["FStringsEn"], "sourceTree": "<group>" },
    "FStringsEn": { "isa": "PBXFileReference", "name": "en", "path": "en.lproj/Localizable.strings", "sourceTree": "<group>" },
    "FProductA": { "isa": "PBXFileReference", "explicitFileType": "archive.ar", "path": "libA.a", "sourceTree": "BUILT_PRODUCTS_DIR" },
    "FProductB": { "isa": "PBXFileReference", "explicitFileType": "compiled.mach-o.executable", "path": "B", "sourceTree": "BUILT_PRODUCTS_DIR" },
    "FProductK": { "isa": "PBXFileReference", "explicitFileType": "wrapper.framework", "path": "Kit.framework", "sourceTree": "BUILT_PRODUCTS_DIR" },

    "TB": {
      "isa": "PBXNativeTarget",
      "name": "B",
      "productName": "B",
      "productType": "com.apple.product-type.tool",
      "productReference": "FProductB",
      "buildConfigurationList": "TBCL",
      "buildPhases": ["TBSources", "TBFrameworks", "TBScript", "TBCopy"],
      "buildRules": ["RLex"],
      "dependencies": ["DG"]
    },
    "TBCL": { "isa": "XCConfigurationList", "buildConfigurations": ["TBDebug"], "defaultConfigurationName": "Debug" },
    "TBDebug": { "isa": "XCBuildConfiguration", "name": "Debug", "buildSettings": { "OTHER_CFLAGS": "-Werror" } },
    "TBSources": { "isa": "PBXSourcesBuildPhase", "files": ["BFMain", "BFLex"] },
    "BFMain": { "isa": "PBXBuildFile", "fileRef": "FMain", "settings": { "COMPILER_FLAGS": "-DMAIN" } },
    "BFLex": { "isa": "PBXBuildFile", "fileRef": "FLex" },
    "TBFrameworks": { "isa": "PBXFrameworksBuildPhase", "files": ["BFLibA"] },
    "BFLibA": { "isa": "PBXBuildFile", "fileRef": "FProductA" },
    "TBScript": {
      "isa": "PBXShellScriptBuildPhase",
      "name": "Stamp",
      "shellPath": "/bin/sh",
      "shellScript": "touch $SCRIPT_OUTPUT_FILE_0",
      "inputPaths": ["$(BUILT_PRODUCTS_DIR)/B"],
      "outputPaths": ["$(DERIVED_FILE_DIR)/stamp"]
    },
    "TBCopy": { "isa": "PBXCopyFilesBuildPhase", "dstPath": "share", "dstSubfolderSpec": "16", "files": ["BFData"] },
    "BFData": { "isa": "PBXBuildFile", "fileRef": "FData" },
    "RLex": {
      "isa": "PBXBuildRule",
      "compilerSpec": "com.apple.compilers.proxy.script",
      "filePatterns": "*.l",
      "fileType": "pattern.proxy",
      "isEditable": "1",
      "script": "lex -o $SCRIPT_OUTPUT_FILE_0 $INPUT_FILE_PATH",
      "outputFiles": ["$(DERIVED_FILE_DIR)/$(INPUT_FILE_BASE).c"]
    },
    "DG": { "isa": "PBXTargetDependency", "targetProxy": "PXG" },
    "PXG": { "isa": "PBXContainerItemProxy", "containerPortal": "P", "proxyType": "1", "remoteGlobalIDString": "TG", "remoteInfo": "Gen" },

    "TA": {
      "isa": "PBXNativeTarget",
      "name": "A",
      "productName": "A",
      "productType": "com.apple.product-type.library.static",
      "productReference": "FProductA",
      "buildConfigurationList": "TACL",
      "buildPhases": ["TAHeaders", "TASources"],
      "dependencies": []
    },
    "TACL": { "isa": "XCConfigurationList", "buildConfigurations": ["TADebug"], "defaultConfigurationName": "Debug" },
    "TADebug": { "isa": "XCBuildConfiguration", "name": "Debug", "buildSettings": {} },
    "TAHeaders": { "isa": "PBXHeadersBuildPhase", "files": ["BFAH"] },
    "BFAH": { "isa": "PBXBuildFile", "fileRef": "FAH", "settings": { "ATTRIBUTES": ["Public"] } },
    "TASources": { "isa": "PBXSourcesBuildPhase", "files": ["BFA"] },
    "BFA": { "isa": "PBXBuildFile", "fileRef": "FA" },

    "TG": {
      "isa": "PBXAggregateTarget",
      "name": "Gen",
      "productName": "Gen",
      "buildConfigurationList": "TGCL",
      "buildPhases": ["TGScript"],
      "dependencies": []
    },
    "TGCL": { "isa": "XCConfigurationList", "buildConfigurations": ["TGDebug"], "defaultConfigurationName": "Debug" },
    "TGDebug": { "isa": "XCBuildConfiguration", "name": "Debug", "buildSettings": {} },
    "TGScript": {
      "isa": "PBXShellScriptBuildPhase",
      "name": "Generate",
      "shellScript": "echo generated > $SCRIPT_OUTPUT_FILE_0",
      "outputPaths": ["$(PROJECT_DERIVED_FILE_DIR)/gen.h"],
      "showEnvVarsInLog": "0"
    },

    "TK": {
      "isa": "PBXNativeTarget",
      "name": "Kit",
      "productName": "Kit",
      "productType": "com.apple.product-type.framework",
      "productReference": "FProductK",
      "buildConfigurationList": "TKCL",
      "buildPhases": ["TKHeaders", "TKSources", "TKResources", "TKRez"],
      "dependencies": []
    },
    "TKCL": { "isa": "XCConfigurationList", "buildConfigurations": ["TKDebug"], "defaultConfigurationName": "Debug" },
    "TKDebug": {
      "isa": "XCBuildConfiguration",
      "name": "Debug",
      "buildSettings": { "ARCHS": "arm64 x86_64", "INFOPLIST_FILE": "Resources/Info.plist" }
    },
    "TKHeaders": { "isa": "PBXHeadersBuildPhase", "files": ["BFKitH"] },
    "BFKitH": { "isa": "PBXBuildFile", "fileRef": "FKitH", "settings": { "ATTRIBUTES": ["Public"] } },
    "TKSources": { "isa": "PBXSourcesBuildPhase", "files": ["BFKit"] },
    "BFKit": { "isa": "PBXBuildFile", "fileRef": "FKit" },
    "TKResources": { "isa": "PBXResourcesBuildPhase", "files": ["BFIcon", "BFStrings"] },
    "BFIcon": { "isa": "PBXBuildFile", "fileRef": "FIcon" },
    "BFStrings": { "isa": "PBXBuildFile", "fileRef": "VStrings" },
    "TKRez": { "isa": "PBXRezBuildPhase", "files": ["BFRez"] },
    "BFRez": { "isa": "PBXBuildFile", "fileRef": "FRez" },

    "TL": {
      "isa": "PBXLegacyTarget",
      "name": "Make",
      "buildToolPath": "/usr/bin/make",
      "buildArgumentsString": "$(ACTION)",
      "buildWorkingDirectory": "legacy",
      "passBuildSettingsInEnvironment": "1",
      "buildConfigurationList": "TLCL",
      "buildPhases": [],
      "dependencies": []
    },
    "TLCL": { "isa": "XCConfigurationList", "buildConfigurations": ["TLDebug"], "defaultConfigurationName": "Debug" },
    "TLDebug": { "isa": "XCBuildConfiguration", "name": "Debug", "buildSettings": {} }
  }
}`

const XCConfig = `// Shared settings
#include? "Local.xcconfig"
GCC_OPTIMIZATION_LEVEL = 0
`

const Scheme = `<?xml version="1.0" encoding="UTF-8"?>
<Scheme LastUpgradeVersion = "1130" version = "1.3">
   <BuildAction parallelizeBuildables = "YES" buildImplicitDependencies = "YES">
      <BuildActionEntries>
         <BuildActionEntry buildForTesting = "YES" buildForRunning = "YES" buildForProfiling = "YES" buildForArchiving = "YES" buildForAnalyzing = "YES">
            <BuildableReference
               BuildableIdentifier = "primary"
               BlueprintIdentifier = "TB"
               BuildableName = "B"
               BlueprintName = "B"
               ReferencedContainer = "container:App.xcodeproj">
            </BuildableReference>
         </BuildActionEntry>
         <BuildActionEntry buildForTesting = "YES" buildForRunning = "YES" buildForProfiling = "YES" buildForArchiving = "YES" buildForAnalyzing = "YES">
            <BuildableReference
               BuildableIdentifier = "primary"
               BlueprintIdentifier = "TK"
               BuildableName = "Kit.framework"
               BlueprintName = "Kit"
               ReferencedContainer = "container:App.xcodeproj">
            </BuildableReference>
         </BuildActionEntry>
      </BuildActionEntries>
   </BuildAction>
   <LaunchAction buildConfiguration = "Debug"></LaunchAction>
   <ArchiveAction buildConfiguration = "Release"></ArchiveAction>
</Scheme>
`

// A Fixture is the test workspace loaded into a memory file system.
type Fixture struct {
	FS        billy.Filesystem
	Build     *pbxbuild.BuildEnvironment
	Workspace *pbxbuild.WorkspaceContext
}

// Files writes the fixture's inputs into fs.
func Files(t testing.TB, fs billy.Filesystem) {
	t.Helper()
	files := map[string]string{
		DeveloperRoot + "/Specs/default/Core.xcspec":           Specs,
		DeveloperRoot + "/registry.hcl":                        Registry,
		ProjectPath + "/project.pbxproj":                       Project,
		ProjectPath + "/xcshareddata/xcschemes/App.xcscheme":   Scheme,
		SourceRoot + "/Config/Base.xcconfig":                   XCConfig,
		SourceRoot + "/Sources/main.c":                         "int main(void) { return 0; }\n",
		SourceRoot + "/Sources/a.c":                            "int a(void) { return 1; }\n",
		SourceRoot + "/Sources/a.h":                            "int a(void);\n",
		SourceRoot + "/Sources/grammar.l":                      "%%\n",
		SourceRoot + "/Resources/Info.plist":                   "<plist/>\n",
		SourceRoot + "/Resources/en.lproj/Localizable.strings": "\"a\" = \"b\";\n",
	}
	for path, contents := range files {
		require.NoError(t, util.WriteFile(fs, path, []byte(contents), 0644))
	}
}

// New loads the fixture from a fresh memory file system.
func New(t testing.TB) *Fixture {
	t.Helper()
	fs := memfs.New()
	Files(t, fs)
	return Load(t, fs)
}

// Load loads the fixture from fs, which may hold edited copies of the
// files Files writes.
func Load(t testing.TB, fs billy.Filesystem) *Fixture {
	t.Helper()
	specs := pbxspec.NewManager()
	require.NoError(t, pbxspec.NewLoader(fs, specs).RegisterDomain(pbxspec.DefaultDomain, DeveloperRoot+"/Specs/default"))
	sdks, err := xcsdk.Load(fs, DeveloperRoot+"/registry.hcl", DeveloperRoot, nil)
	require.NoError(t, err)

	defaults := pbxbuild.DefaultLevels([]string{"HOME=/home/test"}, pbxsetting.LocalUser{UserName: "test", UserID: 501, GroupName: "staff", GroupID: 20, Home: "/home/test"})
	build := pbxbuild.NewBuildEnvironment(fs, specs, sdks, defaults, nil)

	workspace, err := pbxbuild.NewWorkspaceContext(fs, ProjectPath, "test", nil)
	require.NoError(t, err)
	return &Fixture{FS: fs, Build: build, Workspace: workspace}
}

// Context returns a build context for the App scheme.
func (f *Fixture) Context(action string) *pbxbuild.BuildContext {
	ctx := pbxbuild.NewBuildContext(f.Workspace, action, nil)
	ctx.Scheme = f.Workspace.Scheme(SchemeName)
	ctx.DerivedDataRoot = DerivedDataRoot
	return ctx
}

// Target returns the target called name.
func (f *Fixture) Target(t testing.TB, name string) *pbxproj.Target {
	t.Helper()
	for _, target := range f.Workspace.Targets() {
		if target.Name == name {
			return target
		}
	}
	require.FailNow(t, "no target "+name)
	return nil
}

// Resolve resolves the environments of the scheme's targets in build
// order.
func (f *Fixture) Resolve(t testing.TB, ctx *pbxbuild.BuildContext) ([]*pbxproj.Target, map[*pbxproj.Target]*pbxbuild.TargetEnvironment) {
	t.Helper()
	graph, err := (&pbxbuild.DependencyResolver{Context: ctx}).ResolveSchemeDependencies()
	require.NoError(t, err)
	ok, order := graph.Ordered()
	require.True(t, ok)

	envs := make(map[*pbxproj.Target]*pbxbuild.TargetEnvironment)
	for _, target := range order {
		var deps []*pbxbuild.TargetEnvironment
		for _, dep := range graph.Closure(target) {
			deps = append(deps, envs[dep])
		}
		te, err := pbxbuild.ResolveTargetEnvironment(f.Build, ctx, target, deps)
		require.NoError(t, err)
		envs[target] = te
	}
	return order, envs
}
