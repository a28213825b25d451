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
	"github.com/xcbuild/xcbuild/dependency"
	"github.com/xcbuild/xcbuild/pbxsetting"
)

type Architecture struct {
	*Specification
	RealArchitectures       []string
	ArchitectureSetting     string
	PerArchBuildSettingName string
	SortNumber              int
}

func newArchitecture(s *Specification) *Architecture {
	p := s.Properties
	return &Architecture{
		Specification:           s,
		RealArchitectures:       p.StringList("RealArchitectures"),
		ArchitectureSetting:     p.String("ArchitectureSetting"),
		PerArchBuildSettingName: p.String("PerArchBuildSettingName"),
		SortNumber:              p.Int("SortNumber"),
	}
}

// DefaultSetting returns the setting an architecture group defines, such as
// ARCHS_STANDARD = "arm64 x86_64".
func (a *Architecture) DefaultSetting() (pbxsetting.Setting, bool) {
	if a.ArchitectureSetting == "" {
		return pbxsetting.Setting{}, false
	}
	return pbxsetting.CreateLiteral(a.ArchitectureSetting, pbxsetting.FormatList(a.RealArchitectures)), true
}

type BuildPhase struct {
	*Specification
}

type BuildSystem struct {
	*Specification
	Options []PropertyOption
}

func newBuildSystem(s *Specification) *BuildSystem {
	options := decodeOptions(s.Properties["Options"])
	options = append(options, decodeOptions(s.Properties["Properties"])...)
	return &BuildSystem{Specification: s, Options: options}
}

// DefaultSettings returns the defaults of the build system's options.
func (b *BuildSystem) DefaultSettings() pbxsetting.Level {
	return optionsLevel(b.Options)
}

type Tool struct {
	*Specification
	ExecPath              string
	ExecDescription       string
	CommandLine           string
	RuleName              string
	Options               []PropertyOption
	EnvironmentVariables  map[string]string
	InputFileTypes        []string
	FileTypes             []string
	Architectures         []string
	Outputs               []string
	IsArchitectureNeutral bool
	SynthesizeBuildRule   bool

	DeeplyStatInputDirectories bool
}

func newTool(s *Specification) *Tool {
	p := s.Properties
	return &Tool{
		Specification:              s,
		ExecPath:                   p.String("ExecPath"),
		ExecDescription:            p.String("ExecDescription"),
		CommandLine:                p.String("CommandLine"),
		RuleName:                   p.String("RuleName"),
		Options:                    decodeOptions(p["Options"]),
		EnvironmentVariables:       p.StringMap("EnvironmentVariables"),
		InputFileTypes:             p.StringList("InputFileTypes"),
		FileTypes:                  p.StringList("FileTypes"),
		Architectures:              p.StringList("Architectures"),
		Outputs:                    p.StringList("Outputs"),
		IsArchitectureNeutral:      p.Bool("IsArchitectureNeutral"),
		SynthesizeBuildRule:        p.Bool("SynthesizeBuildRule"),
		DeeplyStatInputDirectories: p.Bool("DeeplyStatInputDirectories"),
	}
}

// DefaultSettings returns the defaults of the tool's options.
func (t *Tool) DefaultSettings() pbxsetting.Level {
	return optionsLevel(t.Options)
}

// AcceptedFileTypes lists the file types the tool can process: its
// FileTypes, or its InputFileTypes when FileTypes is empty.
func (t *Tool) AcceptedFileTypes() []string {
	if len(t.FileTypes) > 0 {
		return t.FileTypes
	}
	return t.InputFileTypes
}

type Compiler struct {
	*Tool
	OutputDir               string
	OutputFileExtension     string
	DependencyInfoFormat    dependency.Format
	HasDependencyInfo       bool
	SupportsHeadermaps      bool
	SourceFileOption        string
	ExecCPlusPlusLinkerPath string
}

func newCompiler(s *Specification) *Compiler {
	p := s.Properties
	c := &Compiler{
		Tool:                    newTool(s),
		OutputDir:               p.String("OutputDir"),
		OutputFileExtension:     p.String("OutputFileExtension"),
		SupportsHeadermaps:      p.Bool("SupportsHeadermaps"),
		SourceFileOption:        p.String("SourceFileOption"),
		ExecCPlusPlusLinkerPath: p.String("ExecCPlusPlusLinkerPath"),
	}
	if f := p.String("DependencyInfoFormat"); f != "" {
		if format, err := dependency.ParseFormat(f); err == nil {
			c.DependencyInfoFormat = format
			c.HasDependencyInfo = true
		}
	}
	return c
}

type Linker struct {
	*Tool
	BinaryFormats         []string
	SupportsInputFileList bool
	DependencyInfoFile    string
}

func newLinker(s *Specification) *Linker {
	p := s.Properties
	return &Linker{
		Tool:                  newTool(s),
		BinaryFormats:         p.StringList("BinaryFormats"),
		SupportsInputFileList: p.Bool("SupportsInputFileList"),
		DependencyInfoFile:    p.String("DependencyInfoFile"),
	}
}

type FileType struct {
	*Specification
	Extensions         []string
	FilenamePatterns   []string
	MIMETypes          []string
	UTI                string
	Language           string
	ComputerLanguage   string
	GccDialectName     string
	IsWrapperFolder    bool
	IsFolder           bool
	IsFrameworkWrapper bool
	IsStaticLibrary    bool
	IsDynamicLibrary   bool
	IsSourceCode       bool
	IsTextFile         bool
	IsTransparent      bool

	IsScannedForIncludes bool
	AppliesToBuildRules  bool
}

func newFileType(s *Specification) *FileType {
	p := s.Properties
	ft := &FileType{
		Specification:        s,
		Extensions:           p.StringList("Extensions"),
		FilenamePatterns:     p.StringList("FilenamePatterns"),
		MIMETypes:            p.StringList("MIMETypes"),
		UTI:                  p.String("UTI"),
		Language:             p.String("Language"),
		ComputerLanguage:     p.String("ComputerLanguage"),
		GccDialectName:       p.String("GccDialectName"),
		IsWrapperFolder:      p.Bool("IsWrapperFolder"),
		IsFolder:             p.Bool("IsFolder"),
		IsFrameworkWrapper:   p.Bool("IsFrameworkWrapper"),
		IsStaticLibrary:      p.Bool("IsStaticLibrary"),
		IsDynamicLibrary:     p.Bool("IsDynamicLibrary"),
		IsSourceCode:         p.Bool("IsSourceCode"),
		IsTextFile:           p.Bool("IsTextFile"),
		IsTransparent:        p.Bool("IsTransparent"),
		IsScannedForIncludes: p.Bool("IsScannedForIncludes"),
		AppliesToBuildRules:  p.Bool("AppliesToBuildRules"),
	}
	return ft
}

type ProductType struct {
	*Specification
	DefaultTargetName      string
	DefaultBuildProperties pbxsetting.Level
	PackageTypes           []string
	IsWrapper              bool
	HasInfoPlist           bool
	// Unknown is set on the placeholder used when a target names a
	// product type the database lacks.
	Unknown bool
}

func newProductType(s *Specification) *ProductType {
	p := s.Properties
	return &ProductType{
		Specification:          s,
		DefaultTargetName:      p.String("DefaultTargetName"),
		DefaultBuildProperties: p.Level("DefaultBuildProperties"),
		PackageTypes:           p.StringList("PackageTypes"),
		IsWrapper:              p.Bool("IsWrapper"),
		HasInfoPlist:           p.Bool("HasInfoPlist"),
	}
}

// UnknownProductType is the placeholder for an unresolvable product type.
func UnknownProductType(identifier string) *ProductType {
	return &ProductType{
		Specification: &Specification{
			Kind:       KindProductType,
			Identifier: identifier,
			Domain:     DefaultDomain,
			Name:       "Unknown",
			Properties: Properties{},
		},
		Unknown: true,
	}
}

// ProductReference describes the file a package type produces.
type ProductReference struct {
	FileType     string
	Name         string
	IsLaunchable bool
}

type PackageType struct {
	*Specification
	DefaultBuildSettings pbxsetting.Level
	ProductReference     ProductReference
}

func newPackageType(s *Specification) *PackageType {
	p := s.Properties
	pt := &PackageType{
		Specification:        s,
		DefaultBuildSettings: p.Level("DefaultBuildSettings"),
	}
	if ref := p.Dict("ProductReference"); ref != nil {
		pt.ProductReference = ProductReference{
			FileType:     ref.String("FileType"),
			Name:         ref.String("Name"),
			IsLaunchable: ref.Bool("IsLaunchable"),
		}
	}
	return pt
}

// A BuildRule maps file types or filename patterns to the compiler that
// processes them, or to a script.
type BuildRule struct {
	*Specification
	FileTypes    []string
	FilePatterns string
	CompilerSpec string
	// Script and Outputs describe a custom rule; CompilerSpec is then
	// "com.apple.compilers.proxy.script".
	Script  string
	Outputs []string
}

// ScriptCompilerSpec is the CompilerSpec of rules that run a script.
const ScriptCompilerSpec = "com.apple.compilers.proxy.script"

func newBuildRule(s *Specification) *BuildRule {
	p := s.Properties
	return &BuildRule{
		Specification: s,
		FileTypes:     p.StringList("FileType"),
		FilePatterns:  p.String("FilePatterns"),
		CompilerSpec:  p.String("CompilerSpec"),
		Script:        p.String("Script"),
		Outputs:       p.StringList("Outputs"),
	}
}
