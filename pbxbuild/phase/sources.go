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

package phase

import (
	"strings"

	"github.com/xcbuild/xcbuild/pbxbuild"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
)

// sourceFile is a file on its way to an object file.
type sourceFile struct {
	path     string
	fileType *pbxspec.FileType
	rule     *pbxbuild.BuildRule
	flags    []string
}

type sourcesPass struct {
	e         *Environment
	settings  *pbxsetting.Environment
	condition pbxsetting.Condition
	key       archVariant
	// pchs holds the precompiled headers already scheduled.
	pchs map[string]bool
	invs []tool.Invocation
}

// Sources compiles the files of phase once for every variant and
// architecture.  Object files are kept for linking.
func (e *Environment) Sources(phase *pbxproj.BuildPhase) []tool.Invocation {
	pchs := make(map[string]bool)
	var invs []tool.Invocation
	for _, variant := range e.Target.Variants {
		for _, arch := range e.Target.Architectures {
			settings, condition := e.Target.Variant(arch, variant)
			pass := &sourcesPass{
				e:         e,
				settings:  settings,
				condition: condition,
				key:       archVariant{Variant: variant, Arch: arch},
				pchs:      pchs,
			}
			for _, f := range e.Files(phase, settings, condition, true) {
				pass.process(sourceFile{path: f.Path, fileType: f.FileType, rule: f.Rule, flags: f.Flags}, true)
			}
			invs = append(invs, pass.invs...)
		}
	}
	return invs
}

// process runs the file's rule.  Outputs of scripts and generic tools that
// a compiler rule accepts are compiled in turn when chain is set.
func (p *sourcesPass) process(src sourceFile, chain bool) {
	e := p.e
	switch {
	case src.rule.IsScript():
		inv := e.Script.Rule(e.Tools, p.settings, p.condition, src.rule.Script, src.path, src.rule.Outputs)
		p.invs = append(p.invs, inv)
		for i, out := range inv.Outputs {
			var flags []string
			if i < len(src.rule.OutputFlags) {
				flags = pbxsetting.ParseList(p.settings.ExpandString(src.rule.OutputFlags[i], p.condition))
			}
			p.generated(out, flags, chain)
		}
	case e.isClang(src.rule.Tool):
		p.compile(src)
	default:
		r, err := tool.NewResolver(e.Build.Specs, src.rule.Tool.Identifier, e.Target.Domains)
		if err != nil {
			e.fileError(src.path, err)
			return
		}
		inv := r.Resolve(e.Tools, p.settings, p.condition, []string{src.path}, nil, src.fileType)
		p.invs = append(p.invs, inv)
		for _, out := range inv.Outputs {
			if strings.HasSuffix(out, ".o") {
				e.objects[p.key] = append(e.objects[p.key], out)
				continue
			}
			p.generated(out, nil, chain)
		}
	}
}

// generated compiles a generated file if a tool rule accepts it.
func (p *sourcesPass) generated(path string, flags []string, chain bool) {
	if !chain {
		return
	}
	ft := p.e.Target.FileTypes.Resolve(path, false)
	rule := p.e.Target.BuildRules.Match(ft, path)
	if rule == nil || rule.IsScript() {
		return
	}
	p.process(sourceFile{path: path, fileType: ft, rule: rule, flags: flags}, false)
}

func (e *Environment) isClang(t *pbxspec.Tool) bool {
	if e.Clang == nil || t == nil {
		return false
	}
	return t.Identifier == e.Clang.Compiler.Identifier
}

func (p *sourcesPass) compile(src sourceFile) {
	e := p.e
	compiler := e.Clang.Compiler
	outputDir := "$(PER_ARCH_OBJECT_FILE_DIR)"
	if compiler.OutputDir != "" {
		outputDir = compiler.OutputDir
	}
	req := tool.CompileRequest{
		Input:       src.path,
		FileType:    src.fileType,
		OutputDir:   e.expandPath(p.settings, p.condition, outputDir),
		Flags:       src.flags,
		SearchPaths: e.searchPaths(p.settings, p.condition),
	}
	if e.headerMaps != nil {
		req.HeaderMapArguments = e.headerMaps.Arguments()
	}

	prefix := p.settings.Value("GCC_PREFIX_HEADER", p.condition)
	if prefix != "" && p.settings.Bool("GCC_PRECOMPILE_PREFIX_HEADER", p.condition) {
		info := tool.PrecompiledHeaderInfo{
			HeaderPath: e.expandPath(p.settings, p.condition, prefix),
			Dialect:    tool.Dialect(src.fileType),
			Arguments:  e.Clang.PrecompiledHeaderArguments(e.Tools, p.settings, p.condition, src.fileType, req.SearchPaths),
		}
		output := info.OutputPath(p.settings.Value("SHARED_PRECOMPS_DIR", p.condition))
		req.PrecompiledHeader = &info
		req.PrecompiledHeaderOutput = output
		if !p.pchs[output] {
			p.pchs[output] = true
			p.invs = append(p.invs, e.Clang.ResolvePrecompiledHeader(e.Tools, p.settings, p.condition, info, output))
		}
	}

	inv, object := e.Clang.Resolve(e.Tools, p.settings, p.condition, req)
	if e.headerMaps != nil {
		inv.InputDependencies = append(inv.InputDependencies, e.headerMaps.Paths()...)
	}
	p.invs = append(p.invs, inv)
	e.objects[p.key] = append(e.objects[p.key], object)
}
