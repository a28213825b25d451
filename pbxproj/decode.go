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

package pbxproj

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
)

// A Decoder turns the bytes of a project file into an object tree.
type Decoder func(data []byte) (any, error)

// DecodeJSON reads the JSON rendering of a project file, as written by
// "plutil -convert json".
func DecodeJSON(data []byte) (any, error) {
	return oj.Parse(data)
}

var (
	objectsPath    = jp.MustParseString("$.objects")
	rootObjectPath = jp.MustParseString("$.rootObject")
)

// Load reads <path>/project.pbxproj with DecodeJSON.
func Load(fs billy.Filesystem, path string) (*Project, error) {
	return LoadWith(fs, path, DecodeJSON)
}

// LoadWith reads <path>/project.pbxproj with decode.
func LoadWith(fs billy.Filesystem, path string, decode Decoder) (*Project, error) {
	data, err := util.ReadFile(fs, path+"/project.pbxproj")
	if err != nil {
		return nil, err
	}
	tree, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Decode(tree, path)
}

// Decode links the objects of a decoded project file into a Project.  path
// is the .xcodeproj bundle the tree was read from.
func Decode(tree any, path string) (*Project, error) {
	d := &decoder{
		path:    path,
		files:   make(map[string]*FileReference),
		targets: make(map[string]*Target),
		proxies: make(map[string]*ContainerItemProxy),
	}
	objects, ok := first(objectsPath.Get(tree)).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: no objects dictionary", path)
	}
	d.objects = objects
	rootID, ok := first(rootObjectPath.Get(tree)).(string)
	if !ok {
		return nil, fmt.Errorf("%s: no rootObject", path)
	}
	return d.project(rootID)
}

func first(results []any) any {
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

type object map[string]any

func (o object) str(key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func (o object) integer(key string) int {
	switch v := o[key].(type) {
	case int64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

func (o object) boolean(key string) bool {
	switch v := o[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case string:
		return pbxsetting.ParseBoolean(v)
	}
	return false
}

func (o object) ids(key string) []string {
	return stringList(o[key])
}

func stringList(v any) []string {
	switch v := v.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return pbxsetting.ParseList(v)
	}
	return nil
}

type decoder struct {
	path    string
	objects map[string]any
	proj    *Project
	files   map[string]*FileReference
	targets map[string]*Target
	proxies map[string]*ContainerItemProxy
}

func (d *decoder) object(id, wantIsa string) (object, error) {
	raw, ok := d.objects[id].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: object %s not found", d.path, id)
	}
	o := object(raw)
	if wantIsa != "" && o.str("isa") != wantIsa {
		return nil, fmt.Errorf("%s: object %s is %s, expected %s", d.path, id, o.str("isa"), wantIsa)
	}
	return o, nil
}

func (d *decoder) project(id string) (*Project, error) {
	o, err := d.object(id, "PBXProject")
	if err != nil {
		return nil, err
	}
	p := &Project{
		ID:             id,
		Path:           d.path,
		Name:           pathtools.BaseNameWithoutExtension(d.path),
		ProjectDirPath: o.str("projectDirPath"),
		ProjectRoot:    o.str("projectRoot"),
		fileReferences: d.files,
	}
	d.proj = p

	if p.BuildConfigurationList, err = d.configurationList(o.str("buildConfigurationList")); err != nil {
		return nil, err
	}
	if id := o.str("mainGroup"); id != "" {
		if p.MainGroup, err = d.fileReference(id, nil); err != nil {
			return nil, err
		}
	}
	if id := o.str("productRefGroup"); id != "" {
		// The product group is usually a child of the main group already.
		if p.ProductRefGroup, err = d.fileReference(id, nil); err != nil {
			return nil, err
		}
	}

	// Create every target before linking dependencies, which may point
	// at targets declared later.
	targetIDs := o.ids("targets")
	for _, tid := range targetIDs {
		to, err := d.object(tid, "")
		if err != nil {
			return nil, err
		}
		kind, ok := targetIsas[to.str("isa")]
		if !ok {
			return nil, fmt.Errorf("%s: object %s: unknown target type %s", d.path, tid, to.str("isa"))
		}
		t := &Target{ID: tid, Kind: kind, Name: to.str("name"), ProductName: to.str("productName"), Project: p}
		d.targets[tid] = t
		p.Targets = append(p.Targets, t)
	}
	for _, t := range p.Targets {
		if err := d.fillTarget(t); err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
	}
	return p, nil
}

func (d *decoder) fillTarget(t *Target) error {
	o, err := d.object(t.ID, "")
	if err != nil {
		return err
	}
	if t.BuildConfigurationList, err = d.configurationList(o.str("buildConfigurationList")); err != nil {
		return err
	}
	for _, id := range o.ids("buildPhases") {
		phase, err := d.buildPhase(id)
		if err != nil {
			return err
		}
		t.BuildPhases = append(t.BuildPhases, phase)
	}
	for _, id := range o.ids("dependencies") {
		dep, err := d.targetDependency(id)
		if err != nil {
			return err
		}
		t.Dependencies = append(t.Dependencies, dep)
	}

	switch t.Kind {
	case NativeTarget:
		t.ProductType = o.str("productType")
		if id := o.str("productReference"); id != "" {
			if t.ProductReference, err = d.fileReference(id, nil); err != nil {
				return err
			}
		}
		for _, id := range o.ids("buildRules") {
			rule, err := d.buildRule(id)
			if err != nil {
				return err
			}
			t.BuildRules = append(t.BuildRules, rule)
		}
	case LegacyTarget:
		t.BuildToolPath = o.str("buildToolPath")
		t.BuildArgumentsString = o.str("buildArgumentsString")
		t.BuildWorkingDirectory = o.str("buildWorkingDirectory")
		t.PassBuildSettingsInEnvironment = o.boolean("passBuildSettingsInEnvironment")
	}
	return nil
}

func (d *decoder) configurationList(id string) (*ConfigurationList, error) {
	if id == "" {
		return nil, nil
	}
	o, err := d.object(id, "XCConfigurationList")
	if err != nil {
		return nil, err
	}
	list := &ConfigurationList{
		ID:                            id,
		DefaultConfigurationName:      o.str("defaultConfigurationName"),
		DefaultConfigurationIsVisible: o.boolean("defaultConfigurationIsVisible"),
	}
	for _, cid := range o.ids("buildConfigurations") {
		co, err := d.object(cid, "XCBuildConfiguration")
		if err != nil {
			return nil, err
		}
		config := &BuildConfiguration{
			ID:            cid,
			Name:          co.str("name"),
			BuildSettings: settingsLevel(co["buildSettings"]),
		}
		if ref := co.str("baseConfigurationReference"); ref != "" {
			if config.BaseConfigurationReference, err = d.fileReference(ref, nil); err != nil {
				return nil, err
			}
		}
		list.BuildConfigurations = append(list.BuildConfigurations, config)
	}
	return list, nil
}

// settingsLevel converts a buildSettings dictionary.  Array values join
// into lists; keys may carry conditions.
func settingsLevel(v any) pbxsetting.Level {
	m, _ := v.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	settings := make([]pbxsetting.Setting, 0, len(keys))
	for _, k := range keys {
		var value string
		switch v := m[k].(type) {
		case []any:
			value = pbxsetting.FormatList(stringList(v))
		default:
			value = object(m).str(k)
		}
		if s, ok := pbxsetting.ParseSetting(k + " = " + value); ok {
			settings = append(settings, s)
		} else {
			settings = append(settings, pbxsetting.Create(k, value))
		}
	}
	return pbxsetting.NewLevel(settings)
}

func (d *decoder) fileReference(id string, parent *FileReference) (*FileReference, error) {
	if f, ok := d.files[id]; ok {
		if f.Parent == nil && parent != nil {
			f.Parent = parent
		}
		return f, nil
	}
	o, err := d.object(id, "")
	if err != nil {
		return nil, err
	}
	f := &FileReference{
		ID:                id,
		Isa:               o.str("isa"),
		Name:              o.str("name"),
		Path:              o.str("path"),
		SourceTree:        o.str("sourceTree"),
		ExplicitFileType:  o.str("explicitFileType"),
		LastKnownFileType: o.str("lastKnownFileType"),
		Parent:            parent,
	}
	switch f.Isa {
	case IsaFileReference, IsaGroup, IsaVariantGroup, IsaVersionGroup:
	case IsaReferenceProxy:
		if f.ExplicitFileType == "" {
			f.ExplicitFileType = o.str("fileType")
		}
		if ref := o.str("remoteRef"); ref != "" {
			if f.RemoteRef, err = d.proxy(ref); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%s: object %s: %s is not a file reference", d.path, id, f.Isa)
	}
	d.files[id] = f
	for _, cid := range o.ids("children") {
		child, err := d.fileReference(cid, f)
		if err != nil {
			return nil, err
		}
		f.Children = append(f.Children, child)
	}
	return f, nil
}

func (d *decoder) proxy(id string) (*ContainerItemProxy, error) {
	if p, ok := d.proxies[id]; ok {
		return p, nil
	}
	o, err := d.object(id, "PBXContainerItemProxy")
	if err != nil {
		return nil, err
	}
	p := &ContainerItemProxy{
		ID:                   id,
		ContainerPortal:      o.str("containerPortal"),
		ProxyType:            o.integer("proxyType"),
		RemoteGlobalIDString: o.str("remoteGlobalIDString"),
		RemoteInfo:           o.str("remoteInfo"),
	}
	d.proxies[id] = p
	return p, nil
}

func (d *decoder) targetDependency(id string) (*TargetDependency, error) {
	o, err := d.object(id, "PBXTargetDependency")
	if err != nil {
		return nil, err
	}
	dep := &TargetDependency{ID: id, Name: o.str("name")}
	if ref := o.str("targetProxy"); ref != "" {
		if dep.TargetProxy, err = d.proxy(ref); err != nil {
			return nil, err
		}
	}
	if tid := o.str("target"); tid != "" {
		dep.Target = d.targets[tid]
	} else if dep.TargetProxy != nil && dep.TargetProxy.ContainerPortal == d.proj.ID {
		dep.Target = d.targets[dep.TargetProxy.RemoteGlobalIDString]
	}
	return dep, nil
}

func (d *decoder) buildPhase(id string) (*BuildPhase, error) {
	o, err := d.object(id, "")
	if err != nil {
		return nil, err
	}
	kind, ok := phaseIsas[o.str("isa")]
	if !ok {
		return nil, fmt.Errorf("%s: object %s: unknown build phase %s", d.path, id, o.str("isa"))
	}
	phase := &BuildPhase{
		ID:                                 id,
		Kind:                               kind,
		Name:                               o.str("name"),
		RunOnlyForDeploymentPostprocessing: o.boolean("runOnlyForDeploymentPostprocessing"),
		DstPath:                            o.str("dstPath"),
		DstSubfolderSpec:                   o.integer("dstSubfolderSpec"),
		ShellPath:                          o.str("shellPath"),
		ShellScript:                        o.str("shellScript"),
		InputPaths:                         o.ids("inputPaths"),
		OutputPaths:                        o.ids("outputPaths"),
		ShowEnvVarsInLog:                   !o.has("showEnvVarsInLog") || o.boolean("showEnvVarsInLog"),
	}
	for _, fid := range o.ids("files") {
		fo, err := d.object(fid, "PBXBuildFile")
		if err != nil {
			return nil, err
		}
		bf := &BuildFile{ID: fid}
		if settings, ok := fo["settings"].(map[string]any); ok {
			bf.Settings = settings
		}
		if ref := fo.str("fileRef"); ref != "" {
			if bf.FileRef, err = d.fileReference(ref, nil); err != nil {
				return nil, err
			}
		}
		phase.Files = append(phase.Files, bf)
	}
	return phase, nil
}

func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (d *decoder) buildRule(id string) (*BuildRule, error) {
	o, err := d.object(id, "PBXBuildRule")
	if err != nil {
		return nil, err
	}
	return &BuildRule{
		ID:                       id,
		Name:                     o.str("name"),
		CompilerSpec:             o.str("compilerSpec"),
		FileType:                 o.str("fileType"),
		FilePatterns:             o.str("filePatterns"),
		IsEditable:               o.boolean("isEditable"),
		Script:                   o.str("script"),
		OutputFiles:              o.ids("outputFiles"),
		OutputFilesCompilerFlags: o.ids("outputFilesCompilerFlags"),
	}, nil
}
