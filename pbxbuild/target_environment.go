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

package pbxbuild

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxproj"
	"github.com/xcbuild/xcbuild/pbxsetting"
	"github.com/xcbuild/xcbuild/pbxspec"
	"github.com/xcbuild/xcbuild/xcsdk"
)

// A TargetEnvironment is the resolved settings of one target in one
// configuration, with the specifications and SDK they select.
type TargetEnvironment struct {
	Target        *pbxproj.Target
	Configuration string

	// ProductType is nil for aggregate and legacy targets.
	ProductType *pbxspec.ProductType
	PackageType *pbxspec.PackageType

	SDK        *xcsdk.SDK
	Platform   *xcsdk.Platform
	Toolchains []*xcsdk.Toolchain
	// Domains is the specification domain chain of the target's platform.
	Domains []string

	Architectures []string
	Variants      []string
	// Condition selects conditional settings for the configuration and
	// SDK; Variant adds the architecture and variant.
	Condition   pbxsetting.Condition
	Environment *pbxsetting.Environment

	ExecutablePaths  []string
	WorkingDirectory string
	FileTypes        *FileTypeResolver
	BuildRules       *TargetBuildRules
	// Dependencies are the environments of the targets this one depends
	// on, in build order.
	Dependencies []*TargetEnvironment
}

// ResolveTargetEnvironment composes the settings of target.  deps are the
// resolved environments of the target's dependencies; their product paths
// become visible as DEPENDENCY_PRODUCT_PATHS and PRODUCT_PATH_<name>.
//
// Missing optional pieces such as an unknown SDK or product type are
// reported through the context's diagnostics and resolution continues.
func ResolveTargetEnvironment(build *BuildEnvironment, ctx *BuildContext, target *pbxproj.Target, deps []*TargetEnvironment) (*TargetEnvironment, error) {
	project := target.Project
	if project == nil {
		return nil, fmt.Errorf("target %q has no project", target.Name)
	}
	te := &TargetEnvironment{
		Target:           target,
		Configuration:    ctx.ConfigurationFor(target),
		WorkingDirectory: SourceRoot(project),
		Dependencies:     deps,
	}
	te.Condition = pbxsetting.NewCondition(map[string]string{pbxsetting.ConditionConfig: te.Configuration})

	projectConfig := project.BuildConfigurationList.Get(te.Configuration)
	if projectConfig == nil {
		projectConfig = project.BuildConfigurationList.Default()
		ctx.Diagnostics.Warn(target.Name, "", fmt.Sprintf("project has no configuration %q", te.Configuration))
	}
	targetConfig := target.BuildConfigurationList.Get(te.Configuration)
	if targetConfig == nil {
		targetConfig = target.BuildConfigurationList.Default()
		ctx.Diagnostics.Warn(target.Name, "", fmt.Sprintf("target has no configuration %q", te.Configuration))
	}

	pathLevel := ProjectPathLevel(project)
	xcconfig := func(bc *pbxproj.BuildConfiguration) pbxsetting.Level {
		if bc == nil || bc.BaseConfigurationReference == nil {
			return pbxsetting.Level{}
		}
		env := pbxsetting.NewEnvironment([]pbxsetting.Level{pathLevel}, build.Base())
		path := env.ExpandString(bc.BaseConfigurationReference.ResolvedPath(), te.Condition)
		config, err := pbxsetting.ParseXCConfig(build.FS, path, build.SDKs.DeveloperRoot)
		if err != nil {
			ctx.Diagnostics.Warn(target.Name, path, fmt.Sprintf("reading configuration file: %v", err))
			return pbxsetting.Level{}
		}
		for _, problem := range config.Problems {
			ctx.Diagnostics.Warn(target.Name, path, problem.Error())
		}
		return config.Level
	}
	configLevel := func(bc *pbxproj.BuildConfiguration) pbxsetting.Level {
		if bc == nil {
			return pbxsetting.Level{}
		}
		return bc.BuildSettings
	}

	// Levels above the SDK, highest priority first.
	upper := []pbxsetting.Level{
		ctx.Overrides,
		configLevel(targetConfig),
		xcconfig(targetConfig),
		configLevel(projectConfig),
		xcconfig(projectConfig),
		ctx.WorkspaceLevel(),
		pathLevel,
	}

	// The SDK is chosen by SDKROOT, which may itself be conditional on
	// the configuration only.
	pre := pbxsetting.NewEnvironment(upper, build.Base())
	if sdkroot := pre.Value("SDKROOT", te.Condition); sdkroot != "" {
		te.SDK = build.SDKs.FindSDK(sdkroot)
		if te.SDK == nil {
			ctx.Diagnostics.Add(Diagnostic{
				Severity: SeverityWarning,
				Target:   target.Name,
				Setting:  "SDKROOT",
				Message:  fmt.Sprintf("unknown SDK %q", sdkroot),
			})
		}
	}
	var sdkLevels []pbxsetting.Level
	var overrideLevel pbxsetting.Level
	if te.SDK != nil {
		te.Platform = build.SDKs.Platform(te.SDK)
		te.Toolchains = build.SDKs.SDKToolchains(te.SDK)
		te.Condition = te.Condition.With(pbxsetting.ConditionSDK, te.SDK.CanonicalName)
		sdkLevels = append(sdkLevels, te.SDK.Settings())
		if te.Platform != nil {
			sdkLevels = append(sdkLevels, te.Platform.Settings())
			overrideLevel = te.Platform.OverrideLevel()
		}
	}
	sdkLevels = append(sdkLevels, build.SDKs.Settings())
	if te.Platform != nil {
		te.Domains = build.Specs.DomainChain(te.Platform.Name)
	} else {
		te.Domains = build.Specs.DomainChain()
	}

	var typeLevels []pbxsetting.Level
	if target.Kind == pbxproj.NativeTarget {
		if err := te.resolveProductType(build, ctx); err != nil {
			return nil, err
		}
		if te.PackageType != nil {
			typeLevels = append(typeLevels, te.PackageType.DefaultBuildSettings)
		}
		typeLevels = append(typeLevels, te.ProductType.DefaultBuildProperties)
	}

	var levels []pbxsetting.Level
	if len(deps) > 0 {
		levels = append(levels, dependencyLevel(deps))
	}
	levels = append(levels, upper[0], overrideLevel)
	levels = append(levels, upper[1:]...)
	levels = append(levels, te.computedLevel())
	levels = append(levels, sdkLevels...)
	levels = append(levels, te.architectureLevel(build))
	levels = append(levels, typeLevels...)
	te.Environment = pbxsetting.NewEnvironment(levels, build.Base())

	te.Architectures = te.resolveArchitectures(ctx)
	te.Variants = te.Environment.List("BUILD_VARIANTS", te.Condition)
	if len(te.Variants) == 0 {
		te.Variants = []string{"normal"}
	}

	te.ExecutablePaths = build.SDKs.ExecutablePaths(te.SDK)
	if path := te.Environment.Value("PATH", te.Condition); path != "" {
		te.ExecutablePaths = append(te.ExecutablePaths, strings.Split(path, string(os.PathListSeparator))...)
	}
	te.ExecutablePaths = pathtools.Uniq(te.ExecutablePaths)

	te.FileTypes = NewFileTypeResolver(build.Specs, te.Domains)
	te.BuildRules = NewTargetBuildRules(build.Specs, te.Domains, target, ctx.Diagnostics)
	return te, nil
}

func (te *TargetEnvironment) resolveProductType(build *BuildEnvironment, ctx *BuildContext) error {
	target := te.Target
	if target.ProductType == "" {
		ctx.Diagnostics.Warn(target.Name, "", ErrNoProductType.Error())
		te.ProductType = pbxspec.UnknownProductType("")
		return nil
	}
	pt, err := build.Specs.ProductType(target.ProductType, te.Domains...)
	switch {
	case errors.Is(err, pbxspec.ErrNotFound):
		ctx.Diagnostics.Warn(target.Name, "", fmt.Sprintf("unknown product type %q", target.ProductType))
		pt = pbxspec.UnknownProductType(target.ProductType)
	case err != nil:
		return fmt.Errorf("target %q: %w", target.Name, err)
	}
	te.ProductType = pt

	for _, id := range pt.PackageTypes {
		pkg, err := build.Specs.PackageType(id, te.Domains...)
		if err != nil {
			ctx.Diagnostics.Warn(target.Name, "", fmt.Sprintf("package type %q: %v", id, err))
			continue
		}
		te.PackageType = pkg
		break
	}
	return nil
}

// computedLevel holds the settings derived from the target itself: names
// and the directory layout below SYMROOT and OBJROOT.
func (te *TargetEnvironment) computedLevel() pbxsetting.Level {
	target := te.Target
	productName := target.ProductName
	if productName == "" {
		productName = target.Name
	}
	effectivePlatform := ""
	if te.Platform != nil && te.Platform.Name != "macosx" {
		effectivePlatform = "-" + te.Platform.Name
	}
	settings := []pbxsetting.Setting{
		pbxsetting.CreateLiteral("TARGET_NAME", target.Name),
		pbxsetting.Create("TARGETNAME", "$(TARGET_NAME)"),
		pbxsetting.CreateLiteral("PRODUCT_NAME", productName),
		pbxsetting.CreateLiteral("CONFIGURATION", te.Configuration),
		pbxsetting.CreateLiteral("EFFECTIVE_PLATFORM_NAME", effectivePlatform),
		pbxsetting.Create("BUILD_DIR", "$(SYMROOT)"),
		pbxsetting.Create("BUILD_ROOT", "$(SYMROOT)"),
		pbxsetting.Create("CONFIGURATION_BUILD_DIR", "$(BUILD_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)"),
		pbxsetting.Create("BUILT_PRODUCTS_DIR", "$(CONFIGURATION_BUILD_DIR)"),
		pbxsetting.Create("TARGET_BUILD_DIR", "$(CONFIGURATION_BUILD_DIR)"),
		pbxsetting.Create("PROJECT_TEMP_DIR", "$(OBJROOT)/$(PROJECT_NAME).build"),
		pbxsetting.Create("PROJECT_DERIVED_FILE_DIR", "$(PROJECT_TEMP_DIR)/DerivedSources"),
		pbxsetting.Create("CONFIGURATION_TEMP_DIR", "$(PROJECT_TEMP_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)"),
		pbxsetting.Create("TARGET_TEMP_DIR", "$(CONFIGURATION_TEMP_DIR)/$(TARGET_NAME).build"),
		pbxsetting.Create("DERIVED_FILES_DIR", "$(TARGET_TEMP_DIR)/DerivedSources"),
		pbxsetting.Create("OBJECT_FILE_DIR", "$(TARGET_TEMP_DIR)/Objects"),
		pbxsetting.Create("LINK_FILE_LIST_DIR", "$(OBJECT_FILE_DIR)"),
	}
	if te.ProductType != nil {
		settings = append(settings, pbxsetting.CreateLiteral("PRODUCT_TYPE", te.ProductType.Identifier))
	}
	if te.PackageType != nil {
		settings = append(settings, pbxsetting.CreateLiteral("PACKAGE_TYPE", te.PackageType.Identifier))
	}
	if len(te.Toolchains) > 0 {
		ids := make([]string, len(te.Toolchains))
		for i, t := range te.Toolchains {
			ids[i] = t.Identifier
		}
		settings = append(settings,
			pbxsetting.CreateLiteral("TOOLCHAINS", pbxsetting.FormatList(ids)),
			pbxsetting.CreateLiteral("TOOLCHAIN_DIR", te.Toolchains[0].Path))
	}
	return pbxsetting.NewLevel(settings)
}

// architectureLevel defines the architecture groups such as ARCHS_STANDARD.
func (te *TargetEnvironment) architectureLevel(build *BuildEnvironment) pbxsetting.Level {
	var settings []pbxsetting.Setting
	for _, a := range build.Specs.Architectures(te.Domains...) {
		if s, ok := a.DefaultSetting(); ok {
			settings = append(settings, s)
		}
	}
	return pbxsetting.NewLevel(settings)
}

func (te *TargetEnvironment) resolveArchitectures(ctx *BuildContext) []string {
	archs := te.Environment.List("ARCHS", te.Condition)
	if valid := te.Environment.List("VALID_ARCHS", te.Condition); len(valid) > 0 {
		allowed := make(map[string]bool, len(valid))
		for _, a := range valid {
			allowed[a] = true
		}
		var filtered []string
		for _, a := range archs {
			if allowed[a] {
				filtered = append(filtered, a)
			}
		}
		archs = filtered
	}
	archs = pathtools.Uniq(archs)
	if len(archs) == 0 && te.Target.Kind == pbxproj.NativeTarget {
		native := pbxsetting.NativeArchitecture()
		ctx.Diagnostics.Add(Diagnostic{
			Severity: SeverityWarning,
			Target:   te.Target.Name,
			Setting:  "ARCHS",
			Message:  "no valid architectures, using " + native,
		})
		archs = []string{native}
	}
	return archs
}

// dependencyLevel exposes the product paths of deps.
func dependencyLevel(deps []*TargetEnvironment) pbxsetting.Level {
	var paths []string
	var settings []pbxsetting.Setting
	for _, dep := range deps {
		path := dep.ProductPath()
		if path == "" {
			continue
		}
		paths = append(paths, path)
		settings = append(settings, pbxsetting.CreateLiteral(
			"PRODUCT_PATH_"+pbxsetting.C99Identifier(dep.Target.Name), path))
	}
	settings = append(settings, pbxsetting.CreateLiteral("DEPENDENCY_PRODUCT_PATHS", pbxsetting.FormatList(paths)))
	return pbxsetting.NewLevel(settings)
}

// Value expands the setting called name.
func (te *TargetEnvironment) Value(name string) string {
	return te.Environment.Value(name, te.Condition)
}

// ProductPath is the expanded path of the target's product, or "" for a
// target without one.
func (te *TargetEnvironment) ProductPath() string {
	if ref := te.Target.ProductReference; ref != nil {
		return te.Environment.ExpandString(ref.ResolvedPath(), te.Condition)
	}
	if name := te.Value("FULL_PRODUCT_NAME"); name != "" {
		return te.Value("BUILT_PRODUCTS_DIR") + "/" + name
	}
	return ""
}

// Variant returns the environment and condition for building arch in
// variant.
func (te *TargetEnvironment) Variant(arch, variant string) (*pbxsetting.Environment, pbxsetting.Condition) {
	condition := te.Condition.With(pbxsetting.ConditionArch, arch).With(pbxsetting.ConditionVariant, variant)
	current := pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("CURRENT_ARCH", arch),
		pbxsetting.CreateLiteral("arch", arch),
		pbxsetting.CreateLiteral("CURRENT_VARIANT", variant),
		pbxsetting.CreateLiteral("variant", variant),
		pbxsetting.Create("OBJECT_FILE_DIR_"+variant, "$(OBJECT_FILE_DIR)-"+variant),
		pbxsetting.Create("PER_ARCH_OBJECT_FILE_DIR", "$(OBJECT_FILE_DIR_"+variant+")/"+arch),
	})
	return te.Environment.Child(current), condition
}
