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

package xcsdk

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// hclRegistry is the top-level structure of a registry file.
type hclRegistry struct {
	Toolchains []*hclToolchain `hcl:"toolchain,block"`
	Platforms  []*hclPlatform  `hcl:"platform,block"`
}

type hclToolchain struct {
	Identifier string   `hcl:"identifier,label"`
	Path       string   `hcl:"path"`
	Aliases    []string `hcl:"aliases,optional"`
}

type hclPlatform struct {
	Name             string            `hcl:"name,label"`
	Identifier       string            `hcl:"identifier,optional"`
	Path             string            `hcl:"path"`
	Family           string            `hcl:"family,optional"`
	ParentDomain     string            `hcl:"parent_domain,optional"`
	DefaultSettings  map[string]string `hcl:"default_settings,optional"`
	OverrideSettings map[string]string `hcl:"override_settings,optional"`
	SDKs             []*hclSDK         `hcl:"sdk,block"`
}

type hclSDK struct {
	CanonicalName           string            `hcl:"canonical_name,label"`
	DisplayName             string            `hcl:"display_name,optional"`
	Version                 string            `hcl:"version"`
	Path                    string            `hcl:"path"`
	DefaultDeploymentTarget string            `hcl:"default_deployment_target,optional"`
	Toolchains              []string          `hcl:"toolchains,optional"`
	DefaultSettings         map[string]string `hcl:"default_settings,optional"`
	CustomProperties        map[string]string `hcl:"custom_properties,optional"`
}

// Load reads an HCL registry file.  Expressions may refer to the variable
// developer_root, bound to developerRoot.
func Load(fs billy.Filesystem, path, developerRoot string, logger *slog.Logger) (*Manager, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, developerRoot, logger)
}

// Parse decodes registry source.  filename is used in diagnostics.
func Parse(src []byte, filename, developerRoot string, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse registry %s: %w", filename, diags)
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"developer_root": cty.StringVal(developerRoot),
		},
	}
	var reg hclRegistry
	diags = gohcl.DecodeBody(file.Body, ctx, &reg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode registry %s: %w", filename, diags)
	}

	m := &Manager{DeveloperRoot: developerRoot}
	for _, t := range reg.Toolchains {
		m.Toolchains = append(m.Toolchains, &Toolchain{
			Identifier: t.Identifier,
			Path:       t.Path,
			Aliases:    t.Aliases,
		})
	}
	for i, p := range reg.Platforms {
		platform := &Platform{
			Name:             p.Name,
			Identifier:       p.Identifier,
			Path:             p.Path,
			Family:           p.Family,
			ParentDomain:     p.ParentDomain,
			DefaultSettings:  p.DefaultSettings,
			OverrideSettings: p.OverrideSettings,
		}
		for _, s := range p.SDKs {
			platform.SDKs = append(platform.SDKs, &SDK{
				CanonicalName:           s.CanonicalName,
				DisplayName:             s.DisplayName,
				Version:                 s.Version,
				Path:                    s.Path,
				DefaultDeploymentTarget: s.DefaultDeploymentTarget,
				Toolchains:              s.Toolchains,
				DefaultSettings:         s.DefaultSettings,
				CustomProperties:        s.CustomProperties,
				platform:                i,
			})
		}
		m.Platforms = append(m.Platforms, platform)
	}
	for _, p := range m.Platforms {
		for _, s := range p.SDKs {
			for _, id := range s.Toolchains {
				if m.FindToolchain(id) == nil {
					logger.Warn("SDK references unknown toolchain", "sdk", s.CanonicalName, "toolchain", id)
				}
			}
		}
	}
	logger.Debug("loaded SDK registry", "path", filename, "platforms", len(m.Platforms), "toolchains", len(m.Toolchains))
	return m, nil
}
