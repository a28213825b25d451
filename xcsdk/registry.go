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

// Package xcsdk is the registry of developer platforms, SDKs and toolchains
// the build system resolves settings and executables against.
package xcsdk

import (
	"sort"
	"strconv"
	"strings"

	"github.com/xcbuild/xcbuild/pbxsetting"
)

type Toolchain struct {
	Identifier string
	Path       string
	Aliases    []string
}

// An SDK is one versioned SDK of a platform.
type SDK struct {
	CanonicalName           string
	DisplayName             string
	Version                 string
	Path                    string
	DefaultDeploymentTarget string
	// Toolchains lists toolchain identifiers, most preferred first.
	Toolchains       []string
	DefaultSettings  map[string]string
	CustomProperties map[string]string

	// platform indexes Manager.Platforms.  The manager owns both.
	platform int
}

type Platform struct {
	Name       string
	Identifier string
	Path       string
	Family     string
	// ParentDomain names the specification domain searched after this
	// platform's own, e.g. iphonesimulator falls back to iphoneos.
	ParentDomain     string
	DefaultSettings  map[string]string
	OverrideSettings map[string]string
	SDKs             []*SDK
}

// A Manager owns every platform, SDK and toolchain.  It is built once and
// read-only afterwards.
type Manager struct {
	DeveloperRoot string
	Platforms     []*Platform
	Toolchains    []*Toolchain
}

// Platform returns the platform that owns sdk.
func (m *Manager) Platform(sdk *SDK) *Platform {
	if sdk.platform < 0 || sdk.platform >= len(m.Platforms) {
		return nil
	}
	return m.Platforms[sdk.platform]
}

// FindPlatform looks a platform up by name or identifier.
func (m *Manager) FindPlatform(name string) *Platform {
	for _, p := range m.Platforms {
		if p.Name == name || (p.Identifier != "" && p.Identifier == name) {
			return p
		}
	}
	return nil
}

// FindToolchain looks a toolchain up by identifier or alias.
func (m *Manager) FindToolchain(name string) *Toolchain {
	for _, t := range m.Toolchains {
		if t.Identifier == name {
			return t
		}
		for _, a := range t.Aliases {
			if a == name {
				return t
			}
		}
	}
	return nil
}

// FindSDK resolves an SDKROOT value: a canonical name ("macosx10.15"), a
// platform name ("macosx", meaning its newest SDK) or an SDK path.
func (m *Manager) FindSDK(name string) *SDK {
	for _, p := range m.Platforms {
		for _, s := range p.SDKs {
			if s.CanonicalName == name || s.Path == name {
				return s
			}
		}
	}
	if p := m.FindPlatform(name); p != nil && len(p.SDKs) > 0 {
		newest := p.SDKs[0]
		for _, s := range p.SDKs[1:] {
			if compareVersions(s.Version, newest.Version) > 0 {
				newest = s
			}
		}
		return newest
	}
	return nil
}

// SDKToolchains returns the toolchains sdk uses that the manager knows,
// falling back to the default toolchain.
func (m *Manager) SDKToolchains(sdk *SDK) []*Toolchain {
	var out []*Toolchain
	for _, id := range sdk.Toolchains {
		if t := m.FindToolchain(id); t != nil {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		if t := m.FindToolchain("default"); t != nil {
			out = append(out, t)
		}
	}
	return out
}

// ExecutablePaths lists the directories searched for tools when building
// against sdk, most preferred first.
func (m *Manager) ExecutablePaths(sdk *SDK) []string {
	var paths []string
	if sdk != nil {
		paths = append(paths, sdk.Path+"/usr/bin")
		if p := m.Platform(sdk); p != nil {
			paths = append(paths, p.Path+"/Developer/usr/bin", p.Path+"/usr/bin")
		}
		for _, t := range m.SDKToolchains(sdk) {
			paths = append(paths, t.Path+"/usr/bin")
		}
	}
	if m.DeveloperRoot != "" {
		paths = append(paths, m.DeveloperRoot+"/usr/bin")
	}
	return paths
}

// Settings describes the developer installation.
func (m *Manager) Settings() pbxsetting.Level {
	root := m.DeveloperRoot
	return pbxsetting.NewLevel([]pbxsetting.Setting{
		pbxsetting.CreateLiteral("DEVELOPER_DIR", root),
		pbxsetting.Create("DEVELOPER_USR_DIR", "$(DEVELOPER_DIR)/usr"),
		pbxsetting.Create("DEVELOPER_BIN_DIR", "$(DEVELOPER_DIR)/usr/bin"),
		pbxsetting.Create("DEVELOPER_APPLICATIONS_DIR", "$(DEVELOPER_DIR)/Applications"),
		pbxsetting.Create("DEVELOPER_FRAMEWORKS_DIR", "$(DEVELOPER_DIR)/Library/Frameworks"),
		pbxsetting.Create("DEVELOPER_LIBRARY_DIR", "$(DEVELOPER_DIR)/Library"),
		pbxsetting.Create("DEVELOPER_TOOLS_DIR", "$(DEVELOPER_DIR)/Tools"),
		pbxsetting.Create("PLATFORM_DEVELOPER_BIN_DIR", "$(DEVELOPER_BIN_DIR)"),
	})
}

// Settings describes the platform, followed by its default settings.
func (p *Platform) Settings() pbxsetting.Level {
	settings := []pbxsetting.Setting{
		pbxsetting.CreateLiteral("PLATFORM_NAME", p.Name),
		pbxsetting.CreateLiteral("PLATFORM_DIR", p.Path),
		pbxsetting.Create("PLATFORM_DEVELOPER_USR_DIR", "$(PLATFORM_DIR)/Developer/usr"),
		pbxsetting.Create("PLATFORM_DEVELOPER_BIN_DIR", "$(PLATFORM_DIR)/Developer/usr/bin"),
		pbxsetting.Create("PLATFORM_DEVELOPER_SDK_DIR", "$(PLATFORM_DIR)/Developer/SDKs"),
		pbxsetting.CreateLiteral("PLATFORM_FAMILY_NAME", p.Family),
	}
	if p.Identifier != "" {
		settings = append(settings, pbxsetting.CreateLiteral("PLATFORM_IDENTIFIER", p.Identifier))
	}
	return pbxsetting.NewLevel(append(settings, mapSettings(p.DefaultSettings)...))
}

// OverrideLevel holds settings the platform forces above the project's.
func (p *Platform) OverrideLevel() pbxsetting.Level {
	return pbxsetting.NewLevel(mapSettings(p.OverrideSettings))
}

// Settings describes the SDK, followed by its default settings and custom
// properties.
func (s *SDK) Settings() pbxsetting.Level {
	settings := []pbxsetting.Setting{
		pbxsetting.CreateLiteral("SDKROOT", s.Path),
		pbxsetting.CreateLiteral("SDK_DIR", s.Path),
		pbxsetting.CreateLiteral("SDK_NAME", s.CanonicalName),
		pbxsetting.CreateLiteral("SDK_VERSION", s.Version),
		pbxsetting.CreateLiteral("SDK_PRODUCT_BUILD_VERSION", s.Version),
		pbxsetting.Create("SDK_DIR_"+identifier(s.CanonicalName), "$(SDK_DIR)"),
	}
	if actual, ok := versionNumber(s.Version); ok {
		settings = append(settings,
			pbxsetting.CreateLiteral("SDK_VERSION_ACTUAL", strconv.Itoa(actual)),
			pbxsetting.CreateLiteral("SDK_VERSION_MAJOR", strconv.Itoa(actual/10000*10000)),
			pbxsetting.CreateLiteral("SDK_VERSION_MINOR", strconv.Itoa(actual/100*100)))
	}
	if s.DefaultDeploymentTarget != "" {
		settings = append(settings, pbxsetting.CreateLiteral("SDK_DEFAULT_DEPLOYMENT_TARGET", s.DefaultDeploymentTarget))
	}
	settings = append(settings, mapSettings(s.DefaultSettings)...)
	settings = append(settings, mapSettings(s.CustomProperties)...)
	return pbxsetting.NewLevel(settings)
}

func mapSettings(m map[string]string) []pbxsetting.Setting {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	settings := make([]pbxsetting.Setting, 0, len(keys))
	for _, k := range keys {
		if s, ok := pbxsetting.ParseSetting(k + " = " + m[k]); ok {
			settings = append(settings, s)
		}
	}
	return settings
}

func identifier(s string) string {
	b := []byte(s)
	for i, c := range b {
		if !(c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			b[i] = '_'
		}
	}
	return string(b)
}

// versionNumber encodes "10.15.2" as 101502.
func versionNumber(v string) (int, bool) {
	parts := strings.Split(v, ".")
	if v == "" || len(parts) > 3 {
		return 0, false
	}
	n := 0
	for i := 0; i < 3; i++ {
		var part int
		if i < len(parts) {
			var err error
			if part, err = strconv.Atoi(parts[i]); err != nil || part > 99 && i > 0 {
				return 0, false
			}
		}
		n = n*100 + part
	}
	return n, true
}

// compareVersions orders dotted version strings numerically.
func compareVersions(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var x, y int
		if i < len(as) {
			x, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			y, _ = strconv.Atoi(bs[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}
