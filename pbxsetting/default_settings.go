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

package pbxsetting

import (
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// EnvironmentLevel imports process environment variables ("KEY=value"
// strings, as os.Environ returns them) as literal settings.
func EnvironmentLevel(environ []string) Level {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			values[k] = v
		}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	settings := make([]Setting, 0, len(keys))
	for _, k := range keys {
		settings = append(settings, CreateLiteral(k, values[k]))
	}
	return NewLevel(settings)
}

// InternalLevel holds aliases and constants the build system defines for
// itself.
func InternalLevel() Level {
	return NewLevel([]Setting{
		Create("ACTION", "build"),
		Create("DERIVED_FILE_DIR", "$(DERIVED_FILES_DIR)"),
		Create("DERIVED_SOURCES_DIR", "$(DERIVED_FILES_DIR)"),
		Create("TEMP_DIR", "$(TARGET_TEMP_DIR)"),
		Create("TEMP_FILE_DIR", "$(TARGET_TEMP_DIR)"),
		Create("TEMP_FILES_DIR", "$(TARGET_TEMP_DIR)"),
		Create("PROJECT_TEMP_ROOT", "$(PROJECT_TEMP_DIR)"),
		Create("INSTALL_ROOT", "/tmp/$(PROJECT_NAME).dst"),
		Create("DSTROOT", "$(INSTALL_ROOT)"),
		Create("CACHE_ROOT", "/var/tmp/xcbuild-cache"),
		Create("GCC_VERSION", "com.apple.compilers.llvm.clang.1_0"),
	})
}

// LocalUser describes the invoking user for LocalLevel.
type LocalUser struct {
	UserName  string
	UserID    int
	GroupName string
	GroupID   int
	Home      string
}

// LocalLevel describes the invoking user.
func LocalLevel(user LocalUser) Level {
	return NewLevel([]Setting{
		CreateLiteral("USER", user.UserName),
		CreateLiteral("UID", strconv.Itoa(user.UserID)),
		CreateLiteral("GROUP", user.GroupName),
		CreateLiteral("GID", strconv.Itoa(user.GroupID)),
		CreateLiteral("HOME", user.Home),
	})
}

// SystemLevel describes the host.
func SystemLevel() Level {
	return NewLevel([]Setting{
		Create("UNIX_SHELL", "/bin/sh"),
		Create("HOST_OS", runtime.GOOS),
		Create("SHELL", "/bin/sh"),
	})
}

// NativeArchitecture maps the host GOARCH to the architecture name build
// settings use.
func NativeArchitecture() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "i386"
	case "arm64":
		return "arm64"
	case "arm":
		return "armv7"
	default:
		return runtime.GOARCH
	}
}

// ArchitectureLevel describes the native architecture.
func ArchitectureLevel() Level {
	native := NativeArchitecture()
	arch32, arch64 := native, native
	switch native {
	case "x86_64", "i386":
		arch32, arch64 = "i386", "x86_64"
	case "arm64", "armv7":
		arch32, arch64 = "armv7", "arm64"
	}
	return NewLevel([]Setting{
		Create("NATIVE_ARCH", native),
		Create("NATIVE_ARCH_ACTUAL", native),
		Create("NATIVE_ARCH_32_BIT", arch32),
		Create("NATIVE_ARCH_64_BIT", arch64),
	})
}

// BuildLevel holds the defaults of a build action.
func BuildLevel() Level {
	return NewLevel([]Setting{
		Create("BUILD_COMPONENTS", "headers build"),
		Create("BUILD_VARIANTS", "normal"),
		Create("CURRENT_VARIANT", "normal"),
		Create("DEPLOYMENT_LOCATION", "NO"),
		Create("DEPLOYMENT_POSTPROCESSING", "NO"),
		Create("ENABLE_HEADER_DEPENDENCIES", "YES"),
	})
}
