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
	"fmt"

	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxbuild/tool"
	"github.com/xcbuild/xcbuild/pbxproj"
)

// destinations maps a copy files phase's dstSubfolderSpec to its base
// folder.
var destinations = map[int]string{
	pbxproj.DestinationAbsolute:         "",
	pbxproj.DestinationWrapper:          "$(TARGET_BUILD_DIR)/$(WRAPPER_NAME)",
	pbxproj.DestinationExecutables:      "$(TARGET_BUILD_DIR)/$(EXECUTABLE_FOLDER_PATH)",
	pbxproj.DestinationResources:        "$(TARGET_BUILD_DIR)/$(UNLOCALIZED_RESOURCES_FOLDER_PATH)",
	pbxproj.DestinationFrameworks:       "$(TARGET_BUILD_DIR)/$(FRAMEWORKS_FOLDER_PATH)",
	pbxproj.DestinationSharedFrameworks: "$(TARGET_BUILD_DIR)/$(SHARED_FRAMEWORKS_FOLDER_PATH)",
	pbxproj.DestinationSharedSupport:    "$(TARGET_BUILD_DIR)/$(SHARED_SUPPORT_FOLDER_PATH)",
	pbxproj.DestinationPlugIns:          "$(TARGET_BUILD_DIR)/$(PLUGINS_FOLDER_PATH)",
	pbxproj.DestinationJavaResources:    "$(TARGET_BUILD_DIR)/$(JAVA_FOLDER_PATH)",
	pbxproj.DestinationProducts:         "$(BUILT_PRODUCTS_DIR)",
}

// CopyDestination returns the folder a copy files phase copies into.
func (e *Environment) CopyDestination(phase *pbxproj.BuildPhase) (string, error) {
	base, ok := destinations[phase.DstSubfolderSpec]
	if !ok {
		return "", fmt.Errorf("unknown copy destination %d", phase.DstSubfolderSpec)
	}
	settings, condition := e.Target.Environment, e.Target.Condition
	dst := settings.ExpandString(phase.DstPath, condition)
	if base == "" {
		if dst == "" {
			return "", fmt.Errorf("copy destination has no path")
		}
		return pathtools.Normalize(dst), nil
	}
	dir := settings.ExpandString(base, condition)
	if dst != "" {
		dir += "/" + dst
	}
	return pathtools.Normalize(dir), nil
}

// CopyFiles copies the files of phase to its destination.
func (e *Environment) CopyFiles(phase *pbxproj.BuildPhase) []tool.Invocation {
	dir, err := e.CopyDestination(phase)
	if err != nil {
		e.warn(fmt.Sprintf("copy files phase %s skipped: %v", phase.ID, err))
		return nil
	}
	settings, condition := e.Target.Environment, e.Target.Condition
	var invs []tool.Invocation
	for _, f := range e.Files(phase, settings, condition, false) {
		invs = append(invs, e.Copy.Resolve(e.Tools, settings, condition, f.Path, dir, "PBXCp"))
	}
	return invs
}
