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

package xcworkspace

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/src/All.xcworkspace/contents.xcworkspacedata", []byte(`<?xml version="1.0" encoding="UTF-8"?>
<Workspace version = "1.0">
   <FileRef location = "group:App/App.xcodeproj"></FileRef>
   <FileRef location = "container:README.md"></FileRef>
   <Group location = "group:Libraries" name = "Libraries">
      <FileRef location = "group:Lib.xcodeproj"></FileRef>
      <Group location = "group:../Vendor">
         <FileRef location = "group:V.xcodeproj"></FileRef>
      </Group>
   </Group>
   <FileRef location = "absolute:/opt/Shared.xcodeproj"></FileRef>
</Workspace>
`), 0644))

	w, err := Open(fs, "/src/All.xcworkspace")
	require.NoError(t, err)
	assert.Equal(t, "All", w.Name)
	assert.Equal(t, "/src", w.BasePath())
	assert.Equal(t, []string{
		"/src/App/App.xcodeproj",
		"/opt/Shared.xcodeproj",
		"/src/Libraries/Lib.xcodeproj",
		"/src/Vendor/V.xcodeproj",
	}, w.Projects)

	_, err = Open(fs, "/missing.xcworkspace")
	assert.Error(t, err)
}
