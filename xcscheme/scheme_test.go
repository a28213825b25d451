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

package xcscheme

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemeXML = `<?xml version="1.0" encoding="UTF-8"?>
<Scheme LastUpgradeVersion = "1130" version = "1.3">
   <BuildAction parallelizeBuildables = "YES" buildImplicitDependencies = "YES">
      <BuildActionEntries>
         <BuildActionEntry buildForTesting = "YES" buildForRunning = "YES" buildForProfiling = "NO" buildForArchiving = "YES" buildForAnalyzing = "YES">
            <BuildableReference
               BuildableIdentifier = "primary"
               BlueprintIdentifier = "TB"
               BuildableName = "B"
               BlueprintName = "B"
               ReferencedContainer = "container:App.xcodeproj">
            </BuildableReference>
         </BuildActionEntry>
      </BuildActionEntries>
   </BuildAction>
   <TestAction buildConfiguration = "Debug"></TestAction>
   <LaunchAction buildConfiguration = "Debug"></LaunchAction>
   <ProfileAction buildConfiguration = "Release"></ProfileAction>
   <AnalyzeAction buildConfiguration = "Debug"></AnalyzeAction>
   <ArchiveAction buildConfiguration = "Release" revealArchiveInOrganizer = "YES"></ArchiveAction>
</Scheme>
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(schemeXML))
	require.NoError(t, err)

	assert.Equal(t, "1.3", s.Version)
	assert.True(t, s.BuildAction.Parallelize())
	assert.True(t, s.BuildAction.ImplicitDependencies())
	require.Len(t, s.BuildAction.Entries, 1)

	entry := s.BuildAction.Entries[0]
	assert.True(t, entry.BuildFor("run"))
	assert.False(t, entry.BuildFor("profile"))
	assert.False(t, entry.BuildFor("install"))

	ref := entry.BuildableReference
	assert.Equal(t, "TB", ref.BlueprintIdentifier)
	assert.Equal(t, "/src/App.xcodeproj", ref.ContainerPath("/src"))
	assert.Equal(t, "/abs/X.xcodeproj", BuildableReference{ReferencedContainer: "container:/abs/X.xcodeproj"}.ContainerPath("/src"))

	assert.Equal(t, "Debug", s.LaunchAction.BuildConfiguration)
	assert.Equal(t, "Release", s.ArchiveAction.BuildConfiguration)
	assert.Equal(t, "YES", s.ArchiveAction.RevealArchiveInOrganizer)

	_, err = Parse([]byte("<Scheme><BuildAction>"))
	assert.Error(t, err)
}

func TestImplicitDependenciesDefault(t *testing.T) {
	s, err := Parse([]byte(`<Scheme><BuildAction></BuildAction></Scheme>`))
	require.NoError(t, err)
	assert.True(t, s.BuildAction.ImplicitDependencies())
	assert.False(t, s.BuildAction.Parallelize())
}

func TestOpen(t *testing.T) {
	fs := memfs.New()
	shared := "/src/App.xcodeproj/xcshareddata/xcschemes/"
	user := "/src/App.xcodeproj/xcuserdata/me.xcuserdatad/xcschemes/"
	require.NoError(t, util.WriteFile(fs, shared+"App.xcscheme", []byte(schemeXML), 0644))
	require.NoError(t, util.WriteFile(fs, shared+"Other.xcscheme", []byte(`<Scheme version="1.0"/>`), 0644))
	require.NoError(t, util.WriteFile(fs, shared+"notes.txt", []byte("skip"), 0644))
	require.NoError(t, util.WriteFile(fs, user+"App.xcscheme", []byte(`<Scheme version="user"/>`), 0644))

	g, err := Open(fs, "/src/App.xcodeproj", "me")
	require.NoError(t, err)
	require.Len(t, g.Schemes, 3)

	app := g.Scheme("App")
	require.NotNil(t, app)
	assert.Equal(t, "user", app.Version, "user scheme shadows the shared one")
	assert.False(t, app.Shared)
	assert.True(t, g.Scheme("Other").Shared)
	assert.Nil(t, g.Scheme("Missing"))

	g, err = Open(fs, "/src/App.xcodeproj", "")
	require.NoError(t, err)
	assert.Len(t, g.Schemes, 2)

	require.NoError(t, util.WriteFile(fs, shared+"Broken.xcscheme", []byte("<Scheme>"), 0644))
	g, err = Open(fs, "/src/App.xcodeproj", "")
	assert.ErrorContains(t, err, "Broken.xcscheme")
	assert.Len(t, g.Schemes, 2)
}
