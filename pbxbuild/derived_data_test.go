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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedDataHash(t *testing.T) {
	testCases := []struct {
		path string
		want string
	}{
		{"/tmp/test.xcodeproj", "test-gebdbcuasvwschgbtxnniurxjukt"},
		{"/var/tmp/test.xcodeproj", "test-bcocmrrfgjqtchaacscrvidwhtxm"},
		{"/tmp/test.xcworkspace", "test-gwbccjllutzxldarzgubidlxvvrx"},
		{"/tmp/test.extension.xcodeproj", "test.extension-gxmolhxorxkzjraqwuwsazdcensd"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			h := NewDerivedDataHash(tc.path)
			assert.Equal(t, tc.want, h.String())
			assert.Len(t, h.Hash, 28)
		})
	}
}
