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

package pathtools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseNames(t *testing.T) {
	assert.Equal(t, "test.xcodeproj", BaseName("/tmp/test.xcodeproj/"))
	assert.Equal(t, "test", BaseNameWithoutExtension("/tmp/test.xcodeproj"))
	assert.Equal(t, "test.extension", BaseNameWithoutExtension("/tmp/test.extension.xcodeproj"))
	assert.Equal(t, ".hidden", BaseNameWithoutExtension("/tmp/.hidden"))
	assert.Equal(t, "xcodeproj", Extension("/tmp/test.xcodeproj"))
	assert.Equal(t, "", Extension("/tmp/Makefile"))
	assert.Equal(t, "/tmp", Directory("/tmp/test.xcodeproj"))
	assert.Equal(t, "/", Directory("/tmp"))
	assert.Equal(t, "", Directory("tmp"))
}

func TestWildcard(t *testing.T) {
	testCases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "", true},
		{"*", "anything/at/all", true},
		{"x86_64", "x86_64", true},
		{"x86_64", "i386", false},
		{"macosx*", "macosx10.12", true},
		{"iphone*", "macosx10.12", false},
		{"*.xcconfig", "dir/Base.xcconfig", true},
		{"arm?4", "arm64", true},
		{"arm[67]*", "armv7", false},
		{"arm[v6]*", "armv7", true},
		{"[!a]bc", "xbc", true},
		{"[!a]bc", "abc", false},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "axxbyy", false},
		{"[abc", "[abc", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Wildcard(tc.pattern, tc.s), "Wildcard(%q, %q)", tc.pattern, tc.s)
	}
}
