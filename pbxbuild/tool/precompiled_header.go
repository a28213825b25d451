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

package tool

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/xcbuild/xcbuild/pathtools"
)

// PrecompiledHeaderInfo identifies one precompiled prefix header.  Targets
// compiling the same header with the same arguments share the output.
type PrecompiledHeaderInfo struct {
	HeaderPath string
	Dialect    string
	Arguments  []string
}

// Hash digests everything that affects the compiled header.
func (p PrecompiledHeaderInfo) Hash() string {
	h := md5.New()
	h.Write([]byte(p.HeaderPath))
	h.Write([]byte{0})
	h.Write([]byte(p.Dialect))
	for _, a := range p.Arguments {
		h.Write([]byte{0})
		h.Write([]byte(a))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// OutputPath places the compiled header below sharedDir, usually
// SHARED_PRECOMPS_DIR.
func (p PrecompiledHeaderInfo) OutputPath(sharedDir string) string {
	name := pathtools.BaseName(p.HeaderPath)
	return strings.TrimSuffix(sharedDir, "/") + "/" +
		pathtools.BaseNameWithoutExtension(name) + "-" + p.Hash() + "/" + name + ".pch"
}
