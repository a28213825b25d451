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
	"crypto/md5"
	"encoding/binary"

	"github.com/xcbuild/xcbuild/pathtools"
)

// A DerivedDataHash names the directory holding a workspace's or project's
// build products: "<name>-<hash>", for example
// "test-gebdbcuasvwschgbtxnniurxjukt" for /tmp/test.xcodeproj.
type DerivedDataHash struct {
	Name string
	Hash string
}

// NewDerivedDataHash hashes path, which should be absolute and normalized.
func NewDerivedDataHash(path string) DerivedDataHash {
	return DerivedDataHash{
		Name: pathtools.BaseNameWithoutExtension(path),
		Hash: pathHash(path),
	}
}

func (h DerivedDataHash) String() string {
	return h.Name + "-" + h.Hash
}

// pathHash writes each half of the path's MD5 digest as 14 base-26 letters,
// most significant first.
func pathHash(path string) string {
	sum := md5.Sum([]byte(path))
	out := make([]byte, 28)
	for half := 0; half < 2; half++ {
		v := binary.BigEndian.Uint64(sum[half*8:])
		for i := 13; i >= 0; i-- {
			out[half*14+i] = byte('a' + v%26)
			v /= 26
		}
	}
	return string(out)
}
