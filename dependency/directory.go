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

package dependency

import (
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// ReadDirectory treats every regular file below dir as an input.  Inputs are
// sorted.
func ReadDirectory(fs billy.Filesystem, dir string) (Info, error) {
	var info Info
	err := util.Walk(fs, dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.Mode().IsRegular() {
			info.Inputs = append(info.Inputs, path.Clean(p))
		}
		return nil
	})
	if err != nil {
		return Info{}, err
	}
	sort.Strings(info.Inputs)
	return info, nil
}
