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
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/xcbuild/xcbuild/pathtools"
)

// A Group is every scheme stored in one project or workspace bundle.
type Group struct {
	Schemes []*Scheme
}

// Open reads the shared schemes of a .xcodeproj or .xcworkspace bundle and
// the schemes of user.  Unreadable scheme files are skipped; their errors
// are joined into the returned error alongside the group.
func Open(fs billy.Filesystem, bundle, user string) (*Group, error) {
	g := &Group{}
	var errs []error
	dirs := []struct {
		path   string
		shared bool
	}{
		{bundle + "/xcshareddata/xcschemes", true},
		{bundle + "/xcuserdata/" + user + ".xcuserdatad/xcschemes", false},
	}
	for _, dir := range dirs {
		if user == "" && !dir.shared {
			continue
		}
		entries, err := fs.ReadDir(dir.path)
		if err != nil {
			if !os.IsNotExist(err) {
				errs = append(errs, err)
			}
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".xcscheme") {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			p := dir.path + "/" + name
			data, err := util.ReadFile(fs, p)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			s, err := Parse(data)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p, err))
				continue
			}
			s.Name = pathtools.BaseNameWithoutExtension(name)
			s.Path = p
			s.Shared = dir.shared
			g.Schemes = append(g.Schemes, s)
		}
	}
	return g, errors.Join(errs...)
}

// Scheme returns the scheme called name.  A user scheme shadows a shared
// one of the same name.
func (g *Group) Scheme(name string) *Scheme {
	var found *Scheme
	for _, s := range g.Schemes {
		if s.Name == name && (found == nil || !s.Shared) {
			found = s
		}
	}
	return found
}
