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

package pbxspec

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/ohler55/ojg/oj"
)

// A Decoder turns the bytes of a specification file into an object tree.
// Property-list codecs can be plugged in here; the default reads JSON.
type Decoder func(data []byte) (any, error)

// DecodeJSON is the default Decoder.
func DecodeJSON(data []byte) (any, error) {
	return oj.Parse(data)
}

var specExtensions = map[string]bool{
	".xcspec":       true,
	".pbfilespec":   true,
	".pbcompspec":   true,
	".xcbuildrules": true,
	".json":         true,
}

// A Loader registers specification files from a filesystem into a Manager.
type Loader struct {
	FS      billy.Filesystem
	Decode  Decoder
	Manager *Manager
}

func NewLoader(fs billy.Filesystem, manager *Manager) *Loader {
	return &Loader{FS: fs, Decode: DecodeJSON, Manager: manager}
}

// RegisterDomain loads every specification file below dir into domain.
// Files are read in sorted path order.  It fails if dir cannot be read at
// all or if any file is malformed.
func (l *Loader) RegisterDomain(domain, dir string) error {
	if _, err := l.FS.Stat(dir); err != nil {
		return fmt.Errorf("specification domain %q: %w", domain, err)
	}
	var files []string
	err := util.Walk(l.FS, dir, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.Mode().IsRegular() && specExtensions[strings.ToLower(path.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("specification domain %q: %w", domain, err)
	}
	sort.Strings(files)

	for _, f := range files {
		if err := l.LoadFile(domain, f); err != nil {
			return err
		}
	}
	l.Manager.logger.Debug("registered specification domain", "domain", domain, "dir", dir, "files", len(files))
	return nil
}

// LoadFile registers the specifications of one file.  A file holds a single
// specification document or an array of them.  Build rule files hold rules
// without a Type.
func (l *Loader) LoadFile(domain, file string) error {
	data, err := util.ReadFile(l.FS, file)
	if err != nil {
		return err
	}
	tree, err := l.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	rules := strings.EqualFold(path.Ext(file), ".xcbuildrules")

	var docs []any
	switch tree := tree.(type) {
	case []any:
		docs = tree
	case map[string]any:
		docs = []any{tree}
	default:
		return fmt.Errorf("%s: expected a specification or an array of them", file)
	}

	for i, doc := range docs {
		props, ok := doc.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: entry %d is not a dictionary", file, i)
		}
		s, err := decodeSpecification(domain, Properties(props), rules)
		if err != nil {
			return fmt.Errorf("%s: entry %d: %w", file, i, err)
		}
		s.Path = file
		l.Manager.Add(s)
	}
	return nil
}

func decodeSpecification(domain string, props Properties, rule bool) (*Specification, error) {
	if rule || (!props.Has("Type") && props.Has("CompilerSpec")) {
		return NewSpecification(KindBuildRule, domain, props)
	}
	typeName := props.String("Type")
	kind, ok := ParseKind(typeName)
	if !ok {
		return nil, fmt.Errorf("unknown specification type %q", typeName)
	}
	return NewSpecification(kind, domain, props)
}
