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
	"sort"
	"strings"

	"github.com/xcbuild/xcbuild/hmap"
	"github.com/xcbuild/xcbuild/pathtools"
	"github.com/xcbuild/xcbuild/pbxsetting"
)

// A HeaderEntry maps an include name to a header on disk.
type HeaderEntry struct {
	Key  string
	Path string
}

// HeaderEntries maps each header by its file name and, when product is not
// empty, by "product/name" as framework-style includes spell it.
func HeaderEntries(product string, headers []string) []HeaderEntry {
	var entries []HeaderEntry
	for _, h := range headers {
		name := pathtools.BaseName(h)
		entries = append(entries, HeaderEntry{Key: name, Path: h})
		if product != "" {
			entries = append(entries, HeaderEntry{Key: product + "/" + name, Path: h})
		}
	}
	return entries
}

// HeaderMaps names the header maps of a target.
type HeaderMaps struct {
	OwnTarget string
	AllTarget string
	Project   string
}

// NewHeaderMaps places the header maps of a target in its temporary
// directory.
func NewHeaderMaps(settings *pbxsetting.Environment, condition pbxsetting.Condition) HeaderMaps {
	prefix := settings.ExpandString("$(TARGET_TEMP_DIR)/$(PRODUCT_NAME)", condition)
	return HeaderMaps{
		OwnTarget: prefix + "-own-target-headers.hmap",
		AllTarget: prefix + "-all-target-headers.hmap",
		Project:   prefix + "-project-headers.hmap",
	}
}

// Arguments returns the compiler arguments searching m.
func (m HeaderMaps) Arguments() []string {
	return []string{
		"-iquote", m.OwnTarget,
		"-I", m.AllTarget,
		"-iquote", m.Project,
	}
}

// Paths lists the header map files.
func (m HeaderMaps) Paths() []string {
	return []string{m.OwnTarget, m.AllTarget, m.Project}
}

// Headermap returns an invocation that only writes the header map at path.
// The first entry for a key wins.
func Headermap(ctx *Context, path string, entries []HeaderEntry) Invocation {
	h := hmap.New()
	for _, e := range entries {
		dir := pathtools.Directory(e.Path)
		if dir != "" && !strings.HasSuffix(dir, "/") {
			dir += "/"
		}
		h.Add(e.Key, dir, pathtools.BaseName(e.Path))
	}
	return ctx.finish(Invocation{
		Outputs:        []string{path},
		AuxiliaryFiles: []AuxiliaryFile{{Path: path, Contents: h.Bytes()}},
		LogMessage:     "WriteHeaderMap " + path,
	})
}

// ProjectHeaders collects every header a set of targets makes visible to the
// project, deduplicated and sorted.
func ProjectHeaders(targets ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, headers := range targets {
		for _, h := range headers {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	sort.Strings(out)
	return out
}
