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

package pbxsetting

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/xcbuild/xcbuild/pathtools"
)

// An XCConfig is a parsed build configuration file.
type XCConfig struct {
	Path string
	// Level holds included files' settings first, then the file's own, so
	// that later assignments win.
	Level Level
	// Includes lists every file read while parsing, Path first.
	Includes []string
	// Problems collects recoverable errors: unreadable includes, include
	// cycles and unparsable lines.
	Problems []error
}

// ParseXCConfig reads an xcconfig file and its #include directives from fs.
// Include paths are relative to the including file; a leading
// "<DEVELOPER_DIR>" is replaced with developerRoot.  "#include?" marks an
// include that may be missing.  Only a missing top-level file is an error.
func ParseXCConfig(fs billy.Filesystem, path string, developerRoot string) (*XCConfig, error) {
	config := &XCConfig{Path: path}
	p := &xcconfigParser{
		fs:            fs,
		developerRoot: developerRoot,
		active:        make(map[string]bool),
		config:        config,
	}
	settings, err := p.parseFile(path)
	if err != nil {
		return nil, err
	}
	config.Level = NewLevel(settings)
	return config, nil
}

type xcconfigParser struct {
	fs            billy.Filesystem
	developerRoot string
	active        map[string]bool
	config        *XCConfig
}

func (p *xcconfigParser) parseFile(path string) ([]Setting, error) {
	path = pathtools.Normalize(path)
	if p.active[path] {
		return nil, fmt.Errorf("%s: include cycle", path)
	}
	p.active[path] = true
	defer delete(p.active, path)

	f, err := p.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p.config.Includes = append(p.config.Includes, path)

	return p.parse(path, f)
}

func (p *xcconfigParser) parse(path string, r io.Reader) ([]Setting, error) {
	var settings []Setting
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := stripComment(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#include") {
			optional := strings.HasPrefix(line, "#include?")
			target := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "#include?"), "#include"))
			target = strings.Trim(target, `"<>`)
			if rest, ok := strings.CutPrefix(target, "DEVELOPER_DIR>"); ok {
				target = p.developerRoot + rest
			}
			target = pathtools.ResolveRelative(target, pathtools.Directory(path))

			included, err := p.parseFile(target)
			if err != nil {
				if !optional {
					p.config.Problems = append(p.config.Problems,
						fmt.Errorf("%s:%d: %w", path, lineNumber, err))
				}
				continue
			}
			settings = append(settings, included...)
			continue
		}

		setting, ok := ParseSetting(line)
		if !ok {
			p.config.Problems = append(p.config.Problems,
				fmt.Errorf("%s:%d: not a setting assignment: %q", path, lineNumber, line))
			continue
		}
		settings = append(settings, setting)
	}
	return settings, scanner.Err()
}

// stripComment removes a trailing "//" comment that is not inside a quoted
// string.
func stripComment(line string) string {
	var quote byte
	for i := 0; i+1 < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && line[i+1] == '/':
			return line[:i]
		}
	}
	return line
}
