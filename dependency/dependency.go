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

// Package dependency serializes the dependency information tools report
// about the files an invocation read.
package dependency

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how a tool reports its dependencies.
type Format int

const (
	// Makefile is a gcc-style "target: deps" depfile.
	Makefile Format = iota
	// Binary is the ld64 opcode stream.
	Binary
	// Directory means every file below a directory is an input.
	Directory
)

var formatNames = []string{"makefile", "binary", "directory"}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat reads a format name as specifications spell it.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(i), nil
		}
	}
	switch strings.ToLower(s) {
	case "dependency-info", "ld64":
		return Binary, nil
	}
	return 0, fmt.Errorf("unknown dependency info format %q", s)
}

// Info lists the files a tool read and wrote.
type Info struct {
	Outputs []string
	Inputs  []string
	// Missing lists inputs the tool looked for but did not find.  Only the
	// binary format records them.
	Missing []string
	Version string
}

// Write serializes info in format.  The directory format has no file of
// its own and writes nothing.
func Write(w io.Writer, format Format, info Info) error {
	switch format {
	case Makefile:
		return WriteMakefile(w, info)
	case Binary:
		return WriteBinary(w, info)
	case Directory:
		return nil
	}
	return fmt.Errorf("unknown dependency info format %v", format)
}
