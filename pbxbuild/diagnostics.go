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
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	// ErrCycle is wrapped by CycleError.
	ErrCycle = errors.New("dependency cycle")
	// ErrNoProductType describes a native target that names no product
	// type at all.  It is reported as a warning and the target resolves
	// with a placeholder product type.
	ErrNoProductType = errors.New("target has no product type")
)

// A CycleError lists the targets of a dependency cycle in dependency order:
// each member depends on the one before it, and the first depends on the
// last.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return ErrCycle.Error()
	}
	return fmt.Sprintf("%s: %s -> %s", ErrCycle, strings.Join(e.Members, " -> "), e.Members[0])
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// A FileError describes a problem with one file of a target.
type FileError struct {
	Target string
	Path   string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Target, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// A Diagnostic is a problem found while resolving a build.  Target, File and
// Setting locate it when known.
type Diagnostic struct {
	Severity Severity
	Target   string
	File     string
	Setting  string
	Message  string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	for _, part := range []string{d.Target, d.File, d.Setting} {
		if part != "" {
			sb.WriteString(part)
			sb.WriteString(": ")
		}
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// Diagnostics collects diagnostics from concurrent resolvers and logs each
// one as it arrives.  The zero value logs to slog.Default().
type Diagnostics struct {
	mu     sync.Mutex
	list   []Diagnostic
	Logger *slog.Logger
}

func (d *Diagnostics) Add(diag Diagnostic) {
	d.mu.Lock()
	d.list = append(d.list, diag)
	d.mu.Unlock()

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var attrs []any
	if diag.Target != "" {
		attrs = append(attrs, "target", diag.Target)
	}
	if diag.File != "" {
		attrs = append(attrs, "file", diag.File)
	}
	if diag.Setting != "" {
		attrs = append(attrs, "setting", diag.Setting)
	}
	if diag.Severity == SeverityError {
		logger.Error(diag.Message, attrs...)
	} else {
		logger.Warn(diag.Message, attrs...)
	}
}

// Warn records a warning about target.
func (d *Diagnostics) Warn(target, file, message string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Target: target, File: file, Message: message})
}

// FileError records err as an error about one file.
func (d *Diagnostics) FileError(err *FileError) {
	d.Add(Diagnostic{Severity: SeverityError, Target: err.Target, File: err.Path, Message: err.Err.Error()})
}

// List returns a copy of the diagnostics in arrival order.
func (d *Diagnostics) List() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Diagnostic(nil), d.list...)
}

// HasErrors reports whether any diagnostic is an error.
func (d *Diagnostics) HasErrors() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, diag := range d.list {
		if diag.Severity == SeverityError {
			return true
		}
	}
	return false
}
