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

// Package pbxspec holds the specification database: typed descriptions of
// tools, compilers, linkers, file types, product and package types, build
// systems and architectures, grouped into domains and related by BasedOn
// inheritance.
package pbxspec

import (
	"fmt"
	"strings"
)

// A Specification is one entry of the database.  As registered it carries
// only its own properties; Manager.Resolve returns a copy whose Properties
// include everything inherited through BasedOn.
type Specification struct {
	Kind       Kind
	Identifier string
	Domain     string
	// BasedOn names the parent specification, optionally qualified as
	// "domain:identifier".
	BasedOn    string
	Name       string
	Properties Properties
	// Path is the file the specification was loaded from, if any.
	Path string

	// Ancestors lists the identifiers of the resolved BasedOn chain,
	// nearest first.  Empty until resolved.
	Ancestors []string
}

func (s *Specification) String() string {
	return fmt.Sprintf("%s %s:%s", s.Kind, s.Domain, s.Identifier)
}

// IsA reports whether s is the specification identifier or inherits from it.
func (s *Specification) IsA(identifier string) bool {
	if s.Identifier == identifier {
		return true
	}
	for _, a := range s.Ancestors {
		if a == identifier {
			return true
		}
	}
	return false
}

// splitBasedOn separates an optional domain qualifier from a BasedOn value.
func splitBasedOn(basedOn string) (domain, identifier string) {
	if d, id, ok := strings.Cut(basedOn, ":"); ok {
		return d, id
	}
	return "", basedOn
}

// NewSpecification builds a specification from a decoded document.  The
// document's own "Domain" key, when present, overrides domain.
func NewSpecification(kind Kind, domain string, props Properties) (*Specification, error) {
	s := &Specification{
		Kind:       kind,
		Identifier: props.String("Identifier"),
		Domain:     domain,
		BasedOn:    props.String("BasedOn"),
		Name:       props.String("Name"),
		Properties: props,
	}
	if d := props.String("Domain"); d != "" {
		s.Domain = d
	}
	if s.Identifier == "" {
		if kind != KindBuildRule {
			return nil, fmt.Errorf("%s specification without an Identifier", kind)
		}
		s.Identifier = buildRuleIdentifier(props)
	}
	return s, nil
}

func buildRuleIdentifier(props Properties) string {
	if name := props.String("Name"); name != "" {
		return name
	}
	return strings.Join(props.StringList("FileType"), ",") + props.String("FilePatterns") + "->" + props.String("CompilerSpec")
}
