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
	"errors"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDomain is searched after every other domain.
const DefaultDomain = "default"

var (
	// ErrNotFound is returned when no domain defines the requested
	// specification.
	ErrNotFound = errors.New("specification not found")
	// ErrBaseNotFound is wrapped by the InheritanceError of a specification
	// whose BasedOn parent is not registered.  The specification itself
	// exists, so it is distinct from ErrNotFound.
	ErrBaseNotFound = errors.New("base specification not found")
)

// An InheritanceError reports a BasedOn chain that loops back on itself or
// names a missing parent.
type InheritanceError struct {
	Domain     string
	Identifier string
	Chain      []string
	Err        error
}

func (e *InheritanceError) Error() string {
	return fmt.Sprintf("specification %s:%s: inheritance %s: %s",
		e.Domain, e.Identifier, strings.Join(e.Chain, " -> "), e.Err)
}

func (e *InheritanceError) Unwrap() error {
	return e.Err
}

var errInheritanceCycle = errors.New("cycle")

type specKey struct {
	family     Kind
	domain     string
	identifier string
}

// A Manager owns every registered specification.  It is populated during
// loading and must not be modified once lookups begin; lookups are safe for
// concurrent use.
type Manager struct {
	specs   map[specKey]*Specification
	order   []*Specification
	parents map[string]string
	cache   *lru.Cache[string, any]
	logger  *slog.Logger
}

func NewManager() *Manager {
	cache, err := lru.New[string, any](1024)
	if err != nil {
		panic(err)
	}
	return &Manager{
		specs:   make(map[specKey]*Specification),
		parents: make(map[string]string),
		cache:   cache,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger for load diagnostics.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// SetDomainParent makes lookups in domain fall back to parent before the
// default domain.  Platforms declare their parent this way, e.g.
// iphonesimulator -> iphoneos.
func (m *Manager) SetDomainParent(domain, parent string) {
	m.parents[domain] = parent
}

// DomainChain returns the domains searched for a lookup in domain: domain,
// its ancestors, then DefaultDomain.
func (m *Manager) DomainChain(domains ...string) []string {
	seen := make(map[string]bool)
	var chain []string
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			chain = append(chain, d)
		}
	}
	for _, d := range domains {
		for cur := d; cur != "" && !seen[cur]; cur = m.parents[cur] {
			add(cur)
		}
	}
	add(DefaultDomain)
	return chain
}

// Add registers s.  A later registration with the same kind, domain and
// identifier replaces the earlier one.
func (m *Manager) Add(s *Specification) {
	if s.Domain == "" {
		s.Domain = DefaultDomain
	}
	key := specKey{s.Kind.family(), s.Domain, s.Identifier}
	if old, ok := m.specs[key]; ok {
		m.logger.Debug("replacing specification", "spec", s.String(), "previous", old.Path)
		for i, o := range m.order {
			if o == old {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.specs[key] = s
	m.order = append(m.order, s)
	m.cache.Purge()
}

// Lookup returns the specification as registered, searching the domain
// chain of domains.  It returns nil when none matches.
func (m *Manager) Lookup(kind Kind, identifier string, domains ...string) *Specification {
	s, _ := m.lookup(kind, identifier, m.DomainChain(domains...), nil)
	return s
}

func (m *Manager) lookup(kind Kind, identifier string, chain []string, skip *Specification) (*Specification, int) {
	for i, d := range chain {
		s, ok := m.specs[specKey{kind.family(), d, identifier}]
		if !ok || s == skip || !s.Kind.isa(kind) {
			continue
		}
		return s, i
	}
	return nil, -1
}

// Specifications returns every specification of kind visible from domains,
// in registration order.  When several domains define an identifier the one
// earliest in the chain wins.
func (m *Manager) Specifications(kind Kind, domains ...string) []*Specification {
	chain := m.DomainChain(domains...)
	rank := make(map[string]int, len(chain))
	for i, d := range chain {
		rank[d] = i
	}
	best := make(map[string]*Specification)
	var ids []string
	for _, s := range m.order {
		if !s.Kind.isa(kind) {
			continue
		}
		r, ok := rank[s.Domain]
		if !ok {
			continue
		}
		cur, seen := best[s.Identifier]
		if !seen {
			ids = append(ids, s.Identifier)
		}
		if !seen || r < rank[cur.Domain] {
			best[s.Identifier] = s
		}
	}
	out := make([]*Specification, 0, len(ids))
	for _, id := range ids {
		out = append(out, best[id])
	}
	return out
}

// Resolve looks up a specification and layers its properties over those of
// its BasedOn chain.
func (m *Manager) Resolve(kind Kind, identifier string, domains ...string) (*Specification, error) {
	chain := m.DomainChain(domains...)
	cacheKey := fmt.Sprintf("spec|%d|%s|%s", kind, strings.Join(chain, ","), identifier)
	if v, ok := m.cache.Get(cacheKey); ok {
		return v.(*Specification), nil
	}
	s, _ := m.lookup(kind, identifier, chain, nil)
	if s == nil {
		return nil, fmt.Errorf("%s %q: %w", kind, identifier, ErrNotFound)
	}
	resolved, err := m.resolve(s, nil)
	if err != nil {
		return nil, err
	}
	m.cache.Add(cacheKey, resolved)
	return resolved, nil
}

// resolve merges s over its base.  active holds the specifications being
// resolved further down the stack; a domain and identifier already on it is
// a cycle.
func (m *Manager) resolve(s *Specification, active []*Specification) (*Specification, error) {
	for _, a := range active {
		if a.Domain == s.Domain && a.Identifier == s.Identifier {
			return nil, m.inheritanceError(append(active, s), errInheritanceCycle)
		}
	}
	if s.BasedOn == "" {
		out := *s
		out.Properties = merge(nil, s.Properties)
		out.Ancestors = nil
		return &out, nil
	}

	domain, identifier := splitBasedOn(s.BasedOn)
	var chain []string
	if domain != "" {
		chain = m.DomainChain(domain)
	} else {
		chain = m.DomainChain(s.Domain)
	}
	// A specification may be based on the same identifier in a less
	// specific domain, so it never resolves to itself.
	base, _ := m.lookup(s.Kind.family(), identifier, chain, s)
	if base == nil {
		return nil, m.inheritanceError(append(active, s),
			fmt.Errorf("%w: %q", ErrBaseNotFound, s.BasedOn))
	}
	resolvedBase, err := m.resolve(base, append(active, s))
	if err != nil {
		return nil, err
	}

	out := *s
	out.Properties = merge(resolvedBase.Properties, s.Properties)
	out.Ancestors = append([]string{resolvedBase.Identifier}, resolvedBase.Ancestors...)
	return &out, nil
}

func (m *Manager) inheritanceError(stack []*Specification, err error) error {
	chain := make([]string, len(stack))
	for i, s := range stack {
		chain[i] = s.Domain + ":" + s.Identifier
	}
	first := stack[0]
	return &InheritanceError{
		Domain:     first.Domain,
		Identifier: first.Identifier,
		Chain:      chain,
		Err:        err,
	}
}

// typed resolves a specification and converts it with build, caching the
// typed result.
func typed[T any](m *Manager, kind Kind, identifier string, domains []string, build func(*Specification) T) (T, error) {
	var zero T
	cacheKey := fmt.Sprintf("typed|%d|%s|%s", kind, strings.Join(m.DomainChain(domains...), ","), identifier)
	if v, ok := m.cache.Get(cacheKey); ok {
		return v.(T), nil
	}
	s, err := m.Resolve(kind, identifier, domains...)
	if err != nil {
		return zero, err
	}
	out := build(s)
	m.cache.Add(cacheKey, out)
	return out, nil
}

func (m *Manager) Architecture(identifier string, domains ...string) (*Architecture, error) {
	return typed(m, KindArchitecture, identifier, domains, newArchitecture)
}

func (m *Manager) BuildPhase(identifier string, domains ...string) (*BuildPhase, error) {
	return typed(m, KindBuildPhase, identifier, domains, func(s *Specification) *BuildPhase {
		return &BuildPhase{Specification: s}
	})
}

func (m *Manager) BuildSystem(identifier string, domains ...string) (*BuildSystem, error) {
	return typed(m, KindBuildSystem, identifier, domains, newBuildSystem)
}

// Tool looks up any tool, including compilers and linkers.
func (m *Manager) Tool(identifier string, domains ...string) (*Tool, error) {
	return typed(m, KindTool, identifier, domains, newTool)
}

func (m *Manager) Compiler(identifier string, domains ...string) (*Compiler, error) {
	return typed(m, KindCompiler, identifier, domains, newCompiler)
}

func (m *Manager) Linker(identifier string, domains ...string) (*Linker, error) {
	return typed(m, KindLinker, identifier, domains, newLinker)
}

func (m *Manager) FileType(identifier string, domains ...string) (*FileType, error) {
	return typed(m, KindFileType, identifier, domains, newFileType)
}

func (m *Manager) ProductType(identifier string, domains ...string) (*ProductType, error) {
	return typed(m, KindProductType, identifier, domains, newProductType)
}

func (m *Manager) PackageType(identifier string, domains ...string) (*PackageType, error) {
	return typed(m, KindPackageType, identifier, domains, newPackageType)
}

// FileTypes resolves every file type visible from domains.  File types that
// fail to resolve are logged and left out.
func (m *Manager) FileTypes(domains ...string) []*FileType {
	var out []*FileType
	for _, s := range m.Specifications(KindFileType, domains...) {
		ft, err := m.FileType(s.Identifier, domains...)
		if err != nil {
			m.logger.Warn("skipping file type", "spec", s.Identifier, "error", err)
			continue
		}
		out = append(out, ft)
	}
	return out
}

// Compilers resolves every compiler visible from domains.
func (m *Manager) Compilers(domains ...string) []*Compiler {
	var out []*Compiler
	for _, s := range m.Specifications(KindCompiler, domains...) {
		if s.Kind != KindCompiler {
			continue
		}
		c, err := m.Compiler(s.Identifier, domains...)
		if err != nil {
			m.logger.Warn("skipping compiler", "spec", s.Identifier, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

// BuildRules returns the built-in build rules visible from domains in
// registration order.
func (m *Manager) BuildRules(domains ...string) []*BuildRule {
	var out []*BuildRule
	for _, s := range m.Specifications(KindBuildRule, domains...) {
		out = append(out, newBuildRule(s))
	}
	return out
}

// Architectures resolves every architecture visible from domains.
func (m *Manager) Architectures(domains ...string) []*Architecture {
	var out []*Architecture
	for _, s := range m.Specifications(KindArchitecture, domains...) {
		a, err := m.Architecture(s.Identifier, domains...)
		if err != nil {
			m.logger.Warn("skipping architecture", "spec", s.Identifier, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out
}
