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

import "fmt"

// Kind tags a specification with the variant it decodes into.
type Kind int

const (
	KindArchitecture Kind = iota
	KindBuildPhase
	KindBuildRule
	KindBuildSystem
	KindCompiler
	KindFileType
	KindLinker
	KindPackageType
	KindProductType
	KindTool
)

var kindNames = map[Kind]string{
	KindArchitecture: "Architecture",
	KindBuildPhase:   "BuildPhase",
	KindBuildRule:    "BuildRule",
	KindBuildSystem:  "BuildSystem",
	KindCompiler:     "Compiler",
	KindFileType:     "FileType",
	KindLinker:       "Linker",
	KindPackageType:  "PackageType",
	KindProductType:  "ProductType",
	KindTool:         "Tool",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps the "Type" field of a specification document to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	switch s {
	case "Linker/Tool", "Linker":
		return KindLinker, true
	case "Compiler/Tool":
		return KindCompiler, true
	}
	return 0, false
}

// family groups kinds that share one identifier namespace: compilers and
// linkers are tools.
func (k Kind) family() Kind {
	switch k {
	case KindCompiler, KindLinker:
		return KindTool
	}
	return k
}

// isa reports whether a specification of kind k can be used where want is
// expected.
func (k Kind) isa(want Kind) bool {
	return k == want || (want == KindTool && k.family() == KindTool)
}
