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

package xcbuild

import (
	"github.com/xcbuild/xcbuild/descdb"
)

// WriteDatabase stores d in db and commits it.
func (d *Description) WriteDatabase(db *descdb.Writer) error {
	for _, td := range d.Targets {
		t := descdb.Target{
			Name:         td.Name,
			Level:        td.Level,
			Dependencies: td.Dependencies,
		}
		if td.Environment != nil {
			t.ProductPath = td.Environment.ProductPath()
		}
		id, err := db.AddTarget(t)
		if err != nil {
			return err
		}
		if err := db.AddInvocations(id, td.Invocations); err != nil {
			return &TargetError{Target: td.Name, Err: err}
		}
	}
	if err := db.AddDiagnostics(d.Diagnostics); err != nil {
		return err
	}
	return db.Commit()
}
