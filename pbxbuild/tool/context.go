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
	"log/slog"

	"github.com/go-git/go-billy/v5"
)

// A Context is what every resolver needs to know about the target it
// resolves for.
type Context struct {
	FS               billy.Filesystem
	Executables      *ExecutableResolver
	WorkingDirectory string
	Target           string
	Logger           *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// finish fills the fields every invocation of the context shares.
func (c *Context) finish(inv Invocation) Invocation {
	if inv.WorkingDirectory == "" {
		inv.WorkingDirectory = c.WorkingDirectory
	}
	inv.Target = c.Target
	if inv.Environment == nil {
		inv.Environment = map[string]string{}
	}
	return inv
}
