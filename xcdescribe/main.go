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

// xcdescribe resolves an Xcode project or workspace into a description of
// the build: every tool invocation, in order, written as a Ninja manifest,
// JSON, YAML, a compilation database or a SQLite database.
//
// Usage:
//
//	xcdescribe describe --project App.xcodeproj --scheme App [NAME=VALUE...]
//	xcdescribe hmap dump App-project-headers.hmap
//	xcdescribe derived-data-hash App.xcodeproj
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/xcbuild/xcbuild/pbxsetting"
)

// globalOptions is the process state every command shares.
type globalOptions struct {
	fs         billy.Filesystem
	workingDir string
	environ    []string
	user       pbxsetting.LocalUser

	logLevel  string
	logFormat string
	logger    *slog.Logger
}

// abs resolves p against the working directory.
func (o *globalOptions) abs(p string) string {
	if p == "" {
		return p
	}
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(o.workingDir, p)
}

func newRootCommand(opts *globalOptions, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "xcdescribe",
		Short:         "Describe the build of an Xcode project or workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newDescribeCommand(opts),
		newHmapCommand(opts),
		newDerivedDataHashCommand(opts),
	)
	return root
}

func currentUser() pbxsetting.LocalUser {
	u := pbxsetting.LocalUser{UserName: os.Getenv("USER"), Home: os.Getenv("HOME")}
	if cur, err := user.Current(); err == nil {
		u.UserName = cur.Username
		u.Home = cur.HomeDir
		u.UserID, _ = strconv.Atoi(cur.Uid)
		u.GroupID, _ = strconv.Atoi(cur.Gid)
		if g, err := user.LookupGroupId(cur.Gid); err == nil {
			u.GroupName = g.Name
		}
	}
	return u
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts := &globalOptions{
		fs:         osfs.New("/"),
		workingDir: wd,
		environ:    os.Environ(),
		user:       currentUser(),
	}
	if err := newRootCommand(opts, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "xcdescribe:", err)
		os.Exit(1)
	}
}
