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

package main

import (
	"fmt"

	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/xcbuild/xcbuild/hmap"
)

func newHmapCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hmap",
		Short: "Inspect header maps",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dump FILE...",
		Short: "Print the entries of header map files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range args {
				data, err := util.ReadFile(g.fs, g.abs(name))
				if err != nil {
					return err
				}
				h, err := hmap.Read(data)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if len(args) > 1 {
					fmt.Fprintf(out, "%s:\n", name)
				}
				for _, e := range h.Entries() {
					fmt.Fprintf(out, "%s -> %s%s\n", e.Key, e.Prefix, e.Suffix)
				}
			}
			return nil
		},
	})
	return cmd
}
