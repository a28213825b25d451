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

	"github.com/spf13/cobra"

	"github.com/xcbuild/xcbuild/pbxbuild"
)

func newDerivedDataHashCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "derived-data-hash PATH...",
		Short: "Print the derived data directory name of workspaces or projects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range args {
				fmt.Fprintln(cmd.OutOrStdout(), pbxbuild.NewDerivedDataHash(g.abs(p)))
			}
			return nil
		},
	}
}
