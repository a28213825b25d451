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

package dependency

import (
	"bytes"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMakefile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMakefile(&buf, Info{
		Outputs: []string{"/obj/main.o"},
		Inputs:  []string{"/src/main.c", "/src/My Header.h", "/src/cost$.h"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/obj/main.o: \\\n /src/main.c \\\n /src/My\\ Header.h \\\n /src/cost$$.h\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteMakefile(&buf, Info{Outputs: []string{"out"}}))
	assert.Equal(t, "out:\n", buf.String())

	assert.Error(t, WriteMakefile(&buf, Info{Inputs: []string{"in"}}))
}

func TestParseMakefile(t *testing.T) {
	info, err := ParseMakefile("/obj/main.o: /src/main.c \\\n  /src/My\\ Header.h /src/cost$$.h\n\nother.o : x.h\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"/obj/main.o", "other.o"}, info.Outputs)
	assert.Equal(t, []string{"/src/main.c", "/src/My Header.h", "/src/cost$.h", "x.h"}, info.Inputs)

	_, err = ParseMakefile("no colon here\n")
	assert.Error(t, err)
}

func TestMakefileRoundTrip(t *testing.T) {
	want := Info{
		Outputs: []string{"/obj/a b.o"},
		Inputs:  []string{"/src/a b.c", "/src/c:d.h", "/src/#x.h"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMakefile(&buf, want))
	got, err := ParseMakefile(buf.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBinaryRoundTrip(t *testing.T) {
	want := Info{
		Version: "@(#)PROGRAM:ld  PROJECT:ld64-609",
		Inputs:  []string{"/obj/a.o", "/usr/lib/libSystem.tbd"},
		Missing: []string{"/Frameworks/Missing.framework/Missing"},
		Outputs: []string{"/products/App"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, want))
	assert.Equal(t, byte(opVersion), buf.Bytes()[0])

	got, err := ParseBinary(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseBinaryErrors(t *testing.T) {
	_, err := ParseBinary([]byte{opInput, 'a'})
	assert.ErrorContains(t, err, "truncated")
	_, err = ParseBinary([]byte{0x7f, 'a', 0})
	assert.ErrorContains(t, err, "opcode")
}

func TestReadDirectory(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/res/b.txt", nil, 0644))
	require.NoError(t, util.WriteFile(fs, "/res/sub/a.txt", nil, 0644))
	require.NoError(t, fs.MkdirAll("/res/empty", 0755))

	info, err := ReadDirectory(fs, "/res")
	require.NoError(t, err)
	assert.Equal(t, []string{"/res/b.txt", "/res/sub/a.txt"}, info.Inputs)
}

func TestFormat(t *testing.T) {
	for _, f := range []Format{Makefile, Binary, Directory} {
		parsed, err := ParseFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	f, err := ParseFormat("dependency-info")
	require.NoError(t, err)
	assert.Equal(t, Binary, f)
	_, err = ParseFormat("xml")
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Directory, Info{Inputs: []string{"x"}}))
	assert.Zero(t, buf.Len())
}
