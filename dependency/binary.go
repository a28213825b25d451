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
	"fmt"
	"io"
)

// ld64 dependency info opcodes.  Each is followed by a NUL-terminated string.
const (
	opVersion = 0x00
	opInput   = 0x10
	opMissing = 0x11
	opOutput  = 0x40
)

// WriteBinary writes info as an ld64 dependency info stream.
func WriteBinary(w io.Writer, info Info) error {
	var buf bytes.Buffer
	record := func(op byte, s string) {
		buf.WriteByte(op)
		buf.WriteString(s)
		buf.WriteByte(0)
	}
	record(opVersion, info.Version)
	for _, s := range info.Inputs {
		record(opInput, s)
	}
	for _, s := range info.Missing {
		record(opMissing, s)
	}
	for _, s := range info.Outputs {
		record(opOutput, s)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// ParseBinary reads an ld64 dependency info stream.
func ParseBinary(data []byte) (Info, error) {
	var info Info
	for off := 0; off < len(data); {
		op := data[off]
		end := bytes.IndexByte(data[off+1:], 0)
		if end < 0 {
			return Info{}, fmt.Errorf("dependency info truncated at offset %d", off)
		}
		s := string(data[off+1 : off+1+end])
		switch op {
		case opVersion:
			info.Version = s
		case opInput:
			info.Inputs = append(info.Inputs, s)
		case opMissing:
			info.Missing = append(info.Missing, s)
		case opOutput:
			info.Outputs = append(info.Outputs, s)
		default:
			return Info{}, fmt.Errorf("unknown dependency info opcode 0x%02x at offset %d", op, off)
		}
		off += end + 2
	}
	return info, nil
}
