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

// Package hmap reads and writes header maps, the binary lookup tables clang
// consults to resolve #include names to files.
package hmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	Magic   = 0x686d6170 // 'hmap'
	Version = 1

	headerSize     = 24
	bucketSize     = 12
	initialBuckets = 8
)

var (
	ErrTruncated = errors.New("hmap: truncated data")
	ErrMagic     = errors.New("hmap: bad magic")
	ErrVersion   = errors.New("hmap: unsupported version")
	ErrLayout    = errors.New("hmap: inconsistent layout")
)

type bucket struct {
	key, prefix, suffix uint32
}

// An Entry maps an include name to the path prefix+suffix.
type Entry struct {
	Key    string
	Prefix string
	Suffix string
}

// A HeaderMap is an open-addressed hash table of entries backed by a string
// table.  Offset 0 in the string table is the empty string and marks an
// unused bucket.
type HeaderMap struct {
	buckets        []bucket
	strings        []byte
	offsets        map[string]uint32
	entries        int
	maxValueLength uint32
}

func New() *HeaderMap {
	return &HeaderMap{
		buckets: make([]bucket, initialBuckets),
		strings: []byte{0},
		offsets: map[string]uint32{"": 0},
	}
}

// Hash is the case-insensitive key hash clang uses.
func Hash(key string) uint32 {
	var h uint32
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h += uint32(c) * 13
	}
	return h
}

func (h *HeaderMap) Len() int {
	return h.entries
}

// Add inserts key.  It reports false, leaving the map unchanged, when key is
// already present.
func (h *HeaderMap) Add(key, prefix, suffix string) bool {
	if key == "" {
		return false
	}
	if _, _, ok := h.Get(key); ok {
		return false
	}
	if (h.entries+1)*2 > len(h.buckets) {
		h.grow()
	}
	h.insert(bucket{
		key:    h.intern(key),
		prefix: h.intern(prefix),
		suffix: h.intern(suffix),
	}, key)
	h.entries++
	if n := uint32(len(prefix) + len(suffix)); n > h.maxValueLength {
		h.maxValueLength = n
	}
	return true
}

// Get looks up key exactly.
func (h *HeaderMap) Get(key string) (prefix, suffix string, ok bool) {
	mask := uint32(len(h.buckets) - 1)
	for i, probes := Hash(key)&mask, 0; probes < len(h.buckets); i, probes = (i+1)&mask, probes+1 {
		b := h.buckets[i]
		if b.key == 0 {
			return "", "", false
		}
		if h.string(b.key) == key {
			return h.string(b.prefix), h.string(b.suffix), true
		}
	}
	return "", "", false
}

// Entries returns the entries in bucket order.
func (h *HeaderMap) Entries() []Entry {
	out := make([]Entry, 0, h.entries)
	for _, b := range h.buckets {
		if b.key == 0 {
			continue
		}
		out = append(out, Entry{
			Key:    h.string(b.key),
			Prefix: h.string(b.prefix),
			Suffix: h.string(b.suffix),
		})
	}
	return out
}

func (h *HeaderMap) insert(b bucket, key string) {
	mask := uint32(len(h.buckets) - 1)
	i := Hash(key) & mask
	for h.buckets[i].key != 0 {
		i = (i + 1) & mask
	}
	h.buckets[i] = b
}

// grow doubles the bucket array and rehashes every entry into it.
func (h *HeaderMap) grow() {
	old := h.buckets
	h.buckets = make([]bucket, len(old)*2)
	for _, b := range old {
		if b.key != 0 {
			h.insert(b, h.string(b.key))
		}
	}
}

func (h *HeaderMap) intern(s string) uint32 {
	if off, ok := h.offsets[s]; ok {
		return off
	}
	off := uint32(len(h.strings))
	h.strings = append(h.strings, s...)
	h.strings = append(h.strings, 0)
	h.offsets[s] = off
	return off
}

func (h *HeaderMap) string(off uint32) string {
	s, _ := cstring(h.strings, off)
	return s
}

func cstring(table []byte, off uint32) (string, bool) {
	if int(off) >= len(table) {
		return "", false
	}
	for end := int(off); end < len(table); end++ {
		if table[end] == 0 {
			return string(table[off:end]), true
		}
	}
	return "", false
}

// Bytes serializes the map in the little-endian on-disk layout.
func (h *HeaderMap) Bytes() []byte {
	stringsOffset := headerSize + bucketSize*len(h.buckets)
	out := make([]byte, stringsOffset, stringsOffset+len(h.strings))
	le := binary.LittleEndian
	le.PutUint32(out[0:], Magic)
	le.PutUint16(out[4:], Version)
	le.PutUint16(out[6:], 0)
	le.PutUint32(out[8:], uint32(stringsOffset))
	le.PutUint32(out[12:], uint32(h.entries))
	le.PutUint32(out[16:], uint32(len(h.buckets)))
	le.PutUint32(out[20:], h.maxValueLength)
	for i, b := range h.buckets {
		p := out[headerSize+i*bucketSize:]
		le.PutUint32(p[0:], b.key)
		le.PutUint32(p[4:], b.prefix)
		le.PutUint32(p[8:], b.suffix)
	}
	return append(out, h.strings...)
}

// Write serializes the map to w.
func (h *HeaderMap) Write(w io.Writer) error {
	_, err := w.Write(h.Bytes())
	return err
}

// Read parses a serialized header map.  Both byte orders are accepted.
func Read(data []byte) (*HeaderMap, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	var order binary.ByteOrder = binary.LittleEndian
	switch {
	case binary.LittleEndian.Uint32(data) == Magic:
	case binary.BigEndian.Uint32(data) == Magic:
		order = binary.BigEndian
	default:
		return nil, ErrMagic
	}
	if v := order.Uint16(data[4:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	stringsOffset := order.Uint32(data[8:])
	numEntries := order.Uint32(data[12:])
	numBuckets := order.Uint32(data[16:])
	maxValueLength := order.Uint32(data[20:])

	if numBuckets == 0 || numBuckets&(numBuckets-1) != 0 {
		return nil, fmt.Errorf("%w: bucket count %d is not a power of two", ErrLayout, numBuckets)
	}
	if uint64(headerSize)+uint64(numBuckets)*bucketSize > uint64(len(data)) {
		return nil, ErrTruncated
	}
	if uint64(stringsOffset) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: string table offset %d past end", ErrLayout, stringsOffset)
	}
	table := data[stringsOffset:]

	h := &HeaderMap{
		buckets:        make([]bucket, numBuckets),
		strings:        append([]byte(nil), table...),
		offsets:        make(map[string]uint32),
		maxValueLength: maxValueLength,
	}
	if len(h.strings) > 0 && h.strings[0] == 0 {
		h.offsets[""] = 0
	}
	count := 0
	for i := range h.buckets {
		p := data[headerSize+i*bucketSize:]
		b := bucket{order.Uint32(p[0:]), order.Uint32(p[4:]), order.Uint32(p[8:])}
		if b.key == 0 {
			continue
		}
		for _, off := range []uint32{b.key, b.prefix, b.suffix} {
			if _, ok := cstring(h.strings, off); !ok {
				return nil, fmt.Errorf("%w: string offset %d out of range", ErrLayout, off)
			}
		}
		h.buckets[i] = b
		count++
	}
	if uint32(count) != numEntries {
		return nil, fmt.Errorf("%w: %d entries declared, %d found", ErrLayout, numEntries, count)
	}
	h.entries = count
	return h, nil
}
