// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shaderpack is an lz4 backed archive of compiled shaders.
// Every shader is compressed on its own and the index is stored up front,
// so a single shader can be located and decompressed without touching the
// rest of the pack. Packs are meant to be memory mapped and can be read
// from concurrently.
package shaderpack

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/cockroachdb/errors"

	"github.com/devblok/rendersys/core"
)

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a shader pack")
	ErrNotFound   = errors.New("shader not in pack")
)

// Sizes of the fixed part of the file header
const (
	MagicLength      = 4
	HeaderSizeLength = 8
)

// Version of the pack layout written by Builder.
const Version = 1

var magic = [MagicLength]byte{'R', 'S', 'P', 'K'}

// Entry is info for one shader in the index. Offset is relative to the
// first byte after the header.
type Entry struct {
	Name           string
	Stage          core.ShaderStage
	EntryPoint     string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the file header for shader packs.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []Entry
}

func (h *Header) dataSize() int64 {
	var size int64
	for _, e := range h.Index {
		size += e.CompressedSize
	}
	return size
}

func encodeHeader(h Header) ([]byte, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(h); err != nil {
		return nil, errors.Wrap(err, "encode header")
	}

	out := make([]byte, MagicLength+HeaderSizeLength, MagicLength+HeaderSizeLength+body.Len())
	copy(out, magic[:])
	binary.LittleEndian.PutUint64(out[MagicLength:], uint64(body.Len()))
	return append(out, body.Bytes()...), nil
}

func decodeHeader(bts []byte) (Header, error) {
	var h Header
	if err := gob.NewDecoder(bytes.NewReader(bts)).Decode(&h); err != nil {
		return h, errors.Mark(errors.Wrap(err, "decode header"), ErrFileFormat)
	}
	return h, nil
}
