// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"

	"github.com/devblok/rendersys/core"
)

// Pack provides concurrent access to the shaders of a pack.
type Pack struct {
	reader  io.ReaderAt
	closer  io.Closer
	header  Header
	base    int64
	entries map[string]int
}

// Open reads the pack header from r and checks that it is a shader pack.
func Open(r io.ReaderAt) (*Pack, error) {
	fixed := make([]byte, MagicLength+HeaderSizeLength)
	if _, err := r.ReadAt(fixed, 0); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read magic"), ErrFileFormat)
	}
	if !bytes.Equal(fixed[:MagicLength], magic[:]) {
		return nil, ErrFileFormat
	}

	headerSize := int64(binary.LittleEndian.Uint64(fixed[MagicLength:]))
	if headerSize <= 0 || headerSize > 1<<30 {
		return nil, errors.Wrapf(ErrFileFormat, "header size %d", headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := r.ReadAt(headerBytes, int64(len(fixed))); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read header"), ErrFileFormat)
	}

	header, err := decodeHeader(headerBytes)
	if err != nil {
		return nil, err
	}

	p := &Pack{
		reader:  r,
		header:  header,
		base:    int64(len(fixed)) + headerSize,
		entries: make(map[string]int, len(header.Index)),
	}
	for i, e := range header.Index {
		p.entries[e.Name] = i
	}
	return p, nil
}

// OpenFile memory maps the pack at path. Close releases the mapping.
func OpenFile(path string) (*Pack, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %s", path)
	}
	p, err := Open(m)
	if err != nil {
		m.Close()
		return nil, errors.Wrap(err, path)
	}
	p.closer = m
	return p, nil
}

// Close releases the file mapping of a pack opened with OpenFile.
func (p *Pack) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Header returns the pack header, including its index.
func (p *Pack) Header() Header { return p.header }

// Entries lists the shaders in the order they were added.
func (p *Pack) Entries() []Entry { return p.header.Index }

func (p *Pack) entry(name string) (Entry, error) {
	i, ok := p.entries[name]
	if !ok {
		return Entry{}, errors.Wrapf(ErrNotFound, "%q", name)
	}
	return p.header.Index[i], nil
}

// Open returns a Reader producing the decompressed code of name.
func (p *Pack) Open(name string) (io.Reader, error) {
	e, err := p.entry(name)
	if err != nil {
		return nil, err
	}
	section := io.NewSectionReader(p.reader, p.base+e.Offset, e.CompressedSize)
	return lz4.NewReader(section), nil
}

// ReadAll returns the decompressed code of name.
func (p *Pack) ReadAll(name string) ([]byte, error) {
	e, err := p.entry(name)
	if err != nil {
		return nil, err
	}
	r, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	code := make([]byte, e.Size)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decompress %q", name), ErrFileFormat)
	}
	return code, nil
}

// Shader returns a descriptor ready for RenderSystem.CreateShader.
func (p *Pack) Shader(name string) (core.ShaderDescriptor, error) {
	e, err := p.entry(name)
	if err != nil {
		return core.ShaderDescriptor{}, err
	}
	code, err := p.ReadAll(name)
	if err != nil {
		return core.ShaderDescriptor{}, err
	}
	return core.ShaderDescriptor{
		Name:       e.Name,
		Stage:      e.Stage,
		EntryPoint: e.EntryPoint,
		Code:       code,
	}, nil
}
