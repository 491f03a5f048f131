// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack

import (
	"bytes"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"

	"github.com/devblok/rendersys/core"
)

type blob struct {
	entry Entry
	data  []byte
}

// Builder assembles a shader pack. Packs cannot be appended to once
// written; Add everything, then call WriteTo.
type Builder struct {
	header Header

	mutex sync.Mutex
	blobs []blob
	names map[string]bool
}

// NewBuilder creates a Builder. The Index of header is filled by WriteTo.
func NewBuilder(header Header) *Builder {
	if header.Version == 0 {
		header.Version = Version
	}
	return &Builder{
		header: header,
		names:  map[string]bool{},
	}
}

// Add compresses code and stores it under name. Blocks until lz4
// finishes compressing. Safe to use from several goroutines.
func (b *Builder) Add(name string, stage core.ShaderStage, code []byte) error {
	return b.AddShader(core.ShaderDescriptor{Name: name, Stage: stage, Code: code})
}

// AddShader stores a shader descriptor.
func (b *Builder) AddShader(desc core.ShaderDescriptor) error {
	if desc.Name == "" {
		return errors.New("shader has no name")
	}
	if desc.EntryPoint == "" {
		desc.EntryPoint = "main"
	}

	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := writer.Write(desc.Code); err != nil {
		return errors.Wrapf(err, "compress %q", desc.Name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compress %q", desc.Name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.names[desc.Name] {
		return errors.Newf("shader %q added twice", desc.Name)
	}
	b.names[desc.Name] = true
	b.blobs = append(b.blobs, blob{
		entry: Entry{
			Name:           desc.Name,
			Stage:          desc.Stage,
			EntryPoint:     desc.EntryPoint,
			Size:           int64(len(desc.Code)),
			CompressedSize: int64(compressed.Len()),
		},
		data: compressed.Bytes(),
	})
	return nil
}

// Len is the number of shaders added so far.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.blobs)
}

// WriteTo writes the pack to w. The Builder keeps its shaders, so
// WriteTo can be called again.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = make([]Entry, 0, len(b.blobs))
	var offset int64
	for _, v := range b.blobs {
		e := v.entry
		e.Offset = offset
		offset += e.CompressedSize
		header.Index = append(header.Index, e)
	}

	rawHeader, err := encodeHeader(header)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(rawHeader)
	written := int64(n)
	if err != nil {
		return written, errors.Wrap(err, "write header")
	}
	for _, v := range b.blobs {
		n, err := w.Write(v.data)
		written += int64(n)
		if err != nil {
			return written, errors.Wrapf(err, "write %q", v.entry.Name)
		}
	}
	return written, nil
}
