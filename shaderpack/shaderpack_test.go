// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shaderpack_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/shaderpack"
)

var (
	vertexCode   = bytes.Repeat([]byte{0x03, 0x02, 0x23, 0x07}, 256)
	fragmentCode = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}
)

func build(t *testing.T) []byte {
	t.Helper()
	builder := shaderpack.NewBuilder(shaderpack.Header{
		Author:      "devblok",
		DateCreated: time.Now().Unix(),
	})
	require.NoError(t, builder.Add("basic.vert", core.VertexStage, vertexCode))
	require.NoError(t, builder.AddShader(core.ShaderDescriptor{
		Name:       "basic.frag",
		Stage:      core.FragmentStage,
		EntryPoint: "fs_main",
		Code:       fragmentCode,
	}))

	var buf bytes.Buffer
	written, err := builder.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), written)
	return buf.Bytes()
}

func TestCreateAndRead(t *testing.T) {
	pack, err := shaderpack.Open(bytes.NewReader(build(t)))
	require.NoError(t, err)

	header := pack.Header()
	assert.Equal(t, "devblok", header.Author)
	assert.Equal(t, int64(shaderpack.Version), header.Version)

	entries := pack.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "basic.vert", entries[0].Name)
	assert.Equal(t, int64(len(vertexCode)), entries[0].Size)
	assert.Less(t, entries[0].CompressedSize, entries[0].Size)
	assert.Equal(t, entries[0].CompressedSize, entries[1].Offset)

	code, err := pack.ReadAll("basic.vert")
	require.NoError(t, err)
	assert.Equal(t, vertexCode, code)

	frag, err := pack.Shader("basic.frag")
	require.NoError(t, err)
	assert.Equal(t, core.ShaderDescriptor{
		Name:       "basic.frag",
		Stage:      core.FragmentStage,
		EntryPoint: "fs_main",
		Code:       fragmentCode,
	}, frag)

	vert, err := pack.Shader("basic.vert")
	require.NoError(t, err)
	assert.Equal(t, "main", vert.EntryPoint)
}

func TestConcurrentReads(t *testing.T) {
	pack, err := shaderpack.Open(bytes.NewReader(build(t)))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := pack.ReadAll("basic.vert")
			assert.NoError(t, err)
			assert.Equal(t, vertexCode, code)
		}()
	}
	wg.Wait()
}

func TestNotFound(t *testing.T) {
	pack, err := shaderpack.Open(bytes.NewReader(build(t)))
	require.NoError(t, err)

	_, err = pack.Shader("missing.frag")
	assert.True(t, errors.Is(err, shaderpack.ErrNotFound))
}

func TestNotAPack(t *testing.T) {
	tests := map[string][]byte{
		"empty":       {},
		"wrong magic": []byte("KAR\x00\x01\x00\x00\x00\x00\x00\x00\x00"),
		"truncated":   build(t)[:20],
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := shaderpack.Open(bytes.NewReader(data))
			assert.True(t, errors.Is(err, shaderpack.ErrFileFormat), "%v", err)
		})
	}
}

func TestBuilderRejectsDuplicates(t *testing.T) {
	builder := shaderpack.NewBuilder(shaderpack.Header{})
	require.NoError(t, builder.Add("a.vert", core.VertexStage, vertexCode))
	assert.Error(t, builder.Add("a.vert", core.VertexStage, vertexCode))
	assert.Error(t, builder.Add("", core.VertexStage, vertexCode))
	assert.Equal(t, 1, builder.Len())
}

func TestLoadDirAndOpenFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"basic.vert.spv":      vertexCode,
		"basic.frag.spv":      fragmentCode,
		"basic.frag":          []byte("#version 450"),
		"odd.name.frag.spv":   fragmentCode,
		"unknown.stage.spv":   fragmentCode,
		"sub/nested.comp.spv": vertexCode,
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}

	shaders, err := shaderpack.LoadDir(dir)
	require.NoError(t, err)
	stages := map[string]core.ShaderStage{}
	for _, s := range shaders {
		stages[s.Name] = s.Stage
	}
	assert.Equal(t, map[string]core.ShaderStage{
		"basic.frag":  core.FragmentStage,
		"basic.vert":  core.VertexStage,
		"nested.comp": core.ComputeStage,
	}, stages)

	builder := shaderpack.NewBuilder(shaderpack.Header{Author: "devblok"})
	require.NoError(t, builder.AddDir(dir))

	path := filepath.Join(t.TempDir(), "shaders.rspk")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = builder.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	pack, err := shaderpack.OpenFile(path)
	require.NoError(t, err)
	defer pack.Close()

	code, err := pack.ReadAll("nested.comp")
	require.NoError(t, err)
	assert.Equal(t, vertexCode, code)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := shaderpack.LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
