package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devblok/rendersys/display"
	"github.com/devblok/rendersys/shaderpack"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestCapsJSON(t *testing.T) {
	var report capsReport
	require.NoError(t, json.Unmarshal(run(t, "caps", "--backend", "noop", "--json"), &report))

	assert.Equal(t, "Noop Device", report.Renderer.DeviceName)
	assert.Equal(t, uint32(16384), report.Capabilities.Max2DTextureSize)
	assert.Equal(t, uint32(1), report.QueueFamilies.Transfer)
}

func TestCapsText(t *testing.T) {
	out := string(run(t, "caps", "--backend", "noop"))
	assert.Contains(t, out, "Noop Device")
	assert.Contains(t, out, "Queue families")
}

func TestDevicesJSON(t *testing.T) {
	var infos []map[string]interface{}
	require.NoError(t, json.Unmarshal(run(t, "devices", "-b", "noop", "--json"), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "Noop Device", infos[0]["name"])
}

func TestUnknownBackend(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"caps", "--backend", "missing"})
	assert.Error(t, cmd.Execute())
}

type staticProvider []display.Monitor

func (p staticProvider) EachMonitor(fn func(display.Monitor) bool) error {
	for _, m := range p {
		if !fn(m) {
			break
		}
	}
	return nil
}

type staticMonitor struct{}

func (staticMonitor) Name() string { return "TEST-1" }
func (staticMonitor) Bounds() display.Bounds { return display.Bounds{Width: 1024, Height: 768} }
func (staticMonitor) Primary() bool { return true }

func (staticMonitor) CurrentMode() (display.RawMode, error) {
	return display.RawMode{Width: 1024, Height: 768, Fields: display.FieldWidth | display.FieldHeight}, nil
}

func (staticMonitor) EachMode(fn func(display.RawMode) bool) error {
	fn(display.RawMode{Width: 1024, Height: 768, RefreshRate: 75, Fields: display.FieldAll})
	return nil
}

func TestDisplays(t *testing.T) {
	display.RegisterProvider("static", func() (display.Provider, func(), error) {
		return staticProvider{staticMonitor{}}, func() {}, nil
	})

	out := string(run(t, "displays", "--provider", "static"))
	assert.Contains(t, out, "TEST-1 (primary)")
	assert.Contains(t, out, "1024x768@60Hz")
	assert.Contains(t, out, "1024x768@75Hz")
}

func TestPackBuildAndList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.vert.spv"), []byte{3, 2, 0x23, 7}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.frag.spv"), []byte{3, 2, 0x23, 7}, 0o644))
	path := filepath.Join(t.TempDir(), "out.rspk")

	run(t, "pack", "build", dir, "-o", path, "--author", "devblok")

	var header shaderpack.Header
	require.NoError(t, json.Unmarshal(run(t, "pack", "list", path, "--json"), &header))
	assert.Equal(t, "devblok", header.Author)
	assert.Len(t, header.Index, 2)
}

func TestPackBuildEmptyDir(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"pack", "build", t.TempDir(), "-o", filepath.Join(t.TempDir(), "x.rspk")})
	assert.Error(t, cmd.Execute())
}
