package shaderpack

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/devblok/rendersys/core"
)

const shaderSuffix = ".spv"

// LoadDir reads the compiled shaders under dir. A shader file is named
// name.stage.spv where stage is one of vert, tesc, tese, geom, frag or
// comp; other files are skipped. Shaders are named name.stage.
func LoadDir(dir string) ([]core.ShaderDescriptor, error) {
	var shaders []core.ShaderDescriptor
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), shaderSuffix) {
			return nil
		}

		name := strings.TrimSuffix(d.Name(), shaderSuffix)
		nodes := strings.Split(name, ".")
		if len(nodes) != 2 {
			return nil
		}
		stage, ok := core.ParseShaderStage(nodes[1])
		if !ok {
			return nil
		}

		code, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		shaders = append(shaders, core.ShaderDescriptor{
			Name:       name,
			Stage:      stage,
			EntryPoint: "main",
			Code:       code,
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load shaders from %s", dir)
	}
	return shaders, nil
}

// AddDir adds every shader LoadDir finds under dir.
func (b *Builder) AddDir(dir string) error {
	shaders, err := LoadDir(dir)
	if err != nil {
		return err
	}
	for _, s := range shaders {
		if err := b.AddShader(s); err != nil {
			return err
		}
	}
	return nil
}
