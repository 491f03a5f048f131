package core_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/devblok/rendersys/core"
)

type stage core.ShaderStage

func (stage) Destroy() {}
func (stage) Name() string { return "" }
func (s stage) Stage() core.ShaderStage { return core.ShaderStage(s) }

func shaders(stages ...core.ShaderStage) []core.Shader {
	out := make([]core.Shader, len(stages))
	for i, s := range stages {
		out[i] = stage(s)
	}
	return out
}

func TestValidateStages(t *testing.T) {
	valid := [][]core.ShaderStage{
		{core.VertexStage},
		{core.VertexStage, core.FragmentStage},
		{core.VertexStage, core.TessControlStage, core.TessEvaluationStage, core.GeometryStage, core.FragmentStage},
		{core.ComputeStage},
	}
	for _, stages := range valid {
		assert.NoError(t, core.ValidateStages(shaders(stages...)), "%v", stages)
	}

	invalid := [][]core.ShaderStage{
		nil,
		{core.FragmentStage},
		{core.VertexStage, core.VertexStage},
		{core.ComputeStage, core.VertexStage},
		{core.VertexStage, core.TessControlStage},
	}
	for _, stages := range invalid {
		err := core.ValidateStages(shaders(stages...))
		assert.True(t, errors.Is(err, core.ErrPrecondition), "%v", stages)
	}
}
