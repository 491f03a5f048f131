package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/devblok/rendersys/caps"
	"github.com/devblok/rendersys/core"
)

type capsReport struct {
	Renderer      caps.RendererInfo  `json:"renderer"`
	Capabilities  caps.Capabilities  `json:"capabilities"`
	QueueFamilies core.QueueFamilies `json:"queueFamilies"`
	Connection    core.Connection    `json:"connection"`
}

func newCapsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Open the render system and print the selected device's capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.configuration()
			if err != nil {
				return err
			}
			b, err := opts.openBackend(cfg)
			if err != nil {
				return err
			}

			rs := core.New(b, cfg)
			defer rs.Shutdown()
			if err := rs.Open(cfg.AppInfo(), cfg.Renderer.Debug); err != nil {
				return errors.Wrap(err, "open render system")
			}

			report := capsReport{Connection: rs.Connection()}
			report.Renderer, _ = rs.RendererInfo()
			report.Capabilities, _ = rs.Capabilities()
			report.QueueFamilies, _ = rs.QueueFamilies()

			p := opts.printer(cmd)
			if p.json {
				return p.JSON(report)
			}
			printCaps(p, report)
			return nil
		},
	}
}

func printCaps(p *printer, r capsReport) {
	p.Title(r.Renderer.DeviceName)
	p.Field("renderer", r.Renderer.RendererName)
	p.Field("vendor", r.Renderer.VendorName)
	p.Field("shading language", r.Renderer.ShadingLanguageName)
	p.Field("screen origin", r.Capabilities.ScreenOrigin)
	p.Field("clipping range", r.Capabilities.ClippingRange)
	p.Field("layers", r.Connection.Layers)

	c := r.Capabilities
	p.Title("Features")
	p.Flag("render targets", c.HasRenderTargets)
	p.Flag("3D textures", c.Has3DTextures)
	p.Flag("cube textures", c.HasCubeTextures)
	p.Flag("texture arrays", c.HasTextureArrays)
	p.Flag("cube texture arrays", c.HasCubeTextureArrays)
	p.Flag("multi-sample textures", c.HasMultiSampleTextures)
	p.Flag("geometry shaders", c.HasGeometryShaders)
	p.Flag("tessellation shaders", c.HasTessellationShaders)
	p.Flag("compute shaders", c.HasComputeShaders)
	p.Flag("offset instancing", c.HasOffsetInstancing)
	p.Flag("viewport arrays", c.HasViewportArrays)
	p.Flag("conservative rasterization", c.HasConservativeRasterization)
	p.Flag("stream outputs", c.HasStreamOutputs)

	p.Title("Limits")
	p.Field("texture array layers", c.MaxNumTextureArrayLayers)
	p.Field("render target attachments", c.MaxNumRenderTargetAttachments)
	p.Field("constant buffer size", c.MaxConstantBufferSize)
	p.Field("patch vertices", c.MaxPatchVertices)
	p.Field("texture size 1D/2D/3D/cube", fmt.Sprintf("%d/%d/%d/%d",
		c.Max1DTextureSize, c.Max2DTextureSize, c.Max3DTextureSize, c.MaxCubeTextureSize))
	p.Field("anisotropy", c.MaxAnisotropy)
	p.Field("compute work groups", c.MaxNumComputeShaderWorkGroups)
	p.Field("compute work group size", c.MaxComputeShaderWorkGroupSize)
	p.Field("buffer size", c.MaxBufferSize)

	q := r.QueueFamilies
	p.Title("Queue families")
	p.Field("graphics", q.Graphics)
	p.Field("compute", q.Compute)
	p.Field("transfer", q.Transfer)
	p.Field("present", q.Present)
}
