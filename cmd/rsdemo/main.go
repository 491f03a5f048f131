// Command rsdemo opens an SDL window, brings the render system up on the
// window's Vulkan loader and builds a graphics pipeline from compiled
// shaders, then runs the event loop until the window is closed.
package main

import (
	"os"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/rendersys/backend"
	"github.com/devblok/rendersys/backend/vulkan"
	"github.com/devblok/rendersys/core"
	"github.com/devblok/rendersys/shaderpack"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var (
		configPath string
		shaders    string
		fps        int
	)
	cmd := &cobra.Command{
		Use:          "rsdemo",
		Short:        "Render system demo window",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			cfg := core.DefaultConfiguration()
			if configPath != "" {
				var err error
				if cfg, err = core.LoadConfiguration(configPath); err != nil {
					return err
				}
			} else if err := cfg.ApplyEnvironment(); err != nil {
				return err
			}
			return run(cfg, shaders, fps)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML or YAML configuration file")
	cmd.Flags().StringVarP(&shaders, "shaders", "s", "./shaders", "shader directory or .rspk pack")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second")

	if err := cmd.Execute(); err != nil {
		logrus.WithError(err).Error("rsdemo failed")
		os.Exit(1)
	}
}

func newWindow(cfg core.RendererConfiguration) (*sdl.Window, error) {
	window, err := sdl.CreateWindow(cfg.ApplicationName,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.ScreenWidth),
		int32(cfg.ScreenHeight),
		sdl.WINDOW_VULKAN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow")
	}
	return window, nil
}

func run(cfg core.Configuration, shaderPath string, fps int) error {
	log := logrus.StandardLogger()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return errors.Wrap(err, "sdl.VulkanLoadLibrary")
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := newWindow(cfg.Renderer)
	if err != nil {
		return err
	}
	defer window.Destroy()

	b, err := backend.Open(vulkan.Name, backend.Options{
		Logger:             log,
		ProcAddr:           sdl.VulkanGetVkGetInstanceProcAddr(),
		InstanceExtensions: window.VulkanGetInstanceExtensions(),
	})
	if err != nil {
		return err
	}

	rs := core.New(b, cfg)
	defer rs.Shutdown()
	if err := rs.Open(cfg.AppInfo(), cfg.Renderer.Debug); err != nil {
		return err
	}

	if err := buildPipeline(rs, cfg.Renderer, shaderPath); err != nil {
		return err
	}
	log.WithField("resources", rs.LiveResources()).Info("pipeline ready")

	clock := newClock(fps)
	defer clock.Stop()

EventLoop:
	for range clock.C() {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch et := event.(type) {
			case *sdl.KeyboardEvent:
				if et.Keysym.Sym == sdl.K_ESCAPE {
					break EventLoop
				}
			case *sdl.QuitEvent:
				break EventLoop
			}
		}
		clock.Frame()
	}

	log.WithField("frame", clock.Average().String()).Info("event loop exited")
	return nil
}

func loadShaders(path string) ([]core.ShaderDescriptor, error) {
	if !strings.HasSuffix(path, ".rspk") {
		return shaderpack.LoadDir(path)
	}

	pack, err := shaderpack.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer pack.Close()

	var shaders []core.ShaderDescriptor
	for _, e := range pack.Entries() {
		s, err := pack.Shader(e.Name)
		if err != nil {
			return nil, err
		}
		shaders = append(shaders, s)
	}
	return shaders, nil
}

func buildPipeline(rs *core.RenderSystem, cfg core.RendererConfiguration, shaderPath string) error {
	if _, err := rs.CreateRenderContext(core.RenderContextDescriptor{
		Width:         cfg.ScreenWidth,
		Height:        cfg.ScreenHeight,
		SwapchainSize: cfg.SwapchainSize,
		VSync:         true,
	}); err != nil {
		return errors.Wrap(err, "render context")
	}

	descs, err := loadShaders(shaderPath)
	if err != nil {
		return err
	}

	program, err := rs.CreateShaderProgram(core.ShaderProgramDescriptor{})
	if err != nil {
		return errors.Wrap(err, "shader program")
	}
	for _, desc := range descs {
		shader, err := rs.CreateShader(desc)
		if err != nil {
			return errors.Wrapf(err, "shader %s", desc.Name)
		}
		if err := rs.AttachShader(program, shader); err != nil {
			return err
		}
	}
	if err := rs.LinkShaderProgram(program); err != nil {
		return err
	}

	if _, err := rs.CreateGraphicsPipeline(core.GraphicsPipelineDescriptor{
		Program:  program,
		Topology: core.TriangleList,
		CullMode: core.CullBack,
	}); err != nil {
		return errors.Wrap(err, "graphics pipeline")
	}

	if _, err := rs.CreateCommandEncoder(core.CommandEncoderDescriptor{}); err != nil {
		return errors.Wrap(err, "command encoder")
	}
	return nil
}
