package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/devblok/rendersys/backend"
	_ "github.com/devblok/rendersys/backend/noop"
	_ "github.com/devblok/rendersys/backend/vulkan"
	"github.com/devblok/rendersys/core"
	_ "github.com/devblok/rendersys/display/glfw"
	_ "github.com/devblok/rendersys/display/sdl"
)

type options struct {
	configPath string
	envFiles   []string
	backend    string
	debug      bool
	json       bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "rsinfo",
		Short:         "Inspect GPUs, capabilities and displays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML or YAML configuration file")
	flags.StringSliceVar(&opts.envFiles, "env", nil, "dotenv files to load before reading RENDERSYS_* variables")
	flags.StringVarP(&opts.backend, "backend", "b", "", "backend to open, empty picks the best available")
	flags.BoolVar(&opts.debug, "debug", false, "enable validation layers")
	flags.BoolVar(&opts.json, "json", false, "print JSON")

	root.AddCommand(
		newDevicesCommand(opts),
		newCapsCommand(opts),
		newDisplaysCommand(opts),
		newPackCommand(opts),
	)
	return root
}

func (o *options) configuration() (core.Configuration, error) {
	var (
		cfg core.Configuration
		err error
	)
	if o.configPath != "" {
		cfg, err = core.LoadConfiguration(o.configPath, o.envFiles...)
	} else {
		cfg = core.DefaultConfiguration()
		err = cfg.ApplyEnvironment(o.envFiles...)
	}
	if err != nil {
		return cfg, err
	}

	if o.backend != "" {
		cfg.Renderer.Backend = o.backend
	}
	if o.debug {
		cfg.Renderer.Debug = true
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	return cfg, nil
}

func (o *options) openBackend(cfg core.Configuration) (core.Backend, error) {
	opts := backend.Options{Logger: logrus.StandardLogger()}
	if cfg.Renderer.Backend == "" {
		return backend.Default(opts)
	}
	return backend.Open(cfg.Renderer.Backend, opts)
}

// printer writes either JSON or styled text.
type printer struct {
	w    io.Writer
	out  *termenv.Output
	json bool
}

func (o *options) printer(cmd *cobra.Command) *printer {
	w := cmd.OutOrStdout()
	return &printer{w: w, out: termenv.NewOutput(w), json: o.json}
}

func (p *printer) JSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encode json")
}

func (p *printer) Title(s string) {
	fmt.Fprintln(p.w, p.out.String(s).Bold().Foreground(p.out.Color("6")))
}

func (p *printer) Field(key string, value interface{}) {
	fmt.Fprintf(p.w, "  %s %v\n", p.out.String(key+":").Faint(), value)
}

func (p *printer) Flag(key string, on bool) {
	mark := p.out.String("no").Foreground(p.out.Color("1"))
	if on {
		mark = p.out.String("yes").Foreground(p.out.Color("2"))
	}
	fmt.Fprintf(p.w, "  %s %s\n", p.out.String(key+":").Faint(), mark)
}
