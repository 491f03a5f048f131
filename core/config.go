package core

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration
const (
	EnvDebug    = "RENDERSYS_DEBUG"
	EnvBackend  = "RENDERSYS_BACKEND"
	EnvAppName  = "RENDERSYS_APP_NAME"
	EnvDisplay  = "RENDERSYS_DISPLAY"
	EnvLogLevel = "RENDERSYS_LOG_LEVEL"
)

// Configuration defines a global render system configuration setting
type Configuration struct {
	Renderer RendererConfiguration `toml:"renderer" yaml:"renderer"`
	Display  DisplayConfiguration  `toml:"display" yaml:"display"`
	LogLevel string                `toml:"log_level" yaml:"log_level"`

	// Logger receives everything the render system logs,
	// the standard logrus logger is used when nil
	Logger logrus.FieldLogger `toml:"-" yaml:"-"`
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	// Backend names the backend to open, empty picks the best available
	Backend string `toml:"backend" yaml:"backend"`

	ApplicationName string `toml:"application_name" yaml:"application_name"`
	EngineName      string `toml:"engine_name" yaml:"engine_name"`

	// Debug enables validation layers and driver diagnostics
	Debug bool `toml:"debug" yaml:"debug"`

	// DeviceExtensions are required from the physical device
	// on top of the swapchain extension
	DeviceExtensions []string `toml:"device_extensions" yaml:"device_extensions"`

	SwapchainSize uint32 `toml:"swapchain_size" yaml:"swapchain_size"`
	ScreenWidth   uint32 `toml:"screen_width" yaml:"screen_width"`
	ScreenHeight  uint32 `toml:"screen_height" yaml:"screen_height"`
}

// DisplayConfiguration is used to configure display enumeration
type DisplayConfiguration struct {
	// Provider names the platform display provider, e.g. "sdl", "glfw" or "win32"
	Provider string `toml:"provider" yaml:"provider"`
}

// DefaultConfiguration returns the configuration used when nothing is set.
func DefaultConfiguration() Configuration {
	return Configuration{
		Renderer: RendererConfiguration{
			ApplicationName: DefaultAppInfo.Name,
			EngineName:      DefaultAppInfo.EngineName,
			SwapchainSize:   3,
			ScreenWidth:     800,
			ScreenHeight:    600,
		},
		Display: DisplayConfiguration{
			Provider: "sdl",
		},
		LogLevel: "info",
	}
}

// LoadConfiguration reads a TOML or YAML file, chosen by extension, on
// top of the defaults and applies environment overrides.
func LoadConfiguration(path string, envFiles ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read configuration")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, errors.Newf("unknown configuration format %q", filepath.Ext(path))
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "decode %s", path)
	}

	if err := cfg.ApplyEnvironment(envFiles...); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnvironment loads the given dotenv files, if any, and overrides
// fields with the RENDERSYS_* variables that are set.
func (c *Configuration) ApplyEnvironment(envFiles ...string) error {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return errors.Wrap(err, "load environment files")
		}
	}
	envy.Reload()

	if v := envy.Get(EnvDebug, ""); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "parse %s", EnvDebug)
		}
		c.Renderer.Debug = debug
	}
	c.Renderer.Backend = envy.Get(EnvBackend, c.Renderer.Backend)
	c.Renderer.ApplicationName = envy.Get(EnvAppName, c.Renderer.ApplicationName)
	c.Display.Provider = envy.Get(EnvDisplay, c.Display.Provider)
	c.LogLevel = envy.Get(EnvLogLevel, c.LogLevel)
	return nil
}

// AppInfo builds the application description for Initialize.
func (c Configuration) AppInfo() AppInfo {
	info := DefaultAppInfo
	if c.Renderer.ApplicationName != "" {
		info.Name = c.Renderer.ApplicationName
	}
	if c.Renderer.EngineName != "" {
		info.EngineName = c.Renderer.EngineName
	}
	return info
}

// logger returns the configured logger or a new one at LogLevel.
// The standard logrus logger is never modified.
func (c Configuration) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	std := logrus.StandardLogger()
	logger := logrus.New()
	logger.SetOutput(std.Out)
	logger.SetFormatter(std.Formatter)
	logger.SetLevel(std.GetLevel())
	if c.LogLevel == "" {
		return logger
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).WithField("level", c.LogLevel).Warn("ignoring unknown log level")
		return logger
	}
	logger.SetLevel(level)
	return logger
}
