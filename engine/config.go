package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	// Backend is "headless" or "opengl".
	Backend string `toml:"backend"`
	// MaxFrames stops the loop after that many frames. 0 runs until the window closes,
	// which a headless run never does.
	MaxFrames uint64 `toml:"max_frames"`
	// ScenePath is the scene file to build the collection from. Relative paths are
	// resolved against the config file directory.
	ScenePath string `toml:"scene"`
	// WatchScene rebuilds the scene whenever the scene file changes.
	WatchScene bool `toml:"watch_scene"`
}

const defaultHeadlessFrames = 120

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		Name:        "Prism",
		LogLevel:    core.LogLevelInfo,
		Backend:     renderer.Headless.String(),
	}
}

// LoadApplicationConfig reads a TOML config file. Fields missing from the file keep their
// default values.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("%w: %s:%d:%d: %s", core.ErrInvalidConfig, path, row, col, derr.Error())
		}
		return nil, fmt.Errorf("%w: %s: %s", core.ErrInvalidConfig, path, err)
	}

	if cfg.ScenePath != "" && !filepath.IsAbs(cfg.ScenePath) {
		cfg.ScenePath = filepath.Join(filepath.Dir(path), cfg.ScenePath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *ApplicationConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty application name", core.ErrInvalidConfig)
	}
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidConfig, c.StartWidth, c.StartHeight)
	}
	if _, err := c.RendererType(); err != nil {
		return err
	}
	if c.WatchScene && c.ScenePath == "" {
		return fmt.Errorf("%w: watch_scene set without a scene file", core.ErrInvalidConfig)
	}
	return nil
}

func (c *ApplicationConfig) RendererType() (renderer.RendererType, error) {
	return renderer.ParseRendererType(c.Backend)
}

// FrameLimit is the number of frames the loop renders before stopping, 0 for no limit.
// Headless runs always get a limit.
func (c *ApplicationConfig) FrameLimit() uint64 {
	if c.MaxFrames > 0 {
		return c.MaxFrames
	}
	if t, err := c.RendererType(); err == nil && t == renderer.Headless {
		return defaultHeadlessFrames
	}
	return 0
}
