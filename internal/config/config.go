// Package config loads board settings from a TOML file and LOCALBOARD_*
// environment variables. Command-line flags are applied on top by main.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"localboard/internal/board"
)

// EnvPrefix prefixes every environment override, e.g. LOCALBOARD_ROOM.
const EnvPrefix = "LOCALBOARD_"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Listen           string    `toml:"listen"`
	Room             string    `toml:"room"`
	Width            int       `toml:"width"`
	Height           int       `toml:"height"`
	LogLevel         string    `toml:"log_level"`
	RemotePolicy     string    `toml:"remote_policy"`
	KeyframeInterval int       `toml:"keyframe_interval"`
	Brush            Brush     `toml:"brush"`
	Text             Text      `toml:"text"`
	Redis            Redis     `toml:"redis"`
	Discovery        Discovery `toml:"discovery"`
}

type Brush struct {
	Color string  `toml:"color"`
	Size  float64 `toml:"size"`
}

type Text struct {
	FontSize float64 `toml:"font_size"`
	Color    string  `toml:"color"`
}

// Redis enables the Redis channel when Addr is set.
type Redis struct {
	Addr string `toml:"addr"`
}

type Discovery struct {
	MDNS    bool          `toml:"mdns"`
	Timeout time.Duration `toml:"timeout"`
}

// Default returns a configuration that is valid without any file.
func Default() Config {
	return Config{
		Listen:           ":8888",
		Room:             "main",
		Width:            1024,
		Height:           720,
		LogLevel:         "info",
		RemotePolicy:     string(board.PreserveRedo),
		KeyframeInterval: 256,
		Brush:            Brush{Color: "#000000", Size: 1},
		Text:             Text{FontSize: 16, Color: "#000000"},
		Discovery:        Discovery{MDNS: true, Timeout: 3 * time.Second},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("%s: unknown keys %s: %w", path, strings.Join(keys, ", "), ErrInvalid)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from LOCALBOARD_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s=%q: %w", EnvPrefix, name, v, ErrInvalid)
		}
		*dst = n
		return nil
	}

	str("LISTEN", &c.Listen)
	str("ROOM", &c.Room)
	str("LOG_LEVEL", &c.LogLevel)
	str("REMOTE_POLICY", &c.RemotePolicy)
	str("REDIS_ADDR", &c.Redis.Addr)
	str("BRUSH_COLOR", &c.Brush.Color)
	return errors.Join(
		num("WIDTH", &c.Width),
		num("HEIGHT", &c.Height),
		num("KEYFRAME_INTERVAL", &c.KeyframeInterval),
	)
}

// Validate reports every bad value at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format+": %w", append(args, ErrInvalid)...))
	}
	if _, _, err := net.SplitHostPort(c.Listen); err != nil {
		bad("listen %q is not host:port", c.Listen)
	}
	if c.Room == "" || strings.Contains(c.Room, "/") {
		bad("room %q must be non-empty without slashes", c.Room)
	}
	if c.Width <= 0 || c.Height <= 0 {
		bad("canvas size %dx%d must be positive", c.Width, c.Height)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		bad("log_level %q", c.LogLevel)
	}
	if _, err := board.ParsePolicy(c.RemotePolicy); err != nil {
		bad("remote_policy %q", c.RemotePolicy)
	}
	if c.KeyframeInterval < 0 {
		bad("keyframe_interval %d must not be negative", c.KeyframeInterval)
	}
	if c.Brush.Size <= 0 {
		bad("brush size %v must be positive", c.Brush.Size)
	}
	if c.Text.FontSize <= 0 {
		bad("text font_size %v must be positive", c.Text.FontSize)
	}
	if c.Discovery.Timeout < 0 {
		bad("discovery timeout %v must not be negative", c.Discovery.Timeout)
	}
	return errors.Join(errs...)
}

// Policy returns the parsed remote policy. Call Validate first.
func (c Config) Policy() board.Policy {
	p, _ := board.ParsePolicy(c.RemotePolicy)
	return p
}

// Params returns the initial tool settings.
func (c Config) Params() board.Params {
	p := board.DefaultParams()
	p.Color = c.Brush.Color
	p.Size = c.Brush.Size
	p.FontSize = c.Text.FontSize
	p.FontColor = c.Text.Color
	return p
}

// SessionConfig returns the board session settings for peer.
func (c Config) SessionConfig(peer string) board.Config {
	interval := c.KeyframeInterval
	if interval == 0 {
		interval = -1
	}
	return board.Config{
		Width:            c.Width,
		Height:           c.Height,
		Peer:             peer,
		Policy:           c.Policy(),
		KeyframeInterval: interval,
		Params:           c.Params(),
	}
}
