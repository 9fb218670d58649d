/*
Copyright 2024 Tim St. Pierre
Configuration file for the lcdtext tool
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tstpierre-tc/hd44780"
)

// Backends carrying the LCD bus.
const (
	BackendGPIO     = "gpio"
	BackendPCF8574  = "pcf8574"
	BackendMCP23008 = "mcp23008"
)

// GPIOConfig names the periph GPIO pins of a directly wired display.
type GPIOConfig struct {
	RS string `yaml:"rs"`
	E  string `yaml:"e"`
	// RW is only needed with the busy flag.
	RW string `yaml:"rw,omitempty"`
	// Data lists D4..D7 for a 4-bit bus or D0..D7 for an 8-bit bus.
	Data []string `yaml:"data"`
}

// I2CConfig locates an expander on an I²C bus.
type I2CConfig struct {
	// Bus is the periph bus name; empty opens the first bus.
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`
}

// Config is the top-level tool configuration.
type Config struct {
	Backend  string     `yaml:"backend"`
	Bus      string     `yaml:"bus"`
	BusyFlag bool       `yaml:"busy_flag"`
	BusyBit  *uint8     `yaml:"busy_bit,omitempty"`
	Lines    uint8      `yaml:"lines"`
	Cols     uint8      `yaml:"cols"`
	Font5x10 bool       `yaml:"font_5x10"`
	GPIO     GPIOConfig `yaml:"gpio"`
	I2C      I2CConfig  `yaml:"i2c"`
	// Backlight applies to both I²C backpacks.
	Backlight bool   `yaml:"backlight"`
	LogLevel  string `yaml:"log_level"`
}

// DefaultConfig returns a 16x2 display on a PCF8574 backpack.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendPCF8574,
		Bus:       hd44780.Bus4Bit.String(),
		Lines:     2,
		Cols:      16,
		I2C:       I2CConfig{Addr: 0x27},
		Backlight: true,
		LogLevel:  "info",
	}
}

// Normalize fills in zero values so partially-filled files still work.
func (c *Config) Normalize() {
	if c.Backend == "" {
		c.Backend = BackendPCF8574
	}
	if c.Bus == "" {
		c.Bus = hd44780.Bus4Bit.String()
	}
	if c.Lines == 0 {
		c.Lines = 2
	}
	if c.Cols == 0 {
		c.Cols = 16
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Opts converts the display section into driver options.
func (c *Config) Opts() (*hd44780.Opts, error) {
	opts := &hd44780.Opts{
		Lines:    c.Lines,
		Cols:     c.Cols,
		BusyFlag: c.BusyFlag,
		BusyBit:  hd44780.DefaultOpts.BusyBit,
		Font5x10: c.Font5x10,
	}
	if c.BusyBit != nil {
		opts.BusyBit = *c.BusyBit
	}
	switch c.Bus {
	case hd44780.Bus4Bit.String():
		opts.Width = hd44780.Bus4Bit
	case hd44780.Bus8Bit.String():
		opts.Width = hd44780.Bus8Bit
	default:
		return nil, fmt.Errorf("config: unknown bus %q", c.Bus)
	}
	switch c.Backend {
	case BackendGPIO:
		if n := len(c.GPIO.Data); n != int(opts.Width) {
			return nil, fmt.Errorf("config: %s bus needs %d data pins, got %d", c.Bus, opts.Width, n)
		}
		if c.BusyFlag && c.GPIO.RW == "" {
			return nil, errors.New("config: busy_flag needs gpio.rw")
		}
	case BackendPCF8574:
		if opts.Width != hd44780.Bus4Bit {
			return nil, errors.New("config: pcf8574 backpack is wired for a 4bit bus")
		}
	case BackendMCP23008:
		if opts.Width != hd44780.Bus4Bit || c.BusyFlag {
			return nil, errors.New("config: mcp23008 backpack is wired for a 4bit bus without R/W")
		}
	default:
		return nil, fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return opts, nil
}

// Load reads the YAML file at path. A missing file is created with the
// default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".lcdtext-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
