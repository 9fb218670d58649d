/*
Copyright 2024 Tim St. Pierre
lcdtext writes text to an HD44780 character display
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/tstpierre-tc/hd44780"
	"github.com/tstpierre-tc/hd44780/internal/config"
)

type flagConfig struct {
	configPath string
	clear      bool
	x, y       uint
	stdin      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		log.WithError(err).WithField("config_path", flags.configPath).Fatal("failed to load config")
	}
	level, err := log.ParseLevel(conf.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("bad log_level")
	}
	log.SetLevel(level)

	opts, err := conf.Opts()
	if err != nil {
		log.WithError(err).Fatal("bad display config")
	}
	log.WithFields(log.Fields{
		"backend":   conf.Backend,
		"bus":       opts.Width,
		"busy_flag": opts.BusyFlag,
		"lines":     opts.Lines,
		"cols":      opts.Cols,
	}).Info("effective config")

	if _, err := host.Init(); err != nil {
		log.WithError(err).Fatal("periph host init failed")
	}

	pins, closeBus, err := bind(conf)
	if err != nil {
		log.WithError(err).Fatal("failed to bind display pins")
	}
	defer closeBus()

	dev, err := hd44780.New(pins, opts)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize display")
	}
	log.Infof("%s ready", dev)

	if err := run(dev, flags, strings.Join(flag.Args(), " "), os.Stdin); err != nil {
		log.WithError(err).Fatal("write failed")
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/lcdtext/config.yaml", "Path to config file")
	flag.BoolVar(&cfg.clear, "clear", false, "Clear the display before writing")
	flag.UintVar(&cfg.x, "x", 0, "Start column")
	flag.UintVar(&cfg.y, "y", 0, "Start line")
	flag.BoolVar(&cfg.stdin, "stdin", false, "Copy stdin lines to the display")

	flag.Parse()

	return cfg
}

// screen is the part of the display the tool drives.
type screen interface {
	Clear() error
	Goto(x, y uint8) error
	PutString(s string) error
}

func run(dev screen, flags flagConfig, text string, stdin io.Reader) error {
	if flags.clear {
		if err := dev.Clear(); err != nil {
			return err
		}
	}
	if err := dev.Goto(uint8(flags.x), uint8(flags.y)); err != nil {
		return err
	}
	if err := dev.PutString(strings.ReplaceAll(text, `\n`, "\n")); err != nil {
		return err
	}
	if !flags.stdin {
		return nil
	}
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := dev.PutString(scanner.Text() + "\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// bind resolves the configured backend into a pin binding. The returned func
// releases the I²C bus, if one was opened.
func bind(conf *config.Config) (hd44780.Pins, func(), error) {
	noop := func() {}
	if conf.Backend == config.BackendGPIO {
		pins, err := gpioPins(conf.GPIO)
		return pins, noop, err
	}

	bus, err := i2creg.Open(conf.I2C.Bus)
	if err != nil {
		return hd44780.Pins{}, noop, fmt.Errorf("failed to open I²C bus: %w", err)
	}
	closeBus := func() { _ = bus.Close() }
	// PCF8574 tops out at 100kHz
	if err := bus.SetSpeed(100 * physic.KiloHertz); err != nil {
		log.WithError(err).Warn("could not set I²C bus speed")
	}
	pins, err := expanderPins(conf, bus)
	if err != nil {
		closeBus()
		return hd44780.Pins{}, noop, err
	}
	return pins, closeBus, nil
}

func expanderPins(conf *config.Config, bus i2c.Bus) (hd44780.Pins, error) {
	switch conf.Backend {
	case config.BackendPCF8574:
		p, err := hd44780.NewPCF8574(bus, conf.I2C.Addr)
		if err != nil {
			return hd44780.Pins{}, err
		}
		if err := p.SetBacklight(conf.Backlight); err != nil {
			return hd44780.Pins{}, err
		}
		return hd44780.BackpackPins(p), nil
	default:
		p, err := hd44780.NewMCP23008(bus, conf.I2C.Addr)
		if err != nil {
			return hd44780.Pins{}, err
		}
		if err := p.SetBacklight(conf.Backlight); err != nil {
			return hd44780.Pins{}, err
		}
		return hd44780.AdafruitPins(p), nil
	}
}

func gpioPins(c config.GPIOConfig) (hd44780.Pins, error) {
	lookup := func(name string) (gpio.PinIO, error) {
		if name == "" {
			return nil, nil
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("gpio %s not found", name)
		}
		return p, nil
	}
	rs, err := lookup(c.RS)
	if err != nil {
		return hd44780.Pins{}, err
	}
	e, err := lookup(c.E)
	if err != nil {
		return hd44780.Pins{}, err
	}
	rw, err := lookup(c.RW)
	if err != nil {
		return hd44780.Pins{}, err
	}
	data := make([]gpio.PinIO, len(c.Data))
	for i, name := range c.Data {
		if data[i], err = lookup(name); err != nil {
			return hd44780.Pins{}, err
		}
	}
	return hd44780.GPIOPins(rs, e, rw, data...)
}
