package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"lautenbacher.net/gowiring/hardware"
	"lautenbacher.net/gowiring/wiring"
)

const CONFILE = "gowiring.yml"

// Config is the configuration of the gowiring command.
type Config struct {
	Backend        string `yaml:"Backend"`
	Numbering      string `yaml:"Numbering"`
	ThreadPriority int    `yaml:"ThreadPriority"`
	Logging        struct {
		Level  string `yaml:"Level"`
		Format string `yaml:"Format"`
		File   string `yaml:"File"`
	} `yaml:"Logging"`
	SPI struct {
		Channel int `yaml:"Channel"`
		Speed   int `yaml:"Speed"`
	} `yaml:"SPI"`
	Serial struct {
		Device string `yaml:"Device"`
		Baud   int    `yaml:"Baud"`
	} `yaml:"Serial"`
	Monitor struct {
		Refresh time.Duration `yaml:"Refresh"`
		History int           `yaml:"History"`
		Pins    []int         `yaml:"Pins"`
	} `yaml:"Monitor"`
}

// Default is used when no configuration file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Numbering == "" {
		c.Numbering = "wpi"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.SPI.Speed == 0 {
		c.SPI.Speed = 1000000
	}
	if c.Serial.Device == "" {
		c.Serial.Device = "/dev/serial0"
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Monitor.Refresh == 0 {
		c.Monitor.Refresh = 250 * time.Millisecond
	}
	if c.Monitor.History == 0 {
		c.Monitor.History = 32
	}
}

// ReadConfig decodes and validates the file at cfile. Unknown keys are
// rejected.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := &Config{}
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}
	conf.applyDefaults()
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

// Validate reports every problem found, not just the first.
func (c *Config) Validate() error {
	var errs []error
	if c.Backend != "" && !slices.Contains(hardware.Backends(), c.Backend) {
		errs = append(errs, fmt.Errorf("Backend %q is not one of %s", c.Backend, strings.Join(hardware.Backends(), ", ")))
	}
	if _, err := wiring.ParseConfiguration(c.Numbering); err != nil {
		errs = append(errs, fmt.Errorf("Numbering: %w", err))
	}
	if c.ThreadPriority < 0 || c.ThreadPriority > int(wiring.MaxThreadPriority) {
		errs = append(errs, fmt.Errorf("ThreadPriority %d must be between 0 and %d", c.ThreadPriority, wiring.MaxThreadPriority))
	}
	switch strings.ToUpper(c.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("Logging.Level %q must be DEBUG, INFO, WARN or ERROR", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("Logging.Format %q must be text or json", c.Logging.Format))
	}
	if c.SPI.Channel != int(wiring.Channel0) && c.SPI.Channel != int(wiring.Channel1) {
		errs = append(errs, fmt.Errorf("SPI.Channel %d must be 0 or 1", c.SPI.Channel))
	}
	if c.SPI.Speed < 500000 || c.SPI.Speed > 32000000 {
		errs = append(errs, fmt.Errorf("SPI.Speed %d must be between 500000 and 32000000", c.SPI.Speed))
	}
	if c.Serial.Baud <= 0 {
		errs = append(errs, fmt.Errorf("Serial.Baud %d must be positive", c.Serial.Baud))
	}
	if c.Monitor.Refresh < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("Monitor.Refresh %s must be at least 10ms", c.Monitor.Refresh))
	}
	if c.Monitor.History < 1 {
		errs = append(errs, fmt.Errorf("Monitor.History %d must be positive", c.Monitor.History))
	}
	for _, p := range c.Monitor.Pins {
		if p < 1 || p > wiring.HeaderPins {
			errs = append(errs, fmt.Errorf("Monitor.Pins entry %d must be between 1 and %d", p, wiring.HeaderPins))
		}
	}
	return errors.Join(errs...)
}

// Configuration is the parsed Numbering.
func (c *Config) Configuration() wiring.Configuration {
	cfg, _ := wiring.ParseConfiguration(c.Numbering)
	return cfg
}
