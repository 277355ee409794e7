// Package config loads the TOML configuration shared by the ecu, dashboard
// and controller binaries.
package config

import (
	"io"
	"io/ioutil"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const DefaultFileName = "telelink.toml"

// Duration decodes TOML strings such as "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ECUConfig struct {
	Listen       string   `toml:"listen"`
	TickInterval Duration `toml:"tick_interval"`
	QueueSize    int      `toml:"queue_size"`
	CANInterface string   `toml:"can_interface"`
}

type DashboardConfig struct {
	Address     string   `toml:"address"`
	Backoff     Duration `toml:"backoff"`
	DialTimeout Duration `toml:"dial_timeout"`
}

type ControllerConfig struct {
	TickInterval Duration `toml:"tick_interval"`
	HoldWindow   Duration `toml:"hold_window"`
	CANInterface string   `toml:"can_interface"`
}

type Config struct {
	ECU        ECUConfig        `toml:"ecu"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Controller ControllerConfig `toml:"controller"`
}

func Default() *Config {
	return &Config{
		ECU: ECUConfig{
			Listen:       "127.0.0.1:5000",
			TickInterval: Duration{100 * time.Millisecond},
			QueueSize:    16,
		},
		Dashboard: DashboardConfig{
			Address:     "127.0.0.1:5000",
			Backoff:     Duration{time.Second},
			DialTimeout: Duration{5 * time.Second},
		},
		Controller: ControllerConfig{
			TickInterval: Duration{32 * time.Millisecond},
			HoldWindow:   Duration{150 * time.Millisecond},
		},
	}
}

// Load reads fileName. Relative names are resolved against the directory
// holding the running binary.
func Load(fileName string) (*Config, error) {
	if !filepath.IsAbs(fileName) {
		dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to determine binary location")
		}
		fileName = filepath.Join(dir, fileName)
	}
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadFromReader(file)
}

// LoadFromReader decodes a configuration on top of the defaults and
// validates it.
func LoadFromReader(configReader io.Reader) (*Config, error) {
	configData, err := ioutil.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Default()
	if _, err := toml.Decode(string(configData), config); err != nil {
		return nil, errors.Wrapf(err, "unable to load configuration")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.ECU.Listen); err != nil {
		return errors.Wrapf(err, "invalid ecu listen address %q", c.ECU.Listen)
	}
	if _, _, err := net.SplitHostPort(c.Dashboard.Address); err != nil {
		return errors.Wrapf(err, "invalid dashboard address %q", c.Dashboard.Address)
	}
	switch {
	case c.ECU.TickInterval.Duration <= 0:
		return errors.New("ecu tick_interval must be positive")
	case c.ECU.QueueSize <= 0:
		return errors.New("ecu queue_size must be positive")
	case c.Dashboard.Backoff.Duration <= 0:
		return errors.New("dashboard backoff must be positive")
	case c.Dashboard.DialTimeout.Duration <= 0:
		return errors.New("dashboard dial_timeout must be positive")
	case c.Controller.TickInterval.Duration <= 0:
		return errors.New("controller tick_interval must be positive")
	case c.Controller.HoldWindow.Duration <= 0:
		return errors.New("controller hold_window must be positive")
	}
	return nil
}
