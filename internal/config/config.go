// Package config resolves the daemon configuration from an alsd.json file
// and explicit overrides. The file is searched in the original daemon's
// order: working directory, user config dir, /etc. A missing file is not an
// error — every key has a default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lisas/alsd/internal/device"
)

const (
	configName = "alsd"
	configType = "json"
)

// Sensor backends selectable via the "backend" key.
const (
	// BackendCharDev reads the gpioals kernel module's character device.
	BackendCharDev = "chardev"
	// BackendGPIO times the LDR charge in userspace via the GPIO chardev.
	BackendGPIO = "gpio"
)

// Defaults applied when the config file or key is absent.
const (
	DefaultRate          = 14000
	DefaultBroker        = "localhost"
	DefaultTopic         = "alsd"
	DefaultGPIOChip      = "gpiochip0"
	DefaultGPIOPin       = 4
	DefaultGPIOTimeoutMs = 5000
)

// MQTTConfig holds bus connection settings.
type MQTTConfig struct {
	Broker string `mapstructure:"broker"`
	Topic  string `mapstructure:"topic"`
}

// GPIOConfig holds settings for the userspace charge-time backend.
type GPIOConfig struct {
	Chip      string `mapstructure:"chip"`
	Pin       int    `mapstructure:"pin"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
}

// Config is the resolved daemon configuration. It is read once at startup
// and immutable for the lifetime of a run.
type Config struct {
	Device  string     `mapstructure:"device"`
	Rate    int        `mapstructure:"rate"` // inter-measurement spacing, ms
	Backend string     `mapstructure:"backend"`
	GPIO    GPIOConfig `mapstructure:"gpio"`
	MQTT    MQTTConfig `mapstructure:"mqtt"`
	HTTP    string     `mapstructure:"http"` // status server address, empty = disabled

	// File is the config file that was actually read, empty when running on
	// defaults alone.
	File string `mapstructure:"-"`
}

// Load resolves the configuration. path, when non-empty, names an explicit
// config file and missing it is an error. overrides (viper key → value,
// e.g. "mqtt.broker") win over file values; callers build them from flags.
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("/etc")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.MQTT.Broker = NormalizeBroker(cfg.MQTT.Broker)

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device", device.DefaultDevice)
	v.SetDefault("rate", DefaultRate)
	v.SetDefault("backend", BackendCharDev)
	v.SetDefault("gpio.chip", DefaultGPIOChip)
	v.SetDefault("gpio.pin", DefaultGPIOPin)
	v.SetDefault("gpio.timeout_ms", DefaultGPIOTimeoutMs)
	v.SetDefault("mqtt.broker", DefaultBroker)
	v.SetDefault("mqtt.topic", DefaultTopic)
	v.SetDefault("http", "")
}

func (c *Config) validate() error {
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %d", c.Rate)
	}
	if c.Backend != BackendCharDev && c.Backend != BackendGPIO {
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendCharDev, BackendGPIO)
	}
	if c.Backend == BackendGPIO {
		if c.GPIO.Pin < 0 {
			return fmt.Errorf("gpio.pin must not be negative, got %d", c.GPIO.Pin)
		}
		if c.GPIO.TimeoutMs <= 0 {
			return fmt.Errorf("gpio.timeout_ms must be positive, got %d", c.GPIO.TimeoutMs)
		}
	}
	if c.MQTT.Topic == "" {
		return errors.New("mqtt.topic must not be empty")
	}
	return nil
}

// RateDuration returns the configured inter-measurement spacing.
func (c *Config) RateDuration() time.Duration {
	return time.Duration(c.Rate) * time.Millisecond
}

// GPIOTimeout returns the charge-time timeout for the gpio backend.
func (c *Config) GPIOTimeout() time.Duration {
	return time.Duration(c.GPIO.TimeoutMs) * time.Millisecond
}

// NormalizeBroker turns bare host names like "localhost" into full broker
// URIs the MQTT client accepts.
func NormalizeBroker(broker string) string {
	if broker == "" || strings.Contains(broker, "://") {
		return broker
	}
	if !strings.Contains(broker, ":") {
		broker += ":1883"
	}
	return "tcp://" + broker
}
