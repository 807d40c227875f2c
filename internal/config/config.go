// Package config loads hetbench settings from defaults, an optional config
// file and HETBENCH_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/LynnColeArt/hetmem/device"
)

// Config represents the application configuration
type Config struct {
	Device  DeviceConfig  `mapstructure:"device"`
	Bench   BenchConfig   `mapstructure:"bench"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// DeviceConfig overrides the simulated device attributes. Zero values keep
// the detected defaults.
type DeviceConfig struct {
	Name         string `mapstructure:"name"`
	ClockKHz     int    `mapstructure:"clock_khz"`
	BusWidthBits int    `mapstructure:"bus_width_bits"`
	MemoryBytes  uint64 `mapstructure:"memory_bytes"`
}

type BenchConfig struct {
	ArraySize int    `mapstructure:"array_size"`
	BlockSize int    `mapstructure:"block_size"`
	LogDir    string `mapstructure:"log_dir"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Bench: BenchConfig{
			ArraySize: 10000,
			BlockSize: device.DefaultBlockSize,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads configuration into a fresh Config. An empty path searches for
// hetbench.yaml in the working directory; a missing file is not an error
// unless path was given explicitly.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("HETBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hetbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("device.name", cfg.Device.Name)
	v.SetDefault("device.clock_khz", cfg.Device.ClockKHz)
	v.SetDefault("device.bus_width_bits", cfg.Device.BusWidthBits)
	v.SetDefault("device.memory_bytes", cfg.Device.MemoryBytes)
	v.SetDefault("bench.array_size", cfg.Bench.ArraySize)
	v.SetDefault("bench.block_size", cfg.Bench.BlockSize)
	v.SetDefault("bench.log_dir", cfg.Bench.LogDir)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.console", cfg.Logging.Console)
}

// Validate checks the values that the benchmarks cannot run with.
func (c *Config) Validate() error {
	if c.Bench.ArraySize <= 0 {
		return fmt.Errorf("bench.array_size must be positive, got %d", c.Bench.ArraySize)
	}
	if c.Bench.BlockSize <= 0 || c.Bench.BlockSize > device.MaxThreadsPerBlock {
		return fmt.Errorf("bench.block_size must be in [1, %d], got %d", device.MaxThreadsPerBlock, c.Bench.BlockSize)
	}
	if c.Device.ClockKHz < 0 || c.Device.BusWidthBits < 0 {
		return fmt.Errorf("device clock (%d kHz) and bus width (%d bits) cannot be negative",
			c.Device.ClockKHz, c.Device.BusWidthBits)
	}
	return nil
}

// DeviceOptions converts the device section for device.Configure.
func (c *Config) DeviceOptions() device.Options {
	return device.Options{
		Name:            c.Device.Name,
		TotalMem:        c.Device.MemoryBytes,
		MemoryClockRate: c.Device.ClockKHz,
		MemoryBusWidth:  c.Device.BusWidthBits,
	}
}
