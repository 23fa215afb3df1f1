// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/GermanBionicSystems/epaper/it8951"
)

// Config is the TOML configuration of the tool.
type Config struct {
	SPI     SPIConfig     `toml:"spi"`
	Pins    PinsConfig    `toml:"pins"`
	Panel   PanelConfig   `toml:"panel"`
	Preview PreviewConfig `toml:"preview"`
}

// SPIConfig selects the SPI port and its clock.
type SPIConfig struct {
	// Port is the spireg name, empty for the first one.
	Port      string `toml:"port"`
	Frequency string `toml:"frequency"`
}

// PinsConfig names the gpioreg pins. When all are empty the Waveshare HAT
// wiring is used.
type PinsConfig struct {
	CS   string `toml:"cs"`
	RST  string `toml:"rst"`
	Busy string `toml:"busy"`
}

func (p PinsConfig) hat() bool {
	return p.CS == "" && p.RST == "" && p.Busy == ""
}

// PanelConfig holds the panel VCOM and the driver tuning.
type PanelConfig struct {
	// VCOM in mV, as printed on the flex cable without the sign.
	VCOM           uint16              `toml:"vcom"`
	Mode           it8951.WaveformMode `toml:"mode"`
	Strategy       it8951.Strategy     `toml:"strategy"`
	BigEndian      bool                `toml:"big_endian"`
	BusyTimeout    string              `toml:"busy_timeout"`
	DisplayTimeout string              `toml:"display_timeout"`
	TelegramRows   int                 `toml:"telegram_rows"`
	BurstWords     int                 `toml:"burst_words"`
	// Portrait renders patterns rotated by 90 degrees.
	Portrait bool `toml:"portrait"`
}

// PreviewConfig sizes the terminal preview used with -preview.
type PreviewConfig struct {
	Width   int `toml:"width"`
	Height  int `toml:"height"`
	Columns int `toml:"columns"`
}

func defaultConfig() Config {
	return Config{
		SPI: SPIConfig{Frequency: "12MHz"},
		Panel: PanelConfig{
			VCOM:           2010,
			Mode:           it8951.ModeGC16,
			Strategy:       it8951.Telegram,
			BusyTimeout:    "5s",
			DisplayTimeout: "30s",
			TelegramRows:   100,
			BurstWords:     8190,
		},
		Preview: PreviewConfig{Width: 1448, Height: 1072, Columns: 100},
	}
}

// loadConfig reads path from fs over the defaults. An empty path returns
// the defaults.
func loadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	// Fields missing from the file keep their default value.
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	return cfg, nil
}

// opts converts the configuration to driver options.
func (c *Config) opts(log *zerolog.Logger) (*it8951.Opts, error) {
	o := it8951.DefaultOpts
	if err := o.Frequency.Set(c.SPI.Frequency); err != nil {
		return nil, fmt.Errorf("spi.frequency: %w", err)
	}
	var err error
	if o.BusyTimeout, err = time.ParseDuration(c.Panel.BusyTimeout); err != nil {
		return nil, fmt.Errorf("panel.busy_timeout: %w", err)
	}
	if o.DisplayTimeout, err = time.ParseDuration(c.Panel.DisplayTimeout); err != nil {
		return nil, fmt.Errorf("panel.display_timeout: %w", err)
	}
	if c.Panel.TelegramRows <= 0 || c.Panel.BurstWords <= 0 {
		return nil, errors.New("panel: telegram_rows and burst_words must be positive")
	}
	o.Strategy = c.Panel.Strategy
	o.TelegramRows = c.Panel.TelegramRows
	o.BurstWords = c.Panel.BurstWords
	o.GrayMode = c.Panel.Mode
	if c.Panel.BigEndian {
		o.Endian = it8951.BigEndian
	}
	o.Logger = log
	return &o, nil
}
