// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/epaper/it8951"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.True(t, cfg.Pins.hat())

	log := zerolog.Nop()
	o, err := cfg.opts(&log)
	require.NoError(t, err)
	assert.Equal(t, 12*physic.MegaHertz, o.Frequency)
	assert.Equal(t, 5*time.Second, o.BusyTimeout)
	assert.Equal(t, 30*time.Second, o.DisplayTimeout)
	assert.Equal(t, it8951.Telegram, o.Strategy)
	assert.Equal(t, it8951.ModeGC16, o.GrayMode)
	assert.Equal(t, it8951.LittleEndian, o.Endian)
	assert.Same(t, &log, o.Logger)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	data := `
[spi]
frequency = "24MHz"

[pins]
cs = "GPIO8"
rst = "GPIO17"
busy = "GPIO24"

[panel]
vcom = 1530
mode = "a2"
strategy = "per-row"
big_endian = true
busy_timeout = "250ms"
`
	require.NoError(t, afero.WriteFile(fs, "/etc/it8951.toml", []byte(data), 0o600))

	cfg, err := loadConfig(fs, "/etc/it8951.toml")
	require.NoError(t, err)
	assert.False(t, cfg.Pins.hat())
	assert.Equal(t, "GPIO24", cfg.Pins.Busy)
	assert.Equal(t, uint16(1530), cfg.Panel.VCOM)
	assert.Equal(t, it8951.ModeA2, cfg.Panel.Mode)
	assert.Equal(t, it8951.PerRow, cfg.Panel.Strategy)
	// Missing keys keep their default.
	assert.Equal(t, "30s", cfg.Panel.DisplayTimeout)
	assert.Equal(t, 100, cfg.Panel.TelegramRows)
	assert.Equal(t, 1448, cfg.Preview.Width)

	o, err := cfg.opts(nil)
	require.NoError(t, err)
	assert.Equal(t, 24*physic.MegaHertz, o.Frequency)
	assert.Equal(t, 250*time.Millisecond, o.BusyTimeout)
	assert.Equal(t, it8951.BigEndian, o.Endian)
	assert.Equal(t, it8951.ModeA2, o.GrayMode)
	assert.Nil(t, o.Logger)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := loadConfig(fs, "/missing.toml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.toml", []byte("[panel]\nmode = \"XX\"\n"), 0o600))
	_, err = loadConfig(fs, "/bad.toml")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/syntax.toml", []byte("[panel\n"), 0o600))
	_, err = loadConfig(fs, "/syntax.toml")
	require.Error(t, err)
}

func TestConfigOptsErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name   string
		mutate func(c *Config)
	}{
		{"frequency", func(c *Config) { c.SPI.Frequency = "fast" }},
		{"busy timeout", func(c *Config) { c.Panel.BusyTimeout = "5" }},
		{"display timeout", func(c *Config) { c.Panel.DisplayTimeout = "" }},
		{"telegram rows", func(c *Config) { c.Panel.TelegramRows = 0 }},
		{"burst words", func(c *Config) { c.Panel.BurstWords = -1 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tc.mutate(&cfg)
			_, err := cfg.opts(nil)
			assert.Error(t, err)
		})
	}
}

func TestRunPreviewInvalidSize(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Preview.Width = 0
	log := zerolog.Nop()
	err := runPreview(&cfg, "pattern", &log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid size")
}
