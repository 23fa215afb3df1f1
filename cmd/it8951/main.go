// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// it8951 drives an e-paper panel through an IT8951 controller.
//
// Usage:
//
//	it8951 [flags] <info|clear|pattern|mono|sleep|standby>
//
// The Waveshare IT8951 HAT wiring is used unless the configuration file
// names the pins:
//
//	[spi]
//	port = "/dev/spidev0.0"
//	frequency = "24MHz"
//
//	[pins]
//	cs = "GPIO8"
//	rst = "GPIO17"
//	busy = "GPIO24"
//
//	[panel]
//	vcom = 1530
//	mode = "GC16"
//	strategy = "telegram"
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/epaper/it8951"
	"github.com/GermanBionicSystems/epaper/screen2d"
)

var commands = []string{"info", "clear", "pattern", "mono", "sleep", "standby"}

func main() {
	if err := mainImpl(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "it8951: %s.\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	cfgPath := flag.String("config", "", "TOML configuration file")
	vcom := flag.Uint("vcom", 0, "VCOM in mV, 2010 for -2.01V; overrides the configuration")
	var mode it8951.WaveformMode
	flag.Var(&mode, "mode", "waveform mode used for gray refreshes: INIT, DU, GC16, GL16 or A2")
	var strategy it8951.Strategy
	flag.Var(&strategy, "strategy", "image load strategy: telegram, per-row, whole-image, one-chunk or word-by-word")
	preview := flag.Bool("preview", false, "render on the terminal instead of the panel")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(), "usage: it8951 [flags] <%s>\n", strings.Join(commands, "|"))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return errors.New("expected exactly one command")
	}
	cmd := flag.Arg(0)
	if !validCommand(cmd) {
		return fmt.Errorf("unknown command %q", cmd)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		log = log.Level(zerolog.DebugLevel)
	}

	cfg, err := loadConfig(afero.NewOsFs(), *cfgPath)
	if err != nil {
		return err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "vcom":
			cfg.Panel.VCOM = uint16(*vcom)
		case "mode":
			cfg.Panel.Mode = mode
		case "strategy":
			cfg.Panel.Strategy = strategy
		}
	})

	if *preview {
		return runPreview(&cfg, cmd, &log)
	}
	return run(&cfg, cmd, &log)
}

func run(cfg *Config, cmd string, log *zerolog.Logger) error {
	if _, err := host.Init(); err != nil {
		return err
	}
	opts, err := cfg.opts(log)
	if err != nil {
		return err
	}
	p, err := spireg.Open(cfg.SPI.Port)
	if err != nil {
		return err
	}
	defer p.Close()

	var dev *it8951.Dev
	if cfg.Pins.hat() {
		dev, err = it8951.NewHat(p, opts)
	} else {
		var cs, rst, busy gpio.PinIO
		if cs, err = pinByName(cfg.Pins.CS); err != nil {
			return err
		}
		if rst, err = pinByName(cfg.Pins.RST); err != nil {
			return err
		}
		if busy, err = pinByName(cfg.Pins.Busy); err != nil {
			return err
		}
		dev, err = it8951.New(p, cs, rst, busy, opts)
	}
	if err != nil {
		return err
	}

	info, err := dev.Init(cfg.Panel.VCOM)
	if err != nil {
		return err
	}
	log.Info().Stringer("dev", dev).Msg("panel ready")

	switch cmd {
	case "info":
		v, err := dev.VCOM()
		if err != nil {
			return err
		}
		fmt.Printf("%s\nVCOM: -%.02fV\n", &info, float64(v)/1000)
		return nil
	case "clear":
		if err := dev.Clear(info.MemoryAddress, it8951.ModeInit); err != nil {
			return err
		}
	case "pattern":
		img, err := renderBars(cfg, info.Bounds(), info.String())
		if err != nil {
			return err
		}
		if err := dev.DrawImage(img); err != nil {
			return err
		}
	case "mono":
		img, err := renderChecker(cfg, info.Bounds(), info.String())
		if err != nil {
			return err
		}
		if err := dev.DrawMono(info.Bounds(), img, image.Point{}); err != nil {
			return err
		}
	case "sleep":
		return dev.Sleep()
	case "standby":
		return dev.Standby()
	}
	return dev.Halt()
}

// runPreview renders the patterns on the terminal. info, sleep and standby
// need a controller and fail.
func runPreview(cfg *Config, cmd string, log *zerolog.Logger) error {
	dev, err := screen2d.New(&screen2d.Opts{
		W:       cfg.Preview.Width,
		H:       cfg.Preview.Height,
		Columns: cfg.Preview.Columns,
	})
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	defer dev.Halt()
	log.Debug().Stringer("dev", dev).Msg("preview")
	img, err := render(cfg, cmd, dev)
	if err != nil {
		return err
	}
	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func render(cfg *Config, cmd string, d display.Drawer) (image.Image, error) {
	label := fmt.Sprintf("%s %dx%d", d, d.Bounds().Dx(), d.Bounds().Dy())
	switch cmd {
	case "clear":
		return image.White, nil
	case "pattern":
		return renderBars(cfg, d.Bounds(), label)
	case "mono":
		return renderChecker(cfg, d.Bounds(), label)
	}
	return nil, fmt.Errorf("%s needs a panel", cmd)
}

func renderBars(cfg *Config, b image.Rectangle, label string) (image.Image, error) {
	if cfg.Panel.Portrait {
		return portrait(b.Dx(), b.Dy(), func(w, h int) (image.Image, error) {
			return grayBars(w, h, label)
		})
	}
	return grayBars(b.Dx(), b.Dy(), label)
}

func renderChecker(cfg *Config, b image.Rectangle, label string) (image.Image, error) {
	cell := b.Dy() / 8
	if cell == 0 {
		cell = 1
	}
	if cfg.Panel.Portrait {
		return portrait(b.Dx(), b.Dy(), func(w, h int) (image.Image, error) {
			return checker(w, h, cell, label), nil
		})
	}
	return checker(b.Dx(), b.Dy(), cell, label), nil
}

func pinByName(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	return p, nil
}

func validCommand(cmd string) bool {
	for _, c := range commands {
		if c == cmd {
			return true
		}
	}
	return false
}
