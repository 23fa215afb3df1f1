// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import (
	"fmt"
	"strconv"
)

// Strategy selects how pixel words are framed on the bus during an image
// load. One strategy is used for a whole refresh.
type Strategy int

// Supported Strategy.
const (
	// Telegram reissues LD_IMG_AREA every Opts.TelegramRows rows and sends
	// each telegram in bursts of at most Opts.BurstWords words. It scales to
	// full panel 4bpp loads and is the default.
	Telegram Strategy = iota
	// PerRow loads one row per LD_IMG_AREA transaction.
	PerRow
	// WholeImage loads the area in one transaction, sent in bursts.
	WholeImage
	// OneChunk loads the area in one transaction and one burst. The transfer
	// must fit in Opts.MaxTransferBytes.
	OneChunk
	// WordByWord sends one data transaction per word. It is used for
	// unpacked writes.
	WordByWord
)

var strategyNames = [...]string{"telegram", "per-row", "whole-image", "one-chunk", "word-by-word"}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "Strategy(" + strconv.Itoa(int(s)) + ")"
	}
	return strategyNames[s]
}

// Set sets the Strategy to a value represented by the string s. Set implements the flag.Value interface.
func (s *Strategy) Set(v string) error {
	for i, n := range strategyNames {
		if n == v {
			*s = Strategy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown strategy %q: expected telegram, per-row, whole-image, one-chunk or word-by-word", v)
}

func (m WaveformMode) String() string {
	switch m {
	case ModeInit:
		return "INIT"
	case ModeDU:
		return "DU"
	case ModeGC16:
		return "GC16"
	case ModeGL16:
		return "GL16"
	case ModeA2:
		return "A2"
	}
	return strconv.Itoa(int(m))
}

// Set sets the WaveformMode to a value represented by the string s, either a
// mode name or its number. Set implements the flag.Value interface.
func (m *WaveformMode) Set(s string) error {
	switch s {
	case "INIT", "init":
		*m = ModeInit
	case "DU", "du":
		*m = ModeDU
	case "GC16", "gc16":
		*m = ModeGC16
	case "GL16", "gl16":
		*m = ModeGL16
	case "A2", "a2":
		*m = ModeA2
	default:
		v, err := strconv.ParseUint(s, 0, 16)
		if err != nil {
			return fmt.Errorf("unknown waveform mode %q: expected INIT, DU, GC16, GL16, A2 or a number", s)
		}
		*m = WaveformMode(v)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	return s.Set(string(b))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *WaveformMode) UnmarshalText(b []byte) error {
	return m.Set(string(b))
}
