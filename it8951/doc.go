// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package it8951 controls e-paper panels driven by an ITE IT8951 timing
// controller over SPI, like the Waveshare 6", 7.8", 9.7" and 10.3" HATs.
//
// The controller is fed 16 bit words, big endian. Each transaction is framed
// by a preamble selecting a command, a data write or a data read, and the
// host must wait for the HRDY line before and after the preamble. Images are
// first loaded into controller memory at 2, 4 or 8 bits per pixel, then
// shown with a display command selecting a waveform mode. 1 bit per pixel
// images are loaded as 8 bits per pixel images eight times narrower.
//
// Large loads are split in telegrams of at most 100 rows, each one sent in
// bursts of at most 8190 words; see Strategy for the alternatives.
//
// Datasheet
//
// https://www.waveshare.net/w/upload/1/18/IT8951_D_V0.2.4.3_20170728.pdf
//
// Product page:
//
// https://www.waveshare.com/wiki/10.3inch_e-Paper_HAT
package it8951
