// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
)

// errorHandler frames IT8951 bus transactions and keeps the first error.
//
// Once err is set every later step is a no-op, except releasing chip select.
// The public Dev operations reset err on entry and return it on exit.
type errorHandler struct {
	c    conn.Conn
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	busyTimeout    time.Duration
	displayTimeout time.Duration
	// maxTx is the longest single Tx the connection accepts, 0 if unbounded.
	maxTx int
	log   zerolog.Logger

	// loading is true between a load image command and LD_IMG_END.
	loading bool
	err     error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.rst.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.cs.Out(l)
}

// cTx sends w, reading into r when not nil, in slices of at most maxTx bytes.
// Chip select is handled manually so the slices belong to the same
// transaction.
func (eh *errorHandler) cTx(w []byte, r []byte) {
	if eh.err != nil {
		return
	}
	n := len(w)
	if eh.maxTx <= 0 || n <= eh.maxTx {
		eh.err = eh.c.Tx(w, r)
		return
	}
	for off := 0; off < n && eh.err == nil; off += eh.maxTx {
		end := off + eh.maxTx
		if end > n {
			end = n
		}
		var rs []byte
		if r != nil {
			rs = r[off:end]
		}
		eh.err = eh.c.Tx(w[off:end], rs)
	}
}

// reset pulses the reset line.
func (eh *errorHandler) reset() {
	eh.rstOut(gpio.High)
	sleep(200 * time.Millisecond)
	eh.rstOut(gpio.Low)
	sleep(10 * time.Millisecond)
	eh.rstOut(gpio.High)
	sleep(200 * time.Millisecond)
	// A reset aborts any image load in progress.
	eh.loading = false
}

// waitUntilIdle polls the HRDY line until the controller is ready for the
// next transaction phase. The line is low while busy.
func (eh *errorHandler) waitUntilIdle() {
	if eh.err != nil {
		return
	}
	if eh.busy.Read() == gpio.High {
		return
	}
	start := time.Now()
	for eh.busy.Read() == gpio.Low {
		if eh.busyTimeout > 0 && time.Since(start) > eh.busyTimeout {
			eh.err = &BusyTimeoutError{Signal: "busy", Timeout: eh.busyTimeout}
			return
		}
	}
}

// waitForDisplayReady polls the LUT engine status until no refresh is
// running.
func (eh *errorHandler) waitForDisplayReady() {
	start := time.Now()
	for eh.err == nil {
		if readRegister(eh, lutafsr) == 0 {
			return
		}
		if eh.displayTimeout > 0 && time.Since(start) > eh.displayTimeout {
			eh.err = &BusyTimeoutError{Signal: "display", Timeout: eh.displayTimeout}
		}
	}
}

// begin opens a transaction: wait, select, preamble, wait.
func (eh *errorHandler) begin(preamble uint16) {
	eh.waitUntilIdle()
	eh.csOut(gpio.Low)
	eh.cTx([]byte{byte(preamble >> 8), byte(preamble)}, nil)
	eh.waitUntilIdle()
}

// end releases chip select, even after a failure.
func (eh *errorHandler) end() {
	if err := eh.cs.Out(gpio.High); err != nil && eh.err == nil {
		eh.err = err
	}
}

func (eh *errorHandler) writeCommand(cmd command) {
	if eh.err != nil {
		return
	}
	switch cmd {
	case loadImage, loadImageArea:
		if eh.loading {
			eh.err = fmt.Errorf("%w: %s before LD_IMG_END", ErrLoadState, cmd)
			return
		}
	case loadImageEnd:
		if !eh.loading {
			eh.err = fmt.Errorf("%w: %s without a load in progress", ErrLoadState, cmd)
			return
		}
	case displayAreaCmd, displayBufAreaCmd:
		if eh.loading {
			eh.err = fmt.Errorf("%w: %s before LD_IMG_END", ErrLoadState, cmd)
			return
		}
	}
	eh.log.Trace().Stringer("cmd", cmd).Msg("it8951 command")
	eh.begin(preambleCommand)
	eh.cTx([]byte{byte(cmd >> 8), byte(cmd)}, nil)
	eh.end()
	if eh.err != nil {
		return
	}
	switch cmd {
	case loadImage, loadImageArea:
		eh.loading = true
	case loadImageEnd:
		eh.loading = false
	}
}

func (eh *errorHandler) writeData(w uint16) {
	if eh.err != nil {
		return
	}
	eh.begin(preambleWrite)
	eh.cTx([]byte{byte(w >> 8), byte(w)}, nil)
	eh.end()
}

func (eh *errorHandler) writeMultiData(words []uint16) {
	if eh.err != nil {
		return
	}
	p := make([]byte, 2*len(words))
	for i, w := range words {
		binary.BigEndian.PutUint16(p[2*i:], w)
	}
	eh.writeBurst(p)
}

// writeBurst sends p, already encoded as big endian words, in one
// transaction.
func (eh *errorHandler) writeBurst(p []byte) {
	if eh.err != nil {
		return
	}
	eh.begin(preambleWrite)
	eh.cTx(p, nil)
	eh.end()
}

// readMultiData reads n words. The first word clocked out after the
// preamble is a dummy and is discarded.
func (eh *errorHandler) readMultiData(n int) []uint16 {
	if eh.err != nil {
		return nil
	}
	eh.begin(preambleRead)
	var dummy [2]byte
	eh.cTx(make([]byte, 2), dummy[:])
	eh.waitUntilIdle()
	r := make([]byte, 2*n)
	eh.cTx(make([]byte, 2*n), r)
	eh.end()
	if eh.err != nil {
		return nil
	}
	words := make([]uint16, n)
	for i := range words {
		words[i] = binary.BigEndian.Uint16(r[2*i:])
	}
	return words
}

func (eh *errorHandler) lastErr() error {
	return eh.err
}

var _ controller = &errorHandler{}
