// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import (
	"errors"
	"fmt"
	"image"
	"time"
)

var (
	// ErrLoadState is returned when image load transactions are not properly
	// paired, or a display command is issued while a load is still open. The
	// controller must be reinitialized with Init.
	ErrLoadState = errors.New("it8951: image load begin/end mismatch")
	// ErrNoDevice is returned by Init when the controller reports an empty
	// panel, usually because nothing answered on the bus.
	ErrNoDevice = errors.New("it8951: device reported an empty panel")
	// ErrNotInitialized is returned by drawing operations before Init.
	ErrNotInitialized = errors.New("it8951: device not initialized")
)

// BusyTimeoutError is returned when the controller keeps reporting busy for
// longer than the configured timeout.
type BusyTimeoutError struct {
	// Signal is "busy" for the transaction level ready line and "display" for
	// the LUT engine status register.
	Signal  string
	Timeout time.Duration
}

func (e *BusyTimeoutError) Error() string {
	return fmt.Sprintf("it8951: %s signal still set after %s", e.Signal, e.Timeout)
}

// GeometryError is returned when a target rectangle cannot be loaded. No bus
// transaction is issued in this case.
type GeometryError struct {
	Area   image.Rectangle
	Bounds image.Rectangle
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("it8951: invalid area %v in %v: %s", e.Area, e.Bounds, e.Reason)
}

// BufferError is returned when a pixel buffer or transfer buffer is too small
// for the requested operation. The operation is aborted before touching the
// bus.
type BufferError struct {
	Need int
	Have int
	What string
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("it8951: %s needs %d bytes, have %d", e.What, e.Need, e.Have)
}
