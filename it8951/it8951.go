// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/MaxHalford/halfgone"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/host/v3/rpi"

	"github.com/GermanBionicSystems/epaper/imagegray"
)

// Opts defines the driver configuration.
type Opts struct {
	// Frequency of the SPI clock.
	Frequency physic.Frequency
	// BusyTimeout bounds each wait on the HRDY line. 0 waits forever.
	BusyTimeout time.Duration
	// DisplayTimeout bounds the wait for a refresh to complete. 0 waits
	// forever.
	DisplayTimeout time.Duration
	// Strategy used for packed image loads.
	Strategy Strategy
	// TelegramRows is the maximum number of rows per LD_IMG_AREA with the
	// Telegram strategy.
	TelegramRows int
	// BurstWords is the maximum number of words sent under one chip select.
	BurstWords int
	// MaxTransferBytes bounds the OneChunk transfer buffer. 0 means
	// unbounded.
	MaxTransferBytes int
	// Endian is the byte order of the frame buffers passed to Refresh.
	Endian Endian
	// Rotation applied by the controller to loaded images.
	Rotation Rotation
	// GrayMode is the waveform used by Refresh2bpp, Refresh4bpp, Refresh8bpp
	// and Draw.
	GrayMode WaveformMode
	// Background and Foreground are the gray levels of 1bpp refreshes.
	Background uint8
	Foreground uint8
	// Logger receives debug events. nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOpts is the configuration of the Waveshare IT8951 HAT.
var DefaultOpts = Opts{
	Frequency:        12 * physic.MegaHertz,
	BusyTimeout:      5 * time.Second,
	DisplayTimeout:   30 * time.Second,
	Strategy:         Telegram,
	TelegramRows:     defaultTelegramRows,
	BurstWords:       defaultBurstWords,
	MaxTransferBytes: 4 << 20,
	Endian:           LittleEndian,
	Rotation:         Rotate0,
	GrayMode:         ModeGC16,
	Background:       0xF0,
	Foreground:       0x00,
}

// Dev is a handle to an IT8951 e-paper controller.
type Dev struct {
	mu   sync.Mutex
	c    conn.Conn
	eh   errorHandler
	w    writer
	opts Opts
	log  zerolog.Logger

	info        DeviceInfo
	initialized bool
}

// New creates a handle to an IT8951 on port p. The chip select line is
// driven through cs since it must stay asserted across busy waits.
//
// Init must be called before drawing.
func New(p spi.Port, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.Frequency == 0 {
		o.Frequency = DefaultOpts.Frequency
	}
	c, err := p.Connect(o.Frequency, spi.Mode0|spi.NoCS, 8)
	if err != nil {
		return nil, fmt.Errorf("it8951: %w", err)
	}
	if err := busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("it8951: %w", err)
	}
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("it8951: %w", err)
	}
	log := zerolog.Nop()
	if o.Logger != nil {
		log = *o.Logger
	}
	maxTx := 0
	if l, ok := c.(conn.Limits); ok {
		maxTx = l.MaxTxSize()
	}
	d := &Dev{
		c:    c,
		opts: o,
		log:  log,
		eh: errorHandler{
			c:              c,
			cs:             cs,
			rst:            rst,
			busy:           busy,
			busyTimeout:    o.BusyTimeout,
			displayTimeout: o.DisplayTimeout,
			maxTx:          maxTx,
			log:            log,
		},
		w: writer{
			strategy:     o.Strategy,
			telegramRows: o.TelegramRows,
			burstWords:   o.BurstWords,
			maxTransfer:  o.MaxTransferBytes,
		},
	}
	return d, nil
}

// NewHat creates a handle to the Waveshare IT8951 HAT on a Raspberry Pi.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, cs, rst, busy, opts)
}

// Init resets the controller and brings it up with the given VCOM, in mV
// as a positive number (2010 for -2.01V). VCOM is only written when it
// differs from the value stored in the controller.
func (d *Dev) Init(vcom uint16) (DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eh.err = nil
	d.initialized = false
	d.eh.reset()
	info := initSession(&d.eh, vcom)
	if d.eh.err != nil {
		return DeviceInfo{}, d.eh.err
	}
	if info.Width == 0 || info.Height == 0 {
		return info, ErrNoDevice
	}
	d.info = info
	d.initialized = true
	d.log.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Str("addr", fmt.Sprintf("0x%08X", info.MemoryAddress)).
		Str("fw", info.FirmwareVersion).
		Str("lut", info.LUTVersion).
		Msg("it8951 ready")
	return info, nil
}

// DeviceInfo returns the panel description read by Init.
func (d *Dev) DeviceInfo() DeviceInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// VCOM returns the VCOM stored in the controller, in mV.
func (d *Dev) VCOM() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.start(); err != nil {
		return 0, err
	}
	v := getVCOM(&d.eh)
	return v, d.eh.err
}

// SetVCOM changes the VCOM, in mV.
func (d *Dev) SetVCOM(v uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.start(); err != nil {
		return err
	}
	setVCOM(&d.eh, v)
	d.log.Debug().Msgf("it8951 VCOM = -%.02fV", float64(v)/1000)
	return d.eh.err
}

// EnhanceDrivingCapability raises the controller output drive. It helps
// with blurry images on long cables.
func (d *Dev) EnhanceDrivingCapability() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.start(); err != nil {
		return err
	}
	before := readRegister(&d.eh, drivingCapability)
	writeRegister(&d.eh, drivingCapability, 0x0602)
	after := readRegister(&d.eh, drivingCapability)
	d.log.Debug().Uint16("before", before).Uint16("after", after).Msg("it8951 driving capability")
	return d.eh.err
}

// Clear loads a white 4bpp image over the whole panel at target and
// refreshes it with mode.
func (d *Dev) Clear(target uint32, mode WaveformMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.initialized {
		return ErrNotInitialized
	}
	// Rows must be whole words.
	w, h := d.info.Width&^3, d.info.Height
	l := &LoadImageInfo{
		Source:        bytes.Repeat([]byte{0xFF}, w/2*h),
		Endian:        d.opts.Endian,
		Format:        Format4bpp,
		Rotation:      d.opts.Rotation,
		TargetAddress: target,
	}
	a := AreaImageInfo{W: uint16(w), H: uint16(h)}
	if err := d.w.check(l, a, true); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}
	d.eh.waitForDisplayReady()
	d.w.write(&d.eh, l, a, w == d.info.Width, true)
	displayArea(&d.eh, 0, 0, uint16(d.info.Width), uint16(h), mode)
	return d.eh.err
}

// Refresh1bpp loads a 1bpp frame buffer covering r and refreshes it with
// mode. r.Min.X must be a multiple of 8 and r.Dx() a multiple of 16.
func (d *Dev) Refresh1bpp(buf []byte, r image.Rectangle, mode WaveformMode, target uint32, packed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.load1bpp(buf, r, target, packed); err != nil {
		return err
	}
	display1bpp(&d.eh, uint16(r.Min.X), uint16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), mode, target, d.opts.Background, d.opts.Foreground)
	return d.eh.err
}

// Write1bpp loads a 1bpp frame buffer covering r without refreshing. Use
// MultiFrameRefresh1bpp to show it.
func (d *Dev) Write1bpp(buf []byte, r image.Rectangle, target uint32, packed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.load1bpp(buf, r, target, packed); err != nil {
		return err
	}
	return d.eh.err
}

// MultiFrameRefresh1bpp refreshes a 1bpp area previously loaded with
// Write1bpp using the panel's A2 mode.
func (d *Dev) MultiFrameRefresh1bpp(r image.Rectangle, target uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkArea(r, 1); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}
	d.eh.waitForDisplayReady()
	display1bpp(&d.eh, uint16(r.Min.X), uint16(r.Min.Y), uint16(r.Dx()), uint16(r.Dy()), d.info.A2Mode(), target, d.opts.Background, d.opts.Foreground)
	return d.eh.err
}

// load1bpp loads the bits as bytes of an 8bpp image 8 times narrower.
func (d *Dev) load1bpp(buf []byte, r image.Rectangle, target uint32, packed bool) error {
	if err := d.checkArea(r, 1); err != nil {
		return err
	}
	l := &LoadImageInfo{
		Source:        buf,
		Endian:        d.opts.Endian,
		Format:        Format8bpp,
		Rotation:      d.opts.Rotation,
		TargetAddress: target,
	}
	a := AreaImageInfo{X: uint16(r.Min.X / 8), Y: uint16(r.Min.Y), W: uint16(r.Dx() / 8), H: uint16(r.Dy())}
	if err := d.w.check(l, a, packed); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}
	d.eh.waitForDisplayReady()
	d.w.write(&d.eh, l, a, false, packed)
	return nil
}

// Refresh2bpp loads a 2bpp frame buffer covering r and refreshes it. With
// hold the refresh uses the default image buffer, otherwise the one at
// target.
func (d *Dev) Refresh2bpp(buf []byte, r image.Rectangle, hold bool, target uint32, packed bool) error {
	return d.refresh(buf, r, Format2bpp, hold, target, packed)
}

// Refresh4bpp is Refresh2bpp for 4bpp frame buffers.
func (d *Dev) Refresh4bpp(buf []byte, r image.Rectangle, hold bool, target uint32, packed bool) error {
	return d.refresh(buf, r, Format4bpp, hold, target, packed)
}

// Refresh8bpp is Refresh2bpp for 8bpp frame buffers.
func (d *Dev) Refresh8bpp(buf []byte, r image.Rectangle, hold bool, target uint32, packed bool) error {
	return d.refresh(buf, r, Format8bpp, hold, target, packed)
}

func (d *Dev) refresh(buf []byte, r image.Rectangle, f PixelFormat, hold bool, target uint32, packed bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkArea(r, f.bitsPerPixel()); err != nil {
		return err
	}
	l := &LoadImageInfo{
		Source:        buf,
		Endian:        d.opts.Endian,
		Format:        f,
		Rotation:      d.opts.Rotation,
		TargetAddress: target,
	}
	a := AreaImageInfo{X: uint16(r.Min.X), Y: uint16(r.Min.Y), W: uint16(r.Dx()), H: uint16(r.Dy())}
	if err := d.w.check(l, a, packed); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}
	d.eh.waitForDisplayReady()
	d.w.write(&d.eh, l, a, r == d.info.Bounds(), packed)
	if hold {
		displayArea(&d.eh, a.X, a.Y, a.W, a.H, d.opts.GrayMode)
	} else {
		displayAreaBuf(&d.eh, a.X, a.Y, a.W, a.H, d.opts.GrayMode, target)
	}
	return d.eh.err
}

// checkArea validates r for a load at bpp bits per pixel.
func (d *Dev) checkArea(r image.Rectangle, bpp int) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	b := d.info.Bounds()
	switch {
	case r.Empty():
		return &GeometryError{Area: r, Bounds: b, Reason: "empty area"}
	case !r.In(b):
		return &GeometryError{Area: r, Bounds: b, Reason: "area outside the panel"}
	case r.Max.X > 0xFFFF || r.Max.Y > 0xFFFF:
		return &GeometryError{Area: r, Bounds: b, Reason: "area exceeds 16 bit coordinates"}
	case r.Dx()*bpp%16 != 0:
		return &GeometryError{Area: r, Bounds: b, Reason: fmt.Sprintf("%d pixel rows at %dbpp are not whole 16 bit words", r.Dx(), bpp)}
	case bpp == 1 && r.Min.X%8 != 0:
		return &GeometryError{Area: r, Bounds: b, Reason: "1bpp area must start on a byte boundary"}
	}
	return nil
}

// Sleep puts the controller in sleep mode. Init wakes it up.
func (d *Dev) Sleep() error {
	return d.command(sleepMode)
}

// Standby puts the controller in standby mode.
func (d *Dev) Standby() error {
	return d.command(standby)
}

// Halt implements conn.Resource. It puts the controller in standby, the
// panel keeps showing the last image.
func (d *Dev) Halt() error {
	return d.Standby()
}

func (d *Dev) command(c command) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.start(); err != nil {
		return err
	}
	d.eh.writeCommand(c)
	return d.eh.err
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("it8951.Dev{%s, %s}", d.c, &d.info)
}

// ColorModel implements display.Drawer. Colors are quantized to 16 gray
// levels.
func (d *Dev) ColorModel() color.Model {
	return imagegray.Depth4.Model()
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info.Bounds()
}

// Draw implements display.Drawer.
//
// The area is widened to a multiple of 4 pixels, dithered to 16 gray levels
// and refreshed with Opts.GrayMode from the controller image buffer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if !d.ready() {
		return ErrNotInitialized
	}
	b := d.Bounds()
	r = r.Intersect(b)
	if r.Empty() {
		return nil
	}
	dst := imagegray.New(align(r, 4, b), imagegray.Depth4)
	dst.Fill(imagegray.Depth4.Max())
	draw.FloydSteinberg.Draw(dst, r, src, sp)
	return d.Refresh4bpp(dst.Pix, dst.Rect, false, d.DeviceInfo().MemoryAddress, true)
}

// DrawImage scales src to fit the panel, keeping its aspect ratio, and draws
// it centered on white.
func (d *Dev) DrawImage(src image.Image) error {
	if !d.ready() {
		return ErrNotInitialized
	}
	b := d.Bounds()
	return d.Draw(b, fit(src, b.Dx(), b.Dy()), image.Point{})
}

// DrawMono draws src dithered to black and white and refreshes it with the
// panel's A2 mode. The area is widened to a multiple of 16 pixels.
func (d *Dev) DrawMono(r image.Rectangle, src image.Image, sp image.Point) error {
	if !d.ready() {
		return ErrNotInitialized
	}
	b := d.Bounds()
	r = r.Intersect(b)
	if r.Empty() {
		return nil
	}
	ar := align(r, 16, b)
	gray := image.NewGray(image.Rect(0, 0, ar.Dx(), ar.Dy()))
	draw.Draw(gray, gray.Rect, image.White, image.Point{}, draw.Src)
	draw.Draw(gray, r.Sub(ar.Min), src, sp, draw.Src)
	dithered := halfgone.FloydSteinbergDitherer{}.Apply(gray)
	dst := imagegray.New(ar, imagegray.Depth1)
	draw.Draw(dst, ar, dithered, dithered.Bounds().Min, draw.Src)
	info := d.DeviceInfo()
	return d.Refresh1bpp(dst.Pix, ar, info.A2Mode(), info.MemoryAddress, true)
}

// start clears the error of the previous operation. It fails without bus
// traffic while an image load is left open by a failed operation, until Init
// resets the controller.
func (d *Dev) start() error {
	d.eh.err = nil
	if d.eh.loading {
		return fmt.Errorf("%w: image load left open, call Init", ErrLoadState)
	}
	return nil
}

func (d *Dev) ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// align widens r horizontally to a multiple of n pixels starting on a
// multiple of n. At the right edge of bounds it shifts left instead, keeping
// the width.
func align(r image.Rectangle, n int, bounds image.Rectangle) image.Rectangle {
	r.Min.X -= r.Min.X % n
	r.Max.X += (n - r.Max.X%n) % n
	if over := r.Max.X - bounds.Max.X; over > 0 {
		r.Min.X -= over
		r.Max.X = bounds.Max.X
		if r.Min.X < bounds.Min.X {
			r.Min.X = bounds.Min.X
		}
	}
	return r
}

// fit returns src scaled down to fit in w x h, centered on white.
func fit(src image.Image, w, h int) image.Image {
	scaled := imaging.Fit(src, w, h, imaging.Lanczos)
	bg := imaging.New(w, h, color.White)
	sb := scaled.Bounds()
	return imaging.Paste(bg, scaled, image.Pt((w-sb.Dx())/2, (h-sb.Dy())/2))
}

var _ display.Drawer = &Dev{}

var sleep = time.Sleep
