// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen2d implements a 2D display.Drawer that previews a gray
// e-paper panel on a terminal using ANSI color codes.
//
// The panel is kept at full resolution with 16 gray levels and rendered
// scaled down to the terminal width.
package screen2d

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/disintegration/imaging"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/epaper/imagegray"
)

// Opts represents the options available for this display.
type Opts struct {
	// W and H are the emulated panel size in pixels.
	W, H int
	// Columns is the terminal width used for the preview. Defaults to 80.
	Columns int
	Palette *ansi256.Palette

	_ struct{}
}

// Dev is an e-paper panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	cols    int
	rows    int
	palette ansi256.Palette

	img *imagegray.Image
	buf bytes.Buffer
}

// New returns a Dev that displays at the console.
func New(opts *Opts) (*Dev, error) {
	return NewWriter(colorable.NewColorableStdout(), opts)
}

// NewWriter returns a Dev that writes its preview to w.
func NewWriter(w io.Writer, opts *Opts) (*Dev, error) {
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("screen2d: invalid size %dx%d", opts.W, opts.H)
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = 80
	}
	if cols > opts.W {
		cols = opts.W
	}
	// Terminal cells are about twice as tall as wide.
	rows := cols * opts.H / opts.W / 2
	if rows == 0 {
		rows = 1
	}
	img := imagegray.New(image.Rect(0, 0, opts.W, opts.H), imagegray.Depth4)
	img.Fill(imagegray.Depth4.Max())
	return &Dev{
		w:       w,
		cols:    cols,
		rows:    rows,
		palette: *p,
		img:     img,
	}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("Screen2D{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return imagegray.Depth4.Model()
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	draw.Draw(d.img, r, src, sp, draw.Src)
	return d.refresh()
}

// Level returns the gray level of the pixel at (x, y).
func (d *Dev) Level(x, y int) uint8 {
	return d.img.LevelAt(x, y)
}

func (d *Dev) refresh() error {
	small := imaging.Resize(d.img, d.cols, d.rows, imaging.Box)
	d.buf.Reset()
	_, _ = d.buf.WriteString("\033[0m")
	for y := 0; y < d.rows; y++ {
		for x := 0; x < d.cols; x++ {
			c := color.NRGBAModel.Convert(small.At(x, y)).(color.NRGBA)
			_, _ = io.WriteString(&d.buf, d.palette.Block(c))
		}
		_, _ = d.buf.WriteString("\033[0m\n")
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
