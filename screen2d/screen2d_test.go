// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d, err := NewWriter(&out, &Opts{W: 160, H: 64, Columns: 40})
	if err != nil {
		t.Fatal(err)
	}
	if s := d.String(); s != "Screen2D{160x64}" {
		t.Fatal(s)
	}
	if b := d.Bounds(); b != image.Rect(0, 0, 160, 64) {
		t.Fatal(b)
	}
	if d.Level(10, 10) != 15 {
		t.Fatal("expected a white panel")
	}
	if err := d.Draw(image.Rect(0, 0, 80, 64), &image.Uniform{C: color.Black}, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if l := d.Level(0, 0); l != 0 {
		t.Fatalf("Level(0, 0) = %d", l)
	}
	if l := d.Level(159, 63); l != 15 {
		t.Fatalf("Level(159, 63) = %d", l)
	}
	s := out.String()
	if n := strings.Count(s, "\n"); n != 8 {
		t.Fatalf("%d lines, want 8", n)
	}
	black := ansi256.Default.Block(color.NRGBA{A: 255})
	if !strings.Contains(s, black) {
		t.Fatalf("no black block in %q", s)
	}
}

func TestDrawOutside(t *testing.T) {
	var out bytes.Buffer
	d, err := NewWriter(&out, &Opts{W: 16, H: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(image.Rect(20, 20, 30, 30), &image.Uniform{C: color.Black}, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatal("expected no output")
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d, err := NewWriter(&out, &Opts{W: 16, H: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\033[0m\n" {
		t.Fatalf("%q", out.String())
	}
}

func TestNewInvalidSize(t *testing.T) {
	for _, opts := range []Opts{{W: 0, H: 16}, {W: 16, H: 0}, {W: -1, H: 16}} {
		if _, err := NewWriter(&bytes.Buffer{}, &opts); err == nil {
			t.Errorf("NewWriter(%dx%d) succeeded", opts.W, opts.H)
		}
	}
}
