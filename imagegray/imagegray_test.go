// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package imagegray

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		name       string
		rect       image.Rectangle
		depth      Depth
		wantStride int
		wantLen    int
	}{
		{"1bpp", image.Rect(0, 0, 16, 3), Depth1, 2, 6},
		{"1bpp unaligned", image.Rect(0, 0, 9, 1), Depth1, 2, 2},
		{"2bpp", image.Rect(0, 0, 8, 2), Depth2, 2, 4},
		{"4bpp", image.Rect(0, 0, 1448, 2), Depth4, 724, 1448},
		{"8bpp", image.Rect(4, 4, 10, 6), Depth8, 6, 12},
		{"empty", image.Rect(0, 0, 0, 10), Depth4, 0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := New(tc.rect, tc.depth)
			if img.Stride != tc.wantStride {
				t.Errorf("Stride = %d, want %d", img.Stride, tc.wantStride)
			}
			if len(img.Pix) != tc.wantLen {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tc.wantLen)
			}
			if img.Bounds() != tc.rect {
				t.Errorf("Bounds() = %v, want %v", img.Bounds(), tc.rect)
			}
		})
	}
}

func TestNewInvalidDepth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New() with depth 3 did not panic")
		}
	}()
	New(image.Rect(0, 0, 8, 8), Depth(3))
}

func TestPacking(t *testing.T) {
	for _, tc := range []struct {
		name  string
		depth Depth
		rect  image.Rectangle
		set   map[image.Point]uint8
		want  []byte
	}{
		{
			name:  "1bpp msb first",
			depth: Depth1,
			rect:  image.Rect(0, 0, 16, 1),
			set:   map[image.Point]uint8{{0, 0}: 1, {7, 0}: 1, {9, 0}: 1},
			want:  []byte{0x81, 0x40},
		},
		{
			name:  "2bpp",
			depth: Depth2,
			rect:  image.Rect(0, 0, 4, 1),
			set:   map[image.Point]uint8{{0, 0}: 3, {1, 0}: 2, {3, 0}: 1},
			want:  []byte{0xE1},
		},
		{
			name:  "4bpp even column in high nibble",
			depth: Depth4,
			rect:  image.Rect(0, 0, 4, 2),
			set:   map[image.Point]uint8{{0, 0}: 0xA, {1, 0}: 0x5, {3, 1}: 0xF},
			want:  []byte{0xA5, 0x00, 0x00, 0x0F},
		},
		{
			name:  "8bpp offset rect",
			depth: Depth8,
			rect:  image.Rect(10, 20, 12, 21),
			set:   map[image.Point]uint8{{10, 20}: 0x12, {11, 20}: 0xFE},
			want:  []byte{0x12, 0xFE},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := New(tc.rect, tc.depth)
			for p, l := range tc.set {
				img.SetLevel(p.X, p.Y, l)
			}
			if diff := cmp.Diff(img.Pix, tc.want); diff != "" {
				t.Errorf("Pix difference (-got +want):\n%s", diff)
			}
			for p, l := range tc.set {
				if got := img.LevelAt(p.X, p.Y); got != l {
					t.Errorf("LevelAt(%v) = %d, want %d", p, got, l)
				}
			}
		})
	}
}

func TestSetIgnoresOutOfBounds(t *testing.T) {
	img := New(image.Rect(0, 0, 8, 1), Depth1)
	img.SetLevel(8, 0, 1)
	img.SetLevel(-1, 0, 1)
	if img.Pix[0] != 0 {
		t.Errorf("Pix[0] = %#x, want 0", img.Pix[0])
	}
	if got := img.LevelAt(100, 100); got != 0 {
		t.Errorf("LevelAt() out of bounds = %d, want 0", got)
	}
}

func TestFill(t *testing.T) {
	for _, tc := range []struct {
		depth Depth
		level uint8
		want  byte
	}{
		{Depth1, 1, 0xFF},
		{Depth2, 1, 0x55},
		{Depth4, 0xF, 0xFF},
		{Depth4, 0x3, 0x33},
		{Depth8, 0x80, 0x80},
	} {
		img := New(image.Rect(0, 0, 16, 2), tc.depth)
		img.Fill(tc.level)
		for i, b := range img.Pix {
			if b != tc.want {
				t.Fatalf("depth %d: Pix[%d] = %#x, want %#x", tc.depth, i, b, tc.want)
			}
		}
	}
}

func TestColorModel(t *testing.T) {
	for _, tc := range []struct {
		depth Depth
		in    color.Color
		want  color.Gray
	}{
		{Depth1, color.White, color.Gray{0xFF}},
		{Depth1, color.Gray{0x7F}, color.Gray{0x00}},
		{Depth1, color.Gray{0x80}, color.Gray{0xFF}},
		{Depth2, color.Gray{0x80}, color.Gray{0xAA}},
		{Depth4, color.Black, color.Gray{0x00}},
		{Depth4, color.RGBA{0x88, 0x88, 0x88, 0xFF}, color.Gray{0x88}},
		{Depth8, color.Gray{0x42}, color.Gray{0x42}},
	} {
		got := tc.depth.Model().Convert(tc.in)
		if got != tc.want {
			t.Errorf("depth %d: Convert(%v) = %v, want %v", tc.depth, tc.in, got, tc.want)
		}
	}
}

func TestDraw(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 1))
	src.Pix = []byte{0x00, 0x55, 0xAA, 0xFF}
	dst := New(src.Bounds(), Depth2)
	draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
	if diff := cmp.Diff(dst.Pix, []byte{0x1B}); diff != "" {
		t.Errorf("Pix difference (-got +want):\n%s", diff)
	}
}

func TestCrop(t *testing.T) {
	img := New(image.Rect(0, 0, 8, 2), Depth4)
	img.SetLevel(2, 1, 0x9)
	img.SetLevel(3, 1, 0x6)
	got := img.Crop(image.Rect(2, 1, 4, 2))
	if diff := cmp.Diff(got.Pix, []byte{0x96}); diff != "" {
		t.Errorf("Pix difference (-got +want):\n%s", diff)
	}
	if got.Bounds() != image.Rect(2, 1, 4, 2) {
		t.Errorf("Bounds() = %v", got.Bounds())
	}
}
