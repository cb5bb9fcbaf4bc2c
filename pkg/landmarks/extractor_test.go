package landmarks

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/marma-detector/pkg/grid"
	"github.com/menta2k/marma-detector/pkg/types"
)

// footImage builds a flat gray sole inside a larger frame with a bright
// heel pixel, a dark toe row and a dark arch pixel, all relative to box.
func footImage(width, height int, box types.Box) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 100
	}
	// heel band: rows 140..199, cols 30..69 of a 100x200 box
	img.SetGray(box.X+50, box.Y+180, color.Gray{Y: 255})
	// toe band: rows 0..59
	for x := box.X; x < box.X+box.Width; x++ {
		img.SetGray(x, box.Y+20, color.Gray{Y: 10})
	}
	// arch band: rows 60..139, cols 20..79
	img.SetGray(box.X+40, box.Y+100, color.Gray{Y: 0})
	return img
}

func newGrid(t *testing.T, img image.Image) *grid.Grid {
	t.Helper()
	g, err := grid.FromImage(img)
	if err != nil {
		t.Fatalf("grid.FromImage failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		box           types.Box
	}{
		{"box fills image", 100, 200, types.Box{X: 0, Y: 0, Width: 100, Height: 200}},
		{"offset box", 160, 260, types.Box{X: 30, Y: 40, Width: 100, Height: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGrid(t, footImage(tt.width, tt.height, tt.box))

			lm, err := New().Extract(g, tt.box)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if lm.Count() != 3 {
				t.Fatalf("expected 3 landmarks, got %d", lm.Count())
			}

			x, y := tt.box.X, tt.box.Y
			if *lm.Heel != (types.Point{X: x + 50, Y: y + 180}) {
				t.Errorf("heel = %+v", *lm.Heel)
			}
			if *lm.ToeLine != (types.Point{X: x + 50, Y: y + 20}) {
				t.Errorf("toe line = %+v", *lm.ToeLine)
			}
			if *lm.Arch != (types.Point{X: x + 40, Y: y + 100}) {
				t.Errorf("arch = %+v", *lm.Arch)
			}
		})
	}
}

func TestExtractFlatRegionPicksFirst(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 200))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	g := newGrid(t, img)

	lm, err := New().Extract(g, types.Box{X: 0, Y: 0, Width: 100, Height: 200})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	// ties resolve to the first sample in row-major order
	if *lm.ToeLine != (types.Point{X: 50, Y: 0}) {
		t.Errorf("toe line = %+v", *lm.ToeLine)
	}
	if *lm.Heel != (types.Point{X: 30, Y: 140}) {
		t.Errorf("heel = %+v", *lm.Heel)
	}
	if *lm.Arch != (types.Point{X: 20, Y: 60}) {
		t.Errorf("arch = %+v", *lm.Arch)
	}
}

func TestExtractTinyBox(t *testing.T) {
	g := newGrid(t, image.NewGray(image.Rect(0, 0, 10, 10)))

	lm, err := New().Extract(g, types.Box{X: 2, Y: 2, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if lm.Count() != 0 {
		t.Errorf("expected no landmarks for a 1x1 box, got %+v", lm)
	}
}

func TestExtractOutOfBounds(t *testing.T) {
	g := newGrid(t, image.NewGray(image.Rect(0, 0, 50, 50)))

	boxes := []types.Box{
		{X: 40, Y: 0, Width: 20, Height: 20},
		{X: -1, Y: 0, Width: 10, Height: 10},
		{X: 0, Y: 0, Width: 0, Height: 10},
	}
	for _, box := range boxes {
		if _, err := New().Extract(g, box); !errors.Is(err, ErrBoxOutOfBounds) {
			t.Errorf("box %+v: expected ErrBoxOutOfBounds, got %v", box, err)
		}
	}
}

func TestBandRect(t *testing.T) {
	tests := []struct {
		band Band
		w, h int
		want image.Rectangle
	}{
		{Band{Top: 0.7, Bottom: 1, Left: 0.3, Right: 0.7}, 100, 200, image.Rect(30, 140, 70, 200)},
		{Band{Top: 0, Bottom: 0.3, Left: 0, Right: 1}, 33, 33, image.Rect(0, 0, 33, 9)},
		{Band{Top: 0.3, Bottom: 0.7, Left: 0.2, Right: 0.8}, 1, 1, image.Rectangle{}},
	}
	for _, tt := range tests {
		got := tt.band.rect(tt.w, tt.h)
		if got != tt.want && !(got.Empty() && tt.want.Empty()) {
			t.Errorf("%+v.rect(%d,%d) = %v, want %v", tt.band, tt.w, tt.h, got, tt.want)
		}
	}
}
