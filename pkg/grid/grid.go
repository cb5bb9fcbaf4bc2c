// Package grid converts decoded images into the single-channel OpenCV
// matrix that the segmentation and landmark stages read from.
package grid

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Grid is a read-only grayscale pixel grid. The owner must call Close.
type Grid struct {
	gray   gocv.Mat
	width  int
	height int
}

// FromImage builds a grayscale grid from any decoded image
func FromImage(img image.Image) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", b.Dx(), b.Dy())
	}

	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
		mat, err := gocv.ImageGrayToMatGray(g)
		if err != nil {
			return nil, fmt.Errorf("failed to convert gray image: %w", err)
		}
		defer mat.Close()
		return FromMat(mat)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()
	return FromMat(mat)
}

// FromMat builds a grid from a 1, 3 (BGR) or 4 (BGRA) channel Mat.
// The source is copied and remains owned by the caller.
func FromMat(src gocv.Mat) (*Grid, error) {
	if src.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	gray := gocv.NewMat()
	switch src.Channels() {
	case 1:
		src.CopyTo(&gray)
	case 3:
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(src, &gray, gocv.ColorBGRAToGray)
	default:
		gray.Close()
		return nil, fmt.Errorf("unsupported number of channels: %d", src.Channels())
	}

	return &Grid{gray: gray, width: gray.Cols(), height: gray.Rows()}, nil
}

// Gray returns the underlying matrix. Callers must not modify or close it.
func (g *Grid) Gray() gocv.Mat {
	return g.gray
}

// Width returns the grid width in pixels
func (g *Grid) Width() int {
	return g.width
}

// Height returns the grid height in pixels
func (g *Grid) Height() int {
	return g.height
}

// Bounds returns the grid rectangle anchored at the origin
func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.width, g.height)
}

// At returns the intensity at column x, row y
func (g *Grid) At(x, y int) uint8 {
	return g.gray.GetUCharAt(y, x)
}

// Close releases the underlying matrix
func (g *Grid) Close() error {
	return g.gray.Close()
}
