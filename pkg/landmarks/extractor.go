package landmarks

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/menta2k/marma-detector/pkg/grid"
	"github.com/menta2k/marma-detector/pkg/types"
)

// ErrBoxOutOfBounds is returned when a region box is empty or not fully
// inside the grid.
var ErrBoxOutOfBounds = errors.New("region box outside image")

// Band is a search window expressed as fractions of the region box
type Band struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Config holds the search bands for each landmark
type Config struct {
	Heel    Band `json:"heel"`
	ToeLine Band `json:"toe_line"`
	Arch    Band `json:"arch"`
}

// DefaultConfig returns the standard sole layout: heel pad at the bottom,
// toe seam in the top third, arch through the middle.
func DefaultConfig() Config {
	return Config{
		Heel:    Band{Top: 0.7, Bottom: 1.0, Left: 0.3, Right: 0.7},
		ToeLine: Band{Top: 0.0, Bottom: 0.3, Left: 0.0, Right: 1.0},
		Arch:    Band{Top: 0.3, Bottom: 0.7, Left: 0.2, Right: 0.8},
	}
}

// Extractor infers heel, toe-line and arch points inside a region
type Extractor struct {
	config Config
}

// New creates an Extractor with default configuration
func New() *Extractor {
	return &Extractor{config: DefaultConfig()}
}

// NewWithConfig creates an Extractor with custom configuration
func NewWithConfig(config Config) *Extractor {
	return &Extractor{config: config}
}

// Extract searches each band of box for its landmark. Bands that collapse
// to zero size leave the landmark nil.
func (e *Extractor) Extract(g *grid.Grid, box types.Box) (types.Landmarks, error) {
	rect := box.Rect()
	if rect.Empty() || !rect.In(g.Bounds()) {
		return types.Landmarks{}, fmt.Errorf("%w: %v not in %v", ErrBoxOutOfBounds, rect, g.Bounds())
	}

	gray := g.Gray()
	roi := gray.Region(rect)
	defer roi.Close()

	var lm types.Landmarks

	// Heel pad: brightest sample in the bottom band.
	if band := e.config.Heel.rect(box.Width, box.Height); !band.Empty() {
		sub := roi.Region(band)
		_, _, _, maxLoc := gocv.MinMaxLoc(sub)
		sub.Close()
		lm.Heel = &types.Point{X: box.X + band.Min.X + maxLoc.X, Y: box.Y + band.Min.Y + maxLoc.Y}
	}

	// Toe seam: darkest row in the top band, pinned to the horizontal middle.
	if band := e.config.ToeLine.rect(box.Width, box.Height); !band.Empty() {
		if row, ok := darkestRow(roi, band); ok {
			lm.ToeLine = &types.Point{X: box.X + box.Width/2, Y: box.Y + band.Min.Y + row}
		}
	}

	// Arch: darkest sample in the middle band.
	if band := e.config.Arch.rect(box.Width, box.Height); !band.Empty() {
		sub := roi.Region(band)
		_, _, minLoc, _ := gocv.MinMaxLoc(sub)
		sub.Close()
		lm.Arch = &types.Point{X: box.X + band.Min.X + minLoc.X, Y: box.Y + band.Min.Y + minLoc.Y}
	}

	return lm, nil
}

// darkestRow returns the band row with the smallest intensity sum, first
// row on ties.
func darkestRow(roi gocv.Mat, band image.Rectangle) (int, bool) {
	sub := roi.Region(band)
	defer sub.Close()

	sums := gocv.NewMat()
	defer sums.Close()
	gocv.Reduce(sub, &sums, 1, gocv.ReduceSum, gocv.MatTypeCV32S)
	if sums.Empty() {
		return 0, false
	}
	_, _, minLoc, _ := gocv.MinMaxLoc(sums)
	return minLoc.Y, true
}

// rect converts fractional band limits to pixel bounds relative to the
// region origin, truncating like integer slicing.
func (b Band) rect(width, height int) image.Rectangle {
	x0 := int(float64(width) * b.Left)
	x1 := int(float64(width) * b.Right)
	y0 := int(float64(height) * b.Top)
	y1 := int(float64(height) * b.Bottom)
	return image.Rect(x0, y0, x1, y1).Intersect(image.Rect(0, 0, width, height))
}
