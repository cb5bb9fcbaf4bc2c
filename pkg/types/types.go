package types

import "image"

// Point is a pixel coordinate in the original image
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Box is an axis-aligned bounding box in pixel coordinates
type Box struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoxFromRect converts an image.Rectangle into a Box
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect returns the box as an image.Rectangle
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Center returns the integer center of the box
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// AspectRatio returns max(w,h)/min(w,h), or 0 for a degenerate box
func (b Box) AspectRatio() float64 {
	lo, hi := b.Width, b.Height
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo <= 0 {
		return 0
	}
	return float64(hi) / float64(lo)
}

// FootRegion is one candidate foot silhouette produced by segmentation
type FootRegion struct {
	Box      Box           `json:"box"`
	Contour  []image.Point `json:"-"`
	Area     float64       `json:"area"`
	Centroid Point         `json:"centroid"`
	// Angle of the minimum-area rectangle around the contour, in degrees.
	Angle float64 `json:"angle"`
}

// Landmarks holds the anatomical reference points found inside one region.
// A nil point means the search band was empty.
type Landmarks struct {
	Heel    *Point `json:"heel,omitempty"`
	ToeLine *Point `json:"toe_line,omitempty"`
	Arch    *Point `json:"arch,omitempty"`
}

// Count returns how many landmarks were found
func (l Landmarks) Count() int {
	n := 0
	for _, p := range []*Point{l.Heel, l.ToeLine, l.Arch} {
		if p != nil {
			n++
		}
	}
	return n
}

// Label names one of the four marma points placed on every foot
type Label string

const (
	Kshipra     Label = "Kshipra Marma"
	Kurcha      Label = "Kurcha Marma"
	Talahridaya Label = "Talahridaya Marma"
	Kurchashira Label = "Kurchashira Marma"
)

// Labels returns the fixed label set in emission order
func Labels() []Label {
	return []Label{Kshipra, Kurcha, Talahridaya, Kurchashira}
}

// Valid reports whether l belongs to the fixed label set
func (l Label) Valid() bool {
	for _, known := range Labels() {
		if l == known {
			return true
		}
	}
	return false
}

// MarkerRegion is a labeled marker box returned to the caller
type MarkerRegion struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Center returns the center point of the marker
func (m MarkerRegion) Center() Point {
	return Point{X: m.X + m.Width/2, Y: m.Y + m.Height/2}
}

// PipelineResult is the outcome of one detection run.
// OK implies non-empty Markers; !OK implies a non-empty Error.
type PipelineResult struct {
	OK            bool           `json:"ok"`
	Markers       []MarkerRegion `json:"markers,omitempty"`
	FeetDetected  int            `json:"feet_detected,omitempty"`
	RegionsFound  int            `json:"regions_found,omitempty"`
	AnnotatedPath string         `json:"annotated_path,omitempty"`
	CropPaths     []string       `json:"crop_paths,omitempty"`
	Error         string         `json:"error,omitempty"`
	ErrorType     string         `json:"error_type,omitempty"`
}

// Failure builds a failed result
func Failure(errorType, message string) PipelineResult {
	return PipelineResult{OK: false, Error: message, ErrorType: errorType}
}
