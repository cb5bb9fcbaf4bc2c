package segmentation

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/menta2k/marma-detector/pkg/grid"
	"github.com/menta2k/marma-detector/pkg/types"
)

// Config holds the segmentation thresholds
type Config struct {
	AdaptiveBlockSize    int     `json:"adaptive_block_size"`
	AdaptiveC            float64 `json:"adaptive_c"`
	BlurKernel           int     `json:"blur_kernel"`
	CannyLow             float64 `json:"canny_low"`
	CannyHigh            float64 `json:"canny_high"`
	EdgeDilateKernel     int     `json:"edge_dilate_kernel"`
	EdgeDilateIterations int     `json:"edge_dilate_iterations"`
	MorphKernel          int     `json:"morph_kernel"`
	CloseIterations      int     `json:"close_iterations"`
	OpenIterations       int     `json:"open_iterations"`
	MinAreaFraction      float64 `json:"min_area_fraction"`
	MinAspect            float64 `json:"min_aspect"`
	MaxAspect            float64 `json:"max_aspect"`
	MaxRegions           int     `json:"max_regions"`
}

// DefaultConfig returns the thresholds tuned for a plain background
func DefaultConfig() Config {
	return Config{
		AdaptiveBlockSize:    11,
		AdaptiveC:            2,
		BlurKernel:           5,
		CannyLow:             50,
		CannyHigh:            150,
		EdgeDilateKernel:     3,
		EdgeDilateIterations: 1,
		MorphKernel:          5,
		CloseIterations:      3,
		OpenIterations:       2,
		MinAreaFraction:      0.02, // rejects noise
		MinAspect:            1.2,  // rejects near-square blobs
		MaxAspect:            4.0,  // rejects slivers
		MaxRegions:           2,    // left and right foot
	}
}

// Segmenter finds foot-shaped regions in a grayscale grid
type Segmenter struct {
	config     Config
	strategies []MaskStrategy
}

// New creates a Segmenter with default configuration
func New() *Segmenter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Segmenter with custom configuration
func NewWithConfig(config Config) *Segmenter {
	return &Segmenter{
		config:     config,
		strategies: DefaultStrategies(config),
	}
}

// SetStrategies replaces the mask strategies combined by Segment
func (s *Segmenter) SetStrategies(strategies ...MaskStrategy) {
	s.strategies = strategies
}

// Config returns the active configuration
func (s *Segmenter) Config() Config {
	return s.config
}

// Segment returns at most MaxRegions foot regions ordered left to right.
// An empty result is a normal outcome.
func (s *Segmenter) Segment(g *grid.Grid) []types.FootRegion {
	combined := Union(g.Gray(), s.strategies)
	defer combined.Close()
	if combined.Empty() {
		return nil
	}

	cleaned := Clean(combined, s.config.MorphKernel, s.config.CloseIterations, s.config.OpenIterations)
	defer cleaned.Close()

	candidates := ExtractRegions(cleaned)
	return s.Filter(candidates, g.Width(), g.Height())
}

// ExtractRegions describes every external contour of a binary mask
func ExtractRegions(mask gocv.Mat) []types.FootRegion {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	regions := make([]types.FootRegion, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		box := types.BoxFromRect(gocv.BoundingRect(contour))
		points := contour.ToPoints()

		regions = append(regions, types.FootRegion{
			Box:      box,
			Contour:  points,
			Area:     gocv.ContourArea(contour),
			Centroid: Centroid(points, box),
			Angle:    gocv.MinAreaRect(contour).Angle,
		})
	}
	return regions
}

// Filter keeps regions above the area floor and inside the aspect band,
// takes the largest MaxRegions and orders them left to right.
func (s *Segmenter) Filter(regions []types.FootRegion, width, height int) []types.FootRegion {
	minArea := float64(width*height) * s.config.MinAreaFraction

	var feet []types.FootRegion
	for _, r := range regions {
		if r.Area <= minArea {
			continue
		}
		aspect := r.Box.AspectRatio()
		if aspect <= s.config.MinAspect || aspect >= s.config.MaxAspect {
			continue
		}
		feet = append(feet, r)
	}

	sort.SliceStable(feet, func(i, j int) bool {
		return feet[i].Area > feet[j].Area
	})
	if s.config.MaxRegions > 0 && len(feet) > s.config.MaxRegions {
		feet = feet[:s.config.MaxRegions]
	}
	sort.SliceStable(feet, func(i, j int) bool {
		return feet[i].Box.X < feet[j].Box.X
	})
	return feet
}

// Centroid returns the centroid of a closed polygon from its first-order
// moments. Degenerate polygons fall back to the box center.
func Centroid(points []image.Point, box types.Box) types.Point {
	var m00, m10, m01 float64
	n := len(points)
	for i := 0; i < n; i++ {
		p, q := points[i], points[(i+1)%n]
		cross := float64(p.X*q.Y - q.X*p.Y)
		m00 += cross
		m10 += float64(p.X+q.X) * cross
		m01 += float64(p.Y+q.Y) * cross
	}
	if math.Abs(m00) < 1e-9 {
		return box.Center()
	}
	m00 /= 2
	m10 /= 6
	m01 /= 6
	return types.Point{X: int(m10 / m00), Y: int(m01 / m00)}
}
