package markers

import "github.com/menta2k/marma-detector/pkg/types"

// Config holds marker placement fractions. Offsets are fractions of the
// region box; defaults position missing landmarks along the box center line.
type Config struct {
	MarkerSize      int     `json:"marker_size"`
	Confidence      float64 `json:"confidence"`
	KshipraLateral  float64 `json:"kshipra_lateral"`
	KurchaRise      float64 `json:"kurcha_rise"`
	KurchashiraRise float64 `json:"kurchashira_rise"`
	DefaultHeelY    float64 `json:"default_heel_y"`
	DefaultToeY     float64 `json:"default_toe_y"`
	DefaultArchY    float64 `json:"default_arch_y"`
}

// DefaultConfig returns the standard marker layout
func DefaultConfig() Config {
	return Config{
		MarkerSize:      20,
		Confidence:      0.85,
		KshipraLateral:  0.15,
		KurchaRise:      0.10,
		KurchashiraRise: 0.25, // Achilles side, above Kurcha
		DefaultHeelY:    0.90,
		DefaultToeY:     0.15,
		DefaultArchY:    0.50,
	}
}

// Calculator turns landmarks into the four labeled marker boxes
type Calculator struct {
	config Config
}

// New creates a Calculator with default configuration
func New() *Calculator {
	return &Calculator{config: DefaultConfig()}
}

// NewWithConfig creates a Calculator with custom configuration
func NewWithConfig(config Config) *Calculator {
	return &Calculator{config: config}
}

// Anchors returns heel, toe-line and arch with missing landmarks replaced
// by their fixed-fraction defaults.
func (c *Calculator) Anchors(box types.Box, lm types.Landmarks) (heel, toe, arch types.Point) {
	midX := box.X + box.Width/2
	heel = types.Point{X: midX, Y: box.Y + int(float64(box.Height)*c.config.DefaultHeelY)}
	toe = types.Point{X: midX, Y: box.Y + int(float64(box.Height)*c.config.DefaultToeY)}
	arch = types.Point{X: midX, Y: box.Y + int(float64(box.Height)*c.config.DefaultArchY)}

	if lm.Heel != nil {
		heel = *lm.Heel
	}
	if lm.ToeLine != nil {
		toe = *lm.ToeLine
	}
	if lm.Arch != nil {
		arch = *lm.Arch
	}
	return heel, toe, arch
}

// Compute returns exactly four markers in label order. Kshipra is shifted
// toward the big toe, mirrored by isLeft.
func (c *Calculator) Compute(box types.Box, lm types.Landmarks, isLeft bool, imageWidth, imageHeight int) []types.MarkerRegion {
	heel, toe, arch := c.Anchors(box, lm)

	lateral := int(float64(box.Width) * c.config.KshipraLateral)
	if isLeft {
		lateral = -lateral
	}

	centers := []struct {
		label types.Label
		at    types.Point
	}{
		{types.Kshipra, types.Point{X: toe.X + lateral, Y: toe.Y}},
		{types.Kurcha, types.Point{X: heel.X, Y: heel.Y - int(float64(box.Height)*c.config.KurchaRise)}},
		{types.Talahridaya, types.Point{X: (arch.X + heel.X) / 2, Y: (arch.Y + heel.Y) / 2}},
		{types.Kurchashira, types.Point{X: heel.X, Y: heel.Y - int(float64(box.Height)*c.config.KurchashiraRise)}},
	}

	size := minInt(c.config.MarkerSize, minInt(imageWidth, imageHeight))
	half := size / 2

	out := make([]types.MarkerRegion, 0, len(centers))
	for _, p := range centers {
		cx := clamp(p.at.X, half, imageWidth-(size-half))
		cy := clamp(p.at.Y, half, imageHeight-(size-half))
		out = append(out, types.MarkerRegion{
			X:          cx - half,
			Y:          cy - half,
			Width:      size,
			Height:     size,
			Label:      p.label,
			Confidence: c.config.Confidence,
		})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
