package orientation

import "github.com/menta2k/marma-detector/pkg/types"

// Classifier decides whether a region shows the left foot. Regions are
// presented left to right; index is the position in that order.
type Classifier interface {
	Classify(region types.FootRegion, index, regionCount, imageWidth int) bool
}

// ClassifierFunc adapts a plain function to the Classifier interface
type ClassifierFunc func(region types.FootRegion, index, regionCount, imageWidth int) bool

// Classify calls f
func (f ClassifierFunc) Classify(region types.FootRegion, index, regionCount, imageWidth int) bool {
	return f(region, index, regionCount, imageWidth)
}

// PositionClassifier assumes two feet photographed side by side: the first
// region is left when its centroid sits left of the image midline, the
// second region is always left.
//
// This is a weak heuristic for arbitrary framing.
type PositionClassifier struct{}

// NewPositionClassifier creates the default classifier
func NewPositionClassifier() PositionClassifier {
	return PositionClassifier{}
}

// Classify implements Classifier
func (PositionClassifier) Classify(region types.FootRegion, index, regionCount, imageWidth int) bool {
	switch index {
	case 0:
		return region.Centroid.X < imageWidth/2
	case 1:
		return true
	default:
		return false
	}
}
