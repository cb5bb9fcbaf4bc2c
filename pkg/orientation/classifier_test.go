package orientation

import (
	"testing"

	"github.com/menta2k/marma-detector/pkg/types"
)

func TestPositionClassifier(t *testing.T) {
	at := func(x int) types.FootRegion {
		return types.FootRegion{Centroid: types.Point{X: x, Y: 100}}
	}

	tests := []struct {
		name   string
		region types.FootRegion
		index  int
		count  int
		want   bool
	}{
		{"single foot left of midline", at(100), 0, 1, true},
		{"single foot right of midline", at(700), 0, 1, false},
		{"centroid on midline", at(400), 0, 1, false},
		{"first of two on the left", at(200), 0, 2, true},
		{"second region is always left", at(700), 1, 2, true},
		{"extra regions default to right", at(100), 2, 3, false},
	}

	c := NewPositionClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.region, tt.index, tt.count, 800); got != tt.want {
				t.Errorf("Classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifierFunc(t *testing.T) {
	var c Classifier = ClassifierFunc(func(_ types.FootRegion, index, _, _ int) bool {
		return index%2 == 0
	})
	if !c.Classify(types.FootRegion{}, 0, 2, 100) || c.Classify(types.FootRegion{}, 1, 2, 100) {
		t.Error("ClassifierFunc should delegate to the wrapped function")
	}
}
