// Package pipeline runs segmentation, orientation, landmark extraction and
// marker placement over one grid and folds the per-region outcomes into a
// single result.
package pipeline

import (
	"fmt"

	apperrors "github.com/menta2k/marma-detector/internal/errors"
	"github.com/menta2k/marma-detector/internal/logger"
	"github.com/menta2k/marma-detector/pkg/grid"
	"github.com/menta2k/marma-detector/pkg/landmarks"
	"github.com/menta2k/marma-detector/pkg/markers"
	"github.com/menta2k/marma-detector/pkg/orientation"
	"github.com/menta2k/marma-detector/pkg/segmentation"
	"github.com/menta2k/marma-detector/pkg/types"
)

const component = "pipeline"

// Failure messages reported to the caller.
const (
	MsgNoFeet    = "No feet detected. Try better lighting or plain background."
	MsgNoMarkers = "Could not detect marma points on detected feet."
)

// Segmenter finds candidate foot regions, ordered left to right
type Segmenter interface {
	Segment(g *grid.Grid) []types.FootRegion
}

// LandmarkExtractor infers reference points inside a region box
type LandmarkExtractor interface {
	Extract(g *grid.Grid, box types.Box) (types.Landmarks, error)
}

// MarkerCalculator places the labeled markers for one region
type MarkerCalculator interface {
	Compute(box types.Box, lm types.Landmarks, isLeft bool, imageWidth, imageHeight int) []types.MarkerRegion
}

// Config groups the tunables of every stage
type Config struct {
	Segmentation segmentation.Config `json:"segmentation"`
	Landmarks    landmarks.Config    `json:"landmarks"`
	Markers      markers.Config      `json:"markers"`
}

// DefaultConfig returns the default configuration of every stage
func DefaultConfig() Config {
	return Config{
		Segmentation: segmentation.DefaultConfig(),
		Landmarks:    landmarks.DefaultConfig(),
		Markers:      markers.DefaultConfig(),
	}
}

// RegionResult is the outcome of processing a single region. Exactly one
// of Markers (non-empty) or Err is set.
type RegionResult struct {
	Index     int
	Region    types.FootRegion
	IsLeft    bool
	Landmarks types.Landmarks
	Markers   []types.MarkerRegion
	Err       error
}

// Analysis carries the full trace of a run alongside the result
type Analysis struct {
	Regions []types.FootRegion
	Results []RegionResult
	Result  types.PipelineResult
}

// Pipeline wires the detection stages together
type Pipeline struct {
	segmenter  Segmenter
	extractor  LandmarkExtractor
	classifier orientation.Classifier
	calculator MarkerCalculator
	log        logger.Logger
}

// New creates a Pipeline with default configuration
func New() *Pipeline {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a Pipeline with custom configuration
func NewWithConfig(config Config) *Pipeline {
	return &Pipeline{
		segmenter:  segmentation.NewWithConfig(config.Segmentation),
		extractor:  landmarks.NewWithConfig(config.Landmarks),
		classifier: orientation.NewPositionClassifier(),
		calculator: markers.NewWithConfig(config.Markers),
		log:        logger.NewNop(),
	}
}

// SetSegmenter replaces the segmentation stage
func (p *Pipeline) SetSegmenter(s Segmenter) { p.segmenter = s }

// SetExtractor replaces the landmark stage
func (p *Pipeline) SetExtractor(e LandmarkExtractor) { p.extractor = e }

// SetClassifier replaces the orientation stage
func (p *Pipeline) SetClassifier(c orientation.Classifier) { p.classifier = c }

// SetCalculator replaces the marker stage
func (p *Pipeline) SetCalculator(c MarkerCalculator) { p.calculator = c }

// SetLogger replaces the logger
func (p *Pipeline) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NewNop()
	}
	p.log = l
}

// Run detects marker regions on g
func (p *Pipeline) Run(g *grid.Grid) types.PipelineResult {
	return p.Analyze(g).Result
}

// Analyze runs every stage and keeps the intermediate regions and
// per-region outcomes.
func (p *Pipeline) Analyze(g *grid.Grid) Analysis {
	regions := p.segmenter.Segment(g)
	p.log.Debug(component, "segmentation finished", map[string]interface{}{
		"regions": len(regions),
		"width":   g.Width(),
		"height":  g.Height(),
	})

	if len(regions) == 0 {
		err := apperrors.NewNoRegionsError(MsgNoFeet)
		p.log.Warning(component, err.Message, nil)
		return Analysis{Result: types.Failure(string(err.Type), err.Message)}
	}

	results := make([]RegionResult, 0, len(regions))
	for i, region := range regions {
		res := p.processRegion(g, region, i, len(regions))
		if res.Err != nil {
			p.log.Error(component, res.Err, map[string]interface{}{
				"region": i,
				"box":    region.Box,
				"type":   apperrors.TypeOf(res.Err),
			})
		} else {
			p.log.Debug(component, "region processed", map[string]interface{}{
				"region":    i,
				"box":       region.Box,
				"left":      res.IsLeft,
				"angle":     region.Angle,
				"landmarks": res.Landmarks.Count(),
			})
		}
		results = append(results, res)
	}

	result := Fold(results, len(regions))
	p.log.Info(component, "detection finished", map[string]interface{}{
		"ok":            result.OK,
		"markers":       len(result.Markers),
		"feet_detected": result.FeetDetected,
		"regions_found": result.RegionsFound,
	})

	return Analysis{Regions: regions, Results: results, Result: result}
}

// processRegion isolates one region: errors and panics become a
// RegionError on the result instead of aborting the run.
func (p *Pipeline) processRegion(g *grid.Grid, region types.FootRegion, index, count int) (res RegionResult) {
	res = RegionResult{Index: index, Region: region}
	defer func() {
		if r := recover(); r != nil {
			res.Markers = nil
			res.Err = apperrors.NewRegionError(index, fmt.Errorf("panic: %v", r))
		}
	}()

	res.IsLeft = p.classifier.Classify(region, index, count, g.Width())

	lm, err := p.extractor.Extract(g, region.Box)
	if err != nil {
		res.Err = apperrors.NewRegionError(index, err)
		return res
	}
	res.Landmarks = lm

	placed := p.calculator.Compute(region.Box, lm, res.IsLeft, g.Width(), g.Height())
	if len(placed) == 0 {
		res.Err = apperrors.NewRegionError(index, fmt.Errorf("no markers computed"))
		return res
	}
	res.Markers = placed
	return res
}

// Fold aggregates per-region outcomes. FeetDetected counts the regions
// that produced markers; RegionsFound counts what segmentation returned.
func Fold(results []RegionResult, regionsFound int) types.PipelineResult {
	var all []types.MarkerRegion
	succeeded := 0
	for _, r := range results {
		if r.Err != nil || len(r.Markers) == 0 {
			continue
		}
		all = append(all, r.Markers...)
		succeeded++
	}

	if len(all) == 0 {
		err := apperrors.NewNoMarkersError(MsgNoMarkers)
		res := types.Failure(string(err.Type), err.Message)
		res.RegionsFound = regionsFound
		return res
	}

	return types.PipelineResult{
		OK:           true,
		Markers:      all,
		FeetDetected: succeeded,
		RegionsFound: regionsFound,
	}
}
