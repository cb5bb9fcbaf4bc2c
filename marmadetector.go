// Package marmadetector locates marma points on photographs of the soles of
// the feet.
//
// The detector segments up to two foot silhouettes, infers heel, toe-line
// and arch reference points inside each, and places four labeled markers
// per foot (Kshipra, Kurcha, Talahridaya, Kurchashira).
//
// Basic usage:
//
//	package main
//
//	import (
//		"encoding/json"
//		"os"
//
//		marmadetector "github.com/menta2k/marma-detector"
//	)
//
//	func main() {
//		detector := marmadetector.New()
//
//		// Detect markers and write photo_annotated.jpg next to the input
//		result := detector.DetectFile("photo.jpg")
//
//		json.NewEncoder(os.Stdout).Encode(result)
//	}
//
// The package consists of the following components:
//
// 1. Analyzer (pkg/analyzer): loads and validates input images
// 2. Segmentation (pkg/segmentation): finds foot regions with a union of
// adaptive, Otsu and edge masks
// 3. Landmarks (pkg/landmarks): heel, toe-line and arch inside a region
// 4. Orientation (pkg/orientation): left/right classification
// 5. Markers (pkg/markers): labeled marker placement
// 6. Pipeline (pkg/pipeline): runs the stages and folds per-region outcomes
// 7. Processing (pkg/processing): annotated image and foot crops
//
// A run always yields a well-formed result: either ok with at least one
// marker, or not ok with an error message. This is a heuristic locator, not a
// clinically validated one.
package marmadetector

import (
	"errors"
	"fmt"
	"image"

	apperrors "github.com/menta2k/marma-detector/internal/errors"
	"github.com/menta2k/marma-detector/internal/logger"
	"github.com/menta2k/marma-detector/pkg/analyzer"
	"github.com/menta2k/marma-detector/pkg/grid"
	"github.com/menta2k/marma-detector/pkg/pipeline"
	"github.com/menta2k/marma-detector/pkg/processing"
	"github.com/menta2k/marma-detector/pkg/types"
)

// Version of the marma detector library
const Version = "1.0.0"

const component = "detector"

// Detector provides a high-level interface for marma point detection
type Detector struct {
	analyzer  *analyzer.ImageAnalyzer
	pipeline  *pipeline.Pipeline
	processor *processing.Processor
	log       logger.Logger
}

// New creates a new Detector with default configuration
func New() *Detector {
	return NewWithConfig(analyzer.DefaultConfig(), pipeline.DefaultConfig(), processing.DefaultConfig())
}

// NewWithConfig creates a new Detector with custom configuration
func NewWithConfig(loaderConfig analyzer.Config, pipelineConfig pipeline.Config, outputConfig processing.Config) *Detector {
	return &Detector{
		analyzer:  analyzer.NewWithConfig(loaderConfig),
		pipeline:  pipeline.NewWithConfig(pipelineConfig),
		processor: processing.NewProcessorWithConfig(outputConfig),
		log:       logger.NewNop(),
	}
}

// SetLogger sets the logger used by the detector and its pipeline
func (d *Detector) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NewNop()
	}
	d.log = l
	d.pipeline.SetLogger(l)
}

// Pipeline exposes the detection pipeline so stages can be replaced
func (d *Detector) Pipeline() *pipeline.Pipeline {
	return d.pipeline
}

// LoadImage loads an image from file
func (d *Detector) LoadImage(path string) (image.Image, error) {
	return d.analyzer.LoadImage(path)
}

// GetImageInfo returns basic information about an image
func (d *Detector) GetImageInfo(img image.Image) analyzer.ImageInfo {
	return d.analyzer.GetImageInfo(img)
}

// Analyze runs the pipeline on a decoded image and returns the full trace
func (d *Detector) Analyze(img image.Image) (pipeline.Analysis, error) {
	if img == nil {
		return pipeline.Analysis{}, apperrors.NewInputError("Could not load image. Invalid file format.", nil)
	}
	if err := d.analyzer.ValidateImage(img); err != nil {
		return pipeline.Analysis{}, err
	}

	g, err := grid.FromImage(img)
	if err != nil {
		return pipeline.Analysis{}, apperrors.NewInputError("Invalid image dimensions", err)
	}
	defer g.Close()

	return d.pipeline.Analyze(g), nil
}

// DetectImage detects markers on a decoded image without writing anything
func (d *Detector) DetectImage(img image.Image) types.PipelineResult {
	analysis, err := d.Analyze(img)
	if err != nil {
		return failureFrom(err)
	}
	return analysis.Result
}

// DetectFile loads path, detects markers and, on success, writes the
// configured output artifacts. Output failures are logged and never
// change the detection outcome.
func (d *Detector) DetectFile(path string) (result types.PipelineResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failureFrom(apperrors.NewInternalError(fmt.Sprintf("Detection error: %v", r), nil))
		}
	}()

	img, err := d.analyzer.LoadImage(path)
	if err != nil {
		d.log.Error(component, err, map[string]interface{}{"path": path})
		return failureFrom(err)
	}

	analysis, err := d.Analyze(img)
	if err != nil {
		d.log.Error(component, err, map[string]interface{}{"path": path})
		return failureFrom(err)
	}

	result = analysis.Result
	if !result.OK {
		return result
	}

	cfg := d.processor.Config()
	if cfg.Render {
		out := d.processor.AnnotatedPath(path)
		if err := d.writeAnnotated(img, result.Markers, out); err != nil {
			d.log.Error(component, apperrors.NewRenderError("failed to write annotated image", err), map[string]interface{}{"path": out})
		} else {
			result.AnnotatedPath = out
		}
	}

	if cfg.Crops {
		var regions []types.FootRegion
		for _, r := range analysis.Results {
			if r.Err == nil {
				regions = append(regions, r.Region)
			}
		}
		for i, crop := range d.processor.CropRegions(img, regions) {
			out := d.processor.CropPath(path, i+1)
			if err := d.processor.Save(crop, out); err != nil {
				d.log.Error(component, apperrors.NewRenderError("failed to write foot crop", err), map[string]interface{}{"path": out})
				continue
			}
			result.CropPaths = append(result.CropPaths, out)
		}
	}

	return result
}

// Annotate draws markers on a copy of img
func (d *Detector) Annotate(img image.Image, markers []types.MarkerRegion) (image.Image, error) {
	annotated, err := d.processor.Annotate(img, markers)
	if err != nil {
		return nil, err
	}
	return annotated, nil
}

func (d *Detector) writeAnnotated(img image.Image, markers []types.MarkerRegion, out string) error {
	annotated, err := d.processor.Annotate(img, markers)
	if err != nil {
		return err
	}
	return d.processor.Save(annotated, out)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

func failureFrom(err error) types.PipelineResult {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return types.Failure(string(appErr.Type), appErr.Message)
	}
	return types.Failure(string(apperrors.ErrorTypeInternal), err.Error())
}
