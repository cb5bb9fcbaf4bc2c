package analyzer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "github.com/menta2k/marma-detector/internal/errors"
)

// ImageAnalyzer loads and validates input photographs
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image loader
type Config struct {
	SupportedFormats []string `json:"supported_formats"`
	MinImageSize     int      `json:"min_image_size"`
	// AutoOrient applies the EXIF orientation tag of phone photos.
	AutoOrient bool `json:"auto_orient"`
}

// DefaultConfig returns the default loader configuration
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"},
		MinImageSize:     1,
		AutoOrient:       true,
	}
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{config: DefaultConfig()}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// LoadImage loads an image from file. All failures are input errors.
func (a *ImageAnalyzer) LoadImage(filepath string) (image.Image, error) {
	info, err := os.Stat(filepath)
	if err != nil {
		return nil, apperrors.NewInputError("file not found", err)
	}
	if info.IsDir() {
		return nil, apperrors.NewInputError("path is a directory", nil)
	}

	file, err := os.Open(filepath)
	if err != nil {
		return nil, apperrors.NewInputError("failed to open image file", err)
	}
	defer file.Close()

	return a.LoadImageFromReader(file)
}

// LoadImageFromReader loads an image from an io.Reader
func (a *ImageAnalyzer) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.NewInputError("failed to read image data", err)
	}

	img, format, err := a.decode(data)
	if err != nil {
		return nil, apperrors.NewInputError("Could not load image. Invalid file format.", err)
	}

	if !a.isFormatSupported(format) {
		return nil, apperrors.NewInputError(fmt.Sprintf("unsupported image format: %s", format), nil)
	}

	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}

	return img, nil
}

// decode tries the registered decoders through imaging, then falls back to
// the libwebp decoder for files the pure-Go webp decoder rejects.
func (a *ImageAnalyzer) decode(data []byte) (image.Image, string, error) {
	_, format, cfgErr := image.DecodeConfig(bytes.NewReader(data))
	if cfgErr == nil {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(a.config.AutoOrient))
		if err == nil {
			return img, format, nil
		}
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, "webp", nil
	}

	if cfgErr != nil {
		return nil, "", cfgErr
	}
	return nil, "", fmt.Errorf("image: unknown or unsupported format")
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return apperrors.NewInputError("Invalid image dimensions", nil)
	}
	if bounds.Dx() < a.config.MinImageSize || bounds.Dy() < a.config.MinImageSize {
		return apperrors.NewInputError(fmt.Sprintf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MinImageSize), nil)
	}
	return nil
}
