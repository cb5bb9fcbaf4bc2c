package processing

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/menta2k/marma-detector/internal/utils"
	"github.com/menta2k/marma-detector/pkg/types"
)

// Config holds output settings for rendered artifacts
type Config struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Suffix    string `json:"suffix"`
	Render    bool   `json:"render"`
	Crops     bool   `json:"crops"`
}

// DefaultConfig writes a JPEG next to the input
func DefaultConfig() Config {
	return Config{
		Format:  "jpg",
		Quality: 90,
		Suffix:  "_annotated",
		Render:  true,
	}
}

// Processor renders and writes the secondary output artifacts
type Processor struct {
	config Config
}

// NewProcessor creates a new processor with default configuration
func NewProcessor() *Processor {
	return &Processor{config: DefaultConfig()}
}

// NewProcessorWithConfig creates a new processor with custom configuration
func NewProcessorWithConfig(config Config) *Processor {
	return &Processor{config: config}
}

// Config returns the active configuration
func (p *Processor) Config() Config {
	return p.config
}

// Annotation colors. gocv takes RGB and stores them as BGR scalars.
var (
	boxColor   = color.RGBA{255, 255, 0, 255}
	dotColor   = color.RGBA{255, 0, 0, 255}
	plateColor = color.RGBA{0, 0, 0, 255}
	textColor  = color.RGBA{255, 255, 255, 255}
)

const (
	boxStroke  = 2
	dotRadius  = 5
	labelFont  = gocv.FontHersheySimplex
	labelScale = 0.5
)

// Annotate draws every marker on a copy of img: an outlined box, a filled
// center dot and the label on a dark plate above the box.
func (p *Processor) Annotate(img image.Image, markers []types.MarkerRegion) (*image.NRGBA, error) {
	canvas, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer canvas.Close()

	for _, m := range markers {
		// opencv treats both corners as inclusive
		box := image.Rect(m.X, m.Y, m.X+m.Width-1, m.Y+m.Height-1)
		gocv.Rectangle(&canvas, box, boxColor, boxStroke)

		c := m.Center()
		gocv.Circle(&canvas, image.Pt(c.X, c.Y), dotRadius, dotColor, -1)

		label := string(m.Label)
		size := gocv.GetTextSize(label, labelFont, labelScale, 1)
		plate := image.Rect(m.X, m.Y-size.Y-8, m.X+size.X+4, m.Y)
		gocv.Rectangle(&canvas, plate, plateColor, -1)
		gocv.PutText(&canvas, label, image.Pt(m.X+2, m.Y-4), labelFont, labelScale, textColor, 1)
	}

	out, err := canvas.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert annotated image: %w", err)
	}
	return imaging.Clone(out), nil
}

// AnnotatedPath derives the annotated output path from the input path
func (p *Processor) AnnotatedPath(inputPath string) string {
	return p.derivePath(inputPath, p.config.Suffix)
}

// CropPath derives the output path of the n-th (1-based) foot crop
func (p *Processor) CropPath(inputPath string, n int) string {
	return p.derivePath(inputPath, fmt.Sprintf("_foot%d", n))
}

func (p *Processor) derivePath(inputPath, suffix string) string {
	dir := p.config.OutputDir
	if dir == "" {
		dir = filepath.Dir(inputPath)
	}
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix+"."+p.format())
}

func (p *Processor) format() string {
	f := strings.ToLower(p.config.Format)
	if f == "" || f == "jpeg" {
		return "jpg"
	}
	return f
}

// CropRegions cuts each region box out of img
func (p *Processor) CropRegions(img image.Image, regions []types.FootRegion) []image.Image {
	out := make([]image.Image, 0, len(regions))
	for _, r := range regions {
		rect := r.Box.Rect().Add(img.Bounds().Min).Intersect(img.Bounds())
		if rect.Empty() {
			continue
		}
		out = append(out, imaging.Crop(img, rect))
	}
	return out
}

// Save writes img to path using the configured format and quality
func (p *Processor) Save(img image.Image, path string) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return p.SaveImage(img, path, p.format(), p.config.Quality, p.config.Lossless)
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}
