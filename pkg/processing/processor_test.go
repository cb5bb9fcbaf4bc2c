package processing

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/menta2k/marma-detector/pkg/types"
)

// createTestImage creates a flat gray test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	return img
}

func marker(x, y int, label types.Label) types.MarkerRegion {
	return types.MarkerRegion{X: x, Y: y, Width: 20, Height: 20, Label: label, Confidence: 0.85}
}

func TestNewProcessor(t *testing.T) {
	p := NewProcessor()
	cfg := p.Config()
	if cfg.Format != "jpg" || cfg.Quality != 90 || cfg.Suffix != "_annotated" || !cfg.Render || cfg.Crops {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestAnnotate(t *testing.T) {
	src := createTestImage(200, 200)
	m := marker(80, 100, types.Kurcha)

	out, err := NewProcessor().Annotate(src, []types.MarkerRegion{m})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}

	if out.Bounds() != src.Bounds() {
		t.Fatalf("annotated bounds %v, want %v", out.Bounds(), src.Bounds())
	}
	// left and right edges of the box
	for _, x := range []int{80, 99} {
		if got := out.NRGBAAt(x, 110); got != color.NRGBA(boxColor) {
			t.Errorf("box edge pixel (%d,110) = %v, want %v", x, got, boxColor)
		}
	}
	if got := out.NRGBAAt(90, 110); got != color.NRGBA(dotColor) {
		t.Errorf("center pixel = %v, want %v", got, dotColor)
	}
	if got := out.NRGBAAt(84, 110); got != (color.NRGBA{128, 128, 128, 255}) {
		t.Errorf("box interior outside the dot changed to %v", got)
	}
	if got := out.NRGBAAt(80, 97); got != color.NRGBA(plateColor) {
		t.Errorf("label plate pixel = %v, want %v", got, plateColor)
	}
	if !hasColor(out, image.Rect(80, 80, 200, 100), color.NRGBA(textColor)) {
		t.Error("label text not drawn on the plate")
	}
	if got := out.NRGBAAt(10, 10); got != (color.NRGBA{128, 128, 128, 255}) {
		t.Errorf("pixel far from markers changed to %v", got)
	}

	// source must be left untouched
	if r, g, b, _ := src.At(90, 110).RGBA(); r>>8 != 128 || g>>8 != 128 || b>>8 != 128 {
		t.Error("Annotate modified its input")
	}
}

func TestAnnotateNoMarkers(t *testing.T) {
	src := createTestImage(40, 30)
	out, err := NewProcessor().Annotate(src, nil)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if hasColor(out, out.Bounds(), color.NRGBA(boxColor)) {
		t.Error("nothing should be drawn without markers")
	}
}

func TestAnnotateMarkerAtEdge(t *testing.T) {
	// label plate above a marker at y=0 falls outside the image
	out, err := NewProcessor().Annotate(createTestImage(50, 50), []types.MarkerRegion{marker(0, 0, types.Kshipra), marker(30, 30, types.Talahridaya)})
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if out.Bounds().Dx() != 50 {
		t.Errorf("unexpected bounds %v", out.Bounds())
	}
	if got := out.NRGBAAt(10, 10); got != color.NRGBA(dotColor) {
		t.Errorf("center of the corner marker = %v, want %v", got, dotColor)
	}
}

func hasColor(img *image.NRGBA, r image.Rectangle, c color.NRGBA) bool {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.NRGBAAt(x, y) == c {
				return true
			}
		}
	}
	return false
}

func TestPaths(t *testing.T) {
	p := NewProcessor()
	if got := p.AnnotatedPath("/data/photos/sole.png"); got != filepath.Join("/data/photos", "sole_annotated.jpg") {
		t.Errorf("AnnotatedPath = %s", got)
	}
	if got := p.CropPath("/data/photos/sole.png", 2); got != filepath.Join("/data/photos", "sole_foot2.jpg") {
		t.Errorf("CropPath = %s", got)
	}

	p = NewProcessorWithConfig(Config{Format: "PNG", Suffix: "_marked", OutputDir: "/out"})
	if got := p.AnnotatedPath("/data/photos/sole.jpeg"); got != filepath.Join("/out", "sole_marked.png") {
		t.Errorf("AnnotatedPath with config = %s", got)
	}

	p = NewProcessorWithConfig(Config{Format: "jpeg", Suffix: "_annotated"})
	if got := p.AnnotatedPath("sole.webp"); got != "sole_annotated.jpg" {
		t.Errorf("jpeg should map to jpg, got %s", got)
	}
}

func TestCropRegions(t *testing.T) {
	img := createTestImage(300, 600)
	regions := []types.FootRegion{
		{Box: types.Box{X: 10, Y: 20, Width: 80, Height: 200}},
		{Box: types.Box{X: 250, Y: 500, Width: 100, Height: 200}}, // clipped
		{Box: types.Box{X: 400, Y: 0, Width: 10, Height: 10}},     // outside
	}

	crops := NewProcessor().CropRegions(img, regions)
	if len(crops) != 2 {
		t.Fatalf("expected 2 crops, got %d", len(crops))
	}
	if crops[0].Bounds().Dx() != 80 || crops[0].Bounds().Dy() != 200 {
		t.Errorf("first crop %v", crops[0].Bounds())
	}
	if crops[1].Bounds().Dx() != 50 || crops[1].Bounds().Dy() != 100 {
		t.Errorf("clipped crop %v", crops[1].Bounds())
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	img := createTestImage(40, 30)

	for _, format := range []string{"jpg", "png", "webp"} {
		t.Run(format, func(t *testing.T) {
			p := NewProcessorWithConfig(Config{Format: format, Quality: 80, Suffix: "_annotated"})
			path := filepath.Join(dir, "nested", format, "out."+format)
			if err := p.Save(img, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			info, err := os.Stat(path)
			if err != nil || info.Size() == 0 {
				t.Fatalf("expected a non-empty file at %s: %v", path, err)
			}
		})
	}

	back, err := imaging.Open(filepath.Join(dir, "nested", "png", "out.png"))
	if err != nil {
		t.Fatalf("reopen png: %v", err)
	}
	if back.Bounds().Dx() != 40 || back.Bounds().Dy() != 30 {
		t.Errorf("reopened size %v", back.Bounds())
	}
}

func BenchmarkAnnotate(b *testing.B) {
	p := NewProcessor()
	img := createTestImage(1200, 1600)
	markers := []types.MarkerRegion{
		marker(100, 200, types.Kshipra),
		marker(120, 900, types.Kurcha),
		marker(130, 700, types.Talahridaya),
		marker(110, 800, types.Kurchashira),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.Annotate(img, markers); err != nil {
			b.Fatal(err)
		}
	}
}
