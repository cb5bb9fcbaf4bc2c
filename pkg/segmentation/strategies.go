package segmentation

import (
	"image"

	"gocv.io/x/gocv"
)

// MaskStrategy turns a grayscale matrix into a binary foot mask (255 = foot).
// The returned Mat is owned by the caller.
type MaskStrategy func(gray gocv.Mat) gocv.Mat

// AdaptiveMask thresholds each pixel against its Gaussian-weighted
// neighbourhood. Copes with uneven lighting across the sole.
func AdaptiveMask(blockSize int, c float32) MaskStrategy {
	return func(gray gocv.Mat) gocv.Mat {
		mask := gocv.NewMat()
		gocv.AdaptiveThreshold(gray, &mask, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, blockSize, c)
		return mask
	}
}

// OtsuMask smooths the image and applies a global Otsu threshold.
// Works best on plain, uniform backgrounds.
func OtsuMask(blurKernel int) MaskStrategy {
	return func(gray gocv.Mat) gocv.Mat {
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

		mask := gocv.NewMat()
		gocv.Threshold(blurred, &mask, 0, 255, gocv.ThresholdBinaryInv+gocv.ThresholdOtsu)
		return mask
	}
}

// EdgeMask runs Canny on the smoothed image and thickens the edges so they
// join up with the threshold masks.
func EdgeMask(blurKernel int, low, high float32, dilateKernel, dilateIterations int) MaskStrategy {
	return func(gray gocv.Mat) gocv.Mat {
		blurred := gocv.NewMat()
		defer blurred.Close()
		gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

		edges := gocv.NewMat()
		gocv.Canny(blurred, &edges, low, high)

		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: dilateKernel, Y: dilateKernel})
		defer kernel.Close()
		for i := 0; i < dilateIterations; i++ {
			gocv.Dilate(edges, &edges, kernel)
		}
		return edges
	}
}

// DefaultStrategies returns the adaptive, Otsu and edge strategies
// parameterised from cfg.
func DefaultStrategies(cfg Config) []MaskStrategy {
	return []MaskStrategy{
		AdaptiveMask(cfg.AdaptiveBlockSize, float32(cfg.AdaptiveC)),
		OtsuMask(cfg.BlurKernel),
		EdgeMask(cfg.BlurKernel, float32(cfg.CannyLow), float32(cfg.CannyHigh), cfg.EdgeDilateKernel, cfg.EdgeDilateIterations),
	}
}

// Union runs every strategy and ORs the masks together. Any strategy that
// marks a pixel as foot wins. Returns an empty Mat when strategies is empty.
func Union(gray gocv.Mat, strategies []MaskStrategy) gocv.Mat {
	combined := gocv.NewMat()
	for i, strategy := range strategies {
		mask := strategy(gray)
		if i == 0 {
			mask.CopyTo(&combined)
		} else {
			gocv.BitwiseOr(combined, mask, &combined)
		}
		mask.Close()
	}
	return combined
}

// Clean closes small gaps and then strips small noise blobs. Iterated
// close is n dilations followed by n erosions, iterated open the reverse.
func Clean(mask gocv.Mat, kernelSize, closeIterations, openIterations int) gocv.Mat {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: kernelSize, Y: kernelSize})
	defer kernel.Close()

	cleaned := mask.Clone()
	for i := 0; i < closeIterations; i++ {
		gocv.Dilate(cleaned, &cleaned, kernel)
	}
	for i := 0; i < closeIterations; i++ {
		gocv.Erode(cleaned, &cleaned, kernel)
	}
	for i := 0; i < openIterations; i++ {
		gocv.Erode(cleaned, &cleaned, kernel)
	}
	for i := 0; i < openIterations; i++ {
		gocv.Dilate(cleaned, &cleaned, kernel)
	}
	return cleaned
}
