package transformer

import "math"

// FitScale returns the factor that bounds the longer side of a w×h image to maxSide.
// It never upscales, so the result is at most 1.
func FitScale(w, h, maxSide int) float64 {
	longEdge := max(w, h)
	if longEdge <= maxSide || longEdge <= 0 {
		return 1
	}
	return float64(maxSide) / float64(longEdge)
}

// CoverScale returns the factor that makes a w×h image cover a size×size square
func CoverScale(w, h, size int) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return math.Max(float64(size)/float64(w), float64(size)/float64(h))
}

// CenterCrop returns the centered size×size area of a w×h image, clamped to the image bounds
func CenterCrop(w, h, size int) (left, top, width, height int) {
	width = min(size, w)
	height = min(size, h)
	left = (w - width) / 2
	top = (h - height) / 2
	return left, top, width, height
}
