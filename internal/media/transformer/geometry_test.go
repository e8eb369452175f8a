package transformer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amora-app/media-pipeline/internal/media/transformer"
)

func TestFitScale(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		maxSide int
		want    float64
	}{
		{name: "landscape above bound", w: 4000, h: 3000, maxSide: 1200, want: 0.3},
		{name: "portrait above bound", w: 600, h: 1200, maxSide: 300, want: 0.25},
		{name: "exactly at bound", w: 1200, h: 800, maxSide: 1200, want: 1},
		{name: "small image never upscaled", w: 100, h: 80, maxSide: 300, want: 1},
		{name: "degenerate", w: 0, h: 0, maxSide: 300, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transformer.FitScale(tt.w, tt.h, tt.maxSide)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestCoverScale(t *testing.T) {
	assert.InDelta(t, 50.0/3000.0, transformer.CoverScale(4000, 3000, 50), 1e-9)
	assert.InDelta(t, 50.0/400.0, transformer.CoverScale(400, 1000, 50), 1e-9)
	assert.InDelta(t, 2.5, transformer.CoverScale(20, 40, 50), 1e-9)
	assert.Equal(t, 1.0, transformer.CoverScale(0, 10, 50))
}

func TestCenterCrop(t *testing.T) {
	left, top, w, h := transformer.CenterCrop(67, 50, 50)
	assert.Equal(t, []int{8, 0, 50, 50}, []int{left, top, w, h})

	left, top, w, h = transformer.CenterCrop(50, 125, 50)
	assert.Equal(t, []int{0, 37, 50, 50}, []int{left, top, w, h})

	left, top, w, h = transformer.CenterCrop(49, 60, 50)
	assert.Equal(t, []int{0, 5, 49, 50}, []int{left, top, w, h})
}
