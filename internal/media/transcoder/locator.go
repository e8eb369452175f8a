package transcoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/domain"
)

const (
	FFmpeg  = "ffmpeg"
	FFprobe = "ffprobe"
)

// Tools holds resolved executable paths
type Tools struct {
	FFmpeg  string `json:"ffmpeg"`
	FFprobe string `json:"ffprobe"`
}

// Locator resolves external tools from a configured path, a list of fallback directories and $PATH
type Locator struct {
	runner      adapter.CommandRunner
	searchPaths []string
}

// NewLocator creates a new tool locator
func NewLocator(runner adapter.CommandRunner, searchPaths []string) *Locator {
	return &Locator{runner: runner, searchPaths: searchPaths}
}

// Locate returns the first executable found for name.
// configured is tried first when set. Returns domain.ErrToolUnavailable when nothing resolves.
func (l *Locator) Locate(name, configured string) (string, error) {
	candidates := make([]string, 0, len(l.searchPaths)+2)
	if configured = strings.TrimSpace(configured); configured != "" {
		candidates = append(candidates, configured)
	}
	for _, dir := range l.searchPaths {
		if dir == "" {
			continue
		}
		candidates = append(candidates, filepath.Join(dir, name))
	}
	candidates = append(candidates, name)

	for _, candidate := range candidates {
		if path, err := l.runner.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s not found", domain.ErrToolUnavailable, name)
}

// LocateAll resolves both ffmpeg and ffprobe
func (l *Locator) LocateAll(ffmpegPath, ffprobePath string) (*Tools, error) {
	ffmpeg, err := l.Locate(FFmpeg, ffmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobe, err := l.Locate(FFprobe, ffprobePath)
	if err != nil {
		return nil, err
	}
	return &Tools{FFmpeg: ffmpeg, FFprobe: ffprobe}, nil
}
