package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/amora-app/media-pipeline/internal/adapter"
	"github.com/amora-app/media-pipeline/internal/config"
	"github.com/amora-app/media-pipeline/internal/domain"
	"github.com/amora-app/media-pipeline/internal/logger"
	"github.com/amora-app/media-pipeline/internal/metrics"
)

const (
	opProbe          = "probe"
	opTranscodeVideo = "transcode_video"
	opTranscodeAudio = "transcode_audio"
	opExtractFrame   = "extract_frame"

	// frameOffset is where the representative video frame is taken
	frameOffset = 1.0
)

// Config is an alias to config.TranscoderConfig for convenience
type Config = config.TranscoderConfig

// VideoResult is a normalized MP4 plus what could be learned about the source.
// Probe is nil when probing failed and Frame is nil when frame extraction failed.
type VideoResult struct {
	Data  []byte
	Probe *ProbeResult
	Frame []byte
}

// AudioResult is a normalized Ogg/Vorbis rendition
type AudioResult struct {
	Data            []byte
	DurationSeconds *float64
}

// Transcoder runs ffmpeg and ffprobe over in-memory media
//
//go:generate mockgen -source=transcoder.go -destination=../../mocks/transcoder.go -package=mocks -mock_names=Transcoder=MockTranscoder
type Transcoder interface {
	// Tools resolves ffmpeg and ffprobe, returning domain.ErrToolUnavailable when either is missing
	Tools() (*Tools, error)

	// TranscodeVideo converts data to H.264/AAC MP4 and extracts a PNG frame
	TranscodeVideo(ctx context.Context, data []byte, ext string) (*VideoResult, error)

	// TranscodeAudio converts data to Ogg/Vorbis and probes the source duration
	TranscodeAudio(ctx context.Context, data []byte, ext string) (*AudioResult, error)

	// Probe reads duration and video dimensions from data
	Probe(ctx context.Context, data []byte, ext string) (*ProbeResult, error)

	// Close waits for running invocations and stops the worker pool
	Close() error
}

type ffmpegTranscoder struct {
	config  Config
	pool    pond.Pool
	locator *Locator
	runner  adapter.CommandRunner
	fs      adapter.FileSystem
	json    adapter.JSON
	clock   adapter.Clock
	metrics *metrics.Metrics
}

// NewTranscoder creates a transcoder whose invocations are bounded by cfg.MaxConcurrent
func NewTranscoder(
	cfg Config,
	runner adapter.CommandRunner,
	fileSystem adapter.FileSystem,
	jsonAdapter adapter.JSON,
	clock adapter.Clock,
	m *metrics.Metrics,
) Transcoder {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	return &ffmpegTranscoder{
		config:  cfg,
		pool:    pond.NewPool(cfg.MaxConcurrent),
		locator: NewLocator(runner, cfg.SearchPaths),
		runner:  runner,
		fs:      fileSystem,
		json:    jsonAdapter,
		clock:   clock,
		metrics: m,
	}
}

func (t *ffmpegTranscoder) Tools() (*Tools, error) {
	return t.locator.LocateAll(t.config.FFmpegPath, t.config.FFprobePath)
}

func (t *ffmpegTranscoder) Close() error {
	t.pool.StopAndWait()
	return nil
}

func (t *ffmpegTranscoder) TranscodeVideo(ctx context.Context, data []byte, ext string) (*VideoResult, error) {
	tools, err := t.Tools()
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.withBudget(ctx)
	defer cancel()

	dir, input, cleanup, err := t.prepare(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	probe, err := t.probeFile(ctx, tools, input)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to probe video", zap.Error(err))
		probe = nil
	}

	output := filepath.Join(dir, "output."+domain.FormatMP4)
	preset := DefaultVideoPreset(t.config.Threads)
	if _, err := t.exec(ctx, opTranscodeVideo, tools.FFmpeg, preset.Args(input, output)...); err != nil {
		return nil, err
	}

	out, err := t.readOutput(output)
	if err != nil {
		return nil, err
	}

	offset := frameOffset
	if probe != nil && probe.DurationSeconds != nil && *probe.DurationSeconds < frameOffset {
		offset = 0
	}

	frame, err := t.extractFrame(ctx, tools, input, filepath.Join(dir, "frame.png"), offset)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to extract video frame", zap.Error(err), zap.Float64("offset", offset))
		frame = nil
	}

	return &VideoResult{Data: out, Probe: probe, Frame: frame}, nil
}

func (t *ffmpegTranscoder) TranscodeAudio(ctx context.Context, data []byte, ext string) (*AudioResult, error) {
	tools, err := t.Tools()
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.withBudget(ctx)
	defer cancel()

	dir, input, cleanup, err := t.prepare(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	output := filepath.Join(dir, "output."+domain.FormatOgg)
	preset := DefaultAudioPreset(t.config.Threads)
	if _, err := t.exec(ctx, opTranscodeAudio, tools.FFmpeg, preset.Args(input, output)...); err != nil {
		return nil, err
	}

	out, err := t.readOutput(output)
	if err != nil {
		return nil, err
	}

	result := &AudioResult{Data: out}
	probe, err := t.probeFile(ctx, tools, input)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to probe audio", zap.Error(err))
	} else {
		result.DurationSeconds = probe.DurationSeconds
	}

	return result, nil
}

func (t *ffmpegTranscoder) Probe(ctx context.Context, data []byte, ext string) (*ProbeResult, error) {
	tools, err := t.Tools()
	if err != nil {
		return nil, err
	}

	ctx, cancel := t.withBudget(ctx)
	defer cancel()

	_, input, cleanup, err := t.prepare(ctx, data, ext)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return t.probeFile(ctx, tools, input)
}

// prepare creates a scratch directory holding data as the input file.
// cleanup removes the directory and must always be called when err is nil.
func (t *ffmpegTranscoder) prepare(ctx context.Context, data []byte, ext string) (string, string, func(), error) {
	if len(data) == 0 {
		return "", "", nil, fmt.Errorf("%w: empty media", domain.ErrInvalidInput)
	}

	dir, err := t.fs.MkdirTemp(t.config.ScratchDir, "media-transcode-*")
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}

	cleanup := func() {
		if err := t.fs.RemoveAll(dir); err != nil {
			logger.WarnCtx(ctx, "Failed to remove scratch directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	input := filepath.Join(dir, "input."+safeExt(ext))
	if err := t.fs.WriteFile(input, data, 0o600); err != nil {
		cleanup()
		return "", "", nil, fmt.Errorf("failed to write scratch input: %w", err)
	}

	return dir, input, cleanup, nil
}

func (t *ffmpegTranscoder) probeFile(ctx context.Context, tools *Tools, input string) (*ProbeResult, error) {
	stdout, err := t.exec(ctx, opProbe, tools.FFprobe, ProbeArgs(input)...)
	if err != nil {
		return nil, err
	}
	return ParseProbe(t.json, stdout)
}

func (t *ffmpegTranscoder) extractFrame(ctx context.Context, tools *Tools, input, output string, offset float64) ([]byte, error) {
	if _, err := t.exec(ctx, opExtractFrame, tools.FFmpeg, FrameArgs(input, output, offset)...); err != nil {
		return nil, err
	}
	return t.readOutput(output)
}

func (t *ffmpegTranscoder) readOutput(output string) ([]byte, error) {
	out, err := t.fs.ReadFile(output)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read output: %w", domain.ErrConversionFailed, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty output %s", domain.ErrConversionFailed, filepath.Base(output))
	}
	return out, nil
}

// exec runs one tool invocation inside the worker pool.
// Once the invocation has started, exec does not return before it exits so the scratch directory outlives it.
func (t *ffmpegTranscoder) exec(ctx context.Context, op, name string, args ...string) ([]byte, error) {
	logger.DebugCtx(ctx, "Running transcoder", zap.String("operation", op), zap.String("tool", name), zap.Strings("args", args))

	var (
		mu             sync.Mutex
		started        bool
		abandoned      bool
		stdout, stderr []byte
	)
	begin := t.clock.Now()
	task := t.pool.SubmitErr(func() error {
		mu.Lock()
		if abandoned || ctx.Err() != nil {
			mu.Unlock()
			return ctx.Err()
		}
		started = true
		mu.Unlock()

		var err error
		stdout, stderr, err = t.runner.Run(ctx, name, args...)
		return err
	})

	var err error
	select {
	case <-task.Done():
		err = task.Wait()
	case <-ctx.Done():
		mu.Lock()
		abandoned = true
		running := started
		mu.Unlock()
		if !running {
			t.metrics.ObserveTranscode(op, t.clock.Since(begin))
			return nil, t.contextError(ctx, op)
		}
		// the runner kills the process on cancellation
		err = task.Wait()
	}
	t.metrics.ObserveTranscode(op, t.clock.Since(begin))

	if err != nil {
		if ctx.Err() != nil {
			return nil, t.contextError(ctx, op)
		}
		return nil, fmt.Errorf("%w: %s: %w: %s", domain.ErrConversionFailed, op, err, tail(stderr))
	}

	return stdout, nil
}

// withBudget bounds one public operation, every tool invocation included, by the configured timeout
func (t *ffmpegTranscoder) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.config.Timeout > 0 {
		return context.WithTimeout(ctx, t.config.Timeout)
	}
	return context.WithCancel(ctx)
}

func (t *ffmpegTranscoder) contextError(ctx context.Context, op string) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out after %s", domain.ErrConversionFailed, op, t.config.Timeout)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrConversionFailed, op, ctx.Err())
}

// safeExt keeps alphanumeric extensions only; ffmpeg detects formats from content
func safeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" || strings.IndexFunc(ext, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) >= 0 {
		return "bin"
	}
	return ext
}

// tail returns the last line of tool output for error messages
func tail(stderr []byte) string {
	lines := bytes.Split(bytes.TrimSpace(stderr), []byte("\n"))
	return string(lines[len(lines)-1])
}
