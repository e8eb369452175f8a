package transcoder

import (
	"fmt"
	"strconv"

	"github.com/amora-app/media-pipeline/internal/adapter"
)

// ProbeResult is the stream metadata of a media file.
// Fields are nil when the container does not report them.
type ProbeResult struct {
	DurationSeconds *float64
	Width           *int
	Height          *int
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// ParseProbe decodes ffprobe JSON output.
// Duration comes from the container, or from the first stream reporting one.
// Dimensions come from the first video stream.
func ParseProbe(jsonAdapter adapter.JSON, data []byte) (*ProbeResult, error) {
	var out ffprobeOutput
	if err := jsonAdapter.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	result.DurationSeconds = parseDuration(out.Format.Duration)

	for _, stream := range out.Streams {
		if result.DurationSeconds == nil {
			result.DurationSeconds = parseDuration(stream.Duration)
		}
		if stream.CodecType == "video" && result.Width == nil && stream.Width > 0 && stream.Height > 0 {
			width, height := stream.Width, stream.Height
			result.Width = &width
			result.Height = &height
		}
	}

	return result, nil
}

func parseDuration(s string) *float64 {
	if s == "" || s == "N/A" {
		return nil
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil || d < 0 {
		return nil
	}
	return &d
}
