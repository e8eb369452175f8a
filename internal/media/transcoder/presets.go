package transcoder

import "strconv"

// VideoPreset describes the normalized MP4 rendition
type VideoPreset struct {
	VideoCodec    string
	VideoBitrate  string
	PixelFormat   string
	AudioCodec    string
	AudioBitrate  string
	AudioChannels int
	Threads       int
}

// AudioPreset describes the normalized Ogg/Vorbis rendition
type AudioPreset struct {
	AudioCodec   string
	AudioBitrate string
	Threads      int
}

// DefaultVideoPreset returns H.264 + AAC in an MP4 container with the moov atom up front
func DefaultVideoPreset(threads int) VideoPreset {
	return VideoPreset{
		VideoCodec:    "libx264",
		VideoBitrate:  "1000k",
		PixelFormat:   "yuv420p",
		AudioCodec:    "aac",
		AudioBitrate:  "128k",
		AudioChannels: 2,
		Threads:       threads,
	}
}

// DefaultAudioPreset returns Vorbis at 96 kbit/s
func DefaultAudioPreset(threads int) AudioPreset {
	return AudioPreset{
		AudioCodec:   "libvorbis",
		AudioBitrate: "96k",
		Threads:      threads,
	}
}

func baseArgs(input string) []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", input}
}

func threadArgs(threads int) []string {
	if threads <= 0 {
		return nil
	}
	return []string{"-threads", strconv.Itoa(threads)}
}

// Args returns the ffmpeg arguments converting input to output
func (p VideoPreset) Args(input, output string) []string {
	args := baseArgs(input)
	args = append(args,
		"-c:v", p.VideoCodec,
		"-b:v", p.VideoBitrate,
		"-pix_fmt", p.PixelFormat,
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
		"-ac", strconv.Itoa(p.AudioChannels),
		"-movflags", "+faststart",
	)
	args = append(args, threadArgs(p.Threads)...)
	return append(args, "-f", "mp4", output)
}

// Args returns the ffmpeg arguments converting input to output
func (p AudioPreset) Args(input, output string) []string {
	args := baseArgs(input)
	args = append(args,
		"-vn",
		"-c:a", p.AudioCodec,
		"-b:a", p.AudioBitrate,
	)
	args = append(args, threadArgs(p.Threads)...)
	return append(args, "-f", "ogg", output)
}

// FrameArgs returns the ffmpeg arguments extracting one PNG frame at offset seconds
func FrameArgs(input, output string, offset float64) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", strconv.FormatFloat(offset, 'f', -1, 64),
		"-i", input,
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "png",
		output,
	}
}

// ProbeArgs returns the ffprobe arguments describing input as JSON
func ProbeArgs(input string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	}
}
