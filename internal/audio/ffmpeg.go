package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
)

// DefaultDecodeFormat is the output format requested from ffmpeg.
var DefaultDecodeFormat = Format{SampleRate: 44100, Channels: 2}

// ffmpegPath is the decoder binary; tests override it.
var ffmpegPath = "ffmpeg"

// DecodeFile runs ffmpeg to decode any supported audio file to s16le PCM.
func DecodeFile(ctx context.Context, path string, f Format) (*PCM, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-loglevel", "error",
		"pipe:1",
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("audio: ffmpeg decode %s: %w", path, err)
	}

	return NewPCM(decodeS16LE(out), f)
}

// decodeS16LE converts raw little-endian output to samples, dropping an odd
// trailing byte.
func decodeS16LE(raw []byte) []int16 {
	samples := make([]int16, len(raw)/bytesPerSample)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2:])) //nolint:gosec // two's complement reinterpretation
	}
	return samples
}
