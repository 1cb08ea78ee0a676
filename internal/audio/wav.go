package audio

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV parsing errors.
var (
	// ErrNotWAV is returned when the input is not a readable RIFF/WAVE stream.
	ErrNotWAV = errors.New("audio: not a WAV stream")

	// ErrUnsupported is returned for WAV encodings other than 16-bit PCM.
	ErrUnsupported = errors.New("audio: unsupported WAV encoding")
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
	wavBitDepth         = 16
)

// ReadWAV decodes a 16-bit PCM WAV stream.
func ReadWAV(r io.ReadSeeker) (*PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWAV, err)
		}
		return nil, ErrNotWAV
	}

	if (d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible) || d.BitDepth != wavBitDepth {
		return nil, fmt.Errorf("%w: tag %#x, %d bits", ErrUnsupported, d.WavAudioFormat, d.BitDepth)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: wav: data chunk: %w", err)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v) //nolint:gosec // 16-bit source
	}
	return NewPCM(samples, Format{SampleRate: int(d.SampleRate), Channels: int(d.NumChans)})
}

// WriteWAV encodes interleaved samples as a 16-bit PCM WAV stream.
// The header sizes are patched on completion, hence the seeker.
func WriteWAV(w io.WriteSeeker, samples []int16, f Format) error {
	if err := f.Validate(); err != nil {
		return err
	}

	enc := wav.NewEncoder(w, f.SampleRate, wavBitDepth, f.Channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: f.Channels,
			SampleRate:  f.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: wavBitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	// Write always emits the header, even for an empty buffer.
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("audio: wav: write data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: wav: finish: %w", err)
	}
	return nil
}
