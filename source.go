package spectile

import "github.com/gogpu/spectile/internal/audio"

// OpenFile returns an Opener decoding path on first use. WAV files in
// 16-bit PCM are parsed directly; anything else is decoded with ffmpeg.
// All streams share one decoded copy of the samples. A failed decode is
// retried on the next open.
func OpenFile(path string) Opener {
	return audio.NewSource(path).Open
}

// OpenPCM returns an Opener over interleaved 16-bit samples.
func OpenPCM(samples []int16, sampleRate, channels int) (Opener, error) {
	p, err := audio.NewPCM(samples, audio.Format{SampleRate: sampleRate, Channels: channels})
	if err != nil {
		return nil, err
	}
	return audio.FromPCM(p).Open, nil
}
