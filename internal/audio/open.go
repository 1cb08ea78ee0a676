package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/spectile/internal/spectrum"
)

// Load decodes path. WAV files are parsed directly; other files, and WAVs
// in encodings other than 16-bit PCM, go through ffmpeg.
func Load(ctx context.Context, path string) (*PCM, error) {
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		p, err := loadWAV(path)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrUnsupported) && !errors.Is(err, ErrNotWAV) {
			return nil, err
		}
	}
	return DecodeFile(ctx, path, DefaultDecodeFormat)
}

func loadWAV(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer f.Close()

	p, err := ReadWAV(f)
	if err != nil {
		return nil, fmt.Errorf("audio: read %s: %w", path, err)
	}
	return p, nil
}

// Source decodes a file once and hands out independent streams over it.
//
// Thread safety: Source is safe for concurrent use.
type Source struct {
	path string
	load func(context.Context, string) (*PCM, error)

	mu  sync.Mutex
	pcm *PCM
}

// NewSource creates a lazily decoded source for path.
func NewSource(path string) *Source {
	return &Source{path: path, load: Load}
}

// FromPCM wraps an already decoded stream.
func FromPCM(p *PCM) *Source {
	return &Source{pcm: p}
}

// Open returns a new stream over the decoded samples, decoding on first use.
// A failed decode is not remembered, so the next Open retries.
func (s *Source) Open() (spectrum.Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pcm == nil {
		p, err := s.load(context.Background(), s.path)
		if err != nil {
			return nil, err
		}
		s.pcm = p
	}
	return s.pcm.Clone(), nil
}
