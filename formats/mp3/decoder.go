// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audstream/audio"
)

// bytesPerFrame of go-mp3 output: stereo interleaved int16.
const bytesPerFrame = 4

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// mp3Seeker is the part of gomp3.Decoder that needs a seekable input.
// Length reports a negative value when the input was not seekable.
type mp3Seeker interface {
	Seek(offset int64, whence int) (int64, error)
	Length() int64
}

type source struct {
	dec        mp3Reader
	sampleRate int
	channels   int
	buf        []byte
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / 2 } // return sample capacity, not bytes

func (s *source) Frames() int64 {
	sk, ok := s.dec.(mp3Seeker)
	if !ok {
		return -1
	}
	length := sk.Length()
	if length < 0 {
		return -1
	}
	return length / bytesPerFrame
}

func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrNegativeFrame
	}
	sk, ok := s.dec.(mp3Seeker)
	if !ok || sk.Length() < 0 {
		return audio.ErrNotSeekable
	}

	offset := min(frame*bytesPerFrame, sk.Length())
	if _, err := sk.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// go-mp3 returns 16-bit little-endian PCM bytes (stereo interleaved)
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	samples := n / 2
	for i := range samples {
		low := uint16(s.buf[2*i])
		high := uint16(s.buf[2*i+1])
		val := int16(low | (high << 8))
		dst[i] = float32(val) / 32768.0
	}

	return samples, err
}

type Decoder struct{}

// Decode builds a source from r. Frame counts and seeking are available only
// when r is an io.Seeker, which lets go-mp3 index the frames up front.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	// go-mp3 outputs stereo (2 channels) for every MP3 file
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   2,
		buf:        make([]byte, 8192),
	}, nil
}
