// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audstream/audio"
)

// pcmReader is the part of aiff.Decoder the source reads through
type pcmReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	frames     int64
	scale      float32 // 1 / full scale of the sample depth
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

// Frames returns the sample frame count announced by the COMM chunk.
func (s *source) Frames() int64 { return s.frames }

func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{
			Data:   make([]int, len(dst)),
			Format: s.dec.Format(),
		}
	} else {
		s.intBuf.Data = s.intBuf.Data[:len(dst)]
	}

	n, err := s.dec.PCMBuffer(s.intBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v) * s.scale
	}

	// A short read without an error only happens at the end of the SSND chunk
	if n < len(dst) && err == nil {
		return n, io.EOF
	}

	return n, err
}

// scaleFor returns the reciprocal of the full scale value of a signed
// sample of the given depth, or 0 when the depth is not supported.
func scaleFor(bitDepth int) float32 {
	switch bitDepth {
	case 8, 16, 24, 32:
		return 1 / float32(uint64(1)<<(bitDepth-1))
	}
	return 0
}

type Decoder struct{}

// Decode reads the COMM chunk and positions the decoder on the sound data.
// 8, 16, 24 and 32 bit integer PCM is supported.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	scale := scaleFor(int(dec.BitDepth))
	if scale == 0 {
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}
	if format.NumChannels <= 0 {
		return nil, audio.ErrNoChannels
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		frames:     int64(dec.NumSampleFrames),
		scale:      scale,
	}, nil
}
