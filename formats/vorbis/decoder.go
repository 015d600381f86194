// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

// oggSeeker is the positioning surface of oggvorbis.Reader. It only works
// when the reader was built on an io.Seeker.
type oggSeeker interface {
	Length() int64
	SetPosition(pos int64) error
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	seekable   bool
	frameBuf   []float32 // buffer for reading frames from decoder
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.frameBuf) }

func (s *source) Frames() int64 {
	sk, ok := s.dec.(oggSeeker)
	if !ok || !s.seekable {
		return -1
	}
	return sk.Length()
}

func (s *source) SeekFrame(frame int64) error {
	if frame < 0 {
		return audio.ErrNegativeFrame
	}
	sk, ok := s.dec.(oggSeeker)
	if !ok || !s.seekable {
		return audio.ErrNotSeekable
	}

	if err := sk.SetPosition(min(frame, sk.Length())); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	// oggvorbis.Reader.Read() returns the number of samples read, always a
	// whole number of frames
	framesRequested := len(dst) / s.channels
	if framesRequested == 0 {
		return 0, audio.ErrInvalidDstSize
	}

	if cap(s.frameBuf) < framesRequested*s.channels {
		s.frameBuf = make([]float32, framesRequested*s.channels)
	}
	s.frameBuf = s.frameBuf[:framesRequested*s.channels]

	n, err := s.dec.Read(s.frameBuf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	copy(dst, s.frameBuf[:n])
	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	_, seekable := r.(io.Seeker)

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		seekable:   seekable,
		frameBuf:   make([]float32, 4096),
	}, nil
}
