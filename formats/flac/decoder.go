// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/audstream/audio"
)

// frameParser is the part of *flac.Stream the source reads through.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

// frameSeeker is implemented by streams opened with flac.NewSeek.
type frameSeeker interface {
	Seek(sampleNum uint64) (uint64, error)
}

type source struct {
	stream     frameParser
	sampleRate int
	channels   int
	frames     int64

	cur    *frame.Frame
	offset int // next sample index inside cur
	scale  float32
	eof    bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

// Frames returns the total inter-channel sample count from StreamInfo, or -1
// when the encoder left it unset.
func (s *source) Frames() int64 { return s.frames }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// next parses frames until one with samples is available.
func (s *source) next() error {
	for {
		f, err := s.stream.ParseNext()
		if err != nil {
			return err
		}
		if len(f.Subframes) == 0 || len(f.Subframes[0].Samples) == 0 {
			continue
		}
		if f.BitsPerSample == 0 || f.BitsPerSample > 32 {
			return ErrInvalidBitDepth
		}

		s.cur = f
		s.offset = 0
		s.scale = 1 / float32(int64(1)<<(f.BitsPerSample-1))
		return nil
	}
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) < s.channels {
		return 0, audio.ErrInvalidDstSize
	}

	if s.eof {
		return 0, io.EOF
	}

	written := 0
	for written+s.channels <= len(dst) {
		if s.cur == nil || s.offset >= len(s.cur.Subframes[0].Samples) {
			if err := s.next(); err != nil {
				s.cur = nil
				if err == io.EOF {
					s.eof = true
					if written > 0 {
						return written, nil
					}
					return 0, io.EOF
				}
				return written, fmt.Errorf("%w", err)
			}
		}

		avail := len(s.cur.Subframes[0].Samples) - s.offset
		want := min(avail, (len(dst)-written)/s.channels)
		for i := range want {
			for c := range s.channels {
				sub := s.cur.Subframes[min(c, len(s.cur.Subframes)-1)]
				dst[written+c] = float32(sub.Samples[s.offset+i]) * s.scale
			}
			written += s.channels
		}
		s.offset += want
	}

	return written, nil
}

// SeekFrame positions the stream on target. The underlying stream lands on
// the start of the FLAC frame containing it, so the remainder is skipped
// inside that frame.
func (s *source) SeekFrame(target int64) error {
	seeker, ok := s.stream.(frameSeeker)
	if !ok {
		return audio.ErrNotSeekable
	}
	if target < 0 {
		return audio.ErrNegativeFrame
	}

	s.cur = nil
	s.eof = false
	if s.frames >= 0 && target >= s.frames {
		s.eof = true
		return nil
	}

	start, err := seeker.Seek(uint64(target))
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := s.next(); err != nil {
		if err == io.EOF {
			s.eof = true
			return nil
		}
		return fmt.Errorf("%w", err)
	}
	s.offset = min(int(uint64(target)-start), len(s.cur.Subframes[0].Samples))
	return nil
}

// Decoder decodes FLAC streams of any bit depth. Seeking is available when
// the reader passed to Decode is an io.ReadSeeker.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	var (
		stream *flac.Stream
		err    error
	)
	if rs, ok := r.(io.ReadSeeker); ok {
		stream, err = flac.NewSeek(rs)
	} else {
		stream, err = flac.New(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	src, err := newSource(stream, stream.Info)
	if err != nil {
		stream.Close()
		return nil, err
	}
	return src, nil
}

func newSource(stream frameParser, info *meta.StreamInfo) (*source, error) {
	if info == nil {
		return nil, ErrNoStreamInfo
	}
	if info.NChannels == 0 {
		return nil, audio.ErrNoChannels
	}

	frames := int64(-1)
	if info.NSamples > 0 {
		frames = int64(info.NSamples)
	}

	return &source{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		frames:     frames,
	}, nil
}
