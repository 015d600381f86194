// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ik5/audstream/audio"
)

// mockStream hands out prepared frames and emulates block-aligned seeking.
type mockStream struct {
	frames []*frame.Frame
	idx    int
	closed bool
}

func (m *mockStream) ParseNext() (*frame.Frame, error) {
	if m.idx >= len(m.frames) {
		return nil, io.EOF
	}
	f := m.frames[m.idx]
	m.idx++
	return f, nil
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

type seekableStream struct {
	mockStream
}

func (m *seekableStream) Seek(sampleNum uint64) (uint64, error) {
	var start uint64
	for i, f := range m.frames {
		n := uint64(len(f.Subframes[0].Samples))
		if sampleNum < start+n {
			m.idx = i
			return start, nil
		}
		start += n
	}
	return 0, io.EOF
}

// makeFrames splits a stereo ramp into FLAC frames of blockSize samples.
// Left carries the frame index and right its negation.
func makeFrames(total, blockSize int, bits uint8) []*frame.Frame {
	var out []*frame.Frame
	for start := 0; start < total; start += blockSize {
		n := min(blockSize, total-start)
		l := make([]int32, n)
		r := make([]int32, n)
		for i := range n {
			l[i] = int32(start + i)
			r[i] = -int32(start + i)
		}
		out = append(out, &frame.Frame{
			Header: frame.Header{BitsPerSample: bits},
			Subframes: []*frame.Subframe{
				{Samples: l},
				{Samples: r},
			},
		})
	}
	return out
}

func newTestSource(t *testing.T, stream frameParser, total int) *source {
	t.Helper()

	src, err := newSource(stream, &meta.StreamInfo{SampleRate: 48000, NChannels: 2, BitsPerSample: 16, NSamples: uint64(total)})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	return src
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader([]byte("not a flac stream"))); err == nil {
		t.Error("Decode() error = nil, want error")
	}
}

func TestNewSource_Validation(t *testing.T) {
	t.Parallel()

	if _, err := newSource(&mockStream{}, nil); !errors.Is(err, ErrNoStreamInfo) {
		t.Errorf("newSource(nil info) error = %v, want ErrNoStreamInfo", err)
	}
	if _, err := newSource(&mockStream{}, &meta.StreamInfo{SampleRate: 44100}); !errors.Is(err, audio.ErrNoChannels) {
		t.Errorf("newSource(0 channels) error = %v, want audio.ErrNoChannels", err)
	}

	src, err := newSource(&mockStream{}, &meta.StreamInfo{SampleRate: 44100, NChannels: 1})
	if err != nil {
		t.Fatalf("newSource() error = %v", err)
	}
	if got := src.Frames(); got != -1 {
		t.Errorf("Frames() with unset NSamples = %d, want -1", got)
	}
}

func TestSource_ReadSamplesAcrossFrames(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: makeFrames(10, 4, 16)}
	src := newTestSource(t, stream, 10)

	if src.Frames() != 10 || src.Channels() != 2 || src.SampleRate() != 48000 {
		t.Fatalf("format = %d frames, %d ch @ %d Hz", src.Frames(), src.Channels(), src.SampleRate())
	}

	dst := make([]float32, 14)
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 14 {
		t.Fatalf("ReadSamples() n = %d, want 14", n)
	}

	for i := range 7 {
		if want := float32(i) / 32768; dst[2*i] != want {
			t.Errorf("left[%d] = %v, want %v", i, dst[2*i], want)
		}
		if want := -float32(i) / 32768; dst[2*i+1] != want {
			t.Errorf("right[%d] = %v, want %v", i, dst[2*i+1], want)
		}
	}

	n, err = src.ReadSamples(dst)
	if err != nil || n != 6 {
		t.Fatalf("ReadSamples() tail = (%d, %v), want (6, nil)", n, err)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, io.EOF)", n, err)
	}

	if err := src.Close(); err != nil || !stream.closed {
		t.Errorf("Close() = %v, closed = %v", err, stream.closed)
	}
}

func TestSource_ReadSamplesDstTooSmall(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, &mockStream{frames: makeFrames(4, 4, 16)}, 4)
	if _, err := src.ReadSamples(make([]float32, 1)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want audio.ErrInvalidDstSize", err)
	}
}

func TestSource_InvalidBitDepth(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, &mockStream{frames: makeFrames(4, 4, 0)}, 4)
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidBitDepth", err)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, &seekableStream{mockStream{frames: makeFrames(20, 8, 16)}}, 20)

	tests := []struct {
		name   string
		target int64
		want   int32
	}{
		{"frame start", 8, 8},
		{"inside frame", 11, 11},
		{"backwards", 2, 2},
		{"last block", 19, 19},
	}

	for _, tt := range tests {
		if err := src.SeekFrame(tt.target); err != nil {
			t.Fatalf("%s: SeekFrame(%d) error = %v", tt.name, tt.target, err)
		}
		dst := make([]float32, 2)
		if _, err := src.ReadSamples(dst); err != nil {
			t.Fatalf("%s: ReadSamples() error = %v", tt.name, err)
		}
		if got := int32(dst[0] * 32768); got != tt.want {
			t.Errorf("%s: frame after seek = %d, want %d", tt.name, got, tt.want)
		}
	}

	if err := src.SeekFrame(20); err != nil {
		t.Fatalf("SeekFrame(end) error = %v", err)
	}
	if n, err := src.ReadSamples(make([]float32, 2)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() at end = (%d, %v), want (0, io.EOF)", n, err)
	}

	if err := src.SeekFrame(-1); !errors.Is(err, audio.ErrNegativeFrame) {
		t.Errorf("SeekFrame(-1) error = %v, want audio.ErrNegativeFrame", err)
	}
}

func TestSource_SeekFrameNotSeekable(t *testing.T) {
	t.Parallel()

	src := newTestSource(t, &mockStream{frames: makeFrames(4, 4, 16)}, 4)
	if err := src.SeekFrame(1); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame() error = %v, want audio.ErrNotSeekable", err)
	}
}
