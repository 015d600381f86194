// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/ik5/audstream/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	samples    []int16 // PCM samples (16-bit, stereo interleaved)
	offset     int     // in samples
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	samplesToRead := min(len(buf)/2, len(m.samples)-m.offset)
	for i := range samplesToRead {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], uint16(m.samples[m.offset+i]))
	}
	m.offset += samplesToRead

	if m.offset >= len(m.samples) {
		return samplesToRead * 2, io.EOF
	}
	return samplesToRead * 2, nil
}

// seekableMP3Reader adds the seeking surface of a gomp3.Decoder built on an
// io.ReadSeeker.
type seekableMP3Reader struct {
	mockMP3Reader
}

func (m *seekableMP3Reader) Length() int64 { return int64(len(m.samples) * 2) }

func (m *seekableMP3Reader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("unsupported whence")
	}
	m.offset = int(offset / 2)
	return offset, nil
}

func newTestSource(dec mp3Reader) *source {
	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   2,
		buf:        make([]byte, 8192),
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("This is not MP3 data")},
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	testSamples := []int16{0, 16384, 32767, -16384, -32768, 8192, -8192, 0}
	src := newTestSource(&mockMP3Reader{sampleRate: 8000, samples: testSamples})

	dst := make([]float32, 8)
	n, err := src.ReadSamples(dst)
	if err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 8 {
		t.Fatalf("ReadSamples() n = %d, want 8", n)
	}

	for i, s := range testSamples {
		want := float32(s) / 32768.0
		if math.Abs(float64(dst[i]-want)) > 1e-6 {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want)
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockMP3Reader{sampleRate: 8000, samples: make([]int16, 4)})
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_Frames(t *testing.T) {
	t.Parallel()

	plain := newTestSource(&mockMP3Reader{sampleRate: 44100, samples: make([]int16, 20)})
	if got := plain.Frames(); got != -1 {
		t.Errorf("Frames() without seeker = %d, want -1", got)
	}

	seekable := newTestSource(&seekableMP3Reader{mockMP3Reader{sampleRate: 44100, samples: make([]int16, 20)}})
	if got := seekable.Frames(); got != 10 {
		t.Errorf("Frames() with seeker = %d, want 10", got)
	}
}

func TestSource_SeekFrame(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 0, 20)
	for f := range 10 {
		samples = append(samples, int16(f*100), int16(-f*100))
	}
	src := newTestSource(&seekableMP3Reader{mockMP3Reader{sampleRate: 44100, samples: samples}})

	if err := src.SeekFrame(6); err != nil {
		t.Fatalf("SeekFrame(6) error = %v", err)
	}

	dst := make([]float32, 2)
	if _, err := src.ReadSamples(dst); err != nil && err != io.EOF {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if got := int16(dst[0] * 32768); got != 600 {
		t.Errorf("left after seek = %d, want 600", got)
	}
	if got := int16(dst[1] * 32768); got != -600 {
		t.Errorf("right after seek = %d, want -600", got)
	}

	if err := src.SeekFrame(-1); !errors.Is(err, audio.ErrNegativeFrame) {
		t.Errorf("SeekFrame(-1) error = %v, want audio.ErrNegativeFrame", err)
	}
}

func TestSource_SeekFrame_NotSeekable(t *testing.T) {
	t.Parallel()

	src := newTestSource(&mockMP3Reader{sampleRate: 44100, samples: make([]int16, 4)})
	if err := src.SeekFrame(1); !errors.Is(err, audio.ErrNotSeekable) {
		t.Errorf("SeekFrame() error = %v, want audio.ErrNotSeekable", err)
	}
}

// BenchmarkSource_ReadSamples benchmarks int16 to float32 conversion
func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int16, 44100*2)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	mock := &mockMP3Reader{sampleRate: 44100, samples: samples}
	src := newTestSource(mock)
	dst := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := src.ReadSamples(dst); err == io.EOF {
			mock.offset = 0
		}
	}
}
