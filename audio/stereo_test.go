// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"testing"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/audiotest"
)

func TestStereoFolder_Layouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		waveform func(frame, ch int) float32
		wantL    float32
		wantR    float32
	}{
		{"mono", 1, func(int, int) float32 { return 0.5 }, 0.5, 0.5},
		{"stereo", 2, func(_, ch int) float32 { return []float32{0.25, -0.25}[ch] }, 0.25, -0.25},
		{"three channels", 3, func(_, ch int) float32 { return []float32{0.2, 0.6, 0.4}[ch] }, 0.3, 0.6},
		{"quad", 4, func(_, ch int) float32 { return []float32{0.1, 0.2, 0.3, 0.4}[ch] }, 0.2, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			folder := audio.NewStereoFolder(audiotest.NewMockSource(44100, tt.channels, 8, tt.waveform))
			if folder.Channels() != 2 || folder.SampleRate() != 44100 {
				t.Fatalf("folder format = %d ch @ %d Hz", folder.Channels(), folder.SampleRate())
			}

			l := make([]float32, 8)
			r := make([]float32, 8)
			n, err := folder.ReadFrames(l, r)
			if err != nil && !errors.Is(err, io.EOF) {
				t.Fatalf("ReadFrames() error = %v", err)
			}
			if n != 8 {
				t.Fatalf("ReadFrames() n = %d, want 8", n)
			}

			const eps = 1e-6
			for i := range n {
				if d := l[i] - tt.wantL; d > eps || d < -eps {
					t.Errorf("l[%d] = %v, want %v", i, l[i], tt.wantL)
				}
				if d := r[i] - tt.wantR; d > eps || d < -eps {
					t.Errorf("r[%d] = %v, want %v", i, r[i], tt.wantR)
				}
			}
		})
	}
}

func TestStereoFolder_ShortSource(t *testing.T) {
	t.Parallel()

	folder := audio.NewStereoFolder(audiotest.NewRampSource(48000, 2, 5))

	l := make([]float32, 16)
	r := make([]float32, 16)
	n, err := folder.ReadFrames(l, r[:10])
	if n != 5 || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadFrames() = (%d, %v), want (5, EOF)", n, err)
	}
	for i := range n {
		if got := audiotest.RampFrame(l[i]); got != i {
			t.Errorf("frame %d decoded as %d", i, got)
		}
		if r[i] != -l[i] {
			t.Errorf("r[%d] = %v, want %v", i, r[i], -l[i])
		}
	}

	if n, err := folder.ReadFrames(l, r); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadFrames() after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestStereoFolder_EmptyRequest(t *testing.T) {
	t.Parallel()

	folder := audio.NewStereoFolder(audiotest.NewSilentSource(8000, 1, 4))
	if n, err := folder.ReadFrames(nil, make([]float32, 4)); n != 0 || err != nil {
		t.Errorf("ReadFrames(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestStereoFolder_NoChannels(t *testing.T) {
	t.Parallel()

	folder := audio.NewStereoFolder(audiotest.NewSilentSource(8000, 0, 4))
	if _, err := folder.ReadFrames(make([]float32, 4), make([]float32, 4)); !errors.Is(err, audio.ErrNoChannels) {
		t.Errorf("ReadFrames() error = %v, want ErrNoChannels", err)
	}
}

func TestStereoFolder_Close(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(8000, 1, 4)
	if err := audio.NewStereoFolder(src).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed {
		t.Error("Close() did not close the source")
	}
}

// BenchmarkStereoFolder_Stereo benchmarks splitting interleaved stereo
func BenchmarkStereoFolder_Stereo(b *testing.B) {
	src := audiotest.NewSineSource(48000, 2, 1<<30, 440)
	folder := audio.NewStereoFolder(src)
	l := make([]float32, 512)
	r := make([]float32, 512)

	b.ReportAllocs()

	for b.Loop() {
		if _, err := folder.ReadFrames(l, r); err != nil {
			src.Reset()
		}
	}
}
