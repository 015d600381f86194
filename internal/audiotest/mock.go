// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds sources and fixtures shared by tests.
package audiotest

import (
	"io"
	"math"
)

// MockSource is a test helper that generates audio data for testing.
// It implements audio.Source, audio.FrameCounter and audio.FrameSeeker
// (without importing audio to avoid cycles).
type MockSource struct {
	sampleRate  int
	channels    int
	totalFrames int
	pos         int
	waveform    func(frame int, channel int) float32

	// Unsized hides the length from Frames.
	Unsized bool
	// SeekErr, when set, is returned by SeekFrame.
	SeekErr error

	Seeks  int
	Closed bool
}

// NewMockSource creates a new mock audio source of totalFrames frames.
// waveform generates the sample value for a frame index and channel.
func NewMockSource(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

// NewSilentSource creates a mock source that generates silence (all zeros).
func NewSilentSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalFrames, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalFrames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(frame int, channel int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalFrames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, func(int, int) float32 {
		return value
	})
}

// NewRampSource creates a source whose samples encode their frame index,
// see Ramp.
func NewRampSource(sampleRate, channels, totalFrames int) *MockSource {
	return NewMockSource(sampleRate, channels, totalFrames, Ramp)
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

func (m *MockSource) Frames() int64 {
	if m.Unsized {
		return -1
	}
	return int64(m.totalFrames)
}

func (m *MockSource) SeekFrame(frame int64) error {
	if m.SeekErr != nil {
		return m.SeekErr
	}
	m.Seeks++
	m.pos = min(int(frame), m.totalFrames)
	return nil
}

// Reset rewinds the source to the first frame.
func (m *MockSource) Reset() {
	m.pos = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.pos >= m.totalFrames {
		return 0, io.EOF
	}

	framesToWrite := min(len(dst)/m.channels, m.totalFrames-m.pos)
	for frame := range framesToWrite {
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(m.pos+frame, ch)
		}
	}

	m.pos += framesToWrite
	samplesWritten := framesToWrite * m.channels

	if m.pos >= m.totalFrames {
		return samplesWritten, io.EOF
	}
	return samplesWritten, nil
}
