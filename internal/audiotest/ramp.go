// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audstream/formats/wav"
)

// RampPeriod is the number of distinct frame positions a ramp encodes before
// it repeats. It fits 16-bit PCM exactly.
const RampPeriod = 16384

// Ramp returns the sample for frame on channel. Left carries
// (frame%RampPeriod+1)/32768 and right its negation, so a value of zero
// always means silence and RampFrame inverts it.
func Ramp(frame int, channel int) float32 {
	v := float32(frame%RampPeriod+1) / 32768
	if channel%2 == 1 {
		return -v
	}
	return v
}

// RampFrame recovers the frame index encoded by a left ramp sample, or -1
// for silence.
func RampFrame(v float32) int {
	if v == 0 {
		return -1
	}
	return int(v*32768+0.5) - 1
}

// WriteRampWAV writes a 16-bit WAV of frames ramp frames into the test temp
// dir and returns its path.
func WriteRampWAV(tb testing.TB, name string, sampleRate, channels, frames int) string {
	tb.Helper()

	samples := make([]int16, frames*channels)
	for f := range frames {
		for c := range channels {
			samples[f*channels+c] = int16(Ramp(f, c) * 32768)
		}
	}

	path := filepath.Join(tb.TempDir(), name)
	file, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create fixture: %v", err)
	}
	defer file.Close()

	if err := wav.WriteWAV16(file, sampleRate, channels, samples); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}
