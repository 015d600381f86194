// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff. PCM data of 8, 16, 24 or 32
// bits is normalized to float32 in [-1.0, 1.0]:
//
//	file, _ := os.Open("audio.aiff")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The go-audio decoder wants an io.ReadSeeker, so Decode buffers the whole
// input in memory. The frame count from the COMM chunk is exposed through
// audio.FrameCounter. Sources are not seekable; the stream engine reaches
// earlier frames by reopening the file.
package aiff
