// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files with any channel count, bitrate and sample rate. Samples come out
// interleaved as float32 in [-1.0, 1.0].
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// When Decode is given an io.ReadSeeker the source implements
// audio.FrameCounter and audio.FrameSeeker using the Ogg granule positions,
// which lets the stream engine loop and relocate without re-decoding the
// file from the start.
//
// Vorbis encoding is not supported.
package vorbis
