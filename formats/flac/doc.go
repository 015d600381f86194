// SPDX-License-Identifier: EPL-2.0

// Package flac provides FLAC audio file decoding on top of
// github.com/mewkiz/flac.
//
// Samples of any bit depth are normalized to float32 in [-1.0, 1.0] and
// interleaved per frame. The decoder reports the StreamInfo sample count
// through audio.FrameCounter and, when Decode is given an io.ReadSeeker,
// supports random access through audio.FrameSeeker:
//
//	file, _ := os.Open("loop.flac")
//	src, err := flac.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	if s, ok := src.(audio.FrameSeeker); ok {
//	    _ = s.SeekFrame(48000)
//	}
package flac
