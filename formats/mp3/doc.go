// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files. The
// decoder always produces interleaved stereo float32 samples normalized to
// [-1.0, 1.0] at the sample rate of the file.
//
//	file, _ := os.Open("audio.mp3")
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// When the input is an io.Seeker the source reports its length through
// audio.FrameCounter and repositions through audio.FrameSeeker. go-mp3
// builds its frame index lazily, so the first Frames call on a long file
// scans it once.
//
// MP3 writing is not supported.
package mp3
