// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives the stream engine reads
// files through.
//
// # Source Interface
//
// Every format decoder produces a Source of interleaved float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources may also implement FrameCounter, when the container announces its
// length, and FrameSeeker, when the decoder can reposition without decoding
// from the start.
//
// # Format Registry
//
// Decoders are registered per file extension:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	registry.Register("flac", flac.Decoder{})
//
//	dec, err := registry.ForPath("loops/drums.wav")
//
// Registry methods are safe for concurrent use.
//
// # Stereo Folding
//
// StereoFolder turns any channel layout into separate left and right
// buffers. Mono is duplicated, stereo passes through and wider layouts
// average even channels into left and odd channels into right.
//
// # Random Access
//
// FileReader combines the registry, a Source and a StereoFolder into a
// reader of arbitrary frame ranges:
//
//	fr, err := audio.OpenFile(registry, "loops/drums.wav")
//	if err != nil {
//	    // Handle error
//	}
//	defer fr.Close()
//
//	l := make([]float32, 4096)
//	r := make([]float32, 4096)
//	n, err := fr.ReadRange(ctx, 96000, l, r)
//
// Contiguous ranges continue decoding where the last call stopped. Other
// ranges seek through FrameSeeker when possible, skip forward otherwise and
// reopen the file to go backwards.
package audio
