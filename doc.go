// SPDX-License-Identifier: EPL-2.0

// Package audstream streams audio files of any length into a real-time audio
// callback.
//
// The engine lives in the stream subpackage. This package wires it to every
// decoder the module ships and adds an offline renderer that drives an
// engine with a simulated transport.
//
// # Supported Formats
//
//   - WAV (PCM 16-bit) via formats/wav
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - AIFF via formats/aiff
//   - FLAC via formats/flac
//
// # Quick Start
//
//	eng, err := audstream.NewEngine(stream.Config{SampleRate: 48000, Loop: true})
//	if err != nil {
//	    // Handle error
//	}
//	defer eng.Close()
//
//	if err := eng.LoadFile("drums.flac"); err != nil {
//	    // Handle error
//	}
//
//	// From the audio callback, once per block:
//	eng.Process(stream.Transport{Frame: pos, Playing: playing}, left, right)
//
// Process never blocks, allocates or reads the file; a background worker
// decodes ahead of the playhead and the callback plays silence whenever the
// requested frames are not available yet.
//
// # Offline Rendering
//
// Render plays an engine into memory, which is what the audstream command
// uses to turn a file into a WAV of what a host would have heard:
//
//	left, right, err := audstream.Render(ctx, eng, audstream.RenderOptions{
//	    BlockSize: 256,
//	    Frames:    10 * 48000,
//	    Speed:     1,
//	})
package audstream
