// SPDX-License-Identifier: EPL-2.0

// Package stream plays audio files of any length from a real-time callback.
//
// Three parts cooperate:
//
//   - Pool is a fixed two-channel window of samples starting at an absolute
//     transport frame.
//   - Worker owns the decoder and, on a background goroutine, decodes the
//     window that starts at the playhead into a private block.
//   - Engine.Process, called once per audio block, publishes the latest
//     block into the pool, copies the requested frames out and zeroes the
//     slots it consumed.
//
// The handoff is a single atomic pointer. The worker writes a block
// completely and swaps it into the ready slot; Process swaps it out before
// looking at its start frame or samples. An unread block is replaced by a
// newer one. Process never locks, allocates, logs or touches the decoder;
// when the requested frames are not in the pool it outputs silence and asks
// the worker for a refill.
//
// Typical use:
//
//	eng, err := stream.NewEngine(stream.Config{
//	    SampleRate: 48000,
//	    Decoder:    stream.NewFileDecoder(registry),
//	})
//	if err != nil {
//	    // Handle error
//	}
//	defer eng.Close()
//
//	if err := eng.LoadFile("loop.wav"); err != nil {
//	    // Handle error
//	}
//
//	// In the audio callback:
//	eng.Process(stream.Transport{Frame: pos, Playing: true}, left, right)
package stream
