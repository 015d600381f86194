// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV audio file decoding and encoding.
//
// The decoder reads PCM 16-bit RIFF files with any channel count and sample
// rate. It walks the chunk list, skipping LIST, fact and other metadata
// chunks, and stops reading at the end of the data chunk. Encoding goes
// through github.com/go-audio/wav.
//
// # Decoding WAV Files
//
//	file, _ := os.Open("audio.wav")
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The returned source also implements audio.FrameCounter and, when the
// reader is an io.Seeker, audio.FrameSeeker:
//
//	if s, ok := source.(audio.FrameSeeker); ok {
//	    err = s.SeekFrame(44100) // one second in
//	}
//
// # Writing WAV Files
//
//	file, _ := os.Create("output.wav")
//	err := wav.WriteWAV16(file, 8000, 1, []int16{100, -100, 200, -200})
//
// WriteStereo takes separate float channels, which is the shape the stream
// engine renders:
//
//	err = wav.WriteStereo(file, 48000, left, right)
//
// # Errors
//
//   - ErrNotWavFile: the input has no RIFF/WAVE header
//   - ErrOnlyPCM16bitSupported: the fmt chunk is not 16-bit PCM
//   - ErrUnsupportedWavLayout: malformed or out-of-order fmt chunk
//   - ErrUnsupportedWavChunks: no data chunk was found
package wav
