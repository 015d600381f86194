// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audstream/utils"
)

// WriteWAV16 writes interleaved 16-bit PCM samples as a WAV file.
// The writer must be seekable because the header sizes are patched on close.
func WriteWAV16(w io.WriteSeeker, sampleRate, channels int, samples []int16) error {
	if channels <= 0 {
		return ErrInvalidChannels
	}
	if len(samples)%channels != 0 {
		return ErrInterleaveMismatch
	}

	enc := gowav.NewEncoder(w, sampleRate, 16, channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Data: data,
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: 16,
	}

	// Always write once so the header exists even for empty input
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// WriteStereo writes two float channels in [-1, 1] as a 16-bit stereo WAV
// file. Both channels must have the same length.
func WriteStereo(w io.WriteSeeker, sampleRate int, left, right []float32) error {
	if len(left) != len(right) {
		return ErrInterleaveMismatch
	}

	samples := make([]int16, 2*len(left))
	for i := range left {
		samples[2*i] = utils.Float32ToInt16(left[i])
		samples[2*i+1] = utils.Float32ToInt16(right[i])
	}

	return WriteWAV16(w, sampleRate, 2, samples)
}
