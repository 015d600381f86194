// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrUnsupportedWavChunks  = errors.New("unsupported WAV chunks")
	ErrInvalidChannels       = errors.New("channel count must be positive")
	ErrInterleaveMismatch    = errors.New("sample count is not a multiple of channels")
)
