// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize    = errors.New("dst size must be multiple of channels")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNotSeekable       = errors.New("source is not seekable")
	ErrNoChannels        = errors.New("source reports no channels")
	ErrNegativeFrame     = errors.New("frame position is negative")
)
