// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrNoStreamInfo    = errors.New("FLAC stream has no StreamInfo")
	ErrInvalidBitDepth = errors.New("FLAC bit depth out of range")
)
