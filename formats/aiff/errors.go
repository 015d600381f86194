// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile           = errors.New("not an AIFF file")
	ErrUnsupportedBitDepth   = errors.New("unsupported AIFF sample depth")
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
