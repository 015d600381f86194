// SPDX-License-Identifier: EPL-2.0

// Package utils holds sample format conversions.
package utils

// Float32ToInt16 converts a sample in [-1, 1] to 16-bit PCM. It is the exact
// inverse of the decoders' v/32768 normalization; positive full scale clamps
// to math.MaxInt16.
func Float32ToInt16(x float32) int16 {
	v := x * 32768
	switch {
	case v >= 32767:
		return 32767
	case v <= -32768:
		return -32768
	}
	return int16(v)
}
