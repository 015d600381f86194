// SPDX-License-Identifier: EPL-2.0

package stream

import "fmt"

// MaxPoolFrames caps a pool at 2^26 frames per channel (512 MiB of storage).
const MaxPoolFrames = 1 << 26

// Pool is the fixed-size two-channel window the real-time consumer reads.
// Slot i holds the sample for absolute frame StartFrame+i, or zero once it
// has been consumed or was never filled.
//
// A Pool does no locking. It is written only through Worker.TryPublish and
// read only by Engine.Process, both on the real-time goroutine.
type Pool struct {
	StartFrame uint64
	L, R       []float32

	size int
}

// NewPool allocates zeroed storage for frames samples per channel.
func NewPool(frames int) (p *Pool, err error) {
	if frames <= 0 || frames > MaxPoolFrames {
		return nil, fmt.Errorf("%w: %d frames", ErrOutOfMemory, frames)
	}

	defer func() {
		if r := recover(); r != nil {
			p, err = nil, fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()

	buf := make([]float32, 2*frames)
	return &Pool{
		L:    buf[:frames:frames],
		R:    buf[frames:],
		size: frames,
	}, nil
}

// Size is the capacity in frames.
func (p *Pool) Size() int { return p.size }

// Window returns the absolute frame range [start, end) the pool covers.
func (p *Pool) Window() (start, end uint64) {
	return p.StartFrame, p.StartFrame + uint64(p.size)
}

// Clear zeroes every slot and rewinds the window to frame 0.
func (p *Pool) Clear() {
	clear(p.L)
	clear(p.R)
	p.StartFrame = 0
}

// Release drops the storage. The pool must not be in use by any goroutine.
func (p *Pool) Release() {
	p.L, p.R = nil, nil
	p.size = 0
	p.StartFrame = 0
}
