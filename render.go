// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ik5/audstream/stream"
)

var ErrInvalidRender = errors.New("invalid render options")

// RenderOptions describe the simulated transport.
type RenderOptions struct {
	// BlockSize is the callback size in frames. Defaults to 256.
	BlockSize int
	// Start is the transport frame playback begins at.
	Start uint64
	// Frames is the number of frames to render.
	Frames uint64
	// RewindAfter, when non-zero, stops the transport after that many
	// rendered frames, rewinds it to frame 0 for one stopped block and plays
	// on from there.
	RewindAfter uint64
	// Speed paces the callback relative to real time. 0 renders as fast as
	// possible.
	Speed float64
	// PrimeTimeout bounds the wait for the first decoded window before the
	// transport starts. 0 skips the wait.
	PrimeTimeout time.Duration
}

// Render drives eng with a simulated transport and returns what Process
// produced for each channel.
func Render(ctx context.Context, eng *stream.Engine, opts RenderOptions) ([]float32, []float32, error) {
	if opts.BlockSize == 0 {
		opts.BlockSize = 256
	}
	if opts.BlockSize < 0 || opts.Speed < 0 {
		return nil, nil, fmt.Errorf("%w: block size %d, speed %v", ErrInvalidRender, opts.BlockSize, opts.Speed)
	}

	if opts.PrimeTimeout > 0 && eng.Loaded() {
		if err := prime(ctx, eng, opts.PrimeTimeout); err != nil {
			return nil, nil, err
		}
	}

	left := make([]float32, opts.Frames)
	right := make([]float32, opts.Frames)

	var blockDur time.Duration
	if opts.Speed > 0 {
		blockDur = time.Duration(float64(opts.BlockSize) / float64(eng.SampleRate()) / opts.Speed * float64(time.Second))
	}

	pos := opts.Start
	rewound := false
	next := time.Now()

	for done := uint64(0); done < opts.Frames; {
		if err := ctx.Err(); err != nil {
			return left[:done], right[:done], err
		}

		if opts.RewindAfter > 0 && !rewound && done >= opts.RewindAfter {
			scratch := make([]float32, opts.BlockSize)
			eng.Process(stream.Transport{Frame: 0, Playing: false}, scratch, scratch)
			pos = 0
			rewound = true
			if err := pace(ctx, &next, blockDur); err != nil {
				return left[:done], right[:done], err
			}
		}

		n := min(uint64(opts.BlockSize), opts.Frames-done)
		if opts.RewindAfter > 0 && !rewound {
			n = min(n, opts.RewindAfter-done)
		}

		eng.Process(stream.Transport{Frame: pos, Playing: true}, left[done:done+n], right[done:done+n])
		pos += n
		done += n

		if err := pace(ctx, &next, blockDur); err != nil {
			return left[:done], right[:done], err
		}
	}

	return left, right, nil
}

// prime waits until the worker has handed off its first window.
func prime(ctx context.Context, eng *stream.Engine, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for eng.Stats().Refills == 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for first window: %w", ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

func pace(ctx context.Context, next *time.Time, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	*next = next.Add(d)
	wait := time.Until(*next)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
