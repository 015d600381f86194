// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Transport is the host position for one block.
type Transport struct {
	Frame   uint64
	Playing bool
}

// Engine plays one file through a Pool. Process runs on the real-time
// goroutine; every other method is for control goroutines.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	stats    *counters
	refillAt uint64 // pool offset that triggers a refill request

	ctx    context.Context
	cancel context.CancelFunc

	pool   atomic.Pointer[Pool]
	worker atomic.Pointer[Worker]

	// Owned by the real-time goroutine: the worker the pool was last
	// cleared for.
	rtWorker *Worker

	doProcess atomic.Bool
	lastFrame atomic.Uint64
	loop      atomic.Bool
	maxFrame  atomic.Uint64

	ctlMtx sync.Mutex
	closed bool
}

// NewEngine validates cfg and allocates the pool. It returns an error
// wrapping ErrOutOfMemory when the pool cannot be allocated.
func NewEngine(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := NewPool(cfg.PoolFrames)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:      cfg,
		log:      cfg.Logger,
		stats:    &counters{},
		refillAt: uint64(cfg.RefillThreshold * float64(pool.Size())),
		ctx:      ctx,
		cancel:   cancel,
	}
	e.pool.Store(pool)
	e.loop.Store(cfg.Loop)

	e.log.Debug("stream: engine ready",
		slog.Int("sample_rate", cfg.SampleRate),
		slog.Int("pool_frames", pool.Size()),
		slog.Bool("loop", cfg.Loop),
	)
	return e, nil
}

// Process fills outL and outR for one block. The block length is the
// shorter of the two; any excess in the longer one is zeroed. It never
// blocks, allocates or performs I/O.
func (e *Engine) Process(t Transport, outL, outR []float32) {
	n := min(len(outL), len(outR))
	clear(outL[n:])
	clear(outR[n:])
	outL, outR = outL[:n], outR[:n]

	e.stats.blocks.Add(1)

	pool := e.pool.Load()
	if pool == nil {
		e.silence(outL, outR, t.Frame)
		return
	}

	// The pool is cleared the first time Process sees a different worker,
	// before that worker can publish into it.
	w := e.worker.Load()
	if w != e.rtWorker {
		pool.Clear()
		e.rtWorker = w
	}
	if !e.doProcess.Load() || w == nil {
		e.silence(outL, outR, t.Frame)
		return
	}

	if !t.Playing {
		rewound := t.Frame == 0 && e.lastFrame.Load() > 0
		e.silence(outL, outR, t.Frame)
		if rewound {
			w.RequestRefill()
		}
		return
	}

	w.TryPublish(pool)

	// Stored before any refill request so the worker decodes from this block.
	frame := t.Frame
	e.lastFrame.Store(frame)
	if n == 0 {
		return
	}
	end := frame + uint64(n)
	start, size := pool.StartFrame, uint64(pool.Size())

	switch {
	case e.reachStale(end, start):
		e.stats.stale.Add(1)
		clear(outL)
		clear(outR)
		w.RequestRefill()

	case e.reachEOF(frame):
		e.stats.eof.Add(1)
		clear(outL)
		clear(outR)

	case e.reachAhead(frame, start, size):
		e.stats.ahead.Add(1)
		clear(outL)
		clear(outR)
		w.RequestRefill()

	default:
		for i := range n {
			abs := frame + uint64(i)
			if abs < start || abs-start >= size {
				outL[i], outR[i] = 0, 0
				continue
			}
			off := abs - start
			outL[i], outR[i] = pool.L[off], pool.R[off]
			pool.L[off], pool.R[off] = 0, 0
		}
		if end >= start+e.refillAt {
			w.RequestRefill()
		}
	}
}

// reachStale: the whole block lies before the pool window.
func (e *Engine) reachStale(end, start uint64) bool { return end <= start }

// reachEOF: the block starts at or past the end of a non-looping file.
func (e *Engine) reachEOF(frame uint64) bool {
	return frame >= e.maxFrame.Load() && !e.loop.Load()
}

// reachAhead: the block starts past the pool window.
func (e *Engine) reachAhead(frame, start, size uint64) bool { return frame >= start+size }

func (e *Engine) silence(outL, outR []float32, frame uint64) {
	clear(outL)
	clear(outR)
	e.stats.silent.Add(1)
	e.lastFrame.Store(frame)
}

// LoadFile replaces the current source. The previous worker is stopped and
// joined first. An empty path unloads. On error the engine is left
// unloaded.
func (e *Engine) LoadFile(path string) error {
	e.ctlMtx.Lock()
	defer e.ctlMtx.Unlock()

	if e.closed {
		return ErrClosed
	}

	e.unload()
	if path == "" {
		e.log.Info("stream: unloaded")
		return nil
	}

	w := NewWorker(WorkerConfig{
		Decoder:         e.cfg.Decoder,
		Playhead:        e.LastFrame,
		PoolFrames:      e.pool.Load().Size(),
		RefillThreshold: e.cfg.RefillThreshold,
		PollInterval:    e.cfg.PollInterval,
		Logger:          e.log,
		stats:           e.stats,
	})
	w.SetLoopMode(e.loop.Load())

	if err := w.LoadSource(path); err != nil {
		w.Stop()
		return err
	}
	if err := w.Start(e.ctx); err != nil {
		w.Stop()
		return fmt.Errorf("start %q: %w", path, err)
	}

	e.maxFrame.Store(w.MaxFrame())
	e.worker.Store(w)
	w.RequestRefill()
	e.doProcess.Store(true)
	return nil
}

// unload stops the current worker. Process clears the pool once it sees the
// worker change. Callers hold ctlMtx.
func (e *Engine) unload() {
	e.doProcess.Store(false)
	e.maxFrame.Store(0)
	if w := e.worker.Swap(nil); w != nil {
		w.Stop()
	}
}

// SetLoopMode switches looping and asks for a refill so the next window
// reflects it.
func (e *Engine) SetLoopMode(enabled bool) {
	e.ctlMtx.Lock()
	defer e.ctlMtx.Unlock()

	e.loop.Store(enabled)
	if w := e.worker.Load(); w != nil {
		w.SetLoopMode(enabled)
		w.RequestRefill()
	}
}

func (e *Engine) LoopMode() bool { return e.loop.Load() }

// LastFrame is the transport frame of the last processed block.
func (e *Engine) LastFrame() uint64 { return e.lastFrame.Load() }

// MaxFrame is the length of the loaded file, 0 when none.
func (e *Engine) MaxFrame() uint64 { return e.maxFrame.Load() }

func (e *Engine) Loaded() bool { return e.doProcess.Load() }

func (e *Engine) Stats() Stats { return e.stats.snapshot() }

// SampleRate is the configured host rate.
func (e *Engine) SampleRate() int { return e.cfg.SampleRate }

// Close stops the worker and releases the pool. It must not run
// concurrently with Process. Further calls return nil.
func (e *Engine) Close() error {
	e.ctlMtx.Lock()
	defer e.ctlMtx.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	e.unload()
	e.cancel()
	if pool := e.pool.Swap(nil); pool != nil {
		pool.Release()
	}

	e.log.Debug("stream: engine closed")
	return nil
}
