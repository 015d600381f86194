// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// WorkerState is the lifecycle of a Worker. Stopped is terminal.
type WorkerState int32

const (
	WorkerIdle WorkerState = iota
	WorkerLoaded
	WorkerRunning
	WorkerStopped
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerLoaded:
		return "loaded"
	case WorkerRunning:
		return "running"
	case WorkerStopped:
		return "stopped"
	}
	return fmt.Sprintf("WorkerState(%d)", int32(s))
}

// WorkerConfig binds a worker to its collaborators.
type WorkerConfig struct {
	Decoder Decoder
	// Playhead returns the last transport frame seen by the consumer.
	Playhead   func() uint64
	PoolFrames int
	// RefillThreshold and PollInterval drive proactive refills, see Config.
	RefillThreshold float64
	PollInterval    time.Duration
	Logger          *slog.Logger

	stats *counters
}

// block is a staged window. It is never written after being handed off.
type block struct {
	start uint64
	l, r  []float32
}

// Worker owns one decoder handle and refills pool windows from a background
// goroutine. A worker serves a single load: construct, LoadSource, Start,
// Stop, discard.
type Worker struct {
	dec       Decoder
	playhead  func() uint64
	size      int
	threshold float64
	poll      time.Duration
	log       *slog.Logger
	stats     *counters

	mtx    sync.Mutex
	state  WorkerState
	reader Reader
	path   string
	cancel context.CancelFunc
	group  *errgroup.Group

	maxFrame  atomic.Uint64
	loop      atomic.Bool
	needsRead atomic.Bool
	wake      chan struct{}

	ready atomic.Pointer[block] // decoded, waiting for TryPublish
	spare atomic.Pointer[block] // returned by TryPublish after copying

	// Owned by the background goroutine.
	staging    *block
	window     uint64
	haveWindow bool
}

func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Playhead == nil {
		cfg.Playhead = func() uint64 { return 0 }
	}
	if cfg.RefillThreshold <= 0 || cfg.RefillThreshold > 1 {
		cfg.RefillThreshold = DefaultRefillThreshold
	}
	if cfg.stats == nil {
		cfg.stats = &counters{}
	}

	return &Worker{
		dec:       cfg.Decoder,
		playhead:  cfg.Playhead,
		size:      cfg.PoolFrames,
		threshold: cfg.RefillThreshold,
		poll:      cfg.PollInterval,
		log:       cfg.Logger,
		stats:     cfg.stats,
		wake:      make(chan struct{}, 1),
	}
}

// LoadSource opens path and caches its length. On failure no handle is kept
// and MaxFrame is 0.
func (w *Worker) LoadSource(path string) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.state == WorkerRunning || w.state == WorkerStopped {
		return fmt.Errorf("load %q: %w", path, ErrWorkerRunning)
	}

	w.closeReader()

	r, err := w.dec.Open(path)
	if err != nil {
		w.state = WorkerIdle
		w.path = ""
		w.log.Warn("stream: load failed", slog.String("path", path), slog.Any("err", err))
		return fmt.Errorf("load %q: %w", path, err)
	}

	info := r.Info()
	w.reader = r
	w.path = path
	w.maxFrame.Store(uint64(max(info.Frames, 0)))
	w.state = WorkerLoaded

	w.log.Info("stream: source loaded",
		slog.String("path", path),
		slog.Int64("frames", info.Frames),
		slog.Int("channels", info.Channels),
		slog.Int("sample_rate", info.SampleRate),
	)
	return nil
}

// Start launches the background goroutine. It stops when ctx is cancelled
// or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	switch w.state {
	case WorkerRunning:
		return ErrAlreadyRunning
	case WorkerStopped:
		return ErrWorkerStopped
	case WorkerIdle:
		return ErrNotLoaded
	}

	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.run(ctx)
	})

	w.cancel = cancel
	w.group = g
	w.state = WorkerRunning

	w.log.Debug("stream: worker started", slog.String("path", w.path))
	return nil
}

// Stop cancels the goroutine, waits for it and closes the decoder handle.
// It may be called at any time and more than once.
func (w *Worker) Stop() {
	w.mtx.Lock()
	defer w.mtx.Unlock()

	if w.state == WorkerRunning {
		w.cancel()
		w.signal()
		if err := w.group.Wait(); err != nil {
			w.log.Warn("stream: worker exited", slog.String("path", w.path), slog.Any("err", err))
		}
		w.log.Debug("stream: worker stopped", slog.String("path", w.path))
	}

	w.closeReader()
	w.state = WorkerStopped
}

func (w *Worker) closeReader() {
	if w.reader == nil {
		return
	}
	if err := w.reader.Close(); err != nil {
		w.log.Warn("stream: close failed", slog.String("path", w.path), slog.Any("err", err))
	}
	w.reader = nil
	w.maxFrame.Store(0)
}

func (w *Worker) State() WorkerState {
	w.mtx.Lock()
	defer w.mtx.Unlock()
	return w.state
}

// MaxFrame is the length of the loaded source in frames, 0 when none.
func (w *Worker) MaxFrame() uint64 { return w.maxFrame.Load() }

func (w *Worker) LoopMode() bool { return w.loop.Load() }

// SetLoopMode takes effect on the next refill.
func (w *Worker) SetLoopMode(enabled bool) { w.loop.Store(enabled) }

// RequestRefill marks the window as needing a refill and wakes the
// goroutine. It does not block and is safe on the real-time goroutine.
func (w *Worker) RequestRefill() {
	if w.needsRead.CompareAndSwap(false, true) {
		w.stats.requests.Add(1)
		w.signal()
	}
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// TryPublish copies the most recent handed-off block into p. It returns
// false when nothing new is ready. It never blocks or allocates and is the
// only Worker method meant for the real-time goroutine besides
// RequestRefill.
func (w *Worker) TryPublish(p *Pool) bool {
	b := w.ready.Swap(nil)
	if b == nil {
		return false
	}

	copy(p.L, b.l)
	copy(p.R, b.r)
	p.StartFrame = b.start

	w.spare.Store(b)
	w.stats.publishes.Add(1)
	return true
}

func (w *Worker) run(ctx context.Context) error {
	var tick <-chan time.Time
	if w.poll > 0 {
		ticker := time.NewTicker(w.poll)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
		case <-tick:
		}

		if ctx.Err() != nil {
			return nil
		}
		if w.needsRead.Load() || w.due() {
			w.refill(ctx)
		}
	}
}

// due reports whether the playhead has left or mostly consumed the last
// published window.
func (w *Worker) due() bool {
	if !w.haveWindow {
		return false
	}

	head := w.playhead()
	if !w.loop.Load() && head >= w.maxFrame.Load() {
		return false
	}
	if head < w.window {
		return true
	}
	return float64(head-w.window) >= w.threshold*float64(w.size)
}

// refill decodes the window starting at the playhead and hands it off.
// needsRead is cleared before the playhead is read so a request arriving
// during the decode is kept for the next pass.
func (w *Worker) refill(ctx context.Context) {
	w.needsRead.Store(false)

	b := w.stagingBlock()
	b.start = w.playhead()

	if err := w.fill(ctx, b); err != nil {
		w.staging = b
		if ctx.Err() != nil {
			return
		}
		w.stats.refillErrors.Add(1)
		w.log.Warn("stream: refill failed",
			slog.String("path", w.path),
			slog.Uint64("start", b.start),
			slog.Any("err", err),
		)
		return
	}

	w.staging = nil
	if old := w.ready.Swap(b); old != nil {
		w.stats.dropped.Add(1)
		w.staging = old
	}

	w.window = b.start
	w.haveWindow = true
	w.stats.refills.Add(1)
}

func (w *Worker) stagingBlock() *block {
	if b := w.staging; b != nil {
		return b
	}
	if b := w.spare.Swap(nil); b != nil {
		return b
	}
	return &block{
		l: make([]float32, w.size),
		r: make([]float32, w.size),
	}
}

// fill decodes b.start onwards. File positions wrap to 0 when looping;
// otherwise everything past the end stays zero.
func (w *Worker) fill(ctx context.Context, b *block) error {
	clear(b.l)
	clear(b.r)

	maxFrame := w.maxFrame.Load()
	if maxFrame == 0 {
		return nil
	}

	loop := w.loop.Load()
	pos := b.start
	if loop {
		pos %= maxFrame
	} else if pos >= maxFrame {
		return nil
	}

	written := 0
	for written < w.size {
		want := int(min(uint64(w.size-written), maxFrame-pos))
		n, err := w.reader.ReadRange(ctx, int64(pos), b.l[written:written+want], b.r[written:written+want])
		if err != nil {
			return err
		}
		if n == 0 {
			// Decoder ran dry before the probed length.
			return nil
		}

		written += n
		pos += uint64(n)
		if pos >= maxFrame {
			if !loop {
				return nil
			}
			pos = 0
		}
	}

	return nil
}
