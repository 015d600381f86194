// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/audiotest"
)

var errDecode = errors.New("decode failed")

// rampDecoder serves virtual stereo files whose samples encode their file
// frame, see audiotest.Ramp.
type rampDecoder struct {
	files map[string]int64
	// gate, when set, blocks every ReadRange until it is closed or the
	// context is cancelled.
	gate chan struct{}

	fail   atomic.Bool
	opens  atomic.Int32
	closes atomic.Int32
	reads  atomic.Int32
}

func newRampDecoder(files map[string]int64) *rampDecoder {
	return &rampDecoder{files: files}
}

func (d *rampDecoder) Open(path string) (Reader, error) {
	frames, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("open %q: %w", path, os.ErrNotExist)
	}
	d.opens.Add(1)
	return &rampReader{d: d, frames: frames}, nil
}

type rampReader struct {
	d      *rampDecoder
	frames int64
}

func (r *rampReader) Info() audio.Info {
	return audio.Info{Frames: r.frames, Channels: 2, SampleRate: 48000}
}

func (r *rampReader) ReadRange(ctx context.Context, start int64, l, rr []float32) (int, error) {
	r.d.reads.Add(1)
	if g := r.d.gate; g != nil {
		select {
		case <-g:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if r.d.fail.Load() {
		return 0, errDecode
	}

	n := int(max(min(int64(min(len(l), len(rr))), r.frames-start), 0))
	for i := range n {
		l[i] = audiotest.Ramp(int(start)+i, 0)
		rr[i] = audiotest.Ramp(int(start)+i, 1)
	}
	return n, nil
}

func (r *rampReader) Close() error {
	r.d.closes.Add(1)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestEngine builds an engine with polling disabled unless cfg sets it.
func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()

	cfg.Logger = quietLogger()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = -1
	}

	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// manualLoad loads path like LoadFile but leaves the worker stopped, so the
// test decides when refills land by calling refill.
func manualLoad(t *testing.T, e *Engine, path string) *Worker {
	t.Helper()

	w := NewWorker(WorkerConfig{
		Decoder:         e.cfg.Decoder,
		Playhead:        e.LastFrame,
		PoolFrames:      e.pool.Load().Size(),
		RefillThreshold: e.cfg.RefillThreshold,
		Logger:          e.log,
		stats:           e.stats,
	})
	w.SetLoopMode(e.loop.Load())
	if err := w.LoadSource(path); err != nil {
		t.Fatalf("LoadSource(%q) error = %v", path, err)
	}
	t.Cleanup(w.Stop)

	e.maxFrame.Store(w.MaxFrame())
	e.worker.Store(w)
	e.doProcess.Store(true)
	return w
}

// play runs one playing block of n frames at frame.
func play(e *Engine, frame uint64, n int) (l, r []float32) {
	l = make([]float32, n)
	r = make([]float32, n)
	e.Process(Transport{Frame: frame, Playing: true}, l, r)
	return l, r
}

// wantFrame is the ramp index expected for absolute frame abs of a file of
// fileLen frames.
func wantFrame(abs uint64, fileLen uint64) int {
	return int(abs%fileLen) % audiotest.RampPeriod
}

// checkRamp asserts l/r carry file frames abs..abs+len-1 of a looping file.
func checkRamp(t *testing.T, l, r []float32, abs uint64, fileLen uint64) {
	t.Helper()

	for i := range l {
		want := wantFrame(abs+uint64(i), fileLen)
		if got := audiotest.RampFrame(l[i]); got != want {
			t.Fatalf("frame %d: left decodes to %d, want %d", abs+uint64(i), got, want)
		}
		if r[i] != -l[i] {
			t.Fatalf("frame %d: right = %v, want %v", abs+uint64(i), r[i], -l[i])
		}
	}
}

func checkSilent(t *testing.T, l, r []float32) {
	t.Helper()

	for i := range l {
		if l[i] != 0 || r[i] != 0 {
			t.Fatalf("sample %d = (%v, %v), want silence", i, l[i], r[i])
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}
