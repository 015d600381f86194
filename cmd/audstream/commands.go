// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/ik5/audstream"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/internal/observe"
	"github.com/ik5/audstream/stream"
)

type renderCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Audio file to stream."`
	Output string `arg:"" type:"path" help:"WAV file to write."`

	Start       uint64        `help:"Transport frame playback starts at."`
	Duration    time.Duration `help:"Length to render." default:"5s"`
	Frames      uint64        `help:"Frames to render. Overrides --duration."`
	BlockSize   int           `help:"Callback size in frames. 0 uses the configured size."`
	Loop        bool          `help:"Force loop mode on." xor:"loop"`
	NoLoop      bool          `help:"Force loop mode off." xor:"loop"`
	RewindAfter time.Duration `help:"Stop and rewind the transport to 0 after this much output."`
	Speed       float64       `help:"Pace callbacks at this multiple of real time. 0 renders unpaced."`
	Prime       time.Duration `help:"Wait up to this long for the first window before playing." default:"5s"`
	Metrics     bool          `help:"Log engine metrics when done."`
}

func (r *renderCmd) Run(ctx context.Context, a *app) error {
	cfg := *a.cfg
	switch {
	case r.Loop:
		cfg.Loop = true
	case r.NoLoop:
		cfg.Loop = false
	}
	if r.BlockSize > 0 {
		cfg.BlockSize = r.BlockSize
	}

	eng, err := audstream.NewEngine(cfg.Stream(nil, a.log))
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	reader := sdkmetric.NewManualReader()
	mp, err := observe.NewProvider(reader, "audstream", version)
	if err != nil {
		return abort(fmt.Errorf("metrics: %w", err), eng.Close)
	}
	reg, err := observe.Register(mp, eng)
	if err != nil {
		return abort(err, func() error { return mp.Shutdown(context.WithoutCancel(ctx)) }, eng.Close)
	}

	renderErr := r.render(ctx, a, eng, cfg.BlockSize)

	if r.Metrics {
		if err := observe.Report(ctx, reader, a.log); err != nil {
			a.log.Warn("audstream: metrics report failed", slog.Any("error", err))
		}
	}

	return errors.Join(renderErr, reg.Unregister(), mp.Shutdown(context.WithoutCancel(ctx)), eng.Close())
}

func (r *renderCmd) render(ctx context.Context, a *app, eng *stream.Engine, blockSize int) error {
	if err := eng.LoadFile(r.Input); err != nil {
		return err
	}

	rate := uint64(eng.SampleRate())
	frames := r.Frames
	if frames == 0 {
		frames = uint64(r.Duration.Seconds() * float64(rate))
	}

	started := time.Now()
	left, right, err := audstream.Render(ctx, eng, audstream.RenderOptions{
		BlockSize:    blockSize,
		Start:        r.Start,
		Frames:       frames,
		RewindAfter:  uint64(r.RewindAfter.Seconds() * float64(rate)),
		Speed:        r.Speed,
		PrimeTimeout: r.Prime,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("render %q: %w", r.Input, err)
	}

	out, ferr := os.Create(r.Output)
	if ferr != nil {
		return errors.Join(err, fmt.Errorf("create %q: %w", r.Output, ferr))
	}
	defer out.Close()

	if werr := wav.WriteStereo(out, int(rate), left, right); werr != nil {
		return errors.Join(err, fmt.Errorf("write %q: %w", r.Output, werr))
	}

	s := eng.Stats()
	a.log.Info("audstream: rendered",
		slog.String("input", r.Input),
		slog.String("output", r.Output),
		slog.Int("frames", len(left)),
		slog.Duration("elapsed", time.Since(started)),
		slog.Uint64("refills", s.Refills),
		slog.Uint64("stale_blocks", s.StaleBlocks),
		slog.Uint64("ahead_blocks", s.AheadBlocks),
	)
	return err
}

// abort runs every cleanup and joins their errors with err.
func abort(err error, cleanup ...func() error) error {
	errs := []error{err}
	for _, fn := range cleanup {
		errs = append(errs, fn())
	}
	return errors.Join(errs...)
}

type probeCmd struct {
	Input string `arg:"" type:"existingfile" help:"Audio file to inspect."`
}

func (p *probeCmd) Run(a *app) error {
	info, err := stream.Probe(audstream.NewDecoder(), p.Input)
	if err != nil {
		return err
	}

	length := time.Duration(0)
	if info.SampleRate > 0 {
		length = time.Duration(float64(info.Frames) / float64(info.SampleRate) * float64(time.Second))
	}

	fmt.Fprintf(a.out, "%s: %d ch @ %d Hz, %d frames (%s)\n",
		p.Input, info.Channels, info.SampleRate, info.Frames, length.Round(time.Millisecond))
	return nil
}
