// SPDX-License-Identifier: EPL-2.0

// Command audstream streams an audio file through the engine with a
// simulated transport and writes what the audio callback produced.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/ik5/audstream/internal/config"
)

// version is set via ldflags at build time
var version = "dev"

type cli struct {
	Config  string           `help:"YAML configuration file." type:"existingfile" short:"c"`
	Verbose bool             `help:"Log at debug level." short:"v"`
	Version kong.VersionFlag `help:"Show version information."`

	Render renderCmd `cmd:"" help:"Stream a file and write the rendered output as WAV."`
	Probe  probeCmd  `cmd:"" help:"Print the format and length of a file."`
}

// app is bound into every command's Run method.
type app struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "audstream:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var c cli
	parser, err := kong.New(&c,
		kong.Name("audstream"),
		kong.Description("Stream audio files through a real-time safe pool."),
		kong.Vars{"version": version},
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if c.Config != "" {
		if cfg, err = config.Load(c.Config); err != nil {
			return err
		}
	}

	level := cfg.LogLevel.Level()
	if c.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return kctx.Run(&app{cfg: cfg, log: log, out: stdout})
}
