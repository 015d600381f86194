// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"log/slog"
	"slices"
	"testing"

	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/internal/audiotest"
	"github.com/ik5/audstream/stream"
)

func TestNewRegistry_Formats(t *testing.T) {
	t.Parallel()

	want := []string{"aif", "aiff", "flac", "mp3", "oga", "ogg", "wav", "wave"}
	if got := NewRegistry().Formats(); !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestNewDecoder_OpensWAV(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteRampWAV(t, "clip.WAV", 44100, 2, 1500)

	info, err := stream.Probe(NewDecoder(), path)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if info.Frames != 1500 || info.Channels != 2 || info.SampleRate != 44100 {
		t.Errorf("Probe() = %+v", info)
	}

	if _, err := stream.Probe(NewDecoder(), "clip.mid"); !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Errorf("Probe(mid) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNewEngine_DefaultDecoder(t *testing.T) {
	t.Parallel()

	eng, err := NewEngine(stream.Config{Logger: slog.New(slog.DiscardHandler)})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer eng.Close()

	path := audiotest.WriteRampWAV(t, "clip.wav", 48000, 1, 100)
	if err := eng.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if eng.MaxFrame() != 100 {
		t.Errorf("MaxFrame() = %d, want 100", eng.MaxFrame())
	}
}
