// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"context"
	"fmt"

	"github.com/ik5/audstream/audio"
)

// Reader is an open decoder handle. Frames are delivered as separate left
// and right channels regardless of the file layout.
type Reader interface {
	Info() audio.Info
	// ReadRange decodes up to min(len(l), len(r)) frames starting at file
	// frame start. A short count without an error means end of stream.
	ReadRange(ctx context.Context, start int64, l, r []float32) (int, error)
	Close() error
}

// Decoder opens files for the worker.
type Decoder interface {
	Open(path string) (Reader, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(path string) (Reader, error)

func (f DecoderFunc) Open(path string) (Reader, error) { return f(path) }

// Probe opens path only to read its format and length.
func Probe(d Decoder, path string) (audio.Info, error) {
	r, err := d.Open(path)
	if err != nil {
		return audio.Info{}, err
	}
	info := r.Info()
	if err := r.Close(); err != nil {
		return info, fmt.Errorf("close %q: %w", path, err)
	}
	return info, nil
}

// FileDecoder opens files through an audio.Registry.
type FileDecoder struct {
	reg *audio.Registry
}

func NewFileDecoder(reg *audio.Registry) *FileDecoder {
	return &FileDecoder{reg: reg}
}

func (d *FileDecoder) Open(path string) (Reader, error) {
	fr, err := audio.OpenFile(d.reg, path)
	if err != nil {
		return nil, err
	}
	return fr, nil
}
