// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// chunkFrames bounds a single read so cancellation is observed between chunks.
const chunkFrames = 4096

// Info describes a probed audio file.
type Info struct {
	Frames     int64
	Channels   int
	SampleRate int
}

// FileReader decodes arbitrary frame ranges of a file as separate left and
// right channels. It keeps the underlying source open between calls and
// only repositions when a range does not continue where the last one ended.
//
// A FileReader is not safe for concurrent use.
type FileReader struct {
	path string
	dec  Decoder

	file   *os.File
	src    Source
	folder *StereoFolder

	info Info
	pos  int64

	scratchL []float32
	scratchR []float32
}

// OpenFile opens path with the decoder registered for its extension and
// probes the total length. Sources that cannot report their length are
// scanned once and reopened.
func OpenFile(reg *Registry, path string) (*FileReader, error) {
	dec, err := reg.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}

	fr := &FileReader{
		path:     path,
		dec:      dec,
		scratchL: make([]float32, chunkFrames),
		scratchR: make([]float32, chunkFrames),
	}

	if err := fr.open(); err != nil {
		return nil, err
	}

	frames := int64(-1)
	if fc, ok := fr.src.(FrameCounter); ok {
		frames = fc.Frames()
	}

	if frames < 0 {
		frames, err = fr.count()
		if err != nil {
			fr.Close()
			return nil, err
		}
		if err := fr.reopen(); err != nil {
			return nil, err
		}
	}

	fr.info = Info{
		Frames:     frames,
		Channels:   fr.src.Channels(),
		SampleRate: fr.src.SampleRate(),
	}

	return fr, nil
}

func (f *FileReader) open() error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open %q: %w", f.path, err)
	}

	src, err := f.dec.Decode(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("decode %q: %w", f.path, err)
	}

	if src.Channels() <= 0 {
		src.Close()
		file.Close()
		return fmt.Errorf("decode %q: %w", f.path, ErrNoChannels)
	}

	f.file = file
	f.src = src
	f.folder = NewStereoFolder(src)
	f.pos = 0
	return nil
}

func (f *FileReader) reopen() error {
	f.closeHandles()
	return f.open()
}

// count reads the whole stream and returns its length in frames.
func (f *FileReader) count() (int64, error) {
	var total int64
	for {
		n, err := f.folder.ReadFrames(f.scratchL, f.scratchR)
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("scan %q: %w", f.path, err)
		}
		if n == 0 {
			return total, nil
		}
	}
}

// Info returns the probed format and length.
func (f *FileReader) Info() Info { return f.info }

// Path returns the file the reader was opened on.
func (f *FileReader) Path() string { return f.path }

// ReadRange decodes frames starting at start into l and r, up to
// min(len(l), len(r)) frames. It returns the number of frames decoded; a
// short count without an error means the stream ended.
func (f *FileReader) ReadRange(ctx context.Context, start int64, l, r []float32) (int, error) {
	if start < 0 {
		return 0, ErrNegativeFrame
	}
	if f.src == nil {
		return 0, os.ErrClosed
	}

	if err := f.reposition(ctx, start); err != nil {
		return 0, err
	}

	frames := min(len(l), len(r))
	written := 0
	for written < frames {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		end := min(frames, written+chunkFrames)
		n, err := f.folder.ReadFrames(l[written:end], r[written:end])
		written += n
		f.pos += int64(n)

		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("read %q at frame %d: %w", f.path, f.pos, err)
		}
		if n == 0 {
			break
		}
	}

	return written, nil
}

func (f *FileReader) reposition(ctx context.Context, start int64) error {
	if start == f.pos {
		return nil
	}

	if seeker, ok := f.src.(FrameSeeker); ok {
		err := seeker.SeekFrame(start)
		if err == nil {
			f.pos = start
			return nil
		}
		if !errors.Is(err, ErrNotSeekable) {
			return fmt.Errorf("seek %q to frame %d: %w", f.path, start, err)
		}
	}

	if start < f.pos {
		if err := f.reopen(); err != nil {
			return err
		}
	}

	for f.pos < start {
		if err := ctx.Err(); err != nil {
			return err
		}

		want := int(min(start-f.pos, chunkFrames))
		n, err := f.folder.ReadFrames(f.scratchL[:want], f.scratchR[:want])
		f.pos += int64(n)
		if err == io.EOF || (err == nil && n == 0) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("skip %q to frame %d: %w", f.path, start, err)
		}
	}

	return nil
}

func (f *FileReader) closeHandles() error {
	var errs []error
	if f.src != nil {
		errs = append(errs, f.src.Close())
		f.src = nil
		f.folder = nil
	}
	if f.file != nil {
		errs = append(errs, f.file.Close())
		f.file = nil
	}
	return errors.Join(errs...)
}

// Close releases the decoder and the file handle.
func (f *FileReader) Close() error {
	return f.closeHandles()
}
