// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ik5/audstream/audio"
)

// unknownDataSize is written by streaming encoders that never patch the header.
const unknownDataSize = 0xFFFFFFFF

type wavSource struct {
	r          io.Reader
	sampleRate int
	channels   int
	// assume PCM 16-bit
	buf []byte

	dataStart int64 // byte offset of the first PCM byte
	dataSize  int64 // -1 when the header carries no size
	remaining int64 // PCM bytes left in the data chunk
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }
func (s *wavSource) BufSize() int    { return cap(s.buf) / 2 }

// Frames returns the length announced by the data chunk header.
func (s *wavSource) Frames() int64 {
	if s.dataSize < 0 {
		return -1
	}
	return s.dataSize / int64(2*s.channels)
}

// SeekFrame moves to frame when the underlying reader is an io.Seeker.
func (s *wavSource) SeekFrame(frame int64) error {
	seeker, ok := s.r.(io.Seeker)
	if !ok {
		return audio.ErrNotSeekable
	}
	if frame < 0 {
		return audio.ErrNegativeFrame
	}

	offset := frame * int64(2*s.channels)
	if s.dataSize >= 0 && offset > s.dataSize {
		offset = s.dataSize
	}

	if _, err := seeker.Seek(s.dataStart+offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w", err)
	}

	if s.dataSize >= 0 {
		s.remaining = s.dataSize - offset
	}
	return nil
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := int64(len(dst)) * 2
	if s.dataSize >= 0 {
		if s.remaining <= 0 {
			return 0, io.EOF
		}
		want = min(want, s.remaining)
	}

	// Read frames of int16 interleaved, convert to float32
	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	b := s.buf[:want]

	n, err := io.ReadFull(s.r, b)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w", err)
	}
	if s.dataSize >= 0 {
		s.remaining -= int64(n)
	}

	samples := n / 2
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(b[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}

	if samples == 0 {
		return 0, io.EOF
	}
	if s.dataSize >= 0 && s.remaining <= 0 {
		return samples, io.EOF
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return samples, io.EOF
	}
	return samples, nil
}

type Decoder struct{}

// Decode walks the RIFF chunks up to the data chunk. Chunks other than
// "fmt " and "data" are skipped, including their pad byte.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if !bytes.HasPrefix(header[:4], []byte("RIFF")) || !bytes.HasPrefix(header[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}

	offset := int64(12)
	var (
		haveFmt    bool
		channels   int
		sampleRate int
	)

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, ErrUnsupportedWavChunks
		}
		offset += 8

		id := string(chunk[:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, ErrUnsupportedWavLayout
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("%w", err)
			}
			offset += int64(len(body))

			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample := int(binary.LittleEndian.Uint16(body[14:16]))

			if audioFormat != 1 || bitsPerSample != 16 {
				return nil, ErrOnlyPCM16bitSupported
			}
			if channels <= 0 {
				return nil, ErrUnsupportedWavLayout
			}
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, ErrUnsupportedWavLayout
			}

			dataSize := size
			if size == unknownDataSize {
				dataSize = -1
			}

			return &wavSource{
				r:          r,
				sampleRate: sampleRate,
				channels:   channels,
				buf:        make([]byte, 4096),
				dataStart:  offset,
				dataSize:   dataSize,
				remaining:  dataSize,
			}, nil

		default:
			skip := size + size%2
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, ErrUnsupportedWavChunks
			}
			offset += skip
		}
	}
}
