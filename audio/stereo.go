// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// StereoFolder reads interleaved frames from a source and splits them into
// separate left and right slices.
//
// Mono sources are duplicated on both sides, stereo passes through, and any
// wider layout averages even channels into left and odd channels into right.
type StereoFolder struct {
	src Source
	tmp []float32
}

func NewStereoFolder(src Source) *StereoFolder {
	return &StereoFolder{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (s *StereoFolder) SampleRate() int { return s.src.SampleRate() }
func (s *StereoFolder) Channels() int   { return 2 }
func (s *StereoFolder) Close() error {
	err := s.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// ReadFrames fills up to min(len(l), len(r)) frames and returns the number of
// frames written. Like Source.ReadSamples it may return fewer frames than
// requested without an error.
func (s *StereoFolder) ReadFrames(l, r []float32) (int, error) {
	frames := min(len(l), len(r))
	if frames == 0 {
		return 0, nil
	}

	channels := s.src.Channels()
	if channels <= 0 {
		return 0, ErrNoChannels
	}

	samplesNeeded := frames * channels

	// Grow tmp buffer if needed (but don't shrink to avoid thrashing)
	if cap(s.tmp) < samplesNeeded {
		s.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	buf := s.tmp[:samplesNeeded]

	n, err := s.src.ReadSamples(buf)
	if n == 0 {
		return 0, err
	}
	got := n / channels

	switch channels {
	case 1:
		copy(l[:got], buf[:got])
		copy(r[:got], buf[:got])
	case 2:
		for f := range got {
			idx := f << 1
			l[f] = buf[idx]
			r[f] = buf[idx+1]
		}
	default:
		evens := float32(0)
		odds := float32(0)
		for c := range channels {
			if c%2 == 0 {
				evens++
			} else {
				odds++
			}
		}
		invL := 1 / evens
		invR := 1 / odds

		for f := range got {
			var sumL, sumR float32
			base := f * channels
			for c := range channels {
				if c%2 == 0 {
					sumL += buf[base+c]
				} else {
					sumR += buf[base+c]
				}
			}
			l[f] = sumL * invL
			r[f] = sumR * invR
		}
	}

	return got, err
}
