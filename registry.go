// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"github.com/ik5/audstream/audio"
	"github.com/ik5/audstream/formats/aiff"
	"github.com/ik5/audstream/formats/flac"
	"github.com/ik5/audstream/formats/mp3"
	"github.com/ik5/audstream/formats/vorbis"
	"github.com/ik5/audstream/formats/wav"
	"github.com/ik5/audstream/stream"
)

// NewRegistry returns a registry with every bundled format under its usual
// file extensions.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("flac", flac.Decoder{})

	return reg
}

// NewDecoder returns a stream decoder over NewRegistry.
func NewDecoder() *stream.FileDecoder {
	return stream.NewFileDecoder(NewRegistry())
}

// NewEngine is stream.NewEngine with NewDecoder as the default decoder.
func NewEngine(cfg stream.Config) (*stream.Engine, error) {
	if cfg.Decoder == nil {
		cfg.Decoder = NewDecoder()
	}
	return stream.NewEngine(cfg)
}
