package audio

import (
	"layeh.com/gopus"
)

// Encoder wraps a gopus Opus encoder configured for Discord voice: 48kHz
// stereo, VoIP application mode, one call per 20ms frame (spec §4.3,
// Open Question (b) — the buffer is sized to SamplesPerChannel samples
// per channel, the only frame length this pipeline supports).
type Encoder struct {
	enc *gopus.Encoder
}

func NewEncoder() (*Encoder, error) {
	enc, err := gopus.NewEncoder(SampleRate, Channels, gopus.Voip)
	if err != nil {
		return nil, err
	}
	return &Encoder{enc: enc}, nil
}

// Encode takes interleaved PCM samples for exactly one frame
// (samplesPerChannel samples per channel) and returns the Opus payload.
// Opus frames at 20ms/48kHz rarely exceed a few kB, so a 4096-byte
// scratch buffer comfortably bounds every call.
func (e *Encoder) Encode(pcm []int16, samplesPerChannel int) ([]byte, error) {
	return e.enc.Encode(pcm, samplesPerChannel, 4096)
}
