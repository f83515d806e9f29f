package audio

import (
	"github.com/pion/rtp"
)

// PayloadType is Discord voice's fixed RTP payload type (spec §4.3 step 4).
const PayloadType = 120

// Framer builds RTP headers for a single voice session's outbound
// stream: sequence and timestamp are session-local monotone counters,
// SSRC is fixed for the session's lifetime.
type Framer struct {
	SSRC     uint32
	sequence uint16
	timestamp uint32
}

// NewFramer starts sequence numbers at 1, per spec §4.3 step 4.
func NewFramer(ssrc uint32) *Framer {
	return &Framer{SSRC: ssrc, sequence: 0}
}

// NextHeader returns the 12-byte RTP header for the next frame and
// advances sequence by 1 and timestamp by samplesPerChannel, matching
// the invariant in spec §8: sequence_{n+1} = sequence_n + 1 (mod 2^16),
// timestamp_{n+1} = timestamp_n + samples_per_channel_n.
func (f *Framer) NextHeader(samplesPerChannel uint32) ([]byte, uint16, uint32, error) {
	f.sequence++
	header := &rtp.Header{
		Version:        2,
		PayloadType:    PayloadType,
		SequenceNumber: f.sequence,
		Timestamp:      f.timestamp,
		SSRC:           f.SSRC,
	}
	raw, err := header.Marshal()
	if err != nil {
		return nil, 0, 0, err
	}
	seq, ts := f.sequence, f.timestamp
	f.timestamp += samplesPerChannel
	return raw, seq, ts, nil
}
