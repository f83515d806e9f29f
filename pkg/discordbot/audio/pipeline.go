package audio

import (
	"sync"
	"time"
)

// FrameSender is the minimal transport surface the pipeline needs: send
// one already-framed-and-encrypted UDP datagram. The voice package's UDP
// connection satisfies this without the audio package importing voice.
type FrameSender interface {
	Send(packet []byte) error
}

// Pipeline runs the per-frame loop described in spec §4.3 on its own
// goroutine for the lifetime of a voice session's active playback.
// Construction mirrors the teacher's AudioProcessor queue/playback
// goroutine shape; the protocol details (RTP/crypto/pacing) are
// grounded in VoiceSocket.cpp's Playback().
type Pipeline struct {
	sender  FrameSender
	framer  *Framer
	encoder *Encoder
	key     SecretKey
	source  Source

	mu      sync.Mutex
	paused  bool
	stopped bool
	doneCh  chan struct{}

	OnSpeak       func(guildID string, speaking bool)
	OnSpeakFinish func(guildID string)
	GuildID       string
}

func NewPipeline(sender FrameSender, ssrc uint32, key SecretKey, source Source) (*Pipeline, error) {
	enc, err := NewEncoder()
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		sender:  sender,
		framer:  NewFramer(ssrc),
		encoder: enc,
		key:     key,
		source:  source,
		doneCh:  make(chan struct{}),
	}, nil
}

// Pause sets the pause flag the per-frame loop polls; Resume clears it.
func (p *Pipeline) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *Pipeline) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// Stop requests the loop exit and blocks until it has (spec §9: teardown
// order is stop flag then join playback).
func (p *Pipeline) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
	<-p.doneCh
}

func (p *Pipeline) isStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

func (p *Pipeline) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Run drives the per-frame loop (spec §4.3 steps 1-9) until the source
// is exhausted or Stop is called, then fires OnSpeakFinish and closes
// doneCh. It must be launched on its own goroutine.
func (p *Pipeline) Run() {
	defer close(p.doneCh)

	// Speaking=true must precede frames by ~100ms (spec §4.2).
	if p.OnSpeak != nil {
		p.OnSpeak(p.GuildID, true)
	}
	time.Sleep(100 * time.Millisecond)

	pcm := make([]int16, SamplesPerFrame)
	lastSend := time.Now()

	for {
		if p.isStopped() {
			break
		}

		if p.isPaused() {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		r := p.source.Read(pcm)
		if r <= 0 {
			break
		}

		samplesPerChannel := r / Channels

		opusPayload, err := p.encoder.Encode(pcm[:r], samplesPerChannel)
		if err != nil {
			break
		}

		header, _, _, err := p.framer.NextHeader(uint32(samplesPerChannel))
		if err != nil {
			break
		}

		sealed := Seal(header, opusPayload, p.key)
		packet := append(append([]byte{}, header...), sealed...)

		if err := p.sender.Send(packet); err != nil {
			break
		}

		speechMs := float64(samplesPerChannel) / float64(SampleRate) * 1000
		elapsed := time.Since(lastSend)
		remaining := time.Duration(speechMs)*time.Millisecond - elapsed
		if remaining > 0 {
			time.Sleep(remaining)
		}
		lastSend = time.Now()

		if r < SamplesPerFrame {
			break
		}
	}

	if p.OnSpeak != nil {
		p.OnSpeak(p.GuildID, false)
	}
	if p.OnSpeakFinish != nil {
		p.OnSpeakFinish(p.GuildID)
	}
}
