package audiosource

import (
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
)

// MicSource captures the default input device at audio.SampleRate/
// audio.Channels and exposes it as an audio.Source, grounded in the
// teacher's AudioProcessor.StartRecording (audio_processor.go) but
// over int16 PCM instead of float32.
type MicSource struct {
	stream *portaudio.Stream
	logger *discordlog.Logger

	mu      sync.Mutex
	buf     []int16
	closed  bool
}

// NewMicSource opens the default input device. Call Close when the
// voice pipeline using this source has stopped.
func NewMicSource() (*MicSource, error) {
	m := &MicSource{logger: discordlog.Global().WithComponent("audiosource")}

	stream, err := portaudio.OpenDefaultStream(audio.Channels, 0, float64(audio.SampleRate), 0, m.onCapture)
	if err != nil {
		return nil, boterror.WrapError(err, boterror.CodeTransport)
	}
	m.stream = stream

	if err := stream.Start(); err != nil {
		return nil, boterror.WrapError(err, boterror.CodeTransport)
	}
	return m, nil
}

func (m *MicSource) onCapture(in []int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.buf = append(m.buf, in...)
}

// Read implements audio.Source: it blocks (via the caller's pacing, not
// its own) returning whatever captured samples are available up to
// len(buf), zero-filling the remainder. A live microphone never signals
// end-of-source on its own; StopSpeaking on the voice session is what
// ends playback.
func (m *MicSource) Read(buf []int16) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := copy(buf, m.buf)
	m.buf = m.buf[n:]
	if n < len(buf) {
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
	}
	return len(buf)
}

func (m *MicSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	if m.stream == nil {
		return nil
	}
	if err := m.stream.Stop(); err != nil {
		m.logger.WithError(err).Warn("error stopping mic stream")
	}
	return m.stream.Close()
}
