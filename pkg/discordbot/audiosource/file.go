package audiosource

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
)

// FileSource streams a raw signed-16-bit little-endian PCM file
// (audio.SampleRate, audio.Channels, interleaved) as an audio.Source.
// Grounded in the teacher's LoadAudioFile (utils.go), adapted from its
// WAV-float32 reading to raw PCM16 since that's what the Opus encoder
// and RTP pipeline consume directly.
type FileSource struct {
	f *os.File
}

// OpenFile opens path for streaming. The caller must Close it once the
// voice pipeline reading from it has stopped.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, boterror.WrapError(err, boterror.CodeUserInput)
	}
	return &FileSource{f: f}, nil
}

// Read fills buf with up to len(buf) int16 samples, returning fewer
// than len(buf) (including zero) at end of file — the pipeline's
// end-of-source signal (spec §4.3).
func (s *FileSource) Read(buf []int16) int {
	raw := make([]byte, len(buf)*2)
	n, err := io.ReadFull(s.f, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0
	}

	samples := n / 2
	for i := 0; i < samples; i++ {
		buf[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return samples
}

func (s *FileSource) Close() error {
	return s.f.Close()
}
