package voice

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
)

func TestNewDoesNotConnect(t *testing.T) {
	cfg := &config.BotConfig{Token: "t"}
	s := New(cfg, ServerUpdate{
		Token:     "voice-token",
		GuildID:   "g1",
		Endpoint:  "example.discord.media:443",
		SessionID: "sess1",
		UserID:    "bot1",
	})

	if s.GuildID() != "g1" {
		t.Fatalf("expected GuildID() to return g1, got %s", s.GuildID())
	}
	if s.conn != nil {
		t.Fatal("expected New to not dial a connection")
	}
}

func TestStartSpeakingQueuesUntilSecretKey(t *testing.T) {
	cfg := &config.BotConfig{Token: "t"}
	s := New(cfg, ServerUpdate{GuildID: "g1"})

	src := fakeSource{}
	s.StartSpeaking(src)

	if s.pendingSrc == nil {
		t.Fatal("expected the source to be queued as pendingSrc when no secret key is present")
	}
	if s.pipeline != nil {
		t.Fatal("expected no pipeline to start before the secret key arrives")
	}
}

type fakeSource struct{}

func (fakeSource) Read(buf []int16) int { return 0 }
