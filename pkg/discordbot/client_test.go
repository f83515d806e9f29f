package discordbot

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
)

func TestNewRejectsMissingToken(t *testing.T) {
	cfg := &config.BotConfig{APIBaseURL: "https://discordapp.com/api", MaxReconnectAttempts: 5}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected New to reject a config with no token")
	}
}

func TestNewAcceptsValidConfig(t *testing.T) {
	cfg := &config.BotConfig{Token: "abc", APIBaseURL: "https://discordapp.com/api", MaxReconnectAttempts: 5}
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Cache() == nil {
		t.Fatal("expected a non-nil cache")
	}
}

func TestStartSpeakingQueuesWhenNoVoiceSession(t *testing.T) {
	cfg := &config.BotConfig{Token: "abc", APIBaseURL: "https://discordapp.com/api", MaxReconnectAttempts: 5}
	client, _ := New(cfg)

	src := sourceFunc(func(buf []int16) int { return 0 })
	client.StartSpeaking("g1", src)

	if _, ok := client.cache.TakePendingSource("g1"); !ok {
		t.Fatal("expected the source to be queued on the cache when no voice session exists")
	}
}

type sourceFunc func(buf []int16) int

func (f sourceFunc) Read(buf []int16) int { return f(buf) }
