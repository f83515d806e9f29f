package config

import "testing"

func TestNewBotConfigDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DISCORD_API_BASE_URL", "")
	t.Setenv("DISCORD_MAX_RECONNECT_ATTEMPTS", "")
	t.Setenv("DISCORD_RECONNECT_DELAY", "")
	t.Setenv("DISCORD_HEARTBEAT_JITTER_MS", "")

	cfg := NewBotConfig()
	if cfg.APIBaseURL != "https://discordapp.com/api" {
		t.Fatalf("unexpected default API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.MaxReconnectAttempts != 5 {
		t.Fatalf("unexpected default max reconnect attempts: %d", cfg.MaxReconnectAttempts)
	}
	if cfg.HeartbeatJitterMs != 250 {
		t.Fatalf("unexpected default heartbeat jitter: %d", cfg.HeartbeatJitterMs)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "abc123")
	t.Setenv("DISCORD_MAX_RECONNECT_ATTEMPTS", "10")
	t.Setenv("DISCORD_INTENTS_OVERRIDE", "513")

	cfg := NewBotConfig()
	if cfg.Token != "abc123" {
		t.Fatalf("expected token override, got %q", cfg.Token)
	}
	if cfg.MaxReconnectAttempts != 10 {
		t.Fatalf("expected max reconnect attempts 10, got %d", cfg.MaxReconnectAttempts)
	}
	if cfg.IntentsOverride == nil || *cfg.IntentsOverride != 513 {
		t.Fatalf("expected intents override 513, got %v", cfg.IntentsOverride)
	}
}

func TestValidateMissingToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	cfg := NewBotConfig()
	cfg.Token = ""

	problems := cfg.Validate()
	if len(problems) == 0 {
		t.Fatal("expected a validation problem for missing token")
	}
}

func TestValidateRejectsBadMaxReconnect(t *testing.T) {
	cfg := NewBotConfig()
	cfg.Token = "abc"
	cfg.MaxReconnectAttempts = 0

	problems := cfg.Validate()
	found := false
	for _, p := range problems {
		if p == "max reconnect attempts must be at least 1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected max-reconnect-attempts problem, got %v", problems)
	}
}
