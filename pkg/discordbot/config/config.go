// Package config loads BotConfig from the environment (and an optional
// .env file), the way the teacher SDK's VocalsConfig does.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// BotConfig holds everything Create/Run needs that isn't passed as an
// explicit argument: reconnect policy, intents override, and debug flags.
type BotConfig struct {
	Token                string
	APIBaseURL           string
	IntentsOverride      *int
	MaxReconnectAttempts int
	ReconnectDelay       float64
	HeartbeatJitterMs    int
	DebugGateway         bool
	DebugVoice           bool
}

func NewBotConfig() *BotConfig {
	c := &BotConfig{
		APIBaseURL:           "https://discordapp.com/api",
		MaxReconnectAttempts: 5,
		ReconnectDelay:       1.0,
		HeartbeatJitterMs:    250,
	}
	c.loadFromEnv()
	return c
}

func (c *BotConfig) loadFromEnv() {
	_ = godotenv.Load()

	if token := os.Getenv("DISCORD_BOT_TOKEN"); token != "" {
		c.Token = token
	}

	if base := os.Getenv("DISCORD_API_BASE_URL"); base != "" {
		c.APIBaseURL = base
	}

	if intents := os.Getenv("DISCORD_INTENTS_OVERRIDE"); intents != "" {
		if val, err := strconv.Atoi(intents); err == nil {
			c.IntentsOverride = &val
		}
	}

	if maxReconnect := os.Getenv("DISCORD_MAX_RECONNECT_ATTEMPTS"); maxReconnect != "" {
		if val, err := strconv.Atoi(maxReconnect); err == nil {
			c.MaxReconnectAttempts = val
		}
	}

	if delay := os.Getenv("DISCORD_RECONNECT_DELAY"); delay != "" {
		if val, err := strconv.ParseFloat(delay, 64); err == nil {
			c.ReconnectDelay = val
		}
	}

	if jitter := os.Getenv("DISCORD_HEARTBEAT_JITTER_MS"); jitter != "" {
		if val, err := strconv.Atoi(jitter); err == nil {
			c.HeartbeatJitterMs = val
		}
	}

	c.DebugGateway = os.Getenv("DISCORD_DEBUG_GATEWAY") == "true"
	c.DebugVoice = os.Getenv("DISCORD_DEBUG_VOICE") == "true"
}

// Validate returns a list of human-readable configuration problems; an
// empty slice means the config is usable.
func (c *BotConfig) Validate() []string {
	var issues []string

	if c.Token == "" {
		issues = append(issues, "DISCORD_BOT_TOKEN environment variable not set")
	}

	if !strings.HasPrefix(c.APIBaseURL, "http") {
		issues = append(issues, "invalid API base URL")
	}

	if c.MaxReconnectAttempts < 1 {
		issues = append(issues, "max reconnect attempts must be at least 1")
	}

	return issues
}

func (c *BotConfig) PrintConfig() {
	fmt.Println("libDiscordBot Configuration")
	fmt.Println("==================================================")

	if c.Token != "" {
		shown := c.Token
		if len(shown) > 10 {
			shown = shown[:10]
		}
		fmt.Printf("Bot Token: %s...\n", shown)
	} else {
		fmt.Println("Bot Token: NOT SET")
	}

	fmt.Printf("API Base URL: %s\n", c.APIBaseURL)
	fmt.Printf("Max Reconnect Attempts: %d\n", c.MaxReconnectAttempts)
	fmt.Printf("Reconnect Delay: %.1fs\n", c.ReconnectDelay)
	fmt.Printf("Heartbeat Jitter: %dms\n", c.HeartbeatJitterMs)
	fmt.Printf("Debug Gateway: %t\n", c.DebugGateway)
	fmt.Printf("Debug Voice: %t\n", c.DebugVoice)

	if c.IntentsOverride != nil {
		fmt.Printf("Intents Override: 0x%X\n", *c.IntentsOverride)
	} else {
		fmt.Println("Intents: default")
	}
}
