// Package discordbot provides a Go client library for the Discord
// gateway and voice protocols.
//
// # Overview
//
// libDiscordBot provides:
//   - Gateway connection management with auto-reconnect and resume
//   - An entity cache of users, guilds, channels, and voice states
//   - Voice channel connections with Opus encoding and RTP/UDP transport
//   - Structured logging with zerolog
//   - Type-safe event handler registration
//
// # Quick Start
//
//	cfg := config.NewBotConfig()
//	client, err := discordbot.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client.AddReadyHandler(func() {
//		log.Println("bot is ready")
//	})
//	client.AddMessageHandler(discordbot.CreateLoggingMessageHandler(true))
//
//	if err := client.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Voice
//
// Joining a channel and speaking from a file:
//
//	client.Join(guildID, channelID)
//	src, _ := audiosource.OpenFile("clip.pcm")
//	client.StartSpeaking(guildID, src)
//
// # Configuration
//
// BotConfig is loaded from the environment (DISCORD_BOT_TOKEN and
// friends), with an optional .env file picked up via godotenv.
package discordbot
