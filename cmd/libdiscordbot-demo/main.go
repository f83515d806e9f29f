package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audiosource"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
)

var (
	verbose   bool
	guildID   string
	channelID string
	filePath  string
	tts       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "libdiscordbot-demo",
		Short: "libDiscordBot CLI",
		Long:  "A command-line demo for the libDiscordBot gateway/voice client library",
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sayCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(devicesCmd())

	if err := rootCmd.Execute(); err != nil {
		discordlog.Global().WithError(err).Fatal("CLI execution failed")
	}
}

// runCmd connects the gateway and logs every message/ready/disconnect
// event until interrupted, mirroring the teacher's `demo record`'s
// "connect and react" shape but over the gateway instead of audio I/O.
func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the gateway and log events",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.NewBotConfig()
			if problems := cfg.Validate(); len(problems) > 0 {
				fmt.Println("configuration problems:", problems)
				return
			}

			client, err := discordbot.New(cfg)
			if err != nil {
				discordlog.Global().WithError(err).Fatal("client construction failed")
			}

			client.AddReadyHandler(func() { fmt.Println("ready") })
			client.AddMessageHandler(discordbot.CreateLoggingMessageHandler(verbose))
			client.AddErrorHandler(discordbot.CreateErrorLoggingHandler("demo"))
			client.AddDisconnectHandler(func() { fmt.Println("disconnected") })

			if err := client.Run(); err != nil {
				discordlog.Global().WithError(err).Fatal("connect failed")
			}

			select {}
		},
	}
}

// sayCmd posts a one-off text message via the REST API.
func sayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "say",
		Short: "Send a text message to a channel",
		Run: func(cmd *cobra.Command, args []string) {
			if channelID == "" || len(args) == 0 {
				fmt.Println("usage: say --channel <id> <message>")
				return
			}

			cfg := config.NewBotConfig()
			client, err := discordbot.New(cfg)
			if err != nil {
				discordlog.Global().WithError(err).Fatal("client construction failed")
			}

			id, err := client.SendMessage(channelID, args[0], tts)
			if err != nil {
				discordlog.Global().WithError(err).Fatal("send message failed")
			}
			fmt.Println("sent message", id)
		},
	}
	cmd.Flags().StringVar(&channelID, "channel", "", "channel ID to send to")
	cmd.Flags().BoolVar(&tts, "tts", false, "send as a text-to-speech message")
	return cmd
}

// playCmd joins a voice channel and streams a raw PCM16 file into it.
func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join a voice channel and play a raw PCM16 file",
		Run: func(cmd *cobra.Command, args []string) {
			if guildID == "" || channelID == "" || filePath == "" {
				fmt.Println("usage: play --guild <id> --channel <id> --file <path.pcm>")
				return
			}

			cfg := config.NewBotConfig()
			client, err := discordbot.New(cfg)
			if err != nil {
				discordlog.Global().WithError(err).Fatal("client construction failed")
			}

			client.AddReadyHandler(func() {
				if err := client.Join(guildID, channelID); err != nil {
					discordlog.Global().WithError(err).Error("join failed")
				}
			})

			if err := client.Run(); err != nil {
				discordlog.Global().WithError(err).Fatal("connect failed")
			}

			// Give the voice handshake a moment before handing off the
			// source; StartSpeaking queues it regardless if it's early.
			time.Sleep(2 * time.Second)

			src, err := audiosource.OpenFile(filePath)
			if err != nil {
				discordlog.Global().WithError(err).Fatal("open file failed")
			}
			client.StartSpeaking(guildID, src)

			select {}
		},
	}
	cmd.Flags().StringVar(&guildID, "guild", "", "guild ID")
	cmd.Flags().StringVar(&channelID, "channel", "", "voice channel ID")
	cmd.Flags().StringVar(&filePath, "file", "", "path to a raw PCM16 48kHz stereo file")
	return cmd
}

// devicesCmd lists input devices available for microphone capture.
func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available microphone input devices",
		Run: func(cmd *cobra.Command, args []string) {
			devices, err := audiosource.ListInputDevices()
			if err != nil {
				discordlog.Global().WithError(err).Fatal("device enumeration failed")
			}
			for _, d := range devices {
				def := ""
				if d.IsDefault {
					def = " (default)"
				}
				fmt.Printf("[%d] %s%s - %d channels @ %.0fHz\n", d.ID, d.Name, def, d.MaxInputChannels, d.DefaultSampleRate)
			}
		},
	}
}
