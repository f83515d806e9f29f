// Package discordbot is the library's public facade: it wires a
// config.BotConfig, cache.Cache, and gateway.Session together behind the
// small surface described in spec §6 (Create/Run/Quit/Join/Leave/
// StartSpeaking/SendMessage), the way VocalsClient wires a WebSocketClient
// and AudioProcessor behind a handful of top-level calls.
package discordbot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/cache"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/gateway"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// Client is the top-level handle a program holds for the lifetime of the
// bot connection.
type Client struct {
	cfg     *config.BotConfig
	cache   *cache.Cache
	gateway *gateway.Session
	logger  *discordlog.Logger
}

// Create builds a Client from a bare bot token, the convenience entry
// point (spec §6 Create(token)) for callers who don't need the rest of
// BotConfig's knobs.
func Create(token string) (*Client, error) {
	cfg := config.NewBotConfig()
	cfg.Token = token
	return New(cfg)
}

// New validates cfg (or, when cfg is nil, a config loaded from the
// environment by config.NewBotConfig) and constructs a Client without
// connecting (grounded in NewVocalsClient's separation of construction
// from Connect). A non-nil cfg is used as given.
func New(cfg *config.BotConfig) (*Client, error) {
	if cfg == nil {
		cfg = config.NewBotConfig()
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, boterror.NewUserInputError(fmt.Sprintf("invalid configuration: %v", problems))
	}

	c := cache.New()
	gw := gateway.New(cfg, c)

	return &Client{
		cfg:     cfg,
		cache:   c,
		gateway: gw,
		logger:  discordlog.Global().WithComponent("client"),
	}, nil
}

// Run connects the gateway and returns once the websocket is dialed (or
// the connection attempt fails); it does not block until Quit. Events
// are handled on background goroutines until Quit is called.
func (c *Client) Run() error {
	return c.gateway.Connect()
}

// Quit performs an orderly shutdown of the gateway (and, transitively,
// every active voice session via the cache flush it triggers).
func (c *Client) Quit() {
	c.gateway.Quit()
	c.cache.Flush()
}

// Cache exposes the entity cache for read access (user lookups, guild
// iteration) without giving callers gateway internals.
func (c *Client) Cache() *cache.Cache { return c.cache }

// Join sends a VOICE_STATE_UPDATE to enter a voice channel (spec §6).
func (c *Client) Join(guildID, channelID string) error {
	return c.gateway.SendVoiceStateUpdate(guildID, &channelID)
}

// Leave sends a channel-less VOICE_STATE_UPDATE to exit voice (spec §6).
func (c *Client) Leave(guildID string) error {
	return c.gateway.SendVoiceStateUpdate(guildID, nil)
}

// StartSpeaking attaches an audio source to a guild's voice session. If
// no voice session exists yet (no VOICE_SERVER_UPDATE), the source is
// queued on the cache and handed to the session once it connects; if the
// session exists but key exchange hasn't finished, the session holds the
// source until SESSION_DESCRIPTION arrives (spec §4.2, §6).
func (c *Client) StartSpeaking(guildID string, src audio.Source) {
	if vh, ok := c.cache.GetVoiceSession(guildID); ok {
		if vs, ok := vh.(interface{ StartSpeaking(audio.Source) }); ok {
			vs.StartSpeaking(src)
			return
		}
	}
	c.cache.QueuePendingSource(guildID, src)
}

// PauseSpeaking, ResumeSpeaking, and StopSpeaking control the active
// pipeline for a guild, a no-op if no voice session or pipeline is
// live (spec §4.2 Speaking control).
func (c *Client) PauseSpeaking(guildID string) {
	if vh, ok := c.cache.GetVoiceSession(guildID); ok {
		if vs, ok := vh.(interface{ PauseSpeaking() }); ok {
			vs.PauseSpeaking()
		}
	}
}

func (c *Client) ResumeSpeaking(guildID string) {
	if vh, ok := c.cache.GetVoiceSession(guildID); ok {
		if vs, ok := vh.(interface{ ResumeSpeaking() }); ok {
			vs.ResumeSpeaking()
		}
	}
}

func (c *Client) StopSpeaking(guildID string) {
	if vh, ok := c.cache.GetVoiceSession(guildID); ok {
		if vs, ok := vh.(interface{ StopSpeaking() }); ok {
			vs.StopSpeaking()
		}
	}
}

// sendMessageRequest/Response mirror Discord's POST /channels/{id}/messages.
type sendMessageRequest struct {
	Content string `json:"content"`
	TTS     bool   `json:"tts"`
}

type sendMessageResponse struct {
	ID string `json:"id"`
}

// SendMessage posts a text message to a channel via the REST API (spec
// §6), grounded in the teacher's generic JSON request/response pattern
// in api.go. Only guild text channels accept messages; any other
// channel (including one the cache hasn't seen yet) is silently
// ignored per the user-input error policy.
func (c *Client) SendMessage(channelID, content string, tts bool) (string, error) {
	ch, ok := c.cache.FindChannel(channelID)
	if !ok || ch.Type != model.ChannelGuildText {
		return "", nil
	}

	body, err := json.Marshal(sendMessageRequest{Content: content, TTS: tts})
	if err != nil {
		return "", boterror.WrapError(err, boterror.CodeProtocol)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.cfg.APIBaseURL, channelID)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", boterror.WrapError(err, boterror.CodeTransport)
	}
	req.Header.Set("Authorization", "Bot "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", boterror.WrapError(err, boterror.CodeTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", boterror.NewTransportError(fmt.Sprintf("send message failed: %s", resp.Status))
	}

	var out sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", boterror.WrapError(err, boterror.CodeProtocol)
	}
	return out.ID, nil
}

// AddReadyHandler, AddMessageHandler, etc. delegate straight to the
// gateway session; Client exists so callers never need to import the
// gateway package themselves.
func (c *Client) AddReadyHandler(h gateway.ReadyHandler) func()               { return c.gateway.AddReadyHandler(h) }
func (c *Client) AddResumeHandler(h gateway.ResumeHandler) func()             { return c.gateway.AddResumeHandler(h) }
func (c *Client) AddMessageHandler(h gateway.MessageHandler) func()           { return c.gateway.AddMessageHandler(h) }
func (c *Client) AddVoiceStateHandler(h gateway.VoiceStateHandler) func()     { return c.gateway.AddVoiceStateHandler(h) }
func (c *Client) AddDisconnectHandler(h gateway.DisconnectHandler) func()     { return c.gateway.AddDisconnectHandler(h) }
func (c *Client) AddQuitHandler(h gateway.QuitHandler) func()                 { return c.gateway.AddQuitHandler(h) }
func (c *Client) AddErrorHandler(h gateway.ErrorHandler) func()               { return c.gateway.AddErrorHandler(h) }
