package gateway

import "encoding/json"

// Opcodes used on the main gateway connection (Discord Gateway v6).
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpVoiceState   = 4
	OpResume       = 6
	OpHello        = 10
	OpHeartbeatAck = 11
)

// Intent bits combined into the IDENTIFY payload (spec §8 scenario 1:
// GUILDS | GUILD_VOICE_STATES | GUILD_MESSAGES | DIRECT_MESSAGES = 0x1281).
const (
	IntentGuilds         = 1 << 0
	IntentGuildVoice     = 1 << 7
	IntentGuildMessages  = 1 << 9
	IntentDirectMessages = 1 << 12

	DefaultIntents = IntentGuilds | IntentGuildVoice | IntentGuildMessages | IntentDirectMessages
)

// Payload is the envelope wrapping every gateway frame: {op, d, s, t}.
type Payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  *int            `json:"s,omitempty"`
	T  *string         `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

type identifyProperties struct {
	OS      string `json:"$os"`
	Browser string `json:"$browser"`
	Device  string `json:"$device"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Properties identifyProperties `json:"properties"`
	Intents    int                `json:"intents"`
}

type resumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
}

type voiceStateUpdateData struct {
	GuildID   string  `json:"guild_id"`
	ChannelID *string `json:"channel_id"`
	SelfMute  bool    `json:"self_mute"`
	SelfDeaf  bool    `json:"self_deaf"`
}
