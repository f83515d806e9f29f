package voice

import "encoding/json"

// Opcodes on the voice websocket (Discord Voice Gateway v4).
const (
	OpIdentify           = 0
	OpSelectProtocol     = 1
	OpReady              = 2
	OpHeartbeat          = 3
	OpSessionDescription = 4
	OpSpeaking           = 5
	OpHeartbeatAck       = 6
	OpResume             = 7
	OpHello              = 8
	OpResumed            = 9
)

type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
}

type helloData struct {
	HeartbeatInterval float64 `json:"heartbeat_interval"`
}

type identifyData struct {
	ServerID  string `json:"server_id"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
}

type resumeData struct {
	ServerID  string `json:"server_id"`
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

type readyData struct {
	SSRC uint32 `json:"ssrc"`
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

type selectProtocolPayload struct {
	Protocol string `json:"protocol"`
	Data     struct {
		Address string `json:"address"`
		Port    int    `json:"port"`
		Mode    string `json:"mode"`
	} `json:"data"`
}

type sessionDescriptionData struct {
	SecretKey [32]byte `json:"secret_key"`
}

type speakingData struct {
	Speaking int    `json:"speaking"`
	Delay    int    `json:"delay"`
	SSRC     uint32 `json:"ssrc"`
}
