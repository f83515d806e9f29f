// Package voice drives a single guild's voice websocket plus its UDP
// transport: IP discovery, key exchange, heartbeat, and the lifetime of
// the outbound audio pipeline (spec §4.2).
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
)

// ServerUpdate is the payload a VOICE_SERVER_UPDATE dispatch carries,
// combined with the bot's own session/user IDs to construct a Session.
type ServerUpdate struct {
	Token     string
	GuildID   string
	Endpoint  string
	SessionID string
	UserID    string
}

// Session is the per-guild voice state machine: Connecting ->
// AwaitingHello -> Identifying -> AwaitingReady -> IPDiscovery ->
// AwaitingSessionDescription -> Active -> (optional Resuming) ->
// Terminated.
type Session struct {
	cfg    *config.BotConfig
	logger *discordlog.Logger

	guildID   string
	token     string
	endpoint  string
	sessionID string
	userID    string

	conn    *websocket.Conn
	udpConn *net.UDPConn

	ssrc      uint32
	secretKey audio.SecretKey

	pipeline   *audio.Pipeline
	pendingSrc audio.Source

	heartbeatAck bool
	resuming     bool

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex

	OnSpeakFinish func(guildID string)
	OnError       func(*boterror.BotError)
}

// New constructs (but does not connect) a voice session from a server
// update. The caller is expected to call Connect immediately afterward;
// New is split out so it can be unit-tested without a network dial.
func New(cfg *config.BotConfig, update ServerUpdate) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		cfg:       cfg,
		logger:    discordlog.Global().WithComponent("voice").WithField("guild_id", update.GuildID),
		guildID:   update.GuildID,
		token:     update.Token,
		endpoint:  update.Endpoint,
		sessionID: update.SessionID,
		userID:    update.UserID,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// GuildID and Close satisfy cache.VoiceHandle structurally.
func (s *Session) GuildID() string { return s.guildID }

func (s *Session) Close() {
	s.mu.Lock()
	pipeline := s.pipeline
	conn := s.conn
	udp := s.udpConn
	s.conn = nil
	s.udpConn = nil
	s.mu.Unlock()

	s.cancel()

	// Teardown order per spec §9: stop flag -> join playback -> close UDP
	// -> close websocket -> join heartbeat (heartbeat exits via ctx.Done).
	if pipeline != nil {
		pipeline.Stop()
	}
	if udp != nil {
		udp.Close()
	}
	if conn != nil {
		conn.Close()
	}
}

// Connect strips any :port suffix from the endpoint and dials the voice
// websocket wss://<host>/?v=4 (grounded in VoiceSocket.cpp's constructor).
func (s *Session) Connect() error {
	host := s.endpoint
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}

	conn, _, err := websocket.DefaultDialer.Dial("wss://"+host+"/?v=4", nil)
	if err != nil {
		return boterror.WrapError(err, boterror.CodeTransport)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.messageLoop()
	return nil
}

func (s *Session) messageLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				return
			}

			var p payload
			if err := conn.ReadJSON(&p); err != nil {
				if s.cfg.DebugVoice {
					s.logger.WithError(err).Warn("voice read error")
				}
				s.triggerReconnect()
				return
			}
			s.handlePayload(&p)
		}
	}
}

func (s *Session) handlePayload(p *payload) {
	switch p.Op {
	case OpHello:
		var hello helloData
		_ = json.Unmarshal(p.D, &hello)
		s.mu.Lock()
		resuming := s.resuming
		s.mu.Unlock()
		if resuming {
			s.sendResume()
		} else {
			s.sendIdentify()
		}
		go s.heartbeatLoop(time.Duration(hello.HeartbeatInterval) * time.Millisecond)

	case OpReady:
		var ready readyData
		_ = json.Unmarshal(p.D, &ready)
		go s.onReady(ready)

	case OpSessionDescription:
		var desc sessionDescriptionData
		_ = json.Unmarshal(p.D, &desc)
		s.mu.Lock()
		s.secretKey = audio.SecretKey(desc.SecretKey)
		pending := s.pendingSrc
		s.pendingSrc = nil
		s.mu.Unlock()
		if pending != nil {
			s.startPlayback(pending)
		}

	case OpHeartbeatAck:
		s.mu.Lock()
		s.heartbeatAck = true
		s.mu.Unlock()

	case OpResumed:
		s.logger.Info("voice session resumed")
	}
}

// onReady initializes the UDP transport, performs IP discovery, and
// sends SELECT_PROTOCOL (spec §4.2).
func (s *Session) onReady(ready readyData) {
	s.mu.Lock()
	s.ssrc = ready.SSRC
	s.mu.Unlock()

	remoteAddr := fmt.Sprintf("%s:%d", ready.IP, ready.Port)
	udpAddr, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeTransport))
		return
	}

	udpConn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeTransport))
		return
	}

	s.mu.Lock()
	s.udpConn = udpConn
	s.mu.Unlock()

	ip, port, err := performDiscovery(udpConn, ready.SSRC)
	if err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeTransport))
		return
	}

	sp := selectProtocolPayload{Protocol: "udp"}
	sp.Data.Address = ip
	sp.Data.Port = int(port)
	sp.Data.Mode = "xsalsa20_poly1305"
	raw, _ := json.Marshal(sp)
	s.send(payload{Op: OpSelectProtocol, D: raw})
}

func (s *Session) sendIdentify() {
	data := identifyData{
		ServerID:  s.guildID,
		SessionID: s.sessionID,
		UserID:    s.userID,
		Token:     s.token,
	}
	raw, _ := json.Marshal(data)
	s.send(payload{Op: OpIdentify, D: raw})
}

func (s *Session) sendResume() {
	data := resumeData{ServerID: s.guildID, SessionID: s.sessionID, Token: s.token}
	raw, _ := json.Marshal(data)
	s.send(payload{Op: OpResume, D: raw})
}

func (s *Session) send(p payload) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("voice socket not connected")
	}
	return conn.WriteJSON(p)
}

func (s *Session) heartbeatLoop(interval time.Duration) {
	s.mu.Lock()
	s.heartbeatAck = true
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			acked := s.heartbeatAck
			s.mu.Unlock()

			if !acked {
				s.triggerReconnect()
				return
			}

			if err := s.send(payload{Op: OpHeartbeat}); err != nil {
				s.triggerReconnect()
				return
			}

			s.mu.Lock()
			s.heartbeatAck = false
			s.mu.Unlock()
		}
	}
}

// triggerReconnect closes and restarts the socket; the next HELLO will
// RESUME rather than IDENTIFY (spec §4.2 Heartbeat).
func (s *Session) triggerReconnect() {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.resuming = true
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	if err := s.Connect(); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeTransport))
	}
}

func (s *Session) fireError(err *boterror.BotError) {
	s.logger.WithError(err).Error("voice error")
	if s.OnError != nil {
		s.OnError(err)
	}
}

// StartSpeaking associates an audio source with this session. If the
// key exchange hasn't completed yet, the source is queued and started
// once SESSION_DESCRIPTION arrives (spec §4.2 Speaking control).
func (s *Session) StartSpeaking(src audio.Source) {
	s.mu.Lock()
	hasKey := s.secretKey != audio.SecretKey{}
	if !hasKey {
		s.pendingSrc = src
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.startPlayback(src)
}

func (s *Session) startPlayback(src audio.Source) {
	s.mu.Lock()
	if s.pipeline != nil {
		old := s.pipeline
		s.mu.Unlock()
		old.Stop()
		s.mu.Lock()
	}

	udp := s.udpConn
	ssrc := s.ssrc
	key := s.secretKey
	s.mu.Unlock()

	pipeline, err := audio.NewPipeline(&udpSender{conn: udp}, ssrc, key, src)
	if err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeCodec))
		return
	}
	pipeline.GuildID = s.guildID
	pipeline.OnSpeak = s.sendSpeaking
	pipeline.OnSpeakFinish = func(guildID string) {
		s.mu.Lock()
		s.pipeline = nil
		s.mu.Unlock()
		if s.OnSpeakFinish != nil {
			s.OnSpeakFinish(guildID)
		}
	}

	s.mu.Lock()
	s.pipeline = pipeline
	s.mu.Unlock()

	go pipeline.Run()
}

// PauseSpeaking / ResumeSpeaking toggle the pipeline's pause flag.
func (s *Session) PauseSpeaking() {
	s.mu.Lock()
	p := s.pipeline
	s.mu.Unlock()
	if p != nil {
		p.Pause()
	}
}

func (s *Session) ResumeSpeaking() {
	s.mu.Lock()
	p := s.pipeline
	s.mu.Unlock()
	if p != nil {
		p.Resume()
	}
}

// StopSpeaking stops and joins the playback task, emits Speaking=false,
// and drops the source (spec §4.2).
func (s *Session) StopSpeaking() {
	s.mu.Lock()
	p := s.pipeline
	s.pipeline = nil
	s.pendingSrc = nil
	s.mu.Unlock()
	if p != nil {
		p.Stop()
	}
	s.sendSpeaking(s.guildID, false)
}

// sendSpeaking emits opcode 5: {speaking: 5|0, delay: 0, ssrc}. 5 is the
// microphone+voice-activity bitmask.
func (s *Session) sendSpeaking(_ string, speaking bool) {
	bitmask := 0
	if speaking {
		bitmask = 5
	}
	s.mu.Lock()
	ssrc := s.ssrc
	s.mu.Unlock()
	data := speakingData{Speaking: bitmask, Delay: 0, SSRC: ssrc}
	raw, _ := json.Marshal(data)
	_ = s.send(payload{Op: OpSpeaking, D: raw})
}

// udpSender adapts a *net.UDPConn to audio.FrameSender.
type udpSender struct {
	conn *net.UDPConn
}

func (u *udpSender) Send(packet []byte) error {
	if u.conn == nil {
		return fmt.Errorf("voice UDP socket not established")
	}
	_, err := u.conn.Write(packet)
	return err
}
