// Package gateway drives the main Discord gateway websocket: the
// identify/resume/heartbeat state machine, DISPATCH event routing, and
// the entity cache it exclusively owns (spec §4.1, §4.4).
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/cache"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/discordlog"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// ReadyHandler, ResumeHandler, etc. mirror the teacher's Handler type
// family (types.go) but carry Discord's own payload shapes.
type (
	ReadyHandler          func()
	ResumeHandler         func()
	MessageHandler        func(*model.Message)
	VoiceStateHandler     func(*model.GuildMember)
	DisconnectHandler     func()
	QuitHandler           func()
	ErrorHandler          func(*boterror.BotError)
)

// Session is the gateway websocket's state machine. Its tracked state is
// a model.ConnectionState: Disconnected -> Connecting -> Connected ->
// Reconnecting -> Connected, with ErrorState after a failed dial and
// Disconnected after Quit. The handshake phases (awaiting HELLO,
// identifying or resuming, READY received) are not tracked as states.
type Session struct {
	cfg    *config.BotConfig
	cache  *cache.Cache
	logger *discordlog.Logger

	conn       *websocket.Conn
	gatewayURL string
	sessionID  string
	lastSeq    int
	botUserID  string

	state        model.ConnectionState
	heartbeatAck bool

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex

	readyHandlers      []ReadyHandler
	resumeHandlers     []ResumeHandler
	messageHandlers    []MessageHandler
	voiceStateHandlers []VoiceStateHandler
	disconnectHandlers []DisconnectHandler
	quitHandlers       []QuitHandler
	errorHandlers      []ErrorHandler
}

func New(cfg *config.BotConfig, c *cache.Cache) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		cfg:    cfg,
		cache:  c,
		logger: discordlog.Global().WithComponent("gateway"),
		state:  model.Disconnected,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Session) Cache() *cache.Cache { return s.cache }

func (s *Session) State() model.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) BotUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.botUserID
}

// gatewayBotResponse matches Discord's GET /gateway/bot body.
type gatewayBotResponse struct {
	URL string `json:"url"`
}

// DiscoverGatewayURL performs the REST bootstrap call from spec §6: GET
// /gateway/bot with the bot token, grounded in DiscordClient.cpp's Run().
func (s *Session) DiscoverGatewayURL() (string, error) {
	req, err := http.NewRequest(http.MethodGet, s.cfg.APIBaseURL+"/gateway/bot", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bot "+s.cfg.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", boterror.WrapError(err, boterror.CodeTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", boterror.NewTransportError(fmt.Sprintf("gateway bootstrap failed: %s", resp.Status))
	}

	var body gatewayBotResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", boterror.WrapError(err, boterror.CodeProtocol)
	}

	return body.URL, nil
}

// Connect dials the gateway websocket and starts the reader goroutine.
// It attempts a single dial and returns without waiting for any events.
func (s *Session) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == model.Connected || s.state == model.Connecting {
		return fmt.Errorf("already connected or connecting")
	}
	s.setStateLocked(model.Connecting)

	url := s.gatewayURL
	if url == "" {
		discovered, err := s.DiscoverGatewayURL()
		if err != nil {
			s.setStateLocked(model.ErrorState)
			return err
		}
		s.gatewayURL = discovered
		url = discovered
	}

	conn, _, err := websocket.DefaultDialer.Dial(url+"/?v=6&encoding=json", nil)
	if err != nil {
		s.setStateLocked(model.ErrorState)
		return boterror.WrapError(err, boterror.CodeTransport)
	}

	s.conn = conn
	s.setStateLocked(model.Connected)
	go s.messageLoop()
	return nil
}

func (s *Session) messageLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			var payload Payload
			if err := s.conn.ReadJSON(&payload); err != nil {
				if s.cfg.DebugGateway {
					s.logger.WithError(err).Warn("gateway read error")
				}
				s.triggerReconnect()
				return
			}
			s.handlePayload(&payload)
		}
	}
}

func (s *Session) handlePayload(p *Payload) {
	if p.S != nil {
		s.mu.Lock()
		s.lastSeq = *p.S
		s.mu.Unlock()
	}

	switch p.Op {
	case OpHello:
		var hello helloData
		_ = json.Unmarshal(p.D, &hello)
		s.mu.Lock()
		hasSession := s.sessionID != ""
		s.mu.Unlock()
		if hasSession {
			s.sendResume()
		} else {
			s.sendIdentify()
		}
		go s.heartbeatLoop(time.Duration(hello.HeartbeatInterval) * time.Millisecond)

	case OpHeartbeatAck:
		s.mu.Lock()
		s.heartbeatAck = true
		s.mu.Unlock()

	case OpDispatch:
		if p.T != nil {
			s.dispatch(*p.T, p.D)
		}
	}
}

func (s *Session) sendIdentify() {
	data := identifyData{
		Token: s.cfg.Token,
		Properties: identifyProperties{
			OS:      "linux",
			Browser: "linux",
			Device:  "linux",
		},
		Intents: DefaultIntents,
	}
	if s.cfg.IntentsOverride != nil {
		data.Intents = *s.cfg.IntentsOverride
	}
	raw, _ := json.Marshal(data)
	s.send(Payload{Op: OpIdentify, D: raw})
}

func (s *Session) sendResume() {
	s.mu.Lock()
	data := resumeData{Token: s.cfg.Token, SessionID: s.sessionID, Seq: s.lastSeq}
	s.mu.Unlock()
	raw, _ := json.Marshal(data)
	s.send(Payload{Op: OpResume, D: raw})
}

func (s *Session) send(p Payload) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	return conn.WriteJSON(p)
}

// heartbeatLoop sends HEARTBEAT at the server-dictated interval and
// triggers reconnect on a missed ack (spec §4.1 Heartbeat).
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
			lastSeq := s.lastSeq
			s.mu.Unlock()

			if !acked {
				s.triggerReconnect()
				return
			}

			raw, _ := json.Marshal(lastSeq)
			if err := s.send(Payload{Op: OpHeartbeat, D: raw}); err != nil {
				s.triggerReconnect()
				return
			}

			s.mu.Lock()
			s.heartbeatAck = false
			s.mu.Unlock()
		}
	}
}

// triggerReconnect implements spec §4.1's heartbeat-miss path: close,
// flush the cache, fire OnDisconnect, reopen. The session ID is kept so
// the next HELLO attempts a RESUME.
func (s *Session) triggerReconnect() {
	s.mu.Lock()
	if s.state == model.Reconnecting {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(model.Reconnecting)
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	s.cache.Flush()
	s.fireDisconnect()

	if err := s.Connect(); err != nil {
		s.mu.Lock()
		s.setStateLocked(model.ErrorState)
		s.mu.Unlock()
		s.fireError(boterror.WrapError(err, boterror.CodeTransport))
	}
}

// invalidSession handles the INVALID_SESSION dispatch (spec §4.1): resume
// if the payload is the literal boolean true, else terminate.
func (s *Session) invalidSession(resumable bool) {
	if resumable {
		s.sendResume()
		return
	}
	s.mu.Lock()
	s.sessionID = ""
	s.mu.Unlock()
	s.fireError(boterror.NewSessionError("invalid session, not resumable"))
	s.Quit()
}

// Quit performs an orderly shutdown: close socket, fire OnDisconnect then
// OnQuit (spec §4.1 Shutdown).
func (s *Session) Quit() {
	s.mu.Lock()
	if s.state == model.Disconnected {
		s.mu.Unlock()
		return
	}
	s.cancel()
	conn := s.conn
	s.conn = nil
	s.setStateLocked(model.Disconnected)
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	s.fireDisconnect()
	for _, h := range s.quitHandlers {
		if h != nil {
			go h()
		}
	}
}

func (s *Session) setStateLocked(state model.ConnectionState) {
	s.state = state
}

func (s *Session) fireDisconnect() {
	for _, h := range s.disconnectHandlers {
		if h != nil {
			go h()
		}
	}
}

func (s *Session) fireError(err *boterror.BotError) {
	s.logger.WithError(err).Error("gateway error")
	for _, h := range s.errorHandlers {
		if h != nil {
			go h(err)
		}
	}
}

// SendVoiceStateUpdate implements Join/Leave (spec §6): op 4 with
// {guild_id, channel_id|null, self_mute:false, self_deaf:false}.
func (s *Session) SendVoiceStateUpdate(guildID string, channelID *string) error {
	data := voiceStateUpdateData{GuildID: guildID, ChannelID: channelID}
	raw, _ := json.Marshal(data)
	return s.send(Payload{Op: OpVoiceState, D: raw})
}

func (s *Session) AddReadyHandler(h ReadyHandler) func() {
	s.mu.Lock()
	s.readyHandlers = append(s.readyHandlers, h)
	idx := len(s.readyHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.readyHandlers) {
			s.readyHandlers[idx] = nil
		}
	}
}

func (s *Session) AddResumeHandler(h ResumeHandler) func() {
	s.mu.Lock()
	s.resumeHandlers = append(s.resumeHandlers, h)
	idx := len(s.resumeHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.resumeHandlers) {
			s.resumeHandlers[idx] = nil
		}
	}
}

func (s *Session) AddMessageHandler(h MessageHandler) func() {
	s.mu.Lock()
	s.messageHandlers = append(s.messageHandlers, h)
	idx := len(s.messageHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.messageHandlers) {
			s.messageHandlers[idx] = nil
		}
	}
}

func (s *Session) AddVoiceStateHandler(h VoiceStateHandler) func() {
	s.mu.Lock()
	s.voiceStateHandlers = append(s.voiceStateHandlers, h)
	idx := len(s.voiceStateHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.voiceStateHandlers) {
			s.voiceStateHandlers[idx] = nil
		}
	}
}

func (s *Session) AddDisconnectHandler(h DisconnectHandler) func() {
	s.mu.Lock()
	s.disconnectHandlers = append(s.disconnectHandlers, h)
	idx := len(s.disconnectHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.disconnectHandlers) {
			s.disconnectHandlers[idx] = nil
		}
	}
}

func (s *Session) AddQuitHandler(h QuitHandler) func() {
	s.mu.Lock()
	s.quitHandlers = append(s.quitHandlers, h)
	idx := len(s.quitHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.quitHandlers) {
			s.quitHandlers[idx] = nil
		}
	}
}

func (s *Session) AddErrorHandler(h ErrorHandler) func() {
	s.mu.Lock()
	s.errorHandlers = append(s.errorHandlers, h)
	idx := len(s.errorHandlers) - 1
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if idx < len(s.errorHandlers) {
			s.errorHandlers[idx] = nil
		}
	}
}
