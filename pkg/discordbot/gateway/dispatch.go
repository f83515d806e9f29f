package gateway

import (
	"encoding/json"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/boterror"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/voice"
)

// dispatch routes a DISPATCH frame by event name (spec §4.1). A lookup
// switch here stands in for the original's ad-hoc string-hash dispatch
// (spec §9: "an implementation detail").
func (s *Session) dispatch(event string, raw json.RawMessage) {
	if s.cfg.DebugGateway {
		s.logger.LogGatewayEvent(event, map[string]interface{}{"seq": s.lastSeq})
	}

	switch event {
	case "READY":
		s.onReady(raw)
	case "RESUMED":
		for _, h := range s.resumeHandlers {
			if h != nil {
				go h()
			}
		}
	case "GUILD_CREATE":
		s.onGuildCreate(raw)
	case "GUILD_DELETE":
		s.onGuildDelete(raw)
	case "VOICE_STATE_UPDATE":
		s.onVoiceStateUpdate(raw)
	case "VOICE_SERVER_UPDATE":
		s.onVoiceServerUpdate(raw)
	case "MESSAGE_CREATE":
		s.onMessageCreate(raw)
	case "INVALID_SESSION":
		var resumable bool
		_ = json.Unmarshal(raw, &resumable)
		s.invalidSession(resumable)
	}
}

func (s *Session) onReady(raw json.RawMessage) {
	var p readyPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeProtocol))
		return
	}

	user := s.createUser(p.User)

	s.mu.Lock()
	s.sessionID = p.SessionID
	s.botUserID = user.ID
	s.mu.Unlock()

	for _, h := range s.readyHandlers {
		if h != nil {
			go h()
		}
	}
}

// onGuildCreate constructs the Guild then parses its channels, members,
// and voice_states arrays into the guild's maps / the cache (spec §4.1).
func (s *Session) onGuildCreate(raw json.RawMessage) {
	var p guildCreatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeProtocol))
		return
	}

	guild := s.cache.UpsertGuild(p.ID)
	guild.Name = p.Name

	for _, ch := range p.Channels {
		s.createChannel(guild, ch)
	}
	for _, m := range p.Members {
		s.createMember(guild, m)
	}
	for _, vs := range p.VoiceStates {
		s.createVoiceState(guild, vs)
	}
}

func (s *Session) onGuildDelete(raw json.RawMessage) {
	var p struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(raw, &p)
	s.cache.DeleteGuild(p.ID)
}

// onVoiceStateUpdate upserts the VoiceState; if it's the bot's own user
// going channel-less, the voice session for that guild is torn down
// (spec §4.1, §3 invariant, §8 invariant).
func (s *Session) onVoiceStateUpdate(raw json.RawMessage) {
	var p voiceStatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeProtocol))
		return
	}

	guild, ok := s.cache.GetGuild(p.GuildID)
	if !ok {
		// §8 boundary case: VOICE_STATE_UPDATE before GUILD_CREATE is
		// dropped silently, no guild context to attach it to.
		return
	}

	s.createVoiceState(guild, p)

	s.mu.Lock()
	botID := s.botUserID
	s.mu.Unlock()

	if p.UserID == botID && p.ChannelID == nil {
		s.cache.RemoveVoiceSession(p.GuildID)
	}

	if member, ok := guild.Members[p.UserID]; ok {
		for _, h := range s.voiceStateHandlers {
			if h != nil {
				go h(member)
			}
		}
	}
}

// onVoiceServerUpdate builds a new voice.Session from {token, guild_id,
// endpoint} plus the bot's own session ID, replacing any prior session
// for the guild, and hands off a pending audio source if one was queued
// (spec §4.1).
func (s *Session) onVoiceServerUpdate(raw json.RawMessage) {
	var p voiceServerUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeProtocol))
		return
	}

	guild, ok := s.cache.GetGuild(p.GuildID)
	if !ok {
		return
	}

	s.mu.Lock()
	botID := s.botUserID
	gwSessionID := s.sessionID
	s.mu.Unlock()

	if _, ok := guild.Members[botID]; !ok {
		return
	}

	// Replacing the prior session stops it before the new one starts
	// (spec §5 ordering guarantee).
	s.cache.RemoveVoiceSession(p.GuildID)

	vs := voice.New(s.cfg, voice.ServerUpdate{
		Token:     p.Token,
		GuildID:   p.GuildID,
		Endpoint:  p.Endpoint,
		SessionID: gwSessionID,
		UserID:    botID,
	})
	vs.OnError = func(err *boterror.BotError) { s.fireError(err) }

	s.cache.SetVoiceSession(p.GuildID, vs)

	// Dialing and the IP-discovery round trip happen off the gateway
	// reader goroutine so a slow voice handshake never stalls gateway
	// heartbeats.
	go func() {
		if err := vs.Connect(); err != nil {
			s.fireError(boterror.WrapError(err, boterror.CodeTransport))
			return
		}

		if src, ok := s.cache.TakePendingSource(p.GuildID); ok {
			vs.StartSpeaking(src)
		}
	}()
}

func (s *Session) onMessageCreate(raw json.RawMessage) {
	var p messagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.fireError(boterror.WrapError(err, boterror.CodeProtocol))
		return
	}

	msg := s.createMessage(p)
	if msg == nil {
		return
	}

	for _, h := range s.messageHandlers {
		if h != nil {
			go h(msg)
		}
	}
}
