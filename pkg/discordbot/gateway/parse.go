package gateway

import (
	"time"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// Wire-format payload shapes. Field names follow Discord's JSON exactly;
// parsing into model.* goes through the cache's upsert methods so a
// repeated ID always resolves to the same shared handle (spec §4.4).

type userPayload struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Bot           bool   `json:"bot"`
	Locale        string `json:"locale"`
	Flags         int    `json:"flags"`
	PublicFlags   int    `json:"public_flags"`
	PremiumType   int    `json:"premium_type"`
	System        bool   `json:"system"`
	MFAEnabled    bool   `json:"mfa_enabled"`
	Verified      bool   `json:"verified"`
	Email         string `json:"email"`
}

type memberPayload struct {
	User         userPayload `json:"user"`
	Nick         string      `json:"nick"`
	Roles        []string    `json:"roles"`
	JoinedAt     string      `json:"joined_at"`
	Deaf         bool        `json:"deaf"`
	Mute         bool        `json:"mute"`
	PremiumSince *string     `json:"premium_since"`
}

type channelPayload struct {
	ID               string       `json:"id"`
	Type             int          `json:"type"`
	GuildID          string       `json:"guild_id"`
	Position         int          `json:"position"`
	Name             string       `json:"name"`
	Topic            string       `json:"topic"`
	NSFW             bool         `json:"nsfw"`
	Bitrate          int          `json:"bitrate"`
	UserLimit        int          `json:"user_limit"`
	Recipients       []userPayload `json:"recipients"`
	ParentID         string       `json:"parent_id"`
	LastMessageID    string       `json:"last_message_id"`
	Icon             string       `json:"icon"`
	OwnerID          string       `json:"owner_id"`
	AppID            string       `json:"application_id"`
	LastPinTimestamp *string      `json:"last_pin_timestamp"`
	RateLimit        int          `json:"rate_limit_per_user"`
}

type voiceStatePayload struct {
	GuildID    string `json:"guild_id"`
	ChannelID  *string `json:"channel_id"`
	UserID     string `json:"user_id"`
	Member     *memberPayload `json:"member"`
	SessionID  string `json:"session_id"`
	Deaf       bool   `json:"deaf"`
	Mute       bool   `json:"mute"`
	SelfDeaf   bool   `json:"self_deaf"`
	SelfMute   bool   `json:"self_mute"`
	SelfStream bool   `json:"self_stream"`
	Suppress   bool   `json:"suppress"`
}

type messagePayload struct {
	ID              string        `json:"id"`
	ChannelID       string        `json:"channel_id"`
	GuildID         string        `json:"guild_id"`
	Author          userPayload   `json:"author"`
	Member          *memberPayload `json:"member"`
	Content         string        `json:"content"`
	Timestamp       string        `json:"timestamp"`
	EditedTimestamp *string       `json:"edited_timestamp"`
	MentionEveryone bool          `json:"mention_everyone"`
	Mentions        []userPayload `json:"mentions"`
}

type readyPayload struct {
	SessionID string      `json:"session_id"`
	User      userPayload `json:"user"`
}

type guildCreatePayload struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Channels    []channelPayload    `json:"channels"`
	Members     []memberPayload     `json:"members"`
	VoiceStates []voiceStatePayload `json:"voice_states"`
}

type voiceServerUpdatePayload struct {
	Token    string `json:"token"`
	GuildID  string `json:"guild_id"`
	Endpoint string `json:"endpoint"`
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// createUser upserts a User by ID, the cache-hit-returns-shared-handle
// rule that keeps every Member/VoiceState/Message aliasing the same
// instance (grounded in DiscordClient.cpp's CreateUser).
func (s *Session) createUser(p userPayload) *model.User {
	return s.cache.UpsertUser(&model.User{
		ID:            p.ID,
		Username:      p.Username,
		Discriminator: p.Discriminator,
		Avatar:        p.Avatar,
		Bot:           p.Bot,
		Locale:        p.Locale,
		Flags:         p.Flags,
		PublicFlags:   p.PublicFlags,
		PremiumType:   p.PremiumType,
		System:        p.System,
		MFAEnabled:    p.MFAEnabled,
		Verified:      p.Verified,
		Email:         p.Email,
	})
}

func (s *Session) createMember(guild *model.Guild, p memberPayload) *model.GuildMember {
	if existing, ok := guild.Members[p.User.ID]; ok {
		return existing
	}

	member := &model.GuildMember{
		User:     s.createUser(p.User),
		Nick:     p.Nick,
		Roles:    p.Roles,
		JoinedAt: parseTimestamp(p.JoinedAt),
		Deaf:     p.Deaf,
		Mute:     p.Mute,
	}
	if p.PremiumSince != nil {
		t := parseTimestamp(*p.PremiumSince)
		member.PremiumSince = &t
	}
	guild.Members[p.User.ID] = member
	return member
}

func (s *Session) createChannel(guild *model.Guild, p channelPayload) *model.Channel {
	if guild != nil {
		if existing, ok := guild.Channels[p.ID]; ok {
			return existing
		}
	}

	channel := &model.Channel{
		ID:            p.ID,
		Type:          model.ChannelType(p.Type),
		GuildID:       p.GuildID,
		Position:      p.Position,
		Name:          p.Name,
		Topic:         p.Topic,
		NSFW:          p.NSFW,
		Bitrate:       p.Bitrate,
		UserLimit:     p.UserLimit,
		ParentID:      p.ParentID,
		LastMessageID: p.LastMessageID,
		Icon:          p.Icon,
		OwnerID:       p.OwnerID,
		AppID:         p.AppID,
		RateLimit:     p.RateLimit,
	}
	if p.LastPinTimestamp != nil {
		t := parseTimestamp(*p.LastPinTimestamp)
		channel.LastPinTimestamp = &t
	}
	for _, r := range p.Recipients {
		channel.Recipients = append(channel.Recipients, s.createUser(r))
	}

	if guild != nil {
		guild.Channels[p.ID] = channel
	}
	return channel
}

// createVoiceState upserts the member if needed, then either attaches or
// clears that member's VoiceState depending on whether channel_id is
// present (spec §4.1 VOICE_STATE_UPDATE, §3 invariant: at most one
// VoiceState per (Guild, User), none when channel-less).
func (s *Session) createVoiceState(guild *model.Guild, p voiceStatePayload) *model.VoiceState {
	var member *model.GuildMember
	if existing, ok := guild.Members[p.UserID]; ok {
		member = existing
	} else if p.Member != nil {
		member = s.createMember(guild, *p.Member)
	} else {
		return nil
	}

	if p.ChannelID == nil {
		member.VoiceState = nil
		return nil
	}

	channel, ok := guild.Channels[*p.ChannelID]
	if !ok {
		channel = &model.Channel{ID: *p.ChannelID, GuildID: guild.ID, Type: model.ChannelGuildVoice}
		guild.Channels[*p.ChannelID] = channel
	}

	vs := &model.VoiceState{
		Guild:      guild,
		User:       member.User,
		Channel:    channel,
		SessionID:  p.SessionID,
		Deaf:       p.Deaf,
		Mute:       p.Mute,
		SelfDeaf:   p.SelfDeaf,
		SelfMute:   p.SelfMute,
		SelfStream: p.SelfStream,
		Suppress:   p.Suppress,
	}
	member.VoiceState = vs
	return vs
}

// createMessage builds a Message, synthesizing a channel-less-guild DM
// channel when guild_id is empty (spec §8 boundary case), and resolving
// mentions against the cache with a fallback fake member for DMs
// (grounded in DiscordClient.cpp's CreateMessage).
func (s *Session) createMessage(p messagePayload) *model.Message {
	var guild *model.Guild
	var channel *model.Channel

	if p.GuildID != "" {
		g, ok := s.cache.GetGuild(p.GuildID)
		if !ok {
			return nil
		}
		guild = g
		if ch, ok := guild.Channels[p.ChannelID]; ok {
			channel = ch
		} else {
			channel = &model.Channel{ID: p.ChannelID, GuildID: p.GuildID}
			guild.Channels[p.ChannelID] = channel
		}
	} else {
		channel = &model.Channel{ID: p.ChannelID, Type: model.ChannelDM}
	}

	author := s.createUser(p.Author)

	msg := &model.Message{
		ID:              p.ID,
		Channel:         channel,
		Guild:           guild,
		Author:          author,
		Content:         p.Content,
		Timestamp:       parseTimestamp(p.Timestamp),
		MentionEveryone: p.MentionEveryone,
	}
	if p.EditedTimestamp != nil {
		t := parseTimestamp(*p.EditedTimestamp)
		msg.EditedTimestamp = &t
	}
	if guild != nil && p.Member != nil {
		msg.Member = s.createMember(guild, *p.Member)
	}

	for _, mentioned := range p.Mentions {
		if guild != nil {
			if member, ok := guild.Members[mentioned.ID]; ok {
				msg.Mentions = append(msg.Mentions, member)
				continue
			}
		}
		// DM mention with no guild member record: synthesize a
		// minimal member wrapping the resolved/created user.
		msg.Mentions = append(msg.Mentions, &model.GuildMember{User: s.createUser(mentioned)})
	}

	return msg
}
