// Package cache implements the in-memory entity cache owned exclusively
// by the gateway session (spec §4.4): users, guilds, and voice sessions,
// upserted by ID so a single User instance stays shared across every
// Member, VoiceState, and Message that references it.
package cache

import (
	"sync"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

// VoiceHandle is the minimal surface the cache needs from a live voice
// session. It is satisfied by *voice.Session without the cache package
// importing voice, which would otherwise import gateway's event types
// and create a cycle (gateway -> cache -> voice -> gateway).
type VoiceHandle interface {
	GuildID() string
	Close()
}

// Cache holds every entity the gateway reader has observed. Entity
// upserts happen on the gateway reader goroutine; the pending-source
// queue and Flush are also used from Client methods and the voice
// connect goroutine. The maps are guarded by mu.
type Cache struct {
	mu             sync.RWMutex
	users          map[string]*model.User
	guilds         map[string]*model.Guild
	voiceSessions  map[string]VoiceHandle
	pendingSources map[string]audio.Source
}

func New() *Cache {
	return &Cache{
		users:          make(map[string]*model.User),
		guilds:         make(map[string]*model.Guild),
		voiceSessions:  make(map[string]VoiceHandle),
		pendingSources: make(map[string]audio.Source),
	}
}

// UpsertUser returns the existing shared User handle on a cache hit, or
// registers and returns a new one. Fields are refreshed in place so
// existing references stay live-linked.
func (c *Cache) UpsertUser(u *model.User) *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.users[u.ID]; ok {
		*existing = *u
		return existing
	}

	c.users[u.ID] = u
	return u
}

func (c *Cache) GetUser(id string) (*model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	return u, ok
}

// UpsertGuild registers a new Guild or returns the existing one. Unlike
// users, guild identity isn't refreshed wholesale on GUILD_CREATE replay
// so in-flight channel/member maps aren't clobbered; callers merge fields
// explicitly.
func (c *Cache) UpsertGuild(id string) *model.Guild {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.guilds[id]; ok {
		return g
	}

	g := &model.Guild{
		ID:       id,
		Channels: make(map[string]*model.Channel),
		Members:  make(map[string]*model.GuildMember),
	}
	c.guilds[id] = g
	return g
}

func (c *Cache) GetGuild(id string) (*model.Guild, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.guilds[id]
	return g, ok
}

// FindChannel looks up a channel by ID across every cached guild. DM
// channels aren't guild-owned and so never appear here.
func (c *Cache) FindChannel(channelID string) (*model.Channel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, g := range c.guilds {
		if ch, ok := g.Channels[channelID]; ok {
			return ch, true
		}
	}
	return nil, false
}

// DeleteGuild removes a guild and any voice session keyed on it
// (GUILD_DELETE, spec §4.1).
func (c *Cache) DeleteGuild(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.guilds, id)
	if vh, ok := c.voiceSessions[id]; ok {
		vh.Close()
		delete(c.voiceSessions, id)
	}
}

func (c *Cache) SetVoiceSession(guildID string, handle VoiceHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voiceSessions[guildID] = handle
}

func (c *Cache) GetVoiceSession(guildID string) (VoiceHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vh, ok := c.voiceSessions[guildID]
	return vh, ok
}

// RemoveVoiceSession tears down and forgets the voice session for a
// guild, used when the bot's own VoiceState goes channel-less.
func (c *Cache) RemoveVoiceSession(guildID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if vh, ok := c.voiceSessions[guildID]; ok {
		vh.Close()
		delete(c.voiceSessions, guildID)
	}
}

// QueuePendingSource stashes an audio source provided before the
// matching VOICE_SERVER_UPDATE arrives.
func (c *Cache) QueuePendingSource(guildID string, src audio.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingSources[guildID] = src
}

// TakePendingSource returns and removes a queued source, if any.
func (c *Cache) TakePendingSource(guildID string) (audio.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	src, ok := c.pendingSources[guildID]
	if ok {
		delete(c.pendingSources, guildID)
	}
	return src, ok
}

// Flush clears users, guilds, and voice sessions, performed on heartbeat
// failure before reconnecting (spec §3 Lifecycle, §5 Cancellation).
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, vh := range c.voiceSessions {
		vh.Close()
	}
	c.users = make(map[string]*model.User)
	c.guilds = make(map[string]*model.Guild)
	c.voiceSessions = make(map[string]VoiceHandle)
	c.pendingSources = make(map[string]audio.Source)
}
