package gateway

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/cache"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/config"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

func newTestSession() *Session {
	return New(&config.BotConfig{Token: "t"}, cache.New())
}

// TestCreateMessageDMHasNoGuild covers spec §8's boundary case: a
// MESSAGE_CREATE with no guild_id synthesizes a channel with no Guild
// reference.
func TestCreateMessageDMHasNoGuild(t *testing.T) {
	s := newTestSession()

	msg := s.createMessage(messagePayload{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "",
		Author:    userPayload{ID: "u1", Username: "alice"},
		Content:   "hi",
	})

	if msg == nil {
		t.Fatal("expected a non-nil message for a DM")
	}
	if msg.Guild != nil {
		t.Fatal("expected a DM message to have no Guild reference")
	}
	if msg.Channel == nil || msg.Channel.Type != model.ChannelDM {
		t.Fatalf("expected a synthesized DM channel, got %+v", msg.Channel)
	}
}

func TestCreateMessageUnknownGuildDropped(t *testing.T) {
	s := newTestSession()

	msg := s.createMessage(messagePayload{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "does-not-exist",
		Author:    userPayload{ID: "u1"},
	})

	if msg != nil {
		t.Fatal("expected a message referencing an unknown guild to be dropped")
	}
}

// TestCreateVoiceStateSharesMemberAcrossEvents covers spec §3's
// single-shared-handle invariant: the same GuildMember instance is
// updated in place, not replaced, across repeated VOICE_STATE_UPDATEs.
func TestCreateVoiceStateSharesMemberAcrossEvents(t *testing.T) {
	s := newTestSession()
	guild := s.cache.UpsertGuild("g1")

	chanID := "voice1"
	vs1 := s.createVoiceState(guild, voiceStatePayload{
		GuildID:   "g1",
		ChannelID: &chanID,
		UserID:    "u1",
		Member:    &memberPayload{User: userPayload{ID: "u1", Username: "alice"}},
		SessionID: "sess1",
	})
	if vs1 == nil {
		t.Fatal("expected a voice state to be created")
	}

	member := guild.Members["u1"]
	if member == nil || member.VoiceState != vs1 {
		t.Fatal("expected the member's VoiceState to be attached")
	}

	vs2 := s.createVoiceState(guild, voiceStatePayload{
		GuildID:   "g1",
		ChannelID: nil,
		UserID:    "u1",
	})
	if vs2 != nil {
		t.Fatal("expected a channel-less update to return nil")
	}
	if member.VoiceState != nil {
		t.Fatal("expected the member's VoiceState to be cleared")
	}
}

func TestCreateChannelReturnsSharedHandleOnRepeat(t *testing.T) {
	s := newTestSession()
	guild := s.cache.UpsertGuild("g1")
	guild.Name = "Test Guild"

	ch := s.createChannel(guild, channelPayload{ID: "c1", GuildID: "g1", Name: "general", Type: 0})
	if ch.ID != "c1" || ch.Name != "general" {
		t.Fatalf("unexpected channel: %+v", ch)
	}

	again := s.createChannel(guild, channelPayload{ID: "c1", GuildID: "g1", Name: "renamed"})
	if again != ch {
		t.Fatal("expected createChannel to return the same shared channel on a repeat ID")
	}
	if again.Name != "general" {
		t.Fatal("expected the first-seen channel fields to stick, not be overwritten by a replay")
	}
}
