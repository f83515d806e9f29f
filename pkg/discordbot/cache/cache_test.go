package cache

import (
	"testing"

	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/audio"
	"github.com/EOlivier48/libDiscordBot/pkg/discordbot/model"
)

type fakeVoiceHandle struct {
	guildID string
	closed  bool
}

func (f *fakeVoiceHandle) GuildID() string { return f.guildID }
func (f *fakeVoiceHandle) Close()          { f.closed = true }

func TestUpsertUserSharesHandle(t *testing.T) {
	c := New()

	u1 := c.UpsertUser(&model.User{ID: "1", Username: "alice"})
	u2 := c.UpsertUser(&model.User{ID: "1", Username: "alice2"})

	if u1 != u2 {
		t.Fatal("expected the same shared User pointer on a cache hit")
	}
	if u1.Username != "alice2" {
		t.Fatalf("expected in-place refresh, got %q", u1.Username)
	}
}

func TestUpsertGuildReturnsExisting(t *testing.T) {
	c := New()
	g1 := c.UpsertGuild("g1")
	g1.Name = "first"
	g2 := c.UpsertGuild("g1")

	if g1 != g2 {
		t.Fatal("expected the same Guild pointer on a cache hit")
	}
	if g2.Name != "first" {
		t.Fatal("expected UpsertGuild to not clobber an existing guild's fields")
	}
}

func TestDeleteGuildClosesVoiceSession(t *testing.T) {
	c := New()
	c.UpsertGuild("g1")
	vh := &fakeVoiceHandle{guildID: "g1"}
	c.SetVoiceSession("g1", vh)

	c.DeleteGuild("g1")

	if !vh.closed {
		t.Fatal("expected voice session to be closed on guild delete")
	}
	if _, ok := c.GetGuild("g1"); ok {
		t.Fatal("expected guild to be removed")
	}
	if _, ok := c.GetVoiceSession("g1"); ok {
		t.Fatal("expected voice session to be removed")
	}
}

func TestPendingSourceQueueAndTake(t *testing.T) {
	c := New()
	var src audio.Source = audio.SourceFunc(func(buf []int16) int { return 0 })

	c.QueuePendingSource("g1", src)
	got, ok := c.TakePendingSource("g1")
	if !ok || got == nil {
		t.Fatal("expected to take the queued source")
	}
	if _, ok := c.TakePendingSource("g1"); ok {
		t.Fatal("expected source to be consumed after Take")
	}
}

func TestFlushClosesAllVoiceSessions(t *testing.T) {
	c := New()
	c.UpsertUser(&model.User{ID: "1"})
	c.UpsertGuild("g1")
	vh := &fakeVoiceHandle{guildID: "g1"}
	c.SetVoiceSession("g1", vh)

	c.Flush()

	if !vh.closed {
		t.Fatal("expected voice session to be closed on flush")
	}
	if _, ok := c.GetUser("1"); ok {
		t.Fatal("expected users to be cleared on flush")
	}
	if _, ok := c.GetGuild("g1"); ok {
		t.Fatal("expected guilds to be cleared on flush")
	}
}
