// Package model holds the entity types mirrored from Discord's gateway
// payloads, plus a generic Result[T] success/failure envelope.
package model

import "time"

// Result is a generic success/failure envelope carrying either a typed
// payload or an error. The library's own REST calls return (T, error)
// pairs and do not use it.
type Result[T any] struct {
	Data    T
	Error   error
	Success bool
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Data: data, Success: true}
}

func Err[T any](err error) Result[T] {
	return Result[T]{Error: err, Success: false}
}

// ConnectionState mirrors a websocket session's lifecycle.
type ConnectionState string

const (
	Disconnected ConnectionState = "disconnected"
	Connecting   ConnectionState = "connecting"
	Connected    ConnectionState = "connected"
	Reconnecting ConnectionState = "reconnecting"
	ErrorState   ConnectionState = "error"
)

// ChannelType enumerates the channel kinds a Guild can contain.
type ChannelType int

const (
	ChannelGuildText ChannelType = iota
	ChannelDM
	ChannelGuildVoice
	ChannelGroupDM
	ChannelCategory
	ChannelNews
	ChannelStore
)

// User is shared by ID across every GuildMember, VoiceState, and Message
// that references it; the cache's upsert rule is what keeps these
// instances aliased.
type User struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        string
	Bot           bool
	Locale        string
	Flags         int
	PublicFlags   int
	PremiumType   int
	System        bool
	MFAEnabled    bool
	Verified      bool
	Email         string
}

// GuildMember exists only within its containing Guild.
type GuildMember struct {
	User         *User
	Nick         string
	Roles        []string
	JoinedAt     time.Time
	Deaf         bool
	Mute         bool
	PremiumSince *time.Time
	VoiceState   *VoiceState
}

// Channel. GuildID is empty for DM/GroupDM channels.
type Channel struct {
	ID               string
	Type             ChannelType
	GuildID          string
	Position         int
	Name             string
	Topic            string
	NSFW             bool
	Bitrate          int
	UserLimit        int
	Recipients       []*User
	ParentID         string
	LastMessageID    string
	Icon             string
	OwnerID          string
	AppID            string
	LastPinTimestamp *time.Time
	RateLimit        int
}

// Guild owns its channels and members.
type Guild struct {
	ID       string
	Name     string
	Channels map[string]*Channel
	Members  map[string]*GuildMember
}

// VoiceState. At most one exists per (Guild, User) pair.
type VoiceState struct {
	Guild       *Guild
	User        *User
	Channel     *Channel
	SessionID   string
	Deaf        bool
	Mute        bool
	SelfDeaf    bool
	SelfMute    bool
	SelfStream  bool
	Suppress    bool
}

// Message. A DM message has no Guild reference and its Channel is
// synthesized rather than looked up.
type Message struct {
	ID              string
	Channel         *Channel
	Guild           *Guild
	Author          *User
	Member          *GuildMember
	Content         string
	Timestamp       time.Time
	EditedTimestamp *time.Time
	MentionEveryone bool
	Mentions        []*GuildMember
}
