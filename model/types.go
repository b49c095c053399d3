package model

import "time"

// Profile is the per-user settings and state root. Every user-owned record
// (highlights, todos, reminders, tags) hangs off one of these.
type Profile struct {
	UserID             int64     `json:"userId"`
	CreatedAt          time.Time `json:"createdAt"`
	ReceiveHighlights  bool      `json:"receiveHighlights"`
	DefaultEphemeral   bool      `json:"defaultEphemeral"`
	SilenceHL          bool      `json:"silenceHl"`
	RemindersInChannel bool      `json:"remindersInChannel"`
	HLTimeout          int       `json:"hlTimeout"`
	Timezone           *string   `json:"timezone,omitempty"`
	HLBlocks           []int64   `json:"hlBlocks"`
}

// GuildConfig is the per-guild settings root. Exactly one starboard row
// accompanies each guild config.
type GuildConfig struct {
	GuildID          int64    `json:"guildId"`
	Starboard        bool     `json:"starboard"`
	AllowHighlights  bool     `json:"allowHighlights"`
	DisabledChannels []int64  `json:"disabledChannels"`
	DisabledCommands []string `json:"disabledCommands"`
}

// Highlight is a literal phrase a user wants to be notified about.
type Highlight struct {
	UserID  int64  `json:"userId"`
	Content string `json:"content"`
}

// Todo is a user task note, optionally filed under one of the owning
// profile's registered categories.
type Todo struct {
	TodoID    string    `json:"todoId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Category  *string   `json:"category,omitempty"`
}

// Reminder fires once at Epoch+Delta, or repeatedly every Delta when
// Repeating is set (Epoch is re-anchored forward on each firing).
type Reminder struct {
	ReminderID     string        `json:"reminderId"`
	UserID         int64         `json:"userId"`
	Content        string        `json:"content"`
	Epoch          time.Time     `json:"epoch"`
	Delta          time.Duration `json:"delta"`
	Repeating      bool          `json:"repeating"`
	DeliverChannel *int64        `json:"deliverChannel,omitempty"`
}

// Tag is a named snippet of text owned by a profile.
type Tag struct {
	UserID  int64   `json:"userId"`
	Name    string  `json:"name"`
	Content *string `json:"content,omitempty"`
}

// Starboard holds a guild's starboard configuration, 1:1 with GuildConfig.
// Format must contain a single {stars} substitution point.
type Starboard struct {
	GuildID   int64   `json:"guildId"`
	Channel   *int64  `json:"channel,omitempty"`
	Threshold int     `json:"threshold"`
	Format    string  `json:"format"`
	MaxDays   int     `json:"maxDays"`
	Emoji     string  `json:"emoji"`
	Ignored   []int64 `json:"ignored"`
	SuperMult int     `json:"superMult"`
}

// Star tracks one starred source message and the starboard copy posted for
// it. There is exactly one row per (guild, message, channel).
type Star struct {
	GuildID            int64 `json:"guildId"`
	MessageID          int64 `json:"messageId"`
	ChannelID          int64 `json:"channelId"`
	Stars              int   `json:"stars"`
	StarboardMessageID int64 `json:"starboardMessageId"`
}
