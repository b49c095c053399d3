package model

// Documented column defaults. These mirror the DDL defaults in migrations/
// and are what ResetSetting writes back, since SQLite cannot express
// `SET col = DEFAULT` in an UPDATE.
const (
	DefaultHLTimeout     = 1
	DefaultStarThreshold = 5
	DefaultStarMaxDays   = 7
	DefaultStarFormat    = "⭐ **{stars}**"
	DefaultStarEmoji     = "⭐"
	DefaultStarSuperMult = 1
)

// ProfileDefaults maps the settable profile columns to their documented
// defaults. The key set doubles as the whitelist of columns that
// UpdateSetting/ResetSetting accept.
var ProfileDefaults = map[string]any{
	"receive_highlights":   true,
	"default_ephemeral":    false,
	"silence_hl":           false,
	"reminders_in_channel": false,
	"hl_timeout":           DefaultHLTimeout,
	"timezone":             nil,
}

// GuildConfigDefaults maps the settable guild config columns to defaults.
var GuildConfigDefaults = map[string]any{
	"starboard":        false,
	"allow_highlights": true,
}

// StarboardDefaults maps the settable starboard columns to defaults.
var StarboardDefaults = map[string]any{
	"channel":    nil,
	"threshold":  DefaultStarThreshold,
	"format":     DefaultStarFormat,
	"max_days":   DefaultStarMaxDays,
	"emoji":      DefaultStarEmoji,
	"super_mult": DefaultStarSuperMult,
}
