// Package settings is the metadata layer over the settable columns: it
// maps each one to a human-facing display name and a description template
// that is rendered with the live stored value at read time.
package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vesper-bot/vesper-store/model"
)

// Entity names a settings-bearing table.
type Entity string

const (
	EntityProfile     Entity = "profile"
	EntityGuildConfig Entity = "guild_config"
	EntityStarboard   Entity = "starboard"
)

// Key identifies one setting: an entity plus one of its settable columns.
type Key struct {
	Entity Entity
	Column string
}

// Marker is the substitution point in a description template. Each
// template carries exactly one.
const Marker = "{}"

// Setting is the presentation metadata for one settable column.
type Setting struct {
	DisplayName string
	Template    string
	// Format overrides FormatValue for this setting when non-nil.
	Format func(v any) string
}

// FormatValue renders a stored value for humans: nil reads "Not set",
// booleans read "Yes"/"No", everything else formats with %v.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "Not set"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case *string:
		if val == nil {
			return "Not set"
		}
		return *val
	case *int64:
		if val == nil {
			return "Not set"
		}
		return fmt.Sprintf("%d", *val)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Registry holds the Key -> Setting mapping. The zero value is unusable;
// construct with NewRegistry or Default.
type Registry struct {
	m map[Key]Setting
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[Key]Setting)}
}

// Register adds one setting. Templates without exactly one marker are
// rejected with model.ErrMalformedTemplate; re-registering a key is a
// model.ErrAlreadyExists.
func (r *Registry) Register(k Key, s Setting) error {
	if strings.Count(s.Template, Marker) != 1 {
		return fmt.Errorf("setting %s.%s: template %q: %w", k.Entity, k.Column, s.Template, model.ErrMalformedTemplate)
	}
	if _, ok := r.m[k]; ok {
		return fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrAlreadyExists)
	}
	r.m[k] = s
	return nil
}

// Lookup returns the metadata for k.
func (r *Registry) Lookup(k Key) (Setting, bool) {
	s, ok := r.m[k]
	return s, ok
}

// Keys lists the registered columns for an entity, sorted by column name.
func (r *Registry) Keys(e Entity) []Key {
	var out []Key
	for k := range r.m {
		if k.Entity == e {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Column < out[j].Column })
	return out
}

// render substitutes the formatted value into the template.
func (s Setting) render(v any) string {
	format := s.Format
	if format == nil {
		format = FormatValue
	}
	return strings.Replace(s.Template, Marker, format(v), 1)
}

func mustRegister(r *Registry, e Entity, column, displayName, template string) {
	if err := r.Register(Key{Entity: e, Column: column}, Setting{DisplayName: displayName, Template: template}); err != nil {
		panic(err)
	}
}

// Default returns the registry covering every settable column in the
// schema.
func Default() *Registry {
	r := NewRegistry()

	mustRegister(r, EntityProfile, "receive_highlights", "Receive Highlights",
		"Deliver your triggered highlights to you: {}")
	mustRegister(r, EntityProfile, "timezone", "Timezone",
		"Timezone used when showing you times: {}")
	mustRegister(r, EntityProfile, "hl_timeout", "Highlight Timeout",
		"Minutes of channel activity before your highlights resume: {}")
	mustRegister(r, EntityProfile, "default_ephemeral", "Private By Default",
		"Hide your command responses from other users: {}")
	mustRegister(r, EntityProfile, "silence_hl", "Deliver Highlights Silently",
		"Deliver highlight messages without a push notification: {}")
	mustRegister(r, EntityProfile, "reminders_in_channel", "Send Reminders Where Created",
		"Deliver reminders to the channel they were created in: {}")

	mustRegister(r, EntityGuildConfig, "starboard", "Enable Starboard",
		"Whether the starboard is enabled: {}")
	mustRegister(r, EntityGuildConfig, "allow_highlights", "Allow Highlights",
		"Whether members may use highlights in this server: {}")

	mustRegister(r, EntityStarboard, "channel", "Starboard Channel",
		"Channel starred messages are reposted to: {}")
	mustRegister(r, EntityStarboard, "threshold", "Star Threshold",
		"Stars required before a message reaches the starboard: {}")
	mustRegister(r, EntityStarboard, "format", "Starboard Format",
		"Format starboard posts are rendered with: {}")
	mustRegister(r, EntityStarboard, "max_days", "Maximum Message Age",
		"Days before a message becomes too old to star: {}")
	mustRegister(r, EntityStarboard, "emoji", "Star Emoji",
		"Emoji that counts toward the star threshold: {}")
	mustRegister(r, EntityStarboard, "super_mult", "Super Reaction Multiplier",
		"Weight each super reaction carries: {}")

	return r
}
