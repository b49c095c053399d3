package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
	"github.com/vesper-bot/vesper-store/store/sqlite"
)

func newStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "vesper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFormatValue(t *testing.T) {
	tz := "Europe/Berlin"
	ch := int64(42)
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "Not set"},
		{"true", true, "Yes"},
		{"false", false, "No"},
		{"nil string ptr", (*string)(nil), "Not set"},
		{"string ptr", &tz, "Europe/Berlin"},
		{"nil int64 ptr", (*int64)(nil), "Not set"},
		{"int64 ptr", &ch, "42"},
		{"int", 5, "5"},
		{"string", "⭐", "⭐"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.in))
		})
	}
}

func TestRegisterValidatesTemplate(t *testing.T) {
	r := NewRegistry()
	k := Key{Entity: EntityProfile, Column: "timezone"}

	err := r.Register(k, Setting{DisplayName: "Timezone", Template: "no marker here"})
	require.ErrorIs(t, err, model.ErrMalformedTemplate)
	err = r.Register(k, Setting{DisplayName: "Timezone", Template: "{} and {}"})
	require.ErrorIs(t, err, model.ErrMalformedTemplate)

	require.NoError(t, r.Register(k, Setting{DisplayName: "Timezone", Template: "tz: {}"}))
	err = r.Register(k, Setting{DisplayName: "Timezone", Template: "tz: {}"})
	require.ErrorIs(t, err, model.ErrAlreadyExists)
}

// The default registry and the store whitelists must agree on what is
// settable, column for column.
func TestDefaultRegistryMatchesWhitelists(t *testing.T) {
	r := Default()
	for entity, defaults := range map[Entity]map[string]any{
		EntityProfile:     model.ProfileDefaults,
		EntityGuildConfig: model.GuildConfigDefaults,
		EntityStarboard:   model.StarboardDefaults,
	} {
		keys := r.Keys(entity)
		assert.Len(t, keys, len(defaults), "entity %s", entity)
		for _, k := range keys {
			_, ok := defaults[k.Column]
			assert.True(t, ok, "registry column %s.%s missing from defaults", entity, k.Column)
		}
	}
}

func TestDescribeRendersLiveValues(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ren := NewRenderer(Default(), s)

	const userID = 1
	_, err := s.Profiles().Create(ctx, userID)
	require.NoError(t, err)

	d, err := ren.Describe(ctx, Key{Entity: EntityProfile, Column: "timezone"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "Timezone", d.DisplayName)
	assert.Equal(t, "Timezone used when showing you times: Not set", d.Text)

	require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "timezone", "Europe/Berlin"))
	d, err = ren.Describe(ctx, Key{Entity: EntityProfile, Column: "timezone"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "Timezone used when showing you times: Europe/Berlin", d.Text)

	d, err = ren.Describe(ctx, Key{Entity: EntityProfile, Column: "receive_highlights"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "Deliver your triggered highlights to you: Yes", d.Text)

	require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "receive_highlights", false))
	d, err = ren.Describe(ctx, Key{Entity: EntityProfile, Column: "receive_highlights"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "Deliver your triggered highlights to you: No", d.Text)

	require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "hl_timeout", 3))
	d, err = ren.Describe(ctx, Key{Entity: EntityProfile, Column: "hl_timeout"}, userID)
	require.NoError(t, err)
	assert.Equal(t, "Minutes of channel activity before your highlights resume: 3", d.Text)
}

func TestDescribeGuildAndStarboard(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ren := NewRenderer(Default(), s)

	const guildID = 2
	_, err := s.Guilds().Upsert(ctx, guildID)
	require.NoError(t, err)

	d, err := ren.Describe(ctx, Key{Entity: EntityGuildConfig, Column: "starboard"}, guildID)
	require.NoError(t, err)
	assert.Equal(t, "Whether the starboard is enabled: No", d.Text)

	d, err = ren.Describe(ctx, Key{Entity: EntityStarboard, Column: "channel"}, guildID)
	require.NoError(t, err)
	assert.Equal(t, "Channel starred messages are reposted to: Not set", d.Text)

	require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "channel", int64(424242)))
	d, err = ren.Describe(ctx, Key{Entity: EntityStarboard, Column: "channel"}, guildID)
	require.NoError(t, err)
	assert.Equal(t, "Channel starred messages are reposted to: 424242", d.Text)

	d, err = ren.Describe(ctx, Key{Entity: EntityStarboard, Column: "threshold"}, guildID)
	require.NoError(t, err)
	assert.Equal(t, "Stars required before a message reaches the starboard: 5", d.Text)
}

func TestDescribeAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ren := NewRenderer(Default(), s)

	const userID = 3
	_, err := s.Profiles().Create(ctx, userID)
	require.NoError(t, err)

	ds, err := ren.DescribeAll(ctx, EntityProfile, userID)
	require.NoError(t, err)
	require.Len(t, ds, len(model.ProfileDefaults))
	// Sorted by column name; every template fully substituted.
	for i := 1; i < len(ds); i++ {
		assert.Less(t, ds[i-1].Key.Column, ds[i].Key.Column)
	}
	for _, d := range ds {
		assert.NotContains(t, d.Text, Marker)
	}
}

func TestDescribeErrors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	ren := NewRenderer(Default(), s)

	_, err := ren.Describe(ctx, Key{Entity: EntityProfile, Column: "created_at"}, 1)
	require.ErrorIs(t, err, model.ErrUnknownSetting)

	_, err = ren.Describe(ctx, Key{Entity: EntityProfile, Column: "timezone"}, 999)
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = ren.DescribeAll(ctx, Entity("bogus"), 1)
	require.ErrorIs(t, err, model.ErrUnknownSetting)
}
