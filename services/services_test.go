package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/settings"
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

func strPtr(s string) *string { return &s }

func TestProfileServiceValidation(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewProfileService(st, zerolog.Nop())

	_, err := svc.CreateProfile(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SetTimezone(ctx, 1, "Europe/Berlin"))
	err = svc.SetTimezone(ctx, 1, "Mars/Olympus_Mons")
	require.ErrorIs(t, err, model.ErrConstraintViolation)
	err = svc.SetTimezone(ctx, 1, "")
	require.ErrorIs(t, err, model.ErrConstraintViolation)

	_, err = svc.AddHighlight(ctx, 1, "   ")
	require.ErrorIs(t, err, model.ErrConstraintViolation)
	hl, err := svc.AddHighlight(ctx, 1, "  gopher  ")
	require.NoError(t, err)
	assert.Equal(t, "gopher", hl.Content)
}

func TestTodoServiceByCategory(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewTodoService(st, zerolog.Nop())

	_, err := st.Profiles().Create(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, svc.AddCategory(ctx, 1, "chores"))

	_, err = svc.AddTodo(ctx, 1, "dishes", strPtr("chores"))
	require.NoError(t, err)
	_, err = svc.AddTodo(ctx, 1, "laundry", strPtr("chores"))
	require.NoError(t, err)
	_, err = svc.AddTodo(ctx, 1, "daydream", nil)
	require.NoError(t, err)

	_, err = svc.AddTodo(ctx, 1, "", nil)
	require.ErrorIs(t, err, model.ErrConstraintViolation)

	chores, err := svc.ListTodosByCategory(ctx, 1, strPtr("chores"))
	require.NoError(t, err)
	assert.Len(t, chores, 2)

	loose, err := svc.ListTodosByCategory(ctx, 1, nil)
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, "daydream", loose[0].Content)
}

func TestReminderServiceCollectDue(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewReminderService(st, zerolog.Nop())

	_, err := st.Profiles().Create(ctx, 1)
	require.NoError(t, err)

	epoch := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	oneShot, err := svc.AddReminder(ctx, &model.Reminder{
		UserID: 1, Content: "dentist", Epoch: epoch, Delta: time.Hour,
	})
	require.NoError(t, err)
	repeating, err := svc.AddReminder(ctx, &model.Reminder{
		UserID: 1, Content: "standup", Epoch: epoch, Delta: time.Hour, Repeating: true,
	})
	require.NoError(t, err)

	_, err = svc.AddReminder(ctx, &model.Reminder{UserID: 1, Content: "too soon", Epoch: epoch, Delta: 0})
	require.ErrorIs(t, err, model.ErrConstraintViolation)

	due, err := svc.CollectDue(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, due, 2)

	// The one-shot is retired, the repeating one re-anchored an hour out.
	_, err = svc.GetReminder(ctx, 1, oneShot.ReminderID)
	require.ErrorIs(t, err, model.ErrNotFound)
	rep, err := svc.GetReminder(ctx, 1, repeating.ReminderID)
	require.NoError(t, err)
	assert.True(t, rep.Epoch.Equal(epoch.Add(time.Hour)))

	due, err = svc.CollectDue(ctx, epoch.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestStarboardService(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	guilds := NewGuildService(st, zerolog.Nop())
	svc := NewStarboardService(st, zerolog.Nop())

	_, err := guilds.EnsureGuild(ctx, 1)
	require.NoError(t, err)

	err = svc.SetFormat(ctx, 1, "no marker")
	require.ErrorIs(t, err, model.ErrConstraintViolation)
	require.NoError(t, svc.SetFormat(ctx, 1, "🌟 {stars} 🌟"))

	post, err := svc.RenderPost(ctx, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "🌟 7 🌟", post)

	_, err = svc.RecordStar(ctx, &model.Star{GuildID: 1, MessageID: 5, ChannelID: 6, Stars: -1})
	require.ErrorIs(t, err, model.ErrConstraintViolation)
	_, err = svc.RecordStar(ctx, &model.Star{GuildID: 1, MessageID: 5, ChannelID: 6, Stars: 10, StarboardMessageID: 30})
	require.NoError(t, err)

	star, err := svc.GetStar(ctx, 1, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, 10, star.Stars)
}

func TestSettingsService(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	svc := NewSettingsService(st, settings.Default(), zerolog.Nop())

	_, err := st.Profiles().Create(ctx, 1)
	require.NoError(t, err)
	_, err = st.Guilds().Upsert(ctx, 2)
	require.NoError(t, err)

	tzKey := settings.Key{Entity: settings.EntityProfile, Column: "timezone"}
	require.NoError(t, svc.Update(ctx, tzKey, 1, "Europe/Berlin"))
	err = svc.Update(ctx, tzKey, 1, "Nowhere/Nonsense")
	require.ErrorIs(t, err, model.ErrConstraintViolation)

	d, err := svc.Describe(ctx, tzKey, 1)
	require.NoError(t, err)
	assert.Equal(t, "Timezone used when showing you times: Europe/Berlin", d.Text)

	require.NoError(t, svc.Reset(ctx, tzKey, 1))
	d, err = svc.Describe(ctx, tzKey, 1)
	require.NoError(t, err)
	assert.Equal(t, "Timezone used when showing you times: Not set", d.Text)

	err = svc.Update(ctx, settings.Key{Entity: settings.EntityProfile, Column: "created_at"}, 1, 0)
	require.ErrorIs(t, err, model.ErrUnknownSetting)

	thrKey := settings.Key{Entity: settings.EntityStarboard, Column: "threshold"}
	require.NoError(t, svc.Update(ctx, thrKey, 2, 3))
	ds, err := svc.DescribeAll(ctx, settings.EntityStarboard, 2)
	require.NoError(t, err)
	assert.Len(t, ds, len(model.StarboardDefaults))
}
