// Package storetest holds the driver-agnostic conformance suite. Both the
// postgres and sqlite stores must pass it unchanged; driver-specific
// behavior (fault injection, container setup) lives in the driver test
// files.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

// Factory returns a ready, migrated, empty store. It is called once per
// suite run; subtests partition the keyspace instead of reopening.
type Factory func(t *testing.T) store.Store

func strPtr(s string) *string { return &s }
func idPtr(v int64) *int64    { return &v }

// Run exercises every Store operation against the given implementation.
func Run(t *testing.T, factory Factory) {
	ctx := context.Background()
	s := factory(t)

	t.Run("ProfileDefaults", func(t *testing.T) {
		const userID = 1001

		p, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, int64(userID), p.UserID)
		assert.True(t, p.ReceiveHighlights)
		assert.False(t, p.DefaultEphemeral)
		assert.False(t, p.SilenceHL)
		assert.False(t, p.RemindersInChannel)
		assert.Equal(t, model.DefaultHLTimeout, p.HLTimeout)
		assert.Nil(t, p.Timezone)
		assert.Empty(t, p.HLBlocks)
		assert.False(t, p.CreatedAt.IsZero())

		_, err = s.Profiles().Create(ctx, userID)
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		_, err = s.Profiles().Get(ctx, 999999)
		require.ErrorIs(t, err, model.ErrNotFound)

		err = s.Profiles().Delete(ctx, 999999)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("ProfileSettings", func(t *testing.T) {
		const userID = 1002
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "timezone", "Europe/Berlin"))
		require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "default_ephemeral", true))
		require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "receive_highlights", false))

		p, err := s.Profiles().Get(ctx, userID)
		require.NoError(t, err)
		require.NotNil(t, p.Timezone)
		assert.Equal(t, "Europe/Berlin", *p.Timezone)
		assert.True(t, p.DefaultEphemeral)
		assert.False(t, p.ReceiveHighlights)

		// hl_timeout is valid on [1, 5] only.
		require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "hl_timeout", 5))
		require.NoError(t, s.Profiles().UpdateSetting(ctx, userID, "hl_timeout", 1))
		err = s.Profiles().UpdateSetting(ctx, userID, "hl_timeout", 0)
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		err = s.Profiles().UpdateSetting(ctx, userID, "hl_timeout", 6)
		require.ErrorIs(t, err, model.ErrConstraintViolation)

		err = s.Profiles().UpdateSetting(ctx, userID, "created_at", 0)
		require.ErrorIs(t, err, model.ErrUnknownSetting)
		err = s.Profiles().UpdateSetting(ctx, userID, "hl_timeout; DROP TABLE profiles", 3)
		require.ErrorIs(t, err, model.ErrUnknownSetting)

		err = s.Profiles().UpdateSetting(ctx, 999999, "timezone", "UTC")
		require.ErrorIs(t, err, model.ErrNotFound)

		require.NoError(t, s.Profiles().ResetSetting(ctx, userID, "timezone"))
		require.NoError(t, s.Profiles().ResetSetting(ctx, userID, "default_ephemeral"))
		p, err = s.Profiles().Get(ctx, userID)
		require.NoError(t, err)
		assert.Nil(t, p.Timezone)
		assert.False(t, p.DefaultEphemeral)

		require.NoError(t, s.Profiles().SetBlocks(ctx, userID, []int64{11, 22, 33}))
		p, err = s.Profiles().Get(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []int64{11, 22, 33}, p.HLBlocks)
	})

	t.Run("ProfileCascade", func(t *testing.T) {
		const userID = 1003
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		_, err = s.Highlights().Add(ctx, userID, "gopher")
		require.NoError(t, err)
		require.NoError(t, s.Todos().AddCategory(ctx, userID, "chores"))
		td, err := s.Todos().Add(ctx, userID, "water plants", strPtr("chores"))
		require.NoError(t, err)
		rem, err := s.Reminders().Add(ctx, &model.Reminder{
			UserID:  userID,
			Content: "standup",
			Epoch:   time.Now(),
			Delta:   time.Hour,
		})
		require.NoError(t, err)
		_, err = s.Tags().Add(ctx, &model.Tag{UserID: userID, Name: "greet", Content: strPtr("hello")})
		require.NoError(t, err)

		require.NoError(t, s.Profiles().Delete(ctx, userID))

		_, err = s.Profiles().Get(ctx, userID)
		require.ErrorIs(t, err, model.ErrNotFound)
		hls, err := s.Highlights().List(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, hls)
		_, err = s.Todos().Get(ctx, userID, td.TodoID)
		require.ErrorIs(t, err, model.ErrNotFound)
		cats, err := s.Todos().ListCategories(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, cats)
		_, err = s.Reminders().Get(ctx, userID, rem.ReminderID)
		require.ErrorIs(t, err, model.ErrNotFound)
		tgs, err := s.Tags().List(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, tgs)

		// A recreated profile starts from a clean slate.
		p, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)
		assert.True(t, p.ReceiveHighlights)
	})

	t.Run("GuildUpsert", func(t *testing.T) {
		const guildID = 2001

		gc, err := s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)
		assert.Equal(t, int64(guildID), gc.GuildID)
		assert.False(t, gc.Starboard)
		assert.True(t, gc.AllowHighlights)
		assert.Empty(t, gc.DisabledChannels)
		assert.Empty(t, gc.DisabledCommands)

		// The starboard row is born with the config.
		sb, err := s.Starboards().Get(ctx, guildID)
		require.NoError(t, err)
		assert.Nil(t, sb.Channel)
		assert.Equal(t, model.DefaultStarThreshold, sb.Threshold)
		assert.Equal(t, model.DefaultStarFormat, sb.Format)
		assert.Equal(t, model.DefaultStarMaxDays, sb.MaxDays)
		assert.Equal(t, model.DefaultStarEmoji, sb.Emoji)
		assert.Equal(t, model.DefaultStarSuperMult, sb.SuperMult)
		assert.Empty(t, sb.Ignored)

		// Re-upserting must not clobber prior writes.
		require.NoError(t, s.Guilds().UpdateSetting(ctx, guildID, "starboard", true))
		gc, err = s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)
		assert.True(t, gc.Starboard)
	})

	t.Run("GuildSettings", func(t *testing.T) {
		const guildID = 2002
		_, err := s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)

		require.NoError(t, s.Guilds().UpdateSetting(ctx, guildID, "allow_highlights", false))
		require.NoError(t, s.Guilds().SetDisabledChannels(ctx, guildID, []int64{5, 6}))
		require.NoError(t, s.Guilds().SetDisabledCommands(ctx, guildID, []string{"tag", "todo"}))

		gc, err := s.Guilds().Get(ctx, guildID)
		require.NoError(t, err)
		assert.False(t, gc.AllowHighlights)
		assert.Equal(t, []int64{5, 6}, gc.DisabledChannels)
		assert.Equal(t, []string{"tag", "todo"}, gc.DisabledCommands)

		err = s.Guilds().UpdateSetting(ctx, guildID, "threshold", 3)
		require.ErrorIs(t, err, model.ErrUnknownSetting)

		require.NoError(t, s.Guilds().ResetSetting(ctx, guildID, "allow_highlights"))
		gc, err = s.Guilds().Get(ctx, guildID)
		require.NoError(t, err)
		assert.True(t, gc.AllowHighlights)

		_, err = s.Guilds().Get(ctx, 888888)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("GuildCascade", func(t *testing.T) {
		const guildID = 2003
		_, err := s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)
		_, err = s.Stars().Record(ctx, &model.Star{
			GuildID: guildID, MessageID: 42, ChannelID: 7, Stars: 3, StarboardMessageID: 900,
		})
		require.NoError(t, err)

		require.NoError(t, s.Guilds().Delete(ctx, guildID))

		_, err = s.Guilds().Get(ctx, guildID)
		require.ErrorIs(t, err, model.ErrNotFound)
		_, err = s.Starboards().Get(ctx, guildID)
		require.ErrorIs(t, err, model.ErrNotFound)
		_, err = s.Stars().Get(ctx, guildID, 42, 7)
		require.ErrorIs(t, err, model.ErrNotFound)

		err = s.Guilds().Delete(ctx, guildID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Highlights", func(t *testing.T) {
		const userID = 1004
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		_, err = s.Highlights().Add(ctx, userID, "zig")
		require.NoError(t, err)
		_, err = s.Highlights().Add(ctx, userID, "ale")
		require.NoError(t, err)
		_, err = s.Highlights().Add(ctx, userID, "zig")
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		hls, err := s.Highlights().List(ctx, userID)
		require.NoError(t, err)
		require.Len(t, hls, 2)
		assert.Equal(t, "ale", hls[0].Content)
		assert.Equal(t, "zig", hls[1].Content)

		require.NoError(t, s.Highlights().Remove(ctx, userID, "ale"))
		err = s.Highlights().Remove(ctx, userID, "ale")
		require.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.Highlights().Add(ctx, 999999, "orphan")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Todos", func(t *testing.T) {
		const userID = 1005
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		// Categories must be registered before todos may reference them.
		_, err = s.Todos().Add(ctx, userID, "file taxes", strPtr("admin"))
		require.ErrorIs(t, err, model.ErrInvalidCategory)
		require.ErrorIs(t, err, model.ErrConstraintViolation)

		require.NoError(t, s.Todos().AddCategory(ctx, userID, "admin"))
		require.NoError(t, s.Todos().AddCategory(ctx, userID, "errands"))
		err = s.Todos().AddCategory(ctx, userID, "admin")
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		td, err := s.Todos().Add(ctx, userID, "file taxes", strPtr("admin"))
		require.NoError(t, err)
		require.NotNil(t, td.Category)
		assert.Equal(t, "admin", *td.Category)

		plain, err := s.Todos().Add(ctx, userID, "read book", nil)
		require.NoError(t, err)
		assert.Nil(t, plain.Category)

		got, err := s.Todos().Get(ctx, userID, td.TodoID)
		require.NoError(t, err)
		assert.Equal(t, td.Content, got.Content)

		all, err := s.Todos().List(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		err = s.Todos().SetCategory(ctx, userID, plain.TodoID, strPtr("nope"))
		require.ErrorIs(t, err, model.ErrInvalidCategory)
		require.NoError(t, s.Todos().SetCategory(ctx, userID, plain.TodoID, strPtr("errands")))

		// A category with live references cannot be removed.
		err = s.Todos().RemoveCategory(ctx, userID, "errands")
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		require.NoError(t, s.Todos().SetCategory(ctx, userID, plain.TodoID, nil))
		require.NoError(t, s.Todos().RemoveCategory(ctx, userID, "errands"))
		err = s.Todos().RemoveCategory(ctx, userID, "errands")
		require.ErrorIs(t, err, model.ErrNotFound)

		cats, err := s.Todos().ListCategories(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, []string{"admin"}, cats)

		require.NoError(t, s.Todos().Delete(ctx, userID, plain.TodoID))
		err = s.Todos().Delete(ctx, userID, plain.TodoID)
		require.ErrorIs(t, err, model.ErrNotFound)

		_, err = s.Todos().Add(ctx, 999999, "orphan", nil)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Reminders", func(t *testing.T) {
		const userID = 1006
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		epoch := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		rem, err := s.Reminders().Add(ctx, &model.Reminder{
			UserID:         userID,
			Content:        "water plants",
			Epoch:          epoch,
			Delta:          2 * time.Hour,
			Repeating:      true,
			DeliverChannel: idPtr(777),
		})
		require.NoError(t, err)
		require.NotEmpty(t, rem.ReminderID)

		got, err := s.Reminders().Get(ctx, userID, rem.ReminderID)
		require.NoError(t, err)
		assert.True(t, got.Epoch.Equal(epoch), "epoch round-trip")
		assert.Equal(t, 2*time.Hour, got.Delta)
		assert.True(t, got.Repeating)
		require.NotNil(t, got.DeliverChannel)
		assert.Equal(t, int64(777), *got.DeliverChannel)

		_, err = s.Reminders().Add(ctx, &model.Reminder{
			UserID: userID, Content: "bad", Epoch: epoch, Delta: 0,
		})
		require.ErrorIs(t, err, model.ErrConstraintViolation)

		oneShot, err := s.Reminders().Add(ctx, &model.Reminder{
			UserID: userID, Content: "dentist", Epoch: epoch, Delta: time.Hour,
		})
		require.NoError(t, err)

		all, err := s.Reminders().List(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		// Both fire points sit at or before epoch+2h; nothing is due
		// before epoch+1h.
		due, err := s.Reminders().Due(ctx, epoch.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Empty(t, due)
		due, err = s.Reminders().Due(ctx, epoch.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Len(t, due, 2)

		// Advancing re-anchors the repeating one past this window.
		adv, err := s.Reminders().Advance(ctx, userID, rem.ReminderID)
		require.NoError(t, err)
		assert.True(t, adv.Epoch.Equal(epoch.Add(2*time.Hour)))
		due, err = s.Reminders().Due(ctx, epoch.Add(2*time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, oneShot.ReminderID, due[0].ReminderID)

		_, err = s.Reminders().Advance(ctx, userID, oneShot.ReminderID)
		require.ErrorIs(t, err, model.ErrConstraintViolation)

		require.NoError(t, s.Reminders().Delete(ctx, userID, oneShot.ReminderID))
		err = s.Reminders().Delete(ctx, userID, oneShot.ReminderID)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("Tags", func(t *testing.T) {
		const userID = 1007
		_, err := s.Profiles().Create(ctx, userID)
		require.NoError(t, err)

		_, err = s.Tags().Add(ctx, &model.Tag{UserID: userID, Name: "greet", Content: strPtr("hello there")})
		require.NoError(t, err)
		_, err = s.Tags().Add(ctx, &model.Tag{UserID: userID, Name: "empty"})
		require.NoError(t, err)
		_, err = s.Tags().Add(ctx, &model.Tag{UserID: userID, Name: "greet", Content: strPtr("again")})
		require.ErrorIs(t, err, model.ErrAlreadyExists)

		tag, err := s.Tags().Get(ctx, userID, "greet")
		require.NoError(t, err)
		require.NotNil(t, tag.Content)
		assert.Equal(t, "hello there", *tag.Content)

		tag, err = s.Tags().Get(ctx, userID, "empty")
		require.NoError(t, err)
		assert.Nil(t, tag.Content)

		all, err := s.Tags().List(ctx, userID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "empty", all[0].Name)
		assert.Equal(t, "greet", all[1].Name)

		require.NoError(t, s.Tags().Delete(ctx, userID, "empty"))
		_, err = s.Tags().Get(ctx, userID, "empty")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("StarboardSettings", func(t *testing.T) {
		const guildID = 2004
		_, err := s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)

		require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "channel", int64(444)))
		require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "threshold", 1))
		require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "emoji", "🌟"))
		require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "format", "{stars} stars!"))
		require.NoError(t, s.Starboards().UpdateSetting(ctx, guildID, "super_mult", 2))
		require.NoError(t, s.Starboards().SetIgnored(ctx, guildID, []int64{9}))

		err = s.Starboards().UpdateSetting(ctx, guildID, "threshold", 0)
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		err = s.Starboards().UpdateSetting(ctx, guildID, "max_days", 0)
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		err = s.Starboards().UpdateSetting(ctx, guildID, "super_mult", 0)
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		// The substitution point is mandatory.
		err = s.Starboards().UpdateSetting(ctx, guildID, "format", "no placeholder")
		require.ErrorIs(t, err, model.ErrConstraintViolation)
		err = s.Starboards().UpdateSetting(ctx, guildID, "stars", 1)
		require.ErrorIs(t, err, model.ErrUnknownSetting)

		sb, err := s.Starboards().Get(ctx, guildID)
		require.NoError(t, err)
		require.NotNil(t, sb.Channel)
		assert.Equal(t, int64(444), *sb.Channel)
		assert.Equal(t, 1, sb.Threshold)
		assert.Equal(t, "🌟", sb.Emoji)
		assert.Equal(t, "{stars} stars!", sb.Format)
		assert.Equal(t, 2, sb.SuperMult)
		assert.Equal(t, []int64{9}, sb.Ignored)

		require.NoError(t, s.Starboards().ResetSetting(ctx, guildID, "channel"))
		require.NoError(t, s.Starboards().ResetSetting(ctx, guildID, "threshold"))
		require.NoError(t, s.Starboards().ResetSetting(ctx, guildID, "format"))
		sb, err = s.Starboards().Get(ctx, guildID)
		require.NoError(t, err)
		assert.Nil(t, sb.Channel)
		assert.Equal(t, model.DefaultStarThreshold, sb.Threshold)
		assert.Equal(t, model.DefaultStarFormat, sb.Format)
	})

	t.Run("Stars", func(t *testing.T) {
		const guildID = 2005
		_, err := s.Guilds().Upsert(ctx, guildID)
		require.NoError(t, err)

		_, err = s.Stars().Record(ctx, &model.Star{
			GuildID: 777777, MessageID: 1, ChannelID: 1, Stars: 1, StarboardMessageID: 1,
		})
		require.ErrorIs(t, err, model.ErrNotFound)

		star := &model.Star{GuildID: guildID, MessageID: 10, ChannelID: 20, Stars: 3, StarboardMessageID: 500}
		_, err = s.Stars().Record(ctx, star)
		require.NoError(t, err)

		// Re-recording the same message updates in place.
		star.Stars = 4
		_, err = s.Stars().Record(ctx, star)
		require.NoError(t, err)

		got, err := s.Stars().Get(ctx, guildID, 10, 20)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Stars)
		assert.Equal(t, int64(500), got.StarboardMessageID)

		all, err := s.Stars().List(ctx, guildID)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		require.NoError(t, s.Stars().Delete(ctx, guildID, 10, 20))
		err = s.Stars().Delete(ctx, guildID, 10, 20)
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("FieldErrorContext", func(t *testing.T) {
		_, err := s.Profiles().Get(ctx, 424242)
		require.Error(t, err)
		var fe *model.FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "profile", fe.Entity)
		assert.Equal(t, "424242", fe.Key)
	})
}
