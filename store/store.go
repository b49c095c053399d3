package store

import (
	"context"
	"time"

	"github.com/vesper-bot/vesper-store/model"
)

// Store exposes the persistence operations required by services.
// Implementations live under store/<driver>/ (postgres, sqlite) and must
// satisfy the conformance suite in store/storetest.
//
// Every mutating operation runs inside a single transaction: cascades,
// cross-table checks and upserts either commit entirely or not at all.
type Store interface {
	Profiles() Profiles
	Guilds() Guilds
	Highlights() Highlights
	Todos() Todos
	Reminders() Reminders
	Tags() Tags
	Starboards() Starboards
	Stars() Stars
}

type Profiles interface {
	// Create initializes a profile with documented defaults.
	// Fails with model.ErrAlreadyExists when the user already has one.
	Create(ctx context.Context, userID int64) (*model.Profile, error)
	Get(ctx context.Context, userID int64) (*model.Profile, error)
	// Delete removes the profile and every owned highlight, todo, todo
	// category, reminder and tag in one transaction.
	Delete(ctx context.Context, userID int64) error
	// UpdateSetting writes a single settable column. The column must be a
	// key of model.ProfileDefaults.
	UpdateSetting(ctx context.Context, userID int64, column string, value any) error
	// ResetSetting restores a settable column to its documented default.
	ResetSetting(ctx context.Context, userID int64, column string) error
	SetBlocks(ctx context.Context, userID int64, blocks []int64) error
}

type Guilds interface {
	// Upsert creates the guild config on first call, together with its 1:1
	// starboard row, in one transaction. Subsequent calls return the
	// existing config unchanged.
	Upsert(ctx context.Context, guildID int64) (*model.GuildConfig, error)
	Get(ctx context.Context, guildID int64) (*model.GuildConfig, error)
	// Delete cascades through the starboard to its stars.
	Delete(ctx context.Context, guildID int64) error
	UpdateSetting(ctx context.Context, guildID int64, column string, value any) error
	ResetSetting(ctx context.Context, guildID int64, column string) error
	SetDisabledChannels(ctx context.Context, guildID int64, channels []int64) error
	SetDisabledCommands(ctx context.Context, guildID int64, commands []string) error
}

type Highlights interface {
	Add(ctx context.Context, userID int64, content string) (*model.Highlight, error)
	List(ctx context.Context, userID int64) ([]*model.Highlight, error)
	Remove(ctx context.Context, userID int64, content string) error
}

type Todos interface {
	// Add validates the category against the owner's registered category
	// set inside the insert transaction; model.ErrInvalidCategory when the
	// category is set but unregistered.
	Add(ctx context.Context, userID int64, content string, category *string) (*model.Todo, error)
	Get(ctx context.Context, userID int64, todoID string) (*model.Todo, error)
	List(ctx context.Context, userID int64) ([]*model.Todo, error)
	SetCategory(ctx context.Context, userID int64, todoID string, category *string) error
	Delete(ctx context.Context, userID int64, todoID string) error

	AddCategory(ctx context.Context, userID int64, name string) error
	// RemoveCategory refuses while todos still reference the name.
	RemoveCategory(ctx context.Context, userID int64, name string) error
	ListCategories(ctx context.Context, userID int64) ([]string, error)
}

type Reminders interface {
	Add(ctx context.Context, r *model.Reminder) (*model.Reminder, error)
	Get(ctx context.Context, userID int64, reminderID string) (*model.Reminder, error)
	List(ctx context.Context, userID int64) ([]*model.Reminder, error)
	// Due returns reminders whose next firing point (epoch + delta) is at
	// or before now.
	Due(ctx context.Context, now time.Time) ([]*model.Reminder, error)
	// Advance re-anchors a repeating reminder's epoch forward by delta.
	// Fails with model.ErrConstraintViolation for non-repeating reminders.
	Advance(ctx context.Context, userID int64, reminderID string) (*model.Reminder, error)
	Delete(ctx context.Context, userID int64, reminderID string) error
}

type Tags interface {
	Add(ctx context.Context, t *model.Tag) (*model.Tag, error)
	Get(ctx context.Context, userID int64, name string) (*model.Tag, error)
	List(ctx context.Context, userID int64) ([]*model.Tag, error)
	Delete(ctx context.Context, userID int64, name string) error
}

type Starboards interface {
	Get(ctx context.Context, guildID int64) (*model.Starboard, error)
	UpdateSetting(ctx context.Context, guildID int64, column string, value any) error
	ResetSetting(ctx context.Context, guildID int64, column string) error
	SetIgnored(ctx context.Context, guildID int64, ignored []int64) error
}

type Stars interface {
	// Record is an idempotent atomic upsert keyed by
	// (guildID, messageID, channelID); concurrent calls for the same key
	// never produce duplicate rows or lost updates.
	Record(ctx context.Context, s *model.Star) (*model.Star, error)
	Get(ctx context.Context, guildID, messageID, channelID int64) (*model.Star, error)
	List(ctx context.Context, guildID int64) ([]*model.Star, error)
	Delete(ctx context.Context, guildID, messageID, channelID int64) error
}
