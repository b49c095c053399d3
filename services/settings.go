package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/settings"
	"github.com/vesper-bot/vesper-store/store"
)

// SettingsService routes setting reads and writes by entity and renders
// the metadata descriptions with live values.
type SettingsService struct {
	store store.Store
	reg   *settings.Registry
	ren   *settings.Renderer
	log   zerolog.Logger
}

func NewSettingsService(s store.Store, reg *settings.Registry, log zerolog.Logger) *SettingsService {
	return &SettingsService{
		store: s,
		reg:   reg,
		ren:   settings.NewRenderer(reg, s),
		log:   log,
	}
}

// Describe renders one setting for the given row.
func (s *SettingsService) Describe(ctx context.Context, k settings.Key, id int64) (*settings.Description, error) {
	return s.ren.Describe(ctx, k, id)
}

// DescribeAll renders every setting of an entity for the given row.
func (s *SettingsService) DescribeAll(ctx context.Context, e settings.Entity, id int64) ([]*settings.Description, error) {
	return s.ren.DescribeAll(ctx, e, id)
}

// Update writes one setting. The key must be registered; some columns get
// value validation here so callers see a field-level error instead of a
// check constraint failure.
func (s *SettingsService) Update(ctx context.Context, k settings.Key, id int64, value any) error {
	if _, ok := s.reg.Lookup(k); !ok {
		return fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrUnknownSetting)
	}
	if err := s.validate(k, id, value); err != nil {
		return err
	}
	if err := s.update(ctx, k, id, value); err != nil {
		return err
	}
	s.log.Debug().
		Str("entity", string(k.Entity)).
		Str("column", k.Column).
		Int64("id", id).
		Msg("setting updated")
	return nil
}

// Reset restores one setting to its documented default.
func (s *SettingsService) Reset(ctx context.Context, k settings.Key, id int64) error {
	if _, ok := s.reg.Lookup(k); !ok {
		return fmt.Errorf("setting %s.%s: %w", k.Entity, k.Column, model.ErrUnknownSetting)
	}
	switch k.Entity {
	case settings.EntityProfile:
		return s.store.Profiles().ResetSetting(ctx, id, k.Column)
	case settings.EntityGuildConfig:
		return s.store.Guilds().ResetSetting(ctx, id, k.Column)
	case settings.EntityStarboard:
		return s.store.Starboards().ResetSetting(ctx, id, k.Column)
	default:
		return fmt.Errorf("entity %q: %w", k.Entity, model.ErrUnknownSetting)
	}
}

func (s *SettingsService) validate(k settings.Key, id int64, value any) error {
	switch {
	case k.Entity == settings.EntityProfile && k.Column == "timezone":
		tz, ok := value.(string)
		if !ok || tz == "" || tz == "Local" {
			return model.NewFieldError("profile", id, "timezone", model.ErrConstraintViolation)
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return model.NewFieldError("profile", id, "timezone", model.ErrConstraintViolation)
		}
	}
	return nil
}

func (s *SettingsService) update(ctx context.Context, k settings.Key, id int64, value any) error {
	switch k.Entity {
	case settings.EntityProfile:
		return s.store.Profiles().UpdateSetting(ctx, id, k.Column, value)
	case settings.EntityGuildConfig:
		return s.store.Guilds().UpdateSetting(ctx, id, k.Column, value)
	case settings.EntityStarboard:
		return s.store.Starboards().UpdateSetting(ctx, id, k.Column, value)
	default:
		return fmt.Errorf("entity %q: %w", k.Entity, model.ErrUnknownSetting)
	}
}
