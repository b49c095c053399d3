package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

type GuildService struct {
	store store.Store
	log   zerolog.Logger
}

func NewGuildService(s store.Store, log zerolog.Logger) *GuildService {
	return &GuildService{store: s, log: log}
}

// EnsureGuild registers a guild on first contact; safe to call on every
// event.
func (s *GuildService) EnsureGuild(ctx context.Context, guildID int64) (*model.GuildConfig, error) {
	return s.store.Guilds().Upsert(ctx, guildID)
}

func (s *GuildService) GetGuild(ctx context.Context, guildID int64) (*model.GuildConfig, error) {
	return s.store.Guilds().Get(ctx, guildID)
}

func (s *GuildService) DeleteGuild(ctx context.Context, guildID int64) error {
	if err := s.store.Guilds().Delete(ctx, guildID); err != nil {
		return err
	}
	s.log.Info().Int64("guild_id", guildID).Msg("guild config and starboard deleted")
	return nil
}

func (s *GuildService) SetDisabledChannels(ctx context.Context, guildID int64, channels []int64) error {
	return s.store.Guilds().SetDisabledChannels(ctx, guildID, channels)
}

func (s *GuildService) SetDisabledCommands(ctx context.Context, guildID int64, commands []string) error {
	return s.store.Guilds().SetDisabledCommands(ctx, guildID, commands)
}
