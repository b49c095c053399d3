package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

// StarFormatMarker is the substitution point a starboard post format must
// contain.
const StarFormatMarker = "{stars}"

type StarboardService struct {
	store store.Store
	log   zerolog.Logger
}

func NewStarboardService(s store.Store, log zerolog.Logger) *StarboardService {
	return &StarboardService{store: s, log: log}
}

func (s *StarboardService) GetStarboard(ctx context.Context, guildID int64) (*model.Starboard, error) {
	return s.store.Starboards().Get(ctx, guildID)
}

// SetFormat checks for the substitution marker before writing so the
// caller gets a field-level error rather than a check constraint failure.
func (s *StarboardService) SetFormat(ctx context.Context, guildID int64, format string) error {
	if !strings.Contains(format, StarFormatMarker) {
		return model.NewFieldError("starboard", guildID, "format", model.ErrConstraintViolation)
	}
	return s.store.Starboards().UpdateSetting(ctx, guildID, "format", format)
}

func (s *StarboardService) SetIgnored(ctx context.Context, guildID int64, ignored []int64) error {
	return s.store.Starboards().SetIgnored(ctx, guildID, ignored)
}

// RenderPost substitutes a star count into the guild's configured format.
func (s *StarboardService) RenderPost(ctx context.Context, guildID int64, stars int) (string, error) {
	sb, err := s.store.Starboards().Get(ctx, guildID)
	if err != nil {
		return "", err
	}
	return strings.Replace(sb.Format, StarFormatMarker, strconv.Itoa(stars), 1), nil
}

// RecordStar upserts the stored star state for one message. The caller
// supplies the count; tallying reactions is the bot runtime's concern.
func (s *StarboardService) RecordStar(ctx context.Context, star *model.Star) (*model.Star, error) {
	if star.Stars < 0 {
		return nil, model.NewFieldError("star", star.MessageID, "stars", model.ErrConstraintViolation)
	}
	return s.store.Stars().Record(ctx, star)
}

func (s *StarboardService) GetStar(ctx context.Context, guildID, messageID, channelID int64) (*model.Star, error) {
	return s.store.Stars().Get(ctx, guildID, messageID, channelID)
}

func (s *StarboardService) ListStars(ctx context.Context, guildID int64) ([]*model.Star, error) {
	return s.store.Stars().List(ctx, guildID)
}

func (s *StarboardService) DeleteStar(ctx context.Context, guildID, messageID, channelID int64) error {
	return s.store.Stars().Delete(ctx, guildID, messageID, channelID)
}
