// Package services holds the application-facing operations over the
// store: thin orchestration, input validation before writes, and the
// settings metadata plumbing.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

type ProfileService struct {
	store store.Store
	log   zerolog.Logger
}

func NewProfileService(s store.Store, log zerolog.Logger) *ProfileService {
	return &ProfileService{store: s, log: log}
}

func (s *ProfileService) CreateProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	p, err := s.store.Profiles().Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("user_id", userID).Msg("profile created")
	return p, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// DeleteProfile removes the profile and everything it owns.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID int64) error {
	if err := s.store.Profiles().Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Int64("user_id", userID).Msg("profile and owned records deleted")
	return nil
}

// SetTimezone validates the IANA name before persisting it.
func (s *ProfileService) SetTimezone(ctx context.Context, userID int64, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil || tz == "" || tz == "Local" {
		return model.NewFieldError("profile", userID, "timezone", model.ErrConstraintViolation)
	}
	return s.store.Profiles().UpdateSetting(ctx, userID, "timezone", tz)
}

func (s *ProfileService) SetBlocks(ctx context.Context, userID int64, blocks []int64) error {
	return s.store.Profiles().SetBlocks(ctx, userID, blocks)
}

// AddHighlight rejects blank or overlong trigger phrases up front so the
// failure carries a useful error instead of a raw driver message.
func (s *ProfileService) AddHighlight(ctx context.Context, userID int64, content string) (*model.Highlight, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > 512 {
		return nil, model.NewFieldError("highlight", userID, "content", model.ErrConstraintViolation)
	}
	return s.store.Highlights().Add(ctx, userID, content)
}

func (s *ProfileService) ListHighlights(ctx context.Context, userID int64) ([]*model.Highlight, error) {
	return s.store.Highlights().List(ctx, userID)
}

func (s *ProfileService) RemoveHighlight(ctx context.Context, userID int64, content string) error {
	return s.store.Highlights().Remove(ctx, userID, content)
}
