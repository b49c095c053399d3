package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

type TagService struct {
	store store.Store
	log   zerolog.Logger
}

func NewTagService(s store.Store, log zerolog.Logger) *TagService {
	return &TagService{store: s, log: log}
}

func (s *TagService) AddTag(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, model.NewFieldError("tag", t.UserID, "name", model.ErrConstraintViolation)
	}
	return s.store.Tags().Add(ctx, t)
}

func (s *TagService) GetTag(ctx context.Context, userID int64, name string) (*model.Tag, error) {
	return s.store.Tags().Get(ctx, userID, name)
}

func (s *TagService) ListTags(ctx context.Context, userID int64) ([]*model.Tag, error) {
	return s.store.Tags().List(ctx, userID)
}

func (s *TagService) DeleteTag(ctx context.Context, userID int64, name string) error {
	return s.store.Tags().Delete(ctx, userID, name)
}
