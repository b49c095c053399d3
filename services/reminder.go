package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

type ReminderService struct {
	store store.Store
	log   zerolog.Logger
}

func NewReminderService(s store.Store, log zerolog.Logger) *ReminderService {
	return &ReminderService{store: s, log: log}
}

func (s *ReminderService) AddReminder(ctx context.Context, r *model.Reminder) (*model.Reminder, error) {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return nil, model.NewFieldError("reminder", r.UserID, "content", model.ErrConstraintViolation)
	}
	if r.Delta < time.Second {
		return nil, model.NewFieldError("reminder", r.UserID, "delta", model.ErrConstraintViolation)
	}
	if r.Epoch.IsZero() {
		r.Epoch = time.Now()
	}
	return s.store.Reminders().Add(ctx, r)
}

func (s *ReminderService) GetReminder(ctx context.Context, userID int64, reminderID string) (*model.Reminder, error) {
	return s.store.Reminders().Get(ctx, userID, reminderID)
}

func (s *ReminderService) ListReminders(ctx context.Context, userID int64) ([]*model.Reminder, error) {
	return s.store.Reminders().List(ctx, userID)
}

func (s *ReminderService) DeleteReminder(ctx context.Context, userID int64, reminderID string) error {
	return s.store.Reminders().Delete(ctx, userID, reminderID)
}

// CollectDue pops every reminder due at now: one-shot reminders are
// deleted, repeating ones re-anchored by their delta, and the batch is
// returned for delivery.
func (s *ReminderService) CollectDue(ctx context.Context, now time.Time) ([]*model.Reminder, error) {
	due, err := s.store.Reminders().Due(ctx, now)
	if err != nil {
		return nil, err
	}
	for _, r := range due {
		if r.Repeating {
			if _, err := s.store.Reminders().Advance(ctx, r.UserID, r.ReminderID); err != nil {
				s.log.Error().Err(err).
					Str("reminder_id", r.ReminderID).
					Msg("failed to advance repeating reminder")
			}
			continue
		}
		if err := s.store.Reminders().Delete(ctx, r.UserID, r.ReminderID); err != nil {
			s.log.Error().Err(err).
				Str("reminder_id", r.ReminderID).
				Msg("failed to retire fired reminder")
		}
	}
	return due, nil
}
