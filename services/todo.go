package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

type TodoService struct {
	store store.Store
	log   zerolog.Logger
}

func NewTodoService(s store.Store, log zerolog.Logger) *TodoService {
	return &TodoService{store: s, log: log}
}

func (s *TodoService) AddTodo(ctx context.Context, userID int64, content string, category *string) (*model.Todo, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.NewFieldError("todo", userID, "content", model.ErrConstraintViolation)
	}
	return s.store.Todos().Add(ctx, userID, content, category)
}

func (s *TodoService) GetTodo(ctx context.Context, userID int64, todoID string) (*model.Todo, error) {
	return s.store.Todos().Get(ctx, userID, todoID)
}

func (s *TodoService) ListTodos(ctx context.Context, userID int64) ([]*model.Todo, error) {
	return s.store.Todos().List(ctx, userID)
}

// ListTodosByCategory filters the owner's todos down to one category, or
// to the uncategorized ones when category is nil.
func (s *TodoService) ListTodosByCategory(ctx context.Context, userID int64, category *string) ([]*model.Todo, error) {
	all, err := s.store.Todos().List(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []*model.Todo
	for _, td := range all {
		switch {
		case category == nil && td.Category == nil:
			out = append(out, td)
		case category != nil && td.Category != nil && *td.Category == *category:
			out = append(out, td)
		}
	}
	return out, nil
}

func (s *TodoService) SetTodoCategory(ctx context.Context, userID int64, todoID string, category *string) error {
	return s.store.Todos().SetCategory(ctx, userID, todoID, category)
}

func (s *TodoService) DeleteTodo(ctx context.Context, userID int64, todoID string) error {
	return s.store.Todos().Delete(ctx, userID, todoID)
}

func (s *TodoService) AddCategory(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NewFieldError("todo category", userID, "name", model.ErrConstraintViolation)
	}
	return s.store.Todos().AddCategory(ctx, userID, name)
}

func (s *TodoService) RemoveCategory(ctx context.Context, userID int64, name string) error {
	return s.store.Todos().RemoveCategory(ctx, userID, name)
}

func (s *TodoService) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	return s.store.Todos().ListCategories(ctx, userID)
}
