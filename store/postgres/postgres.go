// Package postgres implements store.Store on PostgreSQL via the pgx
// stdlib driver. It is the shared-deployment path; the sqlite package
// covers single-node installs.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vesper-bot/vesper-store/migrations"
	"github.com/vesper-bot/vesper-store/model"
	"github.com/vesper-bot/vesper-store/store"
)

// Store is the PostgreSQL-backed implementation of store.Store.
type Store struct {
	db *sql.DB

	profiles   *profiles
	guilds     *guilds
	highlights *highlights
	todos      *todos
	reminders  *reminders
	tags       *tags
	starboards *starboards
	stars      *stars
}

var _ store.Store = (*Store)(nil)

// New connects to the database at dsn and applies any pending migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	s.profiles = &profiles{db: db}
	s.guilds = &guilds{db: db}
	s.highlights = &highlights{db: db}
	s.todos = &todos{db: db}
	s.reminders = &reminders{db: db}
	s.tags = &tags{db: db}
	s.starboards = &starboards{db: db}
	s.stars = &stars{db: db}
	return s, nil
}

func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrations.FS, "postgres")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	drv, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx", drv)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying pool for tests and ad-hoc maintenance.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Profiles() store.Profiles     { return s.profiles }
func (s *Store) Guilds() store.Guilds         { return s.guilds }
func (s *Store) Highlights() store.Highlights { return s.highlights }
func (s *Store) Todos() store.Todos           { return s.todos }
func (s *Store) Reminders() store.Reminders   { return s.reminders }
func (s *Store) Tags() store.Tags             { return s.tags }
func (s *Store) Starboards() store.Starboards { return s.starboards }
func (s *Store) Stars() store.Stars           { return s.stars }

// mapErr translates SQLSTATE codes into the model sentinel taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return model.ErrAlreadyExists
		case "23503": // foreign_key_violation
			return model.ErrNotFound
		case "23514", "23502": // check_violation, not_null_violation
			return model.ErrConstraintViolation
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return model.ErrConflictRetry
		}
	}
	return err
}

func mustAffect(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}

// utc truncates to whole seconds so both drivers round-trip identical
// timestamps.
func utc(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

func rollback(tx *sql.Tx) { _ = tx.Rollback() }

// ---- profiles ----

type profiles struct {
	db *sql.DB
}

func (p *profiles) Create(ctx context.Context, userID int64) (*model.Profile, error) {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, created_at) VALUES ($1, $2)`,
		userID, utc(time.Now()))
	if err != nil {
		return nil, model.NewFieldError("profile", userID, "", mapErr(err))
	}
	return p.Get(ctx, userID)
}

func (p *profiles) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT user_id, created_at, receive_highlights, default_ephemeral,
		        silence_hl, reminders_in_channel, hl_timeout, timezone, hl_blocks
		   FROM profiles WHERE user_id = $1`, userID)

	var (
		pr     model.Profile
		blocks string
	)
	err := row.Scan(&pr.UserID, &pr.CreatedAt, &pr.ReceiveHighlights, &pr.DefaultEphemeral,
		&pr.SilenceHL, &pr.RemindersInChannel, &pr.HLTimeout, &pr.Timezone, &blocks)
	if err != nil {
		return nil, model.NewFieldError("profile", userID, "", mapErr(err))
	}
	pr.CreatedAt = pr.CreatedAt.UTC()
	if pr.HLBlocks, err = store.DecodeIDList(blocks); err != nil {
		return nil, fmt.Errorf("decode hl_blocks for profile %d: %w", userID, err)
	}
	return &pr, nil
}

func (p *profiles) Delete(ctx context.Context, userID int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete profile: %w", err)
	}
	defer rollback(tx)

	// The row lock holds off concurrent child inserts until the cascade
	// commits.
	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM profiles WHERE user_id = $1 FOR UPDATE`, userID).Scan(&one); err != nil {
		return model.NewFieldError("profile", userID, "", mapErr(err))
	}

	for _, q := range []string{
		`DELETE FROM highlights WHERE user_id = $1`,
		`DELETE FROM todos WHERE user_id = $1`,
		`DELETE FROM todo_categories WHERE user_id = $1`,
		`DELETE FROM reminders WHERE user_id = $1`,
		`DELETE FROM tags WHERE user_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, userID); err != nil {
			return fmt.Errorf("delete profile %d: %w", userID, mapErr(err))
		}
	}
	return tx.Commit()
}

func (p *profiles) UpdateSetting(ctx context.Context, userID int64, column string, value any) error {
	if _, ok := model.ProfileDefaults[column]; !ok {
		return model.NewFieldError("profile", userID, column, model.ErrUnknownSetting)
	}
	res, err := p.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE profiles SET %s = $1 WHERE user_id = $2`, column), value, userID)
	if err != nil {
		return model.NewFieldError("profile", userID, column, mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("profile", userID, column, model.ErrNotFound))
}

func (p *profiles) ResetSetting(ctx context.Context, userID int64, column string) error {
	def, ok := model.ProfileDefaults[column]
	if !ok {
		return model.NewFieldError("profile", userID, column, model.ErrUnknownSetting)
	}
	return p.UpdateSetting(ctx, userID, column, def)
}

func (p *profiles) SetBlocks(ctx context.Context, userID int64, blocks []int64) error {
	raw, err := store.EncodeIDList(blocks)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE profiles SET hl_blocks = $1 WHERE user_id = $2`, raw, userID)
	if err != nil {
		return model.NewFieldError("profile", userID, "hl_blocks", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("profile", userID, "hl_blocks", model.ErrNotFound))
}

// ---- guild configs ----

type guilds struct {
	db *sql.DB
}

func (g *guilds) Upsert(ctx context.Context, guildID int64) (*model.GuildConfig, error) {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin guild upsert: %w", err)
	}
	defer rollback(tx)

	res, err := tx.ExecContext(ctx,
		`INSERT INTO guild_configs (guild_id) VALUES ($1) ON CONFLICT (guild_id) DO NOTHING`, guildID)
	if err != nil {
		return nil, model.NewFieldError("guild config", guildID, "", mapErr(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO starboards (guild_id) VALUES ($1)`, guildID); err != nil {
			return nil, model.NewFieldError("starboard", guildID, "", mapErr(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return g.Get(ctx, guildID)
}

func (g *guilds) Get(ctx context.Context, guildID int64) (*model.GuildConfig, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT guild_id, starboard, allow_highlights, disabled_channels, disabled_commands
		   FROM guild_configs WHERE guild_id = $1`, guildID)

	var (
		gc       model.GuildConfig
		channels string
		commands string
	)
	if err := row.Scan(&gc.GuildID, &gc.Starboard, &gc.AllowHighlights, &channels, &commands); err != nil {
		return nil, model.NewFieldError("guild config", guildID, "", mapErr(err))
	}
	var err error
	if gc.DisabledChannels, err = store.DecodeIDList(channels); err != nil {
		return nil, fmt.Errorf("decode disabled_channels for guild %d: %w", guildID, err)
	}
	if gc.DisabledCommands, err = store.DecodeStringList(commands); err != nil {
		return nil, fmt.Errorf("decode disabled_commands for guild %d: %w", guildID, err)
	}
	return &gc, nil
}

func (g *guilds) Delete(ctx context.Context, guildID int64) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete guild: %w", err)
	}
	defer rollback(tx)

	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM guild_configs WHERE guild_id = $1 FOR UPDATE`, guildID).Scan(&one); err != nil {
		return model.NewFieldError("guild config", guildID, "", mapErr(err))
	}
	for _, q := range []string{
		`DELETE FROM stars WHERE guild_id = $1`,
		`DELETE FROM starboards WHERE guild_id = $1`,
		`DELETE FROM guild_configs WHERE guild_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, guildID); err != nil {
			return fmt.Errorf("delete guild %d: %w", guildID, mapErr(err))
		}
	}
	return tx.Commit()
}

func (g *guilds) UpdateSetting(ctx context.Context, guildID int64, column string, value any) error {
	if _, ok := model.GuildConfigDefaults[column]; !ok {
		return model.NewFieldError("guild config", guildID, column, model.ErrUnknownSetting)
	}
	res, err := g.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE guild_configs SET %s = $1 WHERE guild_id = $2`, column), value, guildID)
	if err != nil {
		return model.NewFieldError("guild config", guildID, column, mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("guild config", guildID, column, model.ErrNotFound))
}

func (g *guilds) ResetSetting(ctx context.Context, guildID int64, column string) error {
	def, ok := model.GuildConfigDefaults[column]
	if !ok {
		return model.NewFieldError("guild config", guildID, column, model.ErrUnknownSetting)
	}
	return g.UpdateSetting(ctx, guildID, column, def)
}

func (g *guilds) SetDisabledChannels(ctx context.Context, guildID int64, channels []int64) error {
	raw, err := store.EncodeIDList(channels)
	if err != nil {
		return err
	}
	res, err := g.db.ExecContext(ctx,
		`UPDATE guild_configs SET disabled_channels = $1 WHERE guild_id = $2`, raw, guildID)
	if err != nil {
		return model.NewFieldError("guild config", guildID, "disabled_channels", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("guild config", guildID, "disabled_channels", model.ErrNotFound))
}

func (g *guilds) SetDisabledCommands(ctx context.Context, guildID int64, commands []string) error {
	raw, err := store.EncodeStringList(commands)
	if err != nil {
		return err
	}
	res, err := g.db.ExecContext(ctx,
		`UPDATE guild_configs SET disabled_commands = $1 WHERE guild_id = $2`, raw, guildID)
	if err != nil {
		return model.NewFieldError("guild config", guildID, "disabled_commands", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("guild config", guildID, "disabled_commands", model.ErrNotFound))
}

// ---- highlights ----

type highlights struct {
	db *sql.DB
}

func (h *highlights) Add(ctx context.Context, userID int64, content string) (*model.Highlight, error) {
	_, err := h.db.ExecContext(ctx,
		`INSERT INTO highlights (user_id, content) VALUES ($1, $2)`, userID, content)
	if err != nil {
		return nil, model.NewFieldError("highlight", userID, "", mapErr(err))
	}
	return &model.Highlight{UserID: userID, Content: content}, nil
}

func (h *highlights) List(ctx context.Context, userID int64) ([]*model.Highlight, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT user_id, content FROM highlights WHERE user_id = $1 ORDER BY content`, userID)
	if err != nil {
		return nil, fmt.Errorf("list highlights for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []*model.Highlight
	for rows.Next() {
		var hl model.Highlight
		if err := rows.Scan(&hl.UserID, &hl.Content); err != nil {
			return nil, err
		}
		out = append(out, &hl)
	}
	return out, rows.Err()
}

func (h *highlights) Remove(ctx context.Context, userID int64, content string) error {
	res, err := h.db.ExecContext(ctx,
		`DELETE FROM highlights WHERE user_id = $1 AND content = $2`, userID, content)
	if err != nil {
		return model.NewFieldError("highlight", userID, "", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("highlight", userID, "", model.ErrNotFound))
}

// ---- todos ----

type todos struct {
	db *sql.DB
}

// checkCategory enforces the category invariant inside tx. FOR UPDATE pins
// the category row so a concurrent RemoveCategory blocks until this
// transaction commits.
func checkCategory(ctx context.Context, tx *sql.Tx, userID int64, category string) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM todo_categories WHERE user_id = $1 AND name = $2 FOR UPDATE`,
		userID, category).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewFieldError("todo", userID, "category", model.ErrInvalidCategory)
	}
	return err
}

func (t *todos) Add(ctx context.Context, userID int64, content string, category *string) (*model.Todo, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add todo: %w", err)
	}
	defer rollback(tx)

	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM profiles WHERE user_id = $1`, userID).Scan(&one); err != nil {
		return nil, model.NewFieldError("profile", userID, "", mapErr(err))
	}
	if category != nil {
		if err := checkCategory(ctx, tx, userID, *category); err != nil {
			return nil, err
		}
	}

	td := &model.Todo{
		TodoID:    uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: utc(time.Now()),
		Category:  category,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO todos (todo_id, user_id, content, created_at, category) VALUES ($1, $2, $3, $4, $5)`,
		td.TodoID, td.UserID, td.Content, td.CreatedAt, td.Category)
	if err != nil {
		return nil, model.NewFieldError("todo", td.TodoID, "", mapErr(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return td, nil
}

func (t *todos) Get(ctx context.Context, userID int64, todoID string) (*model.Todo, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT todo_id, user_id, content, created_at, category
		   FROM todos WHERE user_id = $1 AND todo_id = $2`, userID, todoID)

	var td model.Todo
	if err := row.Scan(&td.TodoID, &td.UserID, &td.Content, &td.CreatedAt, &td.Category); err != nil {
		return nil, model.NewFieldError("todo", todoID, "", mapErr(err))
	}
	td.CreatedAt = td.CreatedAt.UTC()
	return &td, nil
}

func (t *todos) List(ctx context.Context, userID int64) ([]*model.Todo, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT todo_id, user_id, content, created_at, category
		   FROM todos WHERE user_id = $1 ORDER BY created_at, todo_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []*model.Todo
	for rows.Next() {
		var td model.Todo
		if err := rows.Scan(&td.TodoID, &td.UserID, &td.Content, &td.CreatedAt, &td.Category); err != nil {
			return nil, err
		}
		td.CreatedAt = td.CreatedAt.UTC()
		out = append(out, &td)
	}
	return out, rows.Err()
}

func (t *todos) SetCategory(ctx context.Context, userID int64, todoID string, category *string) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set todo category: %w", err)
	}
	defer rollback(tx)

	if category != nil {
		if err := checkCategory(ctx, tx, userID, *category); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE todos SET category = $1 WHERE user_id = $2 AND todo_id = $3`, category, userID, todoID)
	if err != nil {
		return model.NewFieldError("todo", todoID, "category", mapErr(err))
	}
	if err := mustAffect(res, model.NewFieldError("todo", todoID, "", model.ErrNotFound)); err != nil {
		return err
	}
	return tx.Commit()
}

func (t *todos) Delete(ctx context.Context, userID int64, todoID string) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM todos WHERE user_id = $1 AND todo_id = $2`, userID, todoID)
	if err != nil {
		return model.NewFieldError("todo", todoID, "", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("todo", todoID, "", model.ErrNotFound))
}

func (t *todos) AddCategory(ctx context.Context, userID int64, name string) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO todo_categories (user_id, name) VALUES ($1, $2)`, userID, name)
	if err != nil {
		return model.NewFieldError("todo category", name, "", mapErr(err))
	}
	return nil
}

func (t *todos) RemoveCategory(ctx context.Context, userID int64, name string) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove todo category: %w", err)
	}
	defer rollback(tx)

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM todo_categories WHERE user_id = $1 AND name = $2 FOR UPDATE`,
		userID, name).Scan(&one)
	if err != nil {
		return model.NewFieldError("todo category", name, "", mapErr(err))
	}
	var refs int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM todos WHERE user_id = $1 AND category = $2`, userID, name).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return model.NewFieldError("todo category", name, "", model.ErrConstraintViolation)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM todo_categories WHERE user_id = $1 AND name = $2`, userID, name); err != nil {
		return model.NewFieldError("todo category", name, "", mapErr(err))
	}
	return tx.Commit()
}

func (t *todos) ListCategories(ctx context.Context, userID int64) ([]string, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT name FROM todo_categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todo categories for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ---- reminders ----

type reminders struct {
	db *sql.DB
}

func (r *reminders) Add(ctx context.Context, rem *model.Reminder) (*model.Reminder, error) {
	out := *rem
	if out.ReminderID == "" {
		out.ReminderID = uuid.NewString()
	}
	out.Epoch = utc(out.Epoch)
	deltaSec := int64(out.Delta / time.Second)
	fireAt := out.Epoch.Add(time.Duration(deltaSec) * time.Second)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (reminder_id, user_id, content, epoch, delta_seconds, fire_at, repeating, deliver_channel)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		out.ReminderID, out.UserID, out.Content, out.Epoch, deltaSec, fireAt, out.Repeating, out.DeliverChannel)
	if err != nil {
		return nil, model.NewFieldError("reminder", out.ReminderID, "", mapErr(err))
	}
	out.Delta = time.Duration(deltaSec) * time.Second
	return &out, nil
}

func scanReminder(scan func(dest ...any) error) (*model.Reminder, error) {
	var (
		rem      model.Reminder
		deltaSec int64
	)
	err := scan(&rem.ReminderID, &rem.UserID, &rem.Content, &rem.Epoch, &deltaSec, &rem.Repeating, &rem.DeliverChannel)
	if err != nil {
		return nil, err
	}
	rem.Epoch = rem.Epoch.UTC()
	rem.Delta = time.Duration(deltaSec) * time.Second
	return &rem, nil
}

const reminderCols = `reminder_id, user_id, content, epoch, delta_seconds, repeating, deliver_channel`

func (r *reminders) Get(ctx context.Context, userID int64, reminderID string) (*model.Reminder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE user_id = $1 AND reminder_id = $2`, userID, reminderID)
	rem, err := scanReminder(row.Scan)
	if err != nil {
		return nil, model.NewFieldError("reminder", reminderID, "", mapErr(err))
	}
	return rem, nil
}

func (r *reminders) List(ctx context.Context, userID int64) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE user_id = $1 ORDER BY epoch, reminder_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *reminders) Due(ctx context.Context, now time.Time) ([]*model.Reminder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE fire_at <= $1 ORDER BY fire_at, reminder_id`, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	defer rows.Close()

	var out []*model.Reminder
	for rows.Next() {
		rem, err := scanReminder(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *reminders) Advance(ctx context.Context, userID int64, reminderID string) (*model.Reminder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin advance reminder: %w", err)
	}
	defer rollback(tx)

	row := tx.QueryRowContext(ctx,
		`SELECT `+reminderCols+` FROM reminders WHERE user_id = $1 AND reminder_id = $2 FOR UPDATE`,
		userID, reminderID)
	rem, err := scanReminder(row.Scan)
	if err != nil {
		return nil, model.NewFieldError("reminder", reminderID, "", mapErr(err))
	}
	if !rem.Repeating {
		return nil, model.NewFieldError("reminder", reminderID, "repeating", model.ErrConstraintViolation)
	}

	rem.Epoch = rem.Epoch.Add(rem.Delta)
	_, err = tx.ExecContext(ctx,
		`UPDATE reminders SET epoch = $1, fire_at = $2 WHERE user_id = $3 AND reminder_id = $4`,
		rem.Epoch, rem.Epoch.Add(rem.Delta), userID, reminderID)
	if err != nil {
		return nil, model.NewFieldError("reminder", reminderID, "", mapErr(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rem, nil
}

func (r *reminders) Delete(ctx context.Context, userID int64, reminderID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reminders WHERE user_id = $1 AND reminder_id = $2`, userID, reminderID)
	if err != nil {
		return model.NewFieldError("reminder", reminderID, "", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("reminder", reminderID, "", model.ErrNotFound))
}

// ---- tags ----

type tags struct {
	db *sql.DB
}

func (t *tags) Add(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO tags (user_id, name, content) VALUES ($1, $2, $3)`,
		tag.UserID, tag.Name, tag.Content)
	if err != nil {
		return nil, model.NewFieldError("tag", tag.Name, "", mapErr(err))
	}
	out := *tag
	return &out, nil
}

func (t *tags) Get(ctx context.Context, userID int64, name string) (*model.Tag, error) {
	row := t.db.QueryRowContext(ctx,
		`SELECT user_id, name, content FROM tags WHERE user_id = $1 AND name = $2`, userID, name)
	var tag model.Tag
	if err := row.Scan(&tag.UserID, &tag.Name, &tag.Content); err != nil {
		return nil, model.NewFieldError("tag", name, "", mapErr(err))
	}
	return &tag, nil
}

func (t *tags) List(ctx context.Context, userID int64) ([]*model.Tag, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT user_id, name, content FROM tags WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags for %d: %w", userID, err)
	}
	defer rows.Close()

	var out []*model.Tag
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.UserID, &tag.Name, &tag.Content); err != nil {
			return nil, err
		}
		out = append(out, &tag)
	}
	return out, rows.Err()
}

func (t *tags) Delete(ctx context.Context, userID int64, name string) error {
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM tags WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return model.NewFieldError("tag", name, "", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("tag", name, "", model.ErrNotFound))
}

// ---- starboards ----

type starboards struct {
	db *sql.DB
}

func (s *starboards) Get(ctx context.Context, guildID int64) (*model.Starboard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT guild_id, channel, threshold, format, max_days, emoji, ignored, super_mult
		   FROM starboards WHERE guild_id = $1`, guildID)

	var (
		sb      model.Starboard
		ignored string
	)
	err := row.Scan(&sb.GuildID, &sb.Channel, &sb.Threshold, &sb.Format, &sb.MaxDays,
		&sb.Emoji, &ignored, &sb.SuperMult)
	if err != nil {
		return nil, model.NewFieldError("starboard", guildID, "", mapErr(err))
	}
	if sb.Ignored, err = store.DecodeIDList(ignored); err != nil {
		return nil, fmt.Errorf("decode ignored for starboard %d: %w", guildID, err)
	}
	return &sb, nil
}

func (s *starboards) UpdateSetting(ctx context.Context, guildID int64, column string, value any) error {
	if _, ok := model.StarboardDefaults[column]; !ok {
		return model.NewFieldError("starboard", guildID, column, model.ErrUnknownSetting)
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE starboards SET %s = $1 WHERE guild_id = $2`, column), value, guildID)
	if err != nil {
		return model.NewFieldError("starboard", guildID, column, mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("starboard", guildID, column, model.ErrNotFound))
}

func (s *starboards) ResetSetting(ctx context.Context, guildID int64, column string) error {
	def, ok := model.StarboardDefaults[column]
	if !ok {
		return model.NewFieldError("starboard", guildID, column, model.ErrUnknownSetting)
	}
	return s.UpdateSetting(ctx, guildID, column, def)
}

func (s *starboards) SetIgnored(ctx context.Context, guildID int64, ignored []int64) error {
	raw, err := store.EncodeIDList(ignored)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE starboards SET ignored = $1 WHERE guild_id = $2`, raw, guildID)
	if err != nil {
		return model.NewFieldError("starboard", guildID, "ignored", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("starboard", guildID, "ignored", model.ErrNotFound))
}

// ---- stars ----

type stars struct {
	db *sql.DB
}

func (s *stars) Record(ctx context.Context, st *model.Star) (*model.Star, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stars (guild_id, message_id, channel_id, stars, starboard_message_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (guild_id, message_id, channel_id)
		 DO UPDATE SET stars = excluded.stars, starboard_message_id = excluded.starboard_message_id`,
		st.GuildID, st.MessageID, st.ChannelID, st.Stars, st.StarboardMessageID)
	if err != nil {
		return nil, model.NewFieldError("star", st.MessageID, "", mapErr(err))
	}
	out := *st
	return &out, nil
}

func (s *stars) Get(ctx context.Context, guildID, messageID, channelID int64) (*model.Star, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT guild_id, message_id, channel_id, stars, starboard_message_id
		   FROM stars WHERE guild_id = $1 AND message_id = $2 AND channel_id = $3`,
		guildID, messageID, channelID)
	var st model.Star
	if err := row.Scan(&st.GuildID, &st.MessageID, &st.ChannelID, &st.Stars, &st.StarboardMessageID); err != nil {
		return nil, model.NewFieldError("star", messageID, "", mapErr(err))
	}
	return &st, nil
}

func (s *stars) List(ctx context.Context, guildID int64) ([]*model.Star, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guild_id, message_id, channel_id, stars, starboard_message_id
		   FROM stars WHERE guild_id = $1 ORDER BY message_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list stars for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var out []*model.Star
	for rows.Next() {
		var st model.Star
		if err := rows.Scan(&st.GuildID, &st.MessageID, &st.ChannelID, &st.Stars, &st.StarboardMessageID); err != nil {
			return nil, err
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (s *stars) Delete(ctx context.Context, guildID, messageID, channelID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM stars WHERE guild_id = $1 AND message_id = $2 AND channel_id = $3`,
		guildID, messageID, channelID)
	if err != nil {
		return model.NewFieldError("star", messageID, "", mapErr(err))
	}
	return mustAffect(res, model.NewFieldError("star", messageID, "", model.ErrNotFound))
}
