// Package storage keeps diary notes in PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/voice-diary/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const dateLayout = "2006-01-02"

var ErrEmptyUserID = errors.New("user id is empty")

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	AutoMigrate  bool          `envconfig:"AUTO_MIGRATE" split_words:"true" default:"false"`
}

// Store hands out per-user note access on top of a shared connection pool.
type Store struct {
	db *bun.DB
}

var _ contractx.NoteStore = (*Store)(nil)

func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: database dsn is required", contractx.ErrConfiguration)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.DSN),
		pgdriver.WithDialTimeout(cfg.DialTimeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := NewFromDB(bun.NewDB(sqldb, pgdialect.New()))
	if cfg.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

func NewFromDB(db *bun.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the notes table when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := createTableQuery(s.db).Exec(ctx); err != nil {
		return fmt.Errorf("create notes table: %w", err)
	}
	if _, err := createIndexQuery(s.db).Exec(ctx); err != nil {
		return fmt.Errorf("create notes index: %w", err)
	}
	return nil
}

// WithUser runs fn on a dedicated connection scoped to userID. The
// connection goes back to the pool when fn returns, on every path.
func (s *Store) WithUser(ctx context.Context, userID string, fn func(contractx.Notes) error) (err error) {
	if strings.TrimSpace(userID) == "" {
		return ErrEmptyUserID
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Msg("release connection failed")
		}
	}()

	return fn(&userNotes{db: &conn, userID: userID})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type userNotes struct {
	db     bun.IDB
	userID string
}

func (n *userNotes) Select(ctx context.Context, filter contractx.NoteFilter) ([]contractx.Note, error) {
	var rows []noteModel
	if err := selectQuery(n.db, n.userID, filter, &rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}
	return toEntities(rows), nil
}

func (n *userNotes) Delete(ctx context.Context, filter contractx.NoteFilter) (int64, error) {
	res, err := deleteQuery(n.db, n.userID, filter).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete notes: %w", err)
	}
	return affected, nil
}

func (n *userNotes) Insert(ctx context.Context, note contractx.NewNote) error {
	if _, err := insertQuery(n.db, n.userID, note).Exec(ctx); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (n *userNotes) AttachShortForm(ctx context.Context, title string, date time.Time, text string) error {
	if _, err := attachShortFormQuery(n.db, n.userID, title, date, text).Exec(ctx); err != nil {
		return fmt.Errorf("attach short form: %w", err)
	}
	return nil
}

// Query builders. Dates are bound as plain calendar strings so the session
// time zone of the database cannot shift them.

func applyFilter(q bun.QueryBuilder, userID string, filter contractx.NoteFilter) bun.QueryBuilder {
	q = q.Where("user_id = ?", userID)
	if filter.Title != "" {
		q = q.Where("lower(title) = lower(?)", filter.Title)
	}
	if !filter.Date.IsZero() {
		q = q.Where("date = ?", filter.Date.Format(dateLayout))
	}
	return q
}

func selectQuery(db bun.IDB, userID string, filter contractx.NoteFilter, dest *[]noteModel) *bun.SelectQuery {
	q := db.NewSelect().Model(dest)
	q = applyFilter(q.QueryBuilder(), userID, filter).Unwrap().(*bun.SelectQuery)
	return q.OrderExpr("date DESC, id DESC")
}

func deleteQuery(db bun.IDB, userID string, filter contractx.NoteFilter) *bun.DeleteQuery {
	q := db.NewDelete().Model((*noteModel)(nil))
	return applyFilter(q.QueryBuilder(), userID, filter).Unwrap().(*bun.DeleteQuery)
}

func insertQuery(db bun.IDB, userID string, note contractx.NewNote) *bun.InsertQuery {
	m := &noteModel{
		UserID:   userID,
		Title:    note.Title,
		Date:     note.Date,
		FullNote: note.Text,
	}
	return db.NewInsert().
		Model(m).
		ExcludeColumn("id").
		Value("date", "?", note.Date.Format(dateLayout))
}

func attachShortFormQuery(db bun.IDB, userID, title string, date time.Time, text string) *bun.UpdateQuery {
	q := db.NewUpdate().
		Model((*noteModel)(nil)).
		Set("short_note = ?", text)
	filter := contractx.NoteFilter{Title: title, Date: date}
	return applyFilter(q.QueryBuilder(), userID, filter).Unwrap().(*bun.UpdateQuery)
}

func createTableQuery(db bun.IDB) *bun.CreateTableQuery {
	return db.NewCreateTable().Model((*noteModel)(nil)).IfNotExists()
}

func createIndexQuery(db bun.IDB) *bun.CreateIndexQuery {
	return db.NewCreateIndex().
		Model((*noteModel)(nil)).
		Index("notes_user_title_date_idx").
		IfNotExists().
		Column("user_id", "date")
}
