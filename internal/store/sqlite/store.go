// Package sqlite provides a SQLite-backed story bible and contradiction store
// for local single-writer use.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/Harshitk-cp/storybible/internal/store"
	"github.com/Harshitk-cp/storybible/internal/store/sqlite/migrations"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Store owns the SQLite handle shared by the story bible and contradiction stores.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite database and applies embedded migrations. Use
// ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := memoryPath
	if path != memoryPath {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	driver, err := migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	if err != nil {
		return err
	}
	// Closing m would close sqlDB through the driver, so it is left open.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *Store) StoryBibles() *StoryBibleStore {
	return &StoryBibleStore{sqlDB: s.sqlDB}
}

func (s *Store) Contradictions() *ContradictionStore {
	return &ContradictionStore{sqlDB: s.sqlDB}
}

type StoryBibleStore struct {
	sqlDB *sql.DB
}

func (s *StoryBibleStore) Get(ctx context.Context, scriptID string) (*domain.StoryBible, error) {
	b := &domain.StoryBible{ScriptID: scriptID}
	var nodesJSON, linksJSON string
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT nodes, links, version, updated_at FROM story_bibles WHERE script_id = ?`,
		scriptID,
	).Scan(&nodesJSON, &linksJSON, &b.Version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get story bible: %w", err)
	}
	b.UpdatedAt = fromMillis(updatedAt)

	if err := json.Unmarshal([]byte(nodesJSON), &b.Nodes); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(linksJSON), &b.Links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	return b, nil
}

func (s *StoryBibleStore) Replace(ctx context.Context, b *domain.StoryBible, expectedVersion int64) error {
	nodesJSON, err := marshalList(b.Nodes)
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	linksJSON, err := marshalList(b.Links)
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}
	now := time.Now().UTC()

	var res sql.Result
	if expectedVersion == 0 {
		res, err = s.sqlDB.ExecContext(ctx,
			`INSERT INTO story_bibles (script_id, nodes, links, version, updated_at)
			 VALUES (?, ?, ?, 1, ?)
			 ON CONFLICT (script_id) DO NOTHING`,
			b.ScriptID, nodesJSON, linksJSON, toMillis(now),
		)
	} else {
		res, err = s.sqlDB.ExecContext(ctx,
			`UPDATE story_bibles
			 SET nodes = ?, links = ?, version = version + 1, updated_at = ?
			 WHERE script_id = ? AND version = ?`,
			nodesJSON, linksJSON, toMillis(now), b.ScriptID, expectedVersion,
		)
	}
	if err != nil {
		return fmt.Errorf("replace story bible: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace story bible: %w", err)
	}
	if n == 0 {
		return store.ErrVersionConflict
	}

	b.Version = expectedVersion + 1
	b.UpdatedAt = fromMillis(toMillis(now))
	return nil
}

func marshalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	return string(data), err
}

type ContradictionStore struct {
	sqlDB *sql.DB
}

const contradictionColumns = `id, script_id, sentence, conflict_with, reason_tag, resolved, created_at, updated_at`

func (s *ContradictionStore) Create(ctx context.Context, f *domain.ContradictionFlag) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := fromMillis(toMillis(time.Now()))
	f.CreatedAt = now
	f.UpdatedAt = now

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO contradictions (`+contradictionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.ScriptID, f.Sentence, f.ConflictWith, f.ReasonTag, f.Resolved,
		toMillis(f.CreatedAt), toMillis(f.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create contradiction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlag(row rowScanner) (domain.ContradictionFlag, error) {
	var f domain.ContradictionFlag
	var id string
	var createdAt, updatedAt int64
	if err := row.Scan(&id, &f.ScriptID, &f.Sentence, &f.ConflictWith, &f.ReasonTag, &f.Resolved, &createdAt, &updatedAt); err != nil {
		return f, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return f, fmt.Errorf("parse contradiction id: %w", err)
	}
	f.ID = parsed
	f.CreatedAt = fromMillis(createdAt)
	f.UpdatedAt = fromMillis(updatedAt)
	return f, nil
}

func (s *ContradictionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContradictionFlag, error) {
	f, err := scanFlag(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+contradictionColumns+` FROM contradictions WHERE id = ?`,
		id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *ContradictionStore) ListOpen(ctx context.Context, scriptID string) ([]domain.ContradictionFlag, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+contradictionColumns+` FROM contradictions
		 WHERE script_id = ? AND resolved = 0
		 ORDER BY created_at, rowid`,
		scriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contradictions: %w", err)
	}
	defer rows.Close()

	results := []domain.ContradictionFlag{}
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

func (s *ContradictionStore) Resolve(ctx context.Context, id uuid.UUID) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE contradictions SET resolved = 1, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), id.String(),
	)
	if err != nil {
		return fmt.Errorf("resolve contradiction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve contradiction: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
