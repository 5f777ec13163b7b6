package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoryBibleStore struct {
	db *pgxpool.Pool
}

func NewStoryBibleStore(db *pgxpool.Pool) *StoryBibleStore {
	return &StoryBibleStore{db: db}
}

func (s *StoryBibleStore) Get(ctx context.Context, scriptID string) (*domain.StoryBible, error) {
	b := &domain.StoryBible{ScriptID: scriptID}
	var nodesJSON, linksJSON []byte
	err := s.db.QueryRow(ctx,
		`SELECT nodes, links, version, updated_at
		 FROM story_bibles WHERE script_id = $1`,
		scriptID,
	).Scan(&nodesJSON, &linksJSON, &b.Version, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(nodesJSON, &b.Nodes); err != nil {
		return nil, fmt.Errorf("decode nodes: %w", err)
	}
	if err := json.Unmarshal(linksJSON, &b.Links); err != nil {
		return nil, fmt.Errorf("decode links: %w", err)
	}
	return b, nil
}

// Replace writes the whole graph. expectedVersion 0 creates the record;
// anything else must match the stored version. On success b.Version and
// b.UpdatedAt reflect the new row.
func (s *StoryBibleStore) Replace(ctx context.Context, b *domain.StoryBible, expectedVersion int64) error {
	nodesJSON, err := marshalList(b.Nodes)
	if err != nil {
		return fmt.Errorf("encode nodes: %w", err)
	}
	linksJSON, err := marshalList(b.Links)
	if err != nil {
		return fmt.Errorf("encode links: %w", err)
	}

	var row pgx.Row
	if expectedVersion == 0 {
		row = s.db.QueryRow(ctx,
			`INSERT INTO story_bibles (script_id, nodes, links, version, updated_at)
			 VALUES ($1, $2, $3, 1, NOW())
			 ON CONFLICT (script_id) DO NOTHING
			 RETURNING version, updated_at`,
			b.ScriptID, nodesJSON, linksJSON,
		)
	} else {
		row = s.db.QueryRow(ctx,
			`UPDATE story_bibles
			 SET nodes = $2, links = $3, version = version + 1, updated_at = NOW()
			 WHERE script_id = $1 AND version = $4
			 RETURNING version, updated_at`,
			b.ScriptID, nodesJSON, linksJSON, expectedVersion,
		)
	}

	if err := row.Scan(&b.Version, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return err
	}
	return nil
}

// marshalList encodes a nil slice as an empty JSON array.
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
