package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/storybible/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContradictionStore struct {
	db *pgxpool.Pool
}

func NewContradictionStore(db *pgxpool.Pool) *ContradictionStore {
	return &ContradictionStore{db: db}
}

func (s *ContradictionStore) Create(ctx context.Context, f *domain.ContradictionFlag) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO contradictions (id, script_id, sentence, conflict_with, reason_tag, resolved)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		f.ID, f.ScriptID, f.Sentence, f.ConflictWith, f.ReasonTag, f.Resolved,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
}

func (s *ContradictionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContradictionFlag, error) {
	var f domain.ContradictionFlag
	err := s.db.QueryRow(ctx,
		`SELECT id, script_id, sentence, conflict_with, reason_tag, resolved, created_at, updated_at
		 FROM contradictions WHERE id = $1`,
		id,
	).Scan(&f.ID, &f.ScriptID, &f.Sentence, &f.ConflictWith, &f.ReasonTag, &f.Resolved, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *ContradictionStore) ListOpen(ctx context.Context, scriptID string) ([]domain.ContradictionFlag, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, script_id, sentence, conflict_with, reason_tag, resolved, created_at, updated_at
		 FROM contradictions
		 WHERE script_id = $1 AND resolved = FALSE
		 ORDER BY created_at`,
		scriptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.ContradictionFlag{}
	for rows.Next() {
		var f domain.ContradictionFlag
		if err := rows.Scan(&f.ID, &f.ScriptID, &f.Sentence, &f.ConflictWith, &f.ReasonTag, &f.Resolved, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, f)
	}
	return results, rows.Err()
}

func (s *ContradictionStore) Resolve(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE contradictions SET resolved = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
