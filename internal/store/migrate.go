package store

import (
	"context"
	"errors"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS quiz_data (
		id SERIAL PRIMARY KEY,
		image_url TEXT NOT NULL,
		s3_key TEXT NOT NULL UNIQUE,
		question TEXT NOT NULL,
		options JSONB NOT NULL,
		correct_answer TEXT NOT NULL,
		gesture_type VARCHAR(100),
		dalle_prompt TEXT,
		scenario_prompt TEXT,
		explanation TEXT,
		coaching_tips JSONB,
		created_at TIMESTAMP DEFAULT NOW(),
		reuse_count INT DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_gesture_type ON quiz_data(gesture_type)`,
	`CREATE INDEX IF NOT EXISTS idx_created_at ON quiz_data(created_at)`,
}

// Migrate creates the quiz_data table and its secondary indexes if they do
// not exist. One-shot bootstrap, not a migration tool.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return errors.New("store is not initialized")
	}
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
