package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/quiz"
)

const questionColumns = `id, image_url, COALESCE(s3_key, ''), question, options,
	correct_answer, COALESCE(gesture_type, ''), COALESCE(explanation, ''),
	coaching_tips, reuse_count, created_at`

// GetRandomQuestions returns up to count random questions whose ids are not
// in excludeIDs and increments reuse_count for exactly the returned rows.
// The returned rows carry the pre-increment count.
func (s *Store) GetRandomQuestions(ctx context.Context, count int, excludeIDs []int64) ([]quiz.Question, error) {
	if s == nil || s.pool == nil {
		return nil, errors.New("store is not initialized")
	}

	var (
		query string
		args  []any
	)
	if len(excludeIDs) > 0 {
		query = `SELECT ` + questionColumns + ` FROM quiz_data WHERE id != ALL($1) ORDER BY RANDOM() LIMIT $2`
		args = []any{excludeIDs, count}
	} else {
		query = `SELECT ` + questionColumns + ` FROM quiz_data ORDER BY RANDOM() LIMIT $1`
		args = []any{count}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	questions := make([]quiz.Question, 0, count)
	for rows.Next() {
		var q quiz.Question
		var rawOptions, rawTips []byte
		var createdAt time.Time
		if err := rows.Scan(&q.ID, &q.ImageURL, &q.S3Key, &q.Question, &rawOptions,
			&q.CorrectAnswer, &q.GestureType, &q.Explanation, &rawTips,
			&q.ReuseCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.CreatedAt = createdAt
		q.Options = s.decodeOptions(q.ID, rawOptions)
		q.CoachingTips = decodeCoachingTips(rawTips)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	if len(questions) > 0 {
		ids := make([]int64, len(questions))
		for i, q := range questions {
			ids[i] = q.ID
		}
		if _, err := s.pool.Exec(ctx,
			`UPDATE quiz_data SET reuse_count = reuse_count + 1 WHERE id = ANY($1)`, ids); err != nil {
			return nil, fmt.Errorf("bump reuse count: %w", err)
		}
	}

	return questions, nil
}

// decodeOptions resolves the stored options value into a variant. A value
// that cannot be decoded is served as stored; the failure is a warning, not
// an error.
func (s *Store) decodeOptions(id int64, raw []byte) quiz.Options {
	if len(raw) == 0 {
		return quiz.Options{}
	}
	opts, err := quiz.DecodeOptions(raw)
	if err != nil {
		s.logger.Warn("failed to parse options",
			zap.Int64("question_id", id),
			zap.Error(err),
		)
		return quiz.RawOptions(raw)
	}
	return opts
}

func decodeCoachingTips(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var tips []string
	if err := json.Unmarshal(raw, &tips); err == nil {
		return tips
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

// SaveQuestionParams are the fields persisted by SaveQuestion. Options are
// always stored in structured form.
type SaveQuestionParams struct {
	ImageURL       string
	S3Key          string
	Question       string
	Options        quiz.StructuredOptions
	CorrectAnswer  string
	GestureType    string
	DallePrompt    string
	ScenarioPrompt string
	Explanation    string
	CoachingTips   []string
}

// SaveQuestion inserts a question and returns its assigned id and creation
// timestamp. A unique-constraint violation surfaces as a conflict.
func (s *Store) SaveQuestion(ctx context.Context, p SaveQuestionParams) (int64, time.Time, error) {
	if s == nil || s.pool == nil {
		return 0, time.Time{}, errors.New("store is not initialized")
	}

	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("encode options: %w", err)
	}

	var tipsJSON []byte
	if len(p.CoachingTips) > 0 {
		tipsJSON, err = json.Marshal(p.CoachingTips)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("encode coaching tips: %w", err)
		}
	}

	var (
		id        int64
		createdAt time.Time
	)
	err = s.pool.QueryRow(ctx, `
		INSERT INTO quiz_data (
			image_url, s3_key, question, options, correct_answer,
			gesture_type, dalle_prompt, scenario_prompt, explanation,
			coaching_tips, reuse_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
		RETURNING id, created_at`,
		p.ImageURL, p.S3Key, p.Question, optionsJSON, p.CorrectAnswer,
		nullIfEmpty(p.GestureType), nullIfEmpty(p.DallePrompt),
		nullIfEmpty(p.ScenarioPrompt), nullIfEmpty(p.Explanation),
		tipsJSON,
	).Scan(&id, &createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, time.Time{}, httperr.Wrap(httperr.KindConflict, err, "Resource already exists")
		}
		return 0, time.Time{}, fmt.Errorf("insert question: %w", err)
	}

	return id, createdAt, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
