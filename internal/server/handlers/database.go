package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/gate"
	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/quiz"
	"github.com/gesturequiz/gesturequiz/internal/store"
)

const (
	defaultQuestionCount = 5
	maxQuestionCount     = 50
	minOptionCount       = 2
	maxOptionCount       = 10
	maxTextLength        = 1000
)

// QuestionStore is the storage surface the database endpoints need.
type QuestionStore interface {
	GetRandomQuestions(ctx context.Context, count int, excludeIDs []int64) ([]quiz.Question, error)
	SaveQuestion(ctx context.Context, p store.SaveQuestionParams) (int64, time.Time, error)
}

// Questions serves the /api/database endpoints.
type Questions struct {
	store  QuestionStore
	logger *zap.Logger
}

// NewQuestions returns the database handlers.
func NewQuestions(s QuestionStore, logger *zap.Logger) *Questions {
	return &Questions{store: s, logger: logger}
}

type getQuestionsRequest struct {
	Count      *int    `json:"count"`
	ExcludeIDs []int64 `json:"excludeIds"`
}

type getQuestionsResponse struct {
	Success   bool            `json:"success"`
	Questions []quiz.Question `json:"questions"`
	Count     int             `json:"count"`
}

// GetQuestions returns up to count random questions, excluding the given
// ids, with options normalized to array form. Serving a question bumps its
// reuse count.
func (h *Questions) GetQuestions(w http.ResponseWriter, r *http.Request) error {
	var req getQuestionsRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	count := defaultQuestionCount
	if req.Count != nil {
		count = *req.Count
	}
	if count < 1 || count > maxQuestionCount {
		return httperr.InvalidInput(fmt.Sprintf("count must be between 1 and %d", maxQuestionCount))
	}

	questions, err := h.store.GetRandomQuestions(r.Context(), count, req.ExcludeIDs)
	if err != nil {
		return fmt.Errorf("get questions: %w", err)
	}

	for i := range questions {
		quiz.NormalizeForClient(&questions[i], h.logger)
	}

	return writeJSON(w, http.StatusOK, getQuestionsResponse{
		Success:   true,
		Questions: questions,
		Count:     len(questions),
	})
}

// coachingTips accepts either an array of tip strings or a single string,
// which older clients send.
type coachingTips []string

func (c *coachingTips) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*c = arr
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*c = []string{single}
		}
		return nil
	}
	return fmt.Errorf("coaching_tips must be a string or an array of strings")
}

type saveQuizRequest struct {
	ImageURL       string       `json:"image_url"`
	S3Key          string       `json:"s3_key"`
	Question       string       `json:"question"`
	Options        []string     `json:"options"`
	CorrectAnswer  string       `json:"correct_answer"`
	GestureType    string       `json:"gesture_type"`
	DallePrompt    string       `json:"dalle_prompt"`
	ScenarioPrompt string       `json:"scenario_prompt"`
	Explanation    string       `json:"explanation"`
	CoachingTips   coachingTips `json:"coaching_tips"`
}

type saveQuizResponse struct {
	Success   bool      `json:"success"`
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveQuiz validates and persists a question. Options arrive in array form
// and are stored structured via the normalization heuristic.
func (h *Questions) SaveQuiz(w http.ResponseWriter, r *http.Request) error {
	var req saveQuizRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	missing := gate.MissingFields(map[string]string{
		"image_url":      req.ImageURL,
		"s3_key":         req.S3Key,
		"question":       req.Question,
		"correct_answer": req.CorrectAnswer,
	}, []string{"image_url", "s3_key", "question", "correct_answer"})
	if len(req.Options) == 0 {
		missing = append(missing, "options")
	}
	if len(missing) > 0 {
		return httperr.InvalidInput("Missing required fields: " + strings.Join(missing, ", "))
	}

	if len(req.Options) < minOptionCount || len(req.Options) > maxOptionCount {
		return httperr.InvalidInput(fmt.Sprintf("options must contain between %d and %d entries",
			minOptionCount, maxOptionCount))
	}
	if !quiz.ContainsOption(req.Options, req.CorrectAnswer) {
		return httperr.InvalidInput("correct_answer must be one of the options")
	}

	id, createdAt, err := h.store.SaveQuestion(r.Context(), store.SaveQuestionParams{
		ImageURL:       req.ImageURL,
		S3Key:          req.S3Key,
		Question:       gate.Sanitize(req.Question, maxTextLength),
		Options:        quiz.StructureOptions(req.Options, req.CorrectAnswer),
		CorrectAnswer:  req.CorrectAnswer,
		GestureType:    gate.Sanitize(req.GestureType, 100),
		DallePrompt:    gate.Sanitize(req.DallePrompt, maxTextLength),
		ScenarioPrompt: gate.Sanitize(req.ScenarioPrompt, maxTextLength),
		Explanation:    gate.Sanitize(req.Explanation, maxTextLength),
		CoachingTips:   req.CoachingTips,
	})
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}

	return writeJSON(w, http.StatusCreated, saveQuizResponse{
		Success:   true,
		ID:        id,
		CreatedAt: createdAt,
	})
}
