package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/httperr"
	"github.com/gesturequiz/gesturequiz/internal/quiz"
	"github.com/gesturequiz/gesturequiz/internal/store"
)

type stubQuestionStore struct {
	getFn  func(ctx context.Context, count int, excludeIDs []int64) ([]quiz.Question, error)
	saveFn func(ctx context.Context, p store.SaveQuestionParams) (int64, time.Time, error)
}

func (s *stubQuestionStore) GetRandomQuestions(ctx context.Context, count int, excludeIDs []int64) ([]quiz.Question, error) {
	return s.getFn(ctx, count, excludeIDs)
}

func (s *stubQuestionStore) SaveQuestion(ctx context.Context, p store.SaveQuestionParams) (int64, time.Time, error) {
	return s.saveFn(ctx, p)
}

func TestGetQuestionsDefaultsCount(t *testing.T) {
	var gotCount int
	var gotExclude []int64
	st := &stubQuestionStore{
		getFn: func(_ context.Context, count int, excludeIDs []int64) ([]quiz.Question, error) {
			gotCount = count
			gotExclude = excludeIDs
			return nil, nil
		},
	}
	h := NewQuestions(st, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/database/get-questions",
		bytes.NewBufferString(`{"excludeIds":[3,7]}`))
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetQuestions(rec, req))

	require.Equal(t, 5, gotCount)
	require.Equal(t, []int64{3, 7}, gotExclude)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, true, resp["success"])
	require.Equal(t, float64(0), resp["count"])
}

func TestGetQuestionsNormalizesOptions(t *testing.T) {
	st := &stubQuestionStore{
		getFn: func(context.Context, int, []int64) ([]quiz.Question, error) {
			return []quiz.Question{{
				ID:       12,
				Question: "What does this gesture mean?",
				Options: quiz.StructuredVariant(quiz.StructuredOptions{
					Correct: "Hello",
					Close:   "A friendly greeting sign",
					Wrong1:  "Stop",
					Wrong2:  "Banana",
				}),
				CorrectAnswer: "Hello",
			}}, nil
		},
	}
	h := NewQuestions(st, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/database/get-questions",
		bytes.NewBufferString(`{"count":1}`))
	rec := httptest.NewRecorder()
	require.NoError(t, h.GetQuestions(rec, req))

	var resp struct {
		Questions []struct {
			Options []string `json:"options"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Questions, 1)
	require.Equal(t, []string{"Hello", "A friendly greeting sign", "Stop", "Banana"},
		resp.Questions[0].Options)
}

func TestGetQuestionsRejectsBadCount(t *testing.T) {
	h := NewQuestions(&stubQuestionStore{}, zap.NewNop())

	for _, body := range []string{`{"count":0}`, `{"count":51}`, `{"count":-1}`} {
		req := httptest.NewRequest("POST", "/api/database/get-questions",
			bytes.NewBufferString(body))
		err := h.GetQuestions(httptest.NewRecorder(), req)

		var appErr *httperr.Error
		require.ErrorAs(t, err, &appErr, "body %s", body)
		require.Equal(t, httperr.KindInvalidInput, appErr.Kind)
	}
}

func TestGetQuestionsRequiresBody(t *testing.T) {
	h := NewQuestions(&stubQuestionStore{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/database/get-questions", nil)
	err := h.GetQuestions(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "Request body is required", appErr.Msg)
}

func validSaveBody() map[string]any {
	return map[string]any{
		"image_url":      "https://bucket.s3.amazonaws.com/a.png",
		"s3_key":         "20250810-124500-wave-deadbeef.png",
		"question":       "What does this gesture mean?",
		"options":        []string{"Hello", "A friendly greeting sign", "Stop", "Banana"},
		"correct_answer": "Hello",
	}
}

func TestSaveQuizListsMissingFields(t *testing.T) {
	h := NewQuestions(&stubQuestionStore{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/api/database/save-quiz",
		bytes.NewBufferString(`{"question":"q?"}`))
	err := h.SaveQuiz(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, httperr.KindInvalidInput, appErr.Kind)
	require.Equal(t, "Missing required fields: image_url, s3_key, correct_answer, options", appErr.Msg)
}

func TestSaveQuizRejectsAnswerOutsideOptions(t *testing.T) {
	h := NewQuestions(&stubQuestionStore{}, zap.NewNop())

	body := validSaveBody()
	body["correct_answer"] = "Goodbye"
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/database/save-quiz", bytes.NewBuffer(raw))
	saveErr := h.SaveQuiz(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, saveErr, &appErr)
	require.Equal(t, "correct_answer must be one of the options", appErr.Msg)
}

func TestSaveQuizStructuresAndSanitizes(t *testing.T) {
	var got store.SaveQuestionParams
	st := &stubQuestionStore{
		saveFn: func(_ context.Context, p store.SaveQuestionParams) (int64, time.Time, error) {
			got = p
			return 42, time.Date(2025, 8, 10, 12, 45, 0, 0, time.UTC), nil
		},
	}
	h := NewQuestions(st, zap.NewNop())

	body := validSaveBody()
	body["question"] = `What does this mean?<script>alert(1)</script>`
	body["coaching_tips"] = "Watch the palm orientation"
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/database/save-quiz", bytes.NewBuffer(raw))
	rec := httptest.NewRecorder()
	require.NoError(t, h.SaveQuiz(rec, req))

	require.Equal(t, 201, rec.Code)
	require.Equal(t, "What does this mean?", got.Question)
	require.Equal(t, "Hello", got.Options.Correct)
	require.Equal(t, "A friendly greeting sign", got.Options.Close)
	require.Equal(t, []string{"Watch the palm orientation"}, got.CoachingTips)

	var resp saveQuizResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, int64(42), resp.ID)
}

func TestSaveQuizPropagatesConflict(t *testing.T) {
	st := &stubQuestionStore{
		saveFn: func(context.Context, store.SaveQuestionParams) (int64, time.Time, error) {
			return 0, time.Time{}, httperr.Conflict("Resource already exists")
		},
	}
	h := NewQuestions(st, zap.NewNop())

	raw, err := json.Marshal(validSaveBody())
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/database/save-quiz", bytes.NewBuffer(raw))
	saveErr := h.SaveQuiz(httptest.NewRecorder(), req)

	var appErr *httperr.Error
	require.ErrorAs(t, saveErr, &appErr)
	require.Equal(t, httperr.KindConflict, appErr.Kind)
}

func TestCoachingTipsAcceptsStringOrArray(t *testing.T) {
	var tips coachingTips
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &tips))
	require.Equal(t, coachingTips{"a", "b"}, tips)

	tips = nil
	require.NoError(t, json.Unmarshal([]byte(`"single tip"`), &tips))
	require.Equal(t, coachingTips{"single tip"}, tips)

	require.Error(t, json.Unmarshal([]byte(`42`), &tips))
}
