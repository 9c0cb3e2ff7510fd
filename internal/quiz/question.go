// Package quiz holds the question entity and the option normalization
// logic bridging the two at-rest encodings of answer options.
package quiz

import "time"

// Question is a stored quiz question. Options may be in array or
// structured form at rest; the read path converts structured records to
// the array form the frontend consumes.
type Question struct {
	ID            int64     `json:"id"`
	ImageURL      string    `json:"image_url"`
	S3Key         string    `json:"s3_key,omitempty"`
	Question      string    `json:"question"`
	Options       Options   `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	GestureType   string    `json:"gesture_type,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	CoachingTips  []string  `json:"coaching_tips,omitempty"`
	ReuseCount    int       `json:"reuse_count"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}
