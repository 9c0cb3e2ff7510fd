package quiz

import (
	"unicode/utf16"

	"go.uber.org/zap"
)

// closeLengthThreshold separates "close" candidates (longer) from "wrong1"
// candidates (shorter) on the write path. Inherited heuristic: a length-10
// option matches neither rule and is only picked up by the positional
// fallbacks.
const closeLengthThreshold = 10

// NormalizeForClient rewrites q.Options into array form when the stored
// value is a structured record. Undecodable values are served as stored;
// decode failures were already logged as warnings at the storage boundary.
func NormalizeForClient(q *Question, logger *zap.Logger) {
	s, ok := q.Options.Structured()
	if !ok {
		return
	}
	arr := s.ToArray()
	if len(arr) == 0 {
		logger.Warn("structured options produced no entries", zap.Int64("question_id", q.ID))
	}
	q.Options = ArrayOptions(arr)
}

// StructureOptions converts an ordered option array and its designated
// correct answer into the four-slot record used at rest:
//
//	close  — first non-correct option longer than the threshold, else the
//	         second positional option
//	wrong1 — first non-correct option shorter than the threshold, else the
//	         third positional option
//	wrong2 — the last option
//
// The heuristic is preserved exactly for compatibility with existing rows.
func StructureOptions(options []string, correctAnswer string) StructuredOptions {
	s := StructuredOptions{Correct: correctAnswer}

	s.Close = firstMatch(options, correctAnswer, func(n int) bool { return n > closeLengthThreshold })
	if s.Close == "" {
		s.Close = at(options, 1)
	}

	s.Wrong1 = firstMatch(options, correctAnswer, func(n int) bool { return n < closeLengthThreshold })
	if s.Wrong1 == "" {
		s.Wrong1 = at(options, 2)
	}

	if len(options) > 0 {
		s.Wrong2 = options[len(options)-1]
	}
	return s
}

func firstMatch(options []string, correct string, lengthOK func(int) bool) string {
	for _, opt := range options {
		if opt != correct && lengthOK(optionLength(opt)) {
			return opt
		}
	}
	return ""
}

// optionLength counts UTF-16 code units, the measure existing rows were
// classified by when they were written. Non-BMP characters count as two.
func optionLength(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func at(options []string, i int) string {
	if i < len(options) {
		return options[i]
	}
	return ""
}

// ContainsOption reports whether answer appears among the array-form
// options. correct_answer must satisfy this whenever options are in array
// form.
func ContainsOption(options []string, answer string) bool {
	for _, opt := range options {
		if opt == answer {
			return true
		}
	}
	return false
}
