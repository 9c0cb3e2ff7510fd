package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// StructuredOptions is the four-slot at-rest encoding of answer options.
// ObviouslyWrong and FunnyWrong are legacy aliases for Wrong1 and Wrong2
// still present in older rows.
type StructuredOptions struct {
	Correct        string `json:"correct"`
	Close          string `json:"close"`
	Wrong1         string `json:"wrong1,omitempty"`
	Wrong2         string `json:"wrong2,omitempty"`
	ObviouslyWrong string `json:"obviouslyWrong,omitempty"`
	FunnyWrong     string `json:"funnyWrong,omitempty"`
}

// ToArray converts the structured record to the ordered array form,
// resolving legacy aliases and dropping slots that are blank after
// trimming.
func (s StructuredOptions) ToArray() []string {
	wrong1 := s.Wrong1
	if wrong1 == "" {
		wrong1 = s.ObviouslyWrong
	}
	wrong2 := s.Wrong2
	if wrong2 == "" {
		wrong2 = s.FunnyWrong
	}

	out := make([]string, 0, 4)
	for _, slot := range []string{s.Correct, s.Close, wrong1, wrong2} {
		if strings.TrimSpace(slot) != "" {
			out = append(out, slot)
		}
	}
	return out
}

// Options is the tagged union of the two valid option encodings. Exactly
// one variant is set; rows whose stored value cannot be decoded keep the
// raw payload so they round-trip unchanged.
type Options struct {
	arr        []string
	structured *StructuredOptions
	raw        json.RawMessage
}

// ArrayOptions returns the array variant.
func ArrayOptions(opts []string) Options {
	return Options{arr: opts}
}

// StructuredVariant returns the structured variant.
func StructuredVariant(s StructuredOptions) Options {
	return Options{structured: &s}
}

// RawOptions returns an undecodable legacy payload preserved as stored.
func RawOptions(raw []byte) Options {
	return Options{raw: append(json.RawMessage(nil), raw...)}
}

// Array returns the option strings and true when the array variant is set.
func (o Options) Array() ([]string, bool) {
	return o.arr, o.arr != nil
}

// Structured returns the structured record and true when that variant is set.
func (o Options) Structured() (StructuredOptions, bool) {
	if o.structured == nil {
		return StructuredOptions{}, false
	}
	return *o.structured, true
}

// IsZero reports whether no variant is set.
func (o Options) IsZero() bool {
	return o.arr == nil && o.structured == nil && o.raw == nil
}

func (o Options) MarshalJSON() ([]byte, error) {
	switch {
	case o.arr != nil:
		return json.Marshal(o.arr)
	case o.structured != nil:
		return json.Marshal(o.structured)
	case o.raw != nil:
		// The preserved value goes out exactly as stored. JSONB rows are
		// always valid JSON; the string fallback covers non-JSON bytes
		// preserved from other sources.
		if json.Valid(o.raw) {
			return append([]byte(nil), o.raw...), nil
		}
		return json.Marshal(string(o.raw))
	default:
		return []byte("null"), nil
	}
}

func (o *Options) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeOptions(data)
	if err != nil {
		return err
	}
	*o = decoded
	return nil
}

// ErrUndecodableOptions reports a stored value that is neither an array,
// a structured record, nor a JSON string containing one of those.
var ErrUndecodableOptions = errors.New("options: unrecognized encoding")

// DecodeOptions resolves a stored options value into one of the two
// variants by discriminating on the leading JSON token. A JSON string is
// unwrapped and re-parsed once, covering rows whose options were stored
// double-encoded.
func DecodeOptions(data []byte) (Options, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return Options{}, nil
	}

	switch trimmed[0] {
	case '[':
		var arr []string
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return Options{}, fmt.Errorf("options: decode array: %w", err)
		}
		return ArrayOptions(arr), nil
	case '{':
		var s StructuredOptions
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return Options{}, fmt.Errorf("options: decode structured: %w", err)
		}
		return StructuredVariant(s), nil
	case '"':
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return Options{}, fmt.Errorf("options: unwrap string: %w", err)
		}
		inner = strings.TrimSpace(inner)
		if inner != "" && (inner[0] == '[' || inner[0] == '{') {
			return DecodeOptions([]byte(inner))
		}
		return Options{}, fmt.Errorf("%w: %q", ErrUndecodableOptions, inner)
	default:
		return Options{}, fmt.Errorf("%w: leading %q", ErrUndecodableOptions, trimmed[0])
	}
}
