package domain

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	// MinAlternatives and MaxAlternatives bound the choice-mode range.
	MinAlternatives = 2
	MaxAlternatives = 10

	// DefaultLimitSeconds applies when a question carries no usable limit.
	DefaultLimitSeconds = 20
)

// Limit is a per-question time limit in seconds. Zero means unset or invalid.
type Limit int

// UnmarshalJSON accepts a number or a numeric string. Anything that is not a
// positive integer decodes to zero instead of failing the question.
func (l *Limit) UnmarshalJSON(data []byte) error {
	*l = 0
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
	}
	*l = ParseLimit(text)
	return nil
}

// ParseLimit converts text into a Limit, returning zero for non-positive or
// non-integral values.
func ParseLimit(text string) Limit {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f <= 0 || f != float64(int64(f)) || f > 1<<31-1 {
		return 0
	}
	return Limit(f)
}

// Valid reports whether the limit is a usable positive value.
func (l Limit) Valid() bool { return l > 0 }

// Alternatives maps choice keys to their labels.
type Alternatives map[string]string

// UnmarshalJSON accepts an object of strings. Any other shape decodes to no
// alternatives, which renders the question as free text instead of failing it.
func (a *Alternatives) UnmarshalJSON(data []byte) error {
	*a = nil
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	*a = m
	return nil
}

// Question is the payload returned by the quiz API for a single step.
type Question struct {
	Prompt       string       `json:"question"`
	Alternatives Alternatives `json:"alternatives,omitempty"`
	NextURL      string       `json:"nextURL,omitempty"`
	Limit        Limit        `json:"limit,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// IsChoice reports whether the question renders as multiple choice.
func (q Question) IsChoice() bool {
	n := len(q.Alternatives)
	return n >= MinAlternatives && n <= MaxAlternatives
}

// Keys returns the alternative keys in display order.
func (q Question) Keys() []string {
	keys := make([]string, 0, len(q.Alternatives))
	for k := range q.Alternatives {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Duration returns the question limit, or fallback when the limit is unset.
func (q Question) Duration(fallback int) int {
	if q.Limit.Valid() {
		return int(q.Limit)
	}
	if fallback <= 0 {
		return DefaultLimitSeconds
	}
	return fallback
}

// AnswerReply is the quiz API response to an answer submission.
type AnswerReply struct {
	NextURL string `json:"nextURL,omitempty"`
	Message string `json:"message,omitempty"`
}

// Done reports whether the reply ends the quiz. The API does not tell a wrong
// answer apart from a finished quiz; both lack a next URL.
func (r AnswerReply) Done() bool {
	return strings.TrimSpace(r.NextURL) == ""
}

// Session is one play-through from nickname entry to high-score reveal.
type Session struct {
	ID                 string
	Nickname           string
	AccumulatedSeconds int
	Current            *Question
	Completed          bool
}

// HighScoreEntry is a finished session on the leaderboard. Lower is better.
type HighScoreEntry struct {
	Nickname string  `json:"nickname"`
	Score    float64 `json:"score"`
}

// RankedEntry is a leaderboard row as displayed.
type RankedEntry struct {
	Rank int `json:"rank"`
	HighScoreEntry
}
