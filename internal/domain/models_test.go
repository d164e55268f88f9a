package domain

import (
	"encoding/json"
	"testing"
)

func TestQuestionDecodesLimitVariants(t *testing.T) {
	cases := []struct {
		raw  string
		want Limit
	}{
		{`{"question":"q","limit":10}`, 10},
		{`{"question":"q","limit":"15"}`, 15},
		{`{"question":"q","limit":" 7 "}`, 7},
		{`{"question":"q","limit":"abc"}`, 0},
		{`{"question":"q","limit":-3}`, 0},
		{`{"question":"q","limit":2.5}`, 0},
		{`{"question":"q","limit":null}`, 0},
		{`{"question":"q"}`, 0},
	}
	for _, tc := range cases {
		var q Question
		if err := json.Unmarshal([]byte(tc.raw), &q); err != nil {
			t.Fatalf("decode %s: %v", tc.raw, err)
		}
		if q.Limit != tc.want {
			t.Fatalf("decode %s: expected limit %d, got %d", tc.raw, tc.want, q.Limit)
		}
	}
}

func TestQuestionToleratesMalformedAlternatives(t *testing.T) {
	for _, raw := range []string{
		`{"question":"q","alternatives":{"a":"x","b":2},"nextURL":"/a"}`,
		`{"question":"q","alternatives":["x","y"],"nextURL":"/a"}`,
		`{"question":"q","alternatives":"x","nextURL":"/a"}`,
	} {
		var q Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if q.IsChoice() || q.NextURL != "/a" || q.Prompt != "q" {
			t.Fatalf("decode %s: expected free-text question, got %+v", raw, q)
		}
	}

	var q Question
	if err := json.Unmarshal([]byte(`{"question":"q","alternatives":{"a":"x","b":"y"}}`), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !q.IsChoice() || q.Alternatives["b"] != "y" {
		t.Fatalf("expected choice question, got %+v", q)
	}
}

func TestQuestionModeByAlternativeCount(t *testing.T) {
	alts := func(n int) map[string]string {
		m := make(map[string]string, n)
		for i := 0; i < n; i++ {
			m[string(rune('a'+i))] = "x"
		}
		return m
	}
	for n, want := range map[int]bool{0: false, 1: false, 2: true, 5: true, 10: true, 11: false} {
		q := Question{Prompt: "q", Alternatives: alts(n)}
		if q.IsChoice() != want {
			t.Fatalf("%d alternatives: expected choice=%v", n, want)
		}
	}
	if (Question{Prompt: "q"}).IsChoice() {
		t.Fatalf("expected free text without alternatives")
	}
}

func TestQuestionDuration(t *testing.T) {
	if d := (Question{Limit: 10}).Duration(20); d != 10 {
		t.Fatalf("expected 10, got %d", d)
	}
	if d := (Question{}).Duration(20); d != 20 {
		t.Fatalf("expected fallback 20, got %d", d)
	}
	if d := (Question{}).Duration(0); d != DefaultLimitSeconds {
		t.Fatalf("expected default, got %d", d)
	}
}

func TestAnswerReplyDone(t *testing.T) {
	var reply AnswerReply
	if err := json.Unmarshal([]byte(`{"nextURL":null}`), &reply); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reply.Done() {
		t.Fatalf("expected null nextURL to end the quiz")
	}
	if (AnswerReply{NextURL: "/q/3"}).Done() {
		t.Fatalf("expected next url to continue")
	}
}
