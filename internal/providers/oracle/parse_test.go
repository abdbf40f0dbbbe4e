package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/mockview/backend/internal/utils"
)

func TestParsePayloadDirect(t *testing.T) {
	var ev Evaluation
	text := `{"score": 85, "feedback": "solid", "nextQuestion": "Explain channels."}`
	if err := parsePayload("op", text, &ev); err != nil {
		t.Fatalf("parsePayload: %v", err)
	}
	if ev.Score != 85 || ev.Feedback != "solid" || ev.NextQuestion != "Explain channels." {
		t.Fatalf("parsed = %+v", ev)
	}
}

func TestParsePayloadSalvagesFencedOutput(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"markdown fence", "```json\n{\"score\": 70, \"feedback\": \"ok\", \"nextQuestion\": \"Next?\"}\n```"},
		{"leading prose", "Here is the evaluation:\n{\"score\": 70, \"feedback\": \"ok\", \"nextQuestion\": \"Next?\"}"},
		{"surrounding chatter", "Sure!\n{\"score\": 70, \"feedback\": \"ok\", \"nextQuestion\": \"Next?\"}\nLet me know if you need more."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ev Evaluation
			if err := parsePayload("op", tc.text, &ev); err != nil {
				t.Fatalf("parsePayload: %v", err)
			}
			if ev.Score != 70 || ev.NextQuestion != "Next?" {
				t.Fatalf("parsed = %+v", ev)
			}
		})
	}
}

func TestParsePayloadMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"the answer deserves a 70",
		"{score: 70",
		"```json\n{\"score\": \n```",
	} {
		var ev Evaluation
		err := parsePayload("op", text, &ev)
		if !utils.IsCode(err, utils.CodeMalformedResponse) {
			t.Fatalf("parsePayload(%q) = %v, want MALFORMED_RESPONSE", text, err)
		}
	}
}

func TestExtractJSONObject(t *testing.T) {
	if got, ok := extractJSONObject(`noise {"a":1} tail`); !ok || got != `{"a":1}` {
		t.Fatalf("extract = %q, %v", got, ok)
	}
	if _, ok := extractJSONObject("no braces here"); ok {
		t.Fatal("extract on brace-free input must fail")
	}
	if _, ok := extractJSONObject("} reversed {"); ok {
		t.Fatal("extract with reversed braces must fail")
	}
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want utils.Code
	}{
		{"context cancel", context.Canceled, utils.CodeTransientUnavailable},
		{"deadline", context.DeadlineExceeded, utils.CodeTransientUnavailable},
		{"bad api key", errors.New("rpc error: API key not valid"), utils.CodeAuthFailure},
		{"permission denied", errors.New("rpc error: code = PermissionDenied desc = permission denied"), utils.CodeAuthFailure},
		{"quota", errors.New("rpc error: code = ResourceExhausted desc = quota exceeded"), utils.CodeRateLimited},
		{"http 429", errors.New("googleapi: Error 429: too many requests"), utils.CodeRateLimited},
		{"model 404", errors.New("googleapi: Error 404: model not found"), utils.CodeModelUnavailable},
		{"unknown", errors.New("connection reset by peer"), utils.CodeTransientUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classifyError("op", tc.err)
			if !utils.IsCode(got, tc.want) {
				t.Fatalf("classifyError(%v) = %v, want %s", tc.err, got, tc.want)
			}
			if !errors.Is(got, tc.err) {
				t.Fatal("classified error must wrap the original")
			}
		})
	}
}
