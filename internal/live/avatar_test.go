package live

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFeedbackTextTiers(t *testing.T) {
	cases := []struct {
		score  float64
		prefix string
	}{
		{95, "Excellent answer!"},
		{80, "Excellent answer!"},
		{79, "Good attempt."},
		{60, "Good attempt."},
		{59, "I appreciate your effort."},
		{0, "I appreciate your effort."},
	}

	for _, tc := range cases {
		got := FeedbackText(tc.score, "core feedback")
		if !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("FeedbackText(%.0f) = %q, want prefix %q", tc.score, got, tc.prefix)
		}
		if !strings.Contains(got, "core feedback") {
			t.Fatalf("FeedbackText(%.0f) dropped the oracle feedback: %q", tc.score, got)
		}
	}
}

func TestFeedbackEmotion(t *testing.T) {
	if got := feedbackEmotion(70); got != "positive" {
		t.Fatalf("feedbackEmotion(70) = %q, want positive", got)
	}
	if got := feedbackEmotion(69); got != "encouraging" {
		t.Fatalf("feedbackEmotion(69) = %q, want encouraging", got)
	}
}

func TestGenerateVisemes(t *testing.T) {
	vs := GenerateVisemes("Go far")
	if len(vs) != 2 {
		t.Fatalf("visemes = %d, want 2", len(vs))
	}
	if vs[0].Viseme != "A" || vs[0].Time != 0 {
		t.Fatalf("first viseme = %+v", vs[0])
	}
	if vs[1].Viseme != "F" {
		t.Fatalf("second viseme = %+v, want F shape", vs[1])
	}
	// Each word lasts 0.08s per letter with a 0.05s gap between words.
	if math.Abs(vs[0].Duration-0.16) > 1e-9 || math.Abs(vs[1].Time-0.21) > 1e-9 {
		t.Fatalf("timing = %+v", vs)
	}

	if got := GenerateVisemes("   "); len(got) != 0 {
		t.Fatalf("blank text visemes = %+v, want none", got)
	}
}

func TestEmotionParametersFallback(t *testing.T) {
	if p := EmotionParameters("friendly"); p["smile"] != 0.6 {
		t.Fatalf("friendly params = %+v", p)
	}
	baseline := EmotionParameters("professional")
	if p := EmotionParameters("nonsense"); p["smile"] != baseline["smile"] {
		t.Fatalf("unknown emotion must fall back to professional: %+v", p)
	}
}

func TestSpeechAudioCarriesText(t *testing.T) {
	var payload struct {
		Text          string `json:"text"`
		UseBrowserTTS bool   `json:"useBrowserTTS"`
	}
	if err := json.Unmarshal([]byte(SpeechAudio("hello")), &payload); err != nil {
		t.Fatalf("audio payload is not JSON: %v", err)
	}
	if payload.Text != "hello" || !payload.UseBrowserTTS {
		t.Fatalf("audio payload = %+v", payload)
	}
}
