package live

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Viseme is one mouth shape with its start time and duration in seconds.
type Viseme struct {
	Viseme   string  `json:"viseme"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
}

var visemeShapes = map[byte]string{
	'a': "A", 'e': "E", 'i': "I", 'o': "O", 'u': "U",
	'm': "M", 'f': "F", 'v': "F", 't': "TH",
	's': "S", 'z': "S", 'l': "L", 'r': "R", 'w': "W",
}

// GenerateVisemes produces a rough word-timed viseme track for client-side
// lip sync. Timing is purely length-based, not phonetic.
func GenerateVisemes(text string) []Viseme {
	words := strings.Fields(strings.ToLower(text))
	out := make([]Viseme, 0, len(words))

	var t float64
	for _, w := range words {
		shape := "A"
		if s, ok := visemeShapes[w[0]]; ok {
			shape = s
		}
		d := float64(len(w)) * 0.08
		out = append(out, Viseme{Viseme: shape, Time: t, Duration: d})
		t += d + 0.05
	}
	return out
}

// EmotionParameters returns avatar face parameters for a named emotion,
// falling back to the professional baseline.
func EmotionParameters(emotion string) map[string]float64 {
	params := map[string]map[string]float64{
		"friendly":     {"eyebrows": 0.3, "smile": 0.6, "eyeOpenness": 0.9},
		"professional": {"eyebrows": 0, "smile": 0.2, "eyeOpenness": 0.8},
		"positive":     {"eyebrows": 0.4, "smile": 0.8, "eyeOpenness": 1.0},
		"encouraging":  {"eyebrows": 0.2, "smile": 0.5, "eyeOpenness": 0.85},
		"thinking":     {"eyebrows": -0.1, "smile": 0, "eyeOpenness": 0.7},
	}
	if p, ok := params[emotion]; ok {
		return p
	}
	return params["professional"]
}

// SpeechAudio returns the audio payload for an avatar-speak event. Synthesis
// is delegated to the browser; the payload just carries the text.
func SpeechAudio(text string) string {
	b, _ := json.Marshal(map[string]any{"text": text, "useBrowserTTS": true})
	return string(b)
}

// FeedbackText wraps the oracle's feedback in a conversational frame whose
// tone follows the score tier. Text composition only; no state implication.
func FeedbackText(score float64, feedback string) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("Excellent answer! %s", feedback)
	case score >= 60:
		return fmt.Sprintf("Good attempt. %s Let's continue.", feedback)
	default:
		return fmt.Sprintf("I appreciate your effort. %s Take your time with the next one.", feedback)
	}
}

func feedbackEmotion(score float64) string {
	if score >= 70 {
		return "positive"
	}
	return "encouraging"
}
