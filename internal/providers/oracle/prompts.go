package oracle

import (
	"fmt"
	"strings"

	"github.com/mockview/backend/internal/models"
)

func openingPrompt(role string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`You are an expert technical interviewer conducting a %s level interview for a %s position.
Generate ONE technical interview question appropriate for this role and difficulty level.
Return ONLY the question text, no additional commentary.`, difficulty, role)
}

func qaContext(turns []QAPair) string {
	if len(turns) == 0 {
		return "No previous questions."
	}
	var b strings.Builder
	for i, t := range turns {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s (Score: %.0f)\n", i+1, t.Question, i+1, t.Answer, t.Score)
	}
	return b.String()
}

func evaluatePrompt(in EvalInput) string {
	nextInstruction := ""
	jsonFormat := `{"score": <0-100>, "feedback": "<2 sentences>"}`
	if !in.FinalTurn {
		nextInstruction = fmt.Sprintf(`
3. Generate ONE new %s level %s question for a %s position that:
- Does NOT repeat previous questions
- Covers a different aspect
- Adapts to candidate performance (avg: %.0f%%)
Include as "nextQuestion" in the JSON.`, in.Difficulty, in.InterviewType, in.Role, in.AvgScore)
		jsonFormat = `{"score": <0-100>, "feedback": "<2 sentences>", "nextQuestion": "<new question text>"}`
	}

	return fmt.Sprintf(`Evaluate this interview answer and respond in JSON.
Question: %s
Answer: %s
Difficulty: %s

Previous context:
%s
%s

Return ONLY this JSON (no markdown):
%s`, in.Question, in.Answer, in.Difficulty, qaContext(in.PriorTurns), nextInstruction, jsonFormat)
}

func reportPrompt(in ReportInput) string {
	var b strings.Builder
	for i, t := range in.Turns {
		fmt.Fprintf(&b, "Q%d: %s\nA%d: %s\nScore: %.0f\n\n", i+1, t.Question, i+1, t.Answer, t.Score)
	}

	return fmt.Sprintf(`Analyze this interview session and generate a performance report.

Role: %s
Difficulty: %s
Overall Score: %.2f

Questions and Answers:
%s
Return this exact JSON format:
{
  "overall_score": <average score>,
  "strengths": ["strength 1", "strength 2", "strength 3"],
  "improvements": ["improvement 1", "improvement 2", "improvement 3"],
  "improved_sample_answers": [
    {"question": "<question>", "improved_answer": "<improved version>"},
    {"question": "<question>", "improved_answer": "<improved version>"}
  ],
  "suggested_topics": ["topic 1", "topic 2"]
}`, in.Role, in.InitialDifficulty, in.OverallScore, b.String())
}
