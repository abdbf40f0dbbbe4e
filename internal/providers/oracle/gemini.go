package oracle

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/utils"
)

// Gemini implements Provider on Vertex AI. It holds only connection state;
// every call is a pure function of its inputs.
type Gemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewGemini(ctx context.Context, projectID, location, modelName string) (*Gemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	return &Gemini{client: c, model: c.GenerativeModel(modelName)}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) GenerateOpeningQuestion(ctx context.Context, role string, difficulty models.Difficulty) (string, error) {
	const op = "Gemini.GenerateOpeningQuestion"
	text, err := g.generate(ctx, op, openingPrompt(role, difficulty))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (g *Gemini) EvaluateAnswer(ctx context.Context, in EvalInput) (*Evaluation, error) {
	const op = "Gemini.EvaluateAnswer"
	text, err := g.generate(ctx, op, evaluatePrompt(in))
	if err != nil {
		return nil, err
	}

	var ev Evaluation
	if err := parsePayload(op, text, &ev); err != nil {
		return nil, err
	}
	if !in.FinalTurn && strings.TrimSpace(ev.NextQuestion) == "" {
		return nil, utils.E(utils.CodeMalformedResponse, op, "oracle omitted nextQuestion on a non-final turn", nil)
	}
	return &ev, nil
}

func (g *Gemini) GenerateReport(ctx context.Context, in ReportInput) (*models.Report, error) {
	const op = "Gemini.GenerateReport"
	text, err := g.generate(ctx, op, reportPrompt(in))
	if err != nil {
		return nil, err
	}

	var r models.Report
	if err := parsePayload(op, text, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (g *Gemini) generate(ctx context.Context, op, prompt string) (string, error) {
	var b strings.Builder

	it := g.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
	for {
		resp, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return "", classifyError(op, err)
		}
		for _, cand := range resp.Candidates {
			if cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if t, ok := part.(vertexgenai.Text); ok {
					b.WriteString(string(t))
				}
			}
		}
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", utils.E(utils.CodeMalformedResponse, op, "oracle returned an empty response", nil)
	}
	return b.String(), nil
}

// classifyError normalizes SDK/transport failures into the oracle taxonomy.
// Anything unrecognized is treated as transient so callers may resubmit the
// same turn.
func classifyError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return utils.E(utils.CodeTransientUnavailable, op, "oracle call cancelled or timed out", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "unauthenticated"),
		strings.Contains(msg, "permission denied"):
		return utils.E(utils.CodeAuthFailure, op, "oracle authentication failed", err)
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "resource exhausted"),
		strings.Contains(msg, "429"):
		return utils.E(utils.CodeRateLimited, op, "oracle rate limit exceeded", err)
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "404"):
		return utils.E(utils.CodeModelUnavailable, op, "oracle model not found", err)
	default:
		return utils.E(utils.CodeTransientUnavailable, op, "oracle temporarily unavailable", err)
	}
}
