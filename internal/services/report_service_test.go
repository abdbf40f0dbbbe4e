package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/services"
	"github.com/mockview/backend/internal/utils"
)

func TestFinalizeDerivesFields(t *testing.T) {
	started := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	ended := started.Add(12*time.Minute + 40*time.Second) // rounds to 13

	fo := &fakeOracle{report: models.Report{
		OverallScore: 73,
		Strengths:    []string{"clear communication"},
	}}
	svc := services.NewReportService(fo)

	rep, err := svc.Finalize(context.Background(), &models.InterviewSession{
		Role:              "Backend Engineer",
		InitialDifficulty: models.DifficultyMedium,
		OverallScore:      73,
		StartedAt:         started,
		EndedAt:           &ended,
	}, nil)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	if rep.OverallScoreOutOf10 != "7.3" {
		t.Fatalf("out-of-10 = %q, want 7.3", rep.OverallScoreOutOf10)
	}
	if rep.SessionDurationMinutes != 13 {
		t.Fatalf("duration = %d, want 13", rep.SessionDurationMinutes)
	}
}

func TestFinalizeDurationWithoutTimestamps(t *testing.T) {
	fo := &fakeOracle{report: models.Report{OverallScore: 50}}
	svc := services.NewReportService(fo)

	rep, err := svc.Finalize(context.Background(), &models.InterviewSession{
		Role:         "Backend Engineer",
		OverallScore: 50,
	}, nil)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if rep.SessionDurationMinutes != 0 {
		t.Fatalf("duration without ended_at = %d, want 0", rep.SessionDurationMinutes)
	}
	if rep.OverallScoreOutOf10 != "5.0" {
		t.Fatalf("out-of-10 = %q, want 5.0", rep.OverallScoreOutOf10)
	}
}

func TestFinalizePropagatesOracleError(t *testing.T) {
	fo := &fakeOracle{
		reportErr: utils.E(utils.CodeMalformedResponse, "Gemini.GenerateReport", "oracle response is not valid JSON", nil),
	}
	svc := services.NewReportService(fo)

	_, err := svc.Finalize(context.Background(), &models.InterviewSession{Role: "Backend Engineer"}, nil)
	if !utils.IsCode(err, utils.CodeMalformedResponse) {
		t.Fatalf("error = %v, want MALFORMED_RESPONSE propagated verbatim", err)
	}
}
