package services

import (
	"context"
	"fmt"
	"math"

	"github.com/mockview/backend/internal/models"
	"github.com/mockview/backend/internal/providers/oracle"
)

// ReportService finalizes the end-of-session report. The oracle does all the
// scoring; this layer only augments its output with derived fields.
type ReportService interface {
	Finalize(ctx context.Context, sess *models.InterviewSession, turns []oracle.QAPair) (*models.Report, error)
}

type reportService struct {
	oracle oracle.Provider
}

func NewReportService(o oracle.Provider) ReportService {
	return &reportService{oracle: o}
}

func (s *reportService) Finalize(ctx context.Context, sess *models.InterviewSession, turns []oracle.QAPair) (*models.Report, error) {
	rep, err := s.oracle.GenerateReport(ctx, oracle.ReportInput{
		Role:              sess.Role,
		InitialDifficulty: sess.InitialDifficulty,
		OverallScore:      sess.OverallScore,
		Turns:             turns,
	})
	if err != nil {
		return nil, err
	}

	rep.OverallScoreOutOf10 = fmt.Sprintf("%.1f", rep.OverallScore/10)
	rep.SessionDurationMinutes = sessionDurationMinutes(sess)
	return rep, nil
}

func sessionDurationMinutes(sess *models.InterviewSession) int {
	if sess.EndedAt == nil || sess.StartedAt.IsZero() {
		return 0
	}
	return int(math.Round(sess.EndedAt.Sub(sess.StartedAt).Minutes()))
}
