package screen

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"nextchamp/app/internal/api"
	"nextchamp/app/internal/domain"
)

// placeholderValue stands in for any metric the server omitted.
const placeholderValue = "N/A"

// affirmativeFeedback fills an empty feedback list so the report never
// shows a blank section after a clean run.
const affirmativeFeedback = "Great form! No corrections needed."

// ReportView holds display-ready strings for one analysis report. It is a
// pure projection: no computation beyond formatting and defaulting.
type ReportView struct {
	Score    string // "72.3/100"
	Grade    string // "B"
	Reps     string // "15"
	Accuracy string // "88.0%"
	Duration string // "42.5s"
	Feedback []string
	Message  string
}

// RenderReport maps an AnalysisReport onto display values. Every numeric
// field defensively defaults to a placeholder when absent, and an empty
// feedback list renders as a single affirmative line.
func RenderReport(report *domain.AnalysisReport) ReportView {
	view := ReportView{
		Score:    placeholderValue,
		Grade:    placeholderValue,
		Reps:     placeholderValue,
		Accuracy: placeholderValue,
		Duration: placeholderValue,
		Feedback: []string{affirmativeFeedback},
	}
	if report == nil {
		return view
	}
	view.Message = report.Message

	if perf := report.Performance(); perf != nil {
		if perf.OverallScore != nil {
			view.Score = fmt.Sprintf("%.1f/100", *perf.OverallScore)
		}
		if perf.Grade != "" {
			view.Grade = perf.Grade
		}
		if perf.RepCount != nil {
			view.Reps = strconv.Itoa(*perf.RepCount)
		}
		if perf.FormAccuracy != nil {
			view.Accuracy = fmt.Sprintf("%.1f%%", *perf.FormAccuracy)
		}
		if perf.DurationSeconds != nil {
			view.Duration = fmt.Sprintf("%.1fs", *perf.DurationSeconds)
		}
	}
	if feedback := report.Feedback(); len(feedback) > 0 {
		view.Feedback = append([]string(nil), feedback...)
	}
	return view
}

// --- Post-Report Actions ---
//
// Three independent follow-ups become available once a report is current.
// Each is gated on its own precondition and fails on its own: a broken
// download never disturbs the displayed report or the other actions.

// AnalyzedVideoURL resolves the playable URL of the pose-annotated video.
// Available only when the report carried a server-relative video path.
func (s *UploadScreen) AnalyzedVideoURL() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil || s.report.VideoPath == "" {
		return "", false
	}
	return api.JoinURL(s.baseURL, s.report.VideoPath), true
}

// CanDownloadReport reports whether the PDF download is available, which
// requires a test id.
func (s *UploadScreen) CanDownloadReport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report != nil && s.report.TestID != ""
}

// CanDownloadAnalyzedVideo reports whether the analyzed-video download is
// available, which requires both a test id and a video path.
func (s *UploadScreen) CanDownloadAnalyzedVideo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report != nil && s.report.TestID != "" && s.report.VideoPath != ""
}

// DownloadReport streams the PDF report for the current test to dst.
func (s *UploadScreen) DownloadReport(ctx context.Context, dst io.Writer) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrScreenDisposed
	}
	if s.report == nil || s.report.TestID == "" {
		s.mu.Unlock()
		return ErrNoReport
	}
	testID := s.report.TestID
	s.mu.Unlock()

	if _, err := s.backend.DownloadReport(ctx, testID, dst); err != nil {
		return err
	}
	return nil
}

// DownloadAnalyzedVideo streams the pose-annotated video for the current
// test to dst.
func (s *UploadScreen) DownloadAnalyzedVideo(ctx context.Context, dst io.Writer) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrScreenDisposed
	}
	if s.report == nil || s.report.TestID == "" || s.report.VideoPath == "" {
		s.mu.Unlock()
		return ErrNoReport
	}
	testID := s.report.TestID
	s.mu.Unlock()

	if _, err := s.backend.DownloadAnalyzedVideo(ctx, testID, dst); err != nil {
		return err
	}
	return nil
}
