package domain

import "io"

// UploadRequest carries everything needed for one analysis submission.
// It is built fresh from user input at submit time and discarded once the
// request completes.
type UploadRequest struct {
	UserID   string
	Exercise ExerciseType
	Name     string
	Age      int
	Height   int // cm
	Weight   int // kg

	// Video streams the raw recording. FileName is the name the backend
	// stores alongside the bytes.
	Video    io.Reader
	FileName string
}

// AnalysisReport is the decoded response of POST /test/analysetest. One
// report is "current" per upload screen at a time; a new submission
// replaces it wholesale, never field by field.
type AnalysisReport struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	TestID    string      `json:"test_id,omitempty"`
	VideoPath string      `json:"video_path,omitempty"`
	Report    *ReportData `json:"report_data,omitempty"`
}

// ReportData is the nested analysis payload.
type ReportData struct {
	Performance *Performance `json:"performance,omitempty"`
	Feedback    []string     `json:"feedback,omitempty"`
}

// Performance holds the numeric scoring of one analysis run. Pointer
// fields distinguish "absent" from a genuine zero so the renderer can fall
// back to a placeholder.
type Performance struct {
	OverallScore    *float64 `json:"overall_score,omitempty"`
	Grade           string   `json:"grade,omitempty"`
	RepCount        *int     `json:"rep_count,omitempty"`
	FormAccuracy    *float64 `json:"form_accuracy,omitempty"`
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`
}

// Performance returns the nested performance record, or nil when the
// server omitted it.
func (r *AnalysisReport) Performance() *Performance {
	if r == nil || r.Report == nil {
		return nil
	}
	return r.Report.Performance
}

// Feedback returns the ordered feedback lines, possibly empty.
func (r *AnalysisReport) Feedback() []string {
	if r == nil || r.Report == nil {
		return nil
	}
	return r.Report.Feedback
}
