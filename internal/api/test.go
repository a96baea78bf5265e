package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nextchamp/app/internal/domain"
)

// TestResult is one row of a user's past analysis runs as returned by
// GET /test/results/{user_id}.
type TestResult struct {
	TestID       string         `json:"test_id"`
	UserID       string         `json:"user_id"`
	Score        float64        `json:"score"`
	Timestamp    time.Time      `json:"timestamp"`
	ExerciseType string         `json:"exercise_type"`
	VideoPath    string         `json:"video_path,omitempty"`
	ReportPath   string         `json:"report_path,omitempty"`
	Feedback     map[string]any `json:"feedback,omitempty"`
}

// UserStats is the aggregate progress overview from GET /test/stats/{user_id}.
type UserStats struct {
	TotalTests    int       `json:"total_tests"`
	AvgScore      float64   `json:"avg_score"`
	MaxScore      float64   `json:"max_score"`
	MinScore      float64   `json:"min_score"`
	ProgressTrend string    `json:"progress_trend"`
	RecentScores  []float64 `json:"recent_scores,omitempty"`
}

// AnalyzeTest uploads a video for analysis as a single multipart POST and
// returns the decoded report. The video part streams straight from
// req.Video; nothing is buffered in full.
//
// A *domain.AnalysisReport with Success=false is returned with a nil
// error: the HTTP exchange succeeded and the server's message is for the
// caller to surface. Transport failures, non-200 statuses and undecodable
// bodies are returned as errors.
func (c *Client) AnalyzeTest(ctx context.Context, req domain.UploadRequest) (*domain.AnalysisReport, error) {
	if req.Video == nil {
		return nil, fmt.Errorf("upload request has no video stream")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeAnalyzeForm(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/test/analysetest"), pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusErrorFromBody(resp)
	}

	var report domain.AnalysisReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	return &report, nil
}

// writeAnalyzeForm emits the multipart body: one binary `video` part with
// the original filename, plus the scalar identity and anthropometric
// fields the analyzer personalizes scoring with.
func writeAnalyzeForm(mw *multipart.Writer, req domain.UploadRequest) error {
	defer mw.Close()

	fields := map[string]string{
		"user_id":       req.UserID,
		"exercise_type": req.Exercise.WireToken(),
		"name":          req.Name,
		"age":           strconv.Itoa(req.Age),
		"height":        strconv.Itoa(req.Height),
		"weight":        strconv.Itoa(req.Weight),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	part, err := mw.CreateFormFile("video", req.FileName)
	if err != nil {
		return fmt.Errorf("failed to create video part: %w", err)
	}
	if _, err := io.Copy(part, req.Video); err != nil {
		return fmt.Errorf("failed to stream video: %w", err)
	}
	return nil
}

// DownloadReport streams the PDF report for a test to dst.
func (c *Client) DownloadReport(ctx context.Context, testID string, dst io.Writer) (int64, error) {
	return c.download(ctx, "/test/download/report/"+url.PathEscape(testID), dst)
}

// DownloadAnalyzedVideo streams the pose-annotated video for a test to dst.
func (c *Client) DownloadAnalyzedVideo(ctx context.Context, testID string, dst io.Writer) (int64, error) {
	return c.download(ctx, "/test/download/analyzed-video/"+url.PathEscape(testID), dst)
}

// TestResults lists a user's past analysis runs, newest first. limit <= 0
// leaves the count to the server default.
func (c *Client) TestResults(ctx context.Context, userID string, limit int) ([]TestResult, error) {
	path := "/test/results/" + url.PathEscape(userID)
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var results []TestResult
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// TestResult fetches the full stored document of one analysis run. The
// document shape is server-owned, so it is returned as a generic map.
func (c *Client) TestResult(ctx context.Context, testID string) (map[string]any, error) {
	var result map[string]any
	if err := c.doJSON(ctx, http.MethodGet, "/test/result/"+url.PathEscape(testID), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// UserStats fetches the aggregate score statistics for a user.
func (c *Client) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	var stats UserStats
	if err := c.doJSON(ctx, http.MethodGet, "/test/stats/"+url.PathEscape(userID), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// WorkoutPlan fetches the personalized plan generated from a user's
// latest test, or from a specific test when testID is non-empty.
func (c *Client) WorkoutPlan(ctx context.Context, userID, testID string) (map[string]any, error) {
	path := "/test/workout-plan/" + url.PathEscape(userID)
	if testID != "" {
		path += "?test_id=" + url.QueryEscape(testID)
	}
	var plan map[string]any
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Health probes the analysis service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/test/health", nil, nil)
}
