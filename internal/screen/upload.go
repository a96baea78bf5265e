// Package screen holds the client-side coordinators behind each visible
// screen of the app: the upload-and-analyze flow, the profile-completion
// wizard and the assistant chat. Coordinators own their screen's state,
// call the backend client, and hand display-ready values to the UI layer.
package screen

import (
	"context"
	"errors"
	"io"
	"sync"

	"nextchamp/app/internal/api"
	"nextchamp/app/internal/domain"
	"nextchamp/app/internal/media"
)

// --- Error Definitions ---

var (
	ErrNoVideo         = errors.New("no video selected: record or pick a video first")
	ErrNoExercise      = errors.New("no exercise selected: choose an exercise type first")
	ErrInvalidExercise = errors.New("unknown exercise type")
	ErrSubmitInFlight  = errors.New("an upload is already in progress")
	ErrScreenDisposed  = errors.New("screen has been disposed")
	ErrNoReport        = errors.New("no analysis report available")
)

// genericFailureNotice is shown when neither the transport nor the server
// provided anything user-presentable.
const genericFailureNotice = "Analysis failed. Please check your connection and try again."

// Phase is the upload screen's lifecycle position. Exactly one phase is
// active at a time, which keeps combinations like "busy and reported"
// unrepresentable.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingMedia
	PhaseReady
	PhaseSubmitting
	PhaseReported
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingMedia:
		return "awaiting-media"
	case PhaseReady:
		return "ready"
	case PhaseSubmitting:
		return "submitting"
	case PhaseReported:
		return "reported"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the slice of the API client the upload screen needs.
type Backend interface {
	AnalyzeTest(ctx context.Context, req domain.UploadRequest) (*domain.AnalysisReport, error)
	DownloadReport(ctx context.Context, testID string, dst io.Writer) (int64, error)
	DownloadAnalyzedVideo(ctx context.Context, testID string, dst io.Writer) (int64, error)
}

// UploadScreen coordinates one visit to the upload-and-analyze screen:
// exercise selection, media acquisition, the single in-flight submission
// and the post-report actions. All state changes funnel through apply, and
// a dispose flag suppresses updates that would land after teardown.
type UploadScreen struct {
	backend Backend
	baseURL string
	profile domain.UserProfile

	mu       sync.Mutex
	phase    Phase
	exercise domain.ExerciseType
	video    *media.Video
	report   *domain.AnalysisReport
	notice   string
	disposed bool
}

// NewUploadScreen builds a fresh screen for the signed-in user. baseURL
// is needed to resolve the analyzed-video playback URL from the
// server-relative path in the report.
func NewUploadScreen(backend Backend, baseURL string, profile domain.UserProfile) *UploadScreen {
	return &UploadScreen{
		backend: backend,
		baseURL: baseURL,
		profile: profile,
		phase:   PhaseIdle,
	}
}

// apply is the single mutation entry point. Mutations are dropped once
// the screen is disposed, so a response that races teardown can never
// resurrect state.
func (s *UploadScreen) apply(mutate func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	mutate()
	return true
}

// SelectExercise records the chosen exercise type. Selecting a new type
// deselects the previous one; the choice is mutually exclusive by
// construction since only one value is stored.
func (s *UploadScreen) SelectExercise(t domain.ExerciseType) error {
	if !t.Valid() {
		return ErrInvalidExercise
	}
	if !s.apply(func() { s.exercise = t }) {
		return ErrScreenDisposed
	}
	return nil
}

// ClearExercise drops the current selection.
func (s *UploadScreen) ClearExercise() {
	s.apply(func() { s.exercise = domain.ExerciseUnknown })
}

// SelectedExercise returns the active selection, or ExerciseUnknown.
func (s *UploadScreen) SelectedExercise() domain.ExerciseType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise
}

// AcquireVideo obtains a recording from the given source. Cancellation
// restores the previous state untouched. Failures surface as the returned
// error and a user notice, clear the pending selection, and leave any
// previously acquired video and displayed report alone.
func (s *UploadScreen) AcquireVideo(ctx context.Context, src media.Source) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrScreenDisposed
	}
	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return ErrSubmitInFlight
	}
	prev := s.phase
	s.phase = PhaseAwaitingMedia
	s.mu.Unlock()

	video, err := src.Acquire(ctx)
	if err != nil {
		s.apply(func() {
			s.phase = prev
			s.notice = err.Error()
		})
		return err
	}
	if video == nil {
		// User backed out of the picker: not an error, nothing changes.
		s.apply(func() { s.phase = prev })
		return nil
	}

	s.apply(func() {
		if s.video != nil {
			// A new acquisition invalidates the previous handle and any
			// preview rendered from it.
			s.video.Release()
		}
		s.video = video
		s.phase = PhaseReady
		s.notice = ""
	})
	return nil
}

// Video returns the currently acquired recording, if any.
func (s *UploadScreen) Video() *media.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

// Busy reports whether a submission is in flight.
func (s *UploadScreen) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseSubmitting
}

// Phase returns the current lifecycle phase.
func (s *UploadScreen) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Notice returns the current user-facing status message.
func (s *UploadScreen) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Report returns the current analysis report, or nil before the first
// successful submission.
func (s *UploadScreen) Report() *domain.AnalysisReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Submit uploads the acquired video for analysis. Preconditions are
// checked before any network traffic: a video must be acquired and an
// exercise selected. At most one submission is in flight; calling Submit
// while busy issues no request and returns ErrSubmitInFlight. The busy
// phase is cleared on every path out of this method.
//
// On success the new report replaces the old one wholesale. On any
// failure (transport error, non-200, undecodable body, or a 200 with
// success=false) the previously displayed report is left untouched and
// the failure becomes the screen notice.
func (s *UploadScreen) Submit(ctx context.Context) (*domain.AnalysisReport, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrScreenDisposed
	}
	if s.phase == PhaseSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if s.video == nil {
		s.mu.Unlock()
		return nil, ErrNoVideo
	}
	if !s.exercise.Valid() {
		s.mu.Unlock()
		return nil, ErrNoExercise
	}
	video := s.video
	exercise := s.exercise
	s.phase = PhaseSubmitting
	s.notice = "Uploading video for analysis..."
	s.mu.Unlock()

	report, err := s.runSubmit(ctx, video, exercise)

	// Clear the busy phase regardless of outcome, including the teardown
	// race: a disposed screen keeps no state either way.
	switch {
	case err != nil:
		s.apply(func() {
			s.phase = PhaseFailed
			s.notice = failureNotice(err)
		})
		return nil, err
	case !report.Success:
		notice := report.Message
		if notice == "" {
			notice = genericFailureNotice
		}
		s.apply(func() {
			s.phase = PhaseFailed
			s.notice = notice
		})
		return nil, &SubmissionError{Message: notice}
	default:
		s.apply(func() {
			s.report = report
			s.phase = PhaseReported
			s.notice = report.Message
		})
		return report, nil
	}
}

// runSubmit builds the transient UploadRequest and performs the call.
func (s *UploadScreen) runSubmit(ctx context.Context, video *media.Video, exercise domain.ExerciseType) (*domain.AnalysisReport, error) {
	stream, err := video.Open()
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	req := domain.UploadRequest{
		UserID:   s.profile.UserID,
		Exercise: exercise,
		Name:     s.profile.Name,
		Age:      s.profile.AgeYears(),
		Height:   s.profile.HeightCm(),
		Weight:   s.profile.WeightKg(),
		Video:    stream,
		FileName: video.FileName,
	}
	return s.backend.AnalyzeTest(ctx, req)
}

// SubmissionError is a server-reported analysis failure: HTTP 200 with
// success=false. The message is the server's verbatim explanation.
type SubmissionError struct {
	Message string
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// failureNotice maps an error to the string shown to the user. Server
// detail messages pass through verbatim; transport and parse failures
// collapse to the generic retry notice.
func failureNotice(err error) string {
	var serr *api.StatusError
	if errors.As(err, &serr) && serr.Message != "" {
		return serr.Message
	}
	return genericFailureNotice
}

// Dispose tears the screen down: the pending video handle is released and
// every later state mutation is suppressed.
func (s *UploadScreen) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	if s.video != nil {
		s.video.Release()
		s.video = nil
	}
	s.report = nil
	s.exercise = domain.ExerciseUnknown
	// A response still in flight is dropped by apply, so the phase must be
	// settled here or the screen would report busy forever.
	s.phase = PhaseIdle
	s.disposed = true
}
