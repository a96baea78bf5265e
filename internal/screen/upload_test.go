package screen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"nextchamp/app/internal/api"
	"nextchamp/app/internal/domain"
	"nextchamp/app/internal/media"
)

// fakeBackend implements Backend in-process. When block is non-nil,
// AnalyzeTest parks on it after signalling started, which lets tests hold
// a submission in flight.
type fakeBackend struct {
	mu       sync.Mutex
	requests []domain.UploadRequest

	report *domain.AnalysisReport
	err    error

	block   chan struct{}
	started chan struct{}

	reportBytes []byte
	videoBytes  []byte
}

func (f *fakeBackend) AnalyzeTest(ctx context.Context, req domain.UploadRequest) (*domain.AnalysisReport, error) {
	// Drain the stream like the real client does when building the
	// multipart body.
	if req.Video != nil {
		io.Copy(io.Discard, req.Video)
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeBackend) DownloadReport(ctx context.Context, testID string, dst io.Writer) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := dst.Write(f.reportBytes)
	return int64(n), err
}

func (f *fakeBackend) DownloadAnalyzedVideo(ctx context.Context, testID string, dst io.Writer) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := dst.Write(f.videoBytes)
	return int64(n), err
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func successReport() *domain.AnalysisReport {
	return &domain.AnalysisReport{
		Success:   true,
		Message:   "Exercise analysis completed successfully",
		TestID:    "t123",
		VideoPath: "analyzed_videos/t123.mp4",
		Report: &domain.ReportData{
			Performance: &domain.Performance{
				OverallScore:    floatPtr(72.3),
				Grade:           "B",
				RepCount:        intPtr(15),
				FormAccuracy:    floatPtr(88.0),
				DurationSeconds: floatPtr(42.5),
			},
			Feedback: []string{"Straighten your back at the top of the rep."},
		},
	}
}

func testProfile() domain.UserProfile {
	return domain.UserProfile{
		UserID: "arjun_1a2b3c4d",
		Name:   "Arjun",
		Age:    "17",
		Height: "172",
		Weight: "64",
	}
}

// writeTempVideo drops a fake recording into t.TempDir and returns its path.
func writeTempVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o600))
	return path
}

func readyScreen(t *testing.T, backend Backend) *UploadScreen {
	t.Helper()
	s := NewUploadScreen(backend, "http://h", testProfile())
	require.NoError(t, s.SelectExercise(domain.Squats))
	src := media.NewLibrarySource(writeTempVideo(t, "squat_attempt.mp4"))
	require.NoError(t, s.AcquireVideo(context.Background(), src))
	return s
}

func TestSelectExercise(t *testing.T) {
	s := NewUploadScreen(&fakeBackend{}, "http://h", testProfile())
	require.Equal(t, domain.ExerciseUnknown, s.SelectedExercise())

	require.NoError(t, s.SelectExercise(domain.Pushups))
	require.Equal(t, domain.Pushups, s.SelectedExercise())

	// A new selection replaces the old one; only one can be active.
	require.NoError(t, s.SelectExercise(domain.Squats))
	require.Equal(t, domain.Squats, s.SelectedExercise())

	require.ErrorIs(t, s.SelectExercise(domain.ExerciseUnknown), ErrInvalidExercise)
	require.Equal(t, domain.Squats, s.SelectedExercise())

	s.ClearExercise()
	require.Equal(t, domain.ExerciseUnknown, s.SelectedExercise())
}

func TestSubmit_PreconditionsIssueNoRequest(t *testing.T) {
	backend := &fakeBackend{report: successReport()}
	s := NewUploadScreen(backend, "http://h", testProfile())

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoVideo)

	src := media.NewLibrarySource(writeTempVideo(t, "clip.mp4"))
	require.NoError(t, s.AcquireVideo(context.Background(), src))

	_, err = s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoExercise)

	require.Zero(t, backend.requestCount())
}

func TestSubmit_Success(t *testing.T) {
	backend := &fakeBackend{report: successReport()}
	s := readyScreen(t, backend)

	report, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "t123", report.TestID)
	require.Equal(t, PhaseReported, s.Phase())
	require.False(t, s.Busy())
	require.Equal(t, "Exercise analysis completed successfully", s.Notice())
	require.Same(t, report, s.Report())

	require.Equal(t, 1, backend.requestCount())
	req := backend.requests[0]
	require.Equal(t, "arjun_1a2b3c4d", req.UserID)
	require.Equal(t, domain.Squats, req.Exercise)
	require.Equal(t, "Arjun", req.Name)
	require.Equal(t, 17, req.Age)
	require.Equal(t, 172, req.Height)
	require.Equal(t, 64, req.Weight)
	require.Equal(t, "squat_attempt.mp4", req.FileName)
}

func TestSubmit_ReplacesReportWholesale(t *testing.T) {
	backend := &fakeBackend{report: successReport()}
	s := readyScreen(t, backend)

	first, err := s.Submit(context.Background())
	require.NoError(t, err)

	second := successReport()
	second.TestID = "t456"
	second.Report.Performance.Grade = "A"
	backend.report = second

	report, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.NotSame(t, first, report)
	require.Equal(t, "t456", s.Report().TestID)
	require.Equal(t, "A", s.Report().Performance().Grade)
}

func TestSubmit_ServerReportedFailureKeepsPreviousReport(t *testing.T) {
	backend := &fakeBackend{report: successReport()}
	s := readyScreen(t, backend)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	backend.report = &domain.AnalysisReport{
		Success: false,
		Message: "Invalid video format. Please upload MP4, AVI, or MOV files.",
	}

	_, err = s.Submit(context.Background())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	require.Equal(t, "Invalid video format. Please upload MP4, AVI, or MOV files.", subErr.Message)

	require.Equal(t, PhaseFailed, s.Phase())
	require.False(t, s.Busy())
	require.Equal(t, subErr.Message, s.Notice())
	// The failed run never disturbs the report already on screen.
	require.Equal(t, "t123", s.Report().TestID)
}

func TestSubmit_TransportFailureNotices(t *testing.T) {
	t.Run("server detail passes through", func(t *testing.T) {
		backend := &fakeBackend{err: &api.StatusError{StatusCode: 500, Message: "Analysis pipeline crashed"}}
		s := readyScreen(t, backend)

		_, err := s.Submit(context.Background())
		require.Error(t, err)
		require.Equal(t, "Analysis pipeline crashed", s.Notice())
		require.Equal(t, PhaseFailed, s.Phase())
	})

	t.Run("opaque failure collapses to generic notice", func(t *testing.T) {
		backend := &fakeBackend{err: errors.New("connection reset by peer")}
		s := readyScreen(t, backend)

		_, err := s.Submit(context.Background())
		require.Error(t, err)
		require.Equal(t, genericFailureNotice, s.Notice())
	})
}

func TestSubmit_WhileBusyIsNoOp(t *testing.T) {
	backend := &fakeBackend{
		report:  successReport(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := readyScreen(t, backend)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()
	<-backend.started
	require.True(t, s.Busy())

	// Second submit while the first is parked: rejected without a request.
	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInFlight)
	require.Equal(t, 1, backend.requestCount())

	close(backend.block)
	require.NoError(t, <-done)
	require.False(t, s.Busy())
	require.Equal(t, PhaseReported, s.Phase())
}

func TestAcquireVideo(t *testing.T) {
	t.Run("cancellation restores previous state", func(t *testing.T) {
		s := NewUploadScreen(&fakeBackend{}, "http://h", testProfile())
		require.NoError(t, s.AcquireVideo(context.Background(), media.NewLibrarySource("")))
		require.Nil(t, s.Video())
		require.Equal(t, PhaseIdle, s.Phase())
	})

	t.Run("unsupported format keeps previous video", func(t *testing.T) {
		s := NewUploadScreen(&fakeBackend{}, "http://h", testProfile())
		require.NoError(t, s.AcquireVideo(context.Background(), media.NewLibrarySource(writeTempVideo(t, "first.mp4"))))
		first := s.Video()

		err := s.AcquireVideo(context.Background(), media.NewLibrarySource("notes.txt"))
		require.ErrorIs(t, err, media.ErrUnsupportedFormat)
		require.Same(t, first, s.Video())
		require.False(t, first.Released())
		require.Equal(t, media.ErrUnsupportedFormat.Error(), s.Notice())
	})

	t.Run("new acquisition releases the old handle", func(t *testing.T) {
		s := NewUploadScreen(&fakeBackend{}, "http://h", testProfile())
		require.NoError(t, s.AcquireVideo(context.Background(), media.NewLibrarySource(writeTempVideo(t, "first.mp4"))))
		first := s.Video()

		require.NoError(t, s.AcquireVideo(context.Background(), media.NewLibrarySource(writeTempVideo(t, "second.mov"))))
		require.True(t, first.Released())
		require.Equal(t, "second.mov", s.Video().FileName)
		require.Equal(t, PhaseReady, s.Phase())
	})
}

func TestDispose(t *testing.T) {
	backend := &fakeBackend{report: successReport()}
	s := readyScreen(t, backend)
	video := s.Video()

	s.Dispose()
	require.True(t, video.Released())
	require.Nil(t, s.Report())
	require.Equal(t, PhaseIdle, s.Phase())
	require.False(t, s.Busy())

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrScreenDisposed)
	require.ErrorIs(t, s.SelectExercise(domain.Squats), ErrScreenDisposed)
	require.ErrorIs(t, s.AcquireVideo(context.Background(), media.NewLibrarySource("x.mp4")), ErrScreenDisposed)
}

func TestDispose_SuppressesLateResponse(t *testing.T) {
	backend := &fakeBackend{
		report:  successReport(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := readyScreen(t, backend)

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background())
		close(done)
	}()
	<-backend.started

	s.Dispose()
	close(backend.block)
	<-done

	// The response landed after teardown: nothing was resurrected and the
	// screen is not stuck reporting an in-flight submission.
	require.Nil(t, s.Report())
	require.False(t, s.Busy())
	require.Equal(t, PhaseIdle, s.Phase())
}

func TestPostReportActions(t *testing.T) {
	backend := &fakeBackend{
		report:      successReport(),
		reportBytes: []byte("pdf-bytes"),
		videoBytes:  []byte("video-bytes"),
	}
	s := NewUploadScreen(backend, "http://h/", testProfile())

	// Nothing is available before the first report.
	_, ok := s.AnalyzedVideoURL()
	require.False(t, ok)
	require.False(t, s.CanDownloadReport())
	require.False(t, s.CanDownloadAnalyzedVideo())
	require.ErrorIs(t, s.DownloadReport(context.Background(), io.Discard), ErrNoReport)

	require.NoError(t, s.SelectExercise(domain.Squats))
	require.NoError(t, s.AcquireVideo(context.Background(), media.NewLibrarySource(writeTempVideo(t, "clip.mp4"))))
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	url, ok := s.AnalyzedVideoURL()
	require.True(t, ok)
	require.Equal(t, "http://h/analyzed_videos/t123.mp4", url)
	require.True(t, s.CanDownloadReport())
	require.True(t, s.CanDownloadAnalyzedVideo())

	var pdf, vid bytes.Buffer
	require.NoError(t, s.DownloadReport(context.Background(), &pdf))
	require.Equal(t, "pdf-bytes", pdf.String())
	require.NoError(t, s.DownloadAnalyzedVideo(context.Background(), &vid))
	require.Equal(t, "video-bytes", vid.String())

	// A broken download leaves the displayed report untouched.
	backend.err = &api.StatusError{StatusCode: 404, Message: "Report file not found"}
	require.Error(t, s.DownloadReport(context.Background(), io.Discard))
	require.Equal(t, "t123", s.Report().TestID)
}
