// Package media acquires exercise recordings for upload: either an
// existing file from the device library or a fresh capture handed over by
// a recording tool. Acquisition yields zero or one video handle; user
// cancellation yields none and is not an error.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// --- Error Definitions ---

var (
	// ErrUnsupportedFormat rejects files outside the backend's allow-list.
	ErrUnsupportedFormat = errors.New("unsupported video format: use MP4, AVI, MOV or MKV")
	// ErrReleased marks a handle whose bytes were invalidated by a newer
	// acquisition.
	ErrReleased = errors.New("video handle has been released")
)

// supportedExtensions mirrors the validation the analysis endpoint applies
// to uploaded filenames.
var supportedExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
	".mkv": true,
}

// Video is a handle to one acquired recording. The byte stream is opened
// lazily so a preview can exist without the whole file in memory. The
// release flag is atomic: Release runs on the screen's teardown path while
// Open and Size may run on the submit goroutine.
type Video struct {
	FileName string
	path     string
	released atomic.Bool
}

// Open returns a fresh reader over the recording's bytes. The caller owns
// closing it.
func (v *Video) Open() (io.ReadCloser, error) {
	if v.released.Load() {
		return nil, ErrReleased
	}
	f, err := os.Open(v.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video: %w", err)
	}
	return f, nil
}

// Size reports the recording's length in bytes.
func (v *Video) Size() (int64, error) {
	if v.released.Load() {
		return 0, ErrReleased
	}
	info, err := os.Stat(v.path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat video: %w", err)
	}
	return info.Size(), nil
}

// Release invalidates the handle. Acquiring a new video releases the
// previous one, so stale previews can never be replayed.
func (v *Video) Release() {
	v.released.Store(true)
}

// Released reports whether the handle is still usable.
func (v *Video) Released() bool {
	return v.released.Load()
}

// Source yields videos from one device capability. Acquire returns
// (nil, nil) when the user backs out of the picker or recorder.
type Source interface {
	Acquire(ctx context.Context) (*Video, error)
}

// LibrarySource picks an existing recording from the device library by
// path. An empty path models the user dismissing the picker.
type LibrarySource struct {
	Path string
}

func NewLibrarySource(path string) LibrarySource {
	return LibrarySource{Path: path}
}

func (s LibrarySource) Acquire(ctx context.Context) (*Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return videoFromPath(s.Path)
}

// CaptureFunc runs a live recording session and returns the path of the
// captured file. An empty path means the user aborted the recording.
type CaptureFunc func(ctx context.Context) (string, error)

// CaptureSource acquires a video by invoking an external capture routine,
// then validates the produced file exactly like a library pick.
type CaptureSource struct {
	Capture CaptureFunc
}

func NewCaptureSource(capture CaptureFunc) CaptureSource {
	return CaptureSource{Capture: capture}
}

func (s CaptureSource) Acquire(ctx context.Context) (*Video, error) {
	if s.Capture == nil {
		return nil, errors.New("capture source has no recorder attached")
	}
	path, err := s.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	return videoFromPath(path)
}

// videoFromPath validates a candidate file and wraps it in a handle.
// Permission and I/O problems come back as plain errors; the caller
// surfaces them as a recoverable notice.
func videoFromPath(path string) (*Video, error) {
	if path == "" {
		// Cancelled; no video, no error.
		return nil, nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, ErrUnsupportedFormat
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot access video: %s is a directory", path)
	}
	return &Video{
		FileName: filepath.Base(path),
		path:     path,
	}, nil
}
