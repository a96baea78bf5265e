package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0o600))
	return path
}

func TestLibrarySource_Acquire(t *testing.T) {
	path := writeFile(t, "clip.mp4")
	video, err := NewLibrarySource(path).Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, "clip.mp4", video.FileName)

	stream, err := video.Open()
	require.NoError(t, err)
	defer stream.Close()
	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	require.Equal(t, "fake video bytes", string(data))

	size, err := video.Size()
	require.NoError(t, err)
	require.Equal(t, int64(len("fake video bytes")), size)
}

func TestLibrarySource_Cancelled(t *testing.T) {
	// An empty path is the user dismissing the picker: no video, no error.
	video, err := NewLibrarySource("").Acquire(context.Background())
	require.NoError(t, err)
	require.Nil(t, video)
}

func TestLibrarySource_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"notes.txt", "clip.gif", "clip"} {
		_, err := NewLibrarySource(writeFile(t, name)).Acquire(context.Background())
		require.ErrorIs(t, err, ErrUnsupportedFormat, "file %q", name)
	}
}

func TestLibrarySource_ExtensionCaseInsensitive(t *testing.T) {
	for _, name := range []string{"clip.MP4", "clip.Mov", "clip.MKV", "clip.avi"} {
		_, err := NewLibrarySource(writeFile(t, name)).Acquire(context.Background())
		require.NoError(t, err, "file %q", name)
	}
}

func TestLibrarySource_MissingFile(t *testing.T) {
	_, err := NewLibrarySource(filepath.Join(t.TempDir(), "gone.mp4")).Acquire(context.Background())
	require.Error(t, err)
}

func TestCaptureSource(t *testing.T) {
	path := writeFile(t, "recorded.mov")
	src := NewCaptureSource(func(ctx context.Context) (string, error) {
		return path, nil
	})
	video, err := src.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, "recorded.mov", video.FileName)

	// An aborted recording returns an empty path, which is a cancellation.
	src = NewCaptureSource(func(ctx context.Context) (string, error) {
		return "", nil
	})
	video, err = src.Acquire(context.Background())
	require.NoError(t, err)
	require.Nil(t, video)
}

func TestRelease(t *testing.T) {
	video, err := NewLibrarySource(writeFile(t, "clip.mp4")).Acquire(context.Background())
	require.NoError(t, err)

	video.Release()
	require.True(t, video.Released())

	_, err = video.Open()
	require.ErrorIs(t, err, ErrReleased)
	_, err = video.Size()
	require.ErrorIs(t, err, ErrReleased)
}

func TestRelease_ConcurrentWithOpen(t *testing.T) {
	// Release runs on the teardown path while a submission goroutine may
	// still call Open and Size. Every outcome must be a valid handle or
	// ErrReleased, never a torn read.
	video, err := NewLibrarySource(writeFile(t, "clip.mp4")).Acquire(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if stream, err := video.Open(); err == nil {
					stream.Close()
				} else {
					require.ErrorIs(t, err, ErrReleased)
				}
				if _, err := video.Size(); err != nil {
					require.ErrorIs(t, err, ErrReleased)
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		video.Release()
	}()
	wg.Wait()

	require.True(t, video.Released())
	_, err = video.Open()
	require.ErrorIs(t, err, ErrReleased)
}

func TestVideoFromPath_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clips.mp4")
	require.NoError(t, os.Mkdir(dir, 0o700))
	_, err := NewLibrarySource(dir).Acquire(context.Background())
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnsupportedFormat))
}
