package media

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xeitosa/socialai/internal/progress"
	"github.com/xeitosa/socialai/internal/provider"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFiles struct {
	mu        sync.Mutex
	states    []provider.FileState
	uploads   int
	polls     int
	uploadErr error
}

func (f *fakeFiles) Upload(ctx context.Context, path, mimeType string) (*provider.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &provider.File{Name: "files/abc", URI: "https://files.test/abc", MIMEType: mimeType, State: provider.FileStateProcessing}, nil
}

func (f *fakeFiles) Status(ctx context.Context, name string) (provider.FileState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.states) == 0 {
		return provider.FileStateProcessing, nil
	}
	s := f.states[0]
	f.states = f.states[1:]
	return s, nil
}

func videoAsset() *Asset { return &Asset{Name: "clip.mp4", MIMEType: "video/mp4", Path: "/tmp/clip.mp4"} }

func TestGate_PollsUntilActive(t *testing.T) {
	files := &fakeFiles{states: []provider.FileState{
		provider.FileStateProcessing, provider.FileStateProcessing, provider.FileStateActive,
	}}
	var events []progress.Event
	gate := NewGate(files, WithInterval(time.Millisecond), WithProgress(func(e progress.Event) {
		events = append(events, e)
	}))

	file, err := gate.Prepare(context.Background(), videoAsset())
	require.NoError(t, err)
	assert.Equal(t, provider.FileStateActive, file.State)
	assert.Equal(t, 1, files.uploads)
	assert.Equal(t, 3, files.polls)

	var polls int
	for _, e := range events {
		if e.Stage == progress.StageProcessing {
			polls++
		}
	}
	assert.Equal(t, 3, polls)
}

func TestGate_FailedState(t *testing.T) {
	files := &fakeFiles{states: []provider.FileState{provider.FileStateProcessing, provider.FileStateFailed}}
	gate := NewGate(files, WithInterval(time.Millisecond))

	file, err := gate.Prepare(context.Background(), videoAsset())
	assert.Nil(t, file)
	assert.ErrorIs(t, err, ErrMediaFailed)
	assert.Equal(t, 2, files.polls)
}

func TestGate_ImageSkipsPolling(t *testing.T) {
	files := &fakeFiles{}
	gate := NewGate(files, WithInterval(time.Millisecond))

	file, err := gate.Prepare(context.Background(), &Asset{Name: "cover.png", MIMEType: "image/png", Path: "/tmp/cover.png"})
	require.NoError(t, err)
	assert.Equal(t, provider.FileStateActive, file.State)
	assert.Zero(t, files.polls)
}

func TestGate_AttemptCeiling(t *testing.T) {
	files := &fakeFiles{}
	gate := NewGate(files, WithInterval(time.Millisecond), WithMaxAttempts(4))

	_, err := gate.Prepare(context.Background(), videoAsset())
	assert.ErrorIs(t, err, ErrMediaTimeout)
	assert.Equal(t, 4, files.polls)
}

func TestGate_ContextDeadline(t *testing.T) {
	files := &fakeFiles{}
	gate := NewGate(files, WithInterval(time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := gate.Prepare(ctx, videoAsset())
	assert.ErrorIs(t, err, ErrMediaTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, files.polls)
}

func TestGate_UploadError(t *testing.T) {
	files := &fakeFiles{uploadErr: errors.New("quota")}
	gate := NewGate(files)

	_, err := gate.Prepare(context.Background(), videoAsset())
	assert.ErrorContains(t, err, "quota")
	assert.Zero(t, files.polls)
}

func TestStage(t *testing.T) {
	asset, err := Stage("Clip.MOV", "", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, "video/quicktime", asset.MIMEType)
	assert.True(t, asset.IsVideo())
	assert.True(t, strings.HasSuffix(asset.Path, ".mov"))

	data, err := os.ReadFile(asset.Path)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	require.NoError(t, asset.Cleanup())
	_, err = os.Stat(asset.Path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, asset.Cleanup())
}

func TestStage_RejectsUnknownType(t *testing.T) {
	_, err := Stage("notes.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStage_KeepsDeclaredMIME(t *testing.T) {
	asset, err := Stage("photo.jpg", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	defer asset.Cleanup()
	assert.Equal(t, "image/jpeg", asset.MIMEType)
	assert.False(t, asset.IsVideo())
}
