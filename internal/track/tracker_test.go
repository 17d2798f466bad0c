package track

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipgen/shipctl/internal/notify"
	"github.com/shipgen/shipctl/pkg/api"
	"github.com/shipgen/shipctl/pkg/models"
)

// fakeService implements the tracker's client surface in memory.
type fakeService struct {
	*scriptedFetcher
	uploadResp *api.UploadResponse
	uploadErr  error
	uploaded   []api.UploadRequest
}

func (s *fakeService) UploadFile(ctx context.Context, upload api.UploadRequest) (*api.UploadResponse, error) {
	s.uploaded = append(s.uploaded, upload)
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	return s.uploadResp, nil
}

func writeTempSpreadsheet(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("not really a spreadsheet"), 0644))
	return path
}

func TestSubmit_CreatesTaggedRecord(t *testing.T) {
	service := &fakeService{
		scriptedFetcher: &scriptedFetcher{},
		uploadResp: &api.UploadResponse{
			JobID:   "j1",
			Status:  models.StatusProcessing,
			Message: "Archivo subido, procesamiento iniciado",
		},
	}
	tracker := New(Config{
		Service: service,
		Clock:   fixedClock{now: time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)},
	})

	path := writeTempSpreadsheet(t, "Programa_SD_01_08_2025_final.xlsx")
	job, err := tracker.Submit(context.Background(), SubmitRequest{
		FilePath: path,
		Options:  models.ProcessingOptions{UsePlantaAsOrigen: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "j1", job.JobID)
	assert.Equal(t, models.StatusProcessing, job.Status)
	assert.Equal(t, "Programa_SD_01_08_2025_final.xlsx", job.Filename)
	assert.Equal(t, int64(24), job.FileSize)
	assert.Equal(t, "2025-08-01", job.FileDate)
	assert.Equal(t, "sd", job.FileType)
	assert.True(t, job.Options.UsePlantaAsOrigen)
	require.NotNil(t, job.StartedAt)

	// The record is visible to observers immediately.
	stored, ok := tracker.Store().Get("j1")
	require.True(t, ok)
	assert.Equal(t, job.Filename, stored.Filename)

	require.Len(t, service.uploaded, 1)
	assert.True(t, service.uploaded[0].Options.UsePlantaAsOrigen)
}

func TestSubmit_DefaultsToPendingWithoutServerStatus(t *testing.T) {
	service := &fakeService{
		scriptedFetcher: &scriptedFetcher{},
		uploadResp:      &api.UploadResponse{JobID: "j2"},
	}
	tracker := New(Config{Service: service})

	job, err := tracker.Submit(context.Background(), SubmitRequest{
		FilePath: writeTempSpreadsheet(t, "consolidado.xlsx"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, job.Status)
	assert.Equal(t, "general", job.FileType)
}

func TestSubmit_RequiresPrimaryFile(t *testing.T) {
	tracker := New(Config{Service: &fakeService{scriptedFetcher: &scriptedFetcher{}}})

	_, err := tracker.Submit(context.Background(), SubmitRequest{})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
}

func TestSubmit_WrapsUploadFailure(t *testing.T) {
	service := &fakeService{
		scriptedFetcher: &scriptedFetcher{},
		uploadErr:       errors.New("connection refused"),
	}
	notifier := notify.NewQueue(time.Minute)
	tracker := New(Config{Service: service, Notifier: notifier})

	_, err := tracker.Submit(context.Background(), SubmitRequest{
		FilePath: writeTempSpreadsheet(t, "consolidado.xlsx"),
	})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "consolidado.xlsx", subErr.Filename)

	// No record is allocated for a rejected submission.
	assert.Equal(t, 0, tracker.Store().Len())

	entries := notifier.Snapshot()
	require.NotEmpty(t, entries)
	assert.Equal(t, notify.TypeError, entries[0].Type)
}

func TestFollow_SingleWriterPerJob(t *testing.T) {
	service := &fakeService{
		scriptedFetcher: &scriptedFetcher{responses: []models.Job{
			{Status: models.StatusProcessing},
			{Status: models.StatusCompleted},
		}},
	}
	tracker := New(Config{Service: service, Interval: 5 * time.Millisecond})

	ctx := context.Background()
	done, err := tracker.Follow(ctx, "j1")
	require.NoError(t, err)

	_, err = tracker.Follow(ctx, "j1")
	assert.ErrorIs(t, err, ErrAlreadyTracking)

	require.NoError(t, <-done)

	// Once the first poller finished, the id may be followed again.
	done2, err := tracker.Follow(ctx, "j1")
	require.NoError(t, err)
	require.NoError(t, <-done2)
}

func TestFollow_IndependentJobsDoNotInterfere(t *testing.T) {
	service := &fakeService{
		scriptedFetcher: &scriptedFetcher{responses: []models.Job{
			{Status: models.StatusCompleted, Progress: 100},
		}},
	}
	tracker := New(Config{Service: service, Interval: 5 * time.Millisecond})
	tracker.Store().Upsert("x", models.Job{Filename: "x.xlsx"})
	tracker.Store().Upsert("y", models.Job{Filename: "y.xlsx"})

	ctx := context.Background()
	doneX, err := tracker.Follow(ctx, "x")
	require.NoError(t, err)
	doneY, err := tracker.Follow(ctx, "y")
	require.NoError(t, err)

	require.NoError(t, <-doneX)
	require.NoError(t, <-doneY)

	x, _ := tracker.Store().Get("x")
	y, _ := tracker.Store().Get("y")
	assert.Equal(t, "x.xlsx", x.Filename)
	assert.Equal(t, "y.xlsx", y.Filename)
	assert.Equal(t, models.StatusCompleted, x.Status)
	assert.Equal(t, models.StatusCompleted, y.Status)
}
