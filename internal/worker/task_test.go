package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OCAP2/missioneditor/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Result(t *testing.T) {
	release := make(chan struct{})
	task := Start(context.Background(), func(ctx context.Context, progress *cache.SafeCounter) (int, error) {
		progress.Inc()
		<-release
		progress.Inc()
		return 42, nil
	})

	assert.Eventually(t, func() bool { return task.Progress() == 1 }, time.Second, time.Millisecond)
	assert.False(t, task.Finished())

	close(release)
	v, err := task.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, task.Finished())
	assert.Equal(t, 2, task.Progress())
}

func TestTask_Error(t *testing.T) {
	boom := errors.New("boom")
	task := Start(context.Background(), func(ctx context.Context, progress *cache.SafeCounter) (string, error) {
		return "", boom
	})

	<-task.Done()
	_, err := task.Result()
	require.ErrorIs(t, err, boom)
}

func TestTask_Cancel(t *testing.T) {
	task := Start(context.Background(), func(ctx context.Context, progress *cache.SafeCounter) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	task.Cancel()
	_, err := task.Wait()
	require.ErrorIs(t, err, context.Canceled)
}

func TestTask_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Start(ctx, func(ctx context.Context, progress *cache.SafeCounter) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	cancel()
	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not observe parent cancellation")
	}
}
