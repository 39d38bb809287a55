package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristopherRabotin/mga"
)

func TestJobSucceeded(t *testing.T) {
	j := Start(context.Background(), nil, "answer", func(context.Context) (int, error) {
		return 42, nil
	})
	out := j.Wait()
	assert.Equal(t, Succeeded, out.Status)
	assert.Equal(t, 42, out.Value)
	assert.NoError(t, out.Err)
	assert.Equal(t, Succeeded, j.Status())
	assert.NotEmpty(t, j.ID().String())
	j.Cancel() // no-op once completed
	assert.Equal(t, Succeeded, j.Wait().Status)
}

func TestJobCancelled(t *testing.T) {
	started := make(chan struct{})
	j := Start(context.Background(), nil, "endless", func(ctx context.Context) ([]int, error) {
		close(started)
		for {
			if err := Checkpoint(ctx); err != nil {
				return []int{1}, fmt.Errorf("stopped: %w", err)
			}
			time.Sleep(time.Millisecond)
		}
	})
	<-started
	assert.Equal(t, Running, j.Status())
	j.Cancel()
	j.Cancel()
	out := j.Wait()
	assert.Equal(t, Cancelled, out.Status)
	assert.NoError(t, out.Err, "a cancelled job is not a failure")
	assert.Nil(t, out.Value)
}

func TestJobParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := Start(ctx, nil, "child", func(ctx context.Context) (struct{}, error) {
		<-ctx.Done()
		return struct{}{}, ErrCancelled
	})
	cancel()
	select {
	case <-j.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job ignored the cancellation of its parent")
	}
	assert.Equal(t, Cancelled, j.Status())
}

func TestJobFailed(t *testing.T) {
	j := Start(context.Background(), nil, "infeasible", func(context.Context) (float64, error) {
		return 0, mga.NewInfeasible("nothing")
	})
	out := j.Wait()
	assert.Equal(t, Failed, out.Status)
	assert.True(t, mga.IsKind(out.Err, mga.KindInfeasible))

	j = Start(context.Background(), nil, "panic", func(context.Context) (float64, error) {
		panic(errors.New("boom"))
	})
	out = j.Wait()
	assert.Equal(t, Failed, out.Status)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "boom")
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
