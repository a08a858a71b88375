package jobs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediacut/videocut/internal/types"
)

func TestRegistry_AddAndGet(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Add("a")

	job, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, types.StatusProcessing, job.Status)
	assert.Equal(t, 0, job.Progress)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry(time.Hour)
	_, err := reg.Get("missing")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestRegistry_SnapshotIsolation(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Add("a")

	before, err := reg.Get("a")
	require.NoError(t, err)

	reg.Update("a", func(j *Job) { j.Progress = 50 })

	// The earlier snapshot must not change under the caller.
	assert.Equal(t, 0, before.Progress)

	after, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 50, after.Progress)

	// Mutating a returned snapshot must not leak into the registry.
	after.Progress = 99
	again, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 50, again.Progress)
}

func TestRegistry_LazyEviction(t *testing.T) {
	reg := NewRegistry(20 * time.Millisecond)
	reg.Add("a")
	reg.Update("a", func(j *Job) { j.Status = types.StatusCompleted })

	// Inside the retention window the terminal job is still queryable.
	job, err := reg.Get("a")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, job.Status)

	time.Sleep(40 * time.Millisecond)

	_, err = reg.Get("a")
	assert.True(t, errors.Is(err, ErrJobExpired))

	// Evicted for good: the next query no longer knows the ID.
	_, err = reg.Get("a")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestRegistry_ProcessingJobsNeverExpire(t *testing.T) {
	reg := NewRegistry(10 * time.Millisecond)
	reg.Add("a")
	time.Sleep(30 * time.Millisecond)

	_, err := reg.Get("a")
	require.NoError(t, err)
}

func TestRegistry_CountProcessing(t *testing.T) {
	reg := NewRegistry(time.Hour)
	reg.Add("a")
	reg.Add("b")
	reg.Add("c")
	reg.Update("b", func(j *Job) { j.Status = types.StatusFailed })

	assert.Equal(t, 2, reg.CountProcessing())
}
