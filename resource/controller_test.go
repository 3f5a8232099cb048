package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerExtractionSlots(t *testing.T) {
	ctx := context.Background()
	c := NewController(Config{MaxConcurrentExtractions: 2})

	require.NoError(t, c.AcquireExtraction(ctx))
	require.NoError(t, c.AcquireExtraction(ctx))
	assert.False(t, c.TryAcquireExtraction())

	c.ReleaseExtraction()
	assert.True(t, c.TryAcquireExtraction())

	c.ReleaseExtraction()
	c.ReleaseExtraction()
}

func TestControllerBlockedAcquireHonorsContext(t *testing.T) {
	c := NewController(Config{MaxConcurrentExtractions: 1})
	require.NoError(t, c.AcquireExtraction(context.Background()))
	defer c.ReleaseExtraction()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquireExtraction(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestControllerAudioMemory(t *testing.T) {
	ctx := context.Background()
	c := NewController(Config{MaxConcurrentExtractions: 1, AudioMemoryLimitBytes: 100})

	require.NoError(t, c.AcquireAudioMemory(ctx, 60))
	assert.Equal(t, int64(60), c.AudioMemoryUsage())

	ctxShort, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireAudioMemory(ctxShort, 60))

	c.ReleaseAudioMemory(60)
	assert.Equal(t, int64(0), c.AudioMemoryUsage())
	require.NoError(t, c.AcquireAudioMemory(ctx, 100))
	c.ReleaseAudioMemory(100)
}

func TestNilController(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireExtraction(context.Background()))
	assert.True(t, c.TryAcquireExtraction())
	c.ReleaseExtraction()
	assert.NoError(t, c.AcquireAudioMemory(context.Background(), 1<<20))
	c.ReleaseAudioMemory(1 << 20)
	assert.Equal(t, int64(0), c.AudioMemoryUsage())
}
