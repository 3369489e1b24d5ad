package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Snapshot(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	s := c.Snapshot(context.Background())
	assert.Positive(t, s.Goroutines)
	assert.False(t, s.SampledAt.IsZero())
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
}
