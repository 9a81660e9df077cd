package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePriceStats(t *testing.T) {
	_, ok := ComputePriceStats(nil)
	assert.False(t, ok)

	stats, ok := ComputePriceStats(prices(120, 80, 101))
	require.True(t, ok)
	assert.Equal(t, 80.0, stats.MinPrice)
	assert.Equal(t, 100.0, stats.AvgPrice)

	stats, ok = ComputePriceStats(prices(100, 101))
	require.True(t, ok)
	assert.Equal(t, 101.0, stats.AvgPrice)

	stats, ok = ComputePriceStats(prices(0.1, 0.2))
	require.True(t, ok)
	assert.Equal(t, 0.1, stats.MinPrice)
	assert.Equal(t, 0.0, stats.AvgPrice)
}
