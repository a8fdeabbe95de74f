package seatmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "A1", Label(0))
	assert.Equal(t, "A6", Label(5))
	assert.Equal(t, "A10", Label(9))
	assert.Equal(t, "B1", Label(10))
	assert.Equal(t, "B3", Label(12))
	assert.Equal(t, "G8", Label(67))
}

func TestRowLabel(t *testing.T) {
	assert.Equal(t, "A", RowLabel(3))
	assert.Equal(t, "B", RowLabel(19))
	assert.Equal(t, "C", RowLabel(20))
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, IsBlocked(0))
	assert.True(t, IsBlocked(9))
	assert.False(t, IsBlocked(1))
	assert.False(t, IsBlocked(8))
	assert.False(t, IsBlocked(10))
	assert.False(t, IsBlocked(19))
}

func TestBlockedWithin(t *testing.T) {
	assert.Equal(t, []int{0, 9}, BlockedWithin(68))
	// a capacity too small to reach the second blocked position
	assert.Equal(t, []int{0}, BlockedWithin(5))
	assert.Empty(t, BlockedWithin(0))
}

func TestAssignable(t *testing.T) {
	assert.Equal(t, 66, Assignable(68))
	assert.Equal(t, 4, Assignable(5))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, []string{"A2", "A3", "B1"}, Labels([]int{1, 2, 10}))
	assert.Empty(t, Labels(nil))
}
