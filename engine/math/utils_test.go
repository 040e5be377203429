package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(5, 0, 10))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, uint32(640), Clamp(uint32(100), 640, 3840))
	assert.Equal(t, 1.5, Clamp(1.5, 1.0, 2.0))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
	assert.Equal(t, -2.5, Min(-2.5, 0.0))
	assert.Equal(t, "b", Max("a", "b"))
}
