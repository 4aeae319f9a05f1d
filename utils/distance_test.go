package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance(t *testing.T) {
	// Paris to London is roughly 344 km
	d := CalculateDistance(48.8566, 2.3522, 51.5074, -0.1278)
	assert.InDelta(t, 344, d, 2)

	assert.Zero(t, CalculateDistance(10, 10, 10, 10))
}
