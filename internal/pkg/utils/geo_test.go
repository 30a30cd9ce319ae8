package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("zero distance for identical points", func(t *testing.T) {
		d := HaversineDistance(48.8566, 2.3522, 48.8566, 2.3522)
		assert.Equal(t, 0.0, d)
	})

	t.Run("paris to versailles", func(t *testing.T) {
		// Notre-Dame -> Château de Versailles, примерно 17.5 км по прямой
		d := HaversineDistance(48.8530, 2.3499, 48.8049, 2.1204)
		assert.InDelta(t, 17.5, d, 1.0)
	})

	t.Run("paris to london", func(t *testing.T) {
		d := HaversineDistance(48.8566, 2.3522, 51.5074, -0.1278)
		assert.InDelta(t, 344.0, d, 5.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		d1 := HaversineDistance(19.0760, 72.8777, 18.9220, 72.8347)
		d2 := HaversineDistance(18.9220, 72.8347, 19.0760, 72.8777)
		assert.InDelta(t, d1, d2, 1e-9)
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(48.8566, 2.3522))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(91, 0))
	assert.False(t, ValidateCoordinates(0, -181))
}
