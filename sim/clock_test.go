package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClock_ValidatesTimestepRelationship(t *testing.T) {
	tests := []struct {
		name      string
		physicsDT float64
		renderDT  float64
		wantErr   bool
	}{
		{"equal steps (k=1)", 0.01, 0.01, false},
		{"k=5", 0.01, 0.05, false},
		{"k=10", 0.005, 0.05, false},
		{"yaml float rounding tolerated", 0.01, 0.060000000000000005, false},
		{"non-integer multiple", 0.01, 0.025, true},
		{"render smaller than physics", 0.05, 0.01, true},
		{"zero physics dt", 0, 0.05, true},
		{"negative render dt", 0.01, -0.05, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClock(tt.physicsDT, tt.renderDT)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *ConfigError
				assert.True(t, errors.As(err, &cfgErr), "want ConfigError, got %T", err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)
		})
	}
}

func TestClock_RenderTickCadence(t *testing.T) {
	// For every valid k, DueRenderTick is true on exactly every k-th
	// Advance, starting from the k-th.
	for _, k := range []int64{1, 2, 5, 10} {
		c, err := NewClock(0.01, 0.01*float64(k))
		require.NoError(t, err)
		require.Equal(t, k, c.RenderInterval())

		assert.False(t, c.DueRenderTick(), "k=%d: due before any advance", k)
		for i := int64(1); i <= 4*k; i++ {
			c.Advance()
			want := i%k == 0
			assert.Equal(t, want, c.DueRenderTick(), "k=%d advance=%d", k, i)
		}
	}
}

func TestClock_TimeDerivesFromTicks(t *testing.T) {
	c, err := NewClock(0.01, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0.0, c.Now())
	for i := 1; i <= 7; i++ {
		now := c.Advance()
		assert.Equal(t, float64(i)*0.01, now)
		assert.Equal(t, now, c.Now(), "Now must be stable between advances")
	}
}

func TestClock_ResetZeroesTimeAndCadence(t *testing.T) {
	c, err := NewClock(0.01, 0.05)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		c.Advance()
	}
	c.Reset()

	assert.Equal(t, 0.0, c.Now())
	assert.Equal(t, int64(0), c.Tick())
	// Cadence restarts: due again only on the 5th advance after reset.
	for i := 1; i <= 5; i++ {
		c.Advance()
		assert.Equal(t, i == 5, c.DueRenderTick(), "advance %d after reset", i)
	}
}
