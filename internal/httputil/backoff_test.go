package httputil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_DoublesUpToMax(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Max: 1 * time.Second}

	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 200*time.Millisecond, b.Delay(1))
	assert.Equal(t, 400*time.Millisecond, b.Delay(2))
	assert.Equal(t, 800*time.Millisecond, b.Delay(3))
	assert.Equal(t, 1*time.Second, b.Delay(4))
	assert.Equal(t, 1*time.Second, b.Delay(500))
}

func TestBackoff_Defaults(t *testing.T) {
	var b Backoff
	assert.Equal(t, DefaultBackoff.Base, b.Delay(0))
	assert.Equal(t, DefaultBackoff.Base, b.Delay(3), "max below base clamps to base")
	assert.Equal(t, DefaultBackoff.Base, Backoff{}.Delay(-2))
}

func TestBackoff_FixedWhenBaseEqualsMax(t *testing.T) {
	b := Backoff{Base: 2 * time.Second, Max: 2 * time.Second}
	for i := 0; i < 5; i++ {
		assert.Equal(t, 2*time.Second, b.Delay(i))
	}
}
