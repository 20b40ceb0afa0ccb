package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowDefaults(t *testing.T) {
	w := newWindowState()

	assert.Equal(t, "Tank Diorama", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
	assert.False(t, w.IsRunning(), "no platform window yet")
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}

func TestWindowSizeIsClampedToLimits(t *testing.T) {
	w := newWindowState(
		WithTitle("Diorama"),
		WithSize(5000, 100),
		WithSizeLimits(320, 200, 3840, 2160),
	)
	assert.Equal(t, "Diorama", w.title)
	assert.Equal(t, 3840, w.Width())
	assert.Equal(t, 200, w.Height())

	w = newWindowState(WithSize(100, 100), WithSizeLimits(0, 0, 0, 0))
	assert.Equal(t, 100, w.Width())
	assert.Equal(t, 100, w.Height())
}

func TestEmptyOptionsKeepDefaults(t *testing.T) {
	w := newWindowState(WithTitle(""), WithSize(0, -1))
	assert.Equal(t, "Tank Diorama", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
}
