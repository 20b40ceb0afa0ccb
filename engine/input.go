package engine

import (
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
)

// keyPanPixels is how far one 60 Hz tick of a held WASD key pans, in pointer pixels.
const keyPanPixels = 7

// dollyPixels is the vertical middle-drag distance equal to one wheel step.
const dollyPixels = 50

// inputState tracks the active drag and held keys. Window callbacks write it on the window thread and the
// engine tick reads it.
type inputState struct {
	mu       *sync.Mutex
	dragging bool
	button   common.MouseButton
	lastX    int32
	lastY    int32
	held     map[uint32]bool
}

func newInputState() *inputState {
	return &inputState{
		mu:   &sync.Mutex{},
		held: make(map[uint32]bool),
	}
}

// bindInput wires the window callbacks to the controller, renderer and camera.
// Left drag orbits, right drag pans, middle drag and the wheel dolly, WASD pans, R resets, Escape quits.
func (e *engine) bindInput() {
	e.window.SetMouseDownCallback(e.onMouseDown)
	e.window.SetMouseUpCallback(e.onMouseUp)
	e.window.SetMouseMoveCallback(e.onMouseMove)
	e.window.SetScrollCallback(func(delta float32) {
		e.controller.Zoom(delta)
	})
	e.window.SetKeyDownCallback(e.onKeyDown)
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		e.input.mu.Lock()
		delete(e.input.held, keyCode)
		e.input.mu.Unlock()
	})
	e.window.SetResizeCallback(e.onResize)
}

func (e *engine) onMouseDown(button common.MouseButton, x, y int32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	if e.input.dragging {
		return
	}
	e.input.dragging = true
	e.input.button = button
	e.input.lastX, e.input.lastY = x, y
}

func (e *engine) onMouseUp(button common.MouseButton, _, _ int32) {
	e.input.mu.Lock()
	defer e.input.mu.Unlock()
	if e.input.dragging && e.input.button == button {
		e.input.dragging = false
	}
}

func (e *engine) onMouseMove(x, y int32) {
	e.input.mu.Lock()
	if !e.input.dragging {
		e.input.mu.Unlock()
		return
	}
	dx := float32(x - e.input.lastX)
	dy := float32(y - e.input.lastY)
	e.input.lastX, e.input.lastY = x, y
	button := e.input.button
	e.input.mu.Unlock()

	switch button {
	case common.MouseButtonLeft:
		e.controller.Rotate(dx, dy)
	case common.MouseButtonRight:
		e.controller.Pan(dx, dy)
	case common.MouseButtonMiddle:
		e.controller.Zoom(-dy / dollyPixels)
	}
}

func (e *engine) onKeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeyEsc:
		e.Quit()
		return
	case common.KeyR:
		e.controller.Reset()
		return
	}
	e.input.mu.Lock()
	e.input.held[keyCode] = true
	e.input.mu.Unlock()
}

func (e *engine) onResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	e.camera.SetAspect(float32(width) / float32(height))
	e.controller.SetViewport(height, e.camera.Fov())
}

// panHeldKeys pans the controller for every held WASD key. W and S move the view up and down, A and D
// move it sideways, scaled so the speed does not depend on the tick rate.
func (e *engine) panHeldKeys(dt float32) {
	e.input.mu.Lock()
	var dx, dy float32
	if e.input.held[common.KeyW] {
		dy += keyPanPixels
	}
	if e.input.held[common.KeyS] {
		dy -= keyPanPixels
	}
	if e.input.held[common.KeyA] {
		dx += keyPanPixels
	}
	if e.input.held[common.KeyD] {
		dx -= keyPanPixels
	}
	e.input.mu.Unlock()

	if dx == 0 && dy == 0 {
		return
	}
	scale := dt * 60
	e.controller.Pan(dx*scale, dy*scale)
}
