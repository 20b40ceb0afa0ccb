package window

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the desktop surface the diorama renders into and the source of its pointer and keyboard input.
// Input callbacks run on the thread that calls ProcessMessages. Positions are framebuffer pixels.
type Window interface {
	// SetUpdateCallback sets the function called once per message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving wheel steps, positive when scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key presses. Auto-repeat is not reported.
	//
	// Parameters:
	//   - callback: function receiving the key code (see common.KeyW and friends)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key releases.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseDownCallback sets the callback for mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor position
	SetMouseDownCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseUpCallback sets the callback for mouse button releases.
	//
	// Parameters:
	//   - callback: function receiving the button and the cursor position
	SetMouseUpCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetMouseMoveCallback(callback func(x, y int32))

	// SurfaceDescriptor returns the descriptor the renderer creates its WebGPU surface from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if the window was not created
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and no close was requested.
	//
	// Returns:
	//   - bool: true while the message loop should continue
	IsRunning() bool

	// Close destroys the window and terminates GLFW. It must be called from the thread that created the window.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// RequestClose makes ProcessMessages return after its current iteration.
	// It is safe to call from any goroutine.
	RequestClose()

	// ProcessMessages polls window events until the window is closed or RequestClose is called.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// callbacks are the input handlers registered on a window.
type callbacks struct {
	update    func()
	resize    func(width, height int)
	scroll    func(delta float32)
	keyDown   func(keyCode uint32)
	keyUp     func(keyCode uint32)
	mouseDown func(button common.MouseButton, x, y int32)
	mouseUp   func(button common.MouseButton, x, y int32)
	mouseMove func(x, y int32)
}

// engineWindow is the GLFW implementation of Window.
type engineWindow struct {
	title string

	width  int
	height int

	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	platform *glfwWindow
	on       callbacks

	closeRequested atomic.Bool
}

var _ Window = &engineWindow{}

// NewWindow opens a window sized for the diorama. The requested size is clamped to the size limits.
// It panics when GLFW cannot create a window, for example on a headless machine.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := newWindowState(options...)
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

// newWindowState applies defaults and options without touching GLFW.
func newWindowState(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "Tank Diorama",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
	}
	for _, opt := range options {
		opt(w)
	}
	w.width = clampDimension(w.width, w.minWidth, w.maxWidth)
	w.height = clampDimension(w.height, w.minHeight, w.maxHeight)
	return w
}

// clampDimension keeps v inside [lo, hi]. A non-positive bound is ignored.
func clampDimension(v, lo, hi int) int {
	if lo > 0 && v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.on.update = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.on.resize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.on.scroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.on.keyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.on.keyUp = callback
}

func (w *engineWindow) SetMouseDownCallback(callback func(button common.MouseButton, x, y int32)) {
	w.on.mouseDown = callback
}

func (w *engineWindow) SetMouseUpCallback(callback func(button common.MouseButton, x, y int32)) {
	w.on.mouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.on.mouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeRequested.Load() && w.platform != nil && w.platform.open()
}

func (w *engineWindow) RequestClose() {
	w.closeRequested.Store(true)
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	w.platform.destroy()
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		w.platform.poll()
		if w.on.update != nil {
			w.on.update()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
