package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW side of an engineWindow.
type glfwWindow struct {
	window *glfw.Window
	closed bool

	// cursor positions are in screen coordinates; these convert them to framebuffer pixels
	scaleX float64
	scaleY float64
}

var mouseButtons = map[glfw.MouseButton]common.MouseButton{
	glfw.MouseButtonLeft:   common.MouseButtonLeft,
	glfw.MouseButtonRight:  common.MouseButtonRight,
	glfw.MouseButtonMiddle: common.MouseButtonMiddle,
}

// newPlatformWindow creates the GLFW window without a client API and routes its events to w's callbacks.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	// WebGPU owns the swapchain; no OpenGL context
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	win.SetSizeLimits(
		limit(w.minWidth), limit(w.minHeight),
		limit(w.maxWidth), limit(w.maxHeight),
	)

	gw := &glfwWindow{window: win}
	w.platform = gw
	gw.updateScale()
	w.width, w.height = win.GetFramebufferSize()

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		switch {
		case action == glfw.Press && w.on.keyDown != nil:
			w.on.keyDown(uint32(key))
		case action == glfw.Release && w.on.keyUp != nil:
			w.on.keyUp(uint32(key))
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.on.scroll != nil {
			w.on.scroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := mouseButtons[button]
		if !ok {
			return
		}
		x, y := gw.cursor(win.GetCursorPos())
		switch {
		case action == glfw.Press && w.on.mouseDown != nil:
			w.on.mouseDown(b, x, y)
		case action == glfw.Release && w.on.mouseUp != nil:
			w.on.mouseUp(b, x, y)
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.on.mouseMove != nil {
			w.on.mouseMove(gw.cursor(xpos, ypos))
		}
	})

	// framebuffer size, not window size: the surface is configured in pixels
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		gw.updateScale()
		if w.on.resize != nil {
			w.on.resize(width, height)
		}
	})
	return nil
}

// dontCare is GLFW_DONT_CARE, accepted by SetSizeLimits for an unset bound.
const dontCare = -1

// limit maps an unset size bound to dontCare.
func limit(v int) int {
	if v <= 0 {
		return dontCare
	}
	return v
}

// updateScale recomputes the screen-to-framebuffer ratio. A minimized window keeps the previous ratio.
func (gw *glfwWindow) updateScale() {
	ww, wh := gw.window.GetSize()
	fw, fh := gw.window.GetFramebufferSize()
	if ww <= 0 || wh <= 0 || fw <= 0 || fh <= 0 {
		if gw.scaleX == 0 {
			gw.scaleX, gw.scaleY = 1, 1
		}
		return
	}
	gw.scaleX = float64(fw) / float64(ww)
	gw.scaleY = float64(fh) / float64(wh)
}

// cursor converts a GLFW cursor position to framebuffer pixels.
func (gw *glfwWindow) cursor(x, y float64) (int32, int32) {
	return int32(x * gw.scaleX), int32(y * gw.scaleY)
}

// surfaceDescriptor bridges the GLFW window to a WebGPU surface for the current platform.
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

func (gw *glfwWindow) open() bool {
	return !gw.closed && !gw.window.ShouldClose()
}

// poll dispatches pending events without blocking.
func (gw *glfwWindow) poll() {
	glfw.PollEvents()
}

func (gw *glfwWindow) destroy() {
	if gw.closed {
		return
	}
	gw.closed = true
	gw.window.Destroy()
	glfw.Terminate()
}
