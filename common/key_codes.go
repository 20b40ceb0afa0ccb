package common

// Key codes delivered by the window key callbacks.
// Printable keys use their ASCII values, matching GLFW.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW   = 87  // W key (ASCII)
	KeyA   = 65  // A key (ASCII)
	KeyS   = 83  // S key (ASCII)
	KeyD   = 68  // D key (ASCII)
	KeyQ   = 81  // Q key (ASCII)
	KeyE   = 69  // E key (ASCII)
	KeyR   = 82  // R key (ASCII)
	KeyEsc = 256 // Escape key (GLFW)
)

// MouseButton identifies a pointer button in window mouse callbacks.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)
