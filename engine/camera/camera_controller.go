package camera

// CameraController defines orbit controls around a target point. Input methods only accumulate pending
// deltas; Update applies them, so one frame of input is spread over several frames when damping is on.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: world-space camera position
	Position() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: world-space target position
	Target() [3]float32

	// Radius returns the current distance from the target.
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// Azimuth returns the current horizontal angle around the Y axis, 0 facing +Z.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// Rotate queues an orbit from a pointer drag.
	//
	// Parameters:
	//   - dx, dy: drag distance in pixels
	Rotate(dx, dy float32)

	// Pan queues a translation of target and position along the camera's right and up axes.
	// One pixel moves the target by one pixel's worth of world space at the target distance.
	//
	// Parameters:
	//   - dx, dy: drag distance in pixels
	Pan(dx, dy float32)

	// Zoom queues a dolly. Positive delta moves toward the target.
	//
	// Parameters:
	//   - delta: wheel steps
	Zoom(delta float32)

	// Update applies pending input and recomputes the position.
	// With damping on, a dampingFactor share of each pending delta is applied per 60 Hz frame and the rest is
	// kept for later updates; otherwise every pending delta is applied and cleared.
	//
	// Parameters:
	//   - dt: seconds since the previous update, 0 for one nominal frame
	//
	// Returns:
	//   - bool: true if the view moved
	Update(dt float32) bool

	// Reset restores the state the controller was created with and drops pending input.
	Reset()

	// SetViewport sets the surface height in pixels and the vertical field of view in radians used to scale
	// pointer pans.
	//
	// Parameters:
	//   - height: surface height in pixels
	//   - fov: vertical field of view in radians
	SetViewport(height int, fov float32)
}
