package camera

import "github.com/chewxy/math32"

// CameraBuilderOption is a functional option for configuring a camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithFovDegrees sets the vertical field of view. Values outside (0, 180) are ignored.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFovDegrees(degrees float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if degrees > 0 && degrees < 180 {
			c.fov = degrees * math32.Pi / 180
		}
	}
}

// WithAspect sets width / height. Non-positive values are ignored.
//
// Parameters:
//   - aspect: the aspect ratio
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithClipPlanes sets the near and far clip distances. The pair is ignored unless 0 < near < far.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near > 0 && far > near {
			c.near, c.far = near, far
		}
	}
}

// WithController attaches the orbit controller the camera follows.
//
// Parameters:
//   - ctrl: the controller
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
