package camera

import (
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/chewxy/math32"
)

// cameraImpl is the perspective camera. Every derived value is recomputed together in updateMatrices so a
// reader never sees a view matrix from one update and a frustum from another.
type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32 // radians
	aspect float32
	near   float32
	far    float32

	position       [3]float32
	view           [16]float32
	projection     [16]float32
	viewProjection [16]float32
	frustum        common.Frustum

	controller CameraController
}

// Camera is the perspective camera looking at the diorama. Its eye and target come from an orbit controller;
// Update pulls them and rebuilds the matrices and the culling frustum.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns width / height.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clip distance.
	Near() float32

	// Far returns the far clip distance.
	Far() float32

	// Position returns the eye position used by the last Update.
	//
	// Returns:
	//   - [3]float32: world-space eye position
	Position() [3]float32

	// ViewMatrix returns the column-major view matrix.
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the column-major perspective matrix (WebGPU depth range 0..1).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns projection × view.
	ViewProjectionMatrix() [16]float32

	// Frustum returns the view volume of the last Update, for culling.
	//
	// Returns:
	//   - common.Frustum: the six planes
	Frustum() common.Frustum

	// Controller returns the attached controller, or nil.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads eye and target from the controller and recomputes every matrix and the frustum.
	// Without a controller it does nothing.
	Update()

	// SetAspect changes width / height after a resize. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Uniform packs the camera for the mesh shader.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with a 45 degree field of view, a square aspect and clip planes at 0.1 and 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		up:             [3]float32{0, 1, 0},
		fov:            45 * math32.Pi / 180,
		aspect:         1,
		near:           0.1,
		far:            100,
		view:           common.IdentityMatrix(),
		projection:     common.IdentityMatrix(),
		viewProjection: common.IdentityMatrix(),
	}
	for _, option := range options {
		option(c)
	}
	c.frustum = common.ExtractFrustum(c.viewProjection)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() [3]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{ViewProj: c.viewProjection, Eye: c.position}
}

// updateMatrices rebuilds view, projection, their product and the frustum. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	if c.controller == nil {
		return
	}
	c.position = c.controller.Position()
	common.LookAt(c.view[:], c.position, c.controller.Target(), c.up)
	common.Perspective(c.projection[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjection[:], c.projection[:], c.view[:])
	c.frustum = common.ExtractFrustum(c.viewProjection)
}
