package camera

import (
	"sync"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/chewxy/math32"
)

// settleEpsilon is the magnitude below which a pending delta is dropped.
const settleEpsilon = 1e-5

// orbitState is the part of the controller that Reset restores.
type orbitState struct {
	target    [3]float32
	radius    float32
	azimuth   float32
	elevation float32
}

// cameraControllerImpl is the single implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	orbitState
	initial  orbitState
	position [3]float32

	// explicit start position, converted to spherical coordinates at construction
	startPosition *[3]float32

	// pending input
	deltaAzimuth   float32
	deltaElevation float32
	panOffset      [3]float32
	zoomScale      float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	rotateSpeed      float32
	zoomSpeed        float32
	panSpeed         float32

	damping       bool
	dampingFactor float32

	viewportHeight float32
	fov            float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller. Without options it orbits the origin from 10 units away
// at 30 degrees elevation with damping off.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},
		orbitState: orbitState{
			radius:    10,
			elevation: math32.Pi / 6,
		},
		zoomScale: 1,

		minRadius:    0.1,
		maxRadius:    4000,
		minElevation: -math32.Pi/2 + 0.01,
		maxElevation: math32.Pi/2 - 0.01,

		mouseSensitivity: 0.005,
		rotateSpeed:      1,
		zoomSpeed:        1,
		panSpeed:         1,

		dampingFactor: 0.05,

		viewportHeight: 720,
		fov:            math32.Pi / 4,
	}

	for _, option := range options {
		option(cc)
	}

	if cc.startPosition != nil {
		offset := common.Sub3(*cc.startPosition, cc.target)
		if r := common.Length3(offset); r > 1e-6 {
			cc.radius = r
			cc.azimuth = math32.Atan2(offset[0], offset[2])
			cc.elevation = math32.Asin(offset[1] / r)
		}
	}
	cc.clamp()
	cc.initial = cc.orbitState
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev, sinElev := math32.Cos(cc.elevation), math32.Sin(cc.elevation)
	cosAzim, sinAzim := math32.Cos(cc.azimuth), math32.Sin(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// clamp keeps radius and elevation within bounds.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) clamp() {
	cc.radius = min(max(cc.radius, cc.minRadius), cc.maxRadius)
	cc.elevation = min(max(cc.elevation, cc.minElevation), cc.maxElevation)
}

// localAxes returns the camera right and up vectors consistent with LookAt and a +Y world up.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up [3]float32) {
	back := common.Normalize3(common.Sub3(cc.position, cc.target))
	right = common.Normalize3(common.Cross3([3]float32{0, 1, 0}, back))
	up = common.Cross3(back, right)
	return right, up
}

func (cc *cameraControllerImpl) Position() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	step := cc.mouseSensitivity * cc.rotateSpeed
	// dragging right swings the camera left around the target
	cc.deltaAzimuth -= dx * step
	cc.deltaElevation += dy * step
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	worldPerPixel := 2 * cc.radius * math32.Tan(cc.fov/2) / max(cc.viewportHeight, 1)
	right, up := cc.localAxes()
	move := common.Add3(
		common.Scale3(right, -dx*worldPerPixel*cc.panSpeed),
		common.Scale3(up, dy*worldPerPixel*cc.panSpeed),
	)
	cc.panOffset = common.Add3(cc.panOffset, move)
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.zoomScale *= math32.Pow(0.95, delta*cc.zoomSpeed)
}

func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	share := float32(1)
	if cc.damping {
		share = cc.dampingFactor
		if dt > 0 {
			// dampingFactor is the share of one 60 Hz frame, rescaled to dt
			share = 1 - math32.Pow(1-cc.dampingFactor, dt*60)
		}
	}

	before := cc.orbitState
	cc.azimuth += cc.deltaAzimuth * share
	cc.elevation += cc.deltaElevation * share
	cc.target = common.Add3(cc.target, common.Scale3(cc.panOffset, share))
	// zoom is a factor, so its pending share decays in log space
	cc.radius *= math32.Pow(cc.zoomScale, share)
	cc.clamp()

	keep := 1 - share
	cc.deltaAzimuth = settle(cc.deltaAzimuth * keep)
	cc.deltaElevation = settle(cc.deltaElevation * keep)
	for i := range cc.panOffset {
		cc.panOffset[i] = settle(cc.panOffset[i] * keep)
	}
	cc.zoomScale = math32.Pow(cc.zoomScale, keep)
	if settle(cc.zoomScale-1) == 0 {
		cc.zoomScale = 1
	}

	cc.updatePosition()
	return before != cc.orbitState
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.orbitState = cc.initial
	cc.deltaAzimuth, cc.deltaElevation = 0, 0
	cc.panOffset = [3]float32{}
	cc.zoomScale = 1
	cc.updatePosition()
}

func (cc *cameraControllerImpl) SetViewport(height int, fov float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if height > 0 {
		cc.viewportHeight = float32(height)
	}
	if fov > 0 {
		cc.fov = fov
	}
}

func settle(v float32) float32 {
	if math32.Abs(v) < settleEpsilon {
		return 0
	}
	return v
}
