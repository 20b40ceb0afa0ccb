package renderer

import (
	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/Carmen-Shannon/tank-diorama/engine/scene"
)

// framePlan lists, by index into the frame's drawables, what the main pass and the shadow passes draw.
type framePlan struct {
	visible []int
	casters []int
	culled  int
	skipped int
}

// planFrame culls drawables against the camera frustum and collects shadow casters.
// Casters are not frustum-culled since an object outside the view can still shade one inside it.
// Drawables without geometry are skipped by both passes.
func planFrame(drawables []scene.Drawable, frustum common.Frustum, shadows bool) framePlan {
	var plan framePlan
	for i, d := range drawables {
		if d.Mesh == nil || len(d.Mesh.Indices) == 0 || len(d.Mesh.Vertices) == 0 {
			plan.skipped++
			continue
		}
		if shadows && d.CastShadow {
			plan.casters = append(plan.casters, i)
		}
		if !d.Bounds.Empty() && !frustum.IntersectsAABB(d.Bounds) {
			plan.culled++
			continue
		}
		plan.visible = append(plan.visible, i)
	}
	return plan
}

// pipelineFor picks the main pass pipeline of a drawable by the sidedness of its material.
func pipelineFor(d scene.Drawable) string {
	if d.Mesh != nil && d.Mesh.Material != nil && d.Mesh.Material.DoubleSided() {
		return pipelineMeshDouble
	}
	return pipelineMesh
}
