package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/tank-diorama/common"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	a := NewGameObject(WithName("tank"))
	b := NewGameObject()

	assert.Equal(t, "tank", a.Name())
	assert.True(t, a.Enabled())
	assert.Equal(t, [3]float32{1, 1, 1}, a.Scale())
	assert.False(t, a.CastShadow())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestModelMatrixAppliesScaleThenOffset(t *testing.T) {
	obj := NewGameObject(WithScale([3]float32{4, 4, 4}), WithPosition([3]float32{1, 1, 1}))
	got := common.TransformPoint(obj.ModelMatrix(), [3]float32{1, 0, 0})

	assert.InDelta(t, 5, got[0], 1e-5)
	assert.InDelta(t, 1, got[1], 1e-5)
	assert.InDelta(t, 1, got[2], 1e-5)
}

func TestSetters(t *testing.T) {
	obj := NewGameObject()
	obj.SetPosition(1, 2, 3)
	obj.SetRotation(0, 1.9, 0)
	obj.SetScale(2, 2, 2)
	obj.SetShadows(true, false)
	obj.SetEnabled(false)

	assert.Equal(t, [3]float32{1, 2, 3}, obj.Position())
	assert.Equal(t, [3]float32{0, 1.9, 0}, obj.Rotation())
	assert.Equal(t, [3]float32{2, 2, 2}, obj.Scale())
	assert.True(t, obj.CastShadow())
	assert.False(t, obj.ReceiveShadow())
	assert.False(t, obj.Enabled())
}
