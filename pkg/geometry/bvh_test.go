package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/material"
)

func whiteDiffuse() material.BSDF {
	return material.NewDiffuse(core.ColorValue(0.8))
}

func TestQuadIntersect(t *testing.T) {
	// Unit quad in the XY plane at z=0, facing +Z
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0))

	hit, ok := quad.Intersect(core.NewRay(core.NewVec3(0.5, 0.5, 1), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.T, 1e-9)
	assert.True(t, hit.Normal.Equals(core.NewVec3(0, 0, 1)))
	require.NotNil(t, hit.UV)
	assert.InDelta(t, 0.5, hit.UV.X, 1e-9)

	// Outside the quad bounds
	_, ok = quad.Intersect(core.NewRay(core.NewVec3(1.5, 0.5, 1), core.NewVec3(0, 0, -1)))
	assert.False(t, ok)

	// Parallel ray
	_, ok = quad.Intersect(core.NewRay(core.NewVec3(0.5, 0.5, 1), core.NewVec3(1, 0, 0)))
	assert.False(t, ok)

	assert.InDelta(t, 1.0, quad.Area(), 1e-9)
}

func TestSphereIntersect(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -3), 1.0)

	hit, ok := sphere.Intersect(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	require.True(t, ok)
	assert.InDelta(t, 2.0, hit.T, 1e-9)
	assert.True(t, hit.Normal.Equals(core.NewVec3(0, 0, 1)))

	_, ok = sphere.Intersect(core.NewRay(core.NewVec3(0, 5, 0), core.NewVec3(0, 0, -1)))
	assert.False(t, ok)

	assert.InDelta(t, 4.0*math.Pi, sphere.Area(), 1e-9)
}

func TestBVHTrace(t *testing.T) {
	near := NewMesh("near", NewQuad(core.NewVec3(-1, -1, -2), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), whiteDiffuse(), core.Color{})
	far := NewMesh("far", NewQuad(core.NewVec3(-1, -1, -5), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), whiteDiffuse(), core.Color{})
	bvh := NewBVH([]*Mesh{far, near})

	its := bvh.Trace(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	require.NotNil(t, its)
	assert.Equal(t, "near", its.Mesh.Name, "trace must return the closest hit")
	assert.InDelta(t, 2.0, its.Dist, 1e-9)

	// Incoming direction is expressed in the shading frame, pointing away
	// from the surface
	assert.InDelta(t, 1.0, its.CosTheta(), 1e-9)

	// Miss
	assert.Nil(t, bvh.Trace(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))))
}

func TestBVHTraceManyMeshes(t *testing.T) {
	// Enough meshes to force internal nodes
	var meshes []*Mesh
	for i := 0; i < 32; i++ {
		z := -1.0 - float64(i)
		meshes = append(meshes, NewMesh("q", NewQuad(
			core.NewVec3(-1, -1, z), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), whiteDiffuse(), core.Color{}))
	}
	bvh := NewBVH(meshes)

	its := bvh.Trace(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	require.NotNil(t, its)
	assert.InDelta(t, 1.0, its.Dist, 1e-9)
}

func TestBVHVisible(t *testing.T) {
	blocker := NewMesh("blocker", NewQuad(core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0)), whiteDiffuse(), core.Color{})
	bvh := NewBVH([]*Mesh{blocker})

	// Blocked segment through the quad
	assert.False(t, bvh.Visible(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -2)))

	// Unblocked segment beside the quad
	assert.True(t, bvh.Visible(core.NewVec3(5, 0, 0), core.NewVec3(5, 0, -2)))

	// Endpoints exactly on the blocker must not self-occlude
	assert.True(t, bvh.Visible(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, -1.5)))
	assert.True(t, bvh.Visible(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))

	// Empty scene is always visible
	empty := NewBVH(nil)
	assert.True(t, empty.Visible(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)))
}

func TestMeshFlux(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))
	light := NewMesh("light", quad, whiteDiffuse(), core.ColorOne())
	dark := NewMesh("dark", quad, whiteDiffuse(), core.Color{})

	assert.True(t, light.IsLight())
	assert.False(t, dark.IsLight())
	assert.InDelta(t, 2.0*math.Pi, light.Flux(), 1e-2)
	assert.Equal(t, 0.0, dark.Flux())

	sampled := light.SamplePosition(core.NewVec2(0.25, 0.5))
	assert.Equal(t, core.MeasureArea, sampled.PDF.Measure)
	assert.InDelta(t, 0.5, sampled.PDF.Value(), 1e-9)
}
