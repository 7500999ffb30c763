package integrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/material"
	"github.com/solas-render/solas/pkg/scene"
	"github.com/solas-render/solas/pkg/volume"
)

func diffuseQuad(name string, corner, u, v core.Vec3, albedo float64, emission core.Color) *geometry.Mesh {
	return geometry.NewMesh(name,
		geometry.NewQuad(corner, u, v),
		material.NewDiffuse(core.ColorValue(float32(albedo))),
		emission)
}

// boxMeshes is a closed diffuse box of half size 2 with a ceiling light,
// every normal facing inward
func boxMeshes(lightEmission core.Color) []*geometry.Mesh {
	const s = 2.0
	return []*geometry.Mesh{
		diffuseQuad("floor", core.NewVec3(-s, -s, -s), core.NewVec3(0, 0, 2*s), core.NewVec3(2*s, 0, 0), 0.7, core.Color{}),
		diffuseQuad("ceiling", core.NewVec3(-s, s, -s), core.NewVec3(2*s, 0, 0), core.NewVec3(0, 0, 2*s), 0.7, core.Color{}),
		diffuseQuad("back", core.NewVec3(-s, -s, -s), core.NewVec3(2*s, 0, 0), core.NewVec3(0, 2*s, 0), 0.7, core.Color{}),
		diffuseQuad("left", core.NewVec3(-s, -s, -s), core.NewVec3(0, 2*s, 0), core.NewVec3(0, 0, 2*s), 0.7, core.Color{}),
		diffuseQuad("right", core.NewVec3(s, -s, -s), core.NewVec3(0, 0, 2*s), core.NewVec3(0, 2*s, 0), 0.7, core.Color{}),
		diffuseQuad("light", core.NewVec3(-0.5, s-0.1, -0.5), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), 0.0, lightEmission),
	}
}

func makeScene(t *testing.T, meshes []*geometry.Mesh, vol *volume.HomogenousVolume, mutate func(*scene.RenderConfig)) (*scene.Scene, geometry.Acceleration) {
	t.Helper()
	cfg := scene.DefaultRenderConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.NbSamples = 4
	cfg.NbThreads = 2
	if mutate != nil {
		mutate(&cfg)
	}
	camera := scene.NewCamera(core.NewVec3(0, 0, 1.5), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 60, cfg.Width, cfg.Height)
	sc, err := scene.NewScene(camera, meshes, vol, cfg)
	require.NoError(t, err)
	return sc, geometry.NewBVH(meshes)
}
