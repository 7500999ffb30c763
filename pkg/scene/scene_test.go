package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solas-render/solas/pkg/core"
	"github.com/solas-render/solas/pkg/geometry"
	"github.com/solas-render/solas/pkg/material"
)

// lightAbove is a 1×1 emitter quad at y=2 facing down
func lightAbove(emission core.Color) *geometry.Mesh {
	quad := geometry.NewQuad(
		core.NewVec3(-0.5, 2, -0.5),
		core.NewVec3(1, 0, 0),
		core.NewVec3(0, 0, 1),
	)
	return geometry.NewMesh("light", quad, material.NewDiffuse(core.Color{}), emission)
}

func testScene(t *testing.T, meshes []*geometry.Mesh) *Scene {
	t.Helper()
	camera := NewCamera(core.NewVec3(0, 1, 4), core.NewVec3(0, 1, 0), core.NewVec3(0, 1, 0), 45, 32, 32)
	sc, err := NewScene(camera, meshes, nil, DefaultRenderConfig())
	require.NoError(t, err)
	return sc
}

func TestNewSceneValidation(t *testing.T) {
	cfg := DefaultRenderConfig()

	_, err := NewScene(nil, nil, nil, cfg)
	assert.Error(t, err, "missing camera is fatal")

	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 45, 8, 8)
	cfg.NbSamples = 0
	_, err = NewScene(camera, nil, nil, cfg)
	assert.Error(t, err, "zero samples is fatal")
}

func TestQuadLightNormal(t *testing.T) {
	light := lightAbove(core.ColorOne())
	// (1,0,0)×(0,0,1) = (0,-1,0): the emitter faces down toward the scene
	n := light.Shape.(*geometry.Quad).Normal
	assert.InDelta(t, -1.0, n.Y, 1e-9)
}

func TestSampleLightGeometry(t *testing.T) {
	sc := testScene(t, []*geometry.Mesh{lightAbove(core.ColorValue(2.0))})

	p := core.NewVec3(0, 0, 0)
	ls := sc.SampleLight(p, 0.5, 0.5, core.NewVec2(0.5, 0.5))
	require.True(t, ls.IsValid())

	// Sample at the quad center: distance 2 straight up
	assert.True(t, ls.D.Equals(core.NewVec3(0, 1, 0)))
	assert.Equal(t, core.MeasureSolidAngle, ls.PDF.Measure)

	// Area 1, single light: pdf_sa = (1/A)·d²/cosθ = 4
	assert.InDelta(t, 4.0, ls.PDF.Value(), 1e-6)

	// weight = emission·geom/(pdf_sel·pdf_area) = 2·(1/4)/1 = 0.5
	assert.InDelta(t, 0.5, float64(ls.Weight.R), 1e-5)
}

func TestDirectPDFMatchesSampleLight(t *testing.T) {
	light := lightAbove(core.ColorOne())
	sc := testScene(t, []*geometry.Mesh{light})

	p := core.NewVec3(0.2, 0, 0.1)
	ls := sc.SampleLight(p, 0.3, 0.7, core.NewVec2(0.25, 0.75))
	require.True(t, ls.IsValid())

	pdf := sc.DirectPDF(LightSamplingPDF{
		Mesh: light,
		O:    p,
		P:    ls.P,
		N:    ls.N,
		Dir:  ls.D,
	})
	assert.InDelta(t, ls.PDF.Value(), pdf.Value(), 1e-6,
		"DirectPDF must reproduce the sampling density of SampleLight")
}

func TestSampleLightBackface(t *testing.T) {
	sc := testScene(t, []*geometry.Mesh{lightAbove(core.ColorOne())})

	// A point above the light sees its back face
	ls := sc.SampleLight(core.NewVec3(0, 3, 0), 0.5, 0.5, core.NewVec2(0.5, 0.5))
	assert.False(t, ls.IsValid())
}

func TestEmitterSamplerFlux(t *testing.T) {
	sc := testScene(t, []*geometry.Mesh{lightAbove(core.ColorValue(3.0))})
	es := sc.EmittersSampler()
	require.True(t, es.HasEmitters())

	emitter, sampled, flux := es.RandomSampleEmitterPosition(0.5, 0.5, core.NewVec2(0.5, 0.5))
	require.NotNil(t, emitter)

	// Single emitter, area 1: flux = L·π·A
	assert.InDelta(t, 3.0*math.Pi, float64(flux.R), 1e-4)
	assert.InDelta(t, 2.0, sampled.P.Y, 1e-9)
}

func TestEmitterSelectionByFlux(t *testing.T) {
	dim := lightAbove(core.ColorValue(1.0))
	brightQuad := geometry.NewQuad(core.NewVec3(-0.5, 5, 0.5), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, -1))
	bright := geometry.NewMesh("bright", brightQuad, material.NewDiffuse(core.Color{}), core.ColorValue(3.0))

	sc := testScene(t, []*geometry.Mesh{dim, bright})
	require.Len(t, sc.Emitters, 2)

	// Selection probability is proportional to flux: 1:3
	pdfDim, m := sc.RandomSelectEmitter(0.1)
	assert.Equal(t, "light", m.Name)
	assert.InDelta(t, 0.25, pdfDim, 1e-6)

	pdfBright, m2 := sc.RandomSelectEmitter(0.9)
	assert.Equal(t, "bright", m2.Name)
	assert.InDelta(t, 0.75, pdfBright, 1e-6)
}

func TestEmptySceneHasNoEmitters(t *testing.T) {
	sc := testScene(t, nil)
	assert.False(t, sc.EmittersSampler().HasEmitters())
	ls := sc.SampleLight(core.NewVec3(0, 0, 0), 0.5, 0.5, core.NewVec2(0.5, 0.5))
	assert.False(t, ls.IsValid())
}

func TestCameraGenerate(t *testing.T) {
	camera := NewCamera(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), core.NewVec3(0, 1, 0), 90, 100, 100)

	// Center pixel looks straight along the view direction
	ray := camera.Generate(core.NewVec2(50, 50))
	assert.True(t, ray.Direction.Equals(core.NewVec3(0, 0, -1)))
	assert.True(t, ray.Origin.Equals(core.NewVec3(0, 0, 0)))

	// Left edge deviates toward -X, top edge toward +Y
	left := camera.Generate(core.NewVec2(0, 50))
	assert.Less(t, left.Direction.X, 0.0)
	top := camera.Generate(core.NewVec2(50, 0))
	assert.Greater(t, top.Direction.Y, 0.0)

	w, h := camera.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)
}
