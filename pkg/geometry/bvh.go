package geometry

import (
	"github.com/solas-render/solas/pkg/core"
)

// Acceleration answers ray and occlusion queries against the scene
// geometry. Implementations must be safe for concurrent use once built.
type Acceleration interface {
	// Trace returns the closest intersection along the ray, or nil
	Trace(ray core.Ray) *Intersection

	// Visible reports whether the open segment between p0 and p1 is
	// unoccluded. The segment is shrunk by small near/far margins so the
	// endpoints do not occlude themselves.
	Visible(p0, p1 core.Vec3) bool
}

// Occlusion margins for visibility segments, in units of the (unnormalised)
// segment direction
const (
	visibleTNear = 1e-5
	visibleTFar  = 1.0 - 1e-4
)

// BVHNode represents a node in the bounding volume hierarchy
type BVHNode struct {
	BoundingBox AABB
	Left        *BVHNode
	Right       *BVHNode
	Meshes      []*Mesh // Leaf nodes only (nil for internal nodes)
}

// BVH is a bounding volume hierarchy over meshes. It is immutable after
// construction and safe for concurrent Trace/Visible calls.
type BVH struct {
	Root *BVHNode
}

// NewBVH constructs a BVH from a slice of meshes
func NewBVH(meshes []*Mesh) *BVH {
	if len(meshes) == 0 {
		return &BVH{Root: nil}
	}

	// Copy so concurrent builders never mutate the caller's slice
	meshesCopy := make([]*Mesh, len(meshes))
	copy(meshesCopy, meshes)

	return &BVH{Root: buildBVH(meshesCopy)}
}

// Leaf threshold: nodes with this many or fewer meshes become leaves
const leafThreshold = 4

func buildBVH(meshes []*Mesh) *BVHNode {
	boundingBox := meshes[0].Shape.BoundingBox()
	for _, m := range meshes[1:] {
		boundingBox = boundingBox.Union(m.Shape.BoundingBox())
	}

	if len(meshes) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Meshes: meshes}
	}

	axis := boundingBox.LongestAxis()
	splitPos := axisValue(boundingBox.Center(), axis)

	var left, right []*Mesh
	for _, m := range meshes {
		if axisValue(m.Shape.BoundingBox().Center(), axis) < splitPos {
			left = append(left, m)
		} else {
			right = append(right, m)
		}
	}

	// Degenerate split: fall back to a leaf
	if len(left) == 0 || len(right) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Meshes: meshes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(left),
		Right:       buildBVH(right),
	}
}

func axisValue(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Trace returns the closest intersection along the ray, or nil
func (bvh *BVH) Trace(ray core.Ray) *Intersection {
	if bvh.Root == nil {
		return nil
	}

	hit, mesh, found := bvh.traceNode(bvh.Root, ray)
	if !found {
		return nil
	}
	return NewIntersection(ray, hit, mesh)
}

func (bvh *BVH) traceNode(node *BVHNode, ray core.Ray) (ShapeHit, *Mesh, bool) {
	if !node.BoundingBox.Hit(ray, ray.TNear, ray.TFar) {
		return ShapeHit{}, nil, false
	}

	var closest ShapeHit
	var closestMesh *Mesh
	found := false

	if node.Meshes != nil {
		for _, m := range node.Meshes {
			if hit, ok := m.Shape.Intersect(ray); ok {
				found = true
				ray.TFar = hit.T
				closest = hit
				closestMesh = m
			}
		}
		return closest, closestMesh, found
	}

	if node.Left != nil {
		if hit, mesh, ok := bvh.traceNode(node.Left, ray); ok {
			found = true
			ray.TFar = hit.T
			closest = hit
			closestMesh = mesh
		}
	}
	if node.Right != nil {
		if hit, mesh, ok := bvh.traceNode(node.Right, ray); ok {
			found = true
			closest = hit
			closestMesh = mesh
		}
	}

	return closest, closestMesh, found
}

// Visible reports whether the open segment p0→p1 is unoccluded
func (bvh *BVH) Visible(p0, p1 core.Vec3) bool {
	if bvh.Root == nil {
		return true
	}

	// The segment direction stays unnormalised so the margins are
	// parametric in segment length
	d := p1.Subtract(p0)
	ray := core.Ray{
		Origin:    p0,
		Direction: d,
		TNear:     visibleTNear,
		TFar:      visibleTFar,
	}
	_, _, occluded := bvh.traceNode(bvh.Root, ray)
	return !occluded
}
