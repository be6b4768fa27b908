package viz

import (
	"math"
	"sort"
)

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Camera manages 3D projection to a 2D plane.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 6, Near: 0.1, RotX: -1.2, RotZ: 0.6, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

// RotatePoint rotates a point around the camera's axes.
func (c *Camera) RotatePoint(p Vec3) Vec3 {
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project converts world coordinates to sub-pixel screen coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	rot := c.RotatePoint(p).Scale(c.Zoom)
	dist := c.Distance
	if rot.Z >= dist-c.Near {
		return 0, 0, 0, false
	}
	scale := dist / (dist - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe          { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e Vec3)  { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p Vec3)    { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Len() int           { return len(w.Edges) }
func (w *Wireframe) Merge(o *Wireframe) { w.Edges = append(w.Edges, o.Edges...) }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.PixelSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, cw, ch)
		x2, y2, d2, v2 := cam.Project(e.End, cw, ch)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// BodyToWorld rotates a body-frame vector by the yaw-pitch-roll sequence
// (psi about z, theta about y, phi about x).
func BodyToWorld(v Vec3, psi, theta, phi float64) Vec3 {
	cf, sf := math.Cos(phi), math.Sin(phi)
	v.Y, v.Z = v.Y*cf-v.Z*sf, v.Y*sf+v.Z*cf
	ct, st := math.Cos(theta), math.Sin(theta)
	v.X, v.Z = v.X*ct+v.Z*st, -v.X*st+v.Z*ct
	cp, sp := math.Cos(psi), math.Sin(psi)
	v.X, v.Y = v.X*cp-v.Y*sp, v.X*sp+v.Y*cp
	return v
}

// SpinAxis is the body z axis in world coordinates. Its angle from world z
// is the nutation angle.
func SpinAxis(psi, theta, phi float64) Vec3 {
	return BodyToWorld(Vec3{0, 0, 1}, psi, theta, phi)
}

// VehicleWireframe is a cylinder of the given radius and length along the
// body z axis, with a nose line marking the spin axis.
func VehicleWireframe(psi, theta, phi, radius, length float64) *Wireframe {
	const segments = 12
	w := NewWireframe()
	half := length / 2
	rot := func(v Vec3) Vec3 { return BodyToWorld(v, psi, theta, phi) }

	for i := 0; i < segments; i++ {
		a1 := float64(i) * 2 * math.Pi / segments
		a2 := float64(i+1) * 2 * math.Pi / segments
		b1 := Vec3{radius * math.Cos(a1), radius * math.Sin(a1), -half}
		b2 := Vec3{radius * math.Cos(a2), radius * math.Sin(a2), -half}
		t1 := Vec3{b1.X, b1.Y, half}
		t2 := Vec3{b2.X, b2.Y, half}
		w.AddEdge(rot(b1), rot(b2))
		w.AddEdge(rot(t1), rot(t2))
		if i%3 == 0 {
			w.AddEdge(rot(b1), rot(t1))
		}
	}
	w.AddEdge(rot(Vec3{0, 0, -half - 0.2}), rot(Vec3{0, 0, half + 0.6}))
	return w
}

// AxesWireframe draws the world reference axes.
func AxesWireframe(l float64) *Wireframe {
	w, o := NewWireframe(), Vec3{}
	w.AddEdge(o, Vec3{l, 0, 0})
	w.AddEdge(o, Vec3{0, l, 0})
	w.AddEdge(o, Vec3{0, 0, l})
	return w
}
