package sim

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/esimov/depthview/camera"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	wallDistance = 5.5  // meters
	floorHeight  = 0.9  // meters below the optical axis
	baseline     = 0.12 // meters between the left and right sensor
)

type vec3 struct{ x, y, z float64 }

func (a vec3) add(b vec3) vec3      { return vec3{a.x + b.x, a.y + b.y, a.z + b.z} }
func (a vec3) sub(b vec3) vec3      { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }
func (a vec3) dot(b vec3) float64   { return a.x*b.x + a.y*b.y + a.z*b.z }
func (a vec3) scale(s float64) vec3 { return vec3{a.x * s, a.y * s, a.z * s} }

func (a vec3) norm() vec3 {
	l := math.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return a.scale(1 / l)
}

// light points from the surface toward the light source (up, left, front).
var light = vec3{-0.4, -0.7, -0.6}.norm()

type sphere struct {
	hue    float64 // degrees
	radius float64 // meters
	depth  float64 // meters, center of the motion
	swing  float64 // meters, amplitude of the motion along each axis
	speed  float64 // radians per second
	phase  float64
}

// center returns where the sphere is at time t (seconds).
func (s sphere) center(t float64) vec3 {
	a := s.speed*t + s.phase
	return vec3{
		x: s.swing * math.Sin(a),
		y: 0.2 * math.Cos(a*0.7),
		z: s.depth + s.swing*math.Cos(a),
	}
}

var spheres = []sphere{
	{hue: 10, radius: 0.35, depth: 1.6, swing: 0.6, speed: 0.9, phase: 0},
	{hue: 130, radius: 0.5, depth: 3.0, swing: 1.2, speed: 0.5, phase: 2.1},
	{hue: 220, radius: 0.7, depth: 4.4, swing: 1.0, speed: 0.3, phase: 4.2},
}

// hit is what a camera ray meets first.
type hit struct {
	z   float64 // distance along the optical axis, meters
	rgb color.NRGBA
}

// scene renders the synthetic world seen by the simulated camera.
type scene struct {
	size    camera.Resolution
	focal   float64
	t       float64
	centers []vec3
}

func newScene(size camera.Resolution, t float64) *scene {
	sc := &scene{
		size:  size,
		focal: float64(size.Width) / 2, // 90 degree horizontal field of view
		t:     t,
	}
	for _, s := range spheres {
		sc.centers = append(sc.centers, s.center(t))
	}
	return sc
}

// trace follows the ray through pixel (u, v) of a sensor shifted by eye
// meters along the x axis.
func (sc *scene) trace(u, v int, eye float64) hit {
	d := vec3{
		x: (float64(u) + 0.5 - float64(sc.size.Width)/2) / sc.focal,
		y: (float64(v) + 0.5 - float64(sc.size.Height)/2) / sc.focal,
		z: 1,
	}
	origin := vec3{x: eye}

	best := hit{z: wallDistance, rgb: sc.wall(origin.add(d.scale(wallDistance)))}
	if d.y > 0 {
		if z := floorHeight / d.y; z < best.z {
			best = hit{z: z, rgb: sc.floor(z)}
		}
	}

	for i, s := range spheres {
		c := sc.centers[i].sub(origin)
		a := d.dot(d)
		b := -2 * d.dot(c)
		k := c.dot(c) - s.radius*s.radius
		disc := b*b - 4*a*k
		if disc < 0 {
			continue
		}
		z := (-b - math.Sqrt(disc)) / (2 * a)
		if z <= 0 || z >= best.z {
			continue
		}
		n := d.scale(z).sub(c).norm()
		shade := 0.2 + 0.8*math.Max(0, n.dot(light))
		best = hit{z: z, rgb: nrgba(colorful.Hsv(s.hue, 0.75, shade))}
	}
	return best
}

// wall paints a checkerboard on the back wall.
func (sc *scene) wall(p vec3) color.NRGBA {
	cx := int(math.Floor(p.x / 0.5))
	cy := int(math.Floor(p.y / 0.5))
	v := 0.55
	if (cx+cy)%2 == 0 {
		v = 0.68
	}
	return nrgba(colorful.Hsv(210, 0.12, v))
}

// floor darkens with distance.
func (sc *scene) floor(z float64) color.NRGBA {
	return nrgba(colorful.Hsv(30, 0.35, 0.65-0.4*z/wallDistance))
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

// renderColor renders the color image of one sensor.
func (sc *scene) renderColor(eye float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, sc.size.Width, sc.size.Height))
	for y := 0; y < sc.size.Height; y++ {
		i := img.PixOffset(0, y)
		for x := 0; x < sc.size.Width; x++ {
			c := sc.trace(x, y, eye).rgb
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = c.A
			i += 4
		}
	}
	return img
}

// renderDepth renders the depth visualization of the left sensor: bright
// when near, dark when far, black outside the [near, far] range.
func (sc *scene) renderDepth(near, far float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, sc.size.Width, sc.size.Height))
	for y := 0; y < sc.size.Height; y++ {
		i := img.PixOffset(0, y)
		for x := 0; x < sc.size.Width; x++ {
			v := depthLevel(sc.trace(x, y, 0).z, near, far)
			img.Pix[i+0] = v
			img.Pix[i+1] = v
			img.Pix[i+2] = v
			img.Pix[i+3] = 0xff
			i += 4
		}
	}
	return img
}

// depthLevel maps a distance to the 8-bit level of the depth view.
func depthLevel(z, near, far float64) uint8 {
	if z < near || z > far || far <= near {
		return 0
	}
	v := 255 * (far - z) / (far - near)
	if v < 1 {
		v = 1
	}
	return uint8(math.Round(v))
}

// caption writes the frame counter in the upper left corner.
func caption(img *image.NRGBA, frame int) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, 18),
	}
	d.DrawString(fmt.Sprintf("SIM #%05d", frame))
}
