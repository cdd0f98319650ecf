package filter

import (
	"image"
	"math"

	"inkframe/pkg/graphics"
	"inkframe/pkg/raster"
)

// chrome boosts contrast through a color matrix, then saturation in HSV.
func chrome(img image.Image) *image.NRGBA {
	out := applyMatrix(img, contrastMatrix(1.1))
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		h, s, v := raster.RGBToHSV(float64(pix[i])/255, float64(pix[i+1])/255, float64(pix[i+2])/255)
		r, g, b := raster.HSVToRGB(h, raster.Clamp01(s*1.3), v)
		c := raster.FromNormalized(r, g, b, 1)
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}
	return out
}

// vignette darkens pixels beyond radius (a fraction of the half diagonal)
// with a smoothstep falloff reaching 1-intensity at the corners.
func vignette(img image.Image, intensity, radius float64) *image.NRGBA {
	out := toNRGBA(img)
	b := out.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	cx, cy := w/2, h/2
	maxDist := math.Hypot(cx, cy)
	radius = raster.Clamp01(radius)
	intensity = raster.Clamp01(intensity)

	for y := 0; y < b.Dy(); y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxDist
			factor := 1 - intensity*smoothstep(radius, 1, d)
			if factor >= 1 {
				continue
			}
			i := x * 4
			row[i] = uint8(math.Round(float64(row[i]) * factor))
			row[i+1] = uint8(math.Round(float64(row[i+1]) * factor))
			row[i+2] = uint8(math.Round(float64(row[i+2]) * factor))
		}
	}
	return out
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 <= edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := raster.Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// bloom screens a blurred copy over the image, mixed by intensity.
func bloom(img image.Image, intensity float64, radius int) *image.NRGBA {
	out := toNRGBA(img)
	if radius < 1 {
		return out
	}
	blurred := boxBlur(out, radius)
	intensity = raster.Clamp01(intensity)

	for i := 0; i+3 < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			o := float64(out.Pix[i+c]) / 255
			s := graphics.BlendChannel(graphics.BlendScreen, o, blurred[i+c])
			out.Pix[i+c] = uint8(math.Round(raster.Clamp01(o+intensity*(s-o)) * 255))
		}
	}
	return out
}

// boxBlur returns normalized channel values of img blurred by a separable
// box of the given radius, edges clamped. img must be tightly packed
// (Stride == 4*width), as toNRGBA produces.
func boxBlur(img *image.NRGBA, radius int) []float64 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	src := make([]float64, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 4; c++ {
				src[(y*w+x)*4+c] = float64(img.Pix[y*img.Stride+x*4+c]) / 255
			}
		}
	}

	tmp := make([]float64, len(src))
	n := float64(2*radius + 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for k := -radius; k <= radius; k++ {
					sx := clampInt(x+k, 0, w-1)
					sum += src[(y*w+sx)*4+c]
				}
				tmp[(y*w+x)*4+c] = sum / n
			}
		}
	}

	dst := make([]float64, len(src))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for k := -radius; k <= radius; k++ {
					sy := clampInt(y+k, 0, h-1)
					sum += tmp[(sy*w+x)*4+c]
				}
				dst[(y*w+x)*4+c] = sum / n
			}
		}
	}

	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
