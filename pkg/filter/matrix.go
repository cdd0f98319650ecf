package filter

import (
	"image"

	"inkframe/pkg/raster"

	"gonum.org/v1/gonum/mat"
)

// A color matrix is a 4x4 affine transform on the row vector [r g b 1],
// channels in [0, 1]. Composing a then b is a*b.

func identityMatrix() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

func compose(ms ...*mat.Dense) *mat.Dense {
	out := identityMatrix()
	for _, m := range ms {
		var next mat.Dense
		next.Mul(out, m)
		out = &next
	}
	return out
}

// mix returns (1-t)*a + t*b.
func mix(a, b *mat.Dense, t float64) *mat.Dense {
	var sa, sb, out mat.Dense
	sa.Scale(1-t, a)
	sb.Scale(t, b)
	out.Add(&sa, &sb)
	return &out
}

func sepiaMatrix(intensity float64) *mat.Dense {
	sepia := mat.NewDense(4, 4, []float64{
		0.393, 0.349, 0.272, 0,
		0.769, 0.686, 0.534, 0,
		0.189, 0.168, 0.131, 0,
		0, 0, 0, 1,
	})
	return mix(identityMatrix(), sepia, raster.Clamp01(intensity))
}

// grayMatrix maps every channel to BT.709 luma.
func grayMatrix() *mat.Dense {
	r, g, b := 0.2126, 0.7152, 0.0722
	return mat.NewDense(4, 4, []float64{
		r, r, r, 0,
		g, g, g, 0,
		b, b, b, 0,
		0, 0, 0, 1,
	})
}

// contrastMatrix scales channels around mid gray.
func contrastMatrix(c float64) *mat.Dense {
	t := 0.5 * (1 - c)
	return mat.NewDense(4, 4, []float64{
		c, 0, 0, 0,
		0, c, 0, 0,
		0, 0, c, 0,
		t, t, t, 1,
	})
}

func noirMatrix() *mat.Dense {
	return compose(grayMatrix(), contrastMatrix(1.35))
}

// applyMatrix runs a color matrix over every pixel. Alpha is preserved.
func applyMatrix(img image.Image, m *mat.Dense) *image.NRGBA {
	var k [4][3]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			k[i][j] = m.At(i, j)
		}
	}

	out := toNRGBA(img)
	pix := out.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		r := float64(pix[i]) / 255
		g := float64(pix[i+1]) / 255
		b := float64(pix[i+2]) / 255
		c := raster.FromNormalized(
			r*k[0][0]+g*k[1][0]+b*k[2][0]+k[3][0],
			r*k[0][1]+g*k[1][1]+b*k[2][1]+k[3][1],
			r*k[0][2]+g*k[1][2]+b*k[2][2]+k[3][2],
			1,
		)
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}
	return out
}
