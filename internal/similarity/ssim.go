package similarity

import (
	"fmt"
	"image"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	ssimRange  = 255.0
)

// SSIM вычисляет средний индекс структурного сходства двух полутоновых изображений одного размера.
// Параметры совпадают со значениями по умолчанию scikit-image: равномерное окно 7×7,
// выборочная ковариация, усреднение только по окнам, целиком лежащим внутри изображения.
func SSIM(a, b *image.Gray) (float64, error) {
	ba, bb := a.Bounds(), b.Bounds()
	if ba.Dx() != bb.Dx() || ba.Dy() != bb.Dy() {
		return 0, fmt.Errorf("ssim %v vs %v: %w", ba.Size(), bb.Size(), e.ErrImageSizeMismatch)
	}

	w, h := ba.Dx(), ba.Dy()
	if w < ssimWindow || h < ssimWindow {
		return 0, fmt.Errorf("ssim: image %dx%d smaller than window %d: %w", w, h, ssimWindow, e.ErrImageSizeMismatch)
	}

	sx := newIntegral(w, h, func(x, y int) float64 { return px(a, x, y) })
	sy := newIntegral(w, h, func(x, y int) float64 { return px(b, x, y) })
	sxx := newIntegral(w, h, func(x, y int) float64 { v := px(a, x, y); return v * v })
	syy := newIntegral(w, h, func(x, y int) float64 { v := px(b, x, y); return v * v })
	sxy := newIntegral(w, h, func(x, y int) float64 { return px(a, x, y) * px(b, x, y) })

	const (
		n       = float64(ssimWindow * ssimWindow)
		covNorm = n / (n - 1)
		c1      = (ssimK1 * ssimRange) * (ssimK1 * ssimRange)
		c2      = (ssimK2 * ssimRange) * (ssimK2 * ssimRange)
	)

	var total float64
	var count int
	for y := 0; y+ssimWindow <= h; y++ {
		for x := 0; x+ssimWindow <= w; x++ {
			ux := sx.window(x, y, ssimWindow) / n
			uy := sy.window(x, y, ssimWindow) / n
			uxx := sxx.window(x, y, ssimWindow) / n
			uyy := syy.window(x, y, ssimWindow) / n
			uxy := sxy.window(x, y, ssimWindow) / n

			vx := covNorm * (uxx - ux*ux)
			vy := covNorm * (uyy - uy*uy)
			vxy := covNorm * (uxy - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
			count++
		}
	}

	return total / float64(count), nil
}

func px(g *image.Gray, x, y int) float64 {
	b := g.Bounds()
	return float64(g.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
}

// integral — таблица префиксных сумм для быстрого подсчёта суммы по окну.
type integral struct {
	w    int
	sums []float64
}

func newIntegral(w, h int, f func(x, y int) float64) *integral {
	stride := w + 1
	sums := make([]float64, stride*(h+1))
	for y := 1; y <= h; y++ {
		var row float64
		for x := 1; x <= w; x++ {
			row += f(x-1, y-1)
			sums[y*stride+x] = sums[(y-1)*stride+x] + row
		}
	}
	return &integral{w: stride, sums: sums}
}

func (s *integral) window(x, y, size int) float64 {
	x1, y1 := x+size, y+size
	return s.sums[y1*s.w+x1] - s.sums[y*s.w+x1] - s.sums[y1*s.w+x] + s.sums[y*s.w+x]
}
