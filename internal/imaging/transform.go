package imaging

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Grayscale переводит изображение в 8-битные оттенки серого (0.299R + 0.587G + 0.114B).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ResizeGray масштабирует полутоновое изображение билинейной интерполяцией.
func ResizeGray(img image.Image, w, h int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// ResizeRGBA масштабирует цветное изображение выбранным интерполятором.
func ResizeRGBA(img image.Image, w, h int, interp xdraw.Interpolator) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	interp.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// EqualizeHist растягивает гистограмму яркости по всему диапазону 0..255.
// Одноцветное изображение возвращается без изменений.
func EqualizeHist(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	var hist [256]int
	for y := 0; y < h; y++ {
		row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X):]
		for x := 0; x < w; x++ {
			hist[row[x]]++
		}
	}

	total := w * h
	first := 0
	for first < 255 && hist[first] == 0 {
		first++
	}

	var lut [256]uint8
	if hist[first] == total {
		for i := range lut {
			lut[i] = uint8(i)
		}
	} else {
		scale := 255.0 / float64(total-hist[first])
		sum := 0
		for i := first + 1; i < 256; i++ {
			sum += hist[i]
			lut[i] = clampByte(float64(sum)*scale + 0.5)
		}
	}

	for y := 0; y < h; y++ {
		row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = lut[row[x]]
		}
	}
	return out
}

// gaussian5 — ядро 5×1 для σ, выведенной из размера окна 5: [1 4 6 4 1] / 16.
var gaussian5 = [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

// GaussianBlur5 сглаживает изображение сепарабельным фильтром Гаусса 5×5.
// Края отражаются без повтора крайнего пикселя (dcb|abcd|cba).
func GaussianBlur5(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	at := func(x, y int) float64 {
		return float64(src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(x+b.Min.X-src.Rect.Min.X)])
	}

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				acc += gaussian5[k+2] * at(reflect101(x+k, w), y)
			}
			tmp[y*w+x] = acc
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				acc += gaussian5[k+2] * tmp[reflect101(y+k, h)*w+x]
			}
			out.Pix[y*out.Stride+x] = clampByte(acc + 0.5)
		}
	}
	return out
}

// Enhance — подготовка изображения для проверки на аномалии:
// оттенки серого, выравнивание гистограммы, сглаживание и обратная сборка в три канала.
func Enhance(img image.Image) *image.RGBA {
	blurred := GaussianBlur5(EqualizeHist(Grayscale(img)))
	out := image.NewRGBA(blurred.Bounds())
	draw.Draw(out, out.Bounds(), blurred, image.Point{}, draw.Src)
	return out
}

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
