package imaging

import (
	"fmt"
	"image"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Layout — порядок осей входного тензора.
type Layout string

const (
	LayoutNHWC Layout = "nhwc"
	LayoutNCHW Layout = "nchw"
)

// ParseLayout разбирает значение из конфигурации.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutNHWC, LayoutNCHW:
		return l, nil
	default:
		return "", fmt.Errorf("unknown tensor layout %q", s)
	}
}

// Shape возвращает форму тензора для одного изображения side×side.
func (l Layout) Shape(side int) []int64 {
	if l == LayoutNCHW {
		return []int64{1, 3, int64(side), int64(side)}
	}
	return []int64{1, int64(side), int64(side), 3}
}

// Средние значения ImageNet в порядке BGR для caffe-нормализации.
var caffeMeanBGR = [3]float32{103.939, 116.779, 123.68}

// Средние и отклонения ImageNet в порядке RGB для torch-нормализации.
var (
	torchMean = [3]float32{0.485, 0.456, 0.406}
	torchStd  = [3]float32{0.229, 0.224, 0.225}
)

// CaffeTensor переставляет каналы RGB→BGR и вычитает среднее ImageNet без масштабирования.
func CaffeTensor(img *image.RGBA, layout Layout) []float32 {
	return fill(img, layout, func(c int, v uint8) float32 {
		return float32(v) - caffeMeanBGR[c]
	}, true)
}

// TorchTensor масштабирует каналы в [0,1] и нормирует по среднему и отклонению ImageNet.
func TorchTensor(img *image.RGBA, layout Layout) []float32 {
	return fill(img, layout, func(c int, v uint8) float32 {
		return (float32(v)/255 - torchMean[c]) / torchStd[c]
	}, false)
}

// AnomalyInput — полный путь подготовки изображения для сравнения на аномалии.
func AnomalyInput(img image.Image, layout Layout) []float32 {
	resized := ResizeRGBA(Enhance(img), Side, Side, xdraw.NearestNeighbor)
	return CaffeTensor(resized, layout)
}

// RecommendInput — подготовка изображения для поиска похожих товаров.
func RecommendInput(img image.Image, layout Layout) []float32 {
	resized := ResizeRGBA(img, Side, Side, xdraw.BiLinear)
	return TorchTensor(resized, layout)
}

// SSIMInput — полутоновая копия 224×224 для структурного сравнения.
func SSIMInput(img image.Image) *image.Gray {
	return ResizeGray(Grayscale(img), Side, Side)
}

func fill(img *image.RGBA, layout Layout, f func(c int, v uint8) float32, bgr bool) []float32 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	out := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			rgb := [3]uint8{img.Pix[off], img.Pix[off+1], img.Pix[off+2]}
			if bgr {
				rgb[0], rgb[2] = rgb[2], rgb[0]
			}

			for c := 0; c < 3; c++ {
				v := f(c, rgb[c])
				if layout == LayoutNCHW {
					out[c*plane+y*w+x] = v
				} else {
					out[(y*w+x)*3+c] = v
				}
			}
		}
	}
	return out
}
