package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

func TestAnomalyUseCase_Compare(t *testing.T) {
	same := pngBytes(40, 40, 3)
	other := pngBytes(40, 40, 7)

	t.Run("identical images are a match", func(t *testing.T) {
		images := newFakeImages()
		uc := NewAnomalyUC(&fakeExtractor{dim: 16}, images, logger.NewNopLogger())

		got, err := uc.Compare(context.Background(), NewCompareImagesReq(
			*NewUploadImage(same, "image/png", int64(len(same)), "image1"),
			*NewUploadImage(same, "image/png", int64(len(same)), "image2"),
		))
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if got.Decision != domain.DecisionMatchConfirmed {
			t.Errorf("Decision = %v", got.Decision)
		}
		if math.Abs(got.Structural-1) > 1e-9 {
			t.Errorf("Structural = %v, want 1", got.Structural)
		}
		if math.Abs(got.Blended-(0.7*got.Cosine+0.3*got.Structural)) > 1e-12 {
			t.Errorf("Blended = %v is not the weighted sum", got.Blended)
		}
		if len(images.cleaned) != 2 || len(images.objects) != 0 {
			t.Errorf("staged images not released: cleaned=%v left=%d", images.cleaned, len(images.objects))
		}
	})

	t.Run("different images produce bounded scores", func(t *testing.T) {
		uc := NewAnomalyUC(&fakeExtractor{dim: 16}, newFakeImages(), logger.NewNopLogger())

		got, err := uc.Compare(context.Background(), NewCompareImagesReq(
			UploadImage{Data: same, Name: "image1"},
			UploadImage{Data: other, Name: "image2"},
		))
		if err != nil {
			t.Fatalf("Compare: %v", err)
		}
		if got.Blended < -1 || got.Blended > 1 {
			t.Errorf("Blended = %v out of range", got.Blended)
		}
	})

	t.Run("undecodable image fails extraction and releases storage", func(t *testing.T) {
		images := newFakeImages()
		ext := &fakeExtractor{dim: 16}
		uc := NewAnomalyUC(ext, images, logger.NewNopLogger())

		_, err := uc.Compare(context.Background(), NewCompareImagesReq(
			UploadImage{Data: []byte("not an image"), Name: "image1"},
			UploadImage{Data: same, Name: "image2"},
		))
		if !errors.Is(err, e.ErrFeatureExtraction) {
			t.Fatalf("err = %v, want ErrFeatureExtraction", err)
		}
		if ext.calls != 0 {
			t.Errorf("extractor called %d times", ext.calls)
		}
		if len(images.cleaned) != 2 {
			t.Errorf("cleaned = %v", images.cleaned)
		}
	})

	t.Run("extractor failure", func(t *testing.T) {
		images := newFakeImages()
		uc := NewAnomalyUC(&fakeExtractor{dim: 16, err: errors.New("onnx down")}, images, logger.NewNopLogger())

		_, err := uc.Compare(context.Background(), NewCompareImagesReq(
			UploadImage{Data: same}, UploadImage{Data: same},
		))
		if !errors.Is(err, e.ErrFeatureExtraction) {
			t.Fatalf("err = %v, want ErrFeatureExtraction", err)
		}
		if len(images.cleaned) != 2 {
			t.Errorf("cleaned = %v", images.cleaned)
		}
	})

	t.Run("staging failure", func(t *testing.T) {
		images := newFakeImages()
		images.stageErr = errors.New("disk full")
		uc := NewAnomalyUC(&fakeExtractor{dim: 16}, images, logger.NewNopLogger())

		if _, err := uc.Compare(context.Background(), NewCompareImagesReq(UploadImage{Data: same}, UploadImage{Data: same})); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("nil request", func(t *testing.T) {
		uc := NewAnomalyUC(&fakeExtractor{dim: 16}, newFakeImages(), logger.NewNopLogger())
		if _, err := uc.Compare(context.Background(), nil); !errors.Is(err, e.ErrNoImages) {
			t.Errorf("err = %v", err)
		}
	})
}
