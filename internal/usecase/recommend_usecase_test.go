package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

func TestRecommendUseCase_Recommend(t *testing.T) {
	img := pngBytes(30, 30, 5)

	t.Run("maps numbers to links and keeps missing ones", func(t *testing.T) {
		gallery := &fakeGallery{hits: []GalleryHit{
			NewGalleryHit(3, 15970, 0.99),
			NewGalleryHit(0, 39386, 0.97),
			NewGalleryHit(7, 59263, 0.90),
		}}
		links := fakeLinks{15970: "http://img/15970.jpg", 59263: "http://img/59263.jpg"}
		uc := NewRecommendUC(&fakeExtractor{dim: 4}, gallery, links, 0, logger.NewNopLogger())

		got, err := uc.Recommend(context.Background(), NewRecommendReq(UploadImage{Data: img, Name: "file"}))
		if err != nil {
			t.Fatalf("Recommend: %v", err)
		}
		if gallery.gotK != DefaultTopK {
			t.Errorf("k = %d, want %d", gallery.gotK, DefaultTopK)
		}

		wantNumbers := []int64{15970, 39386, 59263}
		for i, n := range wantNumbers {
			if got.Numbers[i] != n {
				t.Errorf("Numbers[%d] = %d, want %d", i, got.Numbers[i], n)
			}
		}
		if got.Links[0] == nil || *got.Links[0] != "http://img/15970.jpg" {
			t.Errorf("Links[0] = %v", got.Links[0])
		}
		if got.Links[1] != nil {
			t.Errorf("Links[1] = %v, want nil", *got.Links[1])
		}
		if len(got.Links) != len(got.Numbers) {
			t.Errorf("links and numbers differ in length")
		}
	})

	t.Run("empty gallery", func(t *testing.T) {
		uc := NewRecommendUC(&fakeExtractor{dim: 4}, &fakeGallery{err: e.ErrEmptyGallery}, fakeLinks{}, 5, logger.NewNopLogger())
		if _, err := uc.Recommend(context.Background(), NewRecommendReq(UploadImage{Data: img})); !errors.Is(err, e.ErrEmptyGallery) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("undecodable upload", func(t *testing.T) {
		uc := NewRecommendUC(&fakeExtractor{dim: 4}, &fakeGallery{}, fakeLinks{}, 5, logger.NewNopLogger())
		if _, err := uc.Recommend(context.Background(), NewRecommendReq(UploadImage{Data: []byte("xx")})); !errors.Is(err, e.ErrImageDecode) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("empty upload", func(t *testing.T) {
		uc := NewRecommendUC(&fakeExtractor{dim: 4}, &fakeGallery{}, fakeLinks{}, 5, logger.NewNopLogger())
		if _, err := uc.Recommend(context.Background(), NewRecommendReq(UploadImage{})); !errors.Is(err, e.ErrNoSelectedFile) {
			t.Errorf("err = %v", err)
		}
	})
}
