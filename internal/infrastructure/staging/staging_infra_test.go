package staging

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/internal/repository/localfs"
	"github.com/DRSN-tech/cartify-backend/internal/usecase"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

func TestInfrastructure_StageOpenCleanup(t *testing.T) {
	repo, err := localfs.NewImageRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	infra := NewInfrastructure(repo, "", 2, logger.NewNopLogger(), context.Background())
	ctx := context.Background()

	res, err := infra.StageImages(ctx, usecase.NewStageImagesReq("req-a", []usecase.UploadImage{
		{Data: []byte("first"), MimeType: "image/png", Name: "image1"},
		{Data: []byte("second"), MimeType: "application/octet-stream", Name: "image2"},
	}))
	if err != nil {
		t.Fatalf("StageImages: %v", err)
	}
	if len(res.ImagesKeys) != 2 {
		t.Fatalf("keys = %v", res.ImagesKeys)
	}
	if !strings.HasPrefix(res.ImagesKeys[0], "req-a/image1-") || !strings.HasSuffix(res.ImagesKeys[0], ".png") {
		t.Errorf("key[0] = %s", res.ImagesKeys[0])
	}
	if !strings.HasSuffix(res.ImagesKeys[1], ".bin") {
		t.Errorf("key[1] = %s", res.ImagesKeys[1])
	}

	for i, want := range []string{"first", "second"} {
		rc, err := infra.OpenImage(ctx, res.ImagesKeys[i])
		if err != nil {
			t.Fatal(err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want {
			t.Errorf("image %d = %q, want %q", i, got, want)
		}
	}

	infra.CleanupImages(res.ImagesKeys)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := infra.WaitForCleanup(waitCtx); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(repo.Root(), "req-a")); !os.IsNotExist(err) {
		t.Errorf("staged files remain after cleanup")
	}
}

func TestInfrastructure_UniqueKeysPerRequest(t *testing.T) {
	repo, err := localfs.NewImageRepo(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	infra := NewInfrastructure(repo, "", 4, logger.NewNopLogger(), context.Background())

	img := []usecase.UploadImage{{Data: []byte("x"), MimeType: "image/png", Name: "image1"}}
	a, err := infra.StageImages(context.Background(), usecase.NewStageImagesReq("same", img))
	if err != nil {
		t.Fatal(err)
	}
	b, err := infra.StageImages(context.Background(), usecase.NewStageImagesReq("same", img))
	if err != nil {
		t.Fatal(err)
	}
	if a.ImagesKeys[0] == b.ImagesKeys[0] {
		t.Errorf("keys collide: %s", a.ImagesKeys[0])
	}
}

// failingRepo падает на загрузке второго изображения.
type failingRepo struct {
	usecase.ImageRepository
	deleted chan string
}

func (f *failingRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	if strings.Contains(image.ObjectKey, "bad") {
		return "", errors.New("upload failed")
	}
	return image.ObjectKey, nil
}

func (f *failingRepo) Delete(_ context.Context, key string) error {
	f.deleted <- key
	return nil
}

func TestInfrastructure_StageFailureCleansUp(t *testing.T) {
	repo := &failingRepo{deleted: make(chan string, 4)}
	infra := NewInfrastructure(repo, "", 1, logger.NewNopLogger(), context.Background())

	_, err := infra.StageImages(context.Background(), usecase.NewStageImagesReq("r", []usecase.UploadImage{
		{Data: []byte("ok"), Name: "good"},
		{Data: []byte("no"), Name: "bad"},
	}))
	if err == nil {
		t.Fatal("expected error")
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := infra.WaitForCleanup(waitCtx); err != nil {
		t.Fatal(err)
	}

	close(repo.deleted)
	var deleted []string
	for k := range repo.deleted {
		deleted = append(deleted, k)
	}
	if len(deleted) != 1 || !strings.HasPrefix(deleted[0], "r/good-") {
		t.Errorf("deleted = %v, want only the staged good image", deleted)
	}
}
