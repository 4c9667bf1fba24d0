package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/DRSN-tech/cartify-backend/pkg/e"
)

func testGallery(t *testing.T) *domain.Gallery {
	t.Helper()
	g, err := domain.NewGallery([]domain.GalleryEntry{
		{Number: 10, Filename: "10.jpg", Vector: domain.FeatureVector{1, 0}},
		{Number: 20, Filename: "20.jpg", Vector: domain.FeatureVector{0, 1}},
		{Number: 30, Filename: "30.jpg", Vector: domain.FeatureVector{1, 0}},
		{Number: 40, Filename: "40.jpg", Vector: domain.FeatureVector{0.6, 0.8}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGalleryRepoNearest(t *testing.T) {
	repo := NewGalleryRepo(testGallery(t))
	if repo.Dim() != 2 {
		t.Fatalf("Dim = %d", repo.Dim())
	}

	hits, err := repo.Nearest(context.Background(), domain.FeatureVector{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}

	want := []int64{10, 30, 40}
	if len(hits) != len(want) {
		t.Fatalf("hits = %+v", hits)
	}
	for i, n := range want {
		if hits[i].Number != n {
			t.Errorf("hit %d number = %d, want %d", i, hits[i].Number, n)
		}
	}
	if hits[0].Position != 0 || hits[1].Position != 2 {
		t.Errorf("tie order broken: %+v", hits[:2])
	}
}

func TestGalleryRepoErrors(t *testing.T) {
	repo := NewGalleryRepo(testGallery(t))

	_, err := repo.Nearest(context.Background(), domain.FeatureVector{1, 0, 0}, 3)
	if !errors.Is(err, e.ErrDimensionMismatch) {
		t.Errorf("err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := repo.Nearest(ctx, domain.FeatureVector{1, 0}, 3); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestChatHistoryRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryRepo(time.Minute, 0)

	turns, err := repo.Get(ctx, "unknown")
	if err != nil || len(turns) != 0 {
		t.Fatalf("Get unknown = %v, %v", turns, err)
	}

	user := domain.NewChatTurn(domain.ChatRoleUser, "hi")
	model := domain.NewChatTurn(domain.ChatRoleModel, "hello")
	if err := repo.Append(ctx, "a", user, model); err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, "b", user); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.Get(ctx, "a")
	if len(got) != 2 || got[1] != model {
		t.Errorf("history a = %+v", got)
	}
	got[0].Text = "mutated"
	again, _ := repo.Get(ctx, "a")
	if again[0].Text != "hi" {
		t.Error("stored history mutated through returned slice")
	}

	other, _ := repo.Get(ctx, "b")
	if len(other) != 1 {
		t.Errorf("history b = %+v", other)
	}
	if repo.Len() != 2 {
		t.Errorf("Len = %d", repo.Len())
	}
}

func TestChatHistoryRepoExpires(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryRepo(50*time.Millisecond, 0)

	_ = repo.Append(ctx, "s", domain.NewChatTurn(domain.ChatRoleUser, "hi"))
	time.Sleep(120 * time.Millisecond)

	turns, _ := repo.Get(ctx, "s")
	if len(turns) != 0 {
		t.Errorf("expired history returned: %+v", turns)
	}
}

func TestChatHistoryRepoKeepsLastTurns(t *testing.T) {
	ctx := context.Background()
	repo := NewChatHistoryRepo(time.Minute, 4)

	for i := range 5 {
		err := repo.Append(ctx, "s",
			domain.NewChatTurn(domain.ChatRoleUser, fmt.Sprintf("q%d", i)),
			domain.NewChatTurn(domain.ChatRoleModel, fmt.Sprintf("a%d", i)))
		if err != nil {
			t.Fatal(err)
		}
	}

	got, _ := repo.Get(ctx, "s")
	want := []string{"q3", "a3", "q4", "a4"}
	if len(got) != len(want) {
		t.Fatalf("history = %+v", got)
	}
	for i, text := range want {
		if got[i].Text != text {
			t.Errorf("turn %d = %q, want %q", i, got[i].Text, text)
		}
	}
	if got[0].Role != domain.ChatRoleUser {
		t.Errorf("history starts with %s turn", got[0].Role)
	}
}
