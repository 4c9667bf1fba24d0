package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/cartify-backend/pkg/e"
	"github.com/DRSN-tech/cartify-backend/pkg/logger"
)

func TestChatUseCase_EmptyMessage(t *testing.T) {
	model := &fakeChatModel{reply: "hi"}
	uc := NewChatUC(model, newFakeHistory(), time.Second, logger.NewNopLogger())

	for _, msg := range []string{"", "   ", "\n\t"} {
		res, err := uc.Send(context.Background(), NewChatReq("", msg))
		if err != nil {
			t.Fatalf("Send(%q): %v", msg, err)
		}
		if res.Reply != EmptyMessageReply {
			t.Errorf("Reply = %q", res.Reply)
		}
		if res.SessionID == "" {
			t.Error("session id not issued")
		}
	}

	if model.calls != 0 {
		t.Errorf("model called %d times for empty messages", model.calls)
	}
}

func TestChatUseCase_SessionHistory(t *testing.T) {
	model := &fakeChatModel{reply: "bot"}
	history := newFakeHistory()
	uc := NewChatUC(model, history, time.Second, logger.NewNopLogger())
	ctx := context.Background()

	first, err := uc.Send(ctx, NewChatReq("", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if first.Reply != "bot:hello" {
		t.Errorf("Reply = %q", first.Reply)
	}

	if _, err := uc.Send(ctx, NewChatReq(first.SessionID, "again")); err != nil {
		t.Fatal(err)
	}
	if _, err := uc.Send(ctx, NewChatReq("other-session", "hey")); err != nil {
		t.Fatal(err)
	}

	want := []int{0, 2, 0}
	for i, n := range want {
		if model.histLens[i] != n {
			t.Errorf("call %d saw history of %d turns, want %d", i, model.histLens[i], n)
		}
	}
	if got := len(history.sessions[first.SessionID]); got != 4 {
		t.Errorf("session turns = %d, want 4", got)
	}
}

func TestChatUseCase_ModelError(t *testing.T) {
	history := newFakeHistory()
	uc := NewChatUC(&fakeChatModel{err: errors.New("quota exceeded")}, history, time.Second, logger.NewNopLogger())

	if _, err := uc.Send(context.Background(), NewChatReq("s1", "hello")); err == nil {
		t.Fatal("expected error")
	}
	if len(history.sessions["s1"]) != 0 {
		t.Error("failed exchange must not be stored")
	}
}

func TestChatUseCase_Disabled(t *testing.T) {
	uc := NewChatUC(nil, newFakeHistory(), time.Second, logger.NewNopLogger())
	if _, err := uc.Send(context.Background(), NewChatReq("", "hello")); !errors.Is(err, e.ErrChatServiceDisabled) {
		t.Errorf("err = %v", err)
	}
}

func TestChatUseCase_ConcurrentSameSession(t *testing.T) {
	history := newFakeHistory()
	uc := NewChatUC(&fakeChatModel{reply: "r"}, history, time.Second, logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Send(context.Background(), NewChatReq("shared", "msg")); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := len(history.sessions["shared"]); got != 40 {
		t.Errorf("turns = %d, want 40", got)
	}
	if len(uc.locks.locks) != 0 {
		t.Errorf("session locks leaked: %d", len(uc.locks.locks))
	}
}
