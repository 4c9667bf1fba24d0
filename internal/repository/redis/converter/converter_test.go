package converter

import (
	"testing"

	"github.com/DRSN-tech/cartify-backend/internal/domain"
	"github.com/goccy/go-json"
)

func TestChatTurnConverter(t *testing.T) {
	conv := NewChatTurnConverter()

	turn := domain.NewChatTurn(domain.ChatRoleModel, "line one\nline two")
	raw, err := json.Marshal(conv.ToRedisModel(turn))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"role":"model","text":"line one\nline two"}` {
		t.Errorf("stored form = %s", raw)
	}

	var model ChatTurnRedisModel
	if err := json.Unmarshal(raw, &model); err != nil {
		t.Fatal(err)
	}
	if got := conv.ToDomain(model); got != turn {
		t.Errorf("ToDomain = %+v", got)
	}

	if conv.ToArrDomain(nil) != nil {
		t.Error("nil slice must stay nil")
	}
}
