package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCatalogRecordMarshalKeepsColumnOrder(t *testing.T) {
	rec := NewCatalogRecord(
		[]string{"id", "articleType", "price", "link"},
		[]any{decimal.RequireFromString("15970"), "t-shirt", decimal.RequireFromString("12.50"), nil},
	)

	got, err := rec.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	want := `{"id":15970,"articleType":"t-shirt","price":12.5,"link":null}`
	if string(got) != want {
		t.Fatalf("MarshalJSON = %s, want %s", got, want)
	}
}

func TestCatalogRecordText(t *testing.T) {
	rec := NewCatalogRecord([]string{"id", "link"}, []any{decimal.NewFromInt(7), "http://x/7.jpg"})

	if got := rec.Text("id"); got != "7" {
		t.Errorf("Text(id) = %q, want 7", got)
	}
	if got := rec.Text("link"); got != "http://x/7.jpg" {
		t.Errorf("Text(link) = %q", got)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Error("Get(missing) reported presence")
	}
}
