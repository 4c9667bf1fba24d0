package domain

import "testing"

func TestParseGalleryNumber(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int64
		wantErr  bool
	}{
		{name: "windows path", filename: `images\1163.jpg`, want: 1163},
		{name: "unix path", filename: "data/images/42.png", want: 42},
		{name: "bare name", filename: "7.jpg", want: 7},
		{name: "no extension", filename: "99", want: 99},
		{name: "not numeric", filename: "images/shoe.jpg", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGalleryNumber(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.filename)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseGalleryNumber(%q) = %d, want %d", tt.filename, got, tt.want)
			}
		})
	}
}

func TestNewGalleryRejectsMixedDimensions(t *testing.T) {
	_, err := NewGallery([]GalleryEntry{
		{Number: 1, Vector: FeatureVector{1, 0}},
		{Number: 2, Vector: FeatureVector{1, 0, 0}},
	})
	if err == nil {
		t.Fatal("expected dimension error")
	}
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"Customer": RoleCustomer, "SELLER": RoleSeller} {
		got, ok := ParseRole(in)
		if !ok || got != want {
			t.Errorf("ParseRole(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	for _, bad := range []string{"admin", " seller", ""} {
		if _, ok := ParseRole(bad); ok {
			t.Errorf("ParseRole(%q) accepted unknown role", bad)
		}
	}
}
