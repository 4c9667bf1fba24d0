package validation

import "testing"

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub-domain.co.uk", true},
		{"user@localhost", false},
		{"no-at-sign.com", false},
		{"user@@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEmail(tt.in); got != tt.want {
			t.Errorf("IsEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFailedTags(t *testing.T) {
	type input struct {
		ID       string `validate:"required,cartify_email"`
		Password string `validate:"required"`
	}

	tests := []struct {
		name string
		in   input
		want []string
	}{
		{name: "valid", in: input{ID: "a@b.c", Password: "x"}},
		{name: "missing password", in: input{ID: "a@b.c"}, want: []string{"required"}},
		{name: "bad email", in: input{ID: "nope", Password: "x"}, want: []string{EmailTag}},
		{name: "both", in: input{ID: "nope"}, want: []string{"required", EmailTag}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, err := FailedTags(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if len(tags) != len(tt.want) {
				t.Fatalf("tags = %v, want %v", tags, tt.want)
			}
			for _, tag := range tt.want {
				if !tags[tag] {
					t.Errorf("missing tag %q in %v", tag, tags)
				}
			}
		})
	}
}
