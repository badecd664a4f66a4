package markdown

import "testing"

func TestEscapeV2(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "hello world", "hello world"},
		{"Punctuation", "Hi. Really!", `Hi\. Really\!`},
		{"Bullets", "- one\n- two", "\\- one\n\\- two"},
		{"Link", "[a](https://x.y)", `\[a\]\(https://x\.y\)`},
		{"Backslash", `a\b`, `a\\b`},
		{"Unicode", "héllo — ok", "héllo — ok"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := EscapeV2(test.in); got != test.want {
				t.Errorf("Expected %q, got %q", test.want, got)
			}
		})
	}
}

func TestBold(t *testing.T) {
	if got := Bold(EscapeV2("Summary.")); got != `*Summary\.*` {
		t.Fatalf("unexpected bold text: %q", got)
	}
}
