// Package normalize provides unit tests for content normalization.
package normalize

import "testing"

func TestCollapse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "already normalized",
			content: "Invest in mutual funds",
			want:    "Invest in mutual funds",
		},
		{
			name:    "leading and trailing whitespace",
			content: "  Invest in mutual funds  ",
			want:    "Invest in mutual funds",
		},
		{
			name:    "internal whitespace runs",
			content: "Invest  in\tmutual\n\nfunds",
			want:    "Invest in mutual funds",
		},
		{
			name:    "whitespace only",
			content: " \t\n ",
			want:    "",
		},
		{
			name:    "empty",
			content: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collapse(tt.content); got != tt.want {
				t.Errorf("Collapse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizer_Limits(t *testing.T) {
	n := New(20)

	if !n.IsEmpty("   \t ") {
		t.Error("whitespace-only content should be empty")
	}
	if n.IsEmpty("x") {
		t.Error("non-empty content misreported as empty")
	}
	if n.IsTooLong("short") {
		t.Error("short content misreported as too long")
	}
	if !n.IsTooLong("this is definitely longer than twenty bytes") {
		t.Error("long content should exceed the ceiling")
	}
	if n.MaxLength() != 20 {
		t.Errorf("MaxLength() = %d, want 20", n.MaxLength())
	}
}

func TestCountEmojis(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "no emojis",
			content: "Invest in mutual funds today",
			want:    0,
		},
		{
			name:    "emoticons",
			content: "Great returns 😀📈💰",
			want:    3,
		},
		{
			name:    "dingbats",
			content: "Check this out ✅",
			want:    1,
		},
		{
			name:    "devanagari is not an emoji",
			content: "म्यूचुअल फंड निवेश",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountEmojis(tt.content); got != tt.want {
				t.Errorf("CountEmojis() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDevanagariRatio(t *testing.T) {
	if got := DevanagariRatio("पूरी तरह हिंदी सामग्री"); got < 0.9 {
		t.Errorf("pure Hindi ratio = %v, want near 1", got)
	}
	if got := DevanagariRatio("fully english content"); got != 0 {
		t.Errorf("pure English ratio = %v, want 0", got)
	}
	if got := DevanagariRatio("half हिंदी half english"); got <= 0 || got >= 1 {
		t.Errorf("mixed ratio = %v, want between 0 and 1", got)
	}
	if got := DevanagariRatio("1234 !!"); got != 0 {
		t.Errorf("no letters ratio = %v, want 0", got)
	}
}
