package sources

import "testing"

func TestExtractExcerpt(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		maxLen int
		want   string
	}{
		{
			name:   "plain text untouched",
			html:   "Un texte simple.",
			maxLen: 100,
			want:   "Un texte simple.",
		},
		{
			name:   "strips markup",
			html:   "<p>Un <strong>paragraphe</strong> avec du balisage.</p>",
			maxLen: 100,
			want:   "Un paragraphe avec du balisage.",
		},
		{
			name:   "collapses whitespace",
			html:   "Des   espaces\n\t multiples",
			maxLen: 100,
			want:   "Des espaces multiples",
		},
		{
			name:   "nested markup and entities",
			html:   "<div><p>Premier</p>\n<p>Second &amp; dernier</p></div>",
			maxLen: 100,
			want:   "Premier Second & dernier",
		},
		{
			name:   "truncates on rune boundary",
			html:   "Libération écrit",
			maxLen: 10,
			want:   "Libération…",
		},
		{
			name:   "no limit when maxLen is zero",
			html:   "Un texte qui reste entier",
			maxLen: 0,
			want:   "Un texte qui reste entier",
		},
		{
			name:   "empty input",
			html:   "",
			maxLen: 100,
			want:   "",
		},
		{
			name:   "markup only",
			html:   "<br/><img src='x'/>",
			maxLen: 100,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractExcerpt(tt.html, tt.maxLen); got != tt.want {
				t.Errorf("ExtractExcerpt(%q, %d) = %q, want %q", tt.html, tt.maxLen, got, tt.want)
			}
		})
	}
}
